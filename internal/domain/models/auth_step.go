package models

import "github.com/turtacn/tgroups/pkg/constants"

// AuthStep is the stored state of an in-flight login attempt.
// Only the two waiting states are representable: "not started" is the absence of an
// attempt and "completed" is its retirement.
// AuthStep 表示进行中的登录尝试所处的状态。
type AuthStep interface {
	// Step returns the step name reported to the UI.
	Step() constants.AuthStep
	// Phone returns the phone number the attempt was started with.
	Phone() string
	// CodeRequest returns the id of the send-code request the code is bound to.
	CodeRequest() string

	authStep()
}

// AwaitingCode is entered after a verification code was sent.
type AwaitingCode struct {
	PhoneNumber   string
	CodeRequestID string
}

func (AwaitingCode) authStep() {}

// Step implements AuthStep.
func (AwaitingCode) Step() constants.AuthStep { return constants.AuthStepPhoneCode }

// Phone implements AuthStep.
func (s AwaitingCode) Phone() string { return s.PhoneNumber }

// CodeRequest implements AuthStep.
func (s AwaitingCode) CodeRequest() string { return s.CodeRequestID }

// AwaitingPassword is entered when code verification reported that a two-factor password is required.
type AwaitingPassword struct {
	PhoneNumber   string
	CodeRequestID string
}

func (AwaitingPassword) authStep() {}

// Step implements AuthStep.
func (AwaitingPassword) Step() constants.AuthStep { return constants.AuthStepPassword }

// Phone implements AuthStep.
func (s AwaitingPassword) Phone() string { return s.PhoneNumber }

// CodeRequest implements AuthStep.
func (s AwaitingPassword) CodeRequest() string { return s.CodeRequestID }
