package dto

import "github.com/turtacn/tgroups/pkg/constants"

// SendPhoneRequest starts a login.
type SendPhoneRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"notblank" msg:"Phone number is required."`
	SessionID   string `json:"sessionId" validate:"notblank" msg:"Session id is required."`
}

// SendCodeRequest submits the verification code.
type SendCodeRequest struct {
	PhoneCode string `json:"phoneCode" validate:"notblank" msg:"Verification code is required."`
	SessionID string `json:"sessionId"`
}

// SendPasswordRequest submits the two-factor password.
type SendPasswordRequest struct {
	Password  string `json:"password" validate:"required" msg:"Password is required."`
	SessionID string `json:"sessionId"`
}

// LogoutRequest clears the stored session. SessionID is optional.
type LogoutRequest struct {
	SessionID string `json:"sessionId"`
}

// AuthStepResponse reports where a login stands after a step.
// AuthStepResponse 表示登录流程当前所处的步骤。
type AuthStepResponse struct {
	Success       bool               `json:"success"`
	Message       string             `json:"message"`
	Step          constants.AuthStep `json:"step"`
	SessionString string             `json:"sessionString,omitempty"`
}
