// Package dto provides data transfer objects for the application layer.
package dto

import (
	"github.com/turtacn/tgroups/pkg/constants"
	"github.com/turtacn/tgroups/pkg/errors"
)

// Response is the envelope every endpoint answers with.
// Response 是所有接口共用的响应结构。
type Response struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Code    constants.ErrorCode `json:"code,omitempty"`
	TraceID string              `json:"trace_id,omitempty"`
}

// SuccessResponse 创建成功响应
func SuccessResponse(message string) *Response {
	return &Response{Success: true, Message: message}
}

// ErrorResponse 创建错误响应
func ErrorResponse(err error, traceID string) *Response {
	if appErr, ok := errors.AsAppError(err); ok {
		return &Response{
			Success: false,
			Message: appErr.Error(),
			Code:    appErr.Code(),
			TraceID: traceID,
		}
	}
	return &Response{
		Success: false,
		Message: "Internal server error",
		Code:    constants.ErrCodeServerError,
		TraceID: traceID,
	}
}
