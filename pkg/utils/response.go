package utils

import (
	pkgError "github.com/AzielCF/az-chat/pkg/error"
)

// ResponseData is the JSON envelope used by every non-streaming endpoint.
// Status drives the HTTP status line and is not serialized.
type ResponseData struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Results any    `json:"results,omitempty"`
}

// PanicIfNeeded aborts the handler; middleware.Recovery turns the panic into
// a ResponseData using the GenericError contract when available.
func PanicIfNeeded(err any) {
	if err != nil {
		panic(err)
	}
}

// ErrorResponse builds the envelope for a GenericError.
func ErrorResponse(err pkgError.GenericError) ResponseData {
	return ResponseData{
		Status:  err.StatusCode(),
		Code:    err.ErrCode(),
		Message: err.Error(),
	}
}
