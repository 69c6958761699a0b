package error

import (
	"fmt"
	"net/http"
)

// ValidationError is a malformed client payload.
type ValidationError string

func (err ValidationError) Error() string {
	return string(err)
}

func (err ValidationError) ErrCode() string {
	return "BAD_REQUEST"
}

func (err ValidationError) StatusCode() int {
	return http.StatusBadRequest
}

// ConfigMissingError names a required setting that was not provided.
type ConfigMissingError struct {
	Keys []string
}

func (err ConfigMissingError) Error() string {
	return fmt.Sprintf("missing required configuration: %v", err.Keys)
}

func (err ConfigMissingError) ErrCode() string {
	return "CONFIG_MISSING"
}

func (err ConfigMissingError) StatusCode() int {
	return http.StatusInternalServerError
}

// SecretNotFoundError is returned when the vault holds no value for a secret.
type SecretNotFoundError struct {
	Vault  string
	Secret string
	Err    error
}

func (err SecretNotFoundError) Error() string {
	if err.Err != nil {
		return fmt.Sprintf("secret %q not found in vault %q: %v", err.Secret, err.Vault, err.Err)
	}
	return fmt.Sprintf("secret %q not found in vault %q", err.Secret, err.Vault)
}

func (err SecretNotFoundError) Unwrap() error {
	return err.Err
}

func (err SecretNotFoundError) ErrCode() string {
	return "SECRET_NOT_FOUND"
}

func (err SecretNotFoundError) StatusCode() int {
	return http.StatusInternalServerError
}

// AuthFailureError is returned when the shared credential cannot produce a
// token for a scope.
type AuthFailureError struct {
	Scope string
	Err   error
}

func (err AuthFailureError) Error() string {
	return fmt.Sprintf("failed to acquire token for %s: %v", err.Scope, err.Err)
}

func (err AuthFailureError) Unwrap() error {
	return err.Err
}

func (err AuthFailureError) ErrCode() string {
	return "AUTH_FAILURE"
}

func (err AuthFailureError) StatusCode() int {
	return http.StatusUnauthorized
}

// TokenRefreshError means the cache connection could not be re-authenticated.
// The previously held token stays in place.
type TokenRefreshError struct {
	Err error
}

func (err TokenRefreshError) Error() string {
	return fmt.Sprintf("cache token refresh failed: %v", err.Err)
}

func (err TokenRefreshError) Unwrap() error {
	return err.Err
}

func (err TokenRefreshError) ErrCode() string {
	return "TOKEN_REFRESH_FAILED"
}

func (err TokenRefreshError) StatusCode() int {
	return http.StatusServiceUnavailable
}

// UpstreamStreamError wraps a failure raised while reading the completion
// stream. It never reaches the HTTP status line; it becomes the last NDJSON line.
type UpstreamStreamError struct {
	Err error
}

func (err UpstreamStreamError) Error() string {
	return err.Err.Error()
}

func (err UpstreamStreamError) Unwrap() error {
	return err.Err
}

func (err UpstreamStreamError) ErrCode() string {
	return "UPSTREAM_STREAM_ERROR"
}

func (err UpstreamStreamError) StatusCode() int {
	return http.StatusBadGateway
}

// UnauthorizedError rejects a login callback that cannot be trusted.
type UnauthorizedError string

func (err UnauthorizedError) Error() string {
	return string(err)
}

func (err UnauthorizedError) ErrCode() string {
	return "UNAUTHORIZED"
}

func (err UnauthorizedError) StatusCode() int {
	return http.StatusUnauthorized
}
