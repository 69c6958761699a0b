package error

// GenericError is implemented by every error the REST layer knows how to
// translate into a ResponseData envelope.
type GenericError interface {
	Error() string
	ErrCode() string
	StatusCode() int
}
