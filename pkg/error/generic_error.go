package error

// GenericError is implemented by every typed error in this package so the
// transport layer can map errors to response codes without knowing each type.
type GenericError interface {
	Error() string
	ErrCode() string
	StatusCode() int
}
