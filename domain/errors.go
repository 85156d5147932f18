package domain

// Error is a domain failure the HTTP layer can map to a status code.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// NewError creates a new domain error.
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

var (
	ErrNotFound          = NewError("NOT_FOUND", "product not found")
	ErrDuplicateName     = NewError("DUPLICATE_NAME", "a product with this name already exists")
	ErrUnknownProduct    = NewError("UNKNOWN_PRODUCT", "sale references an unknown product")
	ErrInsufficientStock = NewError("INSUFFICIENT_STOCK", "insufficient stock")
	ErrInvalidInput      = NewError("INVALID_INPUT", "invalid input")
	ErrUnauthorized      = NewError("UNAUTHORIZED", "not authenticated")
)
