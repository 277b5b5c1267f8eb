package errs

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound           = errors.New("resource not found")
	ErrConflict           = errors.New("conflicting record found")
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("email or password is incorrect")
	ErrEmailAlreadyUsed   = errors.New("email has already been registered")
	ErrOutOfStock         = errors.New("product is out of stock")
	ErrInsufficientStock  = errors.New("requested quantity exceeds available stock")
	ErrRatingsDisabled    = errors.New("product ratings are disabled")
	ErrNotAuthenticated   = errors.New("no authenticated user for this session")
)

var statusMap = map[error]int{
	ErrNotFound:           http.StatusNotFound,
	ErrConflict:           http.StatusConflict,
	ErrValidation:         http.StatusBadRequest,
	ErrInvalidCredentials: http.StatusUnauthorized,
	ErrEmailAlreadyUsed:   http.StatusConflict,
	ErrOutOfStock:         http.StatusConflict,
	ErrInsufficientStock:  http.StatusConflict,
	ErrRatingsDisabled:    http.StatusForbidden,
	ErrNotAuthenticated:   http.StatusUnauthorized,
}

// StatusCode maps a domain error to its HTTP status. Unknown errors are
// treated as storage or internal failures.
func StatusCode(err error) int {
	for sentinel, code := range statusMap {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return http.StatusInternalServerError
}
