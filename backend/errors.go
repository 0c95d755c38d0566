package backend

import (
	"fmt"
	"net/http"

	errs "github.com/milops/asset-console/internal/errors"
)

// StatusError carries a non-2xx backend response: the HTTP status and the
// server-provided message when the body had one.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend: %s", http.StatusText(e.Code))
	}
	return fmt.Sprintf("backend: %s (%s)", e.Message, http.StatusText(e.Code))
}

// Is maps well-known status codes onto the console's sentinel errors so
// callers can branch with errors.Is.
func (e *StatusError) Is(target error) bool {
	switch target {
	case errs.ErrUnauthorized:
		return e.Code == http.StatusUnauthorized
	case errs.ErrNotFound:
		return e.Code == http.StatusNotFound
	}
	return false
}
