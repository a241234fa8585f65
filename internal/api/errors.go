package api

import "fmt"

// Error is a failed backend call: either a transport failure (wrapped in
// Err) or a non-2xx response (StatusCode plus the server's detail text).
type Error struct {
	Op         string
	StatusCode int
	Detail     string
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: backend returned %d: %s", e.Op, e.StatusCode, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}
