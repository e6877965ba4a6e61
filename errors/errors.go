package errors

import "fmt"

var (
	ErrWorkerPanic     = fmt.Errorf("worker panic")
	ErrMissingUsername = fmt.Errorf("username is required")
	ErrMissingRoom     = fmt.Errorf("room is required")
	ErrSinkFull        = fmt.Errorf("connection buffer full")
)
