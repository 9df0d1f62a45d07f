package learning

import "errors"

var (
	// ErrInvalidArgument reports malformed training input or parameters
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidState reports an operation that needs a trained model
	ErrInvalidState = errors.New("invalid state")
)
