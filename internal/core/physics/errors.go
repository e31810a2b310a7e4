package physics

import "errors"

var (
	ErrNegativeStep    = errors.New("physics: step duration must not be negative")
	ErrInvalidDuration = errors.New("physics: prediction duration must be zero or positive")
	ErrInvalidStep     = errors.New("physics: prediction step size must be positive")
)
