package builder

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyInput    = errors.New("builder: no nodes in input")
	ErrEmptyLine     = errors.New("builder: empty line where a node was expected")
	ErrIndentation   = errors.New("builder: indentation skips a level")
	ErrUnknownNode   = errors.New("builder: unknown node")
	ErrBadArguments  = errors.New("builder: bad arguments")
	ErrMultipleRoots = errors.New("builder: more than one root node")
	ErrUnusedNode    = errors.New("builder: node not reachable from the root")
)

// ParseError locates a build failure in the text source. Line is 1-based.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("builder: line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
