package bt

import (
	"errors"
	"fmt"
)

var (
	ErrNoRoot         = errors.New("bt: tree has no root")
	ErrUnknownNode    = errors.New("bt: node id out of range")
	ErrLeafChildren   = errors.New("bt: leaf nodes cannot have children")
	ErrHasParent      = errors.New("bt: node already has a parent")
	ErrCycle          = errors.New("bt: attaching would create a cycle")
	ErrInvertChildren = errors.New("bt: invert needs exactly one child")
	ErrOrphanNode     = errors.New("bt: node is not reachable from the root")
	ErrNilLeaf        = errors.New("bt: leaf has no implementation")
	ErrRootHasParent  = errors.New("bt: root cannot be a child")
)

// NodeError is returned when a leaf fails during a tick.
type NodeError struct {
	ID   NodeID
	Name string
	Err  error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("bt: node %d (%s): %v", e.ID, e.Name, e.Err)
}

func (e *NodeError) Unwrap() error { return e.Err }
