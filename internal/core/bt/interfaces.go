// Package bt is the behaviour tree that turns a Situation into a
// ControlOutput once per tick.
//
// A Tree stores its nodes in one slice and links them by NodeID, so every
// non-root node has exactly one parent and subtrees can be cloned without
// chasing pointers. Evaluation is synchronous: Running is a returned status,
// not a wait.
package bt

import (
	"github.com/zeusync/arenabot/internal/core/situation"
)

// Status is the result of ticking a node.
type Status int

const (
	StatusSuccess Status = iota
	StatusFailure
	StatusRunning
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	case StatusRunning:
		return "running"
	default:
		return "unknown"
	}
}

// NodeID indexes a node inside its Tree.
type NodeID int32

// NoNode is the NodeID of nothing.
const NoNode NodeID = -1

// Kind is the closed set of node variants.
type Kind uint8

const (
	KindSelector Kind = iota
	KindSequencer
	KindInvert
	KindGuard
	KindTask
)

func (k Kind) String() string {
	switch k {
	case KindSelector:
		return "Selector"
	case KindSequencer:
		return "Sequencer"
	case KindInvert:
		return "Invert"
	case KindGuard:
		return "Guard"
	case KindTask:
		return "Task"
	default:
		return "Unknown"
	}
}

// IsLeaf reports whether nodes of this kind never have children.
func (k Kind) IsLeaf() bool { return k == KindGuard || k == KindTask }

// NodeStatus is what a tick returns. Output is only set when a task produced
// one on the way up; Origin is the node the status came from.
type NodeStatus struct {
	Status Status
	Output *situation.ControlOutput
	Origin NodeID
}

// Guard is a stateless predicate over the situation. Guards never run.
type Guard interface {
	Check(s *situation.Situation) (bool, error)
}

// Task produces a control output. Tasks may keep progress between ticks;
// Reset drops it when the tree stops choosing the task.
type Task interface {
	Run(s *situation.Situation) (Status, situation.ControlOutput, error)
	Reset()
}

// TaskFactory creates a fresh Task. Trees keep the factory so clones get
// their own task state.
type TaskFactory func() Task

// GuardFunc wraps a function as a Guard.
type GuardFunc func(s *situation.Situation) (bool, error)

func (f GuardFunc) Check(s *situation.Situation) (bool, error) { return f(s) }

// TaskFunc wraps a stateless function as a Task.
type TaskFunc func(s *situation.Situation) (Status, situation.ControlOutput, error)

func (f TaskFunc) Run(s *situation.Situation) (Status, situation.ControlOutput, error) { return f(s) }

func (f TaskFunc) Reset() {}
