package bt

import (
	"fmt"
	"strings"

	"github.com/zeusync/arenabot/internal/core/situation"
)

type node struct {
	kind     Kind
	label    string
	parent   NodeID
	children []NodeID

	guard   Guard
	task    Task
	newTask TaskFactory
}

// Tree owns every node of one behaviour tree. A Tree is not safe for
// concurrent use; give each agent its own via Clone.
type Tree struct {
	nodes []node
	root  NodeID
}

// New returns an empty tree.
func New() *Tree {
	return &Tree{root: NoNode}
}

func (t *Tree) add(n node) NodeID {
	n.parent = NoNode
	t.nodes = append(t.nodes, n)
	return NodeID(len(t.nodes) - 1)
}

// AddSelector adds an unattached selector and returns its id.
func (t *Tree) AddSelector(label string) NodeID {
	return t.add(node{kind: KindSelector, label: label})
}

// AddSequencer adds an unattached sequencer and returns its id.
func (t *Tree) AddSequencer(label string) NodeID {
	return t.add(node{kind: KindSequencer, label: label})
}

// AddInvert adds an unattached invert decorator and returns its id.
func (t *Tree) AddInvert(label string) NodeID {
	return t.add(node{kind: KindInvert, label: label})
}

// AddGuard adds an unattached guard leaf.
func (t *Tree) AddGuard(label string, g Guard) (NodeID, error) {
	if g == nil {
		return NoNode, fmt.Errorf("guard %q: %w", label, ErrNilLeaf)
	}
	return t.add(node{kind: KindGuard, label: label, guard: g}), nil
}

// AddTask adds an unattached task leaf built from factory.
func (t *Tree) AddTask(label string, factory TaskFactory) (NodeID, error) {
	if factory == nil {
		return NoNode, fmt.Errorf("task %q: %w", label, ErrNilLeaf)
	}
	task := factory()
	if task == nil {
		return NoNode, fmt.Errorf("task %q: %w", label, ErrNilLeaf)
	}
	return t.add(node{kind: KindTask, label: label, task: task, newTask: factory}), nil
}

func (t *Tree) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes)
}

// Attach appends child to parent's ordered children.
func (t *Tree) Attach(parent, child NodeID) error {
	if !t.valid(parent) || !t.valid(child) {
		return ErrUnknownNode
	}
	p := &t.nodes[parent]
	if p.kind.IsLeaf() {
		return fmt.Errorf("%s %q: %w", p.kind, p.label, ErrLeafChildren)
	}
	if p.kind == KindInvert && len(p.children) == 1 {
		return fmt.Errorf("%q: %w", p.label, ErrInvertChildren)
	}
	if child == t.root {
		return ErrRootHasParent
	}
	if t.nodes[child].parent != NoNode {
		return fmt.Errorf("%q: %w", t.nodes[child].label, ErrHasParent)
	}
	for at := parent; at != NoNode; at = t.nodes[at].parent {
		if at == child {
			return ErrCycle
		}
	}
	t.nodes[child].parent = parent
	p.children = append(p.children, child)
	return nil
}

// SetRoot designates the entry node.
func (t *Tree) SetRoot(id NodeID) error {
	if !t.valid(id) {
		return ErrUnknownNode
	}
	if t.nodes[id].parent != NoNode {
		return ErrRootHasParent
	}
	t.root = id
	return nil
}

// Validate checks the finished shape: a root exists, every node hangs off it
// and every invert has exactly one child.
func (t *Tree) Validate() error {
	if !t.valid(t.root) {
		return ErrNoRoot
	}
	for id := range t.nodes {
		n := &t.nodes[id]
		if n.kind == KindInvert && len(n.children) != 1 {
			return fmt.Errorf("%q: %w", n.label, ErrInvertChildren)
		}
		if NodeID(id) != t.root && n.parent == NoNode {
			return fmt.Errorf("%s %q: %w", n.kind, n.label, ErrOrphanNode)
		}
	}
	return nil
}

func (t *Tree) Root() NodeID { return t.root }

// Len is the number of nodes in the tree.
func (t *Tree) Len() int { return len(t.nodes) }

func (t *Tree) Kind(id NodeID) Kind { return t.nodes[id].kind }

func (t *Tree) Label(id NodeID) string { return t.nodes[id].label }

// Children returns a copy of id's children in evaluation order.
func (t *Tree) Children(id NodeID) []NodeID {
	return append([]NodeID(nil), t.nodes[id].children...)
}

// Tick evaluates the tree once. A leaf error aborts the tick and is returned
// as a *NodeError.
func (t *Tree) Tick(s *situation.Situation) (NodeStatus, error) {
	if !t.valid(t.root) {
		return NodeStatus{Status: StatusFailure, Origin: NoNode}, ErrNoRoot
	}
	return t.tick(t.root, s)
}

// Evaluate ticks the tree and always returns an output: the neutral one when
// no task produced output or the tick failed.
func (t *Tree) Evaluate(s *situation.Situation) situation.ControlOutput {
	ns, err := t.Tick(s)
	if err != nil || ns.Output == nil {
		return situation.Neutral()
	}
	return ns.Output.Clamped()
}

func (t *Tree) tick(id NodeID, s *situation.Situation) (NodeStatus, error) {
	n := &t.nodes[id]
	switch n.kind {
	case KindGuard:
		ok, err := n.guard.Check(s)
		if err != nil {
			return NodeStatus{Status: StatusFailure, Origin: id}, &NodeError{ID: id, Name: n.label, Err: err}
		}
		if ok {
			return NodeStatus{Status: StatusSuccess, Origin: id}, nil
		}
		return NodeStatus{Status: StatusFailure, Origin: id}, nil

	case KindTask:
		st, out, err := n.task.Run(s)
		if err != nil {
			return NodeStatus{Status: StatusFailure, Origin: id}, &NodeError{ID: id, Name: n.label, Err: err}
		}
		if st == StatusFailure {
			return NodeStatus{Status: st, Origin: id}, nil
		}
		return NodeStatus{Status: st, Output: &out, Origin: id}, nil

	case KindSequencer:
		last := NodeStatus{Status: StatusSuccess, Origin: id}
		for i, c := range n.children {
			ns, err := t.tick(c, s)
			if err != nil {
				return ns, err
			}
			switch ns.Status {
			case StatusFailure:
				t.resetAll(n.children[i+1:])
				return NodeStatus{Status: StatusFailure, Origin: ns.Origin}, nil
			case StatusRunning:
				t.resetAll(n.children[i+1:])
				return ns, nil
			}
			last = ns
		}
		return last, nil

	case KindSelector:
		for i, c := range n.children {
			ns, err := t.tick(c, s)
			if err != nil {
				return ns, err
			}
			if ns.Status != StatusFailure {
				t.resetAll(n.children[i+1:])
				return ns, nil
			}
		}
		return NodeStatus{Status: StatusFailure, Origin: id}, nil

	case KindInvert:
		if len(n.children) != 1 {
			return NodeStatus{Status: StatusFailure, Origin: id}, fmt.Errorf("%q: %w", n.label, ErrInvertChildren)
		}
		ns, err := t.tick(n.children[0], s)
		if err != nil {
			return ns, err
		}
		switch ns.Status {
		case StatusSuccess:
			ns.Status = StatusFailure
		case StatusFailure:
			ns.Status = StatusSuccess
		}
		return ns, nil
	}
	return NodeStatus{Status: StatusFailure, Origin: id}, fmt.Errorf("%w: kind %d", ErrUnknownNode, n.kind)
}

// Reset drops the progress of every task in the tree.
func (t *Tree) Reset() {
	for i := range t.nodes {
		if t.nodes[i].task != nil {
			t.nodes[i].task.Reset()
		}
	}
}

// ResetSubtree drops the progress of every task under id.
func (t *Tree) ResetSubtree(id NodeID) {
	n := &t.nodes[id]
	if n.task != nil {
		n.task.Reset()
	}
	t.resetAll(n.children)
}

func (t *Tree) resetAll(ids []NodeID) {
	for _, id := range ids {
		t.ResetSubtree(id)
	}
}

// Clone returns an independent tree with the same shape. Guards are shared;
// every task is rebuilt from its factory, so clones start without progress.
func (t *Tree) Clone() *Tree {
	c := &Tree{nodes: make([]node, len(t.nodes)), root: t.root}
	for i, n := range t.nodes {
		n.children = append([]NodeID(nil), n.children...)
		if n.newTask != nil {
			n.task = n.newTask()
		}
		c.nodes[i] = n
	}
	return c
}

// String renders the tree in the tab-indented form the text builder reads.
func (t *Tree) String() string {
	if !t.valid(t.root) {
		return ""
	}
	var b strings.Builder
	var walk func(id NodeID, depth int)
	walk = func(id NodeID, depth int) {
		b.WriteString(strings.Repeat("\t", depth))
		b.WriteString(t.nodes[id].label)
		b.WriteByte('\n')
		for _, c := range t.nodes[id].children {
			walk(c, depth+1)
		}
	}
	walk(t.root, 0)
	return b.String()
}
