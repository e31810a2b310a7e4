// Package builder constructs behaviour trees from text or YAML/JSON
// descriptions. Leaf names are resolved through a Registry that callers
// create and pass in; there is no package-level registry.
package builder

import (
	"fmt"
	"sort"
	"sync"

	"github.com/zeusync/arenabot/internal/core/bt"
)

// Composite node names understood by every builder.
const (
	NameSelector  = "Selector"
	NameSequencer = "Sequencer"
	NameInvert    = "Invert"
)

// GuardFactory builds a guard from its string arguments. Arguments are
// resolved here, once, so the guard does no parsing per tick.
type GuardFactory func(args []string) (bt.Guard, error)

// TaskFactory validates arguments and returns a constructor for fresh tasks.
type TaskFactory func(args []string) (bt.TaskFactory, error)

// Registry maps leaf names to factories.
type Registry struct {
	mu     sync.RWMutex
	guards map[string]GuardFactory
	tasks  map[string]TaskFactory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		guards: make(map[string]GuardFactory),
		tasks:  make(map[string]TaskFactory),
	}
}

func (r *Registry) RegisterGuard(name string, factory GuardFactory) {
	r.mu.Lock()
	r.guards[name] = factory
	r.mu.Unlock()
}

func (r *Registry) RegisterTask(name string, factory TaskFactory) {
	r.mu.Lock()
	r.tasks[name] = factory
	r.mu.Unlock()
}

// NewGuard builds the named guard.
func (r *Registry) NewGuard(name string, args []string) (bt.Guard, error) {
	r.mu.RLock()
	f := r.guards[name]
	r.mu.RUnlock()
	if f == nil {
		return nil, fmt.Errorf("%w: guard %s", ErrUnknownNode, name)
	}
	return f(args)
}

// NewTask validates the arguments of the named task and returns its factory.
func (r *Registry) NewTask(name string, args []string) (bt.TaskFactory, error) {
	r.mu.RLock()
	f := r.tasks[name]
	r.mu.RUnlock()
	if f == nil {
		return nil, fmt.Errorf("%w: task %s", ErrUnknownNode, name)
	}
	return f(args)
}

// Kind reports what a node name resolves to.
func (r *Registry) Kind(name string) (bt.Kind, bool) {
	switch name {
	case NameSelector:
		return bt.KindSelector, true
	case NameSequencer:
		return bt.KindSequencer, true
	case NameInvert:
		return bt.KindInvert, true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.guards[name]; ok {
		return bt.KindGuard, true
	}
	if _, ok := r.tasks[name]; ok {
		return bt.KindTask, true
	}
	return 0, false
}

// Names lists every registered leaf name in order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.guards)+len(r.tasks))
	for n := range r.guards {
		names = append(names, n)
	}
	for n := range r.tasks {
		names = append(names, n)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// addNode resolves name through the registry and adds the node to tree.
func addNode(tree *bt.Tree, reg *Registry, name string, args []string, label string) (bt.NodeID, error) {
	kind, ok := reg.Kind(name)
	if !ok {
		return bt.NoNode, fmt.Errorf("%w: %s", ErrUnknownNode, name)
	}
	if !kind.IsLeaf() && len(args) > 0 {
		return bt.NoNode, fmt.Errorf("%w: %s takes no arguments", ErrBadArguments, name)
	}
	switch kind {
	case bt.KindSelector:
		return tree.AddSelector(label), nil
	case bt.KindSequencer:
		return tree.AddSequencer(label), nil
	case bt.KindInvert:
		return tree.AddInvert(label), nil
	case bt.KindGuard:
		g, err := reg.NewGuard(name, args)
		if err != nil {
			return bt.NoNode, err
		}
		return tree.AddGuard(label, g)
	default:
		f, err := reg.NewTask(name, args)
		if err != nil {
			return bt.NoNode, err
		}
		return tree.AddTask(label, f)
	}
}
