// Package agent wraps a behaviour tree into a bot that always answers a tick
// with a control output, whatever goes wrong inside the tree.
package agent

import (
	"fmt"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/zeusync/arenabot/internal/core/bt"
	"github.com/zeusync/arenabot/internal/core/observability/log"
	"github.com/zeusync/arenabot/internal/core/situation"
)

const defaultHistory = 256

// Bot owns one tree instance. Ticks are serialised.
type Bot struct {
	name string

	mu   sync.Mutex
	tree *bt.Tree

	log   log.Log
	hub   *sentry.Hub
	mem   Memory
	clock func() time.Time
}

type Option func(*Bot)

// WithHub reports recovered panics through a clone of hub instead of the
// current hub.
func WithHub(hub *sentry.Hub) Option { return func(b *Bot) { b.hub = hub } }

// WithMemory replaces the default decision history.
func WithMemory(mem Memory) Option { return func(b *Bot) { b.mem = mem } }

// WithClock sets the wall clock used to time ticks.
func WithClock(clock func() time.Time) Option { return func(b *Bot) { b.clock = clock } }

// New returns a bot named name running tree. The bot takes ownership of tree;
// pass a clone when the tree is shared.
func New(name string, tree *bt.Tree, logger log.Log, opts ...Option) *Bot {
	if logger == nil {
		logger = log.NewNop()
	}
	b := &Bot{
		name:  name,
		tree:  tree,
		log:   logger.With(log.String("component", "bot"), log.String("bot", name)),
		mem:   NewMemory(defaultHistory),
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.hub == nil {
		b.hub = sentry.CurrentHub()
	}
	b.hub = b.hub.Clone()
	b.hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("bot", name)
	})
	return b
}

func (b *Bot) Name() string   { return b.name }
func (b *Bot) Memory() Memory { return b.mem }

// Evaluate ticks the tree against s. It never fails: tree errors, missing
// outputs and panics all yield the neutral output.
func (b *Bot) Evaluate(s *situation.Situation) (out situation.ControlOutput) {
	b.mu.Lock()
	defer b.mu.Unlock()

	start := b.clock()
	rec := DecisionRecord{Status: bt.StatusFailure, Timestamp: start}
	if s != nil {
		rec.GameTime = s.GameTime
	}

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("bot %s: tick panic: %v", b.name, r)
			b.log.Error("tick panicked", log.Error(err))
			b.hub.Recover(err)
			// A panic may leave a task half way through its manoeuvre.
			b.tree.Reset()
			out = situation.Neutral()
			rec.Err = err.Error()
		}
		rec.Duration = b.clock().Sub(start)
		b.mem.AppendDecision(rec)
	}()

	if s == nil {
		rec.Err = "nil situation"
		return situation.Neutral()
	}

	ns, err := b.tree.Tick(s)
	rec.Status = ns.Status
	if ns.Origin != bt.NoNode {
		rec.Node = b.tree.Label(ns.Origin)
	}
	if err != nil {
		b.log.Warn("tick failed", log.Error(err), log.Float64("game_time", s.GameTime))
		rec.Err = err.Error()
		return situation.Neutral()
	}
	if ns.Output == nil {
		return situation.Neutral()
	}
	return ns.Output.Clamped()
}

// Reset drops task progress and decision history, as at the start of a match.
func (b *Bot) Reset() {
	b.mu.Lock()
	b.tree.Reset()
	b.mu.Unlock()
	b.mem.Reset()
}
