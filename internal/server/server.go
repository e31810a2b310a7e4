package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/arenabot/internal/agent"
	"github.com/zeusync/arenabot/internal/config"
	"github.com/zeusync/arenabot/internal/core/bt"
	"github.com/zeusync/arenabot/internal/core/bt/builder"
	"github.com/zeusync/arenabot/internal/core/observability/log"
)

// TreeProvider hands out a tree instance for each new bot.
type TreeProvider interface {
	NewTree() (*bt.Tree, error)
}

// CachedTree serves clones of one tree source, built once through Cache.
type CachedTree struct {
	Cache *builder.Cache
	// Name selects the source format by extension.
	Name string
	Data []byte
}

func (c CachedTree) NewTree() (*bt.Tree, error) {
	return c.Cache.Get(c.Name, c.Data)
}

// Server drives bots for websocket clients. Each connection is a session
// owning one bot per player index it has ticked.
type Server struct {
	config  config.Server
	logger  log.Log
	trees   TreeProvider
	auth    TokenAuth
	botOpts []agent.Option

	http     *http.Server
	sessions sync.Map // map[string]*Session
	count    atomic.Int64
	closed   atomic.Bool
}

// NewServer creates a server; opts are applied to every bot it creates.
func NewServer(cfg config.Server, logger log.Log, trees TreeProvider, opts ...agent.Option) *Server {
	if logger == nil {
		logger = log.NewNop()
	}
	s := &Server{
		config:  cfg,
		logger:  logger.With(log.String("component", "server")),
		trees:   trees,
		auth:    TokenAuth{Token: cfg.Token},
		botOpts: opts,
	}
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler routes /tick to the websocket endpoint and /healthz to the probe.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/tick", s.handleWebSocket)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

// Sessions is the number of open connections.
func (s *Server) Sessions() int { return int(s.count.Load()) }

// Run serves until ctx is cancelled or the listener fails, then shuts down.
func (s *Server) Run(ctx context.Context) error {
	if s.closed.Load() {
		return ErrServerClosed
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", log.String("addr", s.config.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		wait := s.config.ShutdownWait.Duration
		if wait <= 0 {
			wait = 5 * time.Second
		}
		stopCtx, cancel := context.WithTimeout(context.Background(), wait)
		defer cancel()
		return s.Stop(stopCtx)
	})
	return g.Wait()
}

// Stop refuses new connections, closes open sessions and shuts the listener down.
func (s *Server) Stop(ctx context.Context) error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.sessions.Range(func(_, v any) bool {
		v.(*Session).Close()
		return true
	})
	err := s.http.Shutdown(ctx)
	s.logger.Info("stopped", log.Int64("sessions_closed", s.count.Load()))
	return err
}

// track registers sess for Stop. It reports false, having closed sess, when
// the server stopped before sess was registered.
func (s *Server) track(sess *Session) bool {
	s.sessions.Store(sess.ID, sess)
	s.count.Add(1)
	// Stop may have swept the sessions between the closed check and Store.
	if s.closed.Load() {
		s.untrack(sess)
		sess.Close()
		return false
	}
	return true
}

func (s *Server) untrack(sess *Session) {
	s.sessions.Delete(sess.ID)
	s.count.Add(-1)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	status, code := "ok", http.StatusOK
	if s.closed.Load() {
		status, code = "closing", http.StatusServiceUnavailable
	}
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(Health{Status: status, Sessions: s.Sessions()})
}

// Health is the /healthz response body.
type Health struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}
