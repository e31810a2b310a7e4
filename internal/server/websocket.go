package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/zeusync/arenabot/internal/agent"
	"github.com/zeusync/arenabot/internal/core/observability/log"
	"github.com/zeusync/arenabot/internal/core/situation"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 1024,
}

const maxMessageSize = 64 << 10

// TickPacket asks for the output of one player's bot.
type TickPacket struct {
	Seq    uint64 `json:"seq"`
	Player int    `json:"player"`
	// Reset drops the bot's task progress before evaluating, as after a goal.
	Reset     bool                `json:"reset,omitempty"`
	Situation situation.Situation `json:"situation"`
}

// TickReply always carries an output; Error explains a neutral one.
type TickReply struct {
	Seq    uint64                  `json:"seq"`
	Player int                     `json:"player"`
	Output situation.ControlOutput `json:"output"`
	Error  string                  `json:"error,omitempty"`
}

// Session is one websocket connection and the bots it drives.
type Session struct {
	ID          string
	ConnectedAt time.Time

	conn    *websocket.Conn
	server  *Server
	limiter *rate.Limiter
	bots    map[int]*agent.Bot
	log     log.Log
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.closed.Load() {
		http.Error(w, ErrServerClosed.Error(), http.StatusServiceUnavailable)
		return
	}
	if err := s.auth.Check(r); err != nil {
		s.logger.Warn("rejected connection", log.String("remote", r.RemoteAddr), log.Error(err))
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", log.String("remote", r.RemoteAddr), log.Error(err))
		return
	}
	conn.SetReadLimit(maxMessageSize)

	id := uuid.NewString()
	sess := &Session{
		ID:          id,
		ConnectedAt: time.Now(),
		conn:        conn,
		server:      s,
		limiter:     s.config.TickLimiter.Limiter(),
		bots:        make(map[int]*agent.Bot),
		log: s.logger.WithContext(log.ContextWithRequestID(context.Background(), id)).
			With(log.String("remote", r.RemoteAddr)),
	}
	if !s.track(sess) {
		sess.log.Info("session refused", log.Error(ErrServerClosed))
		return
	}
	defer s.untrack(sess)

	sess.log.Info("session opened")
	sess.serve()
	sess.log.Info("session closed", log.Duration("duration", time.Since(sess.ConnectedAt)))
}

func (c *Session) serve() {
	defer c.conn.Close()
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Warn("read failed", log.Error(err))
			}
			return
		}

		var reply TickReply
		var pk TickPacket
		if err := json.Unmarshal(data, &pk); err != nil {
			reply = TickReply{Output: situation.Neutral(), Error: fmt.Errorf("%w: %v", ErrInvalidMessage, err).Error()}
		} else {
			reply = c.handle(&pk)
		}

		if timeout := c.server.config.WriteTimeout.Duration; timeout > 0 {
			_ = c.conn.SetWriteDeadline(time.Now().Add(timeout))
		}
		if err := c.conn.WriteJSON(reply); err != nil {
			c.log.Warn("write failed", log.Error(err))
			return
		}
	}
}

func (c *Session) handle(pk *TickPacket) TickReply {
	reply := TickReply{Seq: pk.Seq, Player: pk.Player, Output: situation.Neutral()}
	if c.limiter != nil && !c.limiter.Allow() {
		reply.Error = ErrRateLimited.Error()
		return reply
	}
	bot, err := c.bot(pk.Player)
	if err != nil {
		c.log.Warn("no bot", log.Int("player", pk.Player), log.Error(err))
		reply.Error = err.Error()
		return reply
	}
	if pk.Reset {
		bot.Reset()
	}
	reply.Output = bot.Evaluate(&pk.Situation)
	return reply
}

// bot returns the player's bot, creating it on first use.
func (c *Session) bot(player int) (*agent.Bot, error) {
	if player < 0 || player >= c.server.config.MaxPlayers {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPlayer, player)
	}
	if b, ok := c.bots[player]; ok {
		return b, nil
	}
	if c.server.trees == nil {
		return nil, ErrTreeUnavailable
	}
	tree, err := c.server.trees.NewTree()
	if err != nil {
		return nil, errors.Join(ErrTreeUnavailable, err)
	}
	b := agent.New(fmt.Sprintf("%s/%d", c.ID, player), tree, c.log, c.server.botOpts...)
	c.bots[player] = b
	return b, nil
}

// Close ends the session from outside its read loop.
func (c *Session) Close() {
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	_ = c.conn.Close()
}
