// Package natsrpc serves turns over NATS request/reply, for deployments
// where the channel connector speaks messaging instead of HTTP.
package natsrpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/flightdeck/adbot/pkg/domain"
)

// Error codes carried in the reply envelope.
const (
	ErrorParse = "PARSE_ERROR"
	ErrorTurn  = "TURN_FAILED"
)

// Reply statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// TurnHandler is the slice of the bot the transport needs.
type TurnHandler interface {
	Turn(ctx context.Context, activity *domain.Activity) (*domain.TurnResponse, error)
}

// Envelope is the reply published for every request.
type Envelope struct {
	Status       string         `json:"status"`
	Replies      []domain.Reply `json:"replies,omitempty"`
	ErrorCode    string         `json:"error_code,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
}

// Config holds the connection settings for the transport.
type Config struct {
	URL         string
	Subject     string
	ServiceName string
	TurnTimeout time.Duration
}

// Transport subscribes to a subject and dispatches each request as one
// bot turn.
type Transport struct {
	conn    *nats.Conn
	sub     *nats.Subscription
	cfg     Config
	bot     TurnHandler
	logger  *slog.Logger
	ownConn bool
}

// Option configures a Transport.
type Option func(*Transport)

// WithLogger sets the logger used by the transport.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Transport) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithConn reuses an existing NATS connection instead of dialing one.
// The caller stays responsible for closing it.
func WithConn(conn *nats.Conn) Option {
	return func(t *Transport) {
		t.conn = conn
		t.ownConn = false
	}
}

// New connects to NATS (unless WithConn supplied a connection) and
// returns a transport ready to Start.
func New(cfg Config, bot TurnHandler, opts ...Option) (*Transport, error) {
	if cfg.Subject == "" {
		return nil, errors.New("natsrpc: subject is required")
	}
	if cfg.TurnTimeout <= 0 {
		cfg.TurnTimeout = 30 * time.Second
	}

	t := &Transport{
		cfg:     cfg,
		bot:     bot,
		logger:  slog.Default(),
		ownConn: true,
	}
	for _, opt := range opts {
		opt(t)
	}

	if t.conn == nil {
		conn, err := nats.Connect(cfg.URL,
			nats.Name(cfg.ServiceName),
			nats.ReconnectWait(2*time.Second),
			nats.MaxReconnects(-1),
		)
		if err != nil {
			return nil, fmt.Errorf("natsrpc: connect: %w", err)
		}
		t.conn = conn
	}

	return t, nil
}

// Start subscribes to the configured subject. Requests are handled
// concurrently by the NATS delivery goroutines.
func (t *Transport) Start() error {
	sub, err := t.conn.Subscribe(t.cfg.Subject, t.handleRequest)
	if err != nil {
		return fmt.Errorf("natsrpc: subscribe %s: %w", t.cfg.Subject, err)
	}
	t.sub = sub
	t.logger.Info("listening for turns", "subject", t.cfg.Subject)
	return nil
}

func (t *Transport) handleRequest(msg *nats.Msg) {
	var activity domain.Activity
	if err := json.Unmarshal(msg.Data, &activity); err != nil {
		t.logger.Warn("invalid turn request", "error", err)
		t.respondError(msg, ErrorParse, "invalid request format")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), t.cfg.TurnTimeout)
	defer cancel()

	resp, err := t.bot.Turn(ctx, &activity)
	if err != nil {
		t.logger.Error("turn failed", "error", err, "conversation_id", activity.Conversation.ID)
		t.respondError(msg, ErrorTurn, err.Error())
		return
	}

	t.respond(msg, Envelope{Status: StatusOK, Replies: resp.Replies})
}

func (t *Transport) respond(msg *nats.Msg, env Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		t.logger.Error("marshal reply failed", "error", err)
		return
	}
	if err := msg.Respond(data); err != nil {
		t.logger.Error("send reply failed", "error", err)
	}
}

func (t *Transport) respondError(msg *nats.Msg, code, message string) {
	t.respond(msg, Envelope{
		Status:       StatusError,
		ErrorCode:    code,
		ErrorMessage: message,
	})
}

// Close drains the subscription and closes the connection if this
// transport dialed it.
func (t *Transport) Close() error {
	if t.sub != nil {
		if err := t.sub.Drain(); err != nil {
			t.logger.Warn("drain subscription failed", "error", err)
		}
	}
	if t.conn != nil && t.ownConn {
		t.conn.Close()
	}
	return nil
}
