package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/betbot/goclob/pkg/logger"
	"github.com/betbot/goclob/types"
)

// subscribeMessage is the auth-plus-subscription envelope the user channel
// expects, both on connect and for incremental subscriptions.
type subscribeMessage struct {
	Auth    authPayload `json:"auth"`
	Markets []string    `json:"markets,omitempty"`
	Type    string      `json:"type"`
}

type authPayload struct {
	APIKey     string `json:"apiKey"`
	Secret     string `json:"secret"`
	Passphrase string `json:"passphrase"`
}

// UserStream is a user-channel connection for one account. Events fan out on
// the Orders and Trades channels; a full channel drops the event and reports
// it on Errors rather than stalling the read loop.
type UserStream struct {
	config *Config
	creds  *types.APICredentials

	connMu sync.Mutex
	conn   *websocket.Conn

	subMu   sync.Mutex
	markets map[string]bool

	orders chan OrderEvent
	trades chan TradeEvent
	errs   chan error

	runMu    sync.Mutex
	running  bool
	cancel   context.CancelFunc
	done     chan struct{}
	attempts int
}

// NewUserStream validates the credentials and prepares a stream. Nothing
// connects until Start.
func NewUserStream(creds *types.APICredentials, config *Config) (*UserStream, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	if config == nil {
		config = DefaultConfig()
	}
	return &UserStream{
		config:  config,
		creds:   creds,
		markets: make(map[string]bool),
		orders:  make(chan OrderEvent, config.EventBuffer),
		trades:  make(chan TradeEvent, config.EventBuffer),
		errs:    make(chan error, config.ErrorBuffer),
	}, nil
}

// Orders delivers the account's order lifecycle events.
func (s *UserStream) Orders() <-chan OrderEvent { return s.orders }

// Trades delivers the account's fills.
func (s *UserStream) Trades() <-chan TradeEvent { return s.trades }

// Errors delivers non-fatal stream errors: parse failures, dropped events,
// exhausted reconnects.
func (s *UserStream) Errors() <-chan error { return s.errs }

// Start connects, authenticates, and begins reading. It returns once the
// first connection is up; later disconnects are handled by reconnecting in
// the background until the attempt budget runs out.
func (s *UserStream) Start(ctx context.Context) error {
	s.runMu.Lock()
	if s.running {
		s.runMu.Unlock()
		return errors.New("stream already running")
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.running = true
	s.cancel = cancel
	s.done = done
	s.runMu.Unlock()

	if err := s.connect(ctx); err != nil {
		cancel()
		close(done)
		s.runMu.Lock()
		s.running = false
		s.runMu.Unlock()
		return err
	}

	go s.readLoop(ctx, done)
	go s.pingLoop(ctx)
	return nil
}

// Stop closes the connection and waits briefly for the read loop to exit.
// Safe to call more than once.
func (s *UserStream) Stop() {
	s.runMu.Lock()
	if !s.running {
		s.runMu.Unlock()
		return
	}
	s.running = false
	cancel, done := s.cancel, s.done
	s.runMu.Unlock()

	cancel()
	s.closeConn()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		logger.Warn("user stream did not shut down cleanly")
	}
}

// Subscribe adds markets (condition ids) to the stream. Already-subscribed
// markets are skipped; new ones take effect immediately when connected and
// are replayed after every reconnect.
func (s *UserStream) Subscribe(markets ...string) error {
	s.subMu.Lock()
	added := make([]string, 0, len(markets))
	for _, market := range markets {
		if !s.markets[market] {
			s.markets[market] = true
			added = append(added, market)
		}
	}
	s.subMu.Unlock()

	if len(added) == 0 {
		return nil
	}

	s.connMu.Lock()
	defer s.connMu.Unlock()
	if s.conn == nil {
		return nil
	}
	return s.conn.WriteJSON(s.envelope(added))
}

// SubscriptionCount reports how many markets the stream follows.
func (s *UserStream) SubscriptionCount() int {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	return len(s.markets)
}

func (s *UserStream) envelope(markets []string) subscribeMessage {
	return subscribeMessage{
		Auth: authPayload{
			APIKey:     s.creds.Key,
			Secret:     s.creds.Secret,
			Passphrase: s.creds.Passphrase,
		},
		Markets: markets,
		Type:    "USER",
	}
}

func (s *UserStream) allMarkets() []string {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	markets := make([]string, 0, len(s.markets))
	for market := range s.markets {
		markets = append(markets, market)
	}
	return markets
}

// connect dials and sends the auth envelope with every known subscription.
func (s *UserStream) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: s.config.HandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, s.config.URL, nil)
	if err != nil {
		return errors.Wrap(err, "dial user channel")
	}
	if err := conn.WriteJSON(s.envelope(s.allMarkets())); err != nil {
		conn.Close()
		return errors.Wrap(err, "authenticate user channel")
	}

	s.connMu.Lock()
	if s.conn != nil {
		s.conn.Close()
	}
	s.conn = conn
	s.connMu.Unlock()

	s.runMu.Lock()
	s.attempts = 0
	s.runMu.Unlock()
	return nil
}

func (s *UserStream) current() *websocket.Conn {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	return s.conn
}

func (s *UserStream) closeConn() {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if s.conn != nil {
		s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.conn.Close()
		s.conn = nil
	}
}

func (s *UserStream) readLoop(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		if ctx.Err() != nil {
			return
		}
		conn := s.current()
		if conn == nil {
			if !s.redial(ctx) {
				return
			}
			continue
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			s.closeConn()
			if ctx.Err() != nil ||
				websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return
			}
			s.report(errors.Wrap(err, "read user channel"))
			if !s.redial(ctx) {
				return
			}
			continue
		}
		s.dispatch(message)
	}
}

// redial reconnects with linear backoff. It returns false when the context
// ends or the attempt budget is spent.
func (s *UserStream) redial(ctx context.Context) bool {
	for {
		s.runMu.Lock()
		s.attempts++
		attempt := s.attempts
		s.runMu.Unlock()

		if attempt > s.config.MaxReconnectAttempts {
			s.report(errors.Errorf("giving up after %d reconnect attempts", s.config.MaxReconnectAttempts))
			return false
		}

		delay := s.config.ReconnectDelay * time.Duration(attempt)
		if delay > s.config.MaxReconnectDelay {
			delay = s.config.MaxReconnectDelay
		}
		logger.WithField("attempt", attempt).Debugf("reconnecting user stream in %s", delay)

		select {
		case <-ctx.Done():
			return false
		case <-time.After(delay):
		}

		if err := s.connect(ctx); err != nil {
			s.report(err)
			continue
		}
		return true
	}
}

func (s *UserStream) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.connMu.Lock()
			conn := s.conn
			if conn != nil {
				if err := conn.WriteMessage(websocket.TextMessage, []byte("PING")); err != nil {
					logger.Debugf("user stream ping failed: %v", err)
				}
			}
			s.connMu.Unlock()
		}
	}
}

// dispatch routes one frame. The channel speaks JSON objects and arrays of
// objects; bare text frames are liveness PONGs.
func (s *UserStream) dispatch(data []byte) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || (data[0] != '{' && data[0] != '[') {
		return
	}

	if data[0] == '[' {
		var batch []json.RawMessage
		if err := json.Unmarshal(data, &batch); err != nil {
			s.report(errors.Wrap(err, "decode event batch"))
			return
		}
		for _, item := range batch {
			s.dispatchOne(item)
		}
		return
	}
	s.dispatchOne(data)
}

func (s *UserStream) dispatchOne(data []byte) {
	var envelope struct {
		EventType EventType `json:"event_type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		s.report(errors.Wrap(err, "decode event"))
		return
	}

	switch envelope.EventType {
	case EventOrder:
		var event OrderEvent
		if err := json.Unmarshal(data, &event); err != nil {
			s.report(errors.Wrap(err, "decode order event"))
			return
		}
		select {
		case s.orders <- event:
		default:
			s.report(errors.Errorf("order channel full, dropped event %s", event.ID))
		}
	case EventTrade:
		var event TradeEvent
		if err := json.Unmarshal(data, &event); err != nil {
			s.report(errors.Wrap(err, "decode trade event"))
			return
		}
		select {
		case s.trades <- event:
		default:
			s.report(errors.Errorf("trade channel full, dropped event %s", event.ID))
		}
	}
}

func (s *UserStream) report(err error) {
	select {
	case s.errs <- err:
	default:
	}
}
