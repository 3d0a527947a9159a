// Package stream delivers the exchange's authenticated user channel over
// websocket: live order and trade events for one account, with liveness
// pings and bounded reconnect.
package stream

import "time"

// DefaultUserURL is the production user-channel endpoint.
const DefaultUserURL = "wss://ws-subscriptions-clob.polymarket.com/ws/user"

// EventType tags a user-channel message.
type EventType string

const (
	EventOrder EventType = "order"
	EventTrade EventType = "trade"
)

// OrderEvent is a lifecycle update for one of the account's orders: a
// placement, a partial or full match, or a cancellation.
type OrderEvent struct {
	EventType    EventType `json:"event_type"`
	ID           string    `json:"id"`
	Market       string    `json:"market"`
	AssetID      string    `json:"asset_id"`
	Side         string    `json:"side"`
	Price        string    `json:"price"`
	OriginalSize string    `json:"original_size"`
	SizeMatched  string    `json:"size_matched"`
	Outcome      string    `json:"outcome"`
	Owner        string    `json:"order_owner"`
	Type         string    `json:"type"`
	Timestamp    string    `json:"timestamp"`
}

// TradeEvent is a fill involving the account, reported as it moves through
// matching and settlement.
type TradeEvent struct {
	EventType    EventType `json:"event_type"`
	ID           string    `json:"id"`
	Market       string    `json:"market"`
	AssetID      string    `json:"asset_id"`
	Side         string    `json:"side"`
	Size         string    `json:"size"`
	Price        string    `json:"price"`
	Status       string    `json:"status"`
	TakerOrderID string    `json:"taker_order_id"`
	Owner        string    `json:"trade_owner"`
	Timestamp    string    `json:"timestamp"`
}

// Config tunes the stream's connection behavior.
type Config struct {
	URL                  string
	HandshakeTimeout     time.Duration
	PingInterval         time.Duration
	ReconnectDelay       time.Duration
	MaxReconnectDelay    time.Duration
	MaxReconnectAttempts int
	EventBuffer          int
	ErrorBuffer          int
}

// DefaultConfig returns production settings: ten-second pings per the
// exchange's liveness requirement and up to ten reconnect attempts with
// linear backoff capped at thirty seconds.
func DefaultConfig() *Config {
	return &Config{
		URL:                  DefaultUserURL,
		HandshakeTimeout:     15 * time.Second,
		PingInterval:         10 * time.Second,
		ReconnectDelay:       2 * time.Second,
		MaxReconnectDelay:    30 * time.Second,
		MaxReconnectAttempts: 10,
		EventBuffer:          256,
		ErrorBuffer:          16,
	}
}
