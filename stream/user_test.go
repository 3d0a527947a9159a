package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betbot/goclob/types"
)

func testCreds() *types.APICredentials {
	return &types.APICredentials{
		Key:        "2d4a09b6-8d45-4a75-bbbe-6c533aad2d54",
		Secret:     "MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY=",
		Passphrase: "hunter2",
	}
}

// bench stream with unread channels for dispatch-level tests
func testStream(t *testing.T, eventBuffer int) *UserStream {
	t.Helper()
	config := DefaultConfig()
	config.EventBuffer = eventBuffer
	stream, err := NewUserStream(testCreds(), config)
	require.NoError(t, err)
	return stream
}

func TestNewUserStream_BadCredentials(t *testing.T) {
	_, err := NewUserStream(&types.APICredentials{Key: "not-a-uuid"}, nil)
	assert.Error(t, err)

	_, err = NewUserStream(nil, nil)
	assert.Error(t, err)
}

func TestDispatch_OrderEvent(t *testing.T) {
	stream := testStream(t, 4)

	stream.dispatch([]byte(`{"event_type":"order","id":"o1","asset_id":"123","side":"BUY","type":"PLACEMENT","original_size":"5","size_matched":"0"}`))

	select {
	case event := <-stream.Orders():
		assert.Equal(t, "o1", event.ID)
		assert.Equal(t, "123", event.AssetID)
		assert.Equal(t, "PLACEMENT", event.Type)
		assert.Equal(t, "5", event.OriginalSize)
	default:
		t.Fatal("order event was not dispatched")
	}
}

func TestDispatch_TradeEvent(t *testing.T) {
	stream := testStream(t, 4)

	stream.dispatch([]byte(`{"event_type":"trade","id":"t1","status":"MATCHED","price":"0.52","size":"10"}`))

	select {
	case event := <-stream.Trades():
		assert.Equal(t, "t1", event.ID)
		assert.Equal(t, "MATCHED", event.Status)
		assert.Equal(t, "0.52", event.Price)
	default:
		t.Fatal("trade event was not dispatched")
	}
}

func TestDispatch_Batch(t *testing.T) {
	stream := testStream(t, 4)

	stream.dispatch([]byte(`[{"event_type":"order","id":"o1"},{"event_type":"trade","id":"t1"}]`))

	assert.Len(t, stream.orders, 1)
	assert.Len(t, stream.trades, 1)
}

func TestDispatch_IgnoresTextFrames(t *testing.T) {
	stream := testStream(t, 4)

	stream.dispatch([]byte("PONG"))
	stream.dispatch([]byte("  "))
	stream.dispatch(nil)

	assert.Empty(t, stream.orders)
	assert.Empty(t, stream.trades)
	assert.Empty(t, stream.errs)
}

func TestDispatch_IgnoresUnknownEvents(t *testing.T) {
	stream := testStream(t, 4)

	stream.dispatch([]byte(`{"event_type":"tick_size_change","asset_id":"123"}`))

	assert.Empty(t, stream.orders)
	assert.Empty(t, stream.trades)
	assert.Empty(t, stream.errs)
}

func TestDispatch_MalformedJSON(t *testing.T) {
	stream := testStream(t, 4)

	stream.dispatch([]byte(`{"event_type":`))

	select {
	case err := <-stream.Errors():
		assert.Contains(t, err.Error(), "decode")
	default:
		t.Fatal("malformed frame should surface an error")
	}
}

func TestDispatch_DropsWhenFull(t *testing.T) {
	stream := testStream(t, 0)

	stream.dispatch([]byte(`{"event_type":"order","id":"o1"}`))

	select {
	case err := <-stream.Errors():
		assert.Contains(t, err.Error(), "dropped")
	default:
		t.Fatal("dropped event should surface an error")
	}
}

func TestUserStream_EndToEnd(t *testing.T) {
	upgrader := websocket.Upgrader{}
	subs := make(chan subscribeMessage, 4)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var sub subscribeMessage
		if err := conn.ReadJSON(&sub); err != nil {
			return
		}
		subs <- sub

		conn.WriteJSON(OrderEvent{EventType: EventOrder, ID: "o1", AssetID: "123", Type: "PLACEMENT"})
		conn.WriteMessage(websocket.TextMessage, []byte("PONG"))
		conn.WriteJSON([]TradeEvent{{EventType: EventTrade, ID: "t1", Status: "MATCHED"}})

		// hold the connection until the client hangs up
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	config := DefaultConfig()
	config.URL = "ws" + strings.TrimPrefix(server.URL, "http")

	stream, err := NewUserStream(testCreds(), config)
	require.NoError(t, err)
	require.NoError(t, stream.Subscribe("0xcondition"))

	require.NoError(t, stream.Start(context.Background()))
	defer stream.Stop()

	select {
	case sub := <-subs:
		assert.Equal(t, "USER", sub.Type)
		assert.Equal(t, testCreds().Key, sub.Auth.APIKey)
		assert.Equal(t, []string{"0xcondition"}, sub.Markets)
	case <-time.After(2 * time.Second):
		t.Fatal("server never saw the auth envelope")
	}

	select {
	case event := <-stream.Orders():
		assert.Equal(t, "o1", event.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("no order event")
	}

	select {
	case event := <-stream.Trades():
		assert.Equal(t, "t1", event.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("no trade event")
	}

	assert.Equal(t, 1, stream.SubscriptionCount())
}

func TestUserStream_StartTwice(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	config := DefaultConfig()
	config.URL = "ws" + strings.TrimPrefix(server.URL, "http")

	stream, err := NewUserStream(testCreds(), config)
	require.NoError(t, err)
	require.NoError(t, stream.Start(context.Background()))
	defer stream.Stop()

	assert.Error(t, stream.Start(context.Background()))
}
