package wsconn

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/websocket"
)

// newFeedServer runs an in-process WebSocket endpoint driven by handler.
func newFeedServer(t *testing.T, handler func(conn *websocket.Conn)) (*httptest.Server, string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			t.Logf("accept: %v", err)
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "")
		if handler != nil {
			handler(conn)
		}
	}))
	return srv, "ws" + strings.TrimPrefix(srv.URL, "http")
}

// newTestClient builds a client with pings disabled so tests control all
// traffic on the wire.
func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	cfg := DefaultConfig(url, "test-feed")
	cfg.PingInterval = 0
	client, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func TestClientConnect(t *testing.T) {
	srv, url := newFeedServer(t, func(conn *websocket.Conn) {
		time.Sleep(100 * time.Millisecond)
	})
	defer srv.Close()

	client := newTestClient(t, url)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if got := client.State(); got != StateConnected {
		t.Errorf("state = %v, want %v", got, StateConnected)
	}
	if !client.IsConnected() {
		t.Error("IsConnected() = false after successful connect")
	}
}

func TestClientConnectRefused(t *testing.T) {
	client := newTestClient(t, "ws://127.0.0.1:59999")
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Connect(ctx); err == nil {
		t.Fatal("Connect succeeded against a closed port")
	}
	if got := client.State(); got != StateDisconnected {
		t.Errorf("state = %v, want %v", got, StateDisconnected)
	}
}

func TestClientSendJSONEncodesPayload(t *testing.T) {
	var mu sync.Mutex
	var received []byte

	srv, url := newFeedServer(t, func(conn *websocket.Conn) {
		_, data, err := conn.Read(context.Background())
		if err != nil {
			return
		}
		mu.Lock()
		received = data
		mu.Unlock()
	})
	defer srv.Close()

	client := newTestClient(t, url)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	sub := map[string]any{"method": "SUBSCRIBE", "symbols": []string{"ETH", "USDC"}}
	if err := client.SendJSON(ctx, sub); err != nil {
		t.Fatalf("SendJSON: %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(received) == 0 {
		t.Fatal("server received nothing")
	}
	var parsed map[string]any
	if err := json.Unmarshal(received, &parsed); err != nil {
		t.Fatalf("payload is not JSON: %v (%s)", err, received)
	}
	if parsed["method"] != "SUBSCRIBE" {
		t.Errorf("method = %v, want SUBSCRIBE", parsed["method"])
	}
}

func TestClientDeliversIncomingMessages(t *testing.T) {
	srv, url := newFeedServer(t, func(conn *websocket.Conn) {
		ctx := context.Background()
		for {
			msgType, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			if err := conn.Write(ctx, msgType, data); err != nil {
				return
			}
		}
	})
	defer srv.Close()

	client := newTestClient(t, url)
	defer client.Close()

	var mu sync.Mutex
	var got []byte
	delivered := make(chan struct{})
	client.OnMessage(func(ctx context.Context, msg []byte) {
		mu.Lock()
		got = msg
		mu.Unlock()
		close(delivered)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	want := []byte(`{"symbol":"ETH","price":"2340.5"}`)
	if err := client.Send(ctx, want); err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case <-delivered:
	case <-time.After(2 * time.Second):
		t.Fatal("echo never arrived")
	}

	mu.Lock()
	defer mu.Unlock()
	if string(got) != string(want) {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestClientStateTransitions(t *testing.T) {
	srv, url := newFeedServer(t, func(conn *websocket.Conn) {
		time.Sleep(100 * time.Millisecond)
	})
	defer srv.Close()

	client := newTestClient(t, url)
	defer client.Close()

	var mu sync.Mutex
	var states []State
	client.OnStateChange(func(state State, err error) {
		mu.Lock()
		states = append(states, state)
		mu.Unlock()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(states) < 2 {
		t.Fatalf("observed %d transitions (%v), want connecting then connected", len(states), states)
	}
	if states[0] != StateConnecting || states[1] != StateConnected {
		t.Errorf("transitions = %v, want [%v %v ...]", states, StateConnecting, StateConnected)
	}
}

func TestClientCloseIsIdempotent(t *testing.T) {
	srv, url := newFeedServer(t, func(conn *websocket.Conn) {
		ctx := context.Background()
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				return
			}
		}
	})
	defer srv.Close()

	client := newTestClient(t, url)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	if err := client.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := client.State(); got != StateClosed {
		t.Errorf("state = %v, want %v", got, StateClosed)
	}
	if err := client.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestClientSerializesConcurrentSends(t *testing.T) {
	var count atomic.Int32

	srv, url := newFeedServer(t, func(conn *websocket.Conn) {
		ctx := context.Background()
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				return
			}
			count.Add(1)
		}
	})
	defer srv.Close()

	client := newTestClient(t, url)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	const writers = 10
	const perWriter = 5
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				if err := client.SendJSON(ctx, map[string]int{"writer": id, "seq": j}); err != nil {
					t.Errorf("SendJSON: %v", err)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	time.Sleep(200 * time.Millisecond)
	if got := count.Load(); got != writers*perWriter {
		t.Errorf("server received %d messages, want %d", got, writers*perWriter)
	}
}

func TestClientDropsOversizedMessages(t *testing.T) {
	srv, url := newFeedServer(t, func(conn *websocket.Conn) {
		big := make([]byte, 1<<20)
		for i := range big {
			big[i] = 'x'
		}
		_ = conn.Write(context.Background(), websocket.MessageText, big)
		time.Sleep(100 * time.Millisecond)
	})
	defer srv.Close()

	cfg := DefaultConfig(url, "test-feed")
	cfg.PingInterval = 0
	cfg.MaxMessageSize = 100
	client, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	// The read limit kills the connection; within the initial backoff
	// window the client must not report connected.
	time.Sleep(300 * time.Millisecond)
	if client.State() == StateConnected {
		t.Error("still connected after oversized frame")
	}
}
