package solana

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func wsTestURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestWSConfirmClient_Connect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Fatalf("upgrade: %v", err)
		}
		defer conn.Close()

		// Keep connection open
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	client, err := NewWSConfirmClient(context.Background(), wsTestURL(server), CommitmentConfirmed, nil)
	if err != nil {
		t.Fatalf("NewWSConfirmClient: %v", err)
	}
	defer client.Close()

	if client.closed.Load() {
		t.Error("client should not be closed")
	}
}

func TestWSConfirmClient_SubscribeSignature(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Fatalf("upgrade: %v", err)
		}
		defer c.Close()

		// Read subscribe request
		_, msg, err := c.ReadMessage()
		if err != nil {
			return
		}

		var req wsRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			t.Errorf("unmarshal request: %v", err)
			return
		}

		if req.Method != "signatureSubscribe" {
			t.Errorf("expected signatureSubscribe, got %s", req.Method)
		}
		if req.Params[0] != "testsig" {
			t.Errorf("expected testsig, got %v", req.Params[0])
		}

		// Send subscription confirmation
		resp := wsSubscribeResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  12345,
		}
		if err := c.WriteJSON(resp); err != nil {
			t.Errorf("write response: %v", err)
			return
		}

		// Deliver the one-shot confirmation
		time.Sleep(50 * time.Millisecond)
		notif := wsNotification{
			JSONRPC: "2.0",
			Method:  "signatureNotification",
			Params: &wsNotificationParams{
				Subscription: 12345,
				Result: wsNotificationResult{
					Context: &wsContext{Slot: 100},
					Value:   wsSignatureValue{Err: nil},
				},
			},
		}
		if err := c.WriteJSON(notif); err != nil {
			t.Errorf("write notification: %v", err)
			return
		}

		// Keep connection open
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	client, err := NewWSConfirmClient(context.Background(), wsTestURL(server), CommitmentConfirmed, nil)
	if err != nil {
		t.Fatalf("NewWSConfirmClient: %v", err)
	}
	defer client.Close()

	ch, err := client.SubscribeSignature(context.Background(), "testsig")
	if err != nil {
		t.Fatalf("SubscribeSignature: %v", err)
	}

	select {
	case notif, ok := <-ch:
		if !ok {
			t.Fatal("channel closed without notification")
		}
		if notif.Signature != "testsig" {
			t.Errorf("expected signature testsig, got %s", notif.Signature)
		}
		if notif.Slot != 100 {
			t.Errorf("expected slot 100, got %d", notif.Slot)
		}
		if notif.Err != nil {
			t.Errorf("expected no error, got %v", notif.Err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for notification")
	}

	// One-shot delivery: the channel is closed after the notification.
	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected channel closed after delivery")
		}
	case <-time.After(time.Second):
		t.Error("expected channel closed after delivery")
	}
}

func TestWSConfirmClient_Forget(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Fatalf("upgrade: %v", err)
		}
		defer c.Close()

		// Confirm the subscription, then swallow the unsubscribe that
		// Forget sends without ever delivering a notification.
		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				return
			}

			var req wsRequest
			if err := json.Unmarshal(msg, &req); err != nil {
				continue
			}
			if req.Method == "signatureSubscribe" {
				resp := wsSubscribeResponse{JSONRPC: "2.0", ID: req.ID, Result: 777}
				if err := c.WriteJSON(resp); err != nil {
					return
				}
			}
		}
	}))
	defer server.Close()

	client, err := NewWSConfirmClient(context.Background(), wsTestURL(server), CommitmentConfirmed, nil)
	if err != nil {
		t.Fatalf("NewWSConfirmClient: %v", err)
	}
	defer client.Close()

	ch, err := client.SubscribeSignature(context.Background(), "testsig")
	if err != nil {
		t.Fatalf("SubscribeSignature: %v", err)
	}

	client.Forget("testsig")

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected channel closed without a notification")
		}
	case <-time.After(time.Second):
		t.Fatal("expected channel closed after Forget")
	}

	client.subsMu.Lock()
	nSubs := len(client.subs)
	client.subsMu.Unlock()
	client.pendingSigsMu.Lock()
	nPending := len(client.pendingSigs)
	client.pendingSigsMu.Unlock()
	if nSubs != 0 || nPending != 0 {
		t.Errorf("expected empty subscription maps, got subs=%d pending=%d", nSubs, nPending)
	}

	// Unknown signatures are a no-op.
	client.Forget("neverseen")
}

func TestWSConfirmClient_SubscribeTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Fatalf("upgrade: %v", err)
		}
		defer c.Close()

		// Swallow the subscribe request and never confirm it.
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	cfg := DefaultWSConfig()
	cfg.SubscribeTimeout = 100 * time.Millisecond

	client, err := NewWSConfirmClient(context.Background(), wsTestURL(server), CommitmentConfirmed, &cfg)
	if err != nil {
		t.Fatalf("NewWSConfirmClient: %v", err)
	}
	defer client.Close()

	if _, err := client.SubscribeSignature(context.Background(), "testsig"); err == nil {
		t.Fatal("expected subscription timeout")
	}
}

func TestWSConfirmClient_Close(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Fatalf("upgrade: %v", err)
		}
		defer conn.Close()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	client, err := NewWSConfirmClient(context.Background(), wsTestURL(server), CommitmentConfirmed, nil)
	if err != nil {
		t.Fatalf("NewWSConfirmClient: %v", err)
	}

	if err := client.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	if _, err := client.SubscribeSignature(context.Background(), "sig"); err == nil {
		t.Error("expected error after close")
	}
}
