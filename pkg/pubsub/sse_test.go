package pubsub

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func receiveEvent(t *testing.T, sub Subscription) Event {
	t.Helper()
	select {
	case event, ok := <-sub.Events():
		if !ok {
			t.Fatal("Subscription channel closed unexpectedly")
		}
		return event
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for event")
	}
	return Event{}
}

func TestPublishDeliversToSubscriber(t *testing.T) {
	p := NewSSEPublisher()
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	sub, err := p.Subscribe(ctx, "graph")
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	defer sub.Close()

	if err := p.Publish("graph", "reloaded", GraphStatus{Snapshot: "deps.json", Targets: 4}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	event := receiveEvent(t, sub)
	if event.Topic != "graph" || event.Type != "reloaded" {
		t.Errorf("Expected graph/reloaded, got %s/%s", event.Topic, event.Type)
	}
	if event.Version != 1 {
		t.Errorf("Expected version 1, got %d", event.Version)
	}

	var status GraphStatus
	if err := json.Unmarshal(event.Data, &status); err != nil {
		t.Fatalf("Unmarshal event data: %v", err)
	}
	if status.Targets != 4 {
		t.Errorf("Expected 4 targets, got %d", status.Targets)
	}
}

func TestSubscribeReplaysLastEvent(t *testing.T) {
	p := NewSSEPublisher()
	defer p.Close()

	if err := p.Publish("graph", "reloaded", GraphStatus{Targets: 1}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if err := p.Publish("graph", "reloaded", GraphStatus{Targets: 2}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	sub, err := p.Subscribe(context.Background(), "graph")
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	defer sub.Close()

	event := receiveEvent(t, sub)
	if event.Version != 2 {
		t.Errorf("Expected replay of latest event (version 2), got version %d", event.Version)
	}
}

func TestSubscribeFreshTopicHasNoReplay(t *testing.T) {
	p := NewSSEPublisher()
	defer p.Close()

	sub, err := p.Subscribe(context.Background(), "untouched")
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	defer sub.Close()

	select {
	case event := <-sub.Events():
		t.Errorf("Expected no event on a fresh topic, got %+v", event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestTopicsAreIsolated(t *testing.T) {
	p := NewSSEPublisher()
	defer p.Close()

	sub, err := p.Subscribe(context.Background(), "graph")
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	defer sub.Close()

	if err := p.Publish("other", "noise", nil); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case event := <-sub.Events():
		t.Errorf("Expected no cross-topic delivery, got %+v", event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestContextCancelClosesSubscription(t *testing.T) {
	p := NewSSEPublisher()
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := p.Subscribe(ctx, "graph")
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	cancel()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		p.mu.RLock()
		_, active := p.subscriptions["graph"][sub.(*sseSubscription)]
		p.mu.RUnlock()
		if !active {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Error("Expected cancelled subscription to be removed from the publisher")
}

func TestPublishAfterClose(t *testing.T) {
	p := NewSSEPublisher()
	if err := p.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if err := p.Publish("graph", "reloaded", nil); err == nil {
		t.Error("Expected Publish on a closed publisher to fail")
	}
	if _, err := p.Subscribe(context.Background(), "graph"); err == nil {
		t.Error("Expected Subscribe on a closed publisher to fail")
	}
}

func TestWriteSSE(t *testing.T) {
	var buf bytes.Buffer
	event := Event{Topic: "graph", Type: "reloaded", Data: json.RawMessage(`{"targets":3}`), Version: 7}

	if err := WriteSSE(&buf, event); err != nil {
		t.Fatalf("WriteSSE() error = %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "data: ") || !strings.HasSuffix(out, "\n\n") {
		t.Errorf("Malformed SSE frame: %q", out)
	}

	var decoded Event
	if err := json.Unmarshal([]byte(strings.TrimSuffix(strings.TrimPrefix(out, "data: "), "\n\n")), &decoded); err != nil {
		t.Fatalf("Frame payload is not valid JSON: %v", err)
	}
	if decoded.Version != 7 {
		t.Errorf("Expected version 7, got %d", decoded.Version)
	}
}
