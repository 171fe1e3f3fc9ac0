//go:build integration

package mqtt

import (
	"sync"
	"testing"
	"time"
)

// Run against a local broker:
//
//	go test -tags=integration ./internal/infrastructure/mqtt/...

func TestIntegration_CommandRoundtrip(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.ClientID = "graylogic-audio-int-roundtrip"

	client, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	var (
		mu   sync.Mutex
		got  []string
		done = make(chan struct{}, 1)
	)
	err = client.Subscribe(Topics{}.AllCommands(), 1, func(topic string, _ []byte) error {
		sound, _ := SoundFromCommand(topic)
		mu.Lock()
		got = append(got, sound)
		mu.Unlock()
		done <- struct{}{}
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if !client.HasSubscription(Topics{}.AllCommands()) {
		t.Error("subscription not tracked")
	}

	if err := client.PublishJSON(Topics{}.Command("door"), map[string]string{"op": "play"}, false); err != nil {
		t.Fatalf("PublishJSON() error = %v", err)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("command not received")
	}
	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0] != "door" {
		t.Errorf("received = %v, want [door]", got)
	}

	if err := client.Unsubscribe(Topics{}.AllCommands()); err != nil {
		t.Errorf("Unsubscribe() error = %v", err)
	}
	if client.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d, want 0", client.SubscriptionCount())
	}
}

func TestIntegration_OnConnectRuns(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.ClientID = "graylogic-audio-int-onconnect"

	client, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	if err := client.Publish(Topics{}.State("door"), []byte(`{}`), 1, true); err != nil {
		t.Errorf("Publish() error = %v", err)
	}
}
