package bridge

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/nerrad567/gray-logic-audio/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-audio/internal/sound"
)

func TestCommandIngress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if err := f.bridge.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	handler := f.pub.handlers[mqtt.Topics{}.AllCommands()]
	if handler == nil {
		t.Fatal("command topic not subscribed")
	}

	tests := []struct {
		name      string
		topic     string
		payload   string
		wantCode  sound.Code
		wantError bool
	}{
		{"play", "graylogic/audio/command/door", `{"id":"1","op":"play"}`, sound.OK, false},
		{"unknown sound", "graylogic/audio/command/ghost", `{"op":"stop"}`, sound.DoesNotExist, false},
		{"bad json", "graylogic/audio/command/door", `{`, sound.OK, true},
		{"bad op", "graylogic/audio/command/door", `{"op":"explode"}`, sound.OK, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, _ := mqtt.SoundFromCommand(tt.topic)
			before := len(f.pub.on(mqtt.Topics{}.Result(name)))
			if err := handler(tt.topic, []byte(tt.payload)); err != nil {
				t.Fatalf("handler error = %v", err)
			}
			results := f.pub.on(mqtt.Topics{}.Result(name))
			if len(results) != before+1 {
				t.Fatalf("results = %d, want %d", len(results), before+1)
			}
			var res struct {
				Code  string `json:"code"`
				Error string `json:"error"`
			}
			if err := json.Unmarshal(results[len(results)-1].payload, &res); err != nil {
				t.Fatalf("result payload: %v", err)
			}
			if (res.Error != "") != tt.wantError {
				t.Errorf("error = %q, wantError %v", res.Error, tt.wantError)
			}
			if !tt.wantError && res.Code != tt.wantCode.String() {
				t.Errorf("code = %s, want %s", res.Code, tt.wantCode)
			}
		})
	}

	if playing, _ := f.mgr.IsPlaying("door", sound.Parent); !playing {
		t.Error("door not playing after play command")
	}

	// Messages on other topics are ignored without a reply.
	if err := handler("graylogic/audio/command/a/b", []byte(`{"op":"play"}`)); err != nil {
		t.Errorf("handler error = %v", err)
	}

	if err := f.bridge.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if len(f.pub.handlers) != 0 {
		t.Error("command subscription not removed")
	}
}

func TestStartWithoutPublisher(t *testing.T) {
	b := New(Options{})
	if err := b.Start(context.Background()); err != nil {
		t.Errorf("Start() error = %v", err)
	}
	if err := b.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}
