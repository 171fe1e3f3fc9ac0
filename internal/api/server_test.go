package api

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/gray-logic-audio/internal/bridge"
	"github.com/nerrad567/gray-logic-audio/internal/catalog"
	"github.com/nerrad567/gray-logic-audio/internal/host"
	"github.com/nerrad567/gray-logic-audio/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-audio/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-audio/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-audio/internal/media"
	"github.com/nerrad567/gray-logic-audio/internal/mixer"
	"github.com/nerrad567/gray-logic-audio/internal/sound"
	_ "github.com/nerrad567/gray-logic-audio/migrations"
)

// writeWAV writes a silent 16-bit mono PCM file of the given length.
func writeWAV(t *testing.T, root, rel string, seconds int) {
	t.Helper()
	const rate = 8000
	data := make([]byte, rate*seconds*2)

	var b bytes.Buffer
	le := binary.LittleEndian
	b.WriteString("RIFF")
	binary.Write(&b, le, uint32(4+(8+16)+(8+len(data)))) //nolint:errcheck // bytes.Buffer
	b.WriteString("WAVE")
	b.WriteString("fmt ")
	binary.Write(&b, le, uint32(16))     //nolint:errcheck // bytes.Buffer
	binary.Write(&b, le, uint16(1))      //nolint:errcheck // PCM
	binary.Write(&b, le, uint16(1))      //nolint:errcheck // channels
	binary.Write(&b, le, uint32(rate))   //nolint:errcheck // sample rate
	binary.Write(&b, le, uint32(rate*2)) //nolint:errcheck // byte rate
	binary.Write(&b, le, uint16(2))      //nolint:errcheck // block align
	binary.Write(&b, le, uint16(16))     //nolint:errcheck // bits per sample
	b.WriteString("data")
	binary.Write(&b, le, uint32(len(data))) //nolint:errcheck // bytes.Buffer
	b.Write(data)

	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(p, b.Bytes(), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

type testEnv struct {
	srv     *Server
	ts      *httptest.Server
	loop    *host.Loop
	bridge  *bridge.Bridge
	history catalog.History
	stop    func()
}

// newTestEnv wires a running loop and a migrated in-memory database behind
// an httptest server. Bridge events are delivered only by drain.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWith(t, nil)
}

// newTestEnvWith is newTestEnv with the server's commands wrapped by wrap.
func newTestEnvWith(t *testing.T, wrap func(sound.Commands) sound.Commands) *testEnv {
	t.Helper()

	root := t.TempDir()
	writeWAV(t, root, "sfx/door.wav", 10)

	db, err := database.Open(database.Config{Path: ":memory:", BusyTimeout: 1})
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // test cleanup
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	logger := logging.NewWithWriter(io.Discard, config.LoggingConfig{Level: "error"}, "test")
	lib := media.NewLibrary(config.MediaConfig{Root: root, Extensions: []string{".wav"}}, nil)
	mix := mixer.New()
	if err := mix.Declare("sfx", map[string]float64{"volume": 1}); err != nil {
		t.Fatalf("Declare() error = %v", err)
	}

	scene := host.NewScene(nil)
	mgr := sound.NewManager(sound.Options{Host: scene, Loader: lib, Buses: mix})
	loop := host.NewLoop(mgr, scene, 10*time.Millisecond, 16)

	history := catalog.NewSQLiteHistory(db.DB)
	hub := NewHub(config.WebSocketConfig{MaxMessageSize: 65536, PingInterval: 30, PongTimeout: 10}, logger)
	br := bridge.New(bridge.Options{
		Commands: mgr,
		Executor: loop,
		Stats:    mgr.Stats,
		Hub:      hub,
		History:  history,
	})

	var cmds sound.Commands = mgr
	if wrap != nil {
		cmds = wrap(mgr)
	}

	srv, err := New(Deps{
		WS:          config.WebSocketConfig{MaxMessageSize: 65536, PingInterval: 30, PongTimeout: 10},
		Logger:      logger,
		Version:     "test",
		Loop:        loop,
		Commands:    cmds,
		Stats:       mgr.Stats,
		Scene:       scene,
		Bridge:      br,
		Catalog:     catalog.NewSQLiteRepository(db.DB),
		History:     history,
		Mixer:       mix,
		Media:       lib,
		DB:          db,
		ExternalHub: hub,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		loop.Run(ctx) //nolint:errcheck // returns nil on cancel
		close(done)
	}()
	go hub.Run(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for loop.Stats().Status != host.StatusRunning {
		if time.Now().After(deadline) {
			t.Fatal("loop did not start")
		}
		time.Sleep(5 * time.Millisecond)
	}

	ts := httptest.NewServer(srv.buildRouter())
	var stopped bool
	stop := func() {
		if stopped {
			return
		}
		stopped = true
		cancel()
		<-done
	}
	t.Cleanup(func() {
		ts.Close()
		stop()
	})

	return &testEnv{srv: srv, ts: ts, loop: loop, bridge: br, history: history, stop: stop}
}

func (e *testEnv) drain() {
	e.bridge.Drain(context.Background())
}

func (e *testEnv) request(t *testing.T, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			rd = strings.NewReader(b)
		default:
			data, err := json.Marshal(b)
			if err != nil {
				t.Fatalf("marshal body: %v", err)
			}
			rd = bytes.NewReader(data)
		}
	}
	req, err := http.NewRequest(method, e.ts.URL+"/api/v1"+path, rd)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var out map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("%s %s: body is not a JSON object: %s", method, path, raw)
		}
	}
	return resp, out
}

func (e *testEnv) expect(t *testing.T, method, path string, body any, want int) map[string]any {
	t.Helper()
	resp, out := e.request(t, method, path, body)
	if resp.StatusCode != want {
		t.Fatalf("%s %s status = %d, want %d (body %v)", method, path, resp.StatusCode, want, out)
	}
	return out
}

func (e *testEnv) createDoor(t *testing.T) {
	t.Helper()
	e.expect(t, http.MethodPost, "/sounds", map[string]any{"name": "door", "path": "sfx/door.wav"}, http.StatusCreated)
}

func TestNewRequiresDependencies(t *testing.T) {
	if _, err := New(Deps{}); err == nil {
		t.Error("New(empty deps) error = nil, want error")
	}
	logger := logging.NewWithWriter(io.Discard, config.LoggingConfig{}, "test")
	if _, err := New(Deps{Logger: logger}); err == nil {
		t.Error("New(without loop) error = nil, want error")
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	out := env.expect(t, http.MethodGet, "/health", nil, http.StatusOK)
	if out["status"] != "ok" || out["loop"] != "running" || out["database"] != "ok" {
		t.Errorf("health = %v", out)
	}

	env.stop()
	out = env.expect(t, http.MethodGet, "/health", nil, http.StatusServiceUnavailable)
	if out["status"] != "degraded" {
		t.Errorf("status after stop = %v, want degraded", out["status"])
	}
	env.expect(t, http.MethodGet, "/sounds", nil, http.StatusServiceUnavailable)
}

func TestSoundLifecycle(t *testing.T) {
	env := newTestEnv(t)
	env.createDoor(t)

	out := env.expect(t, http.MethodPost, "/sounds", map[string]any{"name": "door", "path": "sfx/door.wav"}, http.StatusConflict)
	if out["code"] != ErrCodeConflict {
		t.Errorf("duplicate code = %v, want %s", out["code"], ErrCodeConflict)
	}

	out = env.expect(t, http.MethodGet, "/sounds", nil, http.StatusOK)
	if out["count"] != float64(1) {
		t.Errorf("count = %v, want 1", out["count"])
	}
	if loaded, _ := out["loaded"].([]any); len(loaded) != 1 || loaded[0] != "door" {
		t.Errorf("loaded = %v, want [door]", out["loaded"])
	}

	out = env.expect(t, http.MethodPost, "/sounds/door/play", nil, http.StatusOK)
	if out["code"] != "OK" || out["op"] != "play" {
		t.Errorf("play result = %v", out)
	}

	out = env.expect(t, http.MethodGet, "/sounds/door", nil, http.StatusOK)
	state, _ := out["state"].(map[string]any)
	parent, _ := state["parent"].(map[string]any)
	if parent["playing"] != true {
		t.Errorf("parent state = %v, want playing", parent)
	}
	if _, ok := out["entry"]; !ok {
		t.Error("GET /sounds/door has no catalog entry")
	}

	out = env.expect(t, http.MethodPatch, "/sounds/door", map[string]any{"volume": 0.5, "loop": true}, http.StatusOK)
	settings, _ := out["settings"].(map[string]any)
	if settings["volume"] != 0.5 || settings["loop"] != true {
		t.Errorf("updated settings = %v", settings)
	}
	out = env.expect(t, http.MethodPost, "/sounds/door/commands", map[string]any{"op": "volume"}, http.StatusOK)
	if out["value"] != 0.5 {
		t.Errorf("live volume = %v, want 0.5", out["value"])
	}

	env.expect(t, http.MethodDelete, "/sounds/door", nil, http.StatusNoContent)
	out = env.expect(t, http.MethodGet, "/sounds/door", nil, http.StatusNotFound)
	if out["sound_code"] != "DOES_NOT_EXIST" {
		t.Errorf("sound_code = %v, want DOES_NOT_EXIST", out["sound_code"])
	}
	env.expect(t, http.MethodDelete, "/sounds/door", nil, http.StatusNotFound)
	env.expect(t, http.MethodPatch, "/sounds/door", map[string]any{"volume": 1}, http.StatusNotFound)
}

func TestCreateSoundValidation(t *testing.T) {
	env := newTestEnv(t)

	env.expect(t, http.MethodPost, "/sounds", "{not json", http.StatusBadRequest)
	env.expect(t, http.MethodPost, "/sounds", map[string]any{"name": "door"}, http.StatusBadRequest)

	out := env.expect(t, http.MethodPost, "/sounds", map[string]any{"name": "ghost", "path": "sfx/missing.wav"}, http.StatusBadRequest)
	if out["sound_code"] != "INVALID_PATH" {
		t.Errorf("sound_code = %v, want INVALID_PATH", out["sound_code"])
	}

	// The engine rejected the clip, so the catalog entry is rolled back.
	out = env.expect(t, http.MethodGet, "/sounds", nil, http.StatusOK)
	if out["count"] != float64(0) {
		t.Errorf("count after rejected create = %v, want 0", out["count"])
	}
}

// playFails rejects every Play.
type playFails struct{ sound.Commands }

func (playFails) Play(string, sound.Selector) sound.Code { return sound.InvalidChild }

func TestCreateSoundAutoplayFailureRollsBack(t *testing.T) {
	env := newTestEnvWith(t, func(c sound.Commands) sound.Commands { return playFails{c} })

	body := map[string]any{"name": "door", "path": "sfx/door.wav", "autoplay": true}
	out := env.expect(t, http.MethodPost, "/sounds", body, http.StatusBadRequest)
	if out["sound_code"] != "INVALID_CHILD" {
		t.Errorf("sound_code = %v, want INVALID_CHILD", out["sound_code"])
	}

	var (
		names   []string
		tracked bool
	)
	err := env.loop.Do(context.Background(), func() {
		names = env.loop.Manager().Names()
		tracked = env.bridge.Tracked("door")
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if len(names) != 0 {
		t.Errorf("engine names = %v, want none", names)
	}
	if tracked {
		t.Error("door still tracked by the bridge")
	}

	out = env.expect(t, http.MethodGet, "/sounds", nil, http.StatusOK)
	if out["count"] != float64(0) {
		t.Errorf("count after failed autoplay = %v, want 0", out["count"])
	}

	// The name is free again.
	env.expect(t, http.MethodPost, "/sounds", map[string]any{"name": "door", "path": "sfx/door.wav"}, http.StatusCreated)
}

func TestSoundCommands(t *testing.T) {
	env := newTestEnv(t)
	env.createDoor(t)

	tests := []struct {
		name     string
		path     string
		body     any
		want     int
		wantCode string
	}{
		{"unknown sound", "/sounds/ghost/commands", map[string]any{"op": "play"}, http.StatusNotFound, "DOES_NOT_EXIST"},
		{"unknown op", "/sounds/door/commands", map[string]any{"op": "rewind"}, http.StatusBadRequest, ""},
		{"bad selector", "/sounds/door/commands", map[string]any{"op": "play", "selector": "sideways"}, http.StatusBadRequest, ""},
		{"invalid json", "/sounds/door/commands", "{", http.StatusBadRequest, ""},
		{"missing mixer group", "/sounds/door/commands", map[string]any{"op": "group_get", "param": "volume"}, http.StatusNotFound, "MISSING_MIXER_GROUP"},
		{"get volume", "/sounds/door/commands", map[string]any{"op": "volume"}, http.StatusOK, ""},
		{"pause", "/sounds/door/pause", nil, http.StatusOK, ""},
		{"mute", "/sounds/door/mute", nil, http.StatusOK, ""},
		{"stop", "/sounds/door/stop", nil, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := env.expect(t, http.MethodPost, tt.path, tt.body, tt.want)
			if tt.wantCode != "" && out["sound_code"] != tt.wantCode {
				t.Errorf("sound_code = %v, want %s", out["sound_code"], tt.wantCode)
			}
		})
	}
}

func TestBuses(t *testing.T) {
	env := newTestEnv(t)

	out := env.expect(t, http.MethodGet, "/buses", nil, http.StatusOK)
	if out["count"] != float64(1) {
		t.Fatalf("buses = %v", out)
	}

	out = env.expect(t, http.MethodPut, "/buses/sfx/volume", map[string]any{"value": 0.3}, http.StatusOK)
	if out["value"] != 0.3 {
		t.Errorf("value = %v, want 0.3", out["value"])
	}
	env.expect(t, http.MethodPut, "/buses/sfx/reverb", map[string]any{"value": 1}, http.StatusNotFound)
	env.expect(t, http.MethodPut, "/buses/sfx/volume", map[string]any{}, http.StatusBadRequest)

	out = env.expect(t, http.MethodDelete, "/buses/sfx/volume", nil, http.StatusOK)
	if out["value"] != float64(1) {
		t.Errorf("value after reset = %v, want 1", out["value"])
	}
	env.expect(t, http.MethodDelete, "/buses/music/volume", nil, http.StatusNotFound)
}

func TestNodes(t *testing.T) {
	env := newTestEnv(t)

	node := map[string]any{"id": "lobby", "position": map[string]any{"x": 1, "y": 2, "z": 3}}
	out := env.expect(t, http.MethodPost, "/nodes", node, http.StatusCreated)
	if out["parent"] != "root" {
		t.Errorf("parent = %v, want root", out["parent"])
	}
	env.expect(t, http.MethodPost, "/nodes", node, http.StatusConflict)
	env.expect(t, http.MethodPost, "/nodes", map[string]any{"id": "x", "parent": "nowhere"}, http.StatusNotFound)

	out = env.expect(t, http.MethodPut, "/nodes/lobby", map[string]any{"position": map[string]any{"x": 5}}, http.StatusOK)
	pos, _ := out["position"].(map[string]any)
	if pos["x"] != float64(5) {
		t.Errorf("moved position = %v, want x=5", pos)
	}
	env.expect(t, http.MethodPut, "/nodes/ghost", map[string]any{}, http.StatusNotFound)

	env.expect(t, http.MethodDelete, "/nodes/root", nil, http.StatusBadRequest)
	env.expect(t, http.MethodDelete, "/nodes/lobby", nil, http.StatusNoContent)

	out = env.expect(t, http.MethodGet, "/nodes", nil, http.StatusOK)
	if out["count"] != float64(1) {
		t.Errorf("count = %v, want 1 (root)", out["count"])
	}
}

func TestMedia(t *testing.T) {
	env := newTestEnv(t)
	env.createDoor(t)

	out := env.expect(t, http.MethodGet, "/media", nil, http.StatusOK)
	clips, _ := out["clips"].([]any)
	if len(clips) != 1 || clips[0] != "sfx/door.wav" {
		t.Errorf("clips = %v, want [sfx/door.wav]", out["clips"])
	}
	if out["cached"] != float64(1) {
		t.Errorf("cached = %v, want 1", out["cached"])
	}

	env.expect(t, http.MethodDelete, "/media/cache", nil, http.StatusNoContent)
	out = env.expect(t, http.MethodGet, "/media", nil, http.StatusOK)
	if out["cached"] != float64(0) {
		t.Errorf("cached after flush = %v, want 0", out["cached"])
	}
}

func TestHistory(t *testing.T) {
	env := newTestEnv(t)
	env.createDoor(t)
	env.expect(t, http.MethodPost, "/sounds/door/play", nil, http.StatusOK)
	env.drain()

	out := env.expect(t, http.MethodGet, "/sounds/door/history", nil, http.StatusOK)
	if n, _ := out["count"].(float64); n < 2 {
		t.Fatalf("history count = %v, want at least added and play", out["count"])
	}

	out = env.expect(t, http.MethodGet, "/history?limit=1", nil, http.StatusOK)
	if out["count"] != float64(1) {
		t.Errorf("limited count = %v, want 1", out["count"])
	}
	out = env.expect(t, http.MethodGet, "/history?sound=ghost", nil, http.StatusOK)
	if out["count"] != float64(0) {
		t.Errorf("ghost count = %v, want 0", out["count"])
	}

	env.expect(t, http.MethodGet, "/history?limit=0", nil, http.StatusBadRequest)
	env.expect(t, http.MethodGet, "/history?limit=abc", nil, http.StatusBadRequest)
}

func TestMetrics(t *testing.T) {
	env := newTestEnv(t)
	env.createDoor(t)

	out := env.expect(t, http.MethodGet, "/metrics", nil, http.StatusOK)
	engine, _ := out["engine"].(map[string]any)
	if engine["sounds"] != float64(1) {
		t.Errorf("engine = %v, want 1 sound", out["engine"])
	}
	loop, _ := out["loop"].(map[string]any)
	if loop["status"] != "running" {
		t.Errorf("loop = %v", out["loop"])
	}
}

func TestRequestIDHeader(t *testing.T) {
	env := newTestEnv(t)
	resp, _ := env.request(t, http.MethodGet, "/health", nil)
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}
}

func readWS(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second)) //nolint:errcheck // test
	var msg map[string]any
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	return msg
}

func TestWebSocket(t *testing.T) {
	env := newTestEnv(t)
	env.createDoor(t)
	env.drain()

	url := "ws" + strings.TrimPrefix(env.ts.URL, "http") + "/api/v1/ws?channels=*"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]any{"type": "ping", "id": "p1"}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if msg := readWS(t, conn); msg["type"] != WSTypePong || msg["id"] != "p1" {
		t.Errorf("ping reply = %v", msg)
	}

	cmd := map[string]any{
		"type":    "command",
		"id":      "c1",
		"payload": map[string]any{"sound": "door", "command": map[string]any{"op": "play"}},
	}
	if err := conn.WriteJSON(cmd); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	msg := readWS(t, conn)
	payload, _ := msg["payload"].(map[string]any)
	if msg["type"] != WSTypeResponse || payload["code"] != "OK" {
		t.Fatalf("command reply = %v", msg)
	}

	env.drain()
	msg = readWS(t, conn)
	if msg["type"] != WSTypeEvent || msg["event_type"] != bridge.ChannelChanged {
		t.Errorf("event = %v, want %s", msg, bridge.ChannelChanged)
	}

	if err := conn.WriteJSON(map[string]any{"type": "dance", "id": "d1"}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if msg := readWS(t, conn); msg["type"] != WSTypeError {
		t.Errorf("unknown type reply = %v, want error", msg)
	}
}

func TestBroadcastHonoursSubscriptions(t *testing.T) {
	logger := logging.NewWithWriter(io.Discard, config.LoggingConfig{}, "test")
	hub := NewHub(config.WebSocketConfig{}, logger)

	all := &WSClient{hub: hub, send: make(chan []byte, 4), subscriptions: map[string]struct{}{WSAllChannels: {}}}
	bus := &WSClient{hub: hub, send: make(chan []byte, 4), subscriptions: map[string]struct{}{bridge.ChannelBus: {}}}
	hub.Register(all)
	hub.Register(bus)

	hub.Broadcast(bridge.ChannelChanged, map[string]string{"sound": "door"})

	if len(all.send) != 1 {
		t.Errorf("wildcard client got %d messages, want 1", len(all.send))
	}
	if len(bus.send) != 0 {
		t.Errorf("bus client got %d messages, want 0", len(bus.send))
	}

	hub.Unregister(bus)
	if hub.ClientCount() != 1 {
		t.Errorf("ClientCount() = %d, want 1", hub.ClientCount())
	}
}
