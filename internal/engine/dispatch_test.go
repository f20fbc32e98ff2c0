package engine

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/showbridge/midirelay/internal/settings"
	"github.com/showbridge/midirelay/sdk/contracts"
)

func TestInferMethod(t *testing.T) {
	tests := []struct {
		method   string
		jsonData string
		want     string
	}{
		{"GET", "", "GET"},
		{"post", "", "POST"},
		{"Put", "", "PUT"},
		{"PATCH", "", "PATCH"},
		{"delete", "", "DELETE"},
		{"", "", "GET"},
		{"", `{"a":1}`, "POST"},
		{"HEAD", "", "GET"},
		{"HEAD", `{"a":1}`, "POST"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, inferMethod(tc.method, tc.jsonData), "method=%q json=%q", tc.method, tc.jsonData)
	}
}

func TestDispatchFansOutAndIsolatesFailures(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		hits.Add(1)
	}))
	t.Cleanup(server.Close)

	ft := newFakeTransport(contracts.TransportPort{Name: "Keys", Direction: contracts.PortIn})
	store := settings.NewMemoryStore()
	require.NoError(t, store.Set("triggers", []contracts.Trigger{
		{
			ID:          "failing",
			MidiCommand: "noteon",
			Note:        "60",
			ActionType:  "http",
			// Nothing listens here; the connection is refused.
			URL: "http://127.0.0.1:1/hook",
		},
		{
			ID:          "working",
			MidiCommand: "noteon",
			Note:        "60",
			ActionType:  "http",
			URL:         server.URL,
		},
	}))
	r := newTestRelay(t, ft, func(o *contracts.RelayOptions) { o.Store = store })

	ft.emit("Keys", []byte{0x90, 60, 100})

	// Both triggers run: the refused connection becomes one APP-ERR entry
	// and must not stop the second trigger from firing.
	require.Eventually(t, func() bool {
		return hits.Load() == 1 &&
			len(entriesWith(r, contracts.DirectionAppError)) == 1 &&
			len(entriesWith(r, contracts.DirectionTrigger)) == 1
	}, waitFor, tick)

	appErr := entriesWith(r, contracts.DirectionAppError)[0]
	assert.Contains(t, appErr.Data, "failing")
}

func TestWebhookNon2xxLoggedNotRetried(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	ft := newFakeTransport(contracts.TransportPort{Name: "Keys", Direction: contracts.PortIn})
	store := settings.NewMemoryStore()
	require.NoError(t, store.Set("triggers", []contracts.Trigger{
		{ID: "t1", MidiCommand: "noteon", Note: "60", ActionType: "http", URL: server.URL},
	}))
	r := newTestRelay(t, ft, func(o *contracts.RelayOptions) { o.Store = store })

	ft.emit("Keys", []byte{0x90, 60, 100})

	require.Eventually(t, func() bool {
		return len(entriesWith(r, contracts.DirectionAppError)) == 1
	}, waitFor, tick)
	assert.Contains(t, entriesWith(r, contracts.DirectionAppError)[0].Data, "503")
	assert.Equal(t, int32(1), hits.Load())
}

func TestWebhookMethodAndBody(t *testing.T) {
	type captured struct {
		method      string
		contentType string
		body        string
	}
	got := make(chan captured, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		buf, _ := io.ReadAll(req.Body)
		got <- captured{method: req.Method, contentType: req.Header.Get("Content-Type"), body: string(buf)}
	}))
	t.Cleanup(server.Close)

	ft := newFakeTransport()
	store := settings.NewMemoryStore()
	require.NoError(t, store.Set("triggers", []contracts.Trigger{
		{ID: "t1", MidiCommand: "noteon", Note: "60", ActionType: "http", URL: server.URL, JSONData: `{"cue":"12"}`},
	}))
	r := newTestRelay(t, ft, func(o *contracts.RelayOptions) { o.Store = store })

	res, err := r.TestTrigger("t1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	c := <-got
	assert.Equal(t, "POST", c.method)
	assert.Equal(t, "application/json", c.contentType)
	assert.JSONEq(t, `{"cue":"12"}`, c.body)
}

func TestWebhookTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		<-release
	}))
	t.Cleanup(func() {
		close(release)
		server.Close()
	})

	ft := newFakeTransport()
	store := settings.NewMemoryStore()
	require.NoError(t, store.Set("triggers", []contracts.Trigger{
		{ID: "slow", MidiCommand: "noteon", Note: "60", ActionType: "http", URL: server.URL},
	}))
	r := newTestRelay(t, ft, func(o *contracts.RelayOptions) {
		o.Store = store
		o.HTTPTimeout = 50 * time.Millisecond
	})

	_, err := r.TestTrigger("slow")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout after 50ms")
}

func TestWebhookConnectionRefused(t *testing.T) {
	ft := newFakeTransport()
	store := settings.NewMemoryStore()
	require.NoError(t, store.Set("triggers", []contracts.Trigger{
		{ID: "refused", MidiCommand: "noteon", Note: "60", ActionType: "http", URL: "http://127.0.0.1:1/hook"},
	}))
	r := newTestRelay(t, ft, func(o *contracts.RelayOptions) { o.Store = store })

	_, err := r.TestTrigger("refused")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestWebhookMalformedJSONShortCircuits(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		hits.Add(1)
	}))
	t.Cleanup(server.Close)

	ft := newFakeTransport()
	store := settings.NewMemoryStore()
	require.NoError(t, store.Set("triggers", []contracts.Trigger{
		{ID: "bad", MidiCommand: "noteon", Note: "60", ActionType: "http", URL: server.URL, JSONData: `{not json`},
	}))
	r := newTestRelay(t, ft, func(o *contracts.RelayOptions) { o.Store = store })

	_, err := r.TestTrigger("bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON body")
	assert.Equal(t, int32(0), hits.Load())
}

func TestTestTriggerOnlyHTTP(t *testing.T) {
	ft := newFakeTransport()
	store := settings.NewMemoryStore()
	require.NoError(t, store.Set("triggers", []contracts.Trigger{
		{ID: "m", MidiCommand: "noteon", Note: "60", ActionType: "midi", OutputPort: "Synth"},
	}))
	r := newTestRelay(t, ft, func(o *contracts.RelayOptions) { o.Store = store })

	_, err := r.TestTrigger("m")
	assert.ErrorIs(t, err, ErrNotTestable)

	_, err = r.TestTrigger("nope")
	assert.ErrorIs(t, err, ErrTriggerNotFound)
}

func TestUnknownActionTypeOnlyWarns(t *testing.T) {
	ft := newFakeTransport()
	r := newTestRelay(t, ft, nil)

	// Calling the executor directly with a corrupt rule must neither panic
	// nor dispatch anything.
	r.executeTrigger(
		contracts.Trigger{ID: "x", MidiCommand: "noteon", ActionType: "carrier-pigeon"},
		contracts.MidiEvent{Type: contracts.CommandNoteOn, Note: 60},
	)
	assert.Empty(t, r.ActivityEntries())
}

func TestMIDIActionFallsBackToEventFields(t *testing.T) {
	ft := newFakeTransport(
		contracts.TransportPort{Name: "Keys", Direction: contracts.PortIn},
		contracts.TransportPort{Name: "Synth", Direction: contracts.PortOut},
	)
	store := settings.NewMemoryStore()
	require.NoError(t, store.Set("triggers", []contracts.Trigger{
		{
			ID:          "relay-note",
			MidiCommand: "noteon",
			Note:        contracts.Wildcard,
			ActionType:  "midi",
			OutputPort:  "Synth",
			// No output command/channel/note/velocity: everything comes
			// from the incoming event.
		},
	}))
	r := newTestRelay(t, ft, func(o *contracts.RelayOptions) { o.Store = store })

	ft.emit("Keys", []byte{0x92, 60, 100})

	require.Eventually(t, func() bool {
		return len(ft.sentTo("Synth")) == 1
	}, waitFor, tick)
	assert.Equal(t, []byte{0x92, 60, 100}, ft.sentTo("Synth")[0])

	require.Eventually(t, func() bool {
		return len(entriesWith(r, contracts.DirectionTrigger)) == 1
	}, waitFor, tick)
}

func TestMIDIActionOverrides(t *testing.T) {
	ft := newFakeTransport(
		contracts.TransportPort{Name: "Keys", Direction: contracts.PortIn},
		contracts.TransportPort{Name: "Synth", Direction: contracts.PortOut},
	)
	store := settings.NewMemoryStore()
	require.NoError(t, store.Set("triggers", []contracts.Trigger{
		{
			ID:            "remap",
			MidiCommand:   "noteon",
			Note:          "60",
			ActionType:    "midi",
			OutputPort:    "Synth",
			OutputCommand: "cc",
			OutputChannel: "1",
			OutputValue:   "127",
		},
	}))
	newTestRelay(t, ft, func(o *contracts.RelayOptions) { o.Store = store })

	ft.emit("Keys", []byte{0x90, 60, 100})

	require.Eventually(t, func() bool {
		return len(ft.sentTo("Synth")) == 1
	}, waitFor, tick)
	// Controller falls back to the event's (zero) controller; channel and
	// value come from the overrides.
	assert.Equal(t, []byte{0xB1, 0, 127}, ft.sentTo("Synth")[0])
}
