package sse

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*Manager, context.CancelFunc) {
	t.Helper()
	m := NewManager(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	go m.Start(ctx)
	return m, cancel
}

func TestManager_BroadcastsToClients(t *testing.T) {
	m, cancel := newTestManager(t)
	defer cancel()

	a := m.Connect()
	b := m.Connect()
	assert.Equal(t, 2, m.ClientCount())

	m.Emit(NewAssignmentDeletedEvent("#FF0000"))

	for _, c := range []*Client{a, b} {
		select {
		case evt := <-c.EventChan:
			assert.Equal(t, EventAssignmentDeleted, evt.Type)
			data, ok := evt.Data.(AssignmentDeletedEventData)
			require.True(t, ok)
			assert.Equal(t, "#FF0000", data.Color)
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}

	m.Disconnect(a.ID)
	m.Disconnect(a.ID)
	assert.Equal(t, 1, m.ClientCount())
}

func TestManager_ShutdownDropsLateEvents(t *testing.T) {
	m, cancel := newTestManager(t)
	defer cancel()

	require.NoError(t, m.Shutdown(context.Background()))
	assert.NotPanics(t, func() { m.Emit(NewHeartbeatEvent()) })
	require.NoError(t, m.Shutdown(context.Background()))
}

func TestHandler_StreamsEvents(t *testing.T) {
	m, cancel := newTestManager(t)
	defer cancel()

	srv := httptest.NewServer(NewHandler(m, slog.New(slog.NewTextHandler(io.Discard, nil))))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: connected\n", line)

	// Wait for the client to register before emitting.
	require.Eventually(t, func() bool { return m.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
	m.Emit(NewHighlightDeletedEvent("hl-1", "#00FF00"))

	// Skip to the event line, then read the rest of its frame up to the blank line.
	var frame strings.Builder
	for !strings.Contains(frame.String(), "highlight.deleted") {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		frame.WriteString(line)
	}
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if line == "\n" {
			break
		}
		frame.WriteString(line)
	}
	assert.Contains(t, frame.String(), "data: ")
	assert.Contains(t, frame.String(), `"highlight_id":"hl-1"`)
}
