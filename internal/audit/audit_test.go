package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu     sync.Mutex
	events []*Event
}

func (s *recordingSink) Write(ctx context.Context, event *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) snapshot() []*Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Event(nil), s.events...)
}

func TestLogger_LogFillsDefaults(t *testing.T) {
	sink := &recordingSink{}
	l := NewLogger(sink)

	event := &Event{Result: ResultGranted, Status: http.StatusOK}
	require.NoError(t, l.Log(context.Background(), event))

	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.False(t, event.CreatedAt.IsZero())
	assert.Len(t, sink.snapshot(), 1)
}

func TestLogger_LogFromContext(t *testing.T) {
	sink := &recordingSink{}
	l := NewLogger(sink)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/has_permission/token1234", nil)
	req.Header.Set("User-Agent", "audit-test")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Response().Header().Set(echo.HeaderXRequestID, "req-42")

	l.LogFromContext(c, "token1234", "write", ResultDenied, http.StatusOK)

	require.Eventually(t, func() bool { return len(sink.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	event := sink.snapshot()[0]
	assert.Equal(t, "req-42", event.RequestID)
	assert.Equal(t, "write", event.Permission)
	assert.Equal(t, ResultDenied, event.Result)
	assert.Equal(t, "audit-test", event.UserAgent)
	assert.NotEqual(t, "token1234", event.Token)
}

type slowSink struct {
	recordingSink
	delay time.Duration
}

func (s *slowSink) Write(ctx context.Context, event *Event) error {
	time.Sleep(s.delay)
	return s.recordingSink.Write(ctx, event)
}

func TestLogger_CloseWaitsForPendingWrites(t *testing.T) {
	sink := &slowSink{delay: 50 * time.Millisecond}
	l := NewLogger(sink)

	e := echo.New()
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/has_permission/token1234", nil)
		c := e.NewContext(req, httptest.NewRecorder())
		l.LogFromContext(c, "token1234", "read", ResultGranted, http.StatusOK)
	}

	l.Close()

	assert.Len(t, sink.snapshot(), 3)
}

func TestLogger_CloseWithoutWrites(t *testing.T) {
	l := NewLogger(&recordingSink{})

	done := make(chan struct{})
	go func() {
		l.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close blocked with no pending writes")
	}
}

func TestWriterSink_Write(t *testing.T) {
	var buf bytes.Buffer
	sink := NewWriterSink(&buf)

	require.NoError(t, sink.Write(context.Background(), &Event{Result: ResultTokenNotFound, Status: 422}))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "token_not_found", decoded["result"])
	assert.Equal(t, float64(422), decoded["status"])
}
