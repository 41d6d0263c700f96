package audit

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"token-service/pkg/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Result is the outcome category of a permission check.
type Result string

const (
	ResultGranted       Result = "granted"
	ResultDenied        Result = "denied"
	ResultTokenNotFound Result = "token_not_found"
	ResultBadRequest    Result = "bad_request"
	ResultError         Result = "error"
)

const auditWriteTimeout = 2 * time.Second

// Event represents one audited permission check
type Event struct {
	ID         uuid.UUID `json:"id"`
	RequestID  string    `json:"request_id"`
	Token      string    `json:"token"`
	Permission string    `json:"permission"`
	Result     Result    `json:"result"`
	Status     int       `json:"status"`
	IPAddress  string    `json:"ip_address"`
	UserAgent  string    `json:"user_agent"`
	CreatedAt  time.Time `json:"created_at"`
}

// Sink persists audit events.
type Sink interface {
	Write(ctx context.Context, event *Event) error
}

// Logger handles audit logging
type Logger struct {
	sink Sink
	wg   sync.WaitGroup
}

// NewLogger creates a new audit logger
func NewLogger(sink Sink) *Logger {
	return &Logger{sink: sink}
}

// Log records an audit event
func (l *Logger) Log(ctx context.Context, event *Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	return l.sink.Write(ctx, event)
}

// LogFromContext builds an event from the request and records it without
// blocking the response. The token id is masked before it leaves the process.
func (l *Logger) LogFromContext(c echo.Context, tokenID, permission string, result Result, status int) {
	event := &Event{
		RequestID:  c.Response().Header().Get(echo.HeaderXRequestID),
		Token:      logger.MaskToken(tokenID),
		Permission: permission,
		Result:     result,
		Status:     status,
		IPAddress:  c.RealIP(),
		UserAgent:  c.Request().UserAgent(),
	}

	// The echo context is recycled once the handler returns.
	log := c.Logger()

	ctx, cancel := context.WithTimeout(context.Background(), auditWriteTimeout)
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer cancel()
		if err := l.Log(ctx, event); err != nil {
			log.Warnf("audit log failed: %v", err)
		}
	}()
}

// Close waits for in-flight writes started by LogFromContext. Call it after
// the server has stopped accepting requests and before the sink is released.
func (l *Logger) Close() {
	l.wg.Wait()
}

// WriterSink writes each event as one JSON line.
type WriterSink struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{enc: json.NewEncoder(w)}
}

func (s *WriterSink) Write(ctx context.Context, event *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Encode(event)
}
