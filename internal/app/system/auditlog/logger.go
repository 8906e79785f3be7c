// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/placementhub/internal/app/store/audit"
	"github.com/dalemusser/placementhub/internal/app/system/reqinfo"
	"go.uber.org/zap"
)

// Sink accepts audit entries. Record never fails or blocks the caller;
// engines call it only after their primary write has committed.
type Sink interface {
	Record(ctx context.Context, e audit.Entry)
}

// Writer persists entries. *audit.Store satisfies it.
type Writer interface {
	Log(ctx context.Context, e audit.Entry) error
}

// Modes for Logger.
const (
	ModeAll = "all" // MongoDB + zap
	ModeDB  = "db"
	ModeLog = "log"
	ModeOff = "off"
)

// ValidMode reports whether m is a known mode.
func ValidMode(m string) bool {
	switch m {
	case ModeAll, ModeDB, ModeLog, ModeOff:
		return true
	}
	return false
}

// storeTimeout bounds the detached store write.
const storeTimeout = 5 * time.Second

// Logger writes audit entries to MongoDB and/or zap depending on mode.
type Logger struct {
	store  Writer
	zapLog *zap.Logger
	mode   string

	pending sync.WaitGroup
}

// New creates a Logger. An unknown mode behaves like ModeAll.
func New(store Writer, zapLog *zap.Logger, mode string) *Logger {
	if !ValidMode(mode) {
		mode = ModeAll
	}
	return &Logger{store: store, zapLog: zapLog, mode: mode}
}

// Record fills in client metadata from ctx and writes e. The store write
// runs on its own goroutine; failures are logged and dropped. A nil Logger
// is a no-op.
func (l *Logger) Record(ctx context.Context, e audit.Entry) {
	if l == nil || l.mode == ModeOff {
		return
	}

	info := reqinfo.From(ctx)
	if e.IP == "" {
		e.IP = info.IP
	}
	if e.UserAgent == "" {
		e.UserAgent = info.UserAgent
	}
	if e.RequestID == "" {
		e.RequestID = info.RequestID
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	if l.mode == ModeAll || l.mode == ModeLog {
		l.logToZap(e)
	}

	if (l.mode == ModeAll || l.mode == ModeDB) && l.store != nil {
		// The primary write already committed; a cancelled request must not
		// lose its audit record.
		sctx := context.WithoutCancel(ctx)
		l.pending.Add(1)
		go func() {
			defer l.pending.Done()
			l.persist(sctx, e)
		}()
	}
}

func (l *Logger) persist(ctx context.Context, e audit.Entry) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	if err := l.store.Log(ctx, e); err != nil {
		l.zapLog.Error("failed to store audit entry",
			zap.Error(err),
			zap.String("action", e.Action),
		)
	}
}

// Wait blocks until every store write started by Record has finished, or
// ctx ends.
func (l *Logger) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		l.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Logger) logToZap(e audit.Entry) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("action", e.Action),
		zap.String("ip", e.IP),
	}
	if e.ActorID != nil {
		fields = append(fields, zap.String("actor_id", e.ActorID.Hex()))
	}
	if e.TargetType != "" {
		fields = append(fields, zap.String("target_type", e.TargetType))
	}
	if e.TargetID != nil {
		fields = append(fields, zap.String("target_id", e.TargetID.Hex()))
	}
	if e.RequestID != "" {
		fields = append(fields, zap.String("request_id", e.RequestID))
	}
	for k, v := range e.Meta {
		fields = append(fields, zap.String("meta_"+k, v))
	}
	l.zapLog.Info("audit event", fields...)
}
