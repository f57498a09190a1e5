package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/benedoc-inc/pdfburn/types"
)

// DefaultTimeout bounds a single background write
const DefaultTimeout = 10 * time.Second

// Async records in the background so callers never wait on the store.
// The caller's context only contributes its values; cancelling it does not
// abort the write.
type Async struct {
	next    Recorder
	timeout time.Duration
	log     *slog.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewAsync(next Recorder, timeout time.Duration, log *slog.Logger) *Async {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	return &Async{next: next, timeout: timeout, log: log}
}

func (a *Async) Record(ctx context.Context, rec *types.AuditRecord) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		a.log.WarnContext(ctx, "audit recorder closed, record dropped", "id", rec.ID, "document", rec.DocumentID)
		return
	}
	a.wg.Add(1)
	a.mu.Unlock()

	go func() {
		defer a.wg.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
		defer cancel()
		a.next.Record(ctx, rec)
	}()
}

// Close stops accepting records and waits for pending writes, or for ctx
func (a *Async) Close(ctx context.Context) error {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
