// Package audit persists one record per successful burn. Persistence is
// best effort: a Recorder never fails or delays the burn it describes.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/benedoc-inc/pdfburn/types"
)

// Recorder stores audit records. Implementations log their own failures.
type Recorder interface {
	Record(ctx context.Context, rec *types.AuditRecord)
}

// NewRecord describes a finished burn
func NewRecord(req *types.BurnRequest, res *types.BurnResult, requester types.Requester, now time.Time) *types.AuditRecord {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}

	return &types.AuditRecord{
		ID:           id.String(),
		DocumentID:   req.DocumentID,
		InputDigest:  res.InputDigest,
		OutputDigest: res.OutputDigest,
		Fields:       req.Fields,
		Timestamp:    now.UTC(),
		Requester:    requester,
	}
}

// Nop discards records
type Nop struct{}

func (Nop) Record(context.Context, *types.AuditRecord) {}

// Logger writes records to a structured log instead of a store
type Logger struct {
	Log *slog.Logger
}

func (l Logger) Record(ctx context.Context, rec *types.AuditRecord) {
	log := l.Log
	if log == nil {
		log = slog.Default()
	}
	log.InfoContext(ctx, "burn recorded",
		"id", rec.ID,
		"document", rec.DocumentID,
		"input_digest", rec.InputDigest,
		"output_digest", rec.OutputDigest,
		"fields", len(rec.Fields),
		"request_id", rec.Requester.RequestID,
		"ip", rec.Requester.IPAddress)
}

// logFailure reports a failed write as an AUDIT_PERSISTENCE error
func logFailure(ctx context.Context, log *slog.Logger, store string, rec *types.AuditRecord, err error) {
	if log == nil {
		log = slog.Default()
	}
	perr := types.WrapErrorf(types.ErrCodeAuditPersistence, err, "%s: cannot store record %s", store, rec.ID)
	log.ErrorContext(ctx, "audit record lost",
		"id", rec.ID,
		"document", rec.DocumentID,
		"error", perr)
}
