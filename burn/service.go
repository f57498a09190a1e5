// Package burn ties a compositor to an audit recorder: every successful
// burn is handed to the recorder before the document is returned.
package burn

import (
	"context"
	"log/slog"
	"time"

	"github.com/benedoc-inc/pdfburn/audit"
	"github.com/benedoc-inc/pdfburn/types"
)

// Burner burns a field set into a document
type Burner interface {
	Burn(ctx context.Context, req types.BurnRequest) (*types.BurnResult, error)
}

type Service struct {
	burner   Burner
	recorder audit.Recorder
	log      *slog.Logger

	now func() time.Time
}

func New(burner Burner, recorder audit.Recorder, log *slog.Logger) *Service {
	if recorder == nil {
		recorder = audit.Nop{}
	}

	if log == nil {
		log = slog.Default()
	}

	return &Service{
		burner:   burner,
		recorder: recorder,
		log:      log,

		now: time.Now,
	}
}

// Burn runs one burn and records it. Recording never fails the burn.
func (s *Service) Burn(ctx context.Context, req types.BurnRequest, requester types.Requester) (*types.BurnResult, error) {
	res, err := s.burner.Burn(ctx, req)

	if err != nil {
		code, _ := types.CodeOf(err)

		s.log.WarnContext(ctx, "burn failed",
			"document_id", req.DocumentID,
			"code", code,
			"error", err,
		)

		return nil, err
	}

	s.recorder.Record(ctx, audit.NewRecord(&req, res, requester, s.now()))

	s.log.InfoContext(ctx, "burn completed",
		"document_id", req.DocumentID,
		"fields", len(req.Fields),
		"drawn", res.Drawn,
		"warnings", len(res.Warnings),
		"input_digest", res.InputDigest,
		"output_digest", res.OutputDigest,
	)

	return res, nil
}
