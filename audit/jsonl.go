package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/benedoc-inc/pdfburn/types"
)

// JSONL appends records to a file, one JSON document per line. The file is
// only ever appended to.
type JSONL struct {
	mu   sync.Mutex
	file *os.File
	log  *slog.Logger
}

// OpenJSONL opens path for appending, creating it if needed
func OpenJSONL(path string, log *slog.Logger) (*JSONL, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	return &JSONL{file: f, log: log}, nil
}

// Append writes rec and syncs the file
func (j *JSONL) Append(rec *types.AuditRecord) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	line = append(line, '\n')

	j.mu.Lock()
	defer j.mu.Unlock()

	if _, err := j.file.Write(line); err != nil {
		return err
	}
	return j.file.Sync()
}

func (j *JSONL) Record(ctx context.Context, rec *types.AuditRecord) {
	if err := j.Append(rec); err != nil {
		logFailure(ctx, j.log, "jsonl", rec, err)
	}
}

func (j *JSONL) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.file.Close()
}
