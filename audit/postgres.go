package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/benedoc-inc/pdfburn/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS burn_audit (
	id            uuid PRIMARY KEY,
	document_id   text        NOT NULL,
	input_digest  text        NOT NULL,
	output_digest text        NOT NULL,
	fields        jsonb       NOT NULL,
	requester     jsonb       NOT NULL,
	created_at    timestamptz NOT NULL
);
CREATE INDEX IF NOT EXISTS burn_audit_document_idx ON burn_audit (document_id, created_at);
`

// Postgres inserts records into the burn_audit table. Rows are never
// updated or deleted.
type Postgres struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

// NewPostgres connects to dsn and creates the table if it is missing
func NewPostgres(ctx context.Context, dsn string, log *slog.Logger) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect audit store: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect audit store: %w", err)
	}

	p := &Postgres{pool: pool, log: log}
	if err := p.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

// EnsureSchema creates the audit table and its index
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create audit schema: %w", err)
	}
	return nil
}

// Insert stores rec
func (p *Postgres) Insert(ctx context.Context, rec *types.AuditRecord) error {
	fields, err := json.Marshal(rec.Fields)
	if err != nil {
		return err
	}
	requester, err := json.Marshal(rec.Requester)
	if err != nil {
		return err
	}

	_, err = p.pool.Exec(ctx,
		`INSERT INTO burn_audit (id, document_id, input_digest, output_digest, fields, requester, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.DocumentID, rec.InputDigest, rec.OutputDigest, fields, requester, rec.Timestamp)
	return err
}

// ByDocument returns the records of a document, oldest first
func (p *Postgres) ByDocument(ctx context.Context, documentID string) ([]*types.AuditRecord, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id::text, document_id, input_digest, output_digest, fields, requester, created_at
		 FROM burn_audit WHERE document_id = $1 ORDER BY created_at, id`, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*types.AuditRecord
	for rows.Next() {
		var rec types.AuditRecord
		var fields, requester []byte
		if err := rows.Scan(&rec.ID, &rec.DocumentID, &rec.InputDigest, &rec.OutputDigest, &fields, &requester, &rec.Timestamp); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(fields, &rec.Fields); err != nil {
			return nil, fmt.Errorf("record %s fields: %w", rec.ID, err)
		}
		if err := json.Unmarshal(requester, &rec.Requester); err != nil {
			return nil, fmt.Errorf("record %s requester: %w", rec.ID, err)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

func (p *Postgres) Record(ctx context.Context, rec *types.AuditRecord) {
	if err := p.Insert(ctx, rec); err != nil {
		logFailure(ctx, p.log, "postgres", rec, err)
	}
}

func (p *Postgres) Close() {
	p.pool.Close()
}
