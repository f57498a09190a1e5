// Package types defines the shared data model for burning fields into PDF documents
package types

import (
	"time"
)

// BurnRequest is one burn of a field set into a document
type BurnRequest struct {
	DocumentID string `json:"documentId,omitempty"`
	// DocumentData is a data URI (or bare base64) of the source PDF.
	// Empty selects the configured fallback document.
	DocumentData string  `json:"documentData,omitempty"`
	Fields       []Field `json:"fields"`
}

// BurnResult holds the output document and the integrity digests
type BurnResult struct {
	Output       []byte
	InputDigest  string // lowercase hex SHA-256 of the exact input bytes
	OutputDigest string // lowercase hex SHA-256 of Output
	Pages        int
	Drawn        int // fields that produced marks on a page
	Warnings     []Warning
}

// Requester describes who asked for a burn
type Requester struct {
	UserAgent string `json:"userAgent,omitempty"`
	IPAddress string `json:"ipAddress,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// AuditRecord is written once per successful burn and never changed afterwards
type AuditRecord struct {
	ID           string    `json:"id"`
	DocumentID   string    `json:"documentId"`
	InputDigest  string    `json:"inputDigest"`
	OutputDigest string    `json:"outputDigest"`
	Fields       []Field   `json:"fields"`
	Timestamp    time.Time `json:"timestamp"`
	Requester    Requester `json:"requester"`
}
