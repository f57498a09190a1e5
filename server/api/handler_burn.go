package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/benedoc-inc/pdfburn/types"
)

type burnRequest struct {
	PdfID      string `json:"pdfId"`
	DocumentID string `json:"documentId"`

	PdfData      *string `json:"pdfData"`
	DocumentData *string `json:"documentData"`

	Fields []types.Field `json:"fields"`
}

func (r *burnRequest) toBurnRequest() types.BurnRequest {
	req := types.BurnRequest{
		DocumentID: r.DocumentID,
		Fields:     r.Fields,
	}

	if req.DocumentID == "" {
		req.DocumentID = r.PdfID
	}

	if r.DocumentData != nil {
		req.DocumentData = *r.DocumentData
	} else if r.PdfData != nil {
		req.DocumentData = *r.PdfData
	}

	return req
}

func (h *Handler) handleBurn(w http.ResponseWriter, r *http.Request) {
	var body burnRequest

	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var maxBytesErr *http.MaxBytesError

		if errors.As(err, &maxBytesErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "REQUEST_TOO_LARGE", err)
			return
		}

		writeError(w, http.StatusBadRequest, string(types.ErrCodeInvalidInput), err)
		return
	}

	req := body.toBurnRequest()

	result, err := h.service.Burn(r.Context(), req, requesterFrom(r))

	if err != nil {
		status, kind := statusFor(err)
		writeError(w, status, kind, err)
		return
	}

	w.Header().Set("X-Input-Digest", result.InputDigest)
	w.Header().Set("X-Output-Digest", result.OutputDigest)

	if len(result.Warnings) > 0 {
		var codes []string
		seen := map[string]bool{}

		for _, warning := range result.Warnings {
			if !seen[warning.Code] {
				seen[warning.Code] = true
				codes = append(codes, warning.Code)
			}
		}

		w.Header().Set("X-Burn-Warnings", strings.Join(codes, ","))
	}

	writePDF(w, "attachment; filename=signed_document.pdf", result.Output)
}
