package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/benedoc-inc/pdfburn/burn"
	"github.com/benedoc-inc/pdfburn/compose"
	"github.com/benedoc-inc/pdfburn/sample"
	"github.com/benedoc-inc/pdfburn/types"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type memoryRecorder struct {
	mu      sync.Mutex
	records []*types.AuditRecord
}

func (m *memoryRecorder) Record(_ context.Context, rec *types.AuditRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = append(m.records, rec)
}

func newTestRouter(t *testing.T) (http.Handler, *memoryRecorder, []byte) {
	t.Helper()

	fallback, err := sample.Document()
	require.NoError(t, err)

	rec := &memoryRecorder{}
	service := burn.New(compose.New(compose.Options{Fallback: fallback}), rec, nil)

	h, err := New(service, nil)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	h.Attach(r)

	return r, rec, fallback
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "burn-test")
	req.RemoteAddr = "192.0.2.10:51234"

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorResponse {
	t.Helper()

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	return resp
}

const textFields = `[{"id":"name","type":"text","pageNumber":1,"rect":{"x":0.1,"y":0.2,"w":0.4,"h":0.05},"value":"Jane Doe"}]`

func TestBurn_Fallback(t *testing.T) {
	h, rec, fallback := newTestRouter(t)

	rr := post(t, h, "/sign-pdf", `{"pdfId":"nda-1","pdfData":null,"fields":`+textFields+`}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	require.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	require.Equal(t, "attachment; filename=signed_document.pdf", rr.Header().Get("Content-Disposition"))
	require.Equal(t, compose.Digest(fallback), rr.Header().Get("X-Input-Digest"))
	require.Equal(t, compose.Digest(rr.Body.Bytes()), rr.Header().Get("X-Output-Digest"))
	require.True(t, bytes.HasPrefix(rr.Body.Bytes(), fallback))

	require.Len(t, rec.records, 1)
	require.Equal(t, "nda-1", rec.records[0].DocumentID)
	require.Equal(t, "burn-test", rec.records[0].Requester.UserAgent)
	require.Equal(t, "192.0.2.10", rec.records[0].Requester.IPAddress)
	require.NotEmpty(t, rec.records[0].Requester.RequestID)
}

func TestBurn_DocumentData(t *testing.T) {
	h, rec, fallback := newTestRouter(t)

	data := "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(fallback)
	body, err := json.Marshal(map[string]any{
		"documentId":   "doc-2",
		"documentData": data,
		"fields":       json.RawMessage(`[{"type":"radio","pageNumber":4,"rect":{"x":0.5,"y":0.5,"w":0.05,"h":0.05},"value":"true"}]`),
	})
	require.NoError(t, err)

	rr := post(t, h, "/v1/burn", string(body))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	require.Equal(t, compose.Digest(fallback), rr.Header().Get("X-Input-Digest"))
	require.Equal(t, types.WarnPageClamped, rr.Header().Get("X-Burn-Warnings"))
	require.Equal(t, "doc-2", rec.records[0].DocumentID)
}

func TestBurn_Errors(t *testing.T) {
	notPDF := "data:application/pdf;base64," + base64.StdEncoding.EncodeToString([]byte("not a pdf"))

	tests := []struct {
		name   string
		body   string
		status int
		kind   string
	}{
		{"empty fields", `{"pdfId":"x","fields":[]}`, http.StatusBadRequest, "EMPTY_FIELD_SET"},
		{"missing fields", `{"pdfId":"x"}`, http.StatusBadRequest, "EMPTY_FIELD_SET"},
		{"malformed json", `{"fields":`, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown field type", `{"fields":[{"type":"checkbox"}]}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"boolean radio value", `{"fields":[{"type":"radio","pageNumber":1,"rect":{"x":0.5,"y":0.5,"w":0.05,"h":0.05},"value":true}]}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"undecodable data", `{"pdfData":"%%%","fields":` + textFields + `}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"not a pdf", `{"pdfData":"` + notPDF + `","fields":` + textFields + `}`, http.StatusUnprocessableEntity, "DOCUMENT_LOAD"},
		{"bad image", `{"fields":[{"id":"sig","type":"signature","pageNumber":1,"rect":{"x":0,"y":0,"w":0.2,"h":0.1},"value":"data:image/png;base64,AAAA"}]}`, http.StatusUnprocessableEntity, "IMAGE_DECODE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, rec, _ := newTestRouter(t)

			rr := post(t, h, "/sign-pdf", tt.body)
			require.Equal(t, tt.status, rr.Code, rr.Body.String())
			require.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			resp := decodeError(t, rr)
			require.Equal(t, tt.kind, resp.Error)
			require.NotEmpty(t, resp.Details)

			require.Empty(t, rec.records)
		})
	}
}

func TestSample(t *testing.T) {
	h, _, fallback := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/sample.pdf", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	require.Equal(t, fallback, rr.Body.Bytes())
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
		kind   string
	}{
		{types.NewBurnError(types.ErrCodeEmptyFieldSet, ""), http.StatusBadRequest, "EMPTY_FIELD_SET"},
		{types.NewBurnError(types.ErrCodeInvalidInput, ""), http.StatusBadRequest, "INVALID_INPUT"},
		{types.NewBurnError(types.ErrCodeDocumentLoad, ""), http.StatusUnprocessableEntity, "DOCUMENT_LOAD"},
		{types.NewBurnError(types.ErrCodeImageDecode, ""), http.StatusUnprocessableEntity, "IMAGE_DECODE"},
		{types.NewBurnError(types.ErrCodeFontError, ""), http.StatusUnprocessableEntity, "FONT_ERROR"},
		{types.NewBurnError(types.ErrCodeWriteError, ""), http.StatusInternalServerError, "WRITE_ERROR"},
		{errors.New("boom"), http.StatusInternalServerError, "INTERNAL"},
	}

	for _, tt := range tests {
		status, kind := statusFor(tt.err)
		require.Equal(t, tt.status, status, tt.kind)
		require.Equal(t, tt.kind, kind)
	}
}

func TestRequesterFrom(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/sign-pdf", nil)
	req.RemoteAddr = "198.51.100.7"
	req.Header.Set("User-Agent", "editor/1.0")

	require.Equal(t, types.Requester{UserAgent: "editor/1.0", IPAddress: "198.51.100.7"}, requesterFrom(req))
}
