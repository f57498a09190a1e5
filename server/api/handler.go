package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/benedoc-inc/pdfburn/burn"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service *burn.Service
	log     *slog.Logger
}

func New(service *burn.Service, log *slog.Logger) (*Handler, error) {
	if log == nil {
		log = slog.Default()
	}

	h := &Handler{
		service: service,
		log:     log,
	}

	return h, nil
}

func (h *Handler) Attach(r chi.Router) {
	r.Post("/sign-pdf", h.handleBurn)
	r.Post("/v1/burn", h.handleBurn)

	r.Get("/sample.pdf", h.handleSample)
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeError(w http.ResponseWriter, code int, kind string, err error) {
	resp := errorResponse{
		Error: kind,
	}

	if err != nil {
		resp.Details = err.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	enc.Encode(resp)
}

func writePDF(w http.ResponseWriter, disposition string, data []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", disposition)

	w.Write(data)
}
