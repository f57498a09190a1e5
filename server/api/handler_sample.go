package api

import (
	"net/http"

	"github.com/benedoc-inc/pdfburn/sample"
)

func (h *Handler) handleSample(w http.ResponseWriter, r *http.Request) {
	data, err := sample.Document()

	if err != nil {
		h.log.ErrorContext(r.Context(), "cannot build sample document", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", err)
		return
	}

	writePDF(w, "inline; filename=sample.pdf", data)
}
