package api

import (
	"net"
	"net/http"

	"github.com/benedoc-inc/pdfburn/types"

	"github.com/go-chi/chi/v5/middleware"
)

func requesterFrom(r *http.Request) types.Requester {
	ip := r.RemoteAddr

	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}

	return types.Requester{
		UserAgent: r.UserAgent(),
		IPAddress: ip,
		RequestID: middleware.GetReqID(r.Context()),
	}
}

// statusFor maps a burn error to its HTTP status and error kind
func statusFor(err error) (int, string) {
	code, ok := types.CodeOf(err)

	if !ok {
		return http.StatusInternalServerError, "INTERNAL"
	}

	switch code {
	case types.ErrCodeEmptyFieldSet, types.ErrCodeInvalidInput:
		return http.StatusBadRequest, string(code)

	case types.ErrCodeDocumentLoad, types.ErrCodeImageDecode, types.ErrCodeFontError:
		return http.StatusUnprocessableEntity, string(code)
	}

	return http.StatusInternalServerError, string(code)
}
