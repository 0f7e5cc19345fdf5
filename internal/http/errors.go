package http

import (
	"errors"
	"net/http"

	"societyfund/internal/core"
	applog "societyfund/internal/log"
	"societyfund/internal/services"
)

// errMalformedBody marks request bodies that could not be decoded at all.
var errMalformedBody = errors.New("malformed request body")

// classify maps an error to its HTTP status and error kind.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, errMalformedBody):
		return http.StatusBadRequest, applog.ErrorTypeValidation
	case errors.Is(err, core.ErrValidation):
		return http.StatusUnprocessableEntity, applog.ErrorTypeValidation
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, applog.ErrorTypeNotFound
	case errors.Is(err, core.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, applog.ErrorTypeStoreConnection
	case errors.Is(err, services.ErrPublisherDisabled):
		return http.StatusServiceUnavailable, applog.ErrorTypeConfiguration
	case errors.Is(err, core.ErrExportAssembly):
		return http.StatusInternalServerError, applog.ErrorTypeExportAssembly
	default:
		return http.StatusInternalServerError, applog.ErrorTypeInternal
	}
}

// writeError logs err and sends the matching error response. Internal
// failures are reported without their message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, kind := classify(err)

	details := err.Error()
	var fe *core.FieldError
	switch {
	case errors.As(err, &fe):
		details = fe.Error()
	case status == http.StatusInternalServerError && kind == applog.ErrorTypeInternal:
		details = "unexpected error"
	}

	if status >= http.StatusInternalServerError {
		s.log.LogError(r.Context(), "Request failed", err, kind, op,
			applog.NewFields().WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, ""))
	} else {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Request rejected",
			applog.FieldError, err.Error(),
			applog.FieldErrorType, kind,
			applog.FieldOperation, op)
	}

	ErrorResponse(status, kind, details).Write(w)
}
