package http

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"soknad-mottak/internal/common/errors"
)

const problemContentType = "application/problem+json"

// writeProblem maps pipeline errors onto RFC 7807 problem responses.
// Validation and parse failures are the caller's fault; downstream
// failures surface as gateway errors without leaking internals.
func writeProblem(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *errors.ValidationError
	if stderrors.As(err, &validationErr) {
		writeProblemDetails(w, errors.ProblemDetails{
			Type:              "/problem-details/invalid-request-parameters",
			Title:             "invalid-request-parameters",
			Status:            http.StatusBadRequest,
			Detail:            "Requesten inneholder ugyldige parametre.",
			Instance:          r.URL.Path,
			InvalidParameters: validationErr.Violations,
		})
		return
	}

	var gatewayErr *errors.GatewayError
	if stderrors.As(err, &gatewayErr) {
		switch gatewayErr.Code {
		case errors.ErrCodeEntityParsingFailed:
			writeProblemDetails(w, errors.ProblemDetails{
				Type:     "/problem-details/invalid-json-entity",
				Title:    "invalid-json-entity",
				Status:   http.StatusBadRequest,
				Detail:   gatewayErr.Message,
				Instance: r.URL.Path,
			})
			return
		case errors.ErrCodeAktoerResolution, errors.ErrCodeDokumentStorage, errors.ErrCodePublishFailed, errors.ErrCodeAccessTokenFailed:
			writeProblemDetails(w, errors.ProblemDetails{
				Type:     "/problem-details/upstream-unavailable",
				Title:    "upstream-unavailable",
				Status:   http.StatusBadGateway,
				Detail:   "En avhengighet er utilgjengelig. Prøv igjen senere.",
				Instance: r.URL.Path,
			})
			return
		}
	}

	writeProblemDetails(w, errors.ProblemDetails{
		Type:     "/problem-details/internal-server-error",
		Title:    "internal-server-error",
		Status:   http.StatusInternalServerError,
		Detail:   "Noe gikk galt under prosessering av requesten.",
		Instance: r.URL.Path,
	})
}

func writeProblemDetails(w http.ResponseWriter, problem errors.ProblemDetails) {
	w.Header().Set("Content-Type", problemContentType)
	w.WriteHeader(problem.Status)
	_ = json.NewEncoder(w).Encode(problem)
}
