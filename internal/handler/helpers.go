package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/pkg/errors"

	"github.com/parisxmas/oxikpi/internal/form"
	"github.com/parisxmas/oxikpi/internal/kpi"
	"github.com/parisxmas/oxikpi/internal/service"
)

const maxBody = 1 << 20

var (
	validate   = validator.New()
	translator ut.Translator
)

func init() {
	english := en.New()
	translator, _ = ut.New(english, english).GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Report JSON names, not Go field names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func readJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBody))
	return dec.Decode(v)
}

// writeDecodeError reports a body that could not be decoded. Field elements
// with an unknown type or mismatched attributes keep their own message.
func writeDecodeError(w http.ResponseWriter, err error) {
	if errors.Is(err, form.ErrUnsupportedType) || errors.Is(err, form.ErrAttributeMismatch) {
		writeServiceError(w, err)
		return
	}
	writeError(w, http.StatusBadRequest, "invalid request body")
}

// decodeAndValidate reads the body into v and runs its validate tags. It writes
// the error response itself and reports whether the handler may go on.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := readJSON(r, v); err != nil {
		writeDecodeError(w, err)
		return false
	}
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Translate(translator)
			}
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request", "fields": fields})
			return false
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// sentinels whose wrapped message is shown without the sentinel suffix.
var sentinels = []error{
	service.ErrInvalidInput, service.ErrNotFound, service.ErrConflict, service.ErrForbidden,
	kpi.ErrNotFound,
}

func message(err error) string {
	msg := err.Error()
	for _, s := range sentinels {
		if errors.Is(err, s) && msg != s.Error() {
			return strings.TrimSuffix(msg, ": "+s.Error())
		}
	}
	return msg
}

// writeServiceError maps service and domain errors to a status code.
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *form.ValidationError
	var rerr *form.RowsError
	switch {
	case errors.As(err, &rerr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  rerr.Error(),
			"rows":   rerr.Rows,
			"fields": rerr.Fields,
		})
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":   verr.Error(),
			"fields":  verr.Fields,
			"missing": verr.Missing(),
		})
	case errors.Is(err, service.ErrNotFound), errors.Is(err, kpi.ErrNotFound), errors.Is(err, form.ErrUnknownField):
		writeError(w, http.StatusNotFound, message(err))
	case errors.Is(err, service.ErrConflict), errors.Is(err, form.ErrDuplicateField), errors.Is(err, kpi.ErrAlreadyReviewed):
		writeError(w, http.StatusConflict, message(err))
	case errors.Is(err, kpi.ErrLocked):
		writeError(w, http.StatusLocked, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, message(err))
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, form.ErrNoEntries),
		errors.Is(err, form.ErrUnsupportedType),
		errors.Is(err, form.ErrAttributeMismatch),
		errors.Is(err, form.ErrInvalidOrder),
		errors.Is(err, form.ErrRowOutOfRange),
		errors.Is(err, form.ErrNotComplex),
		errors.Is(err, form.ErrEditorClosed),
		errors.Is(err, kpi.ErrInvalidDecision):
		writeError(w, http.StatusBadRequest, message(err))
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "storage timed out")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// intParam parses a path parameter, writing 400 when it is not a number.
func intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, name+" must be a number")
		return 0, false
	}
	return n, true
}

func paging(r *http.Request) (skip, limit int) {
	skip, _ = strconv.Atoi(r.URL.Query().Get("skip"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return skip, limit
}
