package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/dannyrandall/moviereviews/internal/apperr"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type errorBody struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

type messageBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		loggerFrom(r.Context()).Warn("error encoding response", zap.Error(err))
	}
}

// fail writes the error envelope for err. Server errors are logged with their
// cause, which never reaches the client.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	logger := loggerFrom(r.Context())
	if kind.HTTPStatus() >= http.StatusInternalServerError {
		logger.Error("request failed", zap.String("kind", string(kind)), zap.Error(err))
	} else {
		logger.Info("request rejected", zap.String("kind", string(kind)), zap.Error(err))
	}

	writeJSON(w, r, kind.HTTPStatus(), errorBody{
		Error:     kind.Code(),
		Message:   apperr.Message(err),
		RequestID: requestIDFrom(r.Context()),
	})
}

// decodeBody decodes a JSON body into dst and validates it.
func decodeBody(w http.ResponseWriter, r *http.Request, op string, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &apperr.Error{
			Kind: apperr.KindInvalidInput,
			Op:   op,
			Err:  fmt.Errorf("decode request body: %w", err),
			Msg:  "Request body must be a valid JSON object: " + err.Error(),
		}
	}
	if err := validate.Struct(dst); err != nil {
		return &apperr.Error{Kind: apperr.KindInvalidInput, Op: op, Err: err, Msg: validationMessage(err)}
	}
	return nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s must satisfy %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}
