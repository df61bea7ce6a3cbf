package responses

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/JailtonJunior94/aeon-kit/pkg/apperrors"
)

// internalErrorMessage substitui a mensagem de erros que não são AppError,
// para não vazar detalhes internos ao cliente.
const internalErrorMessage = "Internal server error"

// ErrorBody é o corpo JSON de respostas de erro.
type ErrorBody struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Details   apperrors.Context `json:"details,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// JSON escreve uma resposta JSON no ResponseWriter.
// O corpo é codificado antes do cabeçalho: se a codificação falhar,
// responde HTTP 500 sem ter escrito nada parcial.
func JSON(w http.ResponseWriter, statusCode int, data any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		http.Error(w, `{"code":"APP_ERROR","message":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(buf.Bytes())
}

// Error escreve uma resposta de erro JSON com uma mensagem.
func Error(w http.ResponseWriter, statusCode int, message string) {
	JSON(w, statusCode, struct {
		Message string `json:"message"`
	}{
		Message: message,
	})
}

// ErrorWithDetails escreve uma resposta de erro JSON com mensagem e detalhes adicionais.
func ErrorWithDetails(w http.ResponseWriter, statusCode int, message string, details any) {
	JSON(w, statusCode, struct {
		Message string `json:"message"`
		Details any    `json:"details,omitempty"`
	}{
		Message: message,
		Details: details,
	})
}

// FromError escreve err usando o status e o código do AppError.
// Outros erros viram 500 APP_ERROR com uma mensagem genérica.
func FromError(w http.ResponseWriter, err error, requestID string) {
	JSON(w, apperrors.StatusCode(err), NewErrorBody(err, requestID))
}

// NewErrorBody monta o corpo de erro de err.
func NewErrorBody(err error, requestID string) ErrorBody {
	appErr, ok := apperrors.As(err)
	if !ok {
		return ErrorBody{
			Code:      apperrors.CodeApp,
			Message:   internalErrorMessage,
			RequestID: requestID,
		}
	}

	return ErrorBody{
		Code:      appErr.Code(),
		Message:   appErr.Message(),
		Details:   appErr.Context(),
		RequestID: requestID,
	}
}

// ParseError reconstrói o AppError de uma resposta de erro escrita por FromError.
// O tipo é escolhido pelo status; corpos inválidos viram ApiError.
func ParseError(statusCode int, body []byte) error {
	var parsed ErrorBody
	if err := json.Unmarshal(body, &parsed); err != nil || parsed.Message == "" {
		return apperrors.NewAPI(
			fmt.Sprintf("unexpected response status: %d %s", statusCode, http.StatusText(statusCode)),
			apperrors.WithStatusCode(statusCode),
		)
	}

	opts := []apperrors.Option{
		apperrors.WithCode(parsed.Code),
		apperrors.WithStatusCode(statusCode),
		apperrors.WithContext(parsed.Details...),
	}
	if parsed.RequestID != "" {
		opts = append(opts, apperrors.WithContext(apperrors.StringField("request_id", parsed.RequestID)))
	}

	switch statusCode {
	case http.StatusBadRequest:
		return apperrors.NewValidation(parsed.Message, opts...)
	case http.StatusUnauthorized:
		return apperrors.NewUnauthorized(parsed.Message, opts...)
	case http.StatusNotFound:
		return apperrors.NewNotFound(parsed.Message, opts...)
	}
	return apperrors.NewAPI(parsed.Message, opts...)
}
