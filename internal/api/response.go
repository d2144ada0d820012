package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shaiso/Pathway/internal/engine"
	"github.com/shaiso/Pathway/internal/player"
	"github.com/shaiso/Pathway/internal/repo"
)

// ErrorCode код ошибки API.
type ErrorCode string

const (
	ErrCodeBadRequest       ErrorCode = "BAD_REQUEST"
	ErrCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrCodeConflict         ErrorCode = "CONFLICT"
	ErrCodeInvalidState     ErrorCode = "INVALID_STATE"
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInternalError    ErrorCode = "INTERNAL_ERROR"
)

// ErrorResponse структура ответа с ошибкой.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail детали ошибки.
type ErrorDetail struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`

	// StepID шаг анкеты, к которому относится ошибка валидации.
	StepID string `json:"step_id,omitempty"`

	// Fields сообщения по именам полей.
	Fields map[string]string `json:"fields,omitempty"`
}

// DataResponse структура успешного ответа.
type DataResponse struct {
	Data any `json:"data"`
}

// ListResponse структура ответа со списком.
type ListResponse struct {
	Data  any `json:"data"`
	Total int `json:"total"`
}

// JSON отправляет JSON ответ.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Success отправляет успешный ответ с данными.
func Success(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, DataResponse{Data: data})
}

// Created отправляет ответ о создании ресурса.
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, DataResponse{Data: data})
}

// NoContent отправляет ответ без тела (204).
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// List отправляет ответ со списком.
func List(w http.ResponseWriter, data any, total int) {
	JSON(w, http.StatusOK, ListResponse{Data: data, Total: total})
}

// Error отправляет ответ с ошибкой.
func Error(w http.ResponseWriter, status int, code ErrorCode, message string) {
	JSON(w, status, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// BadRequest отправляет ошибку 400.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// NotFound отправляет ошибку 404.
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// Conflict отправляет ошибку 409.
func Conflict(w http.ResponseWriter, message string) {
	Error(w, http.StatusConflict, ErrCodeConflict, message)
}

// InvalidState отправляет ошибку 422.
func InvalidState(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnprocessableEntity, ErrCodeInvalidState, message)
}

// ValidationFailed отправляет 422 с подробностями.
func ValidationFailed(w http.ResponseWriter, message, stepID string, fields map[string]string) {
	JSON(w, http.StatusUnprocessableEntity, ErrorResponse{
		Error: ErrorDetail{
			Code:    ErrCodeValidationFailed,
			Message: message,
			StepID:  stepID,
			Fields:  fields,
		},
	})
}

// InternalError отправляет ошибку 500.
func InternalError(w http.ResponseWriter, logger *slog.Logger, err error) {
	logger.Error("internal error", "error", err)
	Error(w, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
}

// HandleRepoError преобразует ошибку репозитория в HTTP ответ.
func HandleRepoError(w http.ResponseWriter, logger *slog.Logger, err error, notFoundMsg string) bool {
	if err == nil {
		return false
	}

	switch {
	case errors.Is(err, repo.ErrNotFound):
		NotFound(w, notFoundMsg)
	case errors.Is(err, repo.ErrAlreadyExists):
		Conflict(w, err.Error())
	default:
		InternalError(w, logger, err)
	}
	return true
}

// HandleDefinitionError отвечает 422 на ошибку валидации анкеты.
func HandleDefinitionError(w http.ResponseWriter, err error) bool {
	if err == nil {
		return false
	}

	var verr *engine.ValidationError
	if errors.As(err, &verr) {
		var fields map[string]string
		if verr.Field != "" {
			fields = map[string]string{verr.Field: verr.Message}
		}
		ValidationFailed(w, verr.Error(), verr.StepID, fields)
		return true
	}
	ValidationFailed(w, err.Error(), "", nil)
	return true
}

// handlePlayerError преобразует ошибку прохождения в HTTP ответ.
func handlePlayerError(w http.ResponseWriter, logger *slog.Logger, err error, notFoundMsg string) bool {
	if err == nil {
		return false
	}

	var ferr *player.FieldErrors
	switch {
	case errors.As(err, &ferr):
		ValidationFailed(w, ferr.Err.Error(), "", ferr.Fields)
	case errors.Is(err, player.ErrBrokenReference):
		Conflict(w, err.Error())
	case errors.Is(err, player.ErrNotPublished),
		errors.Is(err, player.ErrSessionFinished),
		errors.Is(err, player.ErrAtFirstStep):
		InvalidState(w, err.Error())
	default:
		return HandleRepoError(w, logger, err, notFoundMsg)
	}
	return true
}
