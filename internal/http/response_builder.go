// Package http provides HTTP server and handler implementations.
//
// This file implements the Builder Pattern for JSON responses and the mapping
// from ledger errors to status codes and user-facing messages.

package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"finanzas/internal/core"
	"finanzas/internal/log"
)

// Confirmation and error messages returned to clients.
const (
	MsgTransactionDeleted  = "Transacción eliminada"
	MsgCategoryDeleted     = "Categoría eliminada"
	MsgInvalidType         = "Tipo inválido"
	MsgInvalidData         = "Datos inválidos"
	MsgInvalidAmount       = "Monto inválido"
	MsgInvalidDate         = "Fecha inválida"
	MsgDescriptionRequired = "Descripción requerida"
	MsgNameRequired        = "Nombre requerido"
	MsgBodyTooLarge        = "Solicitud demasiado grande"
	MsgCategoryExists      = "Categoría ya existe"
	MsgTransactionNotFound = "Transacción no encontrada"
	MsgCategoryNotFound    = "Categoría no encontrada"
	MsgNotFound            = "Recurso no encontrado"
	MsgRateLimited         = "Demasiadas solicitudes, intenta de nuevo más tarde"
	MsgInternal            = "Error interno del servidor"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	body       any
}

// NewJSONResponse creates a builder with a 200 status and no body.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(key, value string) *JSONResponseBuilder {
	b.headers[key] = value
	return b
}

// Body sets the value encoded as the response body.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Message sets a {"message": msg} body.
func (b *JSONResponseBuilder) Message(msg string) *JSONResponseBuilder {
	return b.Body(messageResponse{Message: msg})
}

// Write sends the response. Encoding errors are logged; the status is already out.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	for k, v := range b.headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(b.statusCode)
	if b.body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(b.body); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Failed to encode response",
			log.FieldError, err.Error())
	}
}

// Convenience constructors for common responses.

func OK(body any) *JSONResponseBuilder {
	return NewJSONResponse().Body(body)
}

func Created(body any) *JSONResponseBuilder {
	return NewJSONResponse().Status(http.StatusCreated).Body(body)
}

func ErrorResponse(status int, msg string) *JSONResponseBuilder {
	return NewJSONResponse().Status(status).Message(msg)
}

type messageResponse struct {
	Message string `json:"message"`
}

type balanceResponse struct {
	Balance json.Number `json:"balance"`
}

type transactionResponse struct {
	ID          string      `json:"id"`
	Description string      `json:"description"`
	Amount      json.Number `json:"amount"`
	Type        string      `json:"type"`
	Category    string      `json:"category"`
	Date        string      `json:"date"`
}

type categoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

func newTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:          t.ID,
		Description: t.Description,
		Amount:      json.Number(t.Amount.String()),
		Type:        string(t.Type),
		Category:    t.Category,
		Date:        t.Date.UTC().Format(time.RFC3339Nano),
	}
}

func newTransactionList(txs []core.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, newTransactionResponse(t))
	}
	return out
}

func newCategoryResponse(c core.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name, Type: string(c.Type)}
}

func newCategoryList(cats []core.Category) []categoryResponse {
	out := make([]categoryResponse, 0, len(cats))
	for _, c := range cats {
		out = append(out, newCategoryResponse(c))
	}
	return out
}

// statusFor maps the error taxonomy to an HTTP status and client message.
// Anything outside the taxonomy, store failures included, is an opaque 500.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, errBodyTooLarge):
		return http.StatusRequestEntityTooLarge, MsgBodyTooLarge
	case errors.Is(err, core.ErrInvalidType):
		return http.StatusBadRequest, MsgInvalidType
	case errors.Is(err, core.ErrInvalidAmount):
		return http.StatusBadRequest, MsgInvalidAmount
	case errors.Is(err, core.ErrInvalidDate):
		return http.StatusBadRequest, MsgInvalidDate
	case errors.Is(err, core.ErrEmptyDescription):
		return http.StatusBadRequest, MsgDescriptionRequired
	case errors.Is(err, core.ErrEmptyName):
		return http.StatusBadRequest, MsgNameRequired
	case errors.Is(err, core.ErrInvalidArgument):
		return http.StatusBadRequest, MsgInvalidData
	case errors.Is(err, core.ErrConflict):
		return http.StatusBadRequest, MsgCategoryExists
	case errors.Is(err, core.ErrTransactionNotFound):
		return http.StatusNotFound, MsgTransactionNotFound
	case errors.Is(err, core.ErrCategoryNotFound):
		return http.StatusNotFound, MsgCategoryNotFound
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, MsgNotFound
	default:
		return http.StatusInternalServerError, MsgInternal
	}
}

// writeError sends the taxonomy-mapped response for err and logs server errors.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, msg := statusFor(err)
	logger := log.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed",
			log.FieldOperation, op,
			log.FieldError, err.Error())
	} else {
		logger.InfoContext(r.Context(), "Request rejected",
			log.FieldOperation, op,
			log.FieldStatusCode, status,
			log.FieldError, err.Error())
	}
	ErrorResponse(status, msg).Write(w, r)
}
