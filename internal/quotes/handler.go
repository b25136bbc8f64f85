package quotes

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/rcs-software/rcs-crm/internal/clients"
	"github.com/rcs-software/rcs-crm/internal/platform/httpx"
)

type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

// Create handles POST /api/quotes.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateQuoteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if !h.validStruct(w, req) {
		return
	}

	quote, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, CreateQuoteResponse{
		QuoteID:     quote.ID,
		QuoteNumber: quote.QuoteNumber,
	})
}

// Save handles PUT /api/quotes/{id}.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	id, ok := h.quoteID(w, r)
	if !ok {
		return
	}
	var req SaveQuoteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if !h.validStruct(w, req) {
		return
	}

	quote, err := h.service.Save(r.Context(), id, req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, quote)
}

// Get handles GET /api/quotes/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.quoteID(w, r)
	if !ok {
		return
	}
	quote, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, quote)
}

// List handles GET /api/quotes.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	req := ListQuotesRequest{Limit: 50}

	if v := r.URL.Query().Get("status"); v != "" {
		status := Status(v)
		if !status.Valid() {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown status")
			return
		}
		req.Status = &status
	}
	if v := r.URL.Query().Get("client_id"); v != "" {
		clientID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid client_id")
			return
		}
		req.ClientID = &clientID
	}
	req.DateFrom = parseDate(r.URL.Query().Get("date_from"))
	req.DateTo = parseDate(r.URL.Query().Get("date_to"))
	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil && limit > 0 && limit <= 1000 {
			req.Limit = limit
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if offset, err := strconv.Atoi(v); err == nil && offset >= 0 {
			req.Offset = offset
		}
	}

	quotes, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if quotes == nil {
		quotes = []Quote{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"quotes": quotes,
		"total":  total,
	})
}

// Send, Accept and Refuse handle POST /api/quotes/{id}/{send,accept,refuse}.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request)   { h.transition(w, r, StatusSent) }
func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) { h.transition(w, r, StatusAccepted) }
func (h *Handler) Refuse(w http.ResponseWriter, r *http.Request) { h.transition(w, r, StatusRefused) }

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, next Status) {
	id, ok := h.quoteID(w, r)
	if !ok {
		return
	}
	quote, err := h.service.Transition(r.Context(), id, next)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, quote)
}

// Delete handles DELETE /api/quotes/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.quoteID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PDF handles GET /api/quotes/{id}/pdf?lang=.
func (h *Handler) PDF(w http.ResponseWriter, r *http.Request) {
	id, ok := h.quoteID(w, r)
	if !ok {
		return
	}
	pdf, err := h.service.RenderPDF(r.Context(), id, r.URL.Query().Get("lang"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (h *Handler) quoteID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid quote id")
		return 0, false
	}
	return id, true
}

func (h *Handler) validStruct(w http.ResponseWriter, req any) bool {
	if err := h.validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			fields := make([]string, 0, len(fieldErrs))
			for _, fieldErr := range fieldErrs {
				fields = append(fields, fieldErr.Field())
			}
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid fields: "+strings.Join(fields, ", "))
			return false
		}
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request")
		return false
	}
	return true
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, clients.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrQuoteLocked), errors.Is(err, ErrInvalidStatus):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrDuplicateNumber):
		httpx.Problem(w, http.StatusServiceUnavailable, "Transient Failure", "quote number allocation conflict, retry the request")
	default:
		h.logger.Error("quote request failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}
