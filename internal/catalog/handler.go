package catalog

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/rcs-software/rcs-crm/internal/clients"
	"github.com/rcs-software/rcs-crm/internal/platform/httpx"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// Search handles GET /api/catalog/search?term=&quote_type=.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("term"))
	quoteType := QuoteType(r.URL.Query().Get("quote_type"))
	if !quoteType.Valid() {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown quote_type")
		return
	}

	results, err := h.service.Search(r.Context(), term, quoteType)
	if err != nil {
		h.logger.Error("catalog search failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if results == nil {
		results = []SearchResult{}
	}
	httpx.JSON(w, http.StatusOK, results)
}

// Price handles GET /api/catalog/price?client_id=&item_id=&item_type=.
func (h *Handler) Price(w http.ResponseWriter, r *http.Request) {
	clientID, err := strconv.ParseInt(r.URL.Query().Get("client_id"), 10, 64)
	if err != nil || clientID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "client_id is required")
		return
	}
	itemID, err := strconv.ParseInt(r.URL.Query().Get("item_id"), 10, 64)
	if err != nil || itemID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "item_id is required")
		return
	}
	itemType := ItemType(r.URL.Query().Get("item_type"))

	template, err := h.service.Lookup(r.Context(), clientID, itemID, itemType)
	if err != nil {
		switch {
		case errors.Is(err, ErrProductNotFound), errors.Is(err, ErrSoftwareNotFound), errors.Is(err, ErrTariffNotFound), errors.Is(err, clients.ErrNotFound):
			httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
		case errors.Is(err, ErrUnknownItemType):
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		default:
			h.logger.Error("price lookup failed", slog.Any("error", err))
			httpx.RespondError(w, err)
		}
		return
	}

	template.UnitPriceHT = Round2(template.UnitPriceHT)
	httpx.JSON(w, http.StatusOK, template)
}
