package handler

import (
	"net/http"
	"strconv"

	"github.com/mcoot/pokernight-go/internal/api/response"
	"github.com/mcoot/pokernight-go/internal/services/ledger"
	"github.com/mcoot/pokernight-go/internal/services/stats"
)

// StatsHandler handles the statistics and piggy bank endpoints
type StatsHandler struct {
	statsService  *stats.Service
	ledgerService *ledger.Service
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(statsService *stats.Service, ledgerService *ledger.Service) *StatsHandler {
	return &StatsHandler{
		statsService:  statsService,
		ledgerService: ledgerService,
	}
}

// Get handles GET /api/v1/stats?year=
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	yearStr := r.URL.Query().Get("year")
	if yearStr == "" {
		WriteError(w, NewInvalidRequestError("year is required"))
		return
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		WriteError(w, NewInvalidRequestError("year must be a number"))
		return
	}

	report, err := h.statsService.Report(r.Context(), year)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.StatsFromReport(report))
}

// Years handles GET /api/v1/stats/years
func (h *StatsHandler) Years(w http.ResponseWriter, r *http.Request) {
	years, err := h.statsService.Years(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.YearsResponse{Years: years})
}

// PiggyBank handles GET /api/v1/piggy-bank
func (h *StatsHandler) PiggyBank(w http.ResponseWriter, r *http.Request) {
	total, err := h.ledgerService.PiggyBankTotal(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PiggyBankResponse{Total: total})
}
