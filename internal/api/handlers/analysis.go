package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ronicTakouugang/stockz/internal/middleware"
	"github.com/ronicTakouugang/stockz/internal/models"
	"github.com/ronicTakouugang/stockz/internal/utils"
)

const (
	defaultHorizonDays = 30
	maxSymbolLength    = 15
	maxIndicatorBars   = 1000
)

// AnalysisService is the part of services.AnalysisService the API needs.
type AnalysisService interface {
	Analyze(ctx context.Context, symbol string, horizonDays int, userID string) (*models.AnalysisResult, error)
	RunBacktest(ctx context.Context, symbol string) (*models.BacktestResult, error)
	Indicators(ctx context.Context, symbol string, limit int) (*models.HistoryWindow, error)
	QuotaStatus(ctx context.Context, userID string) (*models.QuotaStatus, error)
}

type AnalysisHandler struct {
	service AnalysisService
}

func NewAnalysisHandler(service AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{service: service}
}

// GetAnalysis runs a full analysis for the authenticated user.
func (h *AnalysisHandler) GetAnalysis(c *gin.Context) {
	symbol, err := h.symbol(c)
	if err != nil {
		writeError(c, err)
		return
	}
	days, err := intQuery(c, "days", defaultHorizonDays)
	if err != nil {
		writeError(c, err)
		return
	}
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "authentication required"})
		return
	}

	result, err := h.service.Analyze(c.Request.Context(), symbol, days, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetBacktest runs the crossover simulation. It does not consume quota.
func (h *AnalysisHandler) GetBacktest(c *gin.Context) {
	symbol, err := h.symbol(c)
	if err != nil {
		writeError(c, err)
		return
	}

	result, err := h.service.RunBacktest(c.Request.Context(), symbol)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetIndicators returns the chart history with indicator overlays.
func (h *AnalysisHandler) GetIndicators(c *gin.Context) {
	symbol, err := h.symbol(c)
	if err != nil {
		writeError(c, err)
		return
	}
	limit, err := intQuery(c, "limit", 0)
	if err != nil {
		writeError(c, err)
		return
	}
	if limit < 0 || limit > maxIndicatorBars {
		writeError(c, utils.NewValidationErrorf("limit", "must be between 0 and %d", maxIndicatorBars))
		return
	}

	window, err := h.service.Indicators(c.Request.Context(), symbol, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "history": window})
}

// GetQuota reports today's usage for the authenticated user.
func (h *AnalysisHandler) GetQuota(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "authentication required"})
		return
	}

	status, err := h.service.QuotaStatus(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// symbol reads and upper-cases the :symbol path parameter.
func (h *AnalysisHandler) symbol(c *gin.Context) (string, error) {
	raw := strings.TrimSpace(c.Param("symbol"))
	if raw == "" {
		return "", utils.NewValidationError("symbol", "is required")
	}
	if len(raw) > maxSymbolLength {
		return "", utils.NewValidationErrorf("symbol", "must be at most %d characters", maxSymbolLength)
	}
	for _, r := range raw {
		if !validSymbolRune(r) {
			return "", utils.NewValidationErrorf("symbol", "contains invalid character %q", r)
		}
	}
	// Casers are stateful, so one per call.
	return cases.Upper(language.Und).String(raw), nil
}

func validSymbolRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '.', r == '-', r == '^', r == '=':
		return true
	}
	return false
}

func intQuery(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, utils.NewValidationError(name, "must be an integer")
	}
	return v, nil
}
