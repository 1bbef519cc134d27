package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pennypilot/internal/budget"
	apperrors "pennypilot/internal/errors"
	"pennypilot/internal/services"
)

// BudgetHandler handles budget-related requests.
type BudgetHandler struct {
	budgetService services.BudgetServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// SetBudgetRequest represents the request payload for creating or replacing a
// category budget. Posting an existing category+month pair updates the amount.
type SetBudgetRequest struct {
	Category string  `json:"category" binding:"required,min=1,max=100"`
	Amount   float64 `json:"amount" binding:"required,gt=0"`
	Month    string  `json:"month" binding:"omitempty,month"`
}

// monthParams resolves the month/year pair from a query string, defaulting to
// the current calendar month.
func monthParams(c *gin.Context) (string, int, error) {
	month := c.Query("month")
	if month == "" {
		return budget.CurrentMonth(), budget.CurrentYear(), nil
	}
	year, err := yearOf(month)
	if err != nil {
		return "", 0, err
	}
	return month, year, nil
}

// yearOf extracts the year from a YYYY-MM month key.
func yearOf(month string) (int, error) {
	if len(month) != 7 || month[4] != '-' {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "month must be in YYYY-MM format")
	}
	year, err := strconv.Atoi(month[:4])
	if err != nil {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "month must be in YYYY-MM format")
	}
	return year, nil
}

// SetBudget handles creating or updating a category budget.
// @Summary     Set a budget
// @Description Create a budget for a category and month, or update the amount
// @Description if one already exists
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Param       request body SetBudgetRequest true "Budget details"
// @Success     200 {object} models.Budget "Budget stored"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [post]
func (h *BudgetHandler) SetBudget(c *gin.Context) {
	var req SetBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	month := req.Month
	if month == "" {
		month = budget.CurrentMonth()
	}
	year, err := yearOf(month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	b, err := h.budgetService.UpsertBudget(req.Category, req.Amount, month, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": b})
}

// GetBudgets handles listing budgets for a month.
// @Summary     Get budgets
// @Description List category budgets for a month (defaults to the current month)
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Param       month query string false "Month key (YYYY-MM)"
// @Success     200 {object} map[string]interface{} "Budgets for the month"
// @Failure     400 {object} ErrorResponse "Invalid month"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [get]
func (h *BudgetHandler) GetBudgets(c *gin.Context) {
	month, year, err := monthParams(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgets, err := h.budgetService.GetBudgetsForMonth(month, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budgets": budgets, "month": month})
}

// DeleteBudget handles deleting a budget.
// @Summary     Delete budget
// @Description Delete a budget by ID
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Param       id path int true "Budget ID"
// @Success     200 {object} MessageResponse "Budget deleted"
// @Failure     400 {object} ErrorResponse "Invalid budget ID"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgetService.DeleteBudget(id); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Budget deleted successfully"})
}

// GetBudgetProgress handles retrieving spending progress for every budgeted
// category in a month.
// @Summary     Get budget progress
// @Description Get per-category spending progress for a month (defaults to the
// @Description current month)
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Param       month query string false "Month key (YYYY-MM)"
// @Success     200 {object} map[string]interface{} "Progress per category"
// @Failure     400 {object} ErrorResponse "Invalid month"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/progress [get]
func (h *BudgetHandler) GetBudgetProgress(c *gin.Context) {
	month, year, err := monthParams(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if category := c.Query("category"); category != "" {
		progress, err := h.budgetService.GetBudgetProgress(category, month, year)
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"progress": progress, "month": month})
		return
	}

	progress, err := h.budgetService.GetAllBudgetProgress(month, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"progress": progress, "month": month})
}

// GetMonthlySummary handles retrieving the aggregate budget picture for a month.
// @Summary     Get monthly summary
// @Description Get total budgeted, total spent, overall percentage, and
// @Description remaining amount across all budgeted categories
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Param       month query string false "Month key (YYYY-MM)"
// @Success     200 {object} budget.Summary "Monthly summary"
// @Failure     400 {object} ErrorResponse "Invalid month"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/summary [get]
func (h *BudgetHandler) GetMonthlySummary(c *gin.Context) {
	month, year, err := monthParams(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.budgetService.GetMonthlySummary(month, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary, "month": month})
}

// GetBudgetAlerts handles retrieving alert messages for budgets at or past
// the warning thresholds.
// @Summary     Get budget alerts
// @Description Get alert messages for categories at 80% or more of their budget
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Param       month query string false "Month key (YYYY-MM)"
// @Success     200 {object} map[string]interface{} "Alert messages"
// @Failure     400 {object} ErrorResponse "Invalid month"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/alerts [get]
func (h *BudgetHandler) GetBudgetAlerts(c *gin.Context) {
	month, year, err := monthParams(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	alerts, err := h.budgetService.GetBudgetAlerts(month, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"alerts": alerts, "month": month})
}
