package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "pennypilot/internal/errors"
	"pennypilot/internal/models"
	"pennypilot/internal/services"
)

// RecurringHandler handles recurring transaction template requests.
type RecurringHandler struct {
	recurringService services.RecurringServicer
}

// NewRecurringHandler creates a new RecurringHandler.
func NewRecurringHandler(recurringService services.RecurringServicer) *RecurringHandler {
	return &RecurringHandler{recurringService: recurringService}
}

// CreateRecurringRequest represents the request payload for creating a
// recurring transaction template.
type CreateRecurringRequest struct {
	Amount        float64                `json:"amount" binding:"required,gt=0"`
	Description   string                 `json:"description" binding:"required,min=1,max=255"`
	Category      string                 `json:"category" binding:"required,min=1,max=100"`
	Type          models.TransactionType `json:"type" binding:"required,transaction_type"`
	Merchant      *string                `json:"merchant" binding:"omitempty,max=255"`
	Frequency     models.Frequency       `json:"frequency" binding:"required,frequency"`
	IntervalCount int                    `json:"interval_count" binding:"omitempty,min=1"`
	NextDate      string                 `json:"next_date" binding:"required,isodate"`
	EndDate       *string                `json:"end_date" binding:"omitempty,isodate"`
}

// UpdateRecurringRequest represents the request payload for updating a template.
type UpdateRecurringRequest struct {
	Amount        *float64          `json:"amount" binding:"omitempty,gt=0"`
	Description   *string           `json:"description" binding:"omitempty,min=1,max=255"`
	Category      *string           `json:"category" binding:"omitempty,min=1,max=100"`
	Merchant      *string           `json:"merchant" binding:"omitempty,max=255"`
	Frequency     *models.Frequency `json:"frequency" binding:"omitempty,frequency"`
	IntervalCount *int              `json:"interval_count" binding:"omitempty,min=1"`
	NextDate      *string           `json:"next_date" binding:"omitempty,isodate"`
	EndDate       *string           `json:"end_date" binding:"omitempty,isodate"`
}

// SetActiveRequest represents the request payload for pausing or resuming a
// template.
type SetActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// CreateRecurring handles the creation of a new recurring transaction template.
// @Summary     Create a recurring transaction
// @Description Create a template that generates transactions on a schedule
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Param       request body CreateRecurringRequest true "Template details"
// @Success     201 {object} models.RecurringTransaction "Template created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring [post]
func (h *RecurringHandler) CreateRecurring(c *gin.Context) {
	var req CreateRecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if req.IntervalCount == 0 {
		req.IntervalCount = 1
	}

	tpl, err := h.recurringService.CreateRecurring(
		req.Amount, req.Description, req.Category, req.Type, req.Merchant,
		req.Frequency, req.IntervalCount, req.NextDate, req.EndDate,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"recurring_transaction": tpl})
}

// GetRecurring handles listing recurring transaction templates.
// @Summary     Get recurring transactions
// @Description List recurring transaction templates
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Param       active query bool false "Only active templates"
// @Success     200 {object} map[string]interface{} "Templates"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring [get]
func (h *RecurringHandler) GetRecurring(c *gin.Context) {
	activeOnly := false
	if v := c.Query("active"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "active must be 'true' or 'false'"))
			return
		}
		activeOnly = b
	}

	templates, err := h.recurringService.GetRecurring(activeOnly)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recurring_transactions": templates})
}

// GetRecurringByID handles retrieving a specific template.
// @Summary     Get recurring transaction by ID
// @Description Get a specific recurring transaction template
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Param       id path int true "Template ID"
// @Success     200 {object} models.RecurringTransaction "Template details"
// @Failure     400 {object} ErrorResponse "Invalid template ID"
// @Failure     404 {object} ErrorResponse "Template not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring/{id} [get]
func (h *RecurringHandler) GetRecurringByID(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	tpl, err := h.recurringService.GetRecurringByID(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recurring_transaction": tpl})
}

// UpdateRecurring handles updating an existing template.
// @Summary     Update recurring transaction
// @Description Update a template; omitted fields are left unchanged
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Param       id      path int                    true "Template ID"
// @Param       request body UpdateRecurringRequest true "Updated template details"
// @Success     200 {object} models.RecurringTransaction "Updated template"
// @Failure     400 {object} ErrorResponse "Invalid input or template ID"
// @Failure     404 {object} ErrorResponse "Template not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring/{id} [put]
func (h *RecurringHandler) UpdateRecurring(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateRecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	tpl, err := h.recurringService.UpdateRecurring(id, services.RecurringUpdate{
		Amount:        req.Amount,
		Description:   req.Description,
		Category:      req.Category,
		Merchant:      req.Merchant,
		Frequency:     req.Frequency,
		IntervalCount: req.IntervalCount,
		NextDate:      req.NextDate,
		EndDate:       req.EndDate,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recurring_transaction": tpl})
}

// SetActive handles pausing or resuming a template.
// @Summary     Pause or resume a recurring transaction
// @Description Toggle whether a template generates transactions
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Param       id      path int              true "Template ID"
// @Param       request body SetActiveRequest true "Desired active state"
// @Success     200 {object} models.RecurringTransaction "Updated template"
// @Failure     400 {object} ErrorResponse "Invalid input or template ID"
// @Failure     404 {object} ErrorResponse "Template not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring/{id}/active [patch]
func (h *RecurringHandler) SetActive(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	tpl, err := h.recurringService.SetRecurringActive(id, *req.IsActive)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recurring_transaction": tpl})
}

// DeleteRecurring handles deleting a template. Transactions it already
// generated are kept.
// @Summary     Delete recurring transaction
// @Description Delete a template; previously generated transactions remain
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Param       id path int true "Template ID"
// @Success     200 {object} MessageResponse "Template deleted"
// @Failure     400 {object} ErrorResponse "Invalid template ID"
// @Failure     404 {object} ErrorResponse "Template not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring/{id} [delete]
func (h *RecurringHandler) DeleteRecurring(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.recurringService.DeleteRecurring(id); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Recurring transaction deleted successfully"})
}

// Generate handles an on-demand generation sweep.
// @Summary     Generate due transactions
// @Description Create real transactions for every template whose next date has
// @Description arrived, advancing each schedule by one step
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Success     200 {object} map[string]interface{} "Number of transactions generated"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring/generate [post]
func (h *RecurringHandler) Generate(c *gin.Context) {
	count, err := h.recurringService.GenerateDueTransactions(time.Now().Format("2006-01-02"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"generated": count})
}

// Preview handles computing upcoming occurrence dates without touching state.
// @Summary     Preview occurrences
// @Description Compute the next occurrence dates for a schedule
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Param       start_date     query string true  "Start date (YYYY-MM-DD)"
// @Param       frequency      query string true  "DAILY, WEEKLY, MONTHLY, or YEARLY"
// @Param       interval_count query int    false "Interval multiplier (default 1)"
// @Param       count          query int    false "Number of dates (default 5, max 50)"
// @Success     200 {object} map[string]interface{} "Upcoming dates"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /recurring/preview [get]
func (h *RecurringHandler) Preview(c *gin.Context) {
	startDate := c.Query("start_date")
	frequency := models.Frequency(c.Query("frequency"))

	interval := 1
	if v := c.Query("interval_count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "interval_count must be a positive integer"))
			return
		}
		interval = n
	}

	count := 5
	if v := c.Query("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 50 {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "count must be between 1 and 50"))
			return
		}
		count = n
	}

	dates, err := services.PreviewOccurrences(startDate, frequency, interval, count)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"dates":     dates,
		"frequency": services.DescribeFrequency(frequency, interval),
	})
}
