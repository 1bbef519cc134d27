package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "pennypilot/internal/errors"
	"pennypilot/internal/models"
	"pennypilot/internal/pagination"
	"pennypilot/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// CreateTransactionRequest represents the request payload for creating a transaction.
type CreateTransactionRequest struct {
	Amount             float64                `json:"amount" binding:"required,gt=0"`
	Description        string                 `json:"description" binding:"required,min=1,max=255"`
	Category           string                 `json:"category" binding:"required,min=1,max=100"`
	Date               string                 `json:"date" binding:"required,isodate"`
	Type               models.TransactionType `json:"type" binding:"required,transaction_type"`
	Merchant           *string                `json:"merchant" binding:"omitempty,max=255"`
	ExcludeFromReports bool                   `json:"exclude_from_reports"`
}

// UpdateTransactionRequest represents the request payload for updating a transaction.
type UpdateTransactionRequest struct {
	Amount             *float64                `json:"amount" binding:"omitempty,gt=0"`
	Description        *string                 `json:"description" binding:"omitempty,min=1,max=255"`
	Category           *string                 `json:"category" binding:"omitempty,min=1,max=100"`
	Date               *string                 `json:"date" binding:"omitempty,isodate"`
	Type               *models.TransactionType `json:"type" binding:"omitempty,transaction_type"`
	Merchant           *string                 `json:"merchant" binding:"omitempty,max=255"`
	ExcludeFromReports *bool                   `json:"exclude_from_reports"`
}

// LineItemRequest represents the request payload for adding or updating a line item.
type LineItemRequest struct {
	Name       string  `json:"name" binding:"required,min=1,max=255"`
	Quantity   float64 `json:"quantity" binding:"required,gt=0"`
	UnitPrice  float64 `json:"unit_price" binding:"omitempty,gte=0"`
	TotalPrice float64 `json:"total_price" binding:"required,gte=0"`
}

// CreateTransaction handles the creation of a new transaction.
// @Summary     Create a transaction
// @Description Record a new income or expense transaction
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	tx, err := h.transactionService.CreateTransaction(
		req.Amount, req.Description, req.Category, req.Date, req.Type, req.Merchant, req.ExcludeFromReports,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": tx})
}

// GetTransactions handles listing transactions with optional filters.
// @Summary     Get transactions
// @Description Get a paginated list of transactions, newest first
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       from_date query string false "Only transactions on or after this date (YYYY-MM-DD)"
// @Param       to_date   query string false "Only transactions on or before this date (YYYY-MM-DD)"
// @Param       type      query string false "Filter by type (INCOME/EXPENSE)"
// @Param       category  query string false "Filter by category"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 50, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) GetTransactions(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var filter services.TransactionFilter
	if v := c.Query("from_date"); v != "" {
		filter.FromDate = &v
	}
	if v := c.Query("to_date"); v != "" {
		filter.ToDate = &v
	}
	if v := c.Query("type"); v != "" {
		t := models.TransactionType(v)
		if t != models.TransactionTypeIncome && t != models.TransactionTypeExpense {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "type must be 'INCOME' or 'EXPENSE'"))
			return
		}
		filter.Type = &t
	}
	if v := c.Query("category"); v != "" {
		filter.Category = &v
	}

	result, err := h.transactionService.GetTransactions(page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetTransaction handles retrieving a specific transaction.
// @Summary     Get transaction by ID
// @Description Get a specific transaction with its line items
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       id path int true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction details"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	tx, err := h.transactionService.GetTransactionByID(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": tx})
}

// UpdateTransaction handles updating an existing transaction.
// @Summary     Update transaction
// @Description Update an existing transaction; omitted fields are left unchanged
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       id      path int                      true "Transaction ID"
// @Param       request body UpdateTransactionRequest true "Updated transaction details"
// @Success     200 {object} models.Transaction "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input or transaction ID"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	tx, err := h.transactionService.UpdateTransaction(id, services.TransactionUpdate{
		Amount:             req.Amount,
		Description:        req.Description,
		Category:           req.Category,
		Date:               req.Date,
		Type:               req.Type,
		Merchant:           req.Merchant,
		ExcludeFromReports: req.ExcludeFromReports,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": tx})
}

// DeleteTransaction handles deleting a transaction and its line items.
// @Summary     Delete transaction
// @Description Delete a transaction by ID along with its line items
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       id path int true "Transaction ID"
// @Success     200 {object} MessageResponse "Transaction deleted"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(id); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted successfully"})
}

// AddLineItem handles adding a line item to a transaction.
// @Summary     Add line item
// @Description Add an itemized entry to an existing transaction
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       id      path int             true "Transaction ID"
// @Param       request body LineItemRequest true "Line item details"
// @Success     201 {object} models.LineItem "Line item created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id}/items [post]
func (h *TransactionHandler) AddLineItem(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req LineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	item, err := h.transactionService.AddLineItem(id, req.Name, req.Quantity, req.UnitPrice, req.TotalPrice)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"line_item": item})
}

// GetLineItems handles listing a transaction's line items.
// @Summary     Get line items
// @Description List the itemized entries of a transaction. The response carries
// @Description a mismatch figure when line item totals do not add up to the
// @Description transaction amount.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       id path int true "Transaction ID"
// @Success     200 {object} map[string]interface{} "Line items"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id}/items [get]
func (h *TransactionHandler) GetLineItems(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	items, err := h.transactionService.GetLineItems(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	diff, mismatch, err := h.transactionService.LineItemsMismatch(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp := gin.H{"line_items": items}
	if mismatch {
		resp["mismatch"] = diff
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateLineItem handles updating a line item.
// @Summary     Update line item
// @Description Update an itemized entry
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       id      path int             true "Line item ID"
// @Param       request body LineItemRequest true "Updated line item details"
// @Success     200 {object} models.LineItem "Updated line item"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Line item not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /line-items/{id} [put]
func (h *TransactionHandler) UpdateLineItem(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req LineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	item, err := h.transactionService.UpdateLineItem(id, req.Name, req.Quantity, req.UnitPrice, req.TotalPrice)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"line_item": item})
}

// DeleteLineItem handles deleting a line item.
// @Summary     Delete line item
// @Description Delete an itemized entry by ID
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       id path int true "Line item ID"
// @Success     200 {object} MessageResponse "Line item deleted"
// @Failure     400 {object} ErrorResponse "Invalid line item ID"
// @Failure     404 {object} ErrorResponse "Line item not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /line-items/{id} [delete]
func (h *TransactionHandler) DeleteLineItem(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteLineItem(id); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Line item deleted successfully"})
}
