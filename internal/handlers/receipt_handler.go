package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "pennypilot/internal/errors"
	"pennypilot/internal/services"
)

// maxReceiptBytes caps uploaded receipt images at 10 MB.
const maxReceiptBytes = 10 << 20

// ReceiptHandler handles receipt-scan requests.
type ReceiptHandler struct {
	receiptService services.ReceiptServicer
}

// NewReceiptHandler creates a new ReceiptHandler.
func NewReceiptHandler(receiptService services.ReceiptServicer) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService}
}

// readReceiptImage pulls the uploaded image out of the multipart form.
func readReceiptImage(c *gin.Context) ([]byte, string, error) {
	header, err := c.FormFile("image")
	if err != nil {
		return nil, "", apperrors.WithMessage(apperrors.ErrInvalidInput, "An 'image' file upload is required")
	}
	if header.Size > maxReceiptBytes {
		return nil, "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Image exceeds the 10MB limit")
	}

	file, err := header.Open()
	if err != nil {
		return nil, "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return data, mimeType, nil
}

// AnalyzeReceipt handles extracting structured data from a receipt image.
// @Summary     Analyze a receipt
// @Description Extract merchant, amount, date, category, and line items from a
// @Description receipt image without saving anything
// @Tags        receipts
// @Accept      multipart/form-data
// @Produce     json
// @Param       image formData file true "Receipt image (JPEG or PNG, max 10MB)"
// @Success     200 {object} services.ReceiptData "Extracted receipt data"
// @Failure     400 {object} ErrorResponse "Invalid upload"
// @Failure     503 {object} ErrorResponse "Analyzer not configured"
// @Failure     502 {object} ErrorResponse "Analyzer failed"
// @Router      /receipts/analyze [post]
func (h *ReceiptHandler) AnalyzeReceipt(c *gin.Context) {
	image, mimeType, err := readReceiptImage(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	data, err := h.receiptService.Analyze(c.Request.Context(), image, mimeType)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"receipt": data})
}

// ImportReceipt handles saving analyzed receipt data as a transaction.
// @Summary     Import a receipt
// @Description Save receipt data as an expense transaction with line items.
// @Description Warnings flag totals that do not add up; they never block the save.
// @Tags        receipts
// @Accept      json
// @Produce     json
// @Param       request body services.ReceiptData true "Receipt data to import"
// @Success     201 {object} map[string]interface{} "Created transaction and warnings"
// @Failure     400 {object} ErrorResponse "Invalid receipt data"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /receipts/import [post]
func (h *ReceiptHandler) ImportReceipt(c *gin.Context) {
	var data services.ReceiptData
	if err := c.ShouldBindJSON(&data); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	tx, warnings, err := h.receiptService.ImportReceipt(&data)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": tx, "warnings": warnings})
}
