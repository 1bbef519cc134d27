package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"google.golang.org/genai"
	"gorm.io/gorm"

	apperrors "pennypilot/internal/errors"
	"pennypilot/internal/models"
)

// ReceiptItem is one itemized row extracted from a receipt image.
type ReceiptItem struct {
	Name       string  `json:"name"`
	Quantity   float64 `json:"quantity"`
	UnitPrice  float64 `json:"unitPrice"`
	TotalPrice float64 `json:"totalPrice"`
}

// ReceiptData is the structured result of analyzing a receipt image.
// Confidence below 0.5 means the model could not read the receipt clearly.
type ReceiptData struct {
	Merchant   string        `json:"merchant"`
	Amount     float64       `json:"amount"`
	Date       string        `json:"date"`
	Category   string        `json:"category"`
	Items      []ReceiptItem `json:"items,omitempty"`
	Confidence float64       `json:"confidence"`
}

const receiptPrompt = `You are a receipt analyzer. Extract transaction details from the receipt image and return ONLY valid JSON with this exact structure:
{
  "merchant": "store name",
  "amount": 0.00,
  "date": "YYYY-MM-DD",
  "category": "one of: Food, Transportation, Shopping, Entertainment, Bills, Healthcare, Other",
  "items": [
    {
      "name": "item name",
      "quantity": 1.0,
      "unitPrice": 0.00,
      "totalPrice": 0.00
    }
  ],
  "confidence": 0.0
}
Extract individual line items with their quantities and prices when possible.
If you cannot read the receipt clearly, set confidence below 0.5 and use your best guess for missing fields.
Do NOT wrap the response in code fences. Output must begin with "{" and end with "}".`

// geminiAnalyzer implements ReceiptAnalyzer using the GenAI SDK. The API key
// comes from the environment (GOOGLE_API_KEY / GEMINI_API_KEY).
type geminiAnalyzer struct {
	client *genai.Client
	model  string
}

// NewGeminiAnalyzer creates a vision-model backed ReceiptAnalyzer.
func NewGeminiAnalyzer(ctx context.Context, model string) (ReceiptAnalyzer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &geminiAnalyzer{client: client, model: model}, nil
}

// AnalyzeReceipt sends the image to the model and parses its JSON reply.
func (a *geminiAnalyzer) AnalyzeReceipt(ctx context.Context, image []byte, mimeType string) (*ReceiptData, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: receiptPrompt},
				{
					InlineData: &genai.Blob{
						MIMEType: mimeType,
						Data:     image,
					},
				},
			},
		},
	}

	resp, err := a.client.Models.GenerateContent(ctx, a.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	raw := resp.Text()
	if raw == "" {
		return nil, fmt.Errorf("empty response from model")
	}

	return parseReceiptJSON(raw)
}

// parseReceiptJSON decodes the model output, stripping Markdown fences and
// surrounding junk if the model ignored the formatting instructions.
func parseReceiptJSON(raw string) (*ReceiptData, error) {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	// Keep only the outermost JSON object if extra text slipped through.
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end > start {
			s = s[start : end+1]
		}
	}

	var data ReceiptData
	if err := json.Unmarshal([]byte(s), &data); err != nil {
		return nil, fmt.Errorf("unmarshal receipt JSON: %w\nraw response: %s", err, raw)
	}
	return &data, nil
}

// receiptService analyzes receipt images and imports the result as a
// transaction with line items.
type receiptService struct {
	db       *gorm.DB
	analyzer ReceiptAnalyzer
}

// NewReceiptService creates a new ReceiptServicer. A nil analyzer means the
// feature is unconfigured; Analyze then fails with ANALYZER_UNAVAILABLE
// while ImportReceipt keeps working for manually entered data.
func NewReceiptService(db *gorm.DB, analyzer ReceiptAnalyzer) ReceiptServicer {
	return &receiptService{db: db, analyzer: analyzer}
}

// Analyze runs the receipt image through the configured analyzer.
func (s *receiptService) Analyze(ctx context.Context, image []byte, mimeType string) (*ReceiptData, error) {
	if s.analyzer == nil {
		return nil, apperrors.ErrAnalyzerUnavailable
	}

	data, err := s.analyzer.AnalyzeReceipt(ctx, image, mimeType)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrAnalyzerFailed, err)
	}
	return data, nil
}

// ImportReceipt creates an expense transaction with the receipt's line items
// in one store transaction. Returned warnings flag line item totals that do
// not add up; they are advisory and never block the save.
func (s *receiptService) ImportReceipt(data *ReceiptData) (*models.Transaction, []string, error) {
	if data.Amount <= 0 {
		return nil, nil, apperrors.ErrInvalidAmount
	}
	date := data.Date
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, nil, apperrors.ErrInvalidDate
	}

	var merchant *string
	if data.Merchant != "" {
		merchant = &data.Merchant
	}
	description := data.Merchant
	if description == "" {
		description = "Scanned receipt"
	}

	tx := &models.Transaction{
		Amount:      data.Amount,
		Description: description,
		Category:    data.Category,
		Date:        date,
		Type:        models.TransactionTypeExpense,
		Merchant:    merchant,
	}

	err := s.db.Transaction(func(dtx *gorm.DB) error {
		if err := dtx.Create(tx).Error; err != nil {
			return err
		}
		for _, item := range data.Items {
			li := models.LineItem{
				TransactionID: tx.ID,
				Name:          item.Name,
				Quantity:      item.Quantity,
				UnitPrice:     item.UnitPrice,
				TotalPrice:    item.TotalPrice,
			}
			if err := dtx.Create(&li).Error; err != nil {
				return err
			}
			tx.LineItems = append(tx.LineItems, li)
		}
		return nil
	})
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return tx, receiptWarnings(data), nil
}

// receiptWarnings collects advisory mismatches between item math and the
// receipt total.
func receiptWarnings(data *ReceiptData) []string {
	warnings := make([]string, 0)

	var itemSum float64
	for _, item := range data.Items {
		itemSum += item.TotalPrice
		expected := item.Quantity * item.UnitPrice
		if math.Abs(expected-item.TotalPrice) > lineItemTolerance {
			warnings = append(warnings, fmt.Sprintf(
				"%s: total %.2f does not match quantity x unit price (%.2f)",
				item.Name, item.TotalPrice, expected))
		}
	}
	if len(data.Items) > 0 && math.Abs(itemSum-data.Amount) > lineItemTolerance {
		warnings = append(warnings, fmt.Sprintf(
			"line items sum to %.2f but the receipt total is %.2f", itemSum, data.Amount))
	}
	if data.Confidence > 0 && data.Confidence < 0.5 {
		warnings = append(warnings, "low confidence scan; review the extracted fields")
	}
	return warnings
}
