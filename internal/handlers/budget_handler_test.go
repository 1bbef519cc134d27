package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"pennypilot/internal/budget"
	apperrors "pennypilot/internal/errors"
	"pennypilot/internal/models"
	"pennypilot/internal/services"
)

// --- mock budget service ---

type mockBudgetService struct {
	upsertBudgetFn         func(category string, amount float64, month string, year int) (*models.Budget, error)
	getBudgetFn            func(category, month string, year int) (*models.Budget, error)
	getBudgetsForMonthFn   func(month string, year int) ([]models.Budget, error)
	deleteBudgetFn         func(id uint) error
	getBudgetProgressFn    func(category, month string, year int) (*budget.Progress, error)
	getAllBudgetProgressFn func(month string, year int) ([]budget.Progress, error)
	getMonthlySummaryFn    func(month string, year int) (*budget.Summary, error)
	getBudgetAlertsFn      func(month string, year int) ([]string, error)
}

func (m *mockBudgetService) UpsertBudget(category string, amount float64, month string, year int) (*models.Budget, error) {
	if m.upsertBudgetFn != nil {
		return m.upsertBudgetFn(category, amount, month, year)
	}
	return &models.Budget{}, nil
}

func (m *mockBudgetService) GetBudget(category, month string, year int) (*models.Budget, error) {
	if m.getBudgetFn != nil {
		return m.getBudgetFn(category, month, year)
	}
	return &models.Budget{}, nil
}

func (m *mockBudgetService) GetBudgetsForMonth(month string, year int) ([]models.Budget, error) {
	if m.getBudgetsForMonthFn != nil {
		return m.getBudgetsForMonthFn(month, year)
	}
	return []models.Budget{}, nil
}

func (m *mockBudgetService) DeleteBudget(id uint) error {
	if m.deleteBudgetFn != nil {
		return m.deleteBudgetFn(id)
	}
	return nil
}

func (m *mockBudgetService) GetBudgetProgress(category, month string, year int) (*budget.Progress, error) {
	if m.getBudgetProgressFn != nil {
		return m.getBudgetProgressFn(category, month, year)
	}
	return &budget.Progress{}, nil
}

func (m *mockBudgetService) GetAllBudgetProgress(month string, year int) ([]budget.Progress, error) {
	if m.getAllBudgetProgressFn != nil {
		return m.getAllBudgetProgressFn(month, year)
	}
	return []budget.Progress{}, nil
}

func (m *mockBudgetService) GetMonthlySummary(month string, year int) (*budget.Summary, error) {
	if m.getMonthlySummaryFn != nil {
		return m.getMonthlySummaryFn(month, year)
	}
	return &budget.Summary{}, nil
}

func (m *mockBudgetService) GetBudgetAlerts(month string, year int) ([]string, error) {
	if m.getBudgetAlertsFn != nil {
		return m.getBudgetAlertsFn(month, year)
	}
	return []string{}, nil
}

var _ services.BudgetServicer = (*mockBudgetService)(nil)

func setupBudgetRouter(handler *BudgetHandler) *gin.Engine {
	r := gin.New()
	r.POST("/budgets", handler.SetBudget)
	r.GET("/budgets", handler.GetBudgets)
	r.DELETE("/budgets/:id", handler.DeleteBudget)
	r.GET("/budgets/progress", handler.GetBudgetProgress)
	r.GET("/budgets/summary", handler.GetMonthlySummary)
	r.GET("/budgets/alerts", handler.GetBudgetAlerts)
	return r
}

func TestBudgetHandler_SetBudget(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		svc := &mockBudgetService{
			upsertBudgetFn: func(category string, amount float64, month string, year int) (*models.Budget, error) {
				return &models.Budget{
					Base:     models.Base{ID: 1},
					Category: category,
					Amount:   amount,
					Month:    month,
					Year:     year,
				}, nil
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(svc))

		rec := doRequest(r, "POST", "/budgets",
			`{"category":"Food","amount":400,"month":"2025-10"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		b := result["budget"].(map[string]interface{})
		if b["category"] != "Food" {
			t.Errorf("expected Food, got %v", b["category"])
		}
		if b["amount"].(float64) != 400 {
			t.Errorf("expected amount 400, got %v", b["amount"])
		}
	})

	t.Run("defaults to the current month", func(t *testing.T) {
		var gotMonth string
		svc := &mockBudgetService{
			upsertBudgetFn: func(_ string, _ float64, month string, _ int) (*models.Budget, error) {
				gotMonth = month
				return &models.Budget{Month: month}, nil
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(svc))

		rec := doRequest(r, "POST", "/budgets", `{"category":"Food","amount":400}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotMonth != budget.CurrentMonth() {
			t.Errorf("expected month %s, got %s", budget.CurrentMonth(), gotMonth)
		}
	})

	t.Run("returns 400 on non-positive amount", func(t *testing.T) {
		r := setupBudgetRouter(NewBudgetHandler(&mockBudgetService{}))

		rec := doRequest(r, "POST", "/budgets", `{"category":"Food","amount":0}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on malformed month", func(t *testing.T) {
		r := setupBudgetRouter(NewBudgetHandler(&mockBudgetService{}))

		rec := doRequest(r, "POST", "/budgets", `{"category":"Food","amount":400,"month":"2025-13"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})
}

func TestBudgetHandler_GetBudgets(t *testing.T) {
	t.Run("passes the month filter through", func(t *testing.T) {
		var gotMonth string
		var gotYear int
		svc := &mockBudgetService{
			getBudgetsForMonthFn: func(month string, year int) ([]models.Budget, error) {
				gotMonth, gotYear = month, year
				return []models.Budget{{Category: "Food", Amount: 400, Month: month, Year: year}}, nil
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(svc))

		rec := doRequest(r, "GET", "/budgets?month=2025-10", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotMonth != "2025-10" || gotYear != 2025 {
			t.Errorf("expected 2025-10/2025, got %s/%d", gotMonth, gotYear)
		}
		result := parseJSON(t, rec)
		budgets := result["budgets"].([]interface{})
		if len(budgets) != 1 {
			t.Errorf("expected 1 budget, got %d", len(budgets))
		}
	})

	t.Run("returns 400 on malformed month", func(t *testing.T) {
		r := setupBudgetRouter(NewBudgetHandler(&mockBudgetService{}))

		rec := doRequest(r, "GET", "/budgets?month=October", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})
}

func TestBudgetHandler_GetBudgetProgress(t *testing.T) {
	t.Run("returns all categories by default", func(t *testing.T) {
		svc := &mockBudgetService{
			getAllBudgetProgressFn: func(month string, year int) ([]budget.Progress, error) {
				return []budget.Progress{
					{Category: "Food", Budget: 400, Spent: 250, Percentage: 62.5, Status: budget.StatusHealthy, Remaining: 150},
					{Category: "Transport", Budget: 100, Spent: 95, Percentage: 95, Status: budget.StatusCritical, Remaining: 5},
				}, nil
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(svc))

		rec := doRequest(r, "GET", "/budgets/progress?month=2025-10", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		progress := result["progress"].([]interface{})
		if len(progress) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(progress))
		}
		first := progress[0].(map[string]interface{})
		if first["status"] != "healthy" {
			t.Errorf("expected healthy, got %v", first["status"])
		}
	})

	t.Run("filters to one category", func(t *testing.T) {
		svc := &mockBudgetService{
			getBudgetProgressFn: func(category, month string, year int) (*budget.Progress, error) {
				return &budget.Progress{Category: category, Budget: 400, Spent: 410, Percentage: 100, Status: budget.StatusOver, Remaining: -10}, nil
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(svc))

		rec := doRequest(r, "GET", "/budgets/progress?month=2025-10&category=Food", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		p := result["progress"].(map[string]interface{})
		if p["status"] != "over" {
			t.Errorf("expected over, got %v", p["status"])
		}
		if p["remaining"].(float64) != -10 {
			t.Errorf("expected remaining -10, got %v", p["remaining"])
		}
	})

	t.Run("returns 404 for an unbudgeted category", func(t *testing.T) {
		svc := &mockBudgetService{
			getBudgetProgressFn: func(_, _ string, _ int) (*budget.Progress, error) {
				return nil, apperrors.ErrBudgetNotFound
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(svc))

		rec := doRequest(r, "GET", "/budgets/progress?category=Yachts", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "BUDGET_NOT_FOUND")
	})
}

func TestBudgetHandler_GetMonthlySummary(t *testing.T) {
	svc := &mockBudgetService{
		getMonthlySummaryFn: func(month string, year int) (*budget.Summary, error) {
			return &budget.Summary{TotalBudget: 1400, TotalSpent: 1250, Percentage: 89.29, Remaining: 150}, nil
		},
	}
	r := setupBudgetRouter(NewBudgetHandler(svc))

	rec := doRequest(r, "GET", "/budgets/summary?month=2025-10", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	s := result["summary"].(map[string]interface{})
	if s["total_budget"].(float64) != 1400 {
		t.Errorf("expected total budget 1400, got %v", s["total_budget"])
	}
	if s["remaining"].(float64) != 150 {
		t.Errorf("expected remaining 150, got %v", s["remaining"])
	}
}

func TestBudgetHandler_GetBudgetAlerts(t *testing.T) {
	svc := &mockBudgetService{
		getBudgetAlertsFn: func(month string, year int) ([]string, error) {
			return []string{"You've exceeded your Food budget!"}, nil
		},
	}
	r := setupBudgetRouter(NewBudgetHandler(svc))

	rec := doRequest(r, "GET", "/budgets/alerts?month=2025-10", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	alerts := result["alerts"].([]interface{})
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
}

func TestBudgetHandler_DeleteBudget(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		r := setupBudgetRouter(NewBudgetHandler(&mockBudgetService{}))

		rec := doRequest(r, "DELETE", "/budgets/3", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("returns 400 on bad id", func(t *testing.T) {
		r := setupBudgetRouter(NewBudgetHandler(&mockBudgetService{}))

		rec := doRequest(r, "DELETE", "/budgets/abc", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}
