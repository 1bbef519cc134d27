package services

import (
	"testing"

	"pennypilot/internal/models"
	"pennypilot/internal/testutil"
)

func TestNextOccurrence(t *testing.T) {
	cases := []struct {
		name     string
		date     string
		freq     models.Frequency
		interval int
		want     string
	}{
		{"daily", "2025-10-01", models.FrequencyDaily, 1, "2025-10-02"},
		{"every 10 days", "2025-10-01", models.FrequencyDaily, 10, "2025-10-11"},
		{"weekly", "2025-10-01", models.FrequencyWeekly, 1, "2025-10-08"},
		{"biweekly", "2025-10-01", models.FrequencyWeekly, 2, "2025-10-15"},
		{"monthly", "2025-10-15", models.FrequencyMonthly, 1, "2025-11-15"},
		{"quarterly", "2025-10-15", models.FrequencyMonthly, 3, "2026-01-15"},
		{"yearly", "2025-10-15", models.FrequencyYearly, 1, "2026-10-15"},
		{"month-end normalization", "2025-01-31", models.FrequencyMonthly, 1, "2025-03-03"},
		{"leap year month-end", "2024-01-31", models.FrequencyMonthly, 1, "2024-03-02"},
		{"year rollover", "2025-12-31", models.FrequencyDaily, 1, "2026-01-01"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := NextOccurrence(c.date, c.freq, c.interval)
			testutil.AssertNoError(t, err)
			if got != c.want {
				t.Errorf("NextOccurrence(%s, %s, %d) = %s, want %s", c.date, c.freq, c.interval, got, c.want)
			}
		})
	}

	t.Run("invalid date", func(t *testing.T) {
		_, err := NextOccurrence("not-a-date", models.FrequencyDaily, 1)
		testutil.AssertAppError(t, err, "INVALID_DATE")
	})

	t.Run("twelve monthly steps compose to one year", func(t *testing.T) {
		date := "2025-04-15"
		var err error
		for i := 0; i < 12; i++ {
			date, err = NextOccurrence(date, models.FrequencyMonthly, 1)
			testutil.AssertNoError(t, err)
		}
		if date != "2026-04-15" {
			t.Errorf("expected 2026-04-15 after 12 monthly steps, got %s", date)
		}
	})
}

func TestIsDue(t *testing.T) {
	tpl := &models.RecurringTransaction{IsActive: true, NextDate: "2025-10-10"}

	if !IsDue(tpl, "2025-10-10") {
		t.Error("expected due on the exact date")
	}
	if !IsDue(tpl, "2025-11-01") {
		t.Error("expected due after the date")
	}
	if IsDue(tpl, "2025-10-09") {
		t.Error("expected not due before the date")
	}

	tpl.IsActive = false
	if IsDue(tpl, "2025-12-01") {
		t.Error("inactive template must never be due")
	}
}

func TestPreviewOccurrences(t *testing.T) {
	dates, err := PreviewOccurrences("2025-10-01", models.FrequencyWeekly, 2, 4)
	testutil.AssertNoError(t, err)

	want := []string{"2025-10-01", "2025-10-15", "2025-10-29", "2025-11-12"}
	if len(dates) != len(want) {
		t.Fatalf("expected %d dates, got %d", len(want), len(dates))
	}
	for i := range want {
		if dates[i] != want[i] {
			t.Errorf("occurrence %d: expected %s, got %s", i, want[i], dates[i])
		}
	}
}

func TestDescribeFrequency(t *testing.T) {
	cases := []struct {
		freq     models.Frequency
		interval int
		want     string
	}{
		{models.FrequencyDaily, 1, "Daily"},
		{models.FrequencyWeekly, 1, "Weekly"},
		{models.FrequencyMonthly, 1, "Monthly"},
		{models.FrequencyYearly, 1, "Yearly"},
		{models.FrequencyDaily, 3, "Every 3 days"},
		{models.FrequencyMonthly, 3, "Every 3 months"},
		{models.FrequencyYearly, 2, "Every 2 years"},
	}
	for _, c := range cases {
		if got := DescribeFrequency(c.freq, c.interval); got != c.want {
			t.Errorf("DescribeFrequency(%s, %d) = %q, want %q", c.freq, c.interval, got, c.want)
		}
	}
}

func TestCreateRecurring(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db)

		tpl, err := svc.CreateRecurring(1200, "Rent", "Housing", models.TransactionTypeExpense, nil,
			models.FrequencyMonthly, 1, "2025-11-01", nil)
		testutil.AssertNoError(t, err)

		if tpl.ID == 0 {
			t.Fatal("expected non-zero template ID")
		}
		if !tpl.IsActive {
			t.Error("expected template to start active")
		}
		if tpl.LastGeneratedDate != nil {
			t.Error("expected no last generated date on creation")
		}
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db)

		_, err := svc.CreateRecurring(0, "Rent", "Housing", models.TransactionTypeExpense, nil,
			models.FrequencyMonthly, 1, "2025-11-01", nil)
		testutil.AssertAppError(t, err, "INVALID_AMOUNT")
	})

	t.Run("rejects zero interval", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db)

		_, err := svc.CreateRecurring(50, "Gym", "Healthcare", models.TransactionTypeExpense, nil,
			models.FrequencyMonthly, 0, "2025-11-01", nil)
		testutil.AssertAppError(t, err, "INVALID_INTERVAL")
	})

	t.Run("rejects end date not after start", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db)

		end := "2025-11-01"
		_, err := svc.CreateRecurring(50, "Gym", "Healthcare", models.TransactionTypeExpense, nil,
			models.FrequencyMonthly, 1, "2025-11-01", &end)
		testutil.AssertAppError(t, err, "INVALID_END_DATE")
	})
}

func TestGenerateDueTransactions(t *testing.T) {
	t.Run("generates one transaction per due template", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db)

		testutil.CreateTestRecurring(t, db, "2025-10-01")
		testutil.CreateTestRecurring(t, db, "2025-10-05")
		testutil.CreateTestRecurring(t, db, "2025-12-01") // not yet due

		count, err := svc.GenerateDueTransactions("2025-10-15")
		testutil.AssertNoError(t, err)
		if count != 2 {
			t.Errorf("expected 2 generated, got %d", count)
		}

		var txCount int64
		db.Model(&models.Transaction{}).Count(&txCount)
		if txCount != 2 {
			t.Errorf("expected 2 stored transactions, got %d", txCount)
		}
	})

	t.Run("transaction is dated at the occurrence, not the sweep", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db)

		tpl := testutil.CreateTestRecurring(t, db, "2025-10-01")

		_, err := svc.GenerateDueTransactions("2025-10-20")
		testutil.AssertNoError(t, err)

		var tx models.Transaction
		testutil.AssertNoError(t, db.First(&tx).Error)
		if tx.Date != "2025-10-01" {
			t.Errorf("expected transaction dated 2025-10-01, got %s", tx.Date)
		}
		if tx.RecurringTransactionID == nil || *tx.RecurringTransactionID != tpl.ID {
			t.Error("expected back-reference to the template")
		}
		if tx.ExcludeFromReports {
			t.Error("generated transactions must not be excluded from reports")
		}
	})

	t.Run("one step per call when several periods behind", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db)

		// Three monthly periods behind as of 2025-10-15.
		tpl := testutil.CreateTestRecurring(t, db, "2025-07-15")

		count, err := svc.GenerateDueTransactions("2025-10-15")
		testutil.AssertNoError(t, err)
		if count != 1 {
			t.Fatalf("expected exactly 1 generated on first call, got %d", count)
		}

		got, err := svc.GetRecurringByID(tpl.ID)
		testutil.AssertNoError(t, err)
		if got.NextDate != "2025-08-15" {
			t.Errorf("expected next date advanced one period to 2025-08-15, got %s", got.NextDate)
		}
		if got.LastGeneratedDate == nil || *got.LastGeneratedDate != "2025-07-15" {
			t.Errorf("expected last generated date 2025-07-15, got %v", got.LastGeneratedDate)
		}

		// Repeated sweeps catch up the remaining periods one at a time.
		total := count
		for i := 0; i < 5; i++ {
			n, err := svc.GenerateDueTransactions("2025-10-15")
			testutil.AssertNoError(t, err)
			total += n
		}
		if total != 4 {
			t.Errorf("expected 4 transactions after catching up (Jul..Oct), got %d", total)
		}

		got, err = svc.GetRecurringByID(tpl.ID)
		testutil.AssertNoError(t, err)
		if got.NextDate != "2025-11-15" {
			t.Errorf("expected next date 2025-11-15 once caught up, got %s", got.NextDate)
		}
	})

	t.Run("second call with no time passing is a no-op", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db)

		testutil.CreateTestRecurring(t, db, "2025-10-01")

		first, err := svc.GenerateDueTransactions("2025-10-01")
		testutil.AssertNoError(t, err)
		if first != 1 {
			t.Fatalf("expected 1 generated on first call, got %d", first)
		}

		second, err := svc.GenerateDueTransactions("2025-10-01")
		testutil.AssertNoError(t, err)
		if second != 0 {
			t.Errorf("expected 0 generated on second call, got %d", second)
		}
	})

	t.Run("deactivates when advanced date passes end date", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db)

		end := "2025-10-20"
		tpl := testutil.CreateTestRecurringWithSchedule(t, db, models.FrequencyMonthly, 1, "2025-10-01", &end)

		count, err := svc.GenerateDueTransactions("2025-10-01")
		testutil.AssertNoError(t, err)
		if count != 1 {
			t.Fatalf("expected 1 generated, got %d", count)
		}

		got, err := svc.GetRecurringByID(tpl.ID)
		testutil.AssertNoError(t, err)
		if got.IsActive {
			t.Error("expected template deactivated once next date passed end date")
		}
		if got.NextDate != "2025-11-01" {
			t.Errorf("expected next date still advanced to 2025-11-01, got %s", got.NextDate)
		}
	})

	t.Run("inactive templates never generate", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db)

		tpl := testutil.CreateTestRecurring(t, db, "2025-10-01")
		_, err := svc.SetRecurringActive(tpl.ID, false)
		testutil.AssertNoError(t, err)

		count, err := svc.GenerateDueTransactions("2025-10-15")
		testutil.AssertNoError(t, err)
		if count != 0 {
			t.Errorf("expected 0 generated for paused template, got %d", count)
		}
	})

	t.Run("manual reactivation past end date generates once then re-deactivates", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db)

		end := "2025-10-20"
		tpl := testutil.CreateTestRecurringWithSchedule(t, db, models.FrequencyMonthly, 1, "2025-10-01", &end)

		_, err := svc.GenerateDueTransactions("2025-10-01")
		testutil.AssertNoError(t, err)

		// The user flips it back on even though the schedule is spent.
		_, err = svc.SetRecurringActive(tpl.ID, true)
		testutil.AssertNoError(t, err)

		count, err := svc.GenerateDueTransactions("2025-11-01")
		testutil.AssertNoError(t, err)
		if count != 1 {
			t.Fatalf("expected the pending occurrence to generate, got %d", count)
		}

		got, err := svc.GetRecurringByID(tpl.ID)
		testutil.AssertNoError(t, err)
		if got.IsActive {
			t.Error("expected the cycle to re-deactivate the template")
		}
	})
}

func TestDeleteRecurringKeepsGeneratedTransactions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewRecurringService(db)

	tpl := testutil.CreateTestRecurring(t, db, "2025-10-01")
	_, err := svc.GenerateDueTransactions("2025-10-01")
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, svc.DeleteRecurring(tpl.ID))

	var txCount int64
	db.Model(&models.Transaction{}).Count(&txCount)
	if txCount != 1 {
		t.Errorf("expected generated transaction to survive template deletion, got %d rows", txCount)
	}

	var tx models.Transaction
	testutil.AssertNoError(t, db.First(&tx).Error)
	if tx.RecurringTransactionID == nil || *tx.RecurringTransactionID != tpl.ID {
		t.Error("expected orphaned back-reference to remain")
	}
}

func TestUpdateRecurring(t *testing.T) {
	t.Run("updates schedule fields", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db)

		tpl := testutil.CreateTestRecurring(t, db, "2025-10-01")

		freq := models.FrequencyWeekly
		interval := 2
		_, err := svc.UpdateRecurring(tpl.ID, RecurringUpdate{Frequency: &freq, IntervalCount: &interval})
		testutil.AssertNoError(t, err)

		got, err := svc.GetRecurringByID(tpl.ID)
		testutil.AssertNoError(t, err)
		if got.Frequency != models.FrequencyWeekly || got.IntervalCount != 2 {
			t.Errorf("expected weekly/2, got %s/%d", got.Frequency, got.IntervalCount)
		}
	})

	t.Run("rejects end date before next date", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db)

		tpl := testutil.CreateTestRecurring(t, db, "2025-10-01")

		end := "2025-09-01"
		_, err := svc.UpdateRecurring(tpl.ID, RecurringUpdate{EndDate: &end})
		testutil.AssertAppError(t, err, "INVALID_END_DATE")
	})

	t.Run("not found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db)

		_, err := svc.GetRecurringByID(9999)
		testutil.AssertAppError(t, err, "RECURRING_NOT_FOUND")
	})
}
