package services

import (
	"math"
	"strings"
	"testing"

	"bidcraft-backend/models"
)

func item(category models.LineItemCategory, qty, price, total float64) models.LineItem {
	return models.LineItem{
		Category:    category,
		Description: "test item",
		Quantity:    qty,
		Unit:        "each",
		UnitPrice:   price,
		Total:       total,
	}
}

func TestCalculatePricingRoundTrip(t *testing.T) {
	items := []models.LineItem{
		item(models.CategoryMaterial, 2, 10, 20),
		item(models.CategoryLabor, 1, 5, 5),
	}

	calc := CalculatePricing(items, 10)
	if calc.Subtotal != 25 {
		t.Fatalf("expected subtotal 25, got %v", calc.Subtotal)
	}
	if calc.TaxAmount != 2.5 {
		t.Fatalf("expected tax 2.5, got %v", calc.TaxAmount)
	}
	if calc.Total != 27.5 {
		t.Fatalf("expected total 27.5, got %v", calc.Total)
	}
	if len(calc.ValidationErrors) != 0 {
		t.Fatalf("expected no validation errors, got %v", calc.ValidationErrors)
	}
}

func TestZeroItems(t *testing.T) {
	calc := CalculatePricing(nil, 8.25)
	if calc.Subtotal != 0 || calc.TaxAmount != 0 || calc.Total != 0 {
		t.Fatalf("expected all-zero totals, got %+v", calc)
	}
	if len(calc.CategoryBreakdown) != 0 {
		t.Fatalf("expected empty breakdown, got %v", calc.CategoryBreakdown)
	}
	if len(calc.ValidationErrors) != 0 {
		t.Fatalf("empty items must warn, not error: %v", calc.ValidationErrors)
	}
	if len(calc.Warnings) != 1 || !strings.Contains(calc.Warnings[0], "No line items") {
		t.Fatalf("expected a no-line-items warning, got %v", calc.Warnings)
	}
}

func TestSubtotalTrustsStoredTotals(t *testing.T) {
	// The stored total feeds the subtotal even when it disagrees with
	// quantity * unit price; the disagreement is surfaced only through
	// validation. Manual overrides depend on this.
	items := []models.LineItem{item(models.CategoryMaterial, 2, 10, 999)}

	if got := CalculateSubtotal(items); got != 999 {
		t.Fatalf("expected subtotal to trust the stored total, got %v", got)
	}

	calc := CalculatePricing(items, 0)
	if calc.Subtotal != 999 {
		t.Fatalf("expected subtotal 999, got %v", calc.Subtotal)
	}
	if len(calc.ValidationErrors) == 0 {
		t.Fatalf("expected the mismatch to be flagged")
	}
}

func TestMismatchDetection(t *testing.T) {
	items := []models.LineItem{
		item(models.CategoryMaterial, 1, 10, 10),
		item(models.CategoryMaterial, 2, 10, 999),
	}

	validation := ValidatePricing(items, 1009)
	if validation.IsValid {
		t.Fatalf("expected mismatch to fail validation")
	}
	found := false
	for _, e := range validation.Errors {
		if strings.Contains(e, "Line item 2") && strings.Contains(e, "mismatch") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a mismatch error referencing item 2, got %v", validation.Errors)
	}
}

func TestMismatchTolerance(t *testing.T) {
	// Drift within a cent is floating-point noise, not corruption
	items := []models.LineItem{item(models.CategoryMaterial, 3, 10.01, 30.035)}
	validation := ValidatePricing(items, 30.035)
	if !validation.IsValid {
		t.Fatalf("expected drift within tolerance to pass, got %v", validation.Errors)
	}
}

func TestQuantityBounds(t *testing.T) {
	items := []models.LineItem{item(models.CategoryMaterial, 200000, 1, 200000)}
	validation := ValidatePricing(items, 200000)
	if validation.IsValid {
		t.Fatalf("expected quantity above the limit to fail")
	}
	found := false
	for _, e := range validation.Errors {
		if strings.Contains(e, "Quantity exceeds maximum limit of 100,000") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a quantity limit error, got %v", validation.Errors)
	}

	items = []models.LineItem{item(models.CategoryMaterial, 0, 10, 0)}
	validation = ValidatePricing(items, 0)
	if validation.IsValid {
		t.Fatalf("expected zero quantity to fail")
	}
}

func TestUnitPriceBounds(t *testing.T) {
	items := []models.LineItem{item(models.CategoryMaterial, 1, 0.001, 0.001)}
	validation := ValidatePricing(items, 0.001)
	if validation.IsValid {
		t.Fatalf("expected unit price below the minimum to fail")
	}
	found := false
	for _, e := range validation.Errors {
		if strings.Contains(e, "Unit price must be at least $0.01") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a unit price minimum error, got %v", validation.Errors)
	}

	items = []models.LineItem{item(models.CategoryMaterial, 1, 10001, 10001)}
	validation = ValidatePricing(items, 10001)
	if validation.IsValid {
		t.Fatalf("expected unit price above the maximum to fail")
	}
	found = false
	for _, e := range validation.Errors {
		if strings.Contains(e, "Unit price exceeds maximum limit of $10,000.00") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a unit price maximum error, got %v", validation.Errors)
	}
}

func TestMissingDescription(t *testing.T) {
	li := item(models.CategoryMaterial, 1, 10, 10)
	li.Description = "   "
	validation := ValidatePricing([]models.LineItem{li}, 10)
	if validation.IsValid {
		t.Fatalf("expected blank description to fail")
	}
	if !strings.Contains(validation.Errors[0], "Line item 1: Description is required") {
		t.Fatalf("unexpected error: %v", validation.Errors)
	}
}

func TestGrandTotalCap(t *testing.T) {
	validation := ValidatePricing([]models.LineItem{item(models.CategoryMaterial, 1, 10, 10)}, 10000001)
	if validation.IsValid {
		t.Fatalf("expected grand total above the cap to fail")
	}
	found := false
	for _, e := range validation.Errors {
		if strings.Contains(e, "Total amount exceeds maximum limit of $10,000,000.00") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a grand total error, got %v", validation.Errors)
	}
}

func TestZeroTotalWarning(t *testing.T) {
	li := item(models.CategoryMaterial, 2, 10, 0)
	validation := ValidatePricing([]models.LineItem{li}, 0)
	// The zero total also trips the mismatch error; the stale-total warning
	// must still be present on its own
	found := false
	for _, w := range validation.Warnings {
		if strings.Contains(w, "Total is zero despite having quantity and unit price") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a zero-total warning, got %v", validation.Warnings)
	}
}

func TestCategoryBreakdownOmitsEmptyCategories(t *testing.T) {
	items := []models.LineItem{
		item(models.CategoryMaterial, 2, 50, 100),
		item(models.CategoryMaterial, 1, 100, 100),
		item(models.CategoryLabor, 10, 30, 300),
	}
	subtotal := CalculateSubtotal(items)

	breakdown := CalculateCategoryBreakdown(items, subtotal)
	if len(breakdown) != 2 {
		t.Fatalf("expected 2 categories, got %v", breakdown)
	}

	var pctSum float64
	for _, b := range breakdown {
		if b.Count < 1 {
			t.Fatalf("breakdown entry with no items: %+v", b)
		}
		pctSum += b.Percentage
	}
	if math.Abs(pctSum-1.0) > 1e-9 {
		t.Fatalf("expected percentages to sum to 1.0, got %v", pctSum)
	}

	if breakdown[0].Category != models.CategoryMaterial || breakdown[0].Total != 200 || breakdown[0].Count != 2 {
		t.Fatalf("unexpected material entry: %+v", breakdown[0])
	}
	if breakdown[1].Category != models.CategoryLabor || breakdown[1].Total != 300 {
		t.Fatalf("unexpected labor entry: %+v", breakdown[1])
	}
}

func TestCategoryBreakdownZeroSubtotal(t *testing.T) {
	items := []models.LineItem{item(models.CategoryMaterial, 1, 10, 0)}
	breakdown := CalculateCategoryBreakdown(items, 0)
	if len(breakdown) != 1 {
		t.Fatalf("expected 1 entry, got %v", breakdown)
	}
	if breakdown[0].Percentage != 0 {
		t.Fatalf("expected percentage 0 at zero subtotal, got %v", breakdown[0].Percentage)
	}
}

func TestMaterialLaborRatioWarnings(t *testing.T) {
	// Material heavy
	items := []models.LineItem{
		item(models.CategoryMaterial, 1, 5000, 5000),
		item(models.CategoryLabor, 1, 100, 100),
	}
	validation := ValidatePricing(items, 5100)
	found := false
	for _, w := range validation.Warnings {
		if strings.Contains(w, "Material costs are significantly higher") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a material-heavy warning, got %v", validation.Warnings)
	}
	if !validation.IsValid {
		t.Fatalf("ratio warnings must not block: %v", validation.Errors)
	}

	// Labor heavy
	items = []models.LineItem{
		item(models.CategoryMaterial, 1, 100, 100),
		item(models.CategoryLabor, 1, 5000, 5000),
	}
	validation = ValidatePricing(items, 5100)
	found = false
	for _, w := range validation.Warnings {
		if strings.Contains(w, "Labor costs are significantly higher") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a labor-heavy warning, got %v", validation.Warnings)
	}
}

func TestMaterialLaborRatioZeroLaborGuard(t *testing.T) {
	// labor items exist but total zero: the check is skipped, never NaN/Inf
	items := []models.LineItem{
		item(models.CategoryMaterial, 1, 5000, 5000),
		item(models.CategoryLabor, 1, 10, 0),
	}
	validation := ValidatePricing(items, 5000)
	for _, w := range validation.Warnings {
		if strings.Contains(w, "significantly higher") {
			t.Fatalf("expected ratio check to be skipped at zero labor total, got %v", validation.Warnings)
		}
	}
}

func TestTaxAmount(t *testing.T) {
	if got := CalculateTaxAmount(1000, 8.25); math.Abs(got-82.5) > 1e-9 {
		t.Fatalf("expected 82.5, got %v", got)
	}
	if got := CalculateTaxAmount(1000, 0); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}

func TestMarginHelpers(t *testing.T) {
	if got := ApplyOverhead(1000, 15); got != 150 {
		t.Fatalf("overhead: expected 150, got %v", got)
	}
	if got := ApplyProfitMargin(1000, 20); got != 200 {
		t.Fatalf("profit: expected 200, got %v", got)
	}
	if got := CalculateMarkup(100, 150); got != 50 {
		t.Fatalf("markup: expected 50, got %v", got)
	}
	if got := CalculateMarkup(0, 150); got != 0 {
		t.Fatalf("markup at zero cost: expected 0, got %v", got)
	}
	if got := CalculateProfitMargin(100, 200); got != 50 {
		t.Fatalf("margin: expected 50, got %v", got)
	}
	if got := CalculateProfitMargin(100, 0); got != 0 {
		t.Fatalf("margin at zero price: expected 0, got %v", got)
	}
}

func TestEstimationHelpers(t *testing.T) {
	if got := CalculateSquareFootagePricing(100, 12.5, 1.0); got != 1250 {
		t.Fatalf("sq ft pricing: expected 1250, got %v", got)
	}
	if got := CalculateSquareFootagePricing(100, 12.5, 1.5); got != 1875 {
		t.Fatalf("sq ft pricing with multiplier: expected 1875, got %v", got)
	}

	if got := CalculateLaborHours(100, models.ProjectCurtainWall); got != 80 {
		t.Fatalf("labor hours: expected 80, got %v", got)
	}
	if got := CalculateLaborHours(100, models.ProjectType("greenhouse")); got != 50 {
		t.Fatalf("labor hours default: expected 50, got %v", got)
	}

	if got := CalculateEquipmentCosts(3, "crane"); got != 2400 {
		t.Fatalf("equipment: expected 2400, got %v", got)
	}
	if got := CalculateEquipmentCosts(3, "laser"); got != 300 {
		t.Fatalf("equipment default: expected 300, got %v", got)
	}
}

func TestSuggestedPrice(t *testing.T) {
	if got := SuggestedPrice(`Tempered Glass 1/4"`, "sq ft"); got != 12.50 {
		t.Fatalf("expected 12.50, got %v", got)
	}
	if got := SuggestedPrice("Unobtainium", "sq ft"); got != 0 {
		t.Fatalf("expected 0 for unknown material, got %v", got)
	}
	if got := SuggestedPrice("Silicone Sealant", "sq ft"); got != 0 {
		t.Fatalf("expected 0 for unknown unit, got %v", got)
	}
}

func TestFormatting(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{0.01, "$0.01"},
		{1234.5, "$1,234.50"},
		{10000, "$10,000.00"},
		{10000000, "$10,000,000.00"},
		{-99.9, "-$99.90"},
	}
	for _, tc := range cases {
		if got := FormatCurrency(tc.in); got != tc.want {
			t.Fatalf("FormatCurrency(%v): expected %q, got %q", tc.in, tc.want, got)
		}
	}

	if got := FormatPercentage(12.5); got != "12.50%" {
		t.Fatalf("expected 12.50%%, got %q", got)
	}
}
