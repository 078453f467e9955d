// services/pricing.go
package services

import (
	"fmt"
	"math"
	"strings"

	"bidcraft-backend/models"
)

// Policy limits for proposal pricing.
const (
	MaxTotal     = 10000000 // $10M maximum proposal total
	MaxUnitPrice = 10000    // $10K maximum unit price
	MinUnitPrice = 0.01     // $0.01 minimum unit price
	MaxQuantity  = 100000   // 100K maximum quantity
)

// totalTolerance absorbs floating-point drift between a stored line total and
// quantity * unit price.
const totalTolerance = 0.01

// PricingCalculation is the complete recomputation snapshot for a proposal's
// line items. It is the single result a caller needs after any edit.
type PricingCalculation struct {
	Subtotal          float64             `json:"subtotal"`
	TaxAmount         float64             `json:"taxAmount"`
	Total             float64             `json:"total"`
	CategoryBreakdown []CategoryBreakdown `json:"categoryBreakdown"`
	ValidationErrors  []string            `json:"validationErrors"`
	Warnings          []string            `json:"warnings"`
}

type CategoryBreakdown struct {
	Category   models.LineItemCategory `json:"category"`
	Total      float64                 `json:"total"`
	Count      int                     `json:"count"`
	Percentage float64                 `json:"percentage"`
}

type PricingValidation struct {
	IsValid  bool     `json:"isValid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// CalculatePricing composes subtotal, tax, category breakdown, and validation
// into one snapshot. Pure: no I/O, no clock, no mutation of the input.
func CalculatePricing(items []models.LineItem, taxRate float64) PricingCalculation {
	subtotal := CalculateSubtotal(items)
	taxAmount := CalculateTaxAmount(subtotal, taxRate)
	total := subtotal + taxAmount
	breakdown := CalculateCategoryBreakdown(items, subtotal)
	validation := ValidatePricing(items, total)

	return PricingCalculation{
		Subtotal:          subtotal,
		TaxAmount:         taxAmount,
		Total:             total,
		CategoryBreakdown: breakdown,
		ValidationErrors:  validation.Errors,
		Warnings:          validation.Warnings,
	}
}

// CalculateSubtotal sums the stored total of each line item. The stored total
// is trusted here even when it disagrees with quantity * unit price (manual
// overrides keep their value); the disagreement surfaces through
// ValidatePricing instead.
func CalculateSubtotal(items []models.LineItem) float64 {
	var sum float64
	for _, item := range items {
		sum += item.Total
	}
	return sum
}

// CalculateTaxAmount applies a percent tax rate to the subtotal.
func CalculateTaxAmount(subtotal, taxRate float64) float64 {
	return subtotal * (taxRate / 100)
}

// CalculateCategoryBreakdown groups line items by category. Categories with no
// items are omitted. Percentage is the category's share of the subtotal, 0
// when the subtotal is 0.
func CalculateCategoryBreakdown(items []models.LineItem, subtotal float64) []CategoryBreakdown {
	breakdowns := []CategoryBreakdown{}

	for _, category := range models.LineItemCategories {
		var categoryTotal float64
		count := 0
		for _, item := range items {
			if item.Category == category {
				categoryTotal += item.Total
				count++
			}
		}
		if count == 0 {
			continue
		}

		percentage := 0.0
		if subtotal > 0 {
			percentage = categoryTotal / subtotal
		}
		breakdowns = append(breakdowns, CategoryBreakdown{
			Category:   category,
			Total:      categoryTotal,
			Count:      count,
			Percentage: percentage,
		})
	}

	return breakdowns
}

// ValidatePricing checks line items and the grand total against policy limits.
// Errors block; warnings are advisory. Item indexes in messages are 1-based.
func ValidatePricing(items []models.LineItem, total float64) PricingValidation {
	errors := []string{}
	warnings := []string{}

	if len(items) == 0 {
		warnings = append(warnings, "No line items added. Add items to calculate pricing.")
	}

	for i, item := range items {
		n := i + 1

		if strings.TrimSpace(item.Description) == "" {
			errors = append(errors, fmt.Sprintf("Line item %d: Description is required", n))
		}

		if item.Quantity <= 0 {
			errors = append(errors, fmt.Sprintf("Line item %d: Quantity must be greater than 0", n))
		}
		if item.Quantity > MaxQuantity {
			errors = append(errors, fmt.Sprintf("Line item %d: Quantity exceeds maximum limit of %s", n, formatGrouped(MaxQuantity)))
		}

		if item.UnitPrice < MinUnitPrice {
			errors = append(errors, fmt.Sprintf("Line item %d: Unit price must be at least %s", n, FormatCurrency(MinUnitPrice)))
		}
		if item.UnitPrice > MaxUnitPrice {
			errors = append(errors, fmt.Sprintf("Line item %d: Unit price exceeds maximum limit of %s", n, FormatCurrency(MaxUnitPrice)))
		}

		expected := item.Quantity * item.UnitPrice
		if math.Abs(item.Total-expected) > totalTolerance {
			errors = append(errors, fmt.Sprintf("Line item %d: Total calculation mismatch. Expected %s, got %s",
				n, FormatCurrency(expected), FormatCurrency(item.Total)))
		}

		if item.Total == 0 && item.Quantity > 0 && item.UnitPrice > 0 {
			warnings = append(warnings, fmt.Sprintf("Line item %d: Total is zero despite having quantity and unit price", n))
		}
	}

	if total > MaxTotal {
		errors = append(errors, fmt.Sprintf("Total amount exceeds maximum limit of %s", FormatCurrency(MaxTotal)))
	}

	var materialTotal, laborTotal float64
	materialCount, laborCount := 0, 0
	for _, item := range items {
		switch item.Category {
		case models.CategoryMaterial:
			materialTotal += item.Total
			materialCount++
		case models.CategoryLabor:
			laborTotal += item.Total
			laborCount++
		}
	}
	// Skip the ratio check when labor totals zero rather than dividing by it.
	if materialCount > 0 && laborCount > 0 && laborTotal != 0 {
		ratio := materialTotal / laborTotal
		if ratio > 10 {
			warnings = append(warnings, "Material costs are significantly higher than labor costs. Consider reviewing pricing.")
		} else if ratio < 0.1 {
			warnings = append(warnings, "Labor costs are significantly higher than material costs. Consider reviewing pricing.")
		}
	}

	return PricingValidation{
		IsValid:  len(errors) == 0,
		Errors:   errors,
		Warnings: warnings,
	}
}

// LineItemTotal computes the expected total for a quantity at a unit price.
func LineItemTotal(quantity, unitPrice float64) float64 {
	return quantity * unitPrice
}

// ApplyOverhead returns the overhead amount for a subtotal at a percent rate.
func ApplyOverhead(subtotal, overheadPercentage float64) float64 {
	return subtotal * (overheadPercentage / 100)
}

// ApplyProfitMargin returns the profit amount for a subtotal at a percent rate.
func ApplyProfitMargin(subtotal, profitPercentage float64) float64 {
	return subtotal * (profitPercentage / 100)
}

// CalculateMarkup returns the markup percentage over cost, 0 when cost is 0.
func CalculateMarkup(cost, sellingPrice float64) float64 {
	if cost == 0 {
		return 0
	}
	return (sellingPrice - cost) / cost * 100
}

// CalculateProfitMargin returns the margin percentage of the selling price,
// 0 when the selling price is 0.
func CalculateProfitMargin(cost, sellingPrice float64) float64 {
	if sellingPrice == 0 {
		return 0
	}
	return (sellingPrice - cost) / sellingPrice * 100
}

// CalculateSquareFootagePricing prices an area at a base rate scaled by a
// complexity multiplier (1.0 for standard work).
func CalculateSquareFootagePricing(squareFootage, baseRate, complexityMultiplier float64) float64 {
	return squareFootage * baseRate * complexityMultiplier
}

// laborHourRates is hours of labor per square foot by project type.
var laborHourRates = map[models.ProjectType]float64{
	models.ProjectStorefrontInstallation: 0.5,
	models.ProjectCurtainWall:            0.8,
	models.ProjectGlassDoors:             0.3,
	models.ProjectGlassRailings:          0.4,
	models.ProjectShowers:                0.6,
	models.ProjectGlassCanopies:          1.0,
	models.ProjectCustomInstallation:     1.2,
}

// CalculateLaborHours estimates labor hours for an area by project type,
// defaulting to 0.5 hours per square foot for unknown types.
func CalculateLaborHours(squareFootage float64, projectType models.ProjectType) float64 {
	rate, ok := laborHourRates[projectType]
	if !ok {
		rate = 0.5
	}
	return squareFootage * rate
}

// equipmentDailyRates is rental cost per day by equipment type.
var equipmentDailyRates = map[string]float64{
	"scaffolding":     150,
	"crane":           800,
	"lift":            300,
	"specialty_tools": 75,
}

// CalculateEquipmentCosts estimates rental cost for a project duration in
// days, defaulting to $100/day for unknown equipment types.
func CalculateEquipmentCosts(projectDuration float64, equipmentType string) float64 {
	rate, ok := equipmentDailyRates[equipmentType]
	if !ok {
		rate = 100
	}
	return projectDuration * rate
}

// suggestedPrices maps common glazing materials to a suggested unit price.
var suggestedPrices = map[string]map[string]float64{
	`Tempered Glass 1/4"`:      {"sq ft": 12.50},
	"Insulated Glass Unit":     {"sq ft": 28.00},
	"Aluminum Frame System":    {"lin ft": 45.00},
	"Silicone Sealant":         {"tube": 8.75},
	"Glass Door Hardware":      {"set": 125.00},
	"Stainless Steel Railings": {"lin ft": 85.00},
}

// SuggestedPrice returns the catalog suggestion for a material and unit, or 0
// when there is none.
func SuggestedPrice(materialName, unit string) float64 {
	if byUnit, ok := suggestedPrices[materialName]; ok {
		return byUnit[unit]
	}
	return 0
}

// FormatCurrency renders an amount in USD display style, e.g. $1,234.56.
func FormatCurrency(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	s := fmt.Sprintf("%.2f", amount)
	dot := strings.Index(s, ".")
	return sign + "$" + groupThousands(s[:dot]) + s[dot:]
}

// FormatPercentage renders a percent value with two decimals, e.g. 12.50%.
func FormatPercentage(value float64) string {
	return fmt.Sprintf("%.2f%%", value)
}

func formatGrouped(n int) string {
	return groupThousands(fmt.Sprintf("%d", n))
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
