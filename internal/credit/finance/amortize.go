// internal/credit/finance/amortize.go

// Package finance holds the pure loan-math used by offer generation.
package finance

import "math"

// DefaultTermMonths is the term every offer amortizes over, independent
// of the term the applicant requested on intake.
const DefaultTermMonths = 60

// MonthlyPayment returns the equal periodic installment that fully
// amortizes principal over months at the nominal annual rate (percent).
// The zero-rate case is straight-line division; the compound formula
// would divide by zero there.
func MonthlyPayment(principal, annualRate float64, months int) float64 {
	if months < 1 {
		return 0
	}
	monthlyRate := annualRate / 100 / 12
	if monthlyRate == 0 {
		return principal / float64(months)
	}
	factor := math.Pow(1+monthlyRate, float64(months))
	return principal * monthlyRate * factor / (factor - 1)
}

// RoundPayment rounds an installment to the nearest whole currency unit,
// the precision offers are quoted at.
func RoundPayment(payment float64) float64 {
	return math.Round(payment)
}

// RoundAPR rounds a rate to two decimal places for presentation.
func RoundAPR(apr float64) float64 {
	return math.Round(apr*100) / 100
}
