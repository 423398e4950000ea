// internal/credit/intake/validator.go

// Package intake normalizes and validates raw application payloads into
// typed requests. It is the single validation contract shared by the
// submission and update paths; nothing downstream re-validates fields.
package intake

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"lending-workers/internal/models"
)

const (
	MinAnnualIncome = 50000
	MinDownPayment  = 10000
	MinLoanAmount   = 80000
	MaxLoanAmount   = 500000
	MinTermMonths   = 24
	MaxTermMonths   = 84
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^\d{10}$`)
	ssnRegex   = regexp.MustCompile(`^\d{9}$`)
	stateRegex = regexp.MustCompile(`^[A-Za-z]{2}$`)
	zipRegex   = regexp.MustCompile(`^\d{5}$`)
)

// FieldError describes one failing field in a submission.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationError carries every failing field, not just the first. It is
// recoverable: the caller fixes the payload and re-submits.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return fmt.Sprintf("validation failed for %d field(s): %s", len(e.Fields), strings.Join(names, ", "))
}

// Validate checks a raw payload against the intake contract and returns a
// typed request. All rules are evaluated; the error lists every failure.
func Validate(raw map[string]interface{}) (*models.ApplicationRequest, *ValidationError) {
	var errs []FieldError
	req := &models.ApplicationRequest{}

	req.FirstName = requireString(raw, "firstName", &errs, func(v string) *FieldError {
		if len(v) < 2 {
			return &FieldError{Field: "firstName", Code: "TOO_SHORT", Message: "First name must be at least 2 characters"}
		}
		return nil
	})
	req.LastName = requireString(raw, "lastName", &errs, func(v string) *FieldError {
		if len(v) < 2 {
			return &FieldError{Field: "lastName", Code: "TOO_SHORT", Message: "Last name must be at least 2 characters"}
		}
		return nil
	})
	req.Email = requireString(raw, "email", &errs, func(v string) *FieldError {
		if !emailRegex.MatchString(v) {
			return &FieldError{Field: "email", Code: "INVALID_FORMAT", Message: "Invalid email format"}
		}
		return nil
	})
	req.Phone = requireString(raw, "phone", &errs, func(v string) *FieldError {
		if !phoneRegex.MatchString(v) {
			return &FieldError{Field: "phone", Code: "INVALID_FORMAT", Message: "Phone must be exactly 10 digits"}
		}
		return nil
	})
	req.SSN = requireString(raw, "ssn", &errs, func(v string) *FieldError {
		if !ssnRegex.MatchString(v) {
			return &FieldError{Field: "ssn", Code: "INVALID_FORMAT", Message: "SSN must be exactly 9 digits"}
		}
		return nil
	})
	req.DOB = requireString(raw, "dob", &errs, func(v string) *FieldError {
		if _, err := time.Parse("2006-01-02", v); err != nil {
			return &FieldError{Field: "dob", Code: "INVALID_DATE", Message: "Date of birth must be a valid YYYY-MM-DD date"}
		}
		return nil
	})
	req.Address = requireString(raw, "address", &errs, func(v string) *FieldError {
		if len(v) < 5 {
			return &FieldError{Field: "address", Code: "TOO_SHORT", Message: "Street address must be at least 5 characters"}
		}
		return nil
	})
	req.City = requireString(raw, "city", &errs, func(v string) *FieldError {
		if len(v) < 2 {
			return &FieldError{Field: "city", Code: "TOO_SHORT", Message: "City must be at least 2 characters"}
		}
		return nil
	})
	req.State = requireString(raw, "state", &errs, func(v string) *FieldError {
		if !stateRegex.MatchString(v) {
			return &FieldError{Field: "state", Code: "INVALID_FORMAT", Message: "State must be a 2-letter code"}
		}
		return nil
	})
	if req.State != "" {
		req.State = strings.ToUpper(req.State)
	}
	req.ZipCode = requireString(raw, "zipCode", &errs, func(v string) *FieldError {
		if !zipRegex.MatchString(v) {
			return &FieldError{Field: "zipCode", Code: "INVALID_FORMAT", Message: "Zip code must be exactly 5 digits"}
		}
		return nil
	})

	req.AnnualIncome = requireNumber(raw, "annualIncome", &errs, func(v float64) *FieldError {
		if v < MinAnnualIncome {
			return &FieldError{Field: "annualIncome", Code: "BELOW_MINIMUM", Message: fmt.Sprintf("Annual income must be at least $%d", MinAnnualIncome)}
		}
		return nil
	})
	req.DownPayment = requireNumber(raw, "downPayment", &errs, func(v float64) *FieldError {
		if v < MinDownPayment {
			return &FieldError{Field: "downPayment", Code: "BELOW_MINIMUM", Message: fmt.Sprintf("Down payment must be at least $%d", MinDownPayment)}
		}
		return nil
	})
	req.DesiredLoanAmount = requireNumber(raw, "desiredLoanAmount", &errs, func(v float64) *FieldError {
		if v < MinLoanAmount || v > MaxLoanAmount {
			return &FieldError{Field: "desiredLoanAmount", Code: "OUT_OF_RANGE", Message: fmt.Sprintf("Desired loan amount must be between $%d and $%d", MinLoanAmount, MaxLoanAmount)}
		}
		return nil
	})
	term := requireNumber(raw, "loanTerm", &errs, func(v float64) *FieldError {
		if v < MinTermMonths || v > MaxTermMonths {
			return &FieldError{Field: "loanTerm", Code: "OUT_OF_RANGE", Message: fmt.Sprintf("Loan term must be between %d and %d months", MinTermMonths, MaxTermMonths)}
		}
		return nil
	})
	req.LoanTermMonths = int(term)

	req.EmploymentStatus = requireString(raw, "employmentStatus", &errs, func(v string) *FieldError {
		if !models.ValidEmploymentStatus(v) {
			return &FieldError{Field: "employmentStatus", Code: "INVALID_VALUE", Message: "Employment status must be employed, self-employed, or retired"}
		}
		return nil
	})

	if len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}
	return req, nil
}

// MergeRequest overlays a partial-update diff onto an already validated
// request, producing a raw payload that revalidates under the full
// contract. Keys outside the contract are ignored by validation.
func MergeRequest(req models.ApplicationRequest, diff map[string]interface{}) map[string]interface{} {
	merged := map[string]interface{}{
		"firstName":         req.FirstName,
		"lastName":          req.LastName,
		"email":             req.Email,
		"phone":             req.Phone,
		"ssn":               req.SSN,
		"dob":               req.DOB,
		"address":           req.Address,
		"city":              req.City,
		"state":             req.State,
		"zipCode":           req.ZipCode,
		"annualIncome":      req.AnnualIncome,
		"employmentStatus":  req.EmploymentStatus,
		"downPayment":       req.DownPayment,
		"desiredLoanAmount": req.DesiredLoanAmount,
		"loanTerm":          float64(req.LoanTermMonths),
	}
	for k, v := range diff {
		merged[k] = v
	}
	return merged
}

// requireString pulls a trimmed string field out of the raw payload and
// applies the rule to it. Missing and mistyped values produce their own codes.
func requireString(raw map[string]interface{}, field string, errs *[]FieldError, rule func(string) *FieldError) string {
	v, ok := raw[field]
	if !ok || v == nil {
		*errs = append(*errs, FieldError{Field: field, Code: "MISSING_REQUIRED", Message: field + " is required"})
		return ""
	}
	s, ok := v.(string)
	if !ok {
		*errs = append(*errs, FieldError{Field: field, Code: "INVALID_TYPE", Message: field + " must be a string"})
		return ""
	}
	s = strings.TrimSpace(s)
	if fe := rule(s); fe != nil {
		*errs = append(*errs, *fe)
	}
	return s
}

// requireNumber accepts JSON numbers and numeric strings, matching the
// loosely typed payloads the outward boundary forwards.
func requireNumber(raw map[string]interface{}, field string, errs *[]FieldError, rule func(float64) *FieldError) float64 {
	v, ok := raw[field]
	if !ok || v == nil {
		*errs = append(*errs, FieldError{Field: field, Code: "MISSING_REQUIRED", Message: field + " is required"})
		return 0
	}

	var num float64
	switch n := v.(type) {
	case float64:
		num = n
	case int:
		num = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			*errs = append(*errs, FieldError{Field: field, Code: "INVALID_TYPE", Message: field + " must be a number"})
			return 0
		}
		num = parsed
	default:
		*errs = append(*errs, FieldError{Field: field, Code: "INVALID_TYPE", Message: field + " must be a number"})
		return 0
	}

	if fe := rule(num); fe != nil {
		*errs = append(*errs, *fe)
	}
	return num
}
