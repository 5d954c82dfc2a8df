package treasury

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ValidationError reports a missing or malformed draft field. Nothing is
// persisted when one is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Admission denial codes.
const (
	DenyNoIncomeRecorded           = "NoIncomeRecorded"
	DenyInsufficientGeneralFund    = "InsufficientGeneralFund"
	DenyUnbudgetedCategory         = "UnbudgetedCategory"
	DenyInsufficientCategoryBudget = "InsufficientCategoryBudget"
)

// AdmissionError is a business-rule denial from the balance checks. It
// carries the computed numbers so callers can show exactly why the
// submission was refused.
type AdmissionError struct {
	Code      string
	Category  string
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e AdmissionError) Error() string {
	switch e.Code {
	case DenyNoIncomeRecorded:
		return "no income has been recorded yet"
	case DenyInsufficientGeneralFund:
		return fmt.Sprintf("insufficient general fund. Available: %s, Requested: %s",
			e.Available.String(), e.Requested.String())
	case DenyUnbudgetedCategory:
		return fmt.Sprintf("no approved allocation exists for category %q", e.Category)
	case DenyInsufficientCategoryBudget:
		return fmt.Sprintf("insufficient budget for category %q. Available: %s, Requested: %s",
			e.Category, e.Available.String(), e.Requested.String())
	}
	return "admission denied"
}

// StateError is returned when an operation targets a record that is not in
// PROPOSED state. Terminal states are never re-entered, never silently
// no-oped.
type StateError struct {
	ID     string
	Status Status
}

func (e StateError) Error() string {
	return fmt.Sprintf("record %s is %s; only proposed records can transition", e.ID, e.Status)
}

// PermissionError is returned when the live actor role does not allow the
// operation.
type PermissionError struct {
	Need string
}

func (e PermissionError) Error() string {
	return fmt.Sprintf("operation requires the %s role", e.Need)
}

var (
	// ErrNotFound is returned by the store when no record matches.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateExpenditure is returned when a second live expenditure
	// targets the same proposal.
	ErrDuplicateExpenditure = errors.New("a non-rejected expenditure already exists for this proposal")
)
