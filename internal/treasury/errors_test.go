package treasury

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdmissionError_ReportsExactAmounts(t *testing.T) {
	fund := AdmissionError{
		Code:      DenyInsufficientGeneralFund,
		Available: dec("60000.50"),
		Requested: dec("60000.51"),
	}
	assert.Equal(t, "insufficient general fund. Available: 60000.5, Requested: 60000.51", fund.Error())

	budget := AdmissionError{
		Code:      DenyInsufficientCategoryBudget,
		Category:  "Education",
		Available: dec("999.99"),
		Requested: dec("1000"),
	}
	assert.Equal(t, `insufficient budget for category "Education". Available: 999.99, Requested: 1000`, budget.Error())
}
