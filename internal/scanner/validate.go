package scanner

import (
	"fmt"
	"strings"

	"github.com/deducto/receipt-scanner/constants"
	"github.com/deducto/receipt-scanner/internal/entity"
)

// Validate reports field-level problems with a record before it is
// persisted. It is stateless, never fails, and an empty slice means the
// record is acceptable.
func Validate(record *entity.ReceiptRecord) []string {
	if record == nil {
		return []string{"record is missing"}
	}

	var problems []string

	if strings.TrimSpace(record.VendorName) == "" {
		problems = append(problems, "vendor_name is missing or blank")
	}
	if !record.TotalAmount.IsPositive() {
		problems = append(problems, fmt.Sprintf("total_amount %s must be greater than zero", record.TotalAmount.String()))
	}
	if !constants.IsValidCategory(string(record.Category)) {
		problems = append(problems, fmt.Sprintf("category %q is not in the allowed set", record.Category))
	}
	if record.ConfidenceScore < 0 || record.ConfidenceScore > 1 {
		problems = append(problems, fmt.Sprintf("confidence_score %v is outside [0,1]", record.ConfidenceScore))
	}

	return problems
}
