package invoicing

import (
	"fmt"
	"time"

	"github.com/maintledger/backend/internal/domain/works"
)

const materialsSuffix = "-M"

// InvoiceNumber derives the invoice number from the budget code and the
// issue month: FAC-<CODE>-<YYYYMM>, with -M appended for materials invoices.
func InvoiceNumber(budgetCode string, kind InvoiceKind, issuedAt time.Time) string {
	number := fmt.Sprintf("FAC-%s-%s", works.NormalizeBudgetCode(budgetCode), issuedAt.Format("200601"))
	if kind == InvoiceKindMaterials {
		number += materialsSuffix
	}
	return number
}
