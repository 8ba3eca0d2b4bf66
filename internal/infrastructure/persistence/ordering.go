package persistence

import (
	"strings"

	"gorm.io/gorm/clause"
)

// invoiceColumns are the invoice columns a caller may order by. Anything else,
// including injection attempts, falls back to the newest first default.
var invoiceColumns = map[string]struct{}{
	"created_at":        {},
	"updated_at":        {},
	"number":            {},
	"due_date":          {},
	"total":             {},
	"pending_balance":   {},
	"status":            {},
	"last_payment_date": {},
}

// orderBy builds an ORDER BY clause from an untrusted column and direction.
// Direction defaults to descending; unknown columns use fallback with it.
func orderBy(columns map[string]struct{}, column, dir, fallback string) clause.OrderByColumn {
	column = strings.TrimSpace(column)
	if _, ok := columns[column]; !ok {
		column = fallback
	}
	return clause.OrderByColumn{
		Column: clause.Column{Name: column},
		Desc:   !strings.EqualFold(strings.TrimSpace(dir), "asc"),
	}
}
