package invoicing

import "github.com/maintledger/backend/internal/domain/works"

// BudgetSplit is a final budget's items partitioned by invoice kind
type BudgetSplit struct {
	Regular   []works.BudgetItem
	Materials []works.BudgetItem
}

// ItemGroup is one non-empty partition of a split
type ItemGroup struct {
	Kind  InvoiceKind
	Items []works.BudgetItem
}

// SplitBudget partitions budget items into regular and materials groups,
// preserving item order within each group.
func SplitBudget(items []works.BudgetItem) (BudgetSplit, error) {
	if len(items) == 0 {
		return BudgetSplit{}, ErrEmptyBudget
	}

	var split BudgetSplit
	for _, item := range items {
		if item.IsMaterial {
			split.Materials = append(split.Materials, item)
		} else {
			split.Regular = append(split.Regular, item)
		}
	}
	return split, nil
}

// Groups returns the non-empty groups, regular first
func (s BudgetSplit) Groups() []ItemGroup {
	groups := make([]ItemGroup, 0, 2)
	if len(s.Regular) > 0 {
		groups = append(groups, ItemGroup{Kind: InvoiceKindRegular, Items: s.Regular})
	}
	if len(s.Materials) > 0 {
		groups = append(groups, ItemGroup{Kind: InvoiceKindMaterials, Items: s.Materials})
	}
	return groups
}
