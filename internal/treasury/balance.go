package treasury

import (
	"context"

	"github.com/shopspring/decimal"
)

// GeneralFundSummary is the derived state of the general fund. Anchored
// income funds it; approved allocations, expenditures and proposals draw
// it down.
type GeneralFundSummary struct {
	TotalIncome       decimal.Decimal `json:"total_income"`
	TotalAllocations  decimal.Decimal `json:"total_allocations"`
	TotalExpenditures decimal.Decimal `json:"total_expenditures"`
	TotalProposals    decimal.Decimal `json:"total_proposals"`
	AvailableBalance  decimal.Decimal `json:"available_balance"`
}

// CategoryBudget is one budget line: approved allocations in, approved
// proposals out.
type CategoryBudget struct {
	Allocated decimal.Decimal `json:"allocated"`
	Spent     decimal.Decimal `json:"spent"`
	Remaining decimal.Decimal `json:"remaining"`
}

// BalanceEngine derives money totals from the record store on demand.
// Nothing is cached; every call re-reads the approved/anchored state so the
// numbers are always a pure function of what is persisted.
type BalanceEngine struct {
	store RecordStore
}

func NewBalanceEngine(store RecordStore) *BalanceEngine {
	return &BalanceEngine{store: store}
}

// GeneralFundSummary totals the four ledgers. An empty store yields an
// all-zero summary, not an error.
func (e *BalanceEngine) GeneralFundSummary(ctx context.Context) (GeneralFundSummary, error) {
	anchored := true
	income, err := e.sum(ctx, ListFilter{Kind: KindIncome, Anchored: &anchored})
	if err != nil {
		return GeneralFundSummary{}, err
	}
	allocations, err := e.sum(ctx, ListFilter{Kind: KindAllocation, Status: StatusApproved})
	if err != nil {
		return GeneralFundSummary{}, err
	}
	expenditures, err := e.sum(ctx, ListFilter{Kind: KindExpenditure, Status: StatusApproved})
	if err != nil {
		return GeneralFundSummary{}, err
	}
	proposals, err := e.sum(ctx, ListFilter{Kind: KindProposal, Status: StatusApproved})
	if err != nil {
		return GeneralFundSummary{}, err
	}

	return GeneralFundSummary{
		TotalIncome:       income,
		TotalAllocations:  allocations,
		TotalExpenditures: expenditures,
		TotalProposals:    proposals,
		AvailableBalance:  income.Sub(allocations).Sub(expenditures).Sub(proposals),
	}, nil
}

// CategoryBudgets maps each category with at least one approved allocation
// to its budget line. Categories with proposals but no allocation never
// appear; admission control treats those as unbudgeted.
func (e *BalanceEngine) CategoryBudgets(ctx context.Context) (map[string]CategoryBudget, error) {
	allocations, err := e.store.List(ctx, ListFilter{Kind: KindAllocation, Status: StatusApproved})
	if err != nil {
		return nil, err
	}
	proposals, err := e.store.List(ctx, ListFilter{Kind: KindProposal, Status: StatusApproved})
	if err != nil {
		return nil, err
	}

	budgets := make(map[string]CategoryBudget)
	for _, rec := range allocations {
		b := budgets[rec.Category]
		b.Allocated = b.Allocated.Add(rec.Amount)
		budgets[rec.Category] = b
	}
	for _, rec := range proposals {
		b, ok := budgets[rec.Category]
		if !ok {
			// Admission control never approves a proposal without an
			// allocation, so this only guards hand-edited data.
			continue
		}
		b.Spent = b.Spent.Add(rec.Amount)
		budgets[rec.Category] = b
	}
	for cat, b := range budgets {
		b.Remaining = b.Allocated.Sub(b.Spent)
		budgets[cat] = b
	}
	return budgets, nil
}

func (e *BalanceEngine) sum(ctx context.Context, filter ListFilter) (decimal.Decimal, error) {
	records, err := e.store.List(ctx, filter)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, rec := range records {
		total = total.Add(rec.Amount)
	}
	return total, nil
}
