package treasury

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/opengov-ph/treasury-backend/internal/ledger"
)

// fundLocks serializes admission-check-then-commit. The fund mutex guards
// the general fund balance; category mutexes guard each budget line. The
// fund lock is always taken before a category lock.
type fundLocks struct {
	fund sync.Mutex

	mu         sync.Mutex
	categories map[string]*sync.Mutex
}

func newFundLocks() *fundLocks {
	return &fundLocks{categories: make(map[string]*sync.Mutex)}
}

func (l *fundLocks) category(name string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.categories[name]
	if !ok {
		m = &sync.Mutex{}
		l.categories[name] = m
	}
	return m
}

// Directory resolves officials for the redacted creator identity attached
// to workflow results.
type Directory interface {
	PublicByID(ctx context.Context, id string) (OfficialPublic, error)
}

// Workflow is the approval state machine over the four record ledgers.
// Submissions pass admission control against the balance engine; approvals
// re-run it under the fund locks, hash the canonical document, anchor the
// digest, then persist the transition.
type Workflow struct {
	store     RecordStore
	engine    *BalanceEngine
	gateway   ledger.Gateway
	directory Directory
	locks     *fundLocks

	now func() time.Time
}

func NewWorkflow(store RecordStore, engine *BalanceEngine, gateway ledger.Gateway, directory Directory) *Workflow {
	return &Workflow{
		store:     store,
		engine:    engine,
		gateway:   gateway,
		directory: directory,
		locks:     newFundLocks(),
		now:       time.Now,
	}
}

var categoryCaser = cases.Title(language.English)

// Submit validates a draft, runs admission control and persists it in
// PROPOSED state. Only treasurers may submit.
func (w *Workflow) Submit(ctx context.Context, kind Kind, draft Draft, actor Actor) (*RecordResult, error) {
	if err := requireRole(actor, RoleTreasurer); err != nil {
		return nil, err
	}
	if err := validateDraft(kind, &draft); err != nil {
		return nil, err
	}
	unlock := w.lockFor(kind, draft.Category)
	defer unlock()

	// Under the fund lock so two submissions can't both find the proposal
	// free; the partial unique index backs this up at the storage layer.
	if kind == KindExpenditure && draft.ProposalID != nil {
		if err := w.checkProposalLink(ctx, *draft.ProposalID); err != nil {
			return nil, err
		}
	}

	if err := w.admit(ctx, kind, draft.Amount, draft.Category); err != nil {
		return nil, err
	}

	rec := &FinancialRecord{
		ID:              uuid.NewString(),
		Kind:            kind,
		Amount:          draft.Amount,
		Category:        draft.Category,
		Purpose:         draft.Purpose,
		DocumentRef:     draft.DocumentRef,
		Attachments:     pq.StringArray(draft.Attachments),
		ProposalID:      draft.ProposalID,
		Status:          StatusProposed,
		CreatedBy:       actor.ID,
		CreatedByName:   actor.Name,
		CreatedByRole:   actor.Role,
		CreatedByWallet: actor.Wallet,
		TermStart:       actor.TermStart,
		TermEnd:         actor.TermEnd,
		CreatedAt:       w.now().UTC(),
	}
	if err := w.store.Create(ctx, rec); err != nil {
		return nil, err
	}
	return w.result(ctx, rec), nil
}

// Approve transitions a PROPOSED record to APPROVED. Admission control is
// re-run under the fund locks so two approvals can't both spend the same
// balance. The transition completes even when the ledger write fails; the
// record then carries anchored=false for later reconciliation.
func (w *Workflow) Approve(ctx context.Context, kind Kind, id string, actor Actor) (*RecordResult, error) {
	if err := requireRole(actor, RoleChairman); err != nil {
		return nil, err
	}

	rec, err := w.store.ByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if rec.Status != StatusProposed {
		return nil, StateError{ID: rec.ID, Status: rec.Status}
	}

	unlock := w.lockFor(kind, rec.Category)
	defer unlock()

	if err := w.admit(ctx, kind, rec.Amount, rec.Category); err != nil {
		return nil, err
	}

	approvedAt := w.now().UTC()
	doc := ledger.Document{
		Kind:           string(kind),
		RecordID:       rec.ID,
		Amount:         rec.Amount,
		Category:       rec.Category,
		Purpose:        rec.Purpose,
		DocRef:         rec.DocumentRef,
		CreatorID:      rec.CreatedBy,
		CreatorName:    rec.CreatedByName,
		CreatorRole:    rec.CreatedByRole,
		CreatorWallet:  rec.CreatedByWallet,
		TermStart:      rec.TermStart,
		TermEnd:        rec.TermEnd,
		CreatedAt:      rec.CreatedAt,
		ApproverID:     actor.ID,
		ApproverName:   actor.Name,
		ApproverWallet: actor.Wallet,
		ApprovedAt:     approvedAt,
	}
	digest := ledger.Digest(doc)

	// The ledger attempt resolves before any record state changes; the
	// approval stands either way.
	res := w.gateway.Record(ctx, string(kind), doc, digest, actor.Wallet)

	rec.Status = StatusApproved
	rec.ApprovedBy = &actor.ID
	rec.ApprovedAt = &approvedAt
	rec.DocumentDigest = digest
	rec.LedgerRef = res.Ref
	rec.Anchored = res.Committed

	if err := w.store.Update(ctx, rec); err != nil {
		if res.Committed {
			// The digest is on the ledger but the approval never
			// persisted; the anchor is orphaned until resubmission.
			log.Printf("[treasury] approval of %s failed to persist after ledger commit tx=%s: %v",
				rec.ID, res.Ref, err)
		}
		return nil, err
	}
	return w.result(ctx, rec), nil
}

// Reject transitions a PROPOSED record to REJECTED. No ledger interaction,
// no digest.
func (w *Workflow) Reject(ctx context.Context, kind Kind, id string, actor Actor, reason string) (*RecordResult, error) {
	if err := requireRole(actor, RoleChairman); err != nil {
		return nil, err
	}
	if strings.TrimSpace(reason) == "" {
		return nil, ValidationError{Field: "reason", Reason: "a rejection reason is required"}
	}

	rec, err := w.store.ByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if rec.Status != StatusProposed {
		return nil, StateError{ID: rec.ID, Status: rec.Status}
	}

	rejectedAt := w.now().UTC()
	rec.Status = StatusRejected
	rec.RejectedBy = &actor.ID
	rec.RejectedAt = &rejectedAt
	rec.RejectionReason = strings.TrimSpace(reason)

	if err := w.store.Update(ctx, rec); err != nil {
		return nil, err
	}
	return w.result(ctx, rec), nil
}

// RecordIncome is the one-shot income path: no approval step, hashed and
// anchored at creation. The record persists whether or not the ledger write
// committed; income is never rejected.
func (w *Workflow) RecordIncome(ctx context.Context, draft Draft, actor Actor) (*RecordResult, error) {
	if err := requireRole(actor, RoleTreasurer); err != nil {
		return nil, err
	}
	if err := validateDraft(KindIncome, &draft); err != nil {
		return nil, err
	}

	createdAt := w.now().UTC()
	rec := &FinancialRecord{
		ID:              uuid.NewString(),
		Kind:            KindIncome,
		Amount:          draft.Amount,
		Category:        draft.Category,
		Purpose:         draft.Purpose,
		DocumentRef:     draft.DocumentRef,
		Attachments:     pq.StringArray(draft.Attachments),
		Status:          StatusApproved,
		CreatedBy:       actor.ID,
		CreatedByName:   actor.Name,
		CreatedByRole:   actor.Role,
		CreatedByWallet: actor.Wallet,
		TermStart:       actor.TermStart,
		TermEnd:         actor.TermEnd,
		CreatedAt:       createdAt,
	}

	doc := ledger.Document{
		Kind:          string(KindIncome),
		RecordID:      rec.ID,
		Amount:        rec.Amount,
		Category:      rec.Category,
		Purpose:       rec.Purpose,
		DocRef:        rec.DocumentRef,
		CreatorID:     actor.ID,
		CreatorName:   actor.Name,
		CreatorRole:   actor.Role,
		CreatorWallet: actor.Wallet,
		TermStart:     actor.TermStart,
		TermEnd:       actor.TermEnd,
		CreatedAt:     createdAt,
	}
	digest := ledger.Digest(doc)
	res := w.gateway.Record(ctx, string(KindIncome), doc, digest, actor.Wallet)

	rec.DocumentDigest = digest
	rec.LedgerRef = res.Ref
	rec.Anchored = res.Committed

	if err := w.store.Create(ctx, rec); err != nil {
		return nil, err
	}
	return w.result(ctx, rec), nil
}

// admit runs the balance checks for a record about to enter (or leave)
// PROPOSED state. Callers hold the relevant fund locks.
func (w *Workflow) admit(ctx context.Context, kind Kind, amount decimal.Decimal, category string) error {
	summary, err := w.engine.GeneralFundSummary(ctx)
	if err != nil {
		return err
	}
	if summary.TotalIncome.IsZero() {
		return AdmissionError{Code: DenyNoIncomeRecorded}
	}

	// Every outflow kind draws on the general fund, proposals included: a
	// proposal can fit its category budget while the fund itself has been
	// drained by unlinked expenditures.
	if amount.GreaterThan(summary.AvailableBalance) {
		return AdmissionError{
			Code:      DenyInsufficientGeneralFund,
			Available: summary.AvailableBalance,
			Requested: amount,
		}
	}

	if kind == KindProposal {
		budgets, err := w.engine.CategoryBudgets(ctx)
		if err != nil {
			return err
		}
		budget, ok := budgets[category]
		if !ok {
			return AdmissionError{Code: DenyUnbudgetedCategory, Category: category}
		}
		if amount.GreaterThan(budget.Remaining) {
			return AdmissionError{
				Code:      DenyInsufficientCategoryBudget,
				Category:  category,
				Available: budget.Remaining,
				Requested: amount,
			}
		}
	}
	return nil
}

// lockFor takes the locks the admission checks for this kind depend on and
// returns the matching unlock.
func (w *Workflow) lockFor(kind Kind, category string) func() {
	w.locks.fund.Lock()
	if kind != KindProposal {
		return w.locks.fund.Unlock
	}
	cat := w.locks.category(category)
	cat.Lock()
	return func() {
		cat.Unlock()
		w.locks.fund.Unlock()
	}
}

// checkProposalLink enforces that an expenditure draws on an approved
// proposal with no other live expenditure against it.
func (w *Workflow) checkProposalLink(ctx context.Context, proposalID string) error {
	proposal, err := w.store.ByID(ctx, KindProposal, proposalID)
	if err != nil {
		return err
	}
	if proposal.Status != StatusApproved {
		return ValidationError{Field: "proposal_id", Reason: "referenced proposal is not approved"}
	}

	existing, err := w.store.List(ctx, ListFilter{Kind: KindExpenditure, ProposalID: proposalID})
	if err != nil {
		return err
	}
	for _, rec := range existing {
		if rec.Status != StatusRejected {
			return ErrDuplicateExpenditure
		}
	}
	return nil
}

func (w *Workflow) result(ctx context.Context, rec *FinancialRecord) *RecordResult {
	creator := OfficialPublic{
		ID:        rec.CreatedBy,
		Name:      rec.CreatedByName,
		Role:      rec.CreatedByRole,
		TermStart: rec.TermStart,
		TermEnd:   rec.TermEnd,
	}
	if w.directory != nil {
		if pub, err := w.directory.PublicByID(ctx, rec.CreatedBy); err == nil {
			creator = pub
		}
	}
	return &RecordResult{FinancialRecord: *rec, Creator: creator}
}

func requireRole(actor Actor, role string) error {
	if !actor.Active || actor.Role != role {
		return PermissionError{Need: role}
	}
	return nil
}

func validateDraft(kind Kind, draft *Draft) error {
	if draft.Amount.LessThanOrEqual(decimal.Zero) {
		return ValidationError{Field: "amount", Reason: "must be a positive amount"}
	}
	if draft.Amount.Exponent() < -2 {
		return ValidationError{Field: "amount", Reason: "at most two decimal places"}
	}

	draft.Category = categoryCaser.String(strings.TrimSpace(draft.Category))
	valid := BudgetCategories
	if kind == KindIncome {
		valid = IncomeCategories
	}
	if !contains(valid, draft.Category) {
		return ValidationError{Field: "category", Reason: "unknown category " + draft.Category}
	}

	if kind != KindIncome && strings.TrimSpace(draft.Purpose) == "" {
		return ValidationError{Field: "purpose", Reason: "purpose is required"}
	}
	if kind != KindExpenditure && draft.ProposalID != nil {
		return ValidationError{Field: "proposal_id", Reason: "only expenditures may reference a proposal"}
	}
	if strings.TrimSpace(draft.DocumentRef) == "" {
		return ValidationError{Field: "document_ref", Reason: "a supporting document is required"}
	}
	return nil
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
