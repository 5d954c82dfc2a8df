package treasury

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Kind discriminates the four linked ledgers sharing one table.
type Kind string

const (
	KindIncome      Kind = "income"
	KindAllocation  Kind = "allocation"
	KindExpenditure Kind = "expenditure"
	KindProposal    Kind = "proposal"
)

// Status is the approval state machine. Transitions only move
// proposed -> approved or proposed -> rejected; both are terminal.
// Income records skip the machine and are created approved.
type Status string

const (
	StatusProposed Status = "proposed"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// BudgetCategories is the closed set of budget lines shared by allocations
// (which fund a category) and proposals (which spend against one).
var BudgetCategories = []string{
	"Education",
	"Health",
	"Infrastructure",
	"Social Services",
	"Peace & Order",
	"Administration",
}

// IncomeCategories is the closed set of revenue sources.
var IncomeCategories = []string{
	"Internal Revenue Allotment",
	"Local Taxes",
	"Permits & Fees",
	"Donations",
	"Other",
}

// FinancialRecord is the base shape of all four record kinds. Records are
// append-only: they are never deleted, and a terminal status is never
// re-entered. Creator identity fields are snapshotted at creation because
// roles can change between creation and approval.
type FinancialRecord struct {
	ID       string          `gorm:"primaryKey" json:"id"`
	Kind     Kind            `gorm:"not null;index" json:"kind"`
	Amount   decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Category string          `gorm:"not null;index" json:"category"`
	Purpose  string          `json:"purpose"`

	DocumentRef string         `json:"document_ref"`
	Attachments pq.StringArray `gorm:"type:text[]" json:"attachments,omitempty"`

	Status Status `gorm:"not null;index" json:"status"`

	// Expenditures may draw on an approved proposal; at most one
	// non-rejected expenditure may reference a given proposal.
	ProposalID *string `gorm:"index" json:"proposal_id,omitempty"`

	// Set exactly once, at approval (or creation for income).
	DocumentDigest string `json:"document_digest,omitempty"`
	LedgerRef      string `json:"ledger_ref,omitempty"`
	Anchored       bool   `json:"anchored"`

	CreatedBy       string    `gorm:"not null;index" json:"created_by"`
	CreatedByName   string    `json:"created_by_name"`
	CreatedByRole   string    `json:"created_by_role"`
	CreatedByWallet string    `json:"-"`
	TermStart       time.Time `json:"term_start"`
	TermEnd         time.Time `json:"term_end"`
	CreatedAt       time.Time `json:"created_at"`

	ApprovedBy *string    `json:"approved_by,omitempty"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`

	RejectedBy      *string    `json:"rejected_by,omitempty"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
}

func (FinancialRecord) TableName() string {
	return "treasury.financial_records"
}

// Actor is the authenticated official performing an operation, as supplied
// by the auth layer. Authorization uses the live role and active flag.
type Actor struct {
	ID        string
	Name      string
	Role      string
	Wallet    string
	TermStart time.Time
	TermEnd   time.Time
	Active    bool
}

const (
	RoleChairman  = "chairman"
	RoleTreasurer = "treasurer"
)

// OfficialPublic is the safe subset of an official's identity allowed to
// leave the workflow boundary. Credential fields never appear here.
type OfficialPublic struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Wallet    string    `json:"wallet"`
	TermStart time.Time `json:"term_start"`
	TermEnd   time.Time `json:"term_end"`
	Active    bool      `json:"active"`
}

// RecordResult is the public shape returned by every workflow operation:
// the full record plus the redacted creator identity.
type RecordResult struct {
	FinancialRecord
	Creator OfficialPublic `json:"creator"`
}

// Draft is a record submission before validation.
type Draft struct {
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Purpose     string          `json:"purpose"`
	DocumentRef string          `json:"document_ref"`
	Attachments []string        `json:"attachments,omitempty"`
	ProposalID  *string         `json:"proposal_id,omitempty"`
}
