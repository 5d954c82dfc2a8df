package treasury

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/opengov-ph/treasury-backend/internal/db"
	"github.com/opengov-ph/treasury-backend/internal/ledger"
)

// Module bundles the wired treasury components for main.
type Module struct {
	Store    *GormStore
	Engine   *BalanceEngine
	Workflow *Workflow
	Handler  *Handler
}

// Init migrates the treasury schema and wires the module against the given
// database handle and ledger gateway.
func Init(conn *gorm.DB, gateway ledger.Gateway) (*Module, error) {
	if err := db.EnsureSchema(conn, "treasury"); err != nil {
		return nil, fmt.Errorf("ensure schema treasury: %w", err)
	}

	if err := conn.AutoMigrate(&FinancialRecord{}); err != nil {
		return nil, fmt.Errorf("auto-migrate treasury tables: %w", err)
	}

	// One live expenditure per proposal, enforced at the storage layer as
	// a backstop behind the workflow check.
	if err := conn.Exec(`
        CREATE UNIQUE INDEX IF NOT EXISTS financial_records_live_expenditure_per_proposal
        ON treasury.financial_records (proposal_id)
        WHERE kind = 'expenditure' AND status <> 'rejected' AND proposal_id IS NOT NULL;
    `).Error; err != nil {
		return nil, fmt.Errorf("create expenditure index: %w", err)
	}

	store := NewGormStore(conn)
	engine := NewBalanceEngine(store)
	directory := NewGormDirectory(conn)
	workflow := NewWorkflow(store, engine, gateway, directory)
	handler := NewHandler(workflow, engine, store, directory)

	return &Module{
		Store:    store,
		Engine:   engine,
		Workflow: workflow,
		Handler:  handler,
	}, nil
}
