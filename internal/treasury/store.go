package treasury

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ListFilter narrows a record listing. Zero values mean "any".
type ListFilter struct {
	Kind       Kind
	Status     Status
	Category   string
	CreatedBy  string
	ProposalID string
	Anchored   *bool
}

// RecordStore is the persistence boundary of the workflow. It is plain
// keyed CRUD; every business rule lives above it.
type RecordStore interface {
	Create(ctx context.Context, rec *FinancialRecord) error
	ByID(ctx context.Context, kind Kind, id string) (*FinancialRecord, error)
	List(ctx context.Context, filter ListFilter) ([]FinancialRecord, error)
	Update(ctx context.Context, rec *FinancialRecord) error
}

// GormStore is the Postgres-backed RecordStore.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Create(ctx context.Context, rec *FinancialRecord) error {
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateExpenditure
		}
		return fmt.Errorf("store: create record: %w", err)
	}
	return nil
}

func (s *GormStore) ByID(ctx context.Context, kind Kind, id string) (*FinancialRecord, error) {
	var rec FinancialRecord
	err := s.db.WithContext(ctx).First(&rec, "kind = ? AND id = ?", kind, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: fetch record: %w", err)
	}
	return &rec, nil
}

func (s *GormStore) List(ctx context.Context, filter ListFilter) ([]FinancialRecord, error) {
	query := s.db.WithContext(ctx).Model(&FinancialRecord{})

	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.CreatedBy != "" {
		query = query.Where("created_by = ?", filter.CreatedBy)
	}
	if filter.ProposalID != "" {
		query = query.Where("proposal_id = ?", filter.ProposalID)
	}
	if filter.Anchored != nil {
		query = query.Where("anchored = ?", *filter.Anchored)
	}

	var records []FinancialRecord
	if err := query.Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("store: list records: %w", err)
	}
	return records, nil
}

func (s *GormStore) Update(ctx context.Context, rec *FinancialRecord) error {
	if err := s.db.WithContext(ctx).Save(rec).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateExpenditure
		}
		return fmt.Errorf("store: update record: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (the partial index on proposal_id, in practice).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
