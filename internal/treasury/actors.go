package treasury

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// officialRow is the slice of app_auth.officials this module reads. The
// auth module owns the table; only public fields are selected here.
type officialRow struct {
	UserID        string
	FullName      string
	Role          string
	WalletAddress string
	TermStart     time.Time
	TermEnd       time.Time
	IsActive      bool
}

func (officialRow) TableName() string { return "app_auth.officials" }

// GormDirectory resolves officials straight from the database.
type GormDirectory struct {
	db *gorm.DB
}

func NewGormDirectory(db *gorm.DB) *GormDirectory {
	return &GormDirectory{db: db}
}

// ActorByID loads the live actor for an authenticated user id.
func (d *GormDirectory) ActorByID(ctx context.Context, id string) (Actor, error) {
	var row officialRow
	if err := d.db.WithContext(ctx).First(&row, "user_id = ?", id).Error; err != nil {
		return Actor{}, err
	}
	return Actor{
		ID:        row.UserID,
		Name:      row.FullName,
		Role:      row.Role,
		Wallet:    row.WalletAddress,
		TermStart: row.TermStart,
		TermEnd:   row.TermEnd,
		Active:    row.IsActive,
	}, nil
}

// PublicByID is the redacted identity used in workflow results.
func (d *GormDirectory) PublicByID(ctx context.Context, id string) (OfficialPublic, error) {
	actor, err := d.ActorByID(ctx, id)
	if err != nil {
		return OfficialPublic{}, err
	}
	return OfficialPublic{
		ID:        actor.ID,
		Name:      actor.Name,
		Role:      actor.Role,
		Wallet:    actor.Wallet,
		TermStart: actor.TermStart,
		TermEnd:   actor.TermEnd,
		Active:    actor.Active,
	}, nil
}
