package auth

import "time"

type Session struct {
	SessionID string    `gorm:"primaryKey" json:"-"`
	UserID    string    `gorm:"not null;unique" json:"-"`
	ExpiresAt time.Time `gorm:"not null"`
}

// Official is an elected barangay official. Role decides which treasury
// routes the account may call; WalletAddress signs ledger transactions.
type Official struct {
	UserID         string    `gorm:"primaryKey" json:"user_id"`
	Username       string    `gorm:"uniqueIndex;not null" json:"username"`
	Password       string    `json:"password" gorm:"-"`
	HashedPassword string    `json:"-"`
	FullName       string    `json:"full_name"`
	Role           string    `gorm:"default:'treasurer'" json:"role"`
	WalletAddress  string    `json:"wallet_address"`
	TermStart      time.Time `json:"term_start"`
	TermEnd        time.Time `json:"term_end"`
	IsActive       bool      `gorm:"default:true" json:"is_active"`
	Session        Session   `gorm:"foreignKey:UserID" json:"-"`
}

const (
	RoleChairman  = "chairman"
	RoleTreasurer = "treasurer"
)

func (Session) TableName() string  { return "app_auth.sessions" }
func (Official) TableName() string { return "app_auth.officials" }
