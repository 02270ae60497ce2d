package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// LineItem is one position of a customer's cart, embedded by value in the
// order's items column. Name and price are copied from the catalog at
// checkout so the order is immutable against later menu edits.
type LineItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int32           `json:"quantity"`
	Category string          `json:"category,omitempty"`
}

// Order is a single customer submission.
type Order struct {
	ID            uuid.UUID
	CustomerName  string
	CustomerPhone string
	Items         []LineItem
	TotalPrice    decimal.Decimal
	Status        string
	Forks         int32
	Chopsticks    int32
	UserID        pgtype.UUID
	CreatedAt     time.Time
}

// ConsolidatedItem is one aggregated position of a kitchen ticket.
type ConsolidatedItem struct {
	Name     string          `json:"name"`
	Quantity int32           `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// ConsolidatedItems maps menu-item id to its aggregated position.
type ConsolidatedItems map[string]ConsolidatedItem

// Clone returns a deep copy. Engine operations merge and subtract on a copy
// so a failed transaction never leaves a half-mutated map behind.
func (m ConsolidatedItems) Clone() ConsolidatedItems {
	out := make(ConsolidatedItems, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ConsolidatedOrder is an admin-built batch of one or more orders presented
// to the kitchen as a single ticket.
type ConsolidatedOrder struct {
	ID         uuid.UUID
	OrderIDs   []uuid.UUID
	Items      ConsolidatedItems
	TotalPrice decimal.Decimal
	Forks      int32
	Chopsticks int32
	Status     string
	AdminID    uuid.UUID
	CreatedAt  time.Time
}

// UserProfile is a customer or admin account.
type UserProfile struct {
	ID               uuid.UUID
	Email            string
	HashedPassword   string
	FirstName        string
	LastName         string
	PreferredCutlery string
	IsAdmin          bool
	SlackUserID      pgtype.Text
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// SystemSettings is the singleton feature-gate record.
type SystemSettings struct {
	ID                     uuid.UUID
	AllowOrdering          bool
	AllowAdminRegistration bool
	UpdatedAt              time.Time
}
