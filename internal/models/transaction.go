package models

import (
	"time"

	"github.com/google/uuid"
)

type TransactionType string

const (
	TypeExpense TransactionType = "expense"
	TypeIncome  TransactionType = "income"
)

// ValidTransactionType reports whether s is one of the two recognized
// transaction types.
func ValidTransactionType(s string) bool {
	return s == string(TypeExpense) || s == string(TypeIncome)
}

type Transaction struct {
	ID               uuid.UUID       `db:"id"`
	Type             TransactionType `db:"type"`
	Date             time.Time       `db:"date"`
	Amount           float64         `db:"amount"`
	Category         string          `db:"category"`
	Memo             string          `db:"memo"`
	ReceiptImagePath string          `db:"receipt_image_path"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
}
