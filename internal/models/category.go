package models

import (
	"time"

	"github.com/google/uuid"
)

type Category struct {
	ID        uuid.UUID       `db:"id"`
	Name      string          `db:"name"`
	Type      TransactionType `db:"type"`
	Color     string          `db:"color"`
	Icon      string          `db:"icon"`
	CreatedAt time.Time       `db:"created_at"`
}
