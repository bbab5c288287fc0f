package models

import (
	"time"

	"github.com/google/uuid"
)

// Project is a shared workspace whose id doubles as the relay room id.
type Project struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Users     []uuid.UUID `json:"users"`
	CreatedAt time.Time   `json:"created_at"`
}
