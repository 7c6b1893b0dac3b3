package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a persisted user notification, also pushed over the
// websocket hub when the user is connected.
type Notification struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Event     string    `db:"event" json:"event"`
	Payload   []byte    `db:"payload" json:"-"`
	IsRead    bool      `db:"is_read" json:"is_read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
