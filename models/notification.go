package models

import "time"

// Notification is one event on a per-user or per-project channel
// ("user:<id>" or "project:<id>").
type Notification struct {
	ID        string    `cassandra:"id" json:"id"`
	Channel   string    `cassandra:"channel" json:"channel"`
	Event     string    `cassandra:"event" json:"event"`
	Message   string    `cassandra:"message" json:"message"`
	CreatedAt time.Time `cassandra:"created_at" json:"createdAt"`
	IsRead    bool      `cassandra:"is_read" json:"isRead"`
}
