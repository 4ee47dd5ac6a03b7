package db

import "time"

// Session is one browser session of the web frontend.
type Session struct {
	ID        string
	CreatedAt time.Time
	LastSeen  time.Time
}

// Entry is a stored key/value pair.
type Entry struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

// SessionScope is the storage scope owned by a browser session.
func SessionScope(id string) string {
	return "session:" + id
}
