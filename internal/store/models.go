// Package store persists diary entries in Firestore, one subcollection per
// user.
package store

import "time"

// SentinelTimestamp stands in for a server timestamp that has not resolved
// yet. Firestore assigns createdAt asynchronously relative to the write, so
// a freshly saved entry renders with this placeholder.
const SentinelTimestamp = "Just Now"

// Entry is one diary record. Entries are append-only: never updated or
// deleted once written.
type Entry struct {
	ID     string `firestore:"-"`
	UserID string `firestore:"-"`
	Title  string `firestore:"title"`
	Text   string `firestore:"text"`

	// CreatedAt is assigned by the server. The zero value means the
	// timestamp has not resolved yet.
	CreatedAt time.Time `firestore:"createdAt,serverTimestamp"`
}

// Timestamp formats the entry's creation time for display, substituting the
// sentinel while the server timestamp is unresolved.
func (e Entry) Timestamp() string {
	if e.CreatedAt.IsZero() {
		return SentinelTimestamp
	}
	return e.CreatedAt.Format("2006-01-02 15:04")
}
