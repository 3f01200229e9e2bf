package app

import (
	"strings"

	"github.com/voicediary/voicediary/internal/store"
)

// entryCache is the session-scoped copy of one user's entry list. It is
// populated by a single List call, mutated locally by prepending each newly
// saved entry, cleared when the user id changes, and replaced on explicit
// refresh.
type entryCache struct {
	userID  string
	entries []store.Entry
	loaded  bool
}

// setUser points the cache at a user, discarding cached entries when the
// user changes.
func (c *entryCache) setUser(userID string) {
	if userID == c.userID {
		return
	}
	c.userID = userID
	c.entries = nil
	c.loaded = false
}

// invalidate clears the cached list so the next render re-fetches.
func (c *entryCache) invalidate() {
	c.entries = nil
	c.loaded = false
}

// replace installs a freshly listed entry set.
func (c *entryCache) replace(entries []store.Entry) {
	c.entries = entries
	c.loaded = true
}

// prepend puts a newly saved entry at the top of the cached list.
func (c *entryCache) prepend(e store.Entry) {
	c.entries = append([]store.Entry{e}, c.entries...)
	c.loaded = true
}

// filter returns the cached entries whose title or text contains query
// case-insensitively, in cache order. The empty query matches everything.
func (c *entryCache) filter(query string) []store.Entry {
	if query == "" {
		return c.entries
	}

	q := strings.ToLower(query)
	var matched []store.Entry
	for _, e := range c.entries {
		if strings.Contains(strings.ToLower(e.Title), q) ||
			strings.Contains(strings.ToLower(e.Text), q) {
			matched = append(matched, e)
		}
	}
	return matched
}
