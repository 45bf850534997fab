package vault

import (
	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/lekhan/internal/models"
)

// Session scopes vault access to one owner between login and logout.
// The items slice mirrors the owner's archive as of the last successful write.
type Session struct {
	id     string
	owner  models.Owner
	items  []models.VaultItem
	closed bool
}

func newSession(owner models.Owner, items []models.VaultItem) *Session {
	return &Session{
		id:    uuid.NewString(),
		owner: owner,
		items: items,
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) Owner() models.Owner { return s.owner }

// Snapshot returns a copy of the mirrored archive, newest first
func (s *Session) Snapshot() []models.VaultItem {
	out := make([]models.VaultItem, len(s.items))
	copy(out, s.items)
	return out
}

// Close ends the session. Later operations fail with ErrSessionClosed.
func (s *Session) Close() {
	s.closed = true
	s.items = nil
}

func (s *Session) Closed() bool { return s.closed }
