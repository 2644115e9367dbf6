package session

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/userdir/internal/common"
	"github.com/dmitrijs2005/userdir/internal/slots"
)

// Manager stores the current session token under common.SessionKey.
type Manager struct {
	slot   slots.Slot
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(slot slots.Slot, secret string, ttl time.Duration) *Manager {
	return &Manager{slot: slot, secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Begin issues a token for email and stores it, replacing any previous one.
func (m *Manager) Begin(ctx context.Context, email string) (string, error) {
	token, err := GenerateToken(email, m.secret, m.ttl, m.now())
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	if err := m.slot.Set(ctx, common.SessionKey, []byte(token)); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

// Current returns the email of the logged-in user, common.ErrNoSession if
// nobody is logged in.
func (m *Manager) Current(ctx context.Context) (string, error) {
	raw, err := m.slot.Get(ctx, common.SessionKey)
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}
	if len(raw) == 0 {
		return "", common.ErrNoSession
	}
	return ParseToken(string(raw), m.secret, m.now())
}

// End forgets the current session. Ending twice is fine.
func (m *Manager) End(ctx context.Context) error {
	if err := m.slot.Delete(ctx, common.SessionKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
