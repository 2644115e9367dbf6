// Package userdir implements the user directory: an ordered list of user
// records, unique by email, kept as a single JSON array under one key of a
// persistent slot.
//
// Every operation reads the whole array from the slot and every mutation
// writes the whole array back. Nothing is cached between calls. Two writers
// interleaving Register on the same slot can therefore lose a record; callers
// that share a slot between processes must serialize Register themselves.
package userdir

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/userdir/internal/common"
	"github.com/dmitrijs2005/userdir/internal/logging"
	"github.com/dmitrijs2005/userdir/internal/models"
	"github.com/dmitrijs2005/userdir/internal/slots"
	"github.com/dmitrijs2005/userdir/internal/timex"
)

// emptyDirectory is what Initialize writes into an absent slot.
var emptyDirectory = []byte("[]")

// Store is the user directory bound to one slot key.
type Store struct {
	slot   slots.Slot
	key    string
	now    func() time.Time
	logger logging.Logger
}

// Option customizes a Store.
type Option func(*Store)

// WithKey overrides the slot key (common.DirectoryKey by default).
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithClock sets the time source used for ids and creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger. Records are logged by email, never with the
// password.
func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New builds a Store over slot. It does not touch storage; call Initialize
// (or use Open) before first use.
func New(slot slots.Slot, opts ...Option) *Store {
	s := &Store{
		slot:   slot,
		key:    common.DirectoryKey,
		now:    time.Now,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "userdir", "key", s.key)
	return s
}

// Open is New followed by Initialize.
func Open(ctx context.Context, slot slots.Slot, opts ...Option) (*Store, error) {
	s := New(slot, opts...)
	if err := s.Initialize(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Initialize writes an empty directory if the slot holds nothing. Whatever
// is already stored, valid or not, is left alone.
func (s *Store) Initialize(ctx context.Context) error {
	raw, err := s.slot.Get(ctx, s.key)
	if err != nil {
		return fmt.Errorf("initialize directory: %w", err)
	}
	if raw != nil {
		return nil
	}
	if err := s.slot.Set(ctx, s.key, emptyDirectory); err != nil {
		return fmt.Errorf("initialize directory: %w", err)
	}
	s.logger.Debug(ctx, "directory created")
	return nil
}

// Register appends a new user. It fails with common.ErrDuplicateIdentity,
// leaving the stored directory untouched, when email is already taken.
// No validation is applied to any argument.
func (s *Store) Register(ctx context.Context, email, fullName, password, role string) (*models.UserRecord, error) {
	users, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	if _, ok := find(users, email); ok {
		s.logger.Warn(ctx, "registration rejected, email taken", "email", email)
		return nil, common.ErrDuplicateIdentity
	}

	now := s.now()
	user := models.UserRecord{
		ID:        now.UnixMilli(),
		Email:     email,
		FullName:  fullName,
		Password:  password,
		Role:      role,
		CreatedAt: timex.NewISOTime(now),
	}
	users = append(users, user)

	if err := s.save(ctx, users); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user registered", "email", email, "role", role, "id", user.ID)
	return &user, nil
}

// FindByIdentity returns the first record whose email equals email exactly,
// or common.ErrIdentityNotFound.
func (s *Store) FindByIdentity(ctx context.Context, email string) (*models.UserRecord, error) {
	users, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	user, ok := find(users, email)
	if !ok {
		return nil, common.ErrIdentityNotFound
	}
	return &user, nil
}

// VerifyCredentials checks password against the stored one by plain string
// equality and returns the whole record on success.
func (s *Store) VerifyCredentials(ctx context.Context, email, password string) (*models.UserRecord, error) {
	user, err := s.FindByIdentity(ctx, email)
	if err != nil {
		s.logger.Debug(ctx, "login failed", "email", email, "error", err)
		return nil, err
	}
	if user.Password != password {
		s.logger.Debug(ctx, "login failed", "email", email, "error", common.ErrInvalidCredential)
		return nil, common.ErrInvalidCredential
	}
	return user, nil
}

// ListAll returns the full directory in insertion order.
func (s *Store) ListAll(ctx context.Context) ([]models.UserRecord, error) {
	return s.load(ctx)
}

func find(users []models.UserRecord, email string) (models.UserRecord, bool) {
	for _, u := range users {
		if u.Email == email {
			return u, true
		}
	}
	return models.UserRecord{}, false
}

// load reads and decodes the whole directory. An absent slot reads as an
// empty directory.
func (s *Store) load(ctx context.Context) ([]models.UserRecord, error) {
	raw, err := s.slot.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}
	users := []models.UserRecord{}
	if raw == nil {
		return users, nil
	}
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("decode directory: %w", err)
	}
	if users == nil {
		// stored "null"
		users = []models.UserRecord{}
	}
	return users, nil
}

func (s *Store) save(ctx context.Context, users []models.UserRecord) error {
	raw, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("encode directory: %w", err)
	}
	if err := s.slot.Set(ctx, s.key, raw); err != nil {
		return fmt.Errorf("write directory: %w", err)
	}
	return nil
}
