package userdir

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/userdir/internal/common"
	"github.com/dmitrijs2005/userdir/internal/logging"
	"github.com/dmitrijs2005/userdir/internal/models"
	"github.com/dmitrijs2005/userdir/internal/slots/memory"
	"github.com/dmitrijs2005/userdir/internal/slots/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

// fakeSlot wraps the in-memory backend and can fail or count calls.
type fakeSlot struct {
	*memory.Repository

	getErr error
	setErr error

	gets int
	sets int
}

func newFakeSlot() *fakeSlot {
	return &fakeSlot{Repository: memory.NewRepository()}
}

func (f *fakeSlot) Get(ctx context.Context, key string) ([]byte, error) {
	f.gets++
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.Repository.Get(ctx, key)
}

func (f *fakeSlot) Set(ctx context.Context, key string, value []byte) error {
	f.sets++
	if f.setErr != nil {
		return f.setErr
	}
	return f.Repository.Set(ctx, key, value)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newStore(t *testing.T, slot *fakeSlot, opts ...Option) *Store {
	t.Helper()
	s, err := Open(context.Background(), slot, opts...)
	require.NoError(t, err)
	return s
}

func rawDirectory(t *testing.T, slot *fakeSlot) []byte {
	t.Helper()
	raw, err := slot.Repository.Get(context.Background(), common.DirectoryKey)
	require.NoError(t, err)
	return raw
}

// --- Initialize ---

func TestInitialize_CreatesEmptyDirectory(t *testing.T) {
	slot := newFakeSlot()
	s := New(slot)

	require.NoError(t, s.Initialize(context.Background()))
	assert.Equal(t, []byte("[]"), rawDirectory(t, slot))
}

func TestInitialize_IsIdempotent(t *testing.T) {
	slot := newFakeSlot()
	s := newStore(t, slot)
	ctx := context.Background()

	_, err := s.Register(ctx, "a@x.com", "Ann", "pw1", "buyer")
	require.NoError(t, err)
	before := rawDirectory(t, slot)

	require.NoError(t, s.Initialize(ctx))
	require.NoError(t, s.Initialize(ctx))

	assert.Equal(t, before, rawDirectory(t, slot))
}

func TestInitialize_LeavesMalformedValueAlone(t *testing.T) {
	slot := newFakeSlot()
	require.NoError(t, slot.Repository.Set(context.Background(), common.DirectoryKey, []byte("{not json")))

	s := New(slot)
	require.NoError(t, s.Initialize(context.Background()))
	assert.Equal(t, []byte("{not json"), rawDirectory(t, slot))

	_, err := s.ListAll(context.Background())
	require.ErrorContains(t, err, "decode directory")
}

func TestInitialize_PropagatesStorageErrors(t *testing.T) {
	boom := errors.New("disk full")

	slot := newFakeSlot()
	slot.getErr = boom
	require.ErrorIs(t, New(slot).Initialize(context.Background()), boom)

	slot = newFakeSlot()
	slot.setErr = boom
	_, err := Open(context.Background(), slot)
	require.ErrorIs(t, err, boom)
}

// --- Register ---

func TestRegister_ReturnsRecordAndPersistsIt(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 20, 30, 120_999_000, time.UTC)
	slot := newFakeSlot()
	s := newStore(t, slot, WithClock(fixedClock(now)))

	u, err := s.Register(context.Background(), "a@x.com", "Ann", "pw1", "buyer")
	require.NoError(t, err)
	require.Equal(t, &models.UserRecord{
		ID:        now.UnixMilli(),
		Email:     "a@x.com",
		FullName:  "Ann",
		Password:  "pw1",
		Role:      "buyer",
		CreatedAt: u.CreatedAt,
	}, u)
	assert.Equal(t, "2024-05-01T10:20:30.120Z", u.CreatedAt.String())

	assert.JSONEq(t,
		`[{"id":1714558830120,"email":"a@x.com","fullname":"Ann","password":"pw1","role":"buyer","createdAt":"2024-05-01T10:20:30.120Z"}]`,
		string(rawDirectory(t, slot)))
}

func TestRegister_DuplicateLeavesDirectoryUnchanged(t *testing.T) {
	slot := newFakeSlot()
	s := newStore(t, slot)
	ctx := context.Background()

	_, err := s.Register(ctx, "a@x.com", "Ann", "pw1", "buyer")
	require.NoError(t, err)
	before := rawDirectory(t, slot)
	setsBefore := slot.sets

	u, err := s.Register(ctx, "a@x.com", "Ann2", "pw2", "seller")
	require.ErrorIs(t, err, common.ErrDuplicateIdentity)
	require.Nil(t, u)

	assert.Equal(t, before, rawDirectory(t, slot))
	assert.Equal(t, setsBefore, slot.sets, "duplicate must not write")
}

func TestRegister_EmailMatchIsCaseSensitive(t *testing.T) {
	s := newStore(t, newFakeSlot())
	ctx := context.Background()

	_, err := s.Register(ctx, "a@x.com", "Ann", "pw", "buyer")
	require.NoError(t, err)
	_, err = s.Register(ctx, "A@x.com", "Ann", "pw", "buyer")
	require.NoError(t, err)

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRegister_KeepsUniquenessAcrossManyCalls(t *testing.T) {
	s := newStore(t, newFakeSlot())
	ctx := context.Background()

	emails := []string{"a@x.com", "b@x.com", "a@x.com", "c@x.com", "b@x.com", "d@x.com", "a@x.com"}
	for _, e := range emails {
		_, err := s.Register(ctx, e, "N", "p", "buyer")
		if err != nil {
			require.ErrorIs(t, err, common.ErrDuplicateIdentity)
		}
	}

	all, err := s.ListAll(ctx)
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, u := range all {
		require.False(t, seen[u.Email], "duplicate email %s", u.Email)
		seen[u.Email] = true
	}
	assert.Len(t, all, 4)
}

func TestRegister_PreservesInsertionOrder(t *testing.T) {
	s := newStore(t, newFakeSlot())
	ctx := context.Background()

	for _, e := range []string{"c@x.com", "a@x.com", "b@x.com"} {
		_, err := s.Register(ctx, e, "N", "p", "buyer")
		require.NoError(t, err)
	}

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	got := make([]string, 0, len(all))
	for _, u := range all {
		got = append(got, u.Email)
	}
	assert.Equal(t, []string{"c@x.com", "a@x.com", "b@x.com"}, got)
}

func TestRegister_SameMillisecondSharesID(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	s := newStore(t, newFakeSlot(), WithClock(fixedClock(now)))
	ctx := context.Background()

	a, err := s.Register(ctx, "a@x.com", "A", "p", "buyer")
	require.NoError(t, err)
	b, err := s.Register(ctx, "b@x.com", "B", "p", "buyer")
	require.NoError(t, err)

	assert.Equal(t, a.ID, b.ID)
}

func TestRegister_WithoutInitialize(t *testing.T) {
	slot := newFakeSlot()
	s := New(slot)

	_, err := s.Register(context.Background(), "a@x.com", "Ann", "pw1", "buyer")
	require.NoError(t, err)

	var stored []models.UserRecord
	require.NoError(t, json.Unmarshal(rawDirectory(t, slot), &stored))
	assert.Len(t, stored, 1)
}

func TestRegister_PropagatesStorageErrors(t *testing.T) {
	boom := errors.New("quota exceeded")
	slot := newFakeSlot()
	s := newStore(t, slot)

	slot.setErr = boom
	_, err := s.Register(context.Background(), "a@x.com", "Ann", "pw1", "buyer")
	require.ErrorIs(t, err, boom)
	require.ErrorContains(t, err, "write directory")

	slot.setErr = nil
	slot.getErr = boom
	_, err = s.Register(context.Background(), "a@x.com", "Ann", "pw1", "buyer")
	require.ErrorIs(t, err, boom)
	require.ErrorContains(t, err, "read directory")
}

func TestRegister_ReadsFreshStateEveryCall(t *testing.T) {
	slot := newFakeSlot()
	a := newStore(t, slot)
	b := newStore(t, slot)
	ctx := context.Background()

	_, err := a.Register(ctx, "a@x.com", "Ann", "pw1", "buyer")
	require.NoError(t, err)

	_, err = b.Register(ctx, "a@x.com", "Ann", "pw1", "buyer")
	require.ErrorIs(t, err, common.ErrDuplicateIdentity)

	u, err := b.FindByIdentity(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Ann", u.FullName)
}

// --- FindByIdentity / VerifyCredentials ---

func TestFindByIdentity_RoundTrip(t *testing.T) {
	s := newStore(t, newFakeSlot())
	ctx := context.Background()

	callTime := time.Now().Truncate(time.Millisecond)
	_, err := s.Register(ctx, "e@x.com", "Eve", "secret", "seller")
	require.NoError(t, err)

	u, err := s.FindByIdentity(ctx, "e@x.com")
	require.NoError(t, err)
	assert.Equal(t, "e@x.com", u.Email)
	assert.Equal(t, "Eve", u.FullName)
	assert.Equal(t, "secret", u.Password)
	assert.Equal(t, "seller", u.Role)
	assert.False(t, u.CreatedAt.Before(callTime), "createdAt %v before call time %v", u.CreatedAt, callTime)
}

func TestFindByIdentity_NotFound(t *testing.T) {
	s := newStore(t, newFakeSlot())

	u, err := s.FindByIdentity(context.Background(), "nobody@x.com")
	require.ErrorIs(t, err, common.ErrIdentityNotFound)
	require.Nil(t, u)
}

func TestFindByIdentity_ReturnsFirstMatchInStoredOrder(t *testing.T) {
	slot := newFakeSlot()
	// Written by something other than Register, so uniqueness is not guaranteed.
	require.NoError(t, slot.Repository.Set(context.Background(), common.DirectoryKey, []byte(
		`[{"id":1,"email":"a@x.com","fullname":"First","password":"p","role":"buyer","createdAt":"2024-01-01T00:00:00.000Z"},
		  {"id":2,"email":"a@x.com","fullname":"Second","password":"p","role":"buyer","createdAt":"2024-01-01T00:00:00.000Z"}]`)))

	u, err := New(slot).FindByIdentity(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "First", u.FullName)
}

func TestVerifyCredentials(t *testing.T) {
	s := newStore(t, newFakeSlot())
	ctx := context.Background()

	_, err := s.Register(ctx, "a@x.com", "Ann", "pw1", "buyer")
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "match", email: "a@x.com", password: "pw1"},
		{name: "wrong password", email: "a@x.com", password: "wrong", wantErr: common.ErrInvalidCredential},
		{name: "password is case sensitive", email: "a@x.com", password: "PW1", wantErr: common.ErrInvalidCredential},
		{name: "empty password", email: "a@x.com", password: "", wantErr: common.ErrInvalidCredential},
		{name: "unknown email", email: "nobody@x.com", password: "x", wantErr: common.ErrIdentityNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := s.VerifyCredentials(ctx, tt.email, tt.password)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Nil(t, u)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Ann", u.FullName)
			assert.Equal(t, "pw1", u.Password)
		})
	}
}

func TestVerifyCredentials_DoesNotWrite(t *testing.T) {
	slot := newFakeSlot()
	s := newStore(t, slot)
	ctx := context.Background()

	_, err := s.Register(ctx, "a@x.com", "Ann", "pw1", "buyer")
	require.NoError(t, err)
	sets := slot.sets

	_, _ = s.VerifyCredentials(ctx, "a@x.com", "pw1")
	_, _ = s.VerifyCredentials(ctx, "a@x.com", "nope")
	_, _ = s.FindByIdentity(ctx, "a@x.com")
	_, _ = s.ListAll(ctx)

	assert.Equal(t, sets, slot.sets)
}

// --- ListAll ---

func TestListAll_EmptyAndAbsent(t *testing.T) {
	all, err := newStore(t, newFakeSlot()).ListAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)

	all, err = New(newFakeSlot()).ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestListAll_StoredNull(t *testing.T) {
	slot := newFakeSlot()
	require.NoError(t, slot.Repository.Set(context.Background(), common.DirectoryKey, []byte("null")))

	all, err := New(slot).ListAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

// --- options, logging, backends ---

func TestWithKey_UsesSeparateSlotKey(t *testing.T) {
	slot := newFakeSlot()
	s := newStore(t, slot, WithKey("shop-users"))

	_, err := s.Register(context.Background(), "a@x.com", "Ann", "pw1", "buyer")
	require.NoError(t, err)

	assert.Nil(t, rawDirectory(t, slot))
	raw, err := slot.Repository.Get(context.Background(), "shop-users")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "a@x.com")
}

func TestLogging_NeverContainsPasswords(t *testing.T) {
	var buf bytes.Buffer
	s := newStore(t, newFakeSlot(), WithLogger(logging.New(&buf, "debug")))
	ctx := context.Background()

	_, _ = s.Register(ctx, "a@x.com", "Ann", "hunter2", "buyer")
	_, _ = s.Register(ctx, "a@x.com", "Ann", "hunter3", "buyer")
	_, _ = s.VerifyCredentials(ctx, "a@x.com", "hunter4")

	out := buf.String()
	assert.Contains(t, out, "user registered")
	assert.Contains(t, out, "registration rejected")
	assert.Contains(t, out, "login failed")
	for _, pw := range []string{"hunter2", "hunter3", "hunter4"} {
		assert.NotContains(t, out, pw)
	}
}

func TestStore_PersistsAcrossReopenOnSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "users.db")

	db, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	s, err := Open(ctx, sqlite.NewRepository(db))
	require.NoError(t, err)
	_, err = s.Register(ctx, "a@x.com", "Ann", "pw1", "buyer")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = sqlite.Open(ctx, path)
	require.NoError(t, err)
	defer db.Close()
	s, err = Open(ctx, sqlite.NewRepository(db))
	require.NoError(t, err)

	u, err := s.VerifyCredentials(ctx, "a@x.com", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "Ann", u.FullName)
}

func TestScenario_RegisterDuplicateAndLogin(t *testing.T) {
	s := newStore(t, newFakeSlot())
	ctx := context.Background()

	ann, err := s.Register(ctx, "a@x.com", "Ann", "pw1", "buyer")
	require.NoError(t, err)
	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	_, err = s.Register(ctx, "a@x.com", "Ann2", "pw2", "seller")
	require.ErrorIs(t, err, common.ErrDuplicateIdentity)
	all, err = s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	u, err := s.VerifyCredentials(ctx, "a@x.com", "pw1")
	require.NoError(t, err)
	require.Equal(t, ann.ID, u.ID)
	require.Equal(t, "Ann", u.FullName)
	require.True(t, ann.CreatedAt.Equal(u.CreatedAt.Time))

	_, err = s.VerifyCredentials(ctx, "a@x.com", "wrong")
	require.ErrorIs(t, err, common.ErrInvalidCredential)

	_, err = s.VerifyCredentials(ctx, "nobody@x.com", "x")
	require.ErrorIs(t, err, common.ErrIdentityNotFound)
}

func ExampleStore() {
	ctx := context.Background()
	s, _ := Open(ctx, memory.NewRepository())

	_, _ = s.Register(ctx, "a@x.com", "Ann", "pw1", "buyer")
	_, err := s.Register(ctx, "a@x.com", "Ann", "pw1", "buyer")
	fmt.Println(err)

	u, _ := s.VerifyCredentials(ctx, "a@x.com", "pw1")
	fmt.Println(u.FullName, u.Role)
	// Output:
	// user with this email already exists
	// Ann buyer
}
