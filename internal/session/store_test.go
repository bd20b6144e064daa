package session

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railmadad/portal/internal/apperr"
	"github.com/railmadad/portal/internal/role"
)

func TestLoginPersistsAndNotifies(t *testing.T) {
	storage := NewMemoryStorage()
	store := NewStore(storage)
	require.Nil(t, store.Current())

	var seen []*Session
	cancel := store.Subscribe(func(s *Session) { seen = append(seen, s) })
	defer cancel()

	sess, err := store.Login(Credentials{
		Token:    "tok-1",
		Role:     "STATION_MASTER",
		Station:  " New  Delhi ",
		Username: "sm@rail.in",
		FullName: "Meera Iyer",
	})
	require.NoError(t, err)
	assert.Equal(t, role.StationMaster, sess.Role)
	assert.Equal(t, "New Delhi", sess.Station)
	assert.Equal(t, "Meera Iyer", sess.DisplayName)
	assert.Equal(t, "tok-1", store.Token())

	v, ok := storage.Get(KeyStation)
	require.True(t, ok)
	assert.Equal(t, "New Delhi", v)

	require.Len(t, seen, 1)
	assert.Equal(t, "sm@rail.in", seen[0].Username)
}

func TestLoginRejectsContradictions(t *testing.T) {
	store := NewStore(NewMemoryStorage())

	_, err := store.Login(Credentials{Token: "t", Role: "STATION_STAFF"})
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = store.Login(Credentials{Token: "", Role: "USER"})
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = store.Login(Credentials{Token: "t", Role: "CONDUCTOR"})
	require.ErrorIs(t, err, apperr.ErrValidation)

	assert.Nil(t, store.Current())
}

func TestLogoutClearsEverythingAndIsIdempotent(t *testing.T) {
	storage := NewMemoryStorage()
	store := NewStore(storage)

	notifications := 0
	store.Subscribe(func(*Session) { notifications++ })

	_, err := store.Login(Credentials{Token: "t", Role: "ADMIN", Username: "rpf@rail.in"})
	require.NoError(t, err)

	require.NoError(t, store.Logout())
	assert.Nil(t, store.Current())
	assert.Equal(t, "", store.Token())
	assert.Equal(t, 0, storage.Len())

	require.NoError(t, store.Logout())
	assert.Equal(t, 2, notifications)
}

func TestLogoutForAnyPriorSession(t *testing.T) {
	for _, r := range role.All {
		store := NewStore(NewMemoryStorage())
		_, err := store.Login(Credentials{Token: "t", Role: r.String(), Station: "Pune"})
		require.NoError(t, err, r)
		require.NoError(t, store.Logout())
		assert.Nil(t, store.Current(), r)
	}
}

func TestRestoreFailsOpenToPassenger(t *testing.T) {
	storage := NewMemoryStorage()
	_ = storage.Set(KeyToken, "tok")
	_ = storage.Set(KeyUsername, "asha.k@rail.in")

	store := NewStore(storage)
	sess := store.Current()
	require.NotNil(t, sess)
	assert.Equal(t, role.User, sess.Role)
	assert.Equal(t, "Asha K", sess.DisplayName)

	_ = storage.Set(KeyRole, "STATION_STAFF")
	sess = NewStore(storage).Current()
	require.NotNil(t, sess)
	assert.Equal(t, role.User, sess.Role, "station role without station downgrades")

	_ = storage.Set(KeyStation, "Pune")
	sess = NewStore(storage).Current()
	assert.Equal(t, role.StationStaff, sess.Role)
}

func TestRestoreWithoutTokenIsSignedOut(t *testing.T) {
	storage := NewMemoryStorage()
	_ = storage.Set(KeyRole, "SUPER_ADMIN")
	assert.Nil(t, NewStore(storage).Current())
}

func TestCurrentReturnsCopy(t *testing.T) {
	store := NewStore(NewMemoryStorage())
	_, err := store.Login(Credentials{Token: "t", Role: "USER"})
	require.NoError(t, err)

	s := store.Current()
	s.Role = role.SuperAdmin
	assert.Equal(t, role.User, store.Current().Role)
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	store := NewStore(NewMemoryStorage())
	calls := 0
	cancel := store.Subscribe(func(*Session) { calls++ })
	cancel()
	cancel()
	_, _ = store.Login(Credentials{Token: "t", Role: "USER"})
	assert.Equal(t, 0, calls)
}

type failingStorage struct {
	*MemoryStorage
	failOn string
}

func (f failingStorage) Set(key, value string) error {
	if key == f.failOn {
		return errors.New("disk full")
	}
	return f.MemoryStorage.Set(key, value)
}

func TestLoginRollsBackOnStorageFailure(t *testing.T) {
	mem := NewMemoryStorage()
	store := NewStore(failingStorage{MemoryStorage: mem, failOn: KeyUsername})
	_, err := store.Login(Credentials{Token: "t", Role: "USER", Username: "a@b.in"})
	require.Error(t, err)
	assert.Nil(t, store.Current())
	assert.Equal(t, 0, mem.Len())
}

func TestFileStorageRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	fs, err := OpenFileStorage(path)
	require.NoError(t, err)

	store := NewStore(fs)
	_, err = store.Login(Credentials{Token: "tok", Role: "RPF_ADMIN", Username: "rpf@rail.in", FullName: "Kiran"})
	require.NoError(t, err)

	reopened, err := OpenFileStorage(path)
	require.NoError(t, err)
	sess := NewStore(reopened).Current()
	require.NotNil(t, sess)
	assert.Equal(t, role.RPFAdmin, sess.Role)
	assert.Equal(t, "Kiran", sess.DisplayName)

	require.NoError(t, NewStore(reopened).Logout())
	assert.NoFileExists(t, path)

	empty, err := OpenFileStorage(path)
	require.NoError(t, err)
	assert.Nil(t, NewStore(empty).Current())
}

func TestLogoutLeavesNoTokenWhenRemoveFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	fs, err := OpenFileStorage(path)
	require.NoError(t, err)
	fs.remove = func(string) error { return errors.New("file busy") }

	store := NewStore(fs)
	_, err = store.Login(Credentials{Token: "tok", Role: "USER", Username: "asha@rail.in"})
	require.NoError(t, err)
	require.NoError(t, store.Logout())
	assert.FileExists(t, path)

	reopened, err := OpenFileStorage(path)
	require.NoError(t, err)
	_, ok := reopened.Get(KeyToken)
	assert.False(t, ok)
	assert.Nil(t, NewStore(reopened).Current())
}

func TestDowngradedRestoreDropsStation(t *testing.T) {
	storage := NewMemoryStorage()
	_ = storage.Set(KeyToken, "t")
	_ = storage.Set(KeyRole, "STATION_CHIEF")
	_ = storage.Set(KeyStation, "Pune")

	sess := NewStore(storage).Current()
	require.NotNil(t, sess)
	assert.Equal(t, role.User, sess.Role)
	assert.Empty(t, sess.Station)
	assert.False(t, sess.HasStation())
}
