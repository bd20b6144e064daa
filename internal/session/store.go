// Package session owns the authenticated identity of a client for its whole
// lifetime and persists it across restarts.
package session

import (
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/railmadad/portal/internal/apperr"
	"github.com/railmadad/portal/internal/role"
	"github.com/railmadad/portal/internal/util"
)

// Session is the identity of a signed-in user.
type Session struct {
	Token       string
	Role        role.Role
	Username    string
	DisplayName string
	Station     string
}

// HasStation reports whether the session is scoped to a station.
func (s *Session) HasStation() bool {
	return s != nil && s.Station != ""
}

// Credentials is what a successful login hands to the store.
type Credentials struct {
	Token    string
	Role     string
	Station  string
	Username string
	FullName string
}

// Listener is notified with the new session, or nil after logout.
type Listener func(*Session)

// Store holds the current session and mirrors it into Storage.
type Store struct {
	mu        sync.RWMutex
	storage   Storage
	current   *Session
	listeners map[int]Listener
	nextID    int
	logger    zerolog.Logger
}

// NewStore restores any persisted session from storage without contacting the server.
func NewStore(storage Storage) *Store {
	s := &Store{
		storage:   storage,
		listeners: make(map[int]Listener),
		logger:    log.With().Str("component", "session").Logger(),
	}
	s.current = restore(storage, s.logger)
	return s
}

func restore(storage Storage, logger zerolog.Logger) *Session {
	token, ok := storage.Get(KeyToken)
	if !ok || strings.TrimSpace(token) == "" {
		return nil
	}

	username, _ := storage.Get(KeyUsername)
	fullName, _ := storage.Get(KeyFullName)
	station, _ := storage.Get(KeyStation)
	rawRole, _ := storage.Get(KeyRole)

	station = util.NormalizeName(station)
	r, err := role.Parse(rawRole)
	if err != nil {
		logger.Warn().Str("role", rawRole).Msg("persisted role missing or unknown, restoring as passenger")
		r, station = role.User, ""
	}
	if r.RequiresStation() && station == "" {
		logger.Warn().Str("role", r.String()).Msg("persisted station missing, restoring as passenger")
		r = role.User
	}

	return &Session{
		Token:       token,
		Role:        r,
		Username:    strings.TrimSpace(username),
		DisplayName: util.DisplayName(fullName, username),
		Station:     station,
	}
}

// Login validates and persists a new session, then notifies subscribers.
func (s *Store) Login(c Credentials) (*Session, error) {
	sess, err := validate(c)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	writes := [][2]string{
		{KeyToken, sess.Token},
		{KeyRole, sess.Role.String()},
		{KeyUsername, sess.Username},
		{KeyFullName, util.NormalizeName(c.FullName)},
		{KeyStation, sess.Station},
	}
	for _, kv := range writes {
		if kv[1] == "" {
			err = s.storage.Delete(kv[0])
		} else {
			err = s.storage.Set(kv[0], kv[1])
		}
		if err != nil {
			_ = s.storage.Delete(allKeys...)
			s.current = nil
			s.mu.Unlock()
			return nil, err
		}
	}
	s.current = sess
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	s.logger.Info().Str("role", sess.Role.String()).Str("station", sess.Station).Msg("session started")
	notify(listeners, sess)
	return sess.clone(), nil
}

func validate(c Credentials) (*Session, error) {
	token := strings.TrimSpace(c.Token)
	if token == "" {
		return nil, apperr.Validation("login response carried no token")
	}
	r, err := role.Parse(c.Role)
	if err != nil {
		return nil, apperr.Validation("unknown role %q", c.Role)
	}
	station := util.NormalizeName(c.Station)
	if r.RequiresStation() && station == "" {
		return nil, apperr.Validation("%s accounts must be assigned to a station", r.Label())
	}
	username := strings.TrimSpace(c.Username)
	return &Session{
		Token:       token,
		Role:        r,
		Username:    username,
		DisplayName: util.DisplayName(c.FullName, username),
		Station:     station,
	}, nil
}

// Logout wipes the persisted and in-memory session. Calling it again is a no-op.
func (s *Store) Logout() error {
	s.mu.Lock()
	hadSession := s.current != nil
	s.current = nil
	err := s.storage.Delete(allKeys...)
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	if !hadSession {
		return err
	}
	s.logger.Info().Msg("session ended")
	notify(listeners, nil)
	return err
}

// Current returns a copy of the session, or nil when signed out.
func (s *Store) Current() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.clone()
}

// Token returns the bearer credential, or "" when signed out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.Token
}

// Subscribe registers fn for session changes and returns its cancel func.
func (s *Store) Subscribe(fn Listener) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) snapshotListeners() []Listener {
	out := make([]Listener, 0, len(s.listeners))
	for i := 0; i < s.nextID; i++ {
		if fn, ok := s.listeners[i]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func notify(listeners []Listener, sess *Session) {
	for _, fn := range listeners {
		fn(sess.clone())
	}
}

func (s *Session) clone() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}

// ErrNoSession is returned by operations that need a signed-in user.
var ErrNoSession error = &apperr.Error{Kind: apperr.ErrAuth, Message: "Please sign in to continue."}
