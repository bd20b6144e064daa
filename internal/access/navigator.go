package access

import (
	"sync"

	"github.com/railmadad/portal/internal/session"
)

// Navigator keeps the current location consistent with the session store.
// Login and logout re-route declaratively instead of reloading anything.
type Navigator struct {
	mu       sync.Mutex
	store    *session.Store
	location Decision
	onChange func(Decision)
	cancel   func()
}

// NewNavigator starts at path and follows session changes. onChange may be nil.
func NewNavigator(store *session.Store, path string, onChange func(Decision)) *Navigator {
	n := &Navigator{store: store, onChange: onChange}
	n.location = Route(store.Current(), path)
	n.cancel = store.Subscribe(n.sessionChanged)
	return n
}

// Go navigates to path and returns where the user actually ends up.
func (n *Navigator) Go(path string) Decision {
	d := Route(n.store.Current(), path)
	n.set(d)
	return d
}

// Location returns the current decision.
func (n *Navigator) Location() Decision {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.location
}

// Close detaches from the session store.
func (n *Navigator) Close() {
	if n.cancel != nil {
		n.cancel()
	}
}

func (n *Navigator) sessionChanged(s *session.Session) {
	n.mu.Lock()
	current := n.location.Path
	n.mu.Unlock()

	var d Decision
	if s != nil && (current == PathOf(Login) || current == PathOf(Signup)) {
		d = Route(s, Root)
	} else {
		d = Route(s, current)
	}
	n.set(d)
}

func (n *Navigator) set(d Decision) {
	n.mu.Lock()
	changed := n.location != d
	n.location = d
	cb := n.onChange
	n.mu.Unlock()

	if changed && cb != nil {
		cb(d)
	}
}
