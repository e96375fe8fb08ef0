package users

import (
	"errors"
	"strconv"
	"sync"
)

// ErrNotFound is returned when a referenced user is not in the store.
var ErrNotFound = errors.New("user not found")

// DefaultSeed is the set of users a fresh service starts with.
var DefaultSeed = []string{"Juan", "Ana", "Marty", "Luis"}

// User is a single record in the store.
type User struct {
	ID   int    `json:"id"`
	Name string `json:"name"`

	// ref identifies the stored instance, independent of ID.
	ref uint64
}

// IDStrategy selects how Insert assigns ids.
type IDStrategy string

const (
	// IDCount assigns len(users)+1. Ids can repeat after a delete.
	IDCount IDStrategy = "count"
	// IDMonotonic assigns one more than the highest id ever issued.
	IDMonotonic IDStrategy = "monotonic"
)

// Option configures a Store.
type Option func(*Store)

// WithIDStrategy sets the id assignment policy. Unknown values keep IDCount.
func WithIDStrategy(s IDStrategy) Option {
	return func(st *Store) {
		if s == IDMonotonic {
			st.strategy = IDMonotonic
		}
	}
}

// Store is an ordered, in-memory collection of users. All public methods
// are safe for concurrent use and return copies.
type Store struct {
	mu       sync.RWMutex
	users    []*User
	strategy IDStrategy
	nextRef  uint64
	maxID    int
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{strategy: IDCount}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Seed inserts one user per name, in order. Names are not validated.
func (s *Store) Seed(names ...string) {
	for _, n := range names {
		s.Insert(n)
	}
}

// Strategy reports the id assignment policy in use.
func (s *Store) Strategy() IDStrategy {
	return s.strategy
}

// List returns every user in insertion order.
func (s *Store) List() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out
}

// Len returns the number of users currently stored.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// FindByID looks up a user by the textual id taken from a request path.
// Anything that is not a base-10 integer is simply not found.
func (s *Store) FindByID(id string) (User, bool) {
	n, err := strconv.Atoi(id)
	if err != nil {
		return User{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.ID == n {
			return *u, true
		}
	}
	return User{}, false
}

// Insert appends a new user and returns it with its assigned id.
func (s *Store) Insert(name string) User {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := len(s.users) + 1
	if s.strategy == IDMonotonic {
		id = s.maxID + 1
	}
	if id > s.maxID {
		s.maxID = id
	}

	s.nextRef++
	u := &User{ID: id, Name: name, ref: s.nextRef}
	s.users = append(s.users, u)
	return *u
}

// UpdateName renames the stored instance u was read from. The name must
// already be validated. ErrNotFound means the record was removed since.
func (s *Store) UpdateName(u User, name string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(u)
	if i < 0 {
		return User{}, ErrNotFound
	}
	s.users[i].Name = name
	return *s.users[i], nil
}

// Remove deletes the stored instance u was read from and returns its
// last state.
func (s *Store) Remove(u User) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(u)
	if i < 0 {
		return User{}, ErrNotFound
	}
	removed := *s.users[i]
	s.users = append(s.users[:i], s.users[i+1:]...)
	return removed, nil
}

// indexOf must be called with mu held.
func (s *Store) indexOf(u User) int {
	for i, su := range s.users {
		if su.ref == u.ref && u.ref != 0 {
			return i
		}
	}
	return -1
}
