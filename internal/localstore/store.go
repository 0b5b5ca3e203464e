package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/carekeep/internal/shared"
)

// DefaultPrefix is used when a [Store] is created without a prefix.
const DefaultPrefix = "carekeep"

// GuestNamespace is the identity segment used when no one is signed in.
const GuestNamespace = "guest"

// IdentityFunc returns the current session identity, or "" when there is none.
type IdentityFunc func() string

// Store reads and writes JSON values under the current identity's namespace.
type Store struct {
	backend  Backend
	prefix   string
	identity IdentityFunc
}

// New creates a [Store]. An empty prefix becomes [DefaultPrefix]; a nil identity resolves to guest.
func New(backend Backend, prefix string, identity IdentityFunc) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if identity == nil {
		identity = func() string { return "" }
	}
	return &Store{backend: backend, prefix: prefix, identity: identity}
}

// Sanitize lowercases identity and replaces every rune outside [a-z0-9@._+-] with '_'.
func Sanitize(identity string) string {
	if identity == "" {
		return GuestNamespace
	}

	var b strings.Builder
	for _, r := range strings.ToLower(identity) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '@', r == '.', r == '_', r == '+', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// Namespace returns "prefix:identity" for the identity current at call time.
func (s *Store) Namespace() string {
	return s.prefix + ":" + Sanitize(s.identity())
}

// Key returns the namespaced key for name.
func (s *Store) Key(name string) string {
	return s.Namespace() + ":" + name
}

// Get returns the value stored under name, or fallback when it is missing or cannot be decoded.
func Get[T any](s *Store, name string, fallback T) T {
	var v T
	if err := s.Lookup(name, &v); err != nil {
		return fallback
	}
	return v
}

// Lookup decodes the value stored under name into dst.
//
// It returns [shared.ErrKeyNotFound] when nothing is stored and [shared.ErrLocalStorage] when
// the backend or decoding fails.
func (s *Store) Lookup(name string, dst any) error {
	key := s.Key(name)
	raw, ok, err := s.backend.Get(key)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrLocalStorage, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrKeyNotFound, key)
	}

	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("%w: failed to decode %s: %v", shared.ErrLocalStorage, key, err)
	}
	return nil
}

// Set encodes value as JSON and stores it under name.
//
// Every failure, including an exceeded quota, is reported as [shared.ErrLocalStorage].
func (s *Store) Set(name string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: failed to encode %s: %v", shared.ErrLocalStorage, name, err)
	}

	if err := s.backend.Set(s.Key(name), string(data)); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrLocalStorage, err)
	}
	return nil
}

// Remove deletes name from the namespace. Removing a missing key is not an error.
func (s *Store) Remove(name string) error {
	if err := s.backend.Remove(s.Key(name)); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrLocalStorage, err)
	}
	return nil
}

// Has reports whether a value is stored under name.
func (s *Store) Has(name string) bool {
	_, ok, err := s.backend.Get(s.Key(name))
	return err == nil && ok
}

// Namespaces lists each "prefix:identity" namespace holding at least one value, in key order.
// It returns [shared.ErrNotImplemented] when the backend cannot enumerate keys.
func (s *Store) Namespaces() ([]string, error) {
	lister, ok := s.backend.(KeyLister)
	if !ok {
		return nil, fmt.Errorf("%w: backend cannot list keys", shared.ErrNotImplemented)
	}

	keys, err := lister.Keys(s.prefix + ":")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrLocalStorage, err)
	}

	var namespaces []string
	for _, k := range keys {
		identity, _, ok := strings.Cut(strings.TrimPrefix(k, s.prefix+":"), ":")
		if !ok || identity == "" {
			continue
		}
		ns := s.prefix + ":" + identity
		if n := len(namespaces); n == 0 || namespaces[n-1] != ns {
			namespaces = append(namespaces, ns)
		}
	}
	return namespaces, nil
}

// MigrateOldData copies each legacy unscoped key into the namespace when the namespaced key is
// absent, and returns how many values were copied. Values are copied verbatim.
//
// A copied legacy key is then removed, so the first identity to migrate on a device claims it
// and later identities start empty.
func (s *Store) MigrateOldData(names ...string) (int, error) {
	copied := 0
	var errs []error

	for _, name := range names {
		key := s.Key(name)
		if _, ok, err := s.backend.Get(key); err != nil {
			errs = append(errs, fmt.Errorf("%w: %v", shared.ErrLocalStorage, err))
			continue
		} else if ok {
			continue
		}

		legacy, ok, err := s.backend.Get(name)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %v", shared.ErrLocalStorage, err))
			continue
		}
		if !ok {
			continue
		}

		if err := s.backend.Set(key, legacy); err != nil {
			errs = append(errs, fmt.Errorf("%w: %w", shared.ErrLocalStorage, err))
			continue
		}
		copied++

		if err := s.backend.Remove(name); err != nil {
			errs = append(errs, fmt.Errorf("%w: %v", shared.ErrLocalStorage, err))
		}
	}

	return copied, errors.Join(errs...)
}
