// Package credentials is the only place the signed-in principal is read or written.
package credentials

import (
	"errors"
	"fmt"
	"strings"

	"github.com/campuscatalyst/portal/internal/vault"
	"github.com/campuscatalyst/portal/pkg/schema"
)

// Slot keys, named as the web client names them.
const (
	TokenKey = "authToken"
	RoleKey  = "userRole"
)

const sealedPrefix = "sealed:"

// ErrEmptyToken is returned when saving a principal without a token.
var ErrEmptyToken = errors.New("credentials: empty token")

// Store maps a principal onto a durable and a session slot.
type Store struct {
	durable Slot
	session Slot
	key     []byte
}

// Option configures a Store.
type Option func(*Store)

// WithMasterKey seals the durable token with AES-GCM under key.
func WithMasterKey(key []byte) Option {
	return func(s *Store) { s.key = key }
}

func New(durable, session Slot, opts ...Option) *Store {
	s := &Store{durable: durable, session: session}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save stores the token in the durable slot when persistent, otherwise in the
// session slot, and always stores the role durably. Any token left in the other
// slot is removed.
func (s *Store) Save(p schema.Principal, persistent bool) error {
	if p.Token == "" {
		return ErrEmptyToken
	}

	target, other := s.session, s.durable
	token := p.Token
	if persistent {
		target, other = s.durable, s.session
		if s.key != nil {
			sealed, err := vault.Seal(p.Token, s.key)
			if err != nil {
				return fmt.Errorf("credentials: seal token: %w", err)
			}
			token = sealedPrefix + sealed
		}
	}

	if err := other.Delete(TokenKey); err != nil {
		return fmt.Errorf("credentials: clear stale token: %w", err)
	}
	if err := target.Set(TokenKey, token); err != nil {
		return fmt.Errorf("credentials: save token: %w", err)
	}
	if err := s.durable.Set(RoleKey, string(p.Role)); err != nil {
		return fmt.Errorf("credentials: save role: %w", err)
	}
	return nil
}

// Load returns the stored principal, checking the durable slot before the
// session slot. ok is false when no token is stored.
func (s *Store) Load() (p schema.Principal, ok bool, err error) {
	token, found, err := s.durable.Get(TokenKey)
	if err != nil {
		return p, false, fmt.Errorf("credentials: read durable token: %w", err)
	}
	if found && strings.HasPrefix(token, sealedPrefix) {
		if s.key == nil {
			return p, false, fmt.Errorf("credentials: token is sealed but no master key is configured")
		}
		token, err = vault.Open(strings.TrimPrefix(token, sealedPrefix), s.key)
		if err != nil {
			return p, false, fmt.Errorf("credentials: open token: %w", err)
		}
	}
	if !found || token == "" {
		token, found, err = s.session.Get(TokenKey)
		if err != nil {
			return p, false, fmt.Errorf("credentials: read session token: %w", err)
		}
	}
	if !found || token == "" {
		return p, false, nil
	}

	role, _, err := s.Role()
	if err != nil {
		return p, false, err
	}
	return schema.Principal{Token: token, Role: role}, true, nil
}

// Role returns the stored role even when no token survives.
func (s *Store) Role() (schema.Role, bool, error) {
	role, ok, err := s.durable.Get(RoleKey)
	if err != nil {
		return "", false, fmt.Errorf("credentials: read role: %w", err)
	}
	return schema.Role(role), ok, nil
}

// Token implements sdk.TokenSource.
func (s *Store) Token() (string, error) {
	p, ok, err := s.Load()
	if err != nil || !ok {
		return "", err
	}
	return p.Token, nil
}

// Clear removes the token from both slots and the role.
func (s *Store) Clear() error {
	return errors.Join(
		s.durable.Delete(TokenKey),
		s.session.Delete(TokenKey),
		s.durable.Delete(RoleKey),
	)
}
