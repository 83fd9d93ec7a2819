// Package auth stores the backend API token in the OS keychain.
package auth

import (
	"errors"
	"strings"
)

const (
	ServiceName = "arma3-server-manager"
	// DefaultAccount is the keychain account used when no backend is named.
	DefaultAccount = "default"
)

var ErrTokenNotFound = errors.New("auth token not found")

type Store interface {
	SetToken(account string, token string) error
	GetToken(account string) (string, error)
	DeleteToken(account string) error
}

// DefaultStore returns the standard auth store backed by the OS keychain.
func DefaultStore() Store {
	return NewKeyringStore(ServiceName)
}

// AccountForTarget derives a keychain account from a backend origin so that
// tokens for different backends do not collide.
func AccountForTarget(target string) string {
	target = strings.TrimSpace(strings.ToLower(target))
	target = strings.TrimPrefix(target, "https://")
	target = strings.TrimPrefix(target, "http://")
	target = strings.TrimRight(target, "/")
	if target == "" {
		return DefaultAccount
	}
	return target
}

// ResolveToken prefers an explicit token (from config) over the stored one.
// A missing stored token is not an error.
func ResolveToken(store Store, explicit, target string) (string, error) {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return explicit, nil
	}
	token, err := store.GetToken(AccountForTarget(target))
	if errors.Is(err, ErrTokenNotFound) {
		return "", nil
	}
	return token, err
}
