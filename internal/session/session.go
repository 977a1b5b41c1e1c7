// Package session manages the catalog token lifecycle.
//
// Startup evaluates one explicit state machine in fixed priority order:
// callback parameters first, then a persisted token, else anonymous. The
// app-level client-credentials token is a separate capability fetched
// unconditionally and never conflated with the user token.
package session

import (
	"fmt"
	"strconv"
	"strings"
)

// ErrKeyNotFound indicates a key is absent from the session store.
var ErrKeyNotFound = fmt.Errorf("session key not found")

// Store is the opaque persistent key/value store backing the session.
type Store interface {
	Get(key string) (string, error) // Get returns ErrKeyNotFound when the key is absent
	Set(key, value string) error
	Remove(key string) error
	Clear() error
}

// Persisted token field keys.
const (
	KeyAccessToken = "access_token"
	KeyTokenType   = "token_type"
	KeyExpiresIn   = "expires_in"
)

// Token is a catalog access token as delivered by the authorization callback.
type Token struct {
	Value     string
	TokenType string
	ExpiresIn int
}

// ParseFragmentParams parses URL-fragment-encoded key/value pairs.
//
// The callback delivers "access_token=...&token_type=...&expires_in=..."
// (a leading "#" is tolerated); pairs are split on "&" then "=". Malformed
// pairs are dropped.
func ParseFragmentParams(fragment string) map[string]string {
	fragment = strings.TrimPrefix(fragment, "#")

	params := make(map[string]string)
	for _, pair := range strings.Split(fragment, "&") {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			continue
		}
		params[key] = value
	}
	return params
}

// TokenFromParams builds a Token from parsed callback parameters.
//
// Returns an error when the access token is missing; a malformed
// expires_in is treated as zero rather than rejected.
func TokenFromParams(params map[string]string) (Token, error) {
	access := params[KeyAccessToken]
	if access == "" {
		return Token{}, fmt.Errorf("callback parameters missing %s", KeyAccessToken)
	}

	expires, _ := strconv.Atoi(params[KeyExpiresIn])

	return Token{
		Value:     access,
		TokenType: params[KeyTokenType],
		ExpiresIn: expires,
	}, nil
}

// SaveToken persists the token fields to the store, replacing any previous session.
func SaveToken(store Store, token Token) error {
	if err := store.Clear(); err != nil {
		return fmt.Errorf("failed to clear previous session: %w", err)
	}

	fields := map[string]string{
		KeyAccessToken: token.Value,
		KeyTokenType:   token.TokenType,
		KeyExpiresIn:   strconv.Itoa(token.ExpiresIn),
	}
	for key, value := range fields {
		if err := store.Set(key, value); err != nil {
			return fmt.Errorf("failed to persist %s: %w", key, err)
		}
	}
	return nil
}

// LoadToken restores a persisted token from the store.
//
// Returns ErrKeyNotFound (wrapped) when no token is persisted.
func LoadToken(store Store) (Token, error) {
	access, err := store.Get(KeyAccessToken)
	if err != nil {
		return Token{}, fmt.Errorf("no persisted token: %w", err)
	}

	tokenType, err := store.Get(KeyTokenType)
	if err != nil {
		tokenType = ""
	}

	var expires int
	if v, err := store.Get(KeyExpiresIn); err == nil {
		expires, _ = strconv.Atoi(v)
	}

	return Token{Value: access, TokenType: tokenType, ExpiresIn: expires}, nil
}
