package credentials

import (
	"strings"
)

const (
	usernameHostSeparatorConstant = "@"
)

// Credential holds the username and password cached for one remote identifier.
type Credential struct {
	Username string
	Password string
}

// Store caches credentials per remote identifier for the lifetime of one run.
//
// The store is deliberately unsynchronized: synchronization runs strictly
// sequentially and the store is mutated by a single driver at a time.
type Store struct {
	entries map[string]Credential
}

// NewStore constructs an empty credential store.
func NewStore() *Store {
	return &Store{entries: map[string]Credential{}}
}

// NormalizeIdentifier strips an already-bound username from the supplied
// prompt text so that username and password prompts for the same host resolve
// to a single cache entry. Password prompts frequently embed the username the
// remote already accepted, e.g. "https://builder@example.com".
//
// The stripping is plain substring removal of "<username>@"; a username that
// coincidentally appears elsewhere in the prompt text is removed all the same.
func (store *Store) NormalizeIdentifier(remoteIdentifier string) string {
	trimmedIdentifier := strings.TrimSpace(remoteIdentifier)
	for _, storedCredential := range store.entries {
		if len(storedCredential.Username) == 0 {
			continue
		}
		embeddedUsername := storedCredential.Username + usernameHostSeparatorConstant
		if strings.Contains(trimmedIdentifier, embeddedUsername) {
			return strings.Replace(trimmedIdentifier, embeddedUsername, "", 1)
		}
	}
	return trimmedIdentifier
}

// LookupUsername returns the cached username for the identifier, if any.
func (store *Store) LookupUsername(remoteIdentifier string) (string, bool) {
	storedCredential, exists := store.entries[store.NormalizeIdentifier(remoteIdentifier)]
	if !exists || len(storedCredential.Username) == 0 {
		return "", false
	}
	return storedCredential.Username, true
}

// LookupPassword returns the cached password for the identifier, if any.
func (store *Store) LookupPassword(remoteIdentifier string) (string, bool) {
	storedCredential, exists := store.entries[store.NormalizeIdentifier(remoteIdentifier)]
	if !exists || len(storedCredential.Password) == 0 {
		return "", false
	}
	return storedCredential.Password, true
}

// BindUsername records the username supplied for the identifier.
func (store *Store) BindUsername(remoteIdentifier string, username string) {
	normalizedIdentifier := store.NormalizeIdentifier(remoteIdentifier)
	storedCredential := store.entries[normalizedIdentifier]
	storedCredential.Username = username
	store.entries[normalizedIdentifier] = storedCredential
}

// BindPassword records the password supplied for the identifier.
func (store *Store) BindPassword(remoteIdentifier string, password string) {
	normalizedIdentifier := store.NormalizeIdentifier(remoteIdentifier)
	storedCredential := store.entries[normalizedIdentifier]
	storedCredential.Password = password
	store.entries[normalizedIdentifier] = storedCredential
}
