// Package store keeps a library of named spec documents with their
// revision history.
package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/randalmurphal/dfs/pkg/dfs"
)

// Store persists specs by name. Every Save adds a revision; Load returns
// the latest one. Implementations must be safe for concurrent use.
type Store interface {
	// Save validates s and stores it as the next revision of name.
	Save(name string, s *dfs.Spec) (Info, error)

	// Load returns the latest revision of name.
	// Returns ErrNotFound if name has never been saved.
	Load(name string) (*dfs.Spec, Info, error)

	// LoadRevision returns one revision of name.
	LoadRevision(name string, revision int) (*dfs.Spec, Info, error)

	// List returns the latest revision of every stored name, sorted by name.
	List() ([]Info, error)

	// History returns every revision of name, oldest first.
	// Returns an empty slice (not error) if name is unknown.
	History(name string) ([]Info, error)

	// Delete removes name and all its revisions.
	// Returns nil if name doesn't exist.
	Delete(name string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Info describes a stored revision without decoding it.
type Info struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Revision int       `json:"revision"`
	Saved    time.Time `json:"saved"`
	Size     int64     `json:"size"`
}

// Sentinel errors for store operations.
var (
	// ErrNotFound indicates a spec or revision doesn't exist.
	ErrNotFound = errors.New("spec not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("spec store closed")

	// ErrInvalidName indicates an empty or padded spec name.
	ErrInvalidName = errors.New("invalid spec name")
)

func checkName(name string) error {
	if name == "" || strings.TrimSpace(name) != name {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// encode validates s and renders the stored form.
func encode(s *dfs.Spec) ([]byte, error) {
	if s == nil {
		return nil, dfs.ErrNilSpec
	}
	return s.ToJSON()
}
