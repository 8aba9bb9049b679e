package database

import (
	"errors"
	"fmt"
	"regexp"
	"slices"

	"github.com/lib/pq"
)

var (
	// ErrInvalidIdentifier is returned for table or column names that are not
	// plain SQL identifiers.
	ErrInvalidIdentifier = errors.New("invalid identifier")
	// ErrTableNotAllowed is returned for tables outside the configured allow-list.
	ErrTableNotAllowed = errors.New("table not allowed")
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdentifier reports whether name can be used as a table or column name.
func ValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

func quoteIdentifier(name string) (string, error) {
	if !ValidIdentifier(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	return pq.QuoteIdentifier(name), nil
}

// quoteTable validates name and checks it against allowed.
func quoteTable(name string, allowed []string) (string, error) {
	quoted, err := quoteIdentifier(name)
	if err != nil {
		return "", err
	}
	if !slices.Contains(allowed, name) {
		return "", fmt.Errorf("%w: %q", ErrTableNotAllowed, name)
	}
	return quoted, nil
}
