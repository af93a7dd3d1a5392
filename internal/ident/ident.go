// Package ident converts shortcut identifiers between their 128-bit value and
// text. The canonical text form is the dashed UUID string; plain decimal
// numerals are accepted on input for sheets written by older releases.
package ident

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidIdentifier = errors.New("invalid identifier")

type ID uuid.UUID

var Nil ID

var maxID = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// New returns a random (version 4) identifier.
func New() ID {
	u, err := uuid.NewRandom()
	if err != nil {
		// crypto/rand failing leaves no safe way to mint ids.
		panic(fmt.Sprintf("ident: generate: %v", err))
	}
	return ID(u)
}

func (id ID) String() string {
	return uuid.UUID(id).String()
}

// Decimal returns the identifier as an unsigned decimal numeral.
func (id ID) Decimal() string {
	return new(big.Int).SetBytes(id[:]).String()
}

func (id ID) IsNil() bool {
	return id == Nil
}

// Parse accepts the dashed hex form (and the other spellings uuid.Parse
// understands) or a decimal numeral. Strings made only of digits are always
// read as decimal.
func Parse(raw string) (ID, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Nil, fmt.Errorf("%w: empty", ErrInvalidIdentifier)
	}
	if isDigits(s) {
		return parseDecimal(s)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return Nil, fmt.Errorf("%w: %q: %v", ErrInvalidIdentifier, raw, err)
	}
	return ID(u), nil
}

func parseDecimal(s string) (ID, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok || n.Cmp(maxID) > 0 {
		return Nil, fmt.Errorf("%w: %q does not fit in 128 bits", ErrInvalidIdentifier, s)
	}
	var id ID
	n.FillBytes(id[:])
	return id, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *ID) UnmarshalText(data []byte) error {
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Compare orders identifiers by their numeric value.
func Compare(a, b ID) int {
	for i := range a {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	return 0
}
