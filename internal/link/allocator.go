package link

import (
	"context"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/abdusco/shorty/internal"
	"github.com/samber/lo"
)

const (
	minCodeLen = 6
	maxCodeLen = 8
)

// CodeChecker answers whether a code is already in use.
type CodeChecker interface {
	CodeExists(ctx context.Context, code string) (bool, error)
}

type Allocator struct {
	codes  CodeChecker
	random func() string
}

func NewAllocator(codes CodeChecker) *Allocator {
	return &Allocator{codes: codes, random: randomBase36}
}

// Allocate settles the code of a new link. A caller-supplied candidate is
// validated and checked for collisions; an empty candidate gets a generated
// code that is not checked against the store, so a collision there only
// shows up as a unique violation at insert.
func (a *Allocator) Allocate(ctx context.Context, candidate string) (string, error) {
	if candidate == "" {
		return normalizeCode(a.random()), nil
	}

	if !ValidateCode(candidate) {
		return "", internal.ErrInvalidCode
	}

	exists, err := a.codes.CodeExists(ctx, candidate)
	if err != nil {
		return "", err
	}
	if exists {
		return "", internal.ErrCodeExists
	}

	return candidate, nil
}

func randomBase36() string {
	return strconv.FormatUint(rand.Uint64(), 36)
}

// normalizeCode keeps the alphanumerics of raw, truncates to 8 and right-pads
// with '0' up to 6.
func normalizeCode(raw string) string {
	kept := lo.Filter([]byte(raw), func(c byte, _ int) bool {
		return isAlphanumeric(c)
	})
	if len(kept) > maxCodeLen {
		kept = kept[:maxCodeLen]
	}

	code := string(kept)
	if len(code) < minCodeLen {
		code += strings.Repeat("0", minCodeLen-len(code))
	}
	return code
}

func isAlphanumeric(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}
