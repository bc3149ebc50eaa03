package internal

import (
	"errors"
	"fmt"
)

var ErrInvalidURL = errors.New("invalid url")
var ErrInvalidCode = errors.New("invalid code")
var ErrCodeExists = errors.New("code already exists")
var ErrLinkNotFound = errors.New("link not found")

// ErrReservedCode is a not-found for codes the router owns.
var ErrReservedCode = fmt.Errorf("%w: reserved code", ErrLinkNotFound)

// ErrStoreFailure marks any failure of the underlying database. It is joined
// with the driver error so callers can log the cause but only ever expose the
// kind.
var ErrStoreFailure = errors.New("store failure")
