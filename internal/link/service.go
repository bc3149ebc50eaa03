package link

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abdusco/shorty/internal"
	"github.com/abdusco/shorty/internal/metrics"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// reservedCodes are path segments owned by the router. They never resolve,
// even if a link with that literal code exists.
var reservedCodes = []string{"healthz", "api"}

// Store is the persistence the service needs. Lookups of missing codes
// return internal.ErrLinkNotFound; inserting a taken code returns
// internal.ErrCodeExists.
type Store interface {
	CodeChecker
	Create(ctx context.Context, code, targetURL string, now time.Time) (*internal.Link, error)
	GetByCode(ctx context.Context, code string) (*internal.Link, error)
	ListAll(ctx context.Context) ([]*internal.Link, error)
	DeleteByCode(ctx context.Context, code string) error
	RecordClick(ctx context.Context, code string, at time.Time) (string, error)
	DBTime(ctx context.Context) (time.Time, error)
}

func isReserved(code string) bool {
	return lo.Contains(reservedCodes, code)
}

type Service struct {
	store     Store
	allocator *Allocator
	now       func() time.Time
}

func NewService(store Store) *Service {
	return &Service{
		store:     store,
		allocator: NewAllocator(store),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Create(ctx context.Context, targetURL, code string) (*internal.Link, error) {
	if !ValidateURL(targetURL) {
		return nil, internal.ErrInvalidURL
	}

	allocated, err := s.allocator.Allocate(ctx, code)
	if err != nil {
		return nil, storeErr(err)
	}

	link, err := s.store.Create(ctx, allocated, targetURL, s.now())
	if err != nil {
		return nil, storeErr(err)
	}

	metrics.LinksCreatedTotal.WithLabelValues(lo.Ternary(code == "", "generated", "custom")).Inc()
	return link, nil
}

func (s *Service) List(ctx context.Context) ([]*internal.Link, error) {
	links, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	return links, nil
}

func (s *Service) Get(ctx context.Context, code string) (*internal.Link, error) {
	link, err := s.store.GetByCode(ctx, code)
	if err != nil {
		return nil, storeErr(err)
	}
	return link, nil
}

func (s *Service) Delete(ctx context.Context, code string) error {
	if err := s.store.DeleteByCode(ctx, code); err != nil {
		return storeErr(err)
	}
	metrics.LinksDeletedTotal.Inc()
	return nil
}

// Redirect resolves code to its target URL and accounts one click.
func (s *Service) Redirect(ctx context.Context, code string) (string, error) {
	if isReserved(code) {
		metrics.RedirectsTotal.WithLabelValues(metrics.ResultNotFound).Inc()
		return "", internal.ErrReservedCode
	}

	targetURL, err := s.store.RecordClick(ctx, code, s.now())
	if err != nil {
		err = storeErr(err)
		metrics.RedirectsTotal.WithLabelValues(lo.Ternary(
			errors.Is(err, internal.ErrLinkNotFound), metrics.ResultNotFound, metrics.ResultError,
		)).Inc()
		return "", err
	}

	metrics.RedirectsTotal.WithLabelValues(metrics.ResultOK).Inc()
	log.Info().Str("code", code).Msg("redirecting link")
	return targetURL, nil
}

// Ping reports the database clock.
func (s *Service) Ping(ctx context.Context) (time.Time, error) {
	now, err := s.store.DBTime(ctx)
	if err != nil {
		return time.Time{}, storeErr(err)
	}
	return now, nil
}

// storeErr passes domain errors through and tags everything else as a store
// failure.
func storeErr(err error) error {
	switch {
	case errors.Is(err, internal.ErrInvalidURL),
		errors.Is(err, internal.ErrInvalidCode),
		errors.Is(err, internal.ErrCodeExists),
		errors.Is(err, internal.ErrLinkNotFound),
		errors.Is(err, internal.ErrStoreFailure):
		return err
	}
	return fmt.Errorf("%w: %w", internal.ErrStoreFailure, err)
}
