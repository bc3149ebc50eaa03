package repo

import (
	"context"
	"errors"
	"time"

	"github.com/abdusco/shorty/internal"
	"github.com/abdusco/shorty/internal/db"
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/rs/zerolog/log"
)

const linksTable = "links"

var linkColumns = []any{
	"id", "code", "target_url", "total_clicks", "last_clicked_at", "created_at", "updated_at",
}

type linkRow struct {
	ID            int64  `db:"id" goqu:"skipinsert,skipupdate"`
	Code          string `db:"code"`
	TargetURL     string `db:"target_url"`
	TotalClicks   int64  `db:"total_clicks"`
	LastClickedAt *Date  `db:"last_clicked_at"`
	CreatedAt     Date   `db:"created_at" goqu:"skipupdate"`
	UpdatedAt     Date   `db:"updated_at"`
}

type LinksRepo struct {
	db *goqu.Database
}

func NewLinksRepo(handle *db.DB) *LinksRepo {
	return &LinksRepo{db: goqu.New(handle.Dialect, handle.DB)}
}

// Create inserts a new link with zeroed click accounting. A code that is
// already taken yields internal.ErrCodeExists.
func (r *LinksRepo) Create(ctx context.Context, code, targetURL string, now time.Time) (*internal.Link, error) {
	log.Debug().Str("code", code).Str("target_url", targetURL).Msg("creating link")

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	var row linkRow
	err = tx.Wrap(func() error {
		insert := tx.Insert(linksTable).Prepared(true).Rows(goqu.Record{
			"code":         code,
			"target_url":   targetURL,
			"total_clicks": 0,
			"created_at":   Date(now),
			"updated_at":   Date(now),
		})
		if _, err := insert.Executor().ExecContext(ctx); err != nil {
			return err
		}

		found, err := tx.From(linksTable).Prepared(true).
			Select(linkColumns...).
			Where(goqu.Ex{"code": code}).
			ScanStructContext(ctx, &row)
		if err != nil {
			return err
		}
		if !found {
			return errors.New("inserted link not readable")
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			log.Warn().Str("code", code).Msg("code already taken at insert")
			return nil, internal.ErrCodeExists
		}
		log.Error().Err(err).Str("code", code).Msg("failed to create link")
		return nil, err
	}

	link := row.toDomain()
	log.Info().Int64("id", link.ID).Str("code", link.Code).Msg("link created successfully")

	return link, nil
}

func (r *LinksRepo) GetByCode(ctx context.Context, code string) (*internal.Link, error) {
	log.Debug().Str("code", code).Msg("fetching link by code")

	query := r.db.From(linksTable).Prepared(true).
		Select(linkColumns...).
		Where(goqu.Ex{"code": code})

	var row linkRow
	found, err := query.ScanStructContext(ctx, &row)
	if err != nil {
		log.Error().Err(err).Str("code", code).Msg("failed to fetch link")
		return nil, err
	}

	if !found {
		log.Debug().Str("code", code).Msg("link not found")
		return nil, internal.ErrLinkNotFound
	}

	return row.toDomain(), nil
}

// CodeExists is the pre-insert uniqueness probe for caller-supplied codes.
func (r *LinksRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	query := r.db.From(linksTable).Prepared(true).
		Select("id").
		Where(goqu.Ex{"code": code})

	var id int64
	found, err := query.ScanValContext(ctx, &id)
	if err != nil {
		log.Error().Err(err).Str("code", code).Msg("failed to check code")
		return false, err
	}
	return found, nil
}

func (r *LinksRepo) ListAll(ctx context.Context) ([]*internal.Link, error) {
	query := r.db.From(linksTable).Prepared(true).
		Select(linkColumns...).
		Order(goqu.C("created_at").Desc(), goqu.C("id").Desc())

	var rows []linkRow
	if err := query.ScanStructsContext(ctx, &rows); err != nil {
		log.Error().Err(err).Msg("failed to list links")
		return nil, err
	}

	links := make([]*internal.Link, len(rows))
	for i := range rows {
		links[i] = rows[i].toDomain()
	}

	return links, nil
}

func (r *LinksRepo) DeleteByCode(ctx context.Context, code string) error {
	query := r.db.Delete(linksTable).Prepared(true).Where(goqu.Ex{"code": code})

	res, err := query.Executor().ExecContext(ctx)
	if err != nil {
		log.Error().Err(err).Str("code", code).Msg("failed to delete link")
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return internal.ErrLinkNotFound
	}

	log.Info().Str("code", code).Msg("link deleted")
	return nil
}

func (r *linkRow) toDomain() *internal.Link {
	link := &internal.Link{
		ID:          r.ID,
		Code:        r.Code,
		TargetURL:   r.TargetURL,
		TotalClicks: r.TotalClicks,
		CreatedAt:   r.CreatedAt.Time(),
		UpdatedAt:   r.UpdatedAt.Time(),
	}
	if r.LastClickedAt != nil {
		t := r.LastClickedAt.Time()
		link.LastClickedAt = &t
	}
	return link
}
