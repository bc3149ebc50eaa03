package repo

import (
	"context"
	"time"

	"github.com/abdusco/shorty/internal"
	"github.com/doug-martin/goqu/v9"
	"github.com/rs/zerolog/log"
)

// RecordClick bumps the counter of the link with the given code and returns
// its target URL. The increment is a single UPDATE so concurrent clicks on the
// same row never lose a count.
func (r *LinksRepo) RecordClick(ctx context.Context, code string, at time.Time) (string, error) {
	log.Debug().Str("code", code).Msg("recording click")

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}

	var targetURL string
	err = tx.Wrap(func() error {
		update := tx.Update(linksTable).Prepared(true).
			Set(goqu.Record{
				"total_clicks":    goqu.L("total_clicks + 1"),
				"last_clicked_at": Date(at),
				"updated_at":      Date(at),
			}).
			Where(goqu.Ex{"code": code})

		res, err := update.Executor().ExecContext(ctx)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return internal.ErrLinkNotFound
		}

		found, err := tx.From(linksTable).Prepared(true).
			Select("target_url").
			Where(goqu.Ex{"code": code}).
			ScanValContext(ctx, &targetURL)
		if err != nil {
			return err
		}
		if !found {
			return internal.ErrLinkNotFound
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	log.Debug().Str("code", code).Msg("click recorded successfully")
	return targetURL, nil
}
