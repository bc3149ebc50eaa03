package repo

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
)

// DBTime asks the database for its clock, which doubles as a liveness probe.
func (r *LinksRepo) DBTime(ctx context.Context) (time.Time, error) {
	var now Date
	if _, err := r.db.Select(goqu.L("CURRENT_TIMESTAMP")).ScanValContext(ctx, &now); err != nil {
		return time.Time{}, err
	}
	return now.Time(), nil
}
