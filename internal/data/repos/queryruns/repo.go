package queryruns

import (
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/gdelt-dashboard/internal/domain/gdelt"
	"github.com/yungbote/gdelt-dashboard/internal/pkg/dbctx"
	"github.com/yungbote/gdelt-dashboard/internal/platform/logger"
)

type QueryRunRepo interface {
	Create(dbc dbctx.Context, runs []*gdelt.QueryRun) ([]*gdelt.QueryRun, error)
	ListRecent(dbc dbctx.Context, limit int) ([]*gdelt.QueryRun, error)
	ListByEventDate(dbc dbctx.Context, eventDate string) ([]*gdelt.QueryRun, error)
	DeleteOlderThan(dbc dbctx.Context, cutoff time.Time) (int64, error)
}

type queryRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQueryRunRepo(db *gorm.DB, baseLog *logger.Logger) QueryRunRepo {
	return &queryRunRepo{db: db, log: baseLog.With("repo", "QueryRunRepo")}
}

func (r *queryRunRepo) tx(dbc dbctx.Context) *gorm.DB {
	return dbc.DB(r.db)
}

func (r *queryRunRepo) Create(dbc dbctx.Context, runs []*gdelt.QueryRun) ([]*gdelt.QueryRun, error) {
	if len(runs) == 0 {
		return []*gdelt.QueryRun{}, nil
	}
	if err := r.tx(dbc).Create(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

// ListRecent returns the newest runs first.
func (r *queryRunRepo) ListRecent(dbc dbctx.Context, limit int) ([]*gdelt.QueryRun, error) {
	var results []*gdelt.QueryRun
	if limit <= 0 {
		return results, nil
	}
	if err := r.tx(dbc).
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *queryRunRepo) ListByEventDate(dbc dbctx.Context, eventDate string) ([]*gdelt.QueryRun, error) {
	var results []*gdelt.QueryRun
	if eventDate == "" {
		return results, nil
	}
	if err := r.tx(dbc).
		Where("event_date = ?", eventDate).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *queryRunRepo) DeleteOlderThan(dbc dbctx.Context, cutoff time.Time) (int64, error) {
	res := r.tx(dbc).Where("created_at < ?", cutoff).Delete(&gdelt.QueryRun{})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		r.log.Info("pruned query runs", "deleted", res.RowsAffected, "cutoff", cutoff)
	}
	return res.RowsAffected, nil
}
