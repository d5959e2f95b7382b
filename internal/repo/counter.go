package repo

import (
	"context"
	"errors"
	"time"

	"github.com/elkhamyyali/ecommerceback/internal/apperr"
	"gorm.io/gorm"
)

// upsertCounterSQL creates the row at start+step or bumps it by step, returning the
// new value in the same statement. PostgreSQL and SQLite (3.35+) both accept it.
const upsertCounterSQL = `INSERT INTO counters (name, value, created_at, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (name) DO UPDATE SET value = counters.value + ?, updated_at = excluded.updated_at
RETURNING value`

var errNoCounterRow = errors.New("counter upsert returned no row")

type CounterRepo struct {
	DB    *gorm.DB
	Start int64
	Step  int64
}

func NewCounterRepo(db *gorm.DB, start, step int64) *CounterRepo {
	if step <= 0 {
		step = 1
	}
	return &CounterRepo{DB: db, Start: start, Step: step}
}

// NextValue atomically increments the named counter and returns the new value.
func (r *CounterRepo) NextValue(ctx context.Context, name string) (int64, error) {
	return r.nextValue(r.DB.WithContext(ctx), name)
}

// Current returns the last value handed out, 0 when the counter was never used.
func (r *CounterRepo) Current(ctx context.Context, name string) (int64, error) {
	var values []int64
	if err := r.DB.WithContext(ctx).Table("counters").Where("name = ?", name).Limit(1).Pluck("value", &values).Error; err != nil {
		return 0, apperr.Storage("read counter "+name, err)
	}
	if len(values) == 0 {
		return 0, nil
	}
	return values[0], nil
}

func (r *CounterRepo) nextValue(db *gorm.DB, name string) (int64, error) {
	if name == "" {
		return 0, apperr.Validation("sequence name is required")
	}

	step := r.Step
	if step <= 0 {
		step = 1
	}

	now := time.Now().UTC()
	var value int64
	res := db.Raw(upsertCounterSQL, name, r.Start+step, now, now, step).Scan(&value)
	if res.Error != nil {
		return 0, apperr.Storage("increment counter "+name, res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, apperr.Storage("increment counter "+name, errNoCounterRow)
	}
	return value, nil
}
