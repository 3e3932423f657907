package specification

import (
	"time"

	"gorm.io/gorm"
)

// StartsBetween keeps events whose start falls in [From, To). A zero bound is open.
type StartsBetween struct {
	From time.Time
	To   time.Time
}

func (s StartsBetween) Apply(db *gorm.DB) *gorm.DB {
	if !s.From.IsZero() {
		db = db.Where("start_at >= ?", s.From)
	}
	if !s.To.IsZero() {
		db = db.Where("start_at < ?", s.To)
	}
	return db
}

type Upcoming struct {
	Now time.Time
}

func (s Upcoming) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("end_at >= ?", s.Now)
}

// ChronologicalOrder sorts by start with id as a stable tiebreaker.
type ChronologicalOrder struct{}

func (s ChronologicalOrder) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("start_at ASC").Order("id ASC")
}
