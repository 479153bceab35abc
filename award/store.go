/*
store.go - Persistence contract for award generation

PURPOSE:
  Defines what the generator needs from the database: the population, the
  yearly score aggregates, and an atomic replace of a year's award set.

ATOMIC REPLACE:
  ReplaceYear deletes every record of the year and inserts the new set as one
  unit. Transactional stores (store/sqlite) run both steps inside a single
  database transaction, so a failed insert rolls the delete back and the
  prior set survives. A store that cannot do this must return an error
  wrapping ErrPartialReplace when the delete succeeded and the insert did
  not, so the caller learns the prior set is gone.

EXCLUSIVITY:
  The generator's early CountAwards check is advisory. Manual creates don't
  take the per-year lock, so ReplaceYear repeats the check atomically with
  the replace when force is off.

UNIQUENESS:
  At most one record per (year, employee). Stores enforce it and report
  violations as ErrDuplicateAward.

IMPLEMENTATIONS:
  - store/sqlite: Production, one SQL transaction per replace
  - store/memory: In-memory for tests, with failure injection

SEE ALSO:
  - generator.go: The only caller of ReplaceYear
*/
package award

import (
	"context"
	"time"

	"github.com/warp/hr-engine/hr"
)

// Store persists award records.
type Store interface {
	// CountAwards returns the number of records for year.
	CountAwards(ctx context.Context, year int) (int, error)

	// ReplaceYear atomically swaps the year's records for records and
	// returns how many prior records were discarded. Without force it
	// recounts inside the same unit and returns *AlreadyGeneratedError when
	// the year holds any record, leaving it untouched.
	ReplaceYear(ctx context.Context, year int, records []Record, force bool) (replaced int, err error)
}

// Population supplies the generator's input.
type Population interface {
	// AllEmployees returns every employee regardless of status.
	AllEmployees(ctx context.Context) ([]hr.Employee, error)

	// ScoreSummaries sums score events per employee dated in [from, to].
	ScoreSummaries(ctx context.Context, from, to time.Time) (map[string]hr.ScoreSummary, error)
}

// SortField selects the ordering of award listings.
type SortField string

const (
	SortByRank       SortField = "rank"
	SortByFinalScore SortField = "final_score"
	SortByBonus      SortField = "bonus_amount"
	SortByYear       SortField = "year"
)

func (f SortField) Valid() bool {
	switch f {
	case SortByRank, SortByFinalScore, SortByBonus, SortByYear:
		return true
	}
	return false
}

// Filter narrows award listings. Zero values match everything.
type Filter struct {
	Year       int
	Level      Level
	EmployeeID string
	Department string
	SortBy     SortField
	Descending bool
	Page       hr.Page
}

// Listing is a record joined with the winner's current employee data.
type Listing struct {
	Record
	EmployeeName string
	Department   string
	Position     string
}
