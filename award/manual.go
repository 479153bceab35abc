package award

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ManualInput is an administrator-entered award.
type ManualInput struct {
	Year       int
	EmployeeID string
	FinalScore int64
	Rank       int
	Level      Level
}

// NewManualRecord validates in against the table and builds a record whose
// bonus is derived from the level.
func (t TierTable) NewManualRecord(in ManualInput, now time.Time) (Record, error) {
	if err := t.checkManual(in, now); err != nil {
		return Record{}, err
	}
	return Record{
		ID:          uuid.NewString(),
		Year:        in.Year,
		EmployeeID:  in.EmployeeID,
		FinalScore:  in.FinalScore,
		Rank:        in.Rank,
		Level:       in.Level,
		BonusAmount: t.Bonus(in.Level),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// ApplyManual overwrites the editable fields of existing with in. The record
// keeps its ID and creation time.
func (t TierTable) ApplyManual(existing Record, in ManualInput, now time.Time) (Record, error) {
	if err := t.checkManual(in, now); err != nil {
		return Record{}, err
	}
	existing.Year = in.Year
	existing.EmployeeID = in.EmployeeID
	existing.FinalScore = in.FinalScore
	existing.Rank = in.Rank
	existing.Level = in.Level
	existing.BonusAmount = t.Bonus(in.Level)
	existing.UpdatedAt = now
	return existing, nil
}

func (t TierTable) checkManual(in ManualInput, now time.Time) error {
	switch {
	case strings.TrimSpace(in.EmployeeID) == "":
		return fmt.Errorf("%w: employee id is required", ErrInvalidAward)
	case in.Year < MinYear || in.Year > now.Year():
		return fmt.Errorf("%w: year %d out of range %d-%d", ErrInvalidAward, in.Year, MinYear, now.Year())
	case in.Rank < 1:
		return fmt.Errorf("%w: rank must be positive", ErrInvalidAward)
	case !t.Has(in.Level):
		return fmt.Errorf("%w: unknown level %q", ErrInvalidAward, in.Level)
	}
	return nil
}
