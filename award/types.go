/*
Package award ranks employees for a calendar year and persists the annual
award set.

PURPOSE:
  The only part of the HR system with real decision logic. Given the active
  population and its scores, it picks the eligible candidates, ranks them,
  partitions the ranking into fixed-quota tiers, assigns bonuses, and
  replaces the year's award set as one unit.

PIPELINE:
  1. SelectCandidates (eligibility.go): active, hired by Dec 31, score >= 0
  2. Assign (assign.go): sort, walk ranks, stop when every tier is full
  3. Generator.Generate (generator.go): per-year lock, refuse-or-replace,
     atomic ReplaceYear in the store

KEY CONCEPTS IN THIS FILE (types.go):
  - Level: special > first > second > excellent
  - TierTable: injectable quota/bonus configuration
  - Candidate: a ranked input, never persisted
  - Record: one persisted award, unique per (year, employee)

DEFAULT TIERS:
  Level       Quota  Bonus   Ranks
  special       1    5000    1
  first         2    3000    2-3
  second        3    2000    4-6
  excellent     5    1000    7-11

SEE ALSO:
  - errors.go: Error taxonomy for generation
  - store.go: Persistence contract
*/
package award

import (
	"fmt"
	"time"
)

// =============================================================================
// LEVELS
// =============================================================================

// Level is an award tier.
type Level string

const (
	LevelSpecial   Level = "special"
	LevelFirst     Level = "first"
	LevelSecond    Level = "second"
	LevelExcellent Level = "excellent"
)

// Levels in priority order.
var Levels = []Level{LevelSpecial, LevelFirst, LevelSecond, LevelExcellent}

func (l Level) Valid() bool {
	return l.priority() >= 0
}

// priority is 0 for the highest tier, -1 for unknown levels.
func (l Level) priority() int {
	for i, v := range Levels {
		if v == l {
			return i
		}
	}
	return -1
}

// Outranks reports whether l is a strictly higher tier than other.
func (l Level) Outranks(other Level) bool {
	return l.priority() < other.priority()
}

// Label is the name printed on certificates.
func (l Level) Label() string {
	switch l {
	case LevelSpecial:
		return "特等奖"
	case LevelFirst:
		return "一等奖"
	case LevelSecond:
		return "二等奖"
	case LevelExcellent:
		return "优秀员工"
	}
	return string(l)
}

// =============================================================================
// TIER TABLE
// =============================================================================

// Tier is one row of the tier table.
type Tier struct {
	Level Level `koanf:"level" json:"level" yaml:"level"`
	Quota int   `koanf:"quota" json:"quota" yaml:"quota"`
	Bonus int64 `koanf:"bonus" json:"bonus" yaml:"bonus"`
}

// TierTable lists tiers in priority order. The first Quota ranks get the
// first tier, the next Quota ranks the second, and so on.
type TierTable []Tier

// DefaultTierTable returns the standard 1/2/3/5 quota table.
func DefaultTierTable() TierTable {
	return TierTable{
		{Level: LevelSpecial, Quota: 1, Bonus: 5000},
		{Level: LevelFirst, Quota: 2, Bonus: 3000},
		{Level: LevelSecond, Quota: 3, Bonus: 2000},
		{Level: LevelExcellent, Quota: 5, Bonus: 1000},
	}
}

// Validate rejects empty tables, unknown or repeated levels, levels out of
// priority order, and negative quotas or bonuses.
func (t TierTable) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: empty tier table", ErrInvalidTiers)
	}
	last := -1
	for _, tier := range t {
		p := tier.Level.priority()
		if p < 0 {
			return fmt.Errorf("%w: unknown level %q", ErrInvalidTiers, tier.Level)
		}
		if p <= last {
			return fmt.Errorf("%w: level %q repeated or out of order", ErrInvalidTiers, tier.Level)
		}
		last = p
		if tier.Quota < 0 {
			return fmt.Errorf("%w: negative quota for %q", ErrInvalidTiers, tier.Level)
		}
		if tier.Bonus < 0 {
			return fmt.Errorf("%w: negative bonus for %q", ErrInvalidTiers, tier.Level)
		}
	}
	return nil
}

// TotalQuota is the number of award slots.
func (t TierTable) TotalQuota() int {
	total := 0
	for _, tier := range t {
		total += tier.Quota
	}
	return total
}

// LevelFor maps a 1-based rank to its tier. ok is false past the last slot.
func (t TierTable) LevelFor(rank int) (Level, bool) {
	if rank < 1 {
		return "", false
	}
	upper := 0
	for _, tier := range t {
		upper += tier.Quota
		if rank <= upper {
			return tier.Level, true
		}
	}
	return "", false
}

// Bonus returns the bonus for level, zero when the level is not in the table.
func (t TierTable) Bonus(level Level) int64 {
	for _, tier := range t {
		if tier.Level == level {
			return tier.Bonus
		}
	}
	return 0
}

// Has reports whether level appears in the table.
func (t TierTable) Has(level Level) bool {
	for _, tier := range t {
		if tier.Level == level {
			return true
		}
	}
	return false
}

// =============================================================================
// SCORE SOURCE
// =============================================================================

// ScoreSource selects which score ranks candidates.
type ScoreSource string

const (
	// ScoreSourceLifetime ranks by the employee's accumulated total.
	ScoreSourceLifetime ScoreSource = "lifetime"
	// ScoreSourceYearly ranks by the sum of events dated inside the year.
	ScoreSourceYearly ScoreSource = "yearly"
)

func (s ScoreSource) Valid() bool {
	return s == ScoreSourceLifetime || s == ScoreSourceYearly
}

// =============================================================================
// CANDIDATES AND RECORDS
// =============================================================================

// Candidate is one eligible employee for a generation run.
type Candidate struct {
	EmployeeID  string `json:"employeeId"`
	FinalScore  int64  `json:"finalScore"`
	YearlyScore int64  `json:"yearlyScore"`
	TotalScore  int64  `json:"totalScore"`
	RecordCount int    `json:"recordCount"`
}

// Record is one persisted award.
type Record struct {
	ID          string
	Year        int
	EmployeeID  string
	FinalScore  int64
	Rank        int
	Level       Level
	BonusAmount int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Statistics summarizes a generation run. TotalEmployees counts the
// employees active and hired by year end; EligibleEmployees counts those
// among them whose ranking score is not negative.
type Statistics struct {
	TotalEmployees    int           `json:"totalEmployees"`
	EligibleEmployees int           `json:"qualifiedEmployees"`
	AwardedEmployees  int           `json:"awardedEmployees"`
	TotalBonus        int64         `json:"totalBonusAmount"`
	LevelCounts       map[Level]int `json:"awardLevelCounts"`
}

// Summarize counts records per level and totals their bonuses.
func Summarize(records []Record) (counts map[Level]int, totalBonus int64) {
	counts = make(map[Level]int, len(Levels))
	for _, l := range Levels {
		counts[l] = 0
	}
	for _, r := range records {
		counts[r.Level]++
		totalBonus += r.BonusAmount
	}
	return counts, totalBonus
}
