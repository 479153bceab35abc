package award

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/hr-engine/hr"
)

func candidatesWithScores(scores ...int64) []Candidate {
	out := make([]Candidate, len(scores))
	for i, s := range scores {
		out[i] = Candidate{EmployeeID: fmt.Sprintf("E%02d", i+1), FinalScore: s}
	}
	return out
}

// =============================================================================
// TIER TABLE
// =============================================================================

func TestDefaultTierTable_Boundaries(t *testing.T) {
	table := DefaultTierTable()
	require.NoError(t, table.Validate())
	assert.Equal(t, 11, table.TotalQuota())

	want := map[int]Level{
		1: LevelSpecial,
		2: LevelFirst, 3: LevelFirst,
		4: LevelSecond, 5: LevelSecond, 6: LevelSecond,
		7: LevelExcellent, 8: LevelExcellent, 9: LevelExcellent, 10: LevelExcellent, 11: LevelExcellent,
	}
	for rank, level := range want {
		got, ok := table.LevelFor(rank)
		assert.True(t, ok, "rank %d", rank)
		assert.Equal(t, level, got, "rank %d", rank)
	}

	_, ok := table.LevelFor(12)
	assert.False(t, ok)
	_, ok = table.LevelFor(0)
	assert.False(t, ok)
}

func TestTierTable_Validate(t *testing.T) {
	tests := []struct {
		name  string
		table TierTable
	}{
		{"empty", TierTable{}},
		{"unknown level", TierTable{{Level: "gold", Quota: 1}}},
		{"repeated level", TierTable{{Level: LevelFirst, Quota: 1}, {Level: LevelFirst, Quota: 1}}},
		{"out of order", TierTable{{Level: LevelSecond, Quota: 1}, {Level: LevelFirst, Quota: 1}}},
		{"negative quota", TierTable{{Level: LevelSpecial, Quota: -1}}},
		{"negative bonus", TierTable{{Level: LevelSpecial, Quota: 1, Bonus: -5}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.table.Validate(), ErrInvalidTiers)
		})
	}
}

// =============================================================================
// ASSIGN
// =============================================================================

func TestAssign_TiedTopScoresBreakByEmployeeID(t *testing.T) {
	// GIVEN: Scores [90, 90, 70], supplied in reverse ID order
	candidates := []Candidate{
		{EmployeeID: "C", FinalScore: 70},
		{EmployeeID: "B", FinalScore: 90},
		{EmployeeID: "A", FinalScore: 90},
	}

	// WHEN: Assigning with the default table
	records := Assign(2024, candidates, DefaultTierTable())

	// THEN: A outranks B on the tie, and the third place is still first tier
	require.Len(t, records, 3)
	assert.Equal(t, "A", records[0].EmployeeID)
	assert.Equal(t, LevelSpecial, records[0].Level)
	assert.Equal(t, int64(5000), records[0].BonusAmount)

	assert.Equal(t, "B", records[1].EmployeeID)
	assert.Equal(t, LevelFirst, records[1].Level)
	assert.Equal(t, int64(3000), records[1].BonusAmount)

	assert.Equal(t, "C", records[2].EmployeeID)
	assert.Equal(t, LevelFirst, records[2].Level)
	assert.Equal(t, int64(3000), records[2].BonusAmount)
}

func TestAssign_FifteenCandidatesOnlyElevenAwarded(t *testing.T) {
	scores := make([]int64, 15)
	for i := range scores {
		scores[i] = int64(200 - i*10)
	}

	records := Assign(2024, candidatesWithScores(scores...), DefaultTierTable())

	require.Len(t, records, 11)
	for i, r := range records {
		assert.Equal(t, fmt.Sprintf("E%02d", i+1), r.EmployeeID)
	}
	counts, total := Summarize(records)
	assert.Equal(t, map[Level]int{LevelSpecial: 1, LevelFirst: 2, LevelSecond: 3, LevelExcellent: 5}, counts)
	assert.Equal(t, int64(5000+2*3000+3*2000+5*1000), total)
}

func TestAssign_Properties(t *testing.T) {
	table := DefaultTierTable()

	for n := 0; n <= 25; n++ {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			scores := make([]int64, n)
			for i := range scores {
				// Repeating values exercise ties
				scores[i] = int64((i * 7) % 5)
			}
			records := Assign(2024, candidatesWithScores(scores...), table)

			// Quota conformance
			want := n
			if want > table.TotalQuota() {
				want = table.TotalQuota()
			}
			require.Len(t, records, want)

			for i, r := range records {
				// Rank contiguity
				assert.Equal(t, i+1, r.Rank)
				// Bonus determinism
				assert.Equal(t, table.Bonus(r.Level), r.BonusAmount)
				// Monotonic tiers
				if i > 0 {
					assert.False(t, r.Level.Outranks(records[i-1].Level),
						"rank %d (%s) outranks rank %d (%s)", r.Rank, r.Level, records[i-1].Rank, records[i-1].Level)
					assert.LessOrEqual(t, r.FinalScore, records[i-1].FinalScore)
				}
			}

			if n >= table.TotalQuota() {
				counts, _ := Summarize(records)
				for _, tier := range table {
					assert.Equal(t, tier.Quota, counts[tier.Level])
				}
			}
		})
	}
}

func TestAssign_ScoreChangeWithoutRankChangeKeepsBonus(t *testing.T) {
	before := Assign(2024, candidatesWithScores(100, 80, 60), DefaultTierTable())
	after := Assign(2024, candidatesWithScores(1000, 81, 2), DefaultTierTable())

	for i := range before {
		assert.Equal(t, before[i].Rank, after[i].Rank)
		assert.Equal(t, before[i].BonusAmount, after[i].BonusAmount)
	}
}

func TestAssign_DoesNotModifyInput(t *testing.T) {
	candidates := candidatesWithScores(1, 2, 3)
	Assign(2024, candidates, DefaultTierTable())
	assert.Equal(t, "E01", candidates[0].EmployeeID)
}

func TestAssign_CustomTable(t *testing.T) {
	table := TierTable{
		{Level: LevelSpecial, Quota: 0, Bonus: 9999},
		{Level: LevelFirst, Quota: 1, Bonus: 100},
		{Level: LevelExcellent, Quota: 2, Bonus: 10},
	}
	require.NoError(t, table.Validate())

	records := Assign(2024, candidatesWithScores(5, 4, 3, 2), table)

	require.Len(t, records, 3)
	assert.Equal(t, LevelFirst, records[0].Level)
	assert.Equal(t, LevelExcellent, records[1].Level)
	assert.Equal(t, LevelExcellent, records[2].Level)
	assert.Equal(t, int64(10), records[2].BonusAmount)
}

// =============================================================================
// ELIGIBILITY
// =============================================================================

func employee(id string, status hr.WorkStatus, hired time.Time, total int64) hr.Employee {
	return hr.Employee{ID: id, WorkStatus: status, HireDate: hired, TotalScore: total}
}

func TestSelectCandidates_Filters(t *testing.T) {
	// GIVEN: A mixed population
	employees := []hr.Employee{
		employee("active", hr.StatusActive, hr.NewDate(2020, 1, 1), 50),
		employee("resigned", hr.StatusResigned, hr.NewDate(2020, 1, 1), 80),
		employee("hired-dec31", hr.StatusActive, hr.NewDate(2024, 12, 31), 10),
		employee("hired-next-year", hr.StatusActive, hr.NewDate(2025, 1, 1), 99),
		employee("negative", hr.StatusActive, hr.NewDate(2021, 1, 1), -3),
		employee("zero", hr.StatusActive, hr.NewDate(2021, 1, 1), 0),
	}
	yearly := map[string]hr.ScoreSummary{"active": {Sum: 12, Count: 4}}

	// WHEN: Selecting for 2024 by lifetime score
	candidates, eligible, err := SelectCandidates(2024, employees, yearly, ScoreSourceLifetime)

	// THEN: Only active employees hired in time with non-negative scores remain
	require.NoError(t, err)
	assert.Equal(t, 4, eligible)
	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.EmployeeID
	}
	assert.Equal(t, []string{"active", "hired-dec31", "zero"}, ids)
	assert.Equal(t, Candidate{EmployeeID: "active", FinalScore: 50, YearlyScore: 12, TotalScore: 50, RecordCount: 4}, candidates[0])
}

func TestSelectCandidates_YearlySource(t *testing.T) {
	employees := []hr.Employee{
		employee("A", hr.StatusActive, hr.NewDate(2020, 1, 1), 100),
		employee("B", hr.StatusActive, hr.NewDate(2020, 1, 1), -40),
	}
	yearly := map[string]hr.ScoreSummary{
		"A": {Sum: -5, Count: 2},
		"B": {Sum: 8, Count: 1},
	}

	candidates, _, err := SelectCandidates(2024, employees, yearly, ScoreSourceYearly)

	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "B", candidates[0].EmployeeID)
	assert.Equal(t, int64(8), candidates[0].FinalScore)
}

func TestSelectCandidates_NoEligible(t *testing.T) {
	t.Run("all negative", func(t *testing.T) {
		employees := []hr.Employee{
			employee("A", hr.StatusActive, hr.NewDate(2020, 1, 1), -1),
			employee("B", hr.StatusActive, hr.NewDate(2020, 1, 1), -2),
		}
		_, _, err := SelectCandidates(2024, employees, nil, ScoreSourceLifetime)

		var nerr *NoEligibleError
		require.ErrorAs(t, err, &nerr)
		assert.ErrorIs(t, err, ErrNoEligibleCandidates)
		assert.Equal(t, 2, nerr.Selected)
	})

	t.Run("nobody active", func(t *testing.T) {
		employees := []hr.Employee{employee("A", hr.StatusLeave, hr.NewDate(2020, 1, 1), 10)}
		_, _, err := SelectCandidates(2024, employees, nil, ScoreSourceLifetime)

		var nerr *NoEligibleError
		require.ErrorAs(t, err, &nerr)
		assert.Equal(t, 0, nerr.Selected)
		assert.Equal(t, 1, nerr.Employees)
	})
}

func TestSelectCandidates_DuplicateEmployee(t *testing.T) {
	employees := []hr.Employee{
		employee("A", hr.StatusActive, hr.NewDate(2020, 1, 1), 1),
		employee("A", hr.StatusActive, hr.NewDate(2020, 1, 1), 1),
	}
	_, _, err := SelectCandidates(2024, employees, nil, ScoreSourceLifetime)
	assert.ErrorIs(t, err, ErrDuplicateCandidate)
	assert.True(t, IsInvariantViolation(err))
}

// =============================================================================
// LOCKS
// =============================================================================

func TestYearLocks_ReleasesEntries(t *testing.T) {
	locks := NewYearLocks()
	unlockA := locks.Lock(2023)
	unlockB := locks.Lock(2024)
	assert.Equal(t, 2, locks.held())

	unlockA()
	unlockB()
	assert.Equal(t, 0, locks.held())
}
