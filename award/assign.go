package award

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// SortCandidates orders candidates by FinalScore descending, breaking ties by
// EmployeeID ascending. The input slice is not modified.
func SortCandidates(candidates []Candidate) []Candidate {
	sorted := make([]Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].FinalScore != sorted[j].FinalScore {
			return sorted[i].FinalScore > sorted[j].FinalScore
		}
		return sorted[i].EmployeeID < sorted[j].EmployeeID
	})
	return sorted
}

// Assign ranks candidates and walks the tier table, producing one record per
// awarded candidate. The walk stops at the first rank past the table's total
// quota. Records carry no ID or timestamps; Stamp adds them.
//
// len(result) == min(len(candidates), table.TotalQuota()) and ranks are
// 1..len(result).
func Assign(year int, candidates []Candidate, table TierTable) []Record {
	sorted := SortCandidates(candidates)
	limit := table.TotalQuota()
	if len(sorted) < limit {
		limit = len(sorted)
	}

	records := make([]Record, 0, limit)
	for i := 0; i < limit; i++ {
		rank := i + 1
		level, ok := table.LevelFor(rank)
		if !ok {
			break
		}
		records = append(records, Record{
			Year:        year,
			EmployeeID:  sorted[i].EmployeeID,
			FinalScore:  sorted[i].FinalScore,
			Rank:        rank,
			Level:       level,
			BonusAmount: table.Bonus(level),
		})
	}
	return records
}

// Stamp gives every record a fresh ID and the creation time.
func Stamp(records []Record, now time.Time) {
	for i := range records {
		records[i].ID = uuid.NewString()
		records[i].CreatedAt = now
		records[i].UpdatedAt = now
	}
}
