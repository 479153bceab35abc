package award

import (
	"fmt"

	"github.com/warp/hr-engine/hr"
)

// SelectCandidates filters the population for year.
//
// An employee is selected when active and hired on or before December 31 of
// year. yearly holds each employee's score events summed over the year; the
// ranking score comes from source. Candidates with a negative ranking score
// are dropped. eligible is the number of selected employees before the score
// filter.
//
// Returns *NoEligibleError when no candidate remains and
// ErrDuplicateCandidate when an employee ID appears twice.
func SelectCandidates(year int, employees []hr.Employee, yearly map[string]hr.ScoreSummary, source ScoreSource) (candidates []Candidate, eligible int, err error) {
	_, yearEnd := hr.YearBounds(year)
	seen := make(map[string]bool, len(employees))

	for _, e := range employees {
		if seen[e.ID] {
			return nil, 0, fmt.Errorf("%w: %s", ErrDuplicateCandidate, e.ID)
		}
		seen[e.ID] = true

		if !e.IsActive() || hr.Date(e.HireDate).After(yearEnd) {
			continue
		}
		eligible++

		summary := yearly[e.ID]
		score := e.TotalScore
		if source == ScoreSourceYearly {
			score = summary.Sum
		}
		if score < 0 {
			continue
		}
		candidates = append(candidates, Candidate{
			EmployeeID:  e.ID,
			FinalScore:  score,
			YearlyScore: summary.Sum,
			TotalScore:  e.TotalScore,
			RecordCount: summary.Count,
		})
	}

	if len(candidates) == 0 {
		return nil, eligible, &NoEligibleError{Year: year, Employees: len(employees), Selected: eligible}
	}
	return candidates, eligible, nil
}
