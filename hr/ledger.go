/*
ledger.go - Score events as the source of truth for totals

PURPOSE:
  An employee's TotalScore is a derived value. It is always the sum of the
  employee's score events and is recomputed on every event write, in the
  same transaction as the write, so the two can never drift apart.

INVARIANTS:
  1. TotalScore == sum(ScoreChange) over the employee's events
  2. ScoreChange comes from the behavior catalog, never from the caller
  3. Yearly aggregates only count events dated inside the calendar year

SEE ALSO:
  - score.go: Catalog and ScoreRecord
  - store/sqlite/scores.go: Recompute inside the write transaction
  - award/eligibility.go: Consumes ScoreSummary
*/
package hr

import "time"

// ScoreSummary aggregates score events of one employee over a period.
type ScoreSummary struct {
	Sum   int64
	Count int
}

// Add folds one event into the summary.
func (s ScoreSummary) Add(change int64) ScoreSummary {
	return ScoreSummary{Sum: s.Sum + change, Count: s.Count + 1}
}

// SumScores totals events per employee, keeping only events dated in
// [from, to]. A zero from or to leaves that side open.
func SumScores(records []ScoreRecord, from, to time.Time) map[string]ScoreSummary {
	out := make(map[string]ScoreSummary)
	for _, r := range records {
		d := Date(r.RecordDate)
		if !from.IsZero() && d.Before(Date(from)) {
			continue
		}
		if !to.IsZero() && d.After(Date(to)) {
			continue
		}
		out[r.EmployeeID] = out[r.EmployeeID].Add(r.ScoreChange)
	}
	return out
}

// TotalFor returns the lifetime total of one employee's events.
func TotalFor(records []ScoreRecord, employeeID string) int64 {
	var total int64
	for _, r := range records {
		if r.EmployeeID == employeeID {
			total += r.ScoreChange
		}
	}
	return total
}
