// Package memory provides an in-memory award store (for testing/dev).
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/warp/hr-engine/award"
	"github.com/warp/hr-engine/hr"
)

// =============================================================================
// MEMORY STORE - implements award.Store and award.Population
// =============================================================================

// Memory keeps employees, score events and awards in maps. The exported
// fields inject failures and let tests observe replace timing.
type Memory struct {
	mu        sync.RWMutex
	employees map[string]hr.Employee
	order     []string
	scores    []hr.ScoreRecord
	awards    map[int]map[string]award.Record

	// FailCount makes CountAwards fail.
	FailCount error
	// FailReplace makes ReplaceYear fail. With NonAtomic set the year is
	// cleared first and the error wraps award.ErrPartialReplace.
	FailReplace error
	NonAtomic   bool
	// FailEmployees makes AllEmployees fail.
	FailEmployees error
	// BeforeReplace runs at the start of every ReplaceYear, outside the lock.
	BeforeReplace func(year int)
}

var (
	_ award.Store      = (*Memory)(nil)
	_ award.Population = (*Memory)(nil)
)

func New() *Memory {
	return &Memory{
		employees: make(map[string]hr.Employee),
		awards:    make(map[int]map[string]award.Record),
	}
}

// AddEmployee stores e, keeping insertion order for AllEmployees. Adding an
// existing ID appends a duplicate entry so tests can feed bad populations.
func (m *Memory) AddEmployee(e hr.Employee) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[e.ID] = e
	m.order = append(m.order, e.ID)
}

// AddScore appends a score event and recomputes the employee's total.
func (m *Memory) AddScore(r hr.ScoreRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores = append(m.scores, r)
	if e, ok := m.employees[r.EmployeeID]; ok {
		e.TotalScore = hr.TotalFor(m.scores, r.EmployeeID)
		m.employees[r.EmployeeID] = e
	}
}

// AllEmployees returns employees in insertion order.
func (m *Memory) AllEmployees(_ context.Context) ([]hr.Employee, error) {
	if m.FailEmployees != nil {
		return nil, m.FailEmployees
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]hr.Employee, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.employees[id])
	}
	return out, nil
}

func (m *Memory) ScoreSummaries(_ context.Context, from, to time.Time) (map[string]hr.ScoreSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return hr.SumScores(m.scores, from, to), nil
}

func (m *Memory) CountAwards(_ context.Context, year int) (int, error) {
	if m.FailCount != nil {
		return 0, m.FailCount
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.awards[year]), nil
}

func (m *Memory) ReplaceYear(_ context.Context, year int, records []award.Record, force bool) (int, error) {
	if m.BeforeReplace != nil {
		m.BeforeReplace(year)
	}

	staged := make(map[string]award.Record, len(records))
	for _, r := range records {
		if _, dup := staged[r.EmployeeID]; dup {
			return 0, fmt.Errorf("%w: %d/%s", award.ErrDuplicateAward, year, r.EmployeeID)
		}
		staged[r.EmployeeID] = r
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	replaced := len(m.awards[year])
	if replaced > 0 && !force {
		return 0, &award.AlreadyGeneratedError{Year: year, Existing: replaced}
	}
	if m.FailReplace != nil {
		if m.NonAtomic {
			delete(m.awards, year)
			return replaced, fmt.Errorf("%w: %w", award.ErrPartialReplace, m.FailReplace)
		}
		return 0, m.FailReplace
	}
	m.awards[year] = staged
	return replaced, nil
}

// SeedAwards inserts records directly, bypassing generation.
func (m *Memory) SeedAwards(records ...award.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range records {
		if m.awards[r.Year] == nil {
			m.awards[r.Year] = make(map[string]award.Record)
		}
		m.awards[r.Year][r.EmployeeID] = r
	}
}

// Awards returns the year's records ordered by rank.
func (m *Memory) Awards(year int) []award.Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]award.Record, 0, len(m.awards[year]))
	for _, r := range m.awards[year] {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out
}
