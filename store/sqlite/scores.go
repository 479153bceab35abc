package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/warp/hr-engine/hr"
)

// =============================================================================
// SCORE RECORD OPERATIONS
// =============================================================================

const scoreColumns = `id, employee_id, record_date, behavior, score_change, reason,
	recorded_by, evidence, created_at, updated_at`

func scanScore(row scanner) (hr.ScoreRecord, error) {
	var r hr.ScoreRecord
	var recordDate, behavior, createdAt, updatedAt string
	var evidence sql.NullString
	err := row.Scan(&r.ID, &r.EmployeeID, &recordDate, &behavior, &r.ScoreChange, &r.Reason,
		&r.RecordedBy, &evidence, &createdAt, &updatedAt)
	if err != nil {
		return hr.ScoreRecord{}, err
	}
	r.RecordDate = parseDate(recordDate)
	r.Behavior = hr.Behavior(behavior)
	r.Evidence = evidence.String
	r.CreatedAt = parseTime(createdAt)
	r.UpdatedAt = parseTime(updatedAt)
	return r, nil
}

// recomputeTotal sets total_score to the sum of the employee's events.
func recomputeTotal(ctx context.Context, q querier, employeeID string, now time.Time) error {
	res, err := q.ExecContext(ctx, `
		UPDATE employees SET
			total_score = (SELECT COALESCE(SUM(score_change), 0) FROM score_records WHERE employee_id = ?),
			updated_at = ?
		WHERE id = ?`, employeeID, formatTime(now), employeeID)
	if err != nil {
		return err
	}
	return expectOne(res, hr.ErrEmployeeNotFound)
}

// CreateScore inserts a score event and updates the employee's total in the
// same transaction.
func (s *Store) CreateScore(ctx context.Context, r hr.ScoreRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.WithTx(ctx, func(q querier) error {
		if _, err := getEmployee(ctx, q, r.EmployeeID); err != nil {
			return err
		}
		_, err := q.ExecContext(ctx, `INSERT INTO score_records (`+scoreColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.EmployeeID, formatDate(r.RecordDate), string(r.Behavior), r.ScoreChange, r.Reason,
			r.RecordedBy, nullString(r.Evidence), formatTime(r.CreatedAt), formatTime(r.UpdatedAt))
		if err != nil {
			return err
		}
		return recomputeTotal(ctx, q, r.EmployeeID, r.UpdatedAt)
	})
}

// GetScore returns hr.ErrScoreNotFound when id doesn't exist.
func (s *Store) GetScore(ctx context.Context, id string) (hr.ScoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getScore(ctx, s.db, id)
}

func getScore(ctx context.Context, q querier, id string) (hr.ScoreRecord, error) {
	r, err := scanScore(q.QueryRowContext(ctx, `SELECT `+scoreColumns+` FROM score_records WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return hr.ScoreRecord{}, hr.ErrScoreNotFound
	}
	return r, err
}

// UpdateScore rewrites an event. When the event moves to another employee
// both totals are recomputed.
func (s *Store) UpdateScore(ctx context.Context, r hr.ScoreRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.WithTx(ctx, func(q querier) error {
		prev, err := getScore(ctx, q, r.ID)
		if err != nil {
			return err
		}
		if _, err := getEmployee(ctx, q, r.EmployeeID); err != nil {
			return err
		}
		_, err = q.ExecContext(ctx, `
			UPDATE score_records SET employee_id = ?, record_date = ?, behavior = ?, score_change = ?,
				reason = ?, recorded_by = ?, evidence = ?, updated_at = ?
			WHERE id = ?`,
			r.EmployeeID, formatDate(r.RecordDate), string(r.Behavior), r.ScoreChange,
			r.Reason, r.RecordedBy, nullString(r.Evidence), formatTime(r.UpdatedAt), r.ID)
		if err != nil {
			return err
		}
		if err := recomputeTotal(ctx, q, r.EmployeeID, r.UpdatedAt); err != nil {
			return err
		}
		if prev.EmployeeID != r.EmployeeID {
			return recomputeTotal(ctx, q, prev.EmployeeID, r.UpdatedAt)
		}
		return nil
	})
}

// DeleteScore removes an event and recomputes the employee's total.
func (s *Store) DeleteScore(ctx context.Context, id string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.WithTx(ctx, func(q querier) error {
		prev, err := getScore(ctx, q, id)
		if err != nil {
			return err
		}
		if _, err := q.ExecContext(ctx, `DELETE FROM score_records WHERE id = ?`, id); err != nil {
			return err
		}
		return recomputeTotal(ctx, q, prev.EmployeeID, now)
	})
}

// ListScores returns one page of events matching filter and the match count.
func (s *Store) ListScores(ctx context.Context, filter hr.ScoreFilter) ([]hr.ScoreRecord, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w := &where{}
	if filter.EmployeeID != "" {
		w.add(`employee_id = ?`, filter.EmployeeID)
	}
	if filter.Behavior != "" {
		w.add(`behavior = ?`, string(filter.Behavior))
	}
	if !filter.From.IsZero() {
		w.add(`record_date >= ?`, formatDate(filter.From))
	}
	if !filter.To.IsZero() {
		w.add(`record_date <= ?`, formatDate(filter.To))
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM score_records`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	column := "record_date"
	if filter.SortBy == hr.SortByScoreChange {
		column = "score_change"
	}
	dir := "DESC"
	if filter.Ascending {
		dir = "ASC"
	}
	page := filter.Page.Normalize()
	args := append(append([]any{}, w.args...), page.Size, page.Offset())
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+scoreColumns+` FROM score_records`+w.String()+
			` ORDER BY `+column+` `+dir+`, created_at DESC, id LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []hr.ScoreRecord
	for rows.Next() {
		r, err := scanScore(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}

// ScoreSummaries sums events per employee dated in [from, to].
func (s *Store) ScoreSummaries(ctx context.Context, from, to time.Time) (map[string]hr.ScoreSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT employee_id, SUM(score_change), COUNT(*)
		FROM score_records
		WHERE record_date >= ? AND record_date <= ?
		GROUP BY employee_id`, formatDate(from), formatDate(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]hr.ScoreSummary)
	for rows.Next() {
		var id string
		var sum hr.ScoreSummary
		if err := rows.Scan(&id, &sum.Sum, &sum.Count); err != nil {
			return nil, err
		}
		out[id] = sum
	}
	return out, rows.Err()
}

// =============================================================================
// SCORE STATISTICS
// =============================================================================

// ScoreReport builds the score statistics page. Trend covers the 12 months
// ending with asOf.
func (s *Store) ScoreReport(ctx context.Context, asOf time.Time) (*hr.ScoreReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report := &hr.ScoreReport{}
	var err error
	if report.Behaviors, err = s.behaviorStats(ctx); err != nil {
		return nil, err
	}
	if report.Trend, err = s.monthlyScores(ctx, asOf); err != nil {
		return nil, err
	}
	if report.Departments, err = s.departmentScores(ctx); err != nil {
		return nil, err
	}
	if report.Totals, err = s.scoreTotals(ctx); err != nil {
		return nil, err
	}
	if report.Ranking, err = s.scoreRanking(ctx, 20); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *Store) behaviorStats(ctx context.Context) ([]hr.BehaviorStat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT behavior, COUNT(*), SUM(score_change)
		FROM score_records GROUP BY behavior ORDER BY COUNT(*) DESC, behavior`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []hr.BehaviorStat
	for rows.Next() {
		var b hr.BehaviorStat
		var code string
		if err := rows.Scan(&code, &b.Count, &b.TotalScore); err != nil {
			return nil, err
		}
		b.Behavior = hr.Behavior(code)
		if def, ok := hr.LookupBehavior(b.Behavior); ok {
			b.Label = def.Label
			b.Kind = def.Kind
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) monthlyScores(ctx context.Context, asOf time.Time) ([]hr.MonthlyScore, error) {
	months := hr.LastMonths(asOf, 12)
	rows, err := s.db.QueryContext(ctx, `
		SELECT substr(record_date, 1, 7) AS month,
			COALESCE(SUM(CASE WHEN score_change > 0 THEN score_change END), 0),
			COALESCE(SUM(CASE WHEN score_change < 0 THEN score_change END), 0),
			COUNT(*)
		FROM score_records
		WHERE substr(record_date, 1, 7) >= ? AND substr(record_date, 1, 7) <= ?
		GROUP BY month`, months[0], months[len(months)-1])
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byMonth := make(map[string]hr.MonthlyScore)
	for rows.Next() {
		var m hr.MonthlyScore
		if err := rows.Scan(&m.Month, &m.Additions, &m.Deductions, &m.Records); err != nil {
			return nil, err
		}
		byMonth[m.Month] = m
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]hr.MonthlyScore, len(months))
	for i, key := range months {
		m := byMonth[key]
		m.Month = key
		out[i] = m
	}
	return out, nil
}

func (s *Store) departmentScores(ctx context.Context) ([]hr.DepartmentScore, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.department, COUNT(r.id), COALESCE(SUM(r.score_change), 0)
		FROM score_records r JOIN employees e ON e.id = r.employee_id
		GROUP BY e.department ORDER BY SUM(r.score_change) DESC, e.department`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []hr.DepartmentScore
	for rows.Next() {
		var d hr.DepartmentScore
		var dept string
		if err := rows.Scan(&dept, &d.Records, &d.TotalScore); err != nil {
			return nil, err
		}
		d.Department = hr.Department(dept)
		d.AvgScore = averageInt(d.TotalScore, d.Records)
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) scoreTotals(ctx context.Context) (hr.ScoreTotals, error) {
	var t hr.ScoreTotals
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN score_change > 0 THEN score_change END), 0),
			COALESCE(SUM(CASE WHEN score_change < 0 THEN score_change END), 0)
		FROM score_records`).Scan(&t.Records, &t.PositiveTotal, &t.NegativeTotal)
	t.Net = t.PositiveTotal + t.NegativeTotal
	return t, err
}

func (s *Store) scoreRanking(ctx context.Context, limit int) ([]hr.ScoreRanking, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, department, total_score FROM employees
		WHERE work_status = ?
		ORDER BY total_score DESC, id LIMIT ?`, string(hr.StatusActive), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []hr.ScoreRanking
	for rows.Next() {
		var r hr.ScoreRanking
		var dept string
		if err := rows.Scan(&r.EmployeeID, &r.Name, &dept, &r.TotalScore); err != nil {
			return nil, err
		}
		r.Department = hr.Department(strings.TrimSpace(dept))
		out = append(out, r)
	}
	return out, rows.Err()
}
