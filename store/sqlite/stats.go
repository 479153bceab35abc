package sqlite

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/warp/hr-engine/award"
)

// =============================================================================
// AWARD STATISTICS - award.StatsSource
// =============================================================================

// yearScope returns a WHERE fragment limiting to year, or nothing for year 0.
func yearScope(year int) *where {
	w := &where{}
	if year != 0 {
		w.add(`a.year = ?`, year)
	}
	return w
}

// levelPriority orders levels in SQL the same way award.Levels does.
const levelPriority = `CASE a.award_level
	WHEN 'special' THEN 0 WHEN 'first' THEN 1 WHEN 'second' THEN 2 WHEN 'excellent' THEN 3 ELSE 9 END`

func (s *Store) LevelStats(ctx context.Context, year int) ([]award.LevelStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w := yearScope(year)
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.award_level, COUNT(*), SUM(a.bonus_amount), SUM(a.final_score),
			MIN(a.final_score), MAX(a.final_score)
		FROM annual_awards a`+w.String()+`
		GROUP BY a.award_level ORDER BY MIN(`+levelPriority+`)`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []award.LevelStat
	for rows.Next() {
		var ls award.LevelStat
		var level string
		if err := rows.Scan(&level, &ls.Count, &ls.TotalBonus, &ls.ScoreSum, &ls.MinScore, &ls.MaxScore); err != nil {
			return nil, err
		}
		ls.Level = award.Level(level)
		ls.AvgScore = award.Average(ls.ScoreSum, ls.Count)
		out = append(out, ls)
	}
	return out, rows.Err()
}

func (s *Store) DepartmentStats(ctx context.Context, year int) ([]award.DepartmentStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w := yearScope(year)
	rows, err := s.db.QueryContext(ctx, `
		SELECT COALESCE(e.department, ''), a.award_level, COUNT(*), SUM(a.bonus_amount), SUM(a.final_score)
		FROM annual_awards a LEFT JOIN employees e ON e.id = a.employee_id`+w.String()+`
		GROUP BY e.department, a.award_level`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type acc struct {
		stat     award.DepartmentStat
		scoreSum int64
	}
	byDept := make(map[string]*acc)
	for rows.Next() {
		var dept, level string
		var count int
		var bonus, scoreSum int64
		if err := rows.Scan(&dept, &level, &count, &bonus, &scoreSum); err != nil {
			return nil, err
		}
		a, ok := byDept[dept]
		if !ok {
			a = &acc{stat: award.DepartmentStat{Department: dept, LevelCounts: make(map[award.Level]int)}}
			byDept[dept] = a
		}
		a.stat.Count += count
		a.stat.TotalBonus += bonus
		a.stat.LevelCounts[award.Level(level)] += count
		a.scoreSum += scoreSum
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]award.DepartmentStat, 0, len(byDept))
	for _, a := range byDept {
		a.stat.AvgScore = award.Average(a.scoreSum, a.stat.Count)
		out = append(out, a.stat)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalBonus != out[j].TotalBonus {
			return out[i].TotalBonus > out[j].TotalBonus
		}
		return out[i].Department < out[j].Department
	})
	return out, nil
}

func (s *Store) YearlyTrend(ctx context.Context) ([]award.YearStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT a.year, a.award_level, COUNT(*), SUM(a.bonus_amount), SUM(a.final_score)
		FROM annual_awards a GROUP BY a.year, a.award_level ORDER BY a.year`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []award.YearStat
	var scoreSums []int64
	for rows.Next() {
		var year, count int
		var level string
		var bonus, scoreSum int64
		if err := rows.Scan(&year, &level, &count, &bonus, &scoreSum); err != nil {
			return nil, err
		}
		if len(out) == 0 || out[len(out)-1].Year != year {
			out = append(out, award.YearStat{Year: year, LevelCounts: make(map[award.Level]int)})
			scoreSums = append(scoreSums, 0)
		}
		ys := &out[len(out)-1]
		ys.Count += count
		ys.TotalBonus += bonus
		ys.LevelCounts[award.Level(level)] += count
		scoreSums[len(scoreSums)-1] += scoreSum
	}
	for i := range out {
		out[i].AvgScore = award.Average(scoreSums[i], out[i].Count)
	}
	return out, rows.Err()
}

func (s *Store) EmployeeRanking(ctx context.Context, year, limit int) ([]award.EmployeeRanking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w := yearScope(year)
	args := append(append([]any{}, w.args...), limit)
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.employee_id, COALESCE(e.name, ''), COALESCE(e.department, ''),
			COUNT(*), SUM(a.bonus_amount), MIN(`+levelPriority+`), GROUP_CONCAT(a.year)
		FROM annual_awards a LEFT JOIN employees e ON e.id = a.employee_id`+w.String()+`
		GROUP BY a.employee_id
		ORDER BY SUM(a.bonus_amount) DESC, COUNT(*) DESC, a.employee_id
		LIMIT ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []award.EmployeeRanking
	for rows.Next() {
		var r award.EmployeeRanking
		var best int
		var years string
		if err := rows.Scan(&r.EmployeeID, &r.Name, &r.Department, &r.Awards, &r.TotalBonus, &best, &years); err != nil {
			return nil, err
		}
		if best >= 0 && best < len(award.Levels) {
			r.BestLevel = award.Levels[best]
		}
		r.Years = parseYears(years)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) AwardYears(ctx context.Context) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT year FROM annual_awards ORDER BY year DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []int{}
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, err
		}
		out = append(out, y)
	}
	return out, rows.Err()
}

// parseYears turns a GROUP_CONCAT list into sorted, distinct years.
func parseYears(list string) []int {
	seen := make(map[int]bool)
	var out []int
	for _, part := range strings.Split(list, ",") {
		y, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || seen[y] {
			continue
		}
		seen[y] = true
		out = append(out, y)
	}
	sort.Ints(out)
	return out
}

// =============================================================================
// AVERAGES
// =============================================================================

func averageInt(sum int64, count int) decimal.Decimal {
	return award.Average(sum, count)
}

func averageFloat(sum float64, count int) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(sum).Div(decimal.NewFromInt(int64(count))).Round(1)
}
