package award

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// RankingLimit is the number of employees in the cross-year ranking.
const RankingLimit = 20

// LevelStat aggregates one level.
type LevelStat struct {
	Level      Level           `json:"level"`
	Label      string          `json:"label"`
	Count      int             `json:"count"`
	TotalBonus int64           `json:"totalBonus"`
	AvgScore   decimal.Decimal `json:"avgScore"`
	MinScore   int64           `json:"minScore"`
	MaxScore   int64           `json:"maxScore"`

	// ScoreSum is the unrounded total behind AvgScore.
	ScoreSum int64 `json:"-"`
}

// DepartmentStat aggregates awards by the winners' current department.
type DepartmentStat struct {
	Department  string          `json:"department"`
	Count       int             `json:"count"`
	TotalBonus  int64           `json:"totalBonus"`
	AvgScore    decimal.Decimal `json:"avgScore"`
	LevelCounts map[Level]int   `json:"levelCounts"`
}

// YearStat is one point of the yearly trend.
type YearStat struct {
	Year        int             `json:"year"`
	Count       int             `json:"count"`
	TotalBonus  int64           `json:"totalBonus"`
	AvgScore    decimal.Decimal `json:"avgScore"`
	LevelCounts map[Level]int   `json:"levelCounts"`
}

// EmployeeRanking totals one employee's awards across years.
type EmployeeRanking struct {
	EmployeeID string `json:"employeeId"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Awards     int    `json:"awards"`
	TotalBonus int64  `json:"totalBonus"`
	BestLevel  Level  `json:"bestLevel"`
	Years      []int  `json:"years"`
}

// Overall summarizes the selected scope.
type Overall struct {
	TotalAwards int             `json:"totalAwards"`
	TotalBonus  int64           `json:"totalBonus"`
	AvgBonus    decimal.Decimal `json:"avgBonus"`
	AvgScore    decimal.Decimal `json:"avgScore"`
}

// Report is the award statistics page. Year 0 covers every year.
type Report struct {
	Year           int               `json:"year,omitempty"`
	Levels         []LevelStat       `json:"levelStats"`
	Departments    []DepartmentStat  `json:"departmentStats"`
	Trend          []YearStat        `json:"yearlyTrend"`
	Ranking        []EmployeeRanking `json:"employeeRanking"`
	Overall        Overall           `json:"overall"`
	AvailableYears []int             `json:"availableYears"`
}

// StatsSource runs the aggregate queries behind a Report. year 0 means all years.
type StatsSource interface {
	LevelStats(ctx context.Context, year int) ([]LevelStat, error)
	DepartmentStats(ctx context.Context, year int) ([]DepartmentStat, error)
	YearlyTrend(ctx context.Context) ([]YearStat, error)
	EmployeeRanking(ctx context.Context, year, limit int) ([]EmployeeRanking, error)
	AwardYears(ctx context.Context) ([]int, error)
}

// Average divides sum by count, rounded to two places. Zero when count is 0.
func Average(sum int64, count int) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(sum).Div(decimal.NewFromInt(int64(count))).Round(2)
}

// BuildReport runs the report queries concurrently.
func BuildReport(ctx context.Context, src StatsSource, year int) (*Report, error) {
	report := &Report{Year: year}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		levels, err := src.LevelStats(ctx, year)
		report.Levels = levels
		return err
	})
	g.Go(func() error {
		depts, err := src.DepartmentStats(ctx, year)
		report.Departments = depts
		return err
	})
	g.Go(func() error {
		trend, err := src.YearlyTrend(ctx)
		report.Trend = trend
		return err
	})
	g.Go(func() error {
		ranking, err := src.EmployeeRanking(ctx, year, RankingLimit)
		report.Ranking = ranking
		return err
	})
	g.Go(func() error {
		years, err := src.AwardYears(ctx)
		report.AvailableYears = years
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report.Levels = completeLevels(report.Levels)
	report.Overall = overallFrom(report.Levels)
	sort.Sort(sort.Reverse(sort.IntSlice(report.AvailableYears)))
	return report, nil
}

// completeLevels returns one entry per level in priority order, filling in
// levels that have no awards.
func completeLevels(stats []LevelStat) []LevelStat {
	byLevel := make(map[Level]LevelStat, len(stats))
	for _, s := range stats {
		byLevel[s.Level] = s
	}
	out := make([]LevelStat, 0, len(Levels))
	for _, l := range Levels {
		s, ok := byLevel[l]
		if !ok {
			s = LevelStat{Level: l, AvgScore: decimal.Zero}
		}
		s.Label = l.Label()
		out = append(out, s)
	}
	return out
}

func overallFrom(levels []LevelStat) Overall {
	var o Overall
	var scoreSum int64
	for _, l := range levels {
		o.TotalAwards += l.Count
		o.TotalBonus += l.TotalBonus
		scoreSum += l.ScoreSum
	}
	o.AvgBonus = Average(o.TotalBonus, o.TotalAwards)
	o.AvgScore = Average(scoreSum, o.TotalAwards)
	return o
}
