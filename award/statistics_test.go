package award

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticStats struct {
	levels []LevelStat
}

func (s staticStats) LevelStats(context.Context, int) ([]LevelStat, error) { return s.levels, nil }

func (s staticStats) DepartmentStats(context.Context, int) ([]DepartmentStat, error) {
	return nil, nil
}

func (s staticStats) YearlyTrend(context.Context) ([]YearStat, error) { return nil, nil }

func (s staticStats) EmployeeRanking(context.Context, int, int) ([]EmployeeRanking, error) {
	return nil, nil
}

func (s staticStats) AwardYears(context.Context) ([]int, error) { return []int{2023, 2024}, nil }

func TestBuildReport_OverallAverageUsesRawScores(t *testing.T) {
	// GIVEN: One special award scoring 0 and six first awards scoring 1 in total
	src := staticStats{levels: []LevelStat{
		{Level: LevelSpecial, Count: 1, TotalBonus: 5000, ScoreSum: 0, AvgScore: Average(0, 1)},
		{Level: LevelFirst, Count: 6, TotalBonus: 18000, ScoreSum: 1, AvgScore: Average(1, 6)},
	}}

	// WHEN: Building the report
	report, err := BuildReport(context.Background(), src, 2024)

	// THEN: The overall average is 1/7, not rebuilt from the rounded 0.17
	require.NoError(t, err)
	assert.Equal(t, "0.17", report.Levels[1].AvgScore.StringFixed(2))
	assert.Equal(t, 7, report.Overall.TotalAwards)
	assert.Equal(t, int64(23000), report.Overall.TotalBonus)
	assert.True(t, decimal.RequireFromString("0.14").Equal(report.Overall.AvgScore), report.Overall.AvgScore.String())
	assert.Equal(t, []int{2024, 2023}, report.AvailableYears)
	assert.Len(t, report.Levels, len(Levels))
}
