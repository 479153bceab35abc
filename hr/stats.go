package hr

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// EMPLOYEE STATISTICS
// =============================================================================

// EmployeeOverview is the headline numbers of the employee page.
type EmployeeOverview struct {
	Total          int             `json:"total"`
	Active         int             `json:"active"`
	Resigned       int             `json:"resigned"`
	OnLeave        int             `json:"onLeave"`
	AvgWorkingDays decimal.Decimal `json:"avgWorkingDays"`
	TopScorer      *Employee       `json:"-"`
}

// DepartmentHeadcount aggregates one department.
type DepartmentHeadcount struct {
	Department Department      `json:"department"`
	Employees  int             `json:"employees"`
	Active     int             `json:"active"`
	TotalScore int64           `json:"totalScore"`
	AvgScore   decimal.Decimal `json:"avgScore"`
}

// =============================================================================
// SCORE STATISTICS
// =============================================================================

// BehaviorStat aggregates events of one behavior.
type BehaviorStat struct {
	Behavior   Behavior     `json:"behavior"`
	Label      string       `json:"label"`
	Kind       BehaviorKind `json:"kind"`
	Count      int          `json:"count"`
	TotalScore int64        `json:"totalScore"`
}

// MonthlyScore is one month of the addition/deduction trend.
type MonthlyScore struct {
	Month      string `json:"month"` // YYYY-MM
	Additions  int64  `json:"additions"`
	Deductions int64  `json:"deductions"` // negative
	Records    int    `json:"records"`
}

// DepartmentScore compares departments by score events.
type DepartmentScore struct {
	Department Department      `json:"department"`
	Records    int             `json:"records"`
	TotalScore int64           `json:"totalScore"`
	AvgScore   decimal.Decimal `json:"avgScore"`
}

// ScoreTotals is the overall positive/negative split.
type ScoreTotals struct {
	Records       int   `json:"records"`
	PositiveTotal int64 `json:"positiveTotal"`
	NegativeTotal int64 `json:"negativeTotal"`
	Net           int64 `json:"net"`
}

// ScoreRanking is one row of the employee ranking by total score.
type ScoreRanking struct {
	EmployeeID string     `json:"employeeId"`
	Name       string     `json:"name"`
	Department Department `json:"department"`
	TotalScore int64      `json:"totalScore"`
}

// ScoreReport is the score statistics page.
type ScoreReport struct {
	Behaviors   []BehaviorStat    `json:"behaviorStats"`
	Trend       []MonthlyScore    `json:"monthlyTrend"`
	Departments []DepartmentScore `json:"departmentComparison"`
	Totals      ScoreTotals       `json:"overall"`
	Ranking     []ScoreRanking    `json:"ranking"`
}

// =============================================================================
// RECRUITMENT STATISTICS
// =============================================================================

// MonthlyRecruitment counts candidates interviewed in a month by status.
type MonthlyRecruitment struct {
	Month    string                    `json:"month"`
	Total    int                       `json:"total"`
	ByStatus map[RecruitmentStatus]int `json:"byStatus"`
}

// ChannelStat aggregates candidates from one sourcing channel.
type ChannelStat struct {
	Channel  string          `json:"channel"`
	Total    int             `json:"total"`
	Hired    int             `json:"hired"`
	HireRate decimal.Decimal `json:"hireRate"`
}

// RecruitmentReport is the recruitment statistics page.
type RecruitmentReport struct {
	Total         int                       `json:"total"`
	ThisMonth     int                       `json:"thisMonth"`
	Trials        int                       `json:"trials"`
	TrialPassRate decimal.Decimal           `json:"trialPassRate"` // percent
	Trend         []MonthlyRecruitment      `json:"monthlyTrend"`
	ByStatus      map[RecruitmentStatus]int `json:"statusDistribution"`
	Channels      []ChannelStat             `json:"channelAnalysis"`
}

// Percent returns part/whole as a percentage rounded to one place.
func Percent(part, whole int) decimal.Decimal {
	if whole == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(part)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(whole))).
		Round(1)
}

// LastMonths returns the YYYY-MM keys of the n months ending with asOf's
// month, oldest first.
func LastMonths(asOf time.Time, n int) []string {
	first := NewDate(asOf.Year(), asOf.Month(), 1)
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = first.AddDate(0, i-n+1, 0).Format("2006-01")
	}
	return out
}
