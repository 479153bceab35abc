package hr

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func validEmployee() Employee {
	return Employee{
		ID:         "EMP1",
		Name:       "张三",
		Gender:     GenderMale,
		Phone:      "13800138000",
		IDCard:     "110101199001011234",
		HireDate:   NewDate(2022, time.March, 1),
		WorkStatus: StatusActive,
		Department: DeptSales,
		Position:   PositionSales,
	}
}

func TestValidateEmployee_Valid(t *testing.T) {
	require.NoError(t, ValidateEmployee(validEmployee(), testNow))
}

func TestValidateEmployee_CollectsAllFields(t *testing.T) {
	// GIVEN: An employee with several bad fields
	e := validEmployee()
	e.Name = "Zhang"
	e.Phone = "12345"
	e.HireDate = testNow.AddDate(0, 0, 1)

	// WHEN: Validating
	err := ValidateEmployee(e, testNow)

	// THEN: Every failing field is reported
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, errors.Is(err, ErrInvalid))
	fields := map[string]bool{}
	for _, f := range verr.Fields {
		fields[f.Field] = true
	}
	assert.True(t, fields["name"])
	assert.True(t, fields["phone"])
	assert.True(t, fields["hireDate"])
	assert.Len(t, verr.Fields, 3)
}

func TestValidIDCard(t *testing.T) {
	assert.True(t, ValidIDCard("11010119900101123X"))
	assert.False(t, ValidIDCard("010101199001011234"), "leading zero")
	assert.False(t, ValidIDCard("110101199013011234"), "month 13")
}

func TestNewScoreRecord_DerivesDeltaFromCatalog(t *testing.T) {
	rec, err := NewScoreRecord(ScoreInput{
		EmployeeID: "EMP1",
		RecordDate: NewDate(2025, time.May, 2),
		Behavior:   "absent",
		Reason:     "未请假",
	}, testNow)
	require.NoError(t, err)

	assert.Equal(t, int64(-10), rec.ScoreChange)
	assert.Equal(t, DefaultRecorder, rec.RecordedBy)
	assert.NotEmpty(t, rec.ID)
}

func TestNewScoreRecord_Rejects(t *testing.T) {
	base := ScoreInput{
		EmployeeID: "EMP1",
		RecordDate: NewDate(2025, time.May, 2),
		Behavior:   "late",
		Reason:     "迟到十分钟",
	}

	tests := []struct {
		name  string
		mut   func(*ScoreInput)
		field string
	}{
		{"unknown behavior", func(in *ScoreInput) { in.Behavior = "nap" }, "behaviorType"},
		{"short reason", func(in *ScoreInput) { in.Reason = "x" }, "reason"},
		{"future date", func(in *ScoreInput) { in.RecordDate = testNow.AddDate(0, 0, 2) }, "recordDate"},
		{"bad evidence", func(in *ScoreInput) { in.Evidence = "ftp://x/y.png" }, "evidence"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.mut(&in)
			_, err := NewScoreRecord(in, testNow)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Fields[0].Field)
		})
	}
}

func TestBehaviors_CatalogShape(t *testing.T) {
	deductions, additions := Behaviors()
	assert.Len(t, deductions, 8)
	assert.Len(t, additions, 8)
	assert.Equal(t, Behavior("rule_violation_serious"), deductions[0].Code)
	for _, d := range deductions {
		assert.Less(t, d.Score, int64(0))
	}
	for _, a := range additions {
		assert.Greater(t, a.Score, int64(0))
	}
}

func TestRecruitment_TrialForcesStatus(t *testing.T) {
	trial := NewDate(2025, time.May, 3)
	r := RecruitmentRecord{
		InterviewDate:   NewDate(2025, time.May, 1),
		Name:            "李四",
		Channel:         "BOSS直聘",
		Gender:          GenderFemale,
		Age:             24,
		Phone:           "13900139000",
		AppliedPosition: "客服",
		TrialDate:       &trial,
		HasTrial:        true,
		TrialDays:       3,
		TrialStatus:     TrialGood,
		Status:          RecruitInterviewing,
	}
	r.Normalize()

	assert.Equal(t, RecruitTrial, r.Status)
	require.NoError(t, ValidateRecruitment(r, testNow))
}

func TestRecruitment_TrialRequiresDetails(t *testing.T) {
	r := RecruitmentRecord{
		InterviewDate:   NewDate(2025, time.May, 1),
		Name:            "李四",
		Channel:         "内推",
		Gender:          GenderFemale,
		Age:             15,
		Phone:           "13900139000",
		AppliedPosition: "客服",
		HasTrial:        true,
		Status:          RecruitTrial,
	}
	err := ValidateRecruitment(r, testNow)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	fields := map[string]bool{}
	for _, f := range verr.Fields {
		fields[f.Field] = true
	}
	assert.True(t, fields["age"])
	assert.True(t, fields["trialDays"])
	assert.True(t, fields["trialStatus"])
}

func TestMaskIDCard(t *testing.T) {
	assert.Equal(t, "110101********1234", MaskIDCard("110101199001011234"))
	assert.Equal(t, "***", MaskIDCard("abc"))
}

func TestSumScores_YearWindow(t *testing.T) {
	records := []ScoreRecord{
		{EmployeeID: "A", RecordDate: NewDate(2023, time.December, 31), ScoreChange: 5},
		{EmployeeID: "A", RecordDate: NewDate(2024, time.January, 1), ScoreChange: -2},
		{EmployeeID: "A", RecordDate: NewDate(2024, time.December, 31), ScoreChange: 10},
		{EmployeeID: "B", RecordDate: NewDate(2025, time.January, 1), ScoreChange: 3},
	}
	from, to := YearBounds(2024)

	got := SumScores(records, from, to)

	assert.Equal(t, ScoreSummary{Sum: 8, Count: 2}, got["A"])
	_, hasB := got["B"]
	assert.False(t, hasB)
	assert.Equal(t, int64(13), TotalFor(records, "A"))
}
