/*
sqlite_test.go - Tests for the SQLite store

Tests for:
- Employee uniqueness mapping (phone, id card)
- Total score recompute inside score writes
- Yearly score aggregates
- Atomic ReplaceYear (rollback keeps the prior set)
- End-to-end generation through award.Generator
- Award statistics queries
*/
package sqlite

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/warp/hr-engine/award"
	"github.com/warp/hr-engine/hr"
)

var testNow = time.Date(2025, 2, 10, 8, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testEmployee(n int) hr.Employee {
	return hr.Employee{
		ID:         fmt.Sprintf("EMP%03d", n),
		Name:       "测试员工",
		Gender:     hr.GenderFemale,
		Phone:      fmt.Sprintf("138%08d", n),
		IDCard:     fmt.Sprintf("1101011990010%05d", n),
		HireDate:   hr.NewDate(2022, time.January, 10),
		WorkStatus: hr.StatusActive,
		Department: hr.DeptSales,
		Position:   hr.PositionSales,
		CreatedAt:  testNow,
		UpdatedAt:  testNow,
	}
}

func addScore(t *testing.T, s *Store, employeeID string, day time.Time, behavior hr.Behavior) hr.ScoreRecord {
	t.Helper()
	rec, err := hr.NewScoreRecord(hr.ScoreInput{
		EmployeeID: employeeID,
		RecordDate: day,
		Behavior:   behavior,
		Reason:     "测试记录",
	}, testNow)
	require.NoError(t, err)
	require.NoError(t, s.CreateScore(context.Background(), rec))
	return rec
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func TestEmployee_CreateGetUpdateDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	e := testEmployee(1)

	require.NoError(t, s.CreateEmployee(ctx, e))
	got, err := s.GetEmployee(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.Name, got.Name)
	assert.True(t, e.HireDate.Equal(got.HireDate))

	e.Department = hr.DeptPersonnel
	e.WorkStatus = hr.StatusLeave
	require.NoError(t, s.UpdateEmployee(ctx, e))
	got, err = s.GetEmployee(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, hr.DeptPersonnel, got.Department)
	assert.Equal(t, hr.StatusLeave, got.WorkStatus)

	require.NoError(t, s.DeleteEmployee(ctx, e.ID))
	_, err = s.GetEmployee(ctx, e.ID)
	assert.ErrorIs(t, err, hr.ErrEmployeeNotFound)
	assert.ErrorIs(t, s.DeleteEmployee(ctx, e.ID), hr.ErrEmployeeNotFound)
}

func TestEmployee_DuplicatePhoneAndIDCard(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateEmployee(ctx, testEmployee(1)))

	samePhone := testEmployee(2)
	samePhone.Phone = testEmployee(1).Phone
	assert.ErrorIs(t, s.CreateEmployee(ctx, samePhone), hr.ErrDuplicatePhone)

	sameCard := testEmployee(3)
	sameCard.IDCard = testEmployee(1).IDCard
	assert.ErrorIs(t, s.CreateEmployee(ctx, sameCard), hr.ErrDuplicateIDCard)
}

func TestEmployee_ListFiltersAndPages(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for i := 1; i <= 12; i++ {
		e := testEmployee(i)
		if i%3 == 0 {
			e.Department = hr.DeptOperations
		}
		require.NoError(t, s.CreateEmployee(ctx, e))
	}

	page, total, err := s.ListEmployees(ctx, hr.EmployeeFilter{Page: hr.Page{Number: 2, Size: 5}})
	require.NoError(t, err)
	assert.Equal(t, 12, total)
	assert.Len(t, page, 5)

	ops, total, err := s.ListEmployees(ctx, hr.EmployeeFilter{Department: hr.DeptOperations})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Len(t, ops, 4)

	byPhone, total, err := s.ListEmployees(ctx, hr.EmployeeFilter{Keyword: "00000007"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "EMP007", byPhone[0].ID)
}

// =============================================================================
// SCORES
// =============================================================================

func TestScore_TotalFollowsEvents(t *testing.T) {
	// GIVEN: An employee
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateEmployee(ctx, testEmployee(1)))

	// WHEN: Recording +10, -2 and +5
	addScore(t, s, "EMP001", hr.NewDate(2024, 3, 1), "suggestion")
	late := addScore(t, s, "EMP001", hr.NewDate(2024, 3, 2), "late")
	addScore(t, s, "EMP001", hr.NewDate(2025, 1, 5), "weekend_help")

	// THEN: The total is their sum
	e, err := s.GetEmployee(ctx, "EMP001")
	require.NoError(t, err)
	assert.Equal(t, int64(13), e.TotalScore)

	// WHEN: Changing the deduction into an addition
	late.Behavior = "cleaning"
	late.ScoreChange = 3
	late.UpdatedAt = testNow
	require.NoError(t, s.UpdateScore(ctx, late))
	e, _ = s.GetEmployee(ctx, "EMP001")
	assert.Equal(t, int64(18), e.TotalScore)

	// WHEN: Deleting it
	require.NoError(t, s.DeleteScore(ctx, late.ID, testNow))
	e, _ = s.GetEmployee(ctx, "EMP001")
	assert.Equal(t, int64(15), e.TotalScore)
}

func TestScore_MovingEventRecomputesBothEmployees(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateEmployee(ctx, testEmployee(1)))
	require.NoError(t, s.CreateEmployee(ctx, testEmployee(2)))
	rec := addScore(t, s, "EMP001", hr.NewDate(2024, 3, 1), "outstanding_work")

	rec.EmployeeID = "EMP002"
	require.NoError(t, s.UpdateScore(ctx, rec))

	a, _ := s.GetEmployee(ctx, "EMP001")
	b, _ := s.GetEmployee(ctx, "EMP002")
	assert.Equal(t, int64(0), a.TotalScore)
	assert.Equal(t, int64(10), b.TotalScore)
}

func TestScore_UnknownEmployeeRollsBack(t *testing.T) {
	s := newTestStore(t)
	rec, err := hr.NewScoreRecord(hr.ScoreInput{
		EmployeeID: "NOPE", RecordDate: hr.NewDate(2024, 1, 1), Behavior: "late", Reason: "迟到",
	}, testNow)
	require.NoError(t, err)

	assert.ErrorIs(t, s.CreateScore(context.Background(), rec), hr.ErrEmployeeNotFound)
	_, total, err := s.ListScores(context.Background(), hr.ScoreFilter{})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
}

func TestScore_SummariesRespectYearBounds(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.CreateEmployee(context.Background(), testEmployee(1)))
	addScore(t, s, "EMP001", hr.NewDate(2023, 12, 31), "suggestion")
	addScore(t, s, "EMP001", hr.NewDate(2024, 1, 1), "late")
	addScore(t, s, "EMP001", hr.NewDate(2024, 12, 31), "cleaning")
	addScore(t, s, "EMP001", hr.NewDate(2025, 1, 1), "absent")

	from, to := hr.YearBounds(2024)
	got, err := s.ScoreSummaries(context.Background(), from, to)

	require.NoError(t, err)
	assert.Equal(t, hr.ScoreSummary{Sum: 1, Count: 2}, got["EMP001"])
}

func TestScore_ListSortsByScoreChange(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.CreateEmployee(context.Background(), testEmployee(1)))
	addScore(t, s, "EMP001", hr.NewDate(2024, 1, 1), "late")
	addScore(t, s, "EMP001", hr.NewDate(2024, 1, 2), "suggestion")
	addScore(t, s, "EMP001", hr.NewDate(2024, 1, 3), "absent")

	list, total, err := s.ListScores(context.Background(), hr.ScoreFilter{
		SortBy: hr.SortByScoreChange, Ascending: true,
	})

	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, []int64{-10, -2, 10}, []int64{list[0].ScoreChange, list[1].ScoreChange, list[2].ScoreChange})
}

// =============================================================================
// AWARDS
// =============================================================================

func seedPopulation(t *testing.T, s *Store, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		require.NoError(t, s.CreateEmployee(context.Background(), testEmployee(i)))
	}
}

func rec(year int, employeeID string, rank int, level award.Level) award.Record {
	return award.Record{
		ID: fmt.Sprintf("%d-%s", year, employeeID), Year: year, EmployeeID: employeeID,
		Rank: rank, Level: level, BonusAmount: award.DefaultTierTable().Bonus(level),
		CreatedAt: testNow, UpdatedAt: testNow,
	}
}

func TestReplaceYear_SwapsWholeSet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedPopulation(t, s, 3)

	replaced, err := s.ReplaceYear(ctx, 2024, []award.Record{rec(2024, "EMP001", 1, award.LevelSpecial)}, true)
	require.NoError(t, err)
	assert.Equal(t, 0, replaced)

	replaced, err = s.ReplaceYear(ctx, 2024, []award.Record{
		{ID: "n1", Year: 2024, EmployeeID: "EMP002", Rank: 1, Level: award.LevelSpecial, BonusAmount: 5000, CreatedAt: testNow, UpdatedAt: testNow},
		{ID: "n2", Year: 2024, EmployeeID: "EMP003", Rank: 2, Level: award.LevelFirst, BonusAmount: 3000, CreatedAt: testNow, UpdatedAt: testNow},
	}, true)
	require.NoError(t, err)
	assert.Equal(t, 1, replaced)

	n, err := s.CountAwards(ctx, 2024)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestReplaceYear_DuplicateRollsBack(t *testing.T) {
	// GIVEN: A year with one record
	s := newTestStore(t)
	ctx := context.Background()
	seedPopulation(t, s, 2)
	_, err := s.ReplaceYear(ctx, 2024, []award.Record{rec(2024, "EMP001", 1, award.LevelSpecial)}, true)
	require.NoError(t, err)

	// WHEN: Replacing with a set that repeats an employee
	dup := rec(2024, "EMP002", 2, award.LevelFirst)
	dup.ID = "other"
	_, err = s.ReplaceYear(ctx, 2024, []award.Record{rec(2024, "EMP002", 1, award.LevelSpecial), dup}, true)

	// THEN: The uniqueness violation is reported and the prior set survives
	assert.ErrorIs(t, err, award.ErrDuplicateAward)
	list, total, err := s.ListAwards(ctx, award.Filter{Year: 2024})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Equal(t, "EMP001", list[0].EmployeeID)
}

func TestReplaceYear_MissingEmployeeRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedPopulation(t, s, 1)
	_, err := s.ReplaceYear(ctx, 2024, []award.Record{rec(2024, "EMP001", 1, award.LevelSpecial)}, true)
	require.NoError(t, err)

	_, err = s.ReplaceYear(ctx, 2024, []award.Record{rec(2024, "GHOST", 1, award.LevelSpecial)}, true)

	assert.ErrorIs(t, err, hr.ErrEmployeeNotFound)
	n, _ := s.CountAwards(ctx, 2024)
	assert.Equal(t, 1, n)
}

func TestReplaceYear_WithoutForceKeepsManualAward(t *testing.T) {
	// GIVEN: A year that received a manual award after the caller last counted it
	s := newTestStore(t)
	ctx := context.Background()
	seedPopulation(t, s, 2)
	n, err := s.CountAwards(ctx, 2024)
	require.NoError(t, err)
	require.Equal(t, 0, n)
	require.NoError(t, s.CreateAward(ctx, rec(2024, "EMP001", 1, award.LevelSpecial)))

	// WHEN: Replacing the year without force
	replaced, err := s.ReplaceYear(ctx, 2024, []award.Record{rec(2024, "EMP002", 1, award.LevelSpecial)}, false)

	// THEN: The write is refused and the manual award survives
	require.ErrorIs(t, err, award.ErrAlreadyGenerated)
	var gen *award.AlreadyGeneratedError
	require.ErrorAs(t, err, &gen)
	assert.Equal(t, 1, gen.Existing)
	assert.Equal(t, 0, replaced)
	list, total, err := s.ListAwards(ctx, award.Filter{Year: 2024})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Equal(t, "EMP001", list[0].EmployeeID)
}

func TestManualAward_DuplicateAndNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedPopulation(t, s, 1)
	require.NoError(t, s.CreateAward(ctx, rec(2023, "EMP001", 1, award.LevelSpecial)))

	again := rec(2023, "EMP001", 2, award.LevelFirst)
	again.ID = "again"
	assert.ErrorIs(t, s.CreateAward(ctx, again), award.ErrDuplicateAward)
	assert.ErrorIs(t, s.CreateAward(ctx, rec(2023, "GHOST", 1, award.LevelSpecial)), hr.ErrEmployeeNotFound)

	_, err := s.DeleteAward(ctx, "missing")
	assert.ErrorIs(t, err, award.ErrAwardNotFound)

	deleted, err := s.DeleteAward(ctx, "2023-EMP001")
	require.NoError(t, err)
	assert.Equal(t, 2023, deleted.Year)
}

func TestGenerator_EndToEnd(t *testing.T) {
	// GIVEN: 15 employees with distinct scores, one resigned, one hired in 2025
	s := newTestStore(t)
	ctx := context.Background()
	behaviors := []hr.Behavior{"outstanding_work", "suggestion", "group_task", "weekend_help", "cleaning"}
	for i := 1; i <= 15; i++ {
		e := testEmployee(i)
		switch i {
		case 14:
			e.WorkStatus = hr.StatusResigned
		case 15:
			e.HireDate = hr.NewDate(2025, 1, 2)
		}
		require.NoError(t, s.CreateEmployee(ctx, e))
		for j := 0; j < 16-i; j++ {
			addScore(t, s, e.ID, hr.NewDate(2024, 6, 1+j), behaviors[i%len(behaviors)])
		}
	}
	g := award.NewGenerator(s, s, zap.NewNop())
	g.Now = func() time.Time { return testNow }

	// WHEN: Generating 2024
	res, err := g.Generate(ctx, award.GenerateRequest{Year: 2024})

	// THEN: 13 eligible, 11 awarded, ranks 1..11 persisted
	require.NoError(t, err)
	assert.Equal(t, 13, res.Statistics.TotalEmployees)
	assert.Equal(t, 13, res.Statistics.EligibleEmployees)
	assert.Equal(t, 11, res.Statistics.AwardedEmployees)

	list, total, err := s.ListAwards(ctx, award.Filter{Year: 2024, SortBy: award.SortByRank, Page: hr.Page{Size: 20}})
	require.NoError(t, err)
	require.Equal(t, 11, total)
	for i, l := range list {
		assert.Equal(t, i+1, l.Rank)
		assert.Equal(t, "测试员工", l.EmployeeName)
	}

	// AND: Regenerating without force is refused
	_, err = g.Generate(ctx, award.GenerateRequest{Year: 2024})
	assert.ErrorIs(t, err, award.ErrAlreadyGenerated)

	// AND: Forced regeneration is idempotent
	again, err := g.Generate(ctx, award.GenerateRequest{Year: 2024, Force: true})
	require.NoError(t, err)
	assert.Equal(t, 11, again.Replaced)
	for i := range res.Records {
		assert.Equal(t, res.Records[i].EmployeeID, again.Records[i].EmployeeID)
		assert.Equal(t, res.Records[i].Level, again.Records[i].Level)
	}
}

func TestAwardStatistics(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedPopulation(t, s, 3)
	_, err := s.ReplaceYear(ctx, 2023, []award.Record{
		rec(2023, "EMP001", 1, award.LevelSpecial),
		rec(2023, "EMP002", 2, award.LevelFirst),
	}, true)
	require.NoError(t, err)
	_, err = s.ReplaceYear(ctx, 2024, []award.Record{
		rec(2024, "EMP001", 1, award.LevelSpecial),
		rec(2024, "EMP003", 2, award.LevelFirst),
		rec(2024, "EMP002", 3, award.LevelFirst),
	}, true)
	require.NoError(t, err)

	report, err := award.BuildReport(ctx, s, 0)
	require.NoError(t, err)

	assert.Equal(t, []int{2024, 2023}, report.AvailableYears)
	assert.Equal(t, 5, report.Overall.TotalAwards)
	assert.Equal(t, int64(5000*2+3000*3), report.Overall.TotalBonus)
	require.Len(t, report.Levels, 4)
	assert.Equal(t, 2, report.Levels[0].Count)
	assert.Equal(t, "特等奖", report.Levels[0].Label)
	assert.Equal(t, 0, report.Levels[3].Count)
	require.Len(t, report.Trend, 2)
	assert.Equal(t, 2023, report.Trend[0].Year)
	require.NotEmpty(t, report.Ranking)
	assert.Equal(t, "EMP001", report.Ranking[0].EmployeeID)
	assert.Equal(t, award.LevelSpecial, report.Ranking[0].BestLevel)
	assert.Equal(t, []int{2023, 2024}, report.Ranking[0].Years)
	require.Len(t, report.Departments, 1)
	assert.Equal(t, string(hr.DeptSales), report.Departments[0].Department)

	scoped, err := award.BuildReport(ctx, s, 2024)
	require.NoError(t, err)
	assert.Equal(t, 3, scoped.Overall.TotalAwards)
}

// =============================================================================
// RECRUITMENT
// =============================================================================

func TestRecruitment_CRUDAndReport(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	trial := hr.NewDate(2025, 2, 3)

	records := []hr.RecruitmentRecord{
		{ID: "r1", InterviewDate: hr.NewDate(2025, 2, 1), Name: "候选一", Channel: "BOSS直聘", Gender: hr.GenderMale,
			Age: 25, Phone: "13700000001", AppliedPosition: "销售", TrialDate: &trial, HasTrial: true,
			TrialDays: 3, TrialStatus: hr.TrialExcellent, Status: hr.RecruitTrial},
		{ID: "r2", InterviewDate: hr.NewDate(2025, 2, 2), Name: "候选二", Channel: "BOSS直聘", Gender: hr.GenderFemale,
			Age: 30, Phone: "13700000002", AppliedPosition: "客服", TrialDate: &trial, HasTrial: true,
			TrialDays: 1, TrialStatus: hr.TrialPoor, Status: hr.RecruitTrial},
		{ID: "r3", InterviewDate: hr.NewDate(2024, 11, 20), Name: "候选三", Channel: "内推", Gender: hr.GenderFemale,
			Age: 41, Phone: "13700000003", AppliedPosition: "美工", Status: hr.RecruitHired},
	}
	for _, r := range records {
		r.CreatedAt, r.UpdatedAt = testNow, testNow
		require.NoError(t, s.CreateRecruitment(ctx, r))
	}

	got, err := s.GetRecruitment(ctx, "r1")
	require.NoError(t, err)
	require.NotNil(t, got.TrialDate)
	assert.True(t, got.HasTrial)
	assert.Equal(t, hr.TrialExcellent, got.TrialStatus)

	list, total, err := s.ListRecruitment(ctx, hr.RecruitmentFilter{Keyword: "BOSS"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, "r2", list[0].ID)

	report, err := s.RecruitmentReport(ctx, testNow)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 2, report.ThisMonth)
	assert.Equal(t, 2, report.Trials)
	assert.Equal(t, "50", report.TrialPassRate.String())
	assert.Equal(t, 2, report.ByStatus[hr.RecruitTrial])
	assert.Len(t, report.Trend, 12)
	assert.Equal(t, 2, report.Trend[11].Total)

	require.NoError(t, s.DeleteRecruitment(ctx, "r3"))
	_, err = s.GetRecruitment(ctx, "r3")
	assert.ErrorIs(t, err, hr.ErrRecruitmentNotFound)
}
