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
// RECRUITMENT OPERATIONS
// =============================================================================

const recruitmentColumns = `id, interview_date, name, channel, gender, age, id_card, phone,
	applied_position, trial_date, has_trial, trial_days, trial_status, notes, status,
	created_at, updated_at`

func scanRecruitment(row scanner) (hr.RecruitmentRecord, error) {
	var r hr.RecruitmentRecord
	var interview, gender, status, createdAt, updatedAt string
	var idCard, trialDate, trialStatus, notes sql.NullString
	err := row.Scan(&r.ID, &interview, &r.Name, &r.Channel, &gender, &r.Age, &idCard, &r.Phone,
		&r.AppliedPosition, &trialDate, &r.HasTrial, &r.TrialDays, &trialStatus, &notes, &status,
		&createdAt, &updatedAt)
	if err != nil {
		return hr.RecruitmentRecord{}, err
	}
	r.InterviewDate = parseDate(interview)
	r.Gender = hr.Gender(gender)
	r.IDCard = idCard.String
	if trialDate.Valid {
		d := parseDate(trialDate.String)
		r.TrialDate = &d
	}
	r.TrialStatus = hr.TrialStatus(trialStatus.String)
	r.Notes = notes.String
	r.Status = hr.RecruitmentStatus(status)
	r.CreatedAt = parseTime(createdAt)
	r.UpdatedAt = parseTime(updatedAt)
	return r, nil
}

func recruitmentArgs(r hr.RecruitmentRecord) []any {
	var trialDate sql.NullString
	if r.TrialDate != nil {
		trialDate = sql.NullString{String: formatDate(*r.TrialDate), Valid: true}
	}
	return []any{
		formatDate(r.InterviewDate), r.Name, r.Channel, string(r.Gender), r.Age, nullString(r.IDCard), r.Phone,
		r.AppliedPosition, trialDate, r.HasTrial, r.TrialDays, nullString(string(r.TrialStatus)),
		nullString(r.Notes), string(r.Status),
	}
}

func (s *Store) CreateRecruitment(ctx context.Context, r hr.RecruitmentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	args := append([]any{r.ID}, recruitmentArgs(r)...)
	args = append(args, formatTime(r.CreatedAt), formatTime(r.UpdatedAt))
	_, err := s.db.ExecContext(ctx, `INSERT INTO recruitment_records (`+recruitmentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	return err
}

func (s *Store) GetRecruitment(ctx context.Context, id string) (hr.RecruitmentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, err := scanRecruitment(s.db.QueryRowContext(ctx,
		`SELECT `+recruitmentColumns+` FROM recruitment_records WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return hr.RecruitmentRecord{}, hr.ErrRecruitmentNotFound
	}
	return r, err
}

func (s *Store) UpdateRecruitment(ctx context.Context, r hr.RecruitmentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	args := append(recruitmentArgs(r), formatTime(r.UpdatedAt), r.ID)
	res, err := s.db.ExecContext(ctx, `
		UPDATE recruitment_records SET interview_date = ?, name = ?, channel = ?, gender = ?, age = ?,
			id_card = ?, phone = ?, applied_position = ?, trial_date = ?, has_trial = ?, trial_days = ?,
			trial_status = ?, notes = ?, status = ?, updated_at = ?
		WHERE id = ?`, args...)
	if err != nil {
		return err
	}
	return expectOne(res, hr.ErrRecruitmentNotFound)
}

func (s *Store) DeleteRecruitment(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM recruitment_records WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOne(res, hr.ErrRecruitmentNotFound)
}

// ListRecruitment returns one page of records, latest interview first.
func (s *Store) ListRecruitment(ctx context.Context, filter hr.RecruitmentFilter) ([]hr.RecruitmentRecord, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w := &where{}
	if filter.Status != "" {
		w.add(`status = ?`, string(filter.Status))
	}
	if kw := strings.TrimSpace(filter.Keyword); kw != "" {
		p := likePattern(kw)
		w.add(`(name LIKE ? ESCAPE '\' OR phone LIKE ? ESCAPE '\' OR channel LIKE ? ESCAPE '\')`, p, p, p)
	}
	if !filter.From.IsZero() {
		w.add(`interview_date >= ?`, formatDate(filter.From))
	}
	if !filter.To.IsZero() {
		w.add(`interview_date <= ?`, formatDate(filter.To))
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recruitment_records`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page := filter.Page.Normalize()
	args := append(append([]any{}, w.args...), page.Size, page.Offset())
	rows, err := s.db.QueryContext(ctx, `SELECT `+recruitmentColumns+` FROM recruitment_records`+w.String()+
		` ORDER BY interview_date DESC, created_at DESC, id LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []hr.RecruitmentRecord
	for rows.Next() {
		r, err := scanRecruitment(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}

// RecruitmentReport builds the recruitment statistics page as of asOf.
func (s *Store) RecruitmentReport(ctx context.Context, asOf time.Time) (*hr.RecruitmentReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report := &hr.RecruitmentReport{ByStatus: make(map[hr.RecruitmentStatus]int)}
	for _, st := range hr.RecruitmentStatuses {
		report.ByStatus[st] = 0
	}

	monthStart, monthEnd := hr.MonthBounds(asOf.Year(), asOf.Month())
	var passed int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN interview_date >= ? AND interview_date <= ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN has_trial = 1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN has_trial = 1 AND trial_status IN (?, ?) THEN 1 ELSE 0 END), 0)
		FROM recruitment_records`,
		formatDate(monthStart), formatDate(monthEnd),
		string(hr.TrialExcellent), string(hr.TrialGood),
	).Scan(&report.Total, &report.ThisMonth, &report.Trials, &passed)
	if err != nil {
		return nil, err
	}
	report.TrialPassRate = hr.Percent(passed, report.Trials)

	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM recruitment_records GROUP BY status`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var st string
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			rows.Close()
			return nil, err
		}
		report.ByStatus[hr.RecruitmentStatus(st)] = n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if report.Trend, err = s.recruitmentTrend(ctx, asOf); err != nil {
		return nil, err
	}
	if report.Channels, err = s.channelStats(ctx); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *Store) recruitmentTrend(ctx context.Context, asOf time.Time) ([]hr.MonthlyRecruitment, error) {
	months := hr.LastMonths(asOf, 12)
	rows, err := s.db.QueryContext(ctx, `
		SELECT substr(interview_date, 1, 7) AS month, status, COUNT(*)
		FROM recruitment_records
		WHERE substr(interview_date, 1, 7) >= ? AND substr(interview_date, 1, 7) <= ?
		GROUP BY month, status`, months[0], months[len(months)-1])
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byMonth := make(map[string]*hr.MonthlyRecruitment, len(months))
	out := make([]hr.MonthlyRecruitment, len(months))
	for i, key := range months {
		out[i] = hr.MonthlyRecruitment{Month: key, ByStatus: make(map[hr.RecruitmentStatus]int)}
		byMonth[key] = &out[i]
	}
	for rows.Next() {
		var month, status string
		var n int
		if err := rows.Scan(&month, &status, &n); err != nil {
			return nil, err
		}
		if m, ok := byMonth[month]; ok {
			m.ByStatus[hr.RecruitmentStatus(status)] = n
			m.Total += n
		}
	}
	return out, rows.Err()
}

func (s *Store) channelStats(ctx context.Context) ([]hr.ChannelStat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT channel, COUNT(*), SUM(CASE WHEN status = ? THEN 1 ELSE 0 END)
		FROM recruitment_records GROUP BY channel ORDER BY COUNT(*) DESC, channel`,
		string(hr.RecruitHired))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []hr.ChannelStat
	for rows.Next() {
		var c hr.ChannelStat
		if err := rows.Scan(&c.Channel, &c.Total, &c.Hired); err != nil {
			return nil, err
		}
		c.HireRate = hr.Percent(c.Hired, c.Total)
		out = append(out, c)
	}
	return out, rows.Err()
}
