package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/hr-engine/hr"
)

// =============================================================================
// EMPLOYEE OPERATIONS
// =============================================================================

const employeeColumns = `id, name, gender, phone, id_card, hire_date, work_status,
	department, position, total_score, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row scanner) (hr.Employee, error) {
	var e hr.Employee
	var gender, status, dept, pos, hireDate, createdAt, updatedAt string
	err := row.Scan(&e.ID, &e.Name, &gender, &e.Phone, &e.IDCard, &hireDate, &status,
		&dept, &pos, &e.TotalScore, &createdAt, &updatedAt)
	if err != nil {
		return hr.Employee{}, err
	}
	e.Gender = hr.Gender(gender)
	e.WorkStatus = hr.WorkStatus(status)
	e.Department = hr.Department(dept)
	e.Position = hr.Position(pos)
	e.HireDate = parseDate(hireDate)
	e.CreatedAt = parseTime(createdAt)
	e.UpdatedAt = parseTime(updatedAt)
	return e, nil
}

// employeeConflict maps a uniqueness failure to the field that collided.
func employeeConflict(err error) error {
	if !isUniqueConstraintError(err) {
		return err
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "employees.phone"):
		return hr.ErrDuplicatePhone
	case strings.Contains(msg, "employees.id_card"):
		return hr.ErrDuplicateIDCard
	}
	return fmt.Errorf("duplicate employee: %w", err)
}

// CreateEmployee inserts a new employee. TotalScore always starts at zero.
func (s *Store) CreateEmployee(ctx context.Context, e hr.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (`+employeeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		e.ID, e.Name, string(e.Gender), e.Phone, e.IDCard, formatDate(e.HireDate),
		string(e.WorkStatus), string(e.Department), string(e.Position),
		formatTime(e.CreatedAt), formatTime(e.UpdatedAt),
	)
	if err != nil {
		return employeeConflict(err)
	}
	return nil
}

// GetEmployee returns hr.ErrEmployeeNotFound when id doesn't exist.
func (s *Store) GetEmployee(ctx context.Context, id string) (hr.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getEmployee(ctx, s.db, id)
}

func getEmployee(ctx context.Context, q querier, id string) (hr.Employee, error) {
	row := q.QueryRowContext(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = ?`, id)
	e, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return hr.Employee{}, hr.ErrEmployeeNotFound
	}
	return e, err
}

// UpdateEmployee overwrites the editable fields. TotalScore is never written here.
func (s *Store) UpdateEmployee(ctx context.Context, e hr.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE employees SET name = ?, gender = ?, phone = ?, id_card = ?, hire_date = ?,
			work_status = ?, department = ?, position = ?, updated_at = ?
		WHERE id = ?`,
		e.Name, string(e.Gender), e.Phone, e.IDCard, formatDate(e.HireDate),
		string(e.WorkStatus), string(e.Department), string(e.Position), formatTime(e.UpdatedAt),
		e.ID,
	)
	if err != nil {
		return employeeConflict(err)
	}
	return expectOne(res, hr.ErrEmployeeNotFound)
}

// DeleteEmployee removes the employee with its score events and awards.
func (s *Store) DeleteEmployee(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM employees WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOne(res, hr.ErrEmployeeNotFound)
}

// ListEmployees returns one page of employees matching filter, newest first,
// and the total number of matches.
func (s *Store) ListEmployees(ctx context.Context, filter hr.EmployeeFilter) ([]hr.Employee, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w := &where{}
	if kw := strings.TrimSpace(filter.Keyword); kw != "" {
		p := likePattern(kw)
		w.add(`(name LIKE ? ESCAPE '\' OR id LIKE ? ESCAPE '\' OR phone LIKE ? ESCAPE '\')`, p, p, p)
	}
	if filter.Department != "" {
		w.add(`department = ?`, string(filter.Department))
	}
	if filter.Position != "" {
		w.add(`position = ?`, string(filter.Position))
	}
	if filter.WorkStatus != "" {
		w.add(`work_status = ?`, string(filter.WorkStatus))
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM employees`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page := filter.Page.Normalize()
	args := append(append([]any{}, w.args...), page.Size, page.Offset())
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+employeeColumns+` FROM employees`+w.String()+
			` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	employees, err := collectEmployees(rows)
	return employees, total, err
}

// AllEmployees returns every employee ordered by ID.
func (s *Store) AllEmployees(ctx context.Context) ([]hr.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEmployees(rows)
}

func collectEmployees(rows *sql.Rows) ([]hr.Employee, error) {
	var out []hr.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// EmployeeOverview computes headcounts, the average working days of active
// employees as of asOf, and the top scorer.
func (s *Store) EmployeeOverview(ctx context.Context, asOf time.Time) (hr.EmployeeOverview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var o hr.EmployeeOverview
	rows, err := s.db.QueryContext(ctx, `SELECT work_status, COUNT(*) FROM employees GROUP BY work_status`)
	if err != nil {
		return o, err
	}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			rows.Close()
			return o, err
		}
		o.Total += n
		switch hr.WorkStatus(status) {
		case hr.StatusActive:
			o.Active = n
		case hr.StatusResigned:
			o.Resigned = n
		case hr.StatusLeave:
			o.OnLeave = n
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return o, err
	}

	var totalDays sql.NullFloat64
	err = s.db.QueryRowContext(ctx, `
		SELECT SUM(MAX(0, CAST(julianday(?) - julianday(hire_date) AS INTEGER)))
		FROM employees WHERE work_status = ?`,
		formatDate(asOf), string(hr.StatusActive)).Scan(&totalDays)
	if err != nil {
		return o, err
	}
	o.AvgWorkingDays = averageFloat(totalDays.Float64, o.Active)

	row := s.db.QueryRowContext(ctx, `SELECT `+employeeColumns+` FROM employees
		WHERE work_status = ? ORDER BY total_score DESC, id ASC LIMIT 1`, string(hr.StatusActive))
	top, err := scanEmployee(row)
	switch {
	case err == nil:
		o.TopScorer = &top
	case !errors.Is(err, sql.ErrNoRows):
		return o, err
	}
	return o, nil
}

// DepartmentHeadcounts aggregates employees per department.
func (s *Store) DepartmentHeadcounts(ctx context.Context) ([]hr.DepartmentHeadcount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT department, COUNT(*),
			SUM(CASE WHEN work_status = ? THEN 1 ELSE 0 END),
			COALESCE(SUM(total_score), 0)
		FROM employees GROUP BY department ORDER BY COUNT(*) DESC, department`,
		string(hr.StatusActive))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []hr.DepartmentHeadcount
	for rows.Next() {
		var d hr.DepartmentHeadcount
		var dept string
		if err := rows.Scan(&dept, &d.Employees, &d.Active, &d.TotalScore); err != nil {
			return nil, err
		}
		d.Department = hr.Department(dept)
		d.AvgScore = averageInt(d.TotalScore, d.Employees)
		out = append(out, d)
	}
	return out, rows.Err()
}

func expectOne(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// AverageActiveScore is the mean total score of active employees.
func (s *Store) AverageActiveScore(ctx context.Context) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum sql.NullInt64
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT SUM(total_score), COUNT(*) FROM employees WHERE work_status = ?`,
		string(hr.StatusActive)).Scan(&sum, &n)
	if err != nil {
		return decimal.Zero, err
	}
	return averageInt(sum.Int64, n), nil
}
