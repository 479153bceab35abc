package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/warp/hr-engine/award"
	"github.com/warp/hr-engine/hr"
)

// =============================================================================
// AWARD OPERATIONS
// =============================================================================

const awardColumns = `a.id, a.year, a.employee_id, a.final_score, a.award_rank, a.award_level,
	a.bonus_amount, a.created_at, a.updated_at`

const listingColumns = awardColumns + `, COALESCE(e.name, ''), COALESCE(e.department, ''), COALESCE(e.position, '')`

func scanAward(row scanner, extra ...any) (award.Record, error) {
	var r award.Record
	var level, createdAt, updatedAt string
	dest := append([]any{&r.ID, &r.Year, &r.EmployeeID, &r.FinalScore, &r.Rank, &level,
		&r.BonusAmount, &createdAt, &updatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return award.Record{}, err
	}
	r.Level = award.Level(level)
	r.CreatedAt = parseTime(createdAt)
	r.UpdatedAt = parseTime(updatedAt)
	return r, nil
}

func scanListing(row scanner) (award.Listing, error) {
	var l award.Listing
	rec, err := scanAward(row, &l.EmployeeName, &l.Department, &l.Position)
	if err != nil {
		return award.Listing{}, err
	}
	l.Record = rec
	return l, nil
}

// awardWriteError maps constraint failures of a single award write.
func awardWriteError(r award.Record, err error) error {
	switch {
	case isUniqueConstraintError(err):
		return fmt.Errorf("%w: %d/%s", award.ErrDuplicateAward, r.Year, r.EmployeeID)
	case isForeignKeyError(err):
		return fmt.Errorf("%w: %s", hr.ErrEmployeeNotFound, r.EmployeeID)
	}
	return err
}

func insertAward(ctx context.Context, q querier, r award.Record) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO annual_awards (id, year, employee_id, final_score, award_rank, award_level,
			bonus_amount, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Year, r.EmployeeID, r.FinalScore, r.Rank, string(r.Level),
		r.BonusAmount, formatTime(r.CreatedAt), formatTime(r.UpdatedAt))
	if err != nil {
		return awardWriteError(r, err)
	}
	return nil
}

// CountAwards returns the number of records for year.
func (s *Store) CountAwards(ctx context.Context, year int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM annual_awards WHERE year = ?`, year).Scan(&n)
	return n, err
}

// ReplaceYear deletes the year's records and inserts records in a single
// transaction. Without force a year that holds any record is refused with
// *award.AlreadyGeneratedError. On any failure nothing changes.
func (s *Store) ReplaceYear(ctx context.Context, year int, records []award.Record, force bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var replaced int
	err := s.WithTx(ctx, func(q querier) error {
		if !force {
			var existing int
			if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM annual_awards WHERE year = ?`, year).Scan(&existing); err != nil {
				return fmt.Errorf("count year: %w", err)
			}
			if existing > 0 {
				return &award.AlreadyGeneratedError{Year: year, Existing: existing}
			}
		}

		res, err := q.ExecContext(ctx, `DELETE FROM annual_awards WHERE year = ?`, year)
		if err != nil {
			return fmt.Errorf("delete year: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		replaced = int(n)

		for _, r := range records {
			if r.Year != year {
				return fmt.Errorf("record %s belongs to %d, not %d", r.ID, r.Year, year)
			}
			if err := insertAward(ctx, q, r); err != nil {
				return fmt.Errorf("insert: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return replaced, nil
}

// GetAward returns award.ErrAwardNotFound when id doesn't exist.
func (s *Store) GetAward(ctx context.Context, id string) (award.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, err := scanListing(s.db.QueryRowContext(ctx, `SELECT `+listingColumns+`
		FROM annual_awards a LEFT JOIN employees e ON e.id = a.employee_id
		WHERE a.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return award.Listing{}, award.ErrAwardNotFound
	}
	return l, err
}

// CreateAward inserts one manually entered record.
func (s *Store) CreateAward(ctx context.Context, r award.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.WithTx(ctx, func(q querier) error {
		if _, err := getEmployee(ctx, q, r.EmployeeID); err != nil {
			return err
		}
		return insertAward(ctx, q, r)
	})
}

// UpdateAward overwrites a record.
func (s *Store) UpdateAward(ctx context.Context, r award.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.WithTx(ctx, func(q querier) error {
		if _, err := getEmployee(ctx, q, r.EmployeeID); err != nil {
			return err
		}
		res, err := q.ExecContext(ctx, `
			UPDATE annual_awards SET year = ?, employee_id = ?, final_score = ?, award_rank = ?,
				award_level = ?, bonus_amount = ?, updated_at = ?
			WHERE id = ?`,
			r.Year, r.EmployeeID, r.FinalScore, r.Rank, string(r.Level), r.BonusAmount,
			formatTime(r.UpdatedAt), r.ID)
		if err != nil {
			return awardWriteError(r, err)
		}
		return expectOne(res, award.ErrAwardNotFound)
	})
}

// DeleteAward removes one record.
func (s *Store) DeleteAward(ctx context.Context, id string) (award.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted award.Record
	err := s.WithTx(ctx, func(q querier) error {
		rec, err := scanAward(q.QueryRowContext(ctx, `SELECT `+awardColumns+` FROM annual_awards a WHERE a.id = ?`, id))
		if errors.Is(err, sql.ErrNoRows) {
			return award.ErrAwardNotFound
		}
		if err != nil {
			return err
		}
		if _, err := q.ExecContext(ctx, `DELETE FROM annual_awards WHERE id = ?`, id); err != nil {
			return err
		}
		deleted = rec
		return nil
	})
	return deleted, err
}

// ListAwards returns one page of records matching filter and the match count.
func (s *Store) ListAwards(ctx context.Context, filter award.Filter) ([]award.Listing, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w := &where{}
	if filter.Year != 0 {
		w.add(`a.year = ?`, filter.Year)
	}
	if filter.Level != "" {
		w.add(`a.award_level = ?`, string(filter.Level))
	}
	if filter.EmployeeID != "" {
		w.add(`a.employee_id = ?`, filter.EmployeeID)
	}
	if filter.Department != "" {
		w.add(`e.department = ?`, filter.Department)
	}
	from := ` FROM annual_awards a LEFT JOIN employees e ON e.id = a.employee_id`

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*)`+from+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page := filter.Page.Normalize()
	args := append(append([]any{}, w.args...), page.Size, page.Offset())
	rows, err := s.db.QueryContext(ctx, `SELECT `+listingColumns+from+w.String()+
		` ORDER BY `+awardOrder(filter)+` LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []award.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, l)
	}
	return out, total, rows.Err()
}

// awardOrder builds the ORDER BY clause. Default is newest year, then rank.
func awardOrder(filter award.Filter) string {
	dir := "ASC"
	if filter.Descending {
		dir = "DESC"
	}
	switch filter.SortBy {
	case award.SortByFinalScore:
		return "a.final_score " + dir + ", a.year DESC, a.award_rank"
	case award.SortByBonus:
		return "a.bonus_amount " + dir + ", a.year DESC, a.award_rank"
	case award.SortByYear:
		return "a.year " + dir + ", a.award_rank"
	case award.SortByRank:
		return "a.award_rank " + dir + ", a.year DESC"
	}
	return "a.year DESC, a.award_rank ASC"
}
