/*
Package hr holds the personnel records the award engine ranks: employees,
behavior score events, and recruitment candidates.

PURPOSE:
  These are plain records with declarative validation. The only derived
  value that matters downstream is an employee's TotalScore, which is always
  the sum of the employee's score events (see ledger.go).

KEY CONCEPTS IN THIS FILE (types.go):
  - Employee: a person on the payroll, active, resigned, or on leave
  - WorkStatus / Gender / Department / Position: closed enumerations
  - NewEmployeeID: stable, human-readable identifiers ("EMP...")

IDENTIFIERS:
  Employee IDs are opaque strings. The award engine orders ties by ID, so
  IDs must never be reused after an employee is deleted.

SEE ALSO:
  - score.go: Behavior catalog and score events
  - recruitment.go: Candidate pipeline
  - validate.go: Field validation rules
*/
package hr

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ENUMERATIONS
// =============================================================================

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

func (g Gender) Valid() bool { return g == GenderMale || g == GenderFemale }

// WorkStatus is the employment state. Only active employees are award candidates.
type WorkStatus string

const (
	StatusActive   WorkStatus = "active"
	StatusResigned WorkStatus = "resigned"
	StatusLeave    WorkStatus = "leave"
)

func (s WorkStatus) Valid() bool {
	switch s {
	case StatusActive, StatusResigned, StatusLeave:
		return true
	}
	return false
}

type Department string

const (
	DeptSales      Department = "销售部"
	DeptOperations Department = "运营部"
	DeptPersonnel  Department = "人事部"
	DeptUnassigned Department = "未分配"
)

// Departments lists every assignable department, unassigned last.
var Departments = []Department{DeptSales, DeptOperations, DeptPersonnel, DeptUnassigned}

func (d Department) Valid() bool {
	for _, v := range Departments {
		if v == d {
			return true
		}
	}
	return false
}

type Position string

const (
	PositionSalesLead      Position = "销售主管"
	PositionPersonnelLead  Position = "人事主管"
	PositionOperationsLead Position = "运营主管"
	PositionSales          Position = "销售"
	PositionOperations     Position = "运营"
	PositionAssistant      Position = "助理"
	PositionSupport        Position = "客服"
	PositionDesigner       Position = "美工"
	PositionUnassigned     Position = "未分配"
)

var Positions = []Position{
	PositionSalesLead, PositionPersonnelLead, PositionOperationsLead,
	PositionSales, PositionOperations, PositionAssistant,
	PositionSupport, PositionDesigner, PositionUnassigned,
}

func (p Position) Valid() bool {
	for _, v := range Positions {
		if v == p {
			return true
		}
	}
	return false
}

// =============================================================================
// EMPLOYEE
// =============================================================================

// Employee is a personnel record.
type Employee struct {
	ID         string
	Name       string
	Gender     Gender
	Phone      string
	IDCard     string
	HireDate   time.Time // date the employee became regular staff
	WorkStatus WorkStatus
	Department Department
	Position   Position
	TotalScore int64 // sum of all score events, maintained by the store
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsActive reports whether the employee is currently working.
func (e Employee) IsActive() bool { return e.WorkStatus == StatusActive }

// WorkingDays is the number of whole days between the hire date and asOf.
func (e Employee) WorkingDays(asOf time.Time) int {
	return DaysBetween(e.HireDate, asOf)
}

// NewEmployeeID returns an identifier of the form EMP<unix millis><4 hex>.
// The random suffix keeps IDs unique when several employees are created in
// the same millisecond (bulk imports, demo scenarios).
func NewEmployeeID(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:4])
	return fmt.Sprintf("EMP%d%s", now.UnixMilli(), suffix)
}

// MaskIDCard hides the birth date and sequence digits of an identity number.
// "110101199001011234" -> "110101********1234".
func MaskIDCard(idCard string) string {
	if len(idCard) < 10 {
		return strings.Repeat("*", len(idCard))
	}
	return idCard[:6] + strings.Repeat("*", len(idCard)-10) + idCard[len(idCard)-4:]
}

// =============================================================================
// QUERY TYPES
// =============================================================================

// Page is a 1-based pagination request.
type Page struct {
	Number int
	Size   int
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Normalize clamps the page into the supported range.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

func (p Page) Offset() int { return (p.Number - 1) * p.Size }

// TotalPages returns the number of pages needed for total items.
func (p Page) TotalPages(total int) int {
	if p.Size <= 0 {
		return 0
	}
	return (total + p.Size - 1) / p.Size
}

// EmployeeFilter narrows employee listings. Empty fields match everything.
type EmployeeFilter struct {
	Keyword    string // name, id, or phone substring
	Department Department
	Position   Position
	WorkStatus WorkStatus
	Page       Page
}
