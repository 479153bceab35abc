/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the domain model (hr, award) from the external API contract, which uses
  camelCase keys and YYYY-MM-DD dates.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Employees:   EmployeeDTO, EmployeeRequest, EmployeeOverviewDTO
  Scores:      ScoreDTO, ScoreRequest
  Recruitment: RecruitmentDTO, RecruitmentRequest
  Awards:      AwardDTO, AwardRequest, GenerateAwardsRequest,
               GenerateAwardsResponse, CertificateDTO
  Shared:      ListResponse, ErrorResponse, ScenarioDTO

VALIDATION:
  Validation is done by the domain packages (hr.ValidateEmployee,
  hr.NewScoreRecord, award.TierTable.NewManualRecord). DTOs are pure data
  carriers; request types use pointers where an update may omit a field.

SEE ALSO:
  - handlers.go: Shared helpers
  - employees.go, scores.go, recruitment.go, awards.go: Use these types
*/
package api

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/hr-engine/award"
	"github.com/warp/hr-engine/hr"
)

// =============================================================================
// SHARED
// =============================================================================

// ListResponse is one page of a listing.
type ListResponse[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}

func newListResponse[T any](items []T, total int, page hr.Page) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{
		Items:      items,
		Total:      total,
		Page:       page.Number,
		PageSize:   page.Size,
		TotalPages: page.TotalPages(total),
	}
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents an employee in API responses. IDCard is masked
// unless served by the admin-only endpoint.
type EmployeeDTO struct {
	ID          string `json:"employeeId"`
	Name        string `json:"name"`
	Gender      string `json:"gender"`
	Phone       string `json:"phone"`
	IDCard      string `json:"idCard"`
	HireDate    string `json:"regularDate"`
	WorkStatus  string `json:"workStatus"`
	Department  string `json:"department"`
	Position    string `json:"position"`
	TotalScore  int64  `json:"totalScore"`
	WorkingDays int    `json:"workingDays"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

func toEmployeeDTO(e hr.Employee, asOf time.Time) EmployeeDTO {
	return EmployeeDTO{
		ID:          e.ID,
		Name:        e.Name,
		Gender:      string(e.Gender),
		Phone:       e.Phone,
		IDCard:      hr.MaskIDCard(e.IDCard),
		HireDate:    hr.FormatDate(e.HireDate),
		WorkStatus:  string(e.WorkStatus),
		Department:  string(e.Department),
		Position:    string(e.Position),
		TotalScore:  e.TotalScore,
		WorkingDays: e.WorkingDays(asOf),
		CreatedAt:   formatTimestamp(e.CreatedAt),
		UpdatedAt:   formatTimestamp(e.UpdatedAt),
	}
}

// EmployeeRequest creates or partially updates an employee.
type EmployeeRequest struct {
	Name       *string `json:"name"`
	Gender     *string `json:"gender"`
	Phone      *string `json:"phone"`
	IDCard     *string `json:"idCard"`
	HireDate   *string `json:"regularDate"`
	WorkStatus *string `json:"workStatus"`
	Department *string `json:"department"`
	Position   *string `json:"position"`
}

// applyTo copies the present fields onto e.
func (req EmployeeRequest) applyTo(e *hr.Employee) error {
	if req.Name != nil {
		e.Name = *req.Name
	}
	if req.Gender != nil {
		e.Gender = hr.Gender(*req.Gender)
	}
	if req.Phone != nil {
		e.Phone = *req.Phone
	}
	// A masked value echoes what GET returned; keep the stored number.
	if req.IDCard != nil && !strings.Contains(*req.IDCard, "*") {
		e.IDCard = *req.IDCard
	}
	if req.HireDate != nil {
		d, err := hr.ParseDate(*req.HireDate)
		if err != nil {
			return &hr.ValidationError{Fields: []hr.FieldError{{Field: "regularDate", Message: "invalid date"}}}
		}
		e.HireDate = d
	}
	if req.WorkStatus != nil {
		e.WorkStatus = hr.WorkStatus(*req.WorkStatus)
	}
	if req.Department != nil {
		e.Department = hr.Department(*req.Department)
	}
	if req.Position != nil {
		e.Position = hr.Position(*req.Position)
	}
	return nil
}

// IDCardDTO is the unmasked identity number.
type IDCardDTO struct {
	EmployeeID string `json:"employeeId"`
	IDCard     string `json:"idCard"`
}

// TopScorerDTO is the highest-scoring active employee.
type TopScorerDTO struct {
	EmployeeID string `json:"employeeId"`
	Name       string `json:"name"`
	Score      int64  `json:"score"`
	Department string `json:"department"`
	Position   string `json:"position"`
}

// EmployeeOverviewDTO is the employee page header.
type EmployeeOverviewDTO struct {
	hr.EmployeeOverview
	TopScorer   *TopScorerDTO            `json:"topScorer"`
	Departments []hr.DepartmentHeadcount `json:"departments"`
}

// =============================================================================
// SCORES
// =============================================================================

// ScoreDTO represents a score event in API responses.
type ScoreDTO struct {
	ID            string `json:"id"`
	EmployeeID    string `json:"employeeId"`
	RecordDate    string `json:"recordDate"`
	Behavior      string `json:"behaviorType"`
	BehaviorLabel string `json:"behaviorLabel"`
	ScoreChange   int64  `json:"scoreChange"`
	Reason        string `json:"reason"`
	RecordedBy    string `json:"recordedBy"`
	Evidence      string `json:"evidence,omitempty"`
	CreatedAt     string `json:"createdAt,omitempty"`
	UpdatedAt     string `json:"updatedAt,omitempty"`
}

func toScoreDTO(r hr.ScoreRecord) ScoreDTO {
	label := string(r.Behavior)
	if def, ok := hr.LookupBehavior(r.Behavior); ok {
		label = def.Label
	}
	return ScoreDTO{
		ID:            r.ID,
		EmployeeID:    r.EmployeeID,
		RecordDate:    hr.FormatDate(r.RecordDate),
		Behavior:      string(r.Behavior),
		BehaviorLabel: label,
		ScoreChange:   r.ScoreChange,
		Reason:        r.Reason,
		RecordedBy:    r.RecordedBy,
		Evidence:      r.Evidence,
		CreatedAt:     formatTimestamp(r.CreatedAt),
		UpdatedAt:     formatTimestamp(r.UpdatedAt),
	}
}

// ScoreRequest creates or updates a score event. The score change is never
// accepted from clients; it follows from the behavior.
type ScoreRequest struct {
	EmployeeID string `json:"employeeId"`
	RecordDate string `json:"recordDate"`
	Behavior   string `json:"behaviorType"`
	Reason     string `json:"reason"`
	RecordedBy string `json:"recordedBy"`
	Evidence   string `json:"evidence"`
}

func (req ScoreRequest) input() (hr.ScoreInput, error) {
	in := hr.ScoreInput{
		EmployeeID: req.EmployeeID,
		Behavior:   hr.Behavior(req.Behavior),
		Reason:     req.Reason,
		RecordedBy: req.RecordedBy,
		Evidence:   req.Evidence,
	}
	if req.RecordDate != "" {
		d, err := hr.ParseDate(req.RecordDate)
		if err != nil {
			return in, &hr.ValidationError{Fields: []hr.FieldError{{Field: "recordDate", Message: "invalid date"}}}
		}
		in.RecordDate = d
	}
	return in, nil
}

// BehaviorsResponse is the behavior catalog split by kind.
type BehaviorsResponse struct {
	Deductions []hr.BehaviorDef `json:"deductions"`
	Additions  []hr.BehaviorDef `json:"additions"`
}

// =============================================================================
// RECRUITMENT
// =============================================================================

// RecruitmentDTO represents a recruitment record in API responses.
type RecruitmentDTO struct {
	ID              string `json:"id"`
	InterviewDate   string `json:"interviewDate"`
	Name            string `json:"name"`
	Channel         string `json:"channel"`
	Gender          string `json:"gender"`
	Age             int    `json:"age"`
	IDCard          string `json:"idCard,omitempty"`
	Phone           string `json:"phone"`
	AppliedPosition string `json:"appliedPosition"`
	TrialDate       string `json:"trialDate,omitempty"`
	HasTrial        bool   `json:"hasTrial"`
	TrialDays       int    `json:"trialDays,omitempty"`
	TrialStatus     string `json:"trialStatus,omitempty"`
	Notes           string `json:"notes,omitempty"`
	Status          string `json:"status"`
	CreatedAt       string `json:"createdAt,omitempty"`
	UpdatedAt       string `json:"updatedAt,omitempty"`
}

func toRecruitmentDTO(r hr.RecruitmentRecord) RecruitmentDTO {
	dto := RecruitmentDTO{
		ID:              r.ID,
		InterviewDate:   hr.FormatDate(r.InterviewDate),
		Name:            r.Name,
		Channel:         r.Channel,
		Gender:          string(r.Gender),
		Age:             r.Age,
		Phone:           r.Phone,
		AppliedPosition: r.AppliedPosition,
		HasTrial:        r.HasTrial,
		TrialDays:       r.TrialDays,
		TrialStatus:     string(r.TrialStatus),
		Notes:           r.Notes,
		Status:          string(r.Status),
		CreatedAt:       formatTimestamp(r.CreatedAt),
		UpdatedAt:       formatTimestamp(r.UpdatedAt),
	}
	if r.IDCard != "" {
		dto.IDCard = hr.MaskIDCard(r.IDCard)
	}
	if r.TrialDate != nil {
		dto.TrialDate = hr.FormatDate(*r.TrialDate)
	}
	return dto
}

// RecruitmentRequest creates or replaces a recruitment record.
type RecruitmentRequest struct {
	InterviewDate   string `json:"interviewDate"`
	Name            string `json:"name"`
	Channel         string `json:"channel"`
	Gender          string `json:"gender"`
	Age             int    `json:"age"`
	IDCard          string `json:"idCard"`
	Phone           string `json:"phone"`
	AppliedPosition string `json:"appliedPosition"`
	TrialDate       string `json:"trialDate"`
	HasTrial        bool   `json:"hasTrial"`
	TrialDays       int    `json:"trialDays"`
	TrialStatus     string `json:"trialStatus"`
	Notes           string `json:"notes"`
	Status          string `json:"status"`
}

func (req RecruitmentRequest) record() (hr.RecruitmentRecord, error) {
	r := hr.RecruitmentRecord{
		Name:            req.Name,
		Channel:         req.Channel,
		Gender:          hr.Gender(req.Gender),
		Age:             req.Age,
		IDCard:          req.IDCard,
		Phone:           req.Phone,
		AppliedPosition: req.AppliedPosition,
		HasTrial:        req.HasTrial,
		TrialDays:       req.TrialDays,
		TrialStatus:     hr.TrialStatus(req.TrialStatus),
		Notes:           req.Notes,
		Status:          hr.RecruitmentStatus(req.Status),
	}
	var bad []hr.FieldError
	if req.InterviewDate != "" {
		d, err := hr.ParseDate(req.InterviewDate)
		if err != nil {
			bad = append(bad, hr.FieldError{Field: "interviewDate", Message: "invalid date"})
		}
		r.InterviewDate = d
	}
	if req.TrialDate != "" {
		d, err := hr.ParseDate(req.TrialDate)
		if err != nil {
			bad = append(bad, hr.FieldError{Field: "trialDate", Message: "invalid date"})
		} else {
			r.TrialDate = &d
		}
	}
	if len(bad) > 0 {
		return r, &hr.ValidationError{Fields: bad}
	}
	return r, nil
}

// =============================================================================
// AWARDS
// =============================================================================

// AwardDTO represents an award in API responses.
type AwardDTO struct {
	ID           string `json:"id"`
	Year         int    `json:"year"`
	EmployeeID   string `json:"employeeId"`
	EmployeeName string `json:"employeeName,omitempty"`
	Department   string `json:"department,omitempty"`
	Position     string `json:"position,omitempty"`
	FinalScore   int64  `json:"finalScore"`
	Rank         int    `json:"rank"`
	Level        string `json:"awardLevel"`
	LevelLabel   string `json:"awardLevelLabel"`
	BonusAmount  int64  `json:"bonusAmount"`
	CreatedAt    string `json:"createdAt,omitempty"`
	UpdatedAt    string `json:"updatedAt,omitempty"`
}

func toAwardDTO(r award.Record) AwardDTO {
	return AwardDTO{
		ID:          r.ID,
		Year:        r.Year,
		EmployeeID:  r.EmployeeID,
		FinalScore:  r.FinalScore,
		Rank:        r.Rank,
		Level:       string(r.Level),
		LevelLabel:  r.Level.Label(),
		BonusAmount: r.BonusAmount,
		CreatedAt:   formatTimestamp(r.CreatedAt),
		UpdatedAt:   formatTimestamp(r.UpdatedAt),
	}
}

func toListingDTO(l award.Listing) AwardDTO {
	dto := toAwardDTO(l.Record)
	dto.EmployeeName = l.EmployeeName
	dto.Department = l.Department
	dto.Position = l.Position
	return dto
}

// AwardRequest creates or updates an award by hand. The bonus follows from
// the level.
type AwardRequest struct {
	Year       int    `json:"year"`
	EmployeeID string `json:"employeeId"`
	FinalScore int64  `json:"finalScore"`
	Rank       int    `json:"rank"`
	Level      string `json:"awardLevel"`
}

func (req AwardRequest) input() award.ManualInput {
	return award.ManualInput{
		Year:       req.Year,
		EmployeeID: req.EmployeeID,
		FinalScore: req.FinalScore,
		Rank:       req.Rank,
		Level:      award.Level(req.Level),
	}
}

// GenerateAwardsRequest asks for a year's awards.
type GenerateAwardsRequest struct {
	Year  int  `json:"year"`
	Force bool `json:"force"`

	// ForceRegenerate is accepted as an alias of Force.
	ForceRegenerate bool `json:"forceRegenerate"`
}

// GenerateAwardsResponse reports a generation run.
type GenerateAwardsResponse struct {
	Year       int               `json:"year"`
	Awards     []AwardDTO        `json:"awards"`
	Candidates []award.Candidate `json:"details"`
	Statistics award.Statistics  `json:"statistics"`
	Replaced   int               `json:"replaced"`
}

// TierDTO is one row of the active tier table.
type TierDTO struct {
	Level     string `json:"level"`
	Label     string `json:"label"`
	Quota     int    `json:"quota"`
	Bonus     int64  `json:"bonus"`
	FirstRank int    `json:"firstRank"`
	LastRank  int    `json:"lastRank"`
}

func toTierDTOs(table award.TierTable) []TierDTO {
	out := make([]TierDTO, 0, len(table))
	next := 1
	for _, t := range table {
		out = append(out, TierDTO{
			Level:     string(t.Level),
			Label:     t.Level.Label(),
			Quota:     t.Quota,
			Bonus:     t.Bonus,
			FirstRank: next,
			LastRank:  next + t.Quota - 1,
		})
		next += t.Quota
	}
	return out
}

// CertificateDTO is what the UI prints on an award certificate.
type CertificateDTO struct {
	AwardID     string `json:"awardId"`
	Year        int    `json:"year"`
	Name        string `json:"name"`
	Department  string `json:"department"`
	Position    string `json:"position"`
	Level       string `json:"awardLevel"`
	LevelLabel  string `json:"awardLevelLabel"`
	Rank        int    `json:"rank"`
	BonusAmount int64  `json:"bonusAmount"`
	IssuedOn    string `json:"issuedOn"`
}

// =============================================================================
// DASHBOARD, HEALTH, AUTH, SCENARIOS
// =============================================================================

// DashboardDTO is the home page summary.
type DashboardDTO struct {
	TotalInterviews   int             `json:"totalInterviews"`
	InterviewsMonth   int             `json:"interviewsThisMonth"`
	ActiveEmployees   int             `json:"activeEmployees"`
	AverageScore      decimal.Decimal `json:"averageScore"`
	TrialPassRate     decimal.Decimal `json:"trialPassRate"`
	LatestAwardYear   int             `json:"latestAwardYear,omitempty"`
	LatestAwardsTotal int64           `json:"latestAwardsBonus,omitempty"`
}

// HealthDTO reports service and database status.
type HealthDTO struct {
	Status         string         `json:"status"`
	Timestamp      string         `json:"timestamp"`
	Uptime         string         `json:"uptime"`
	DBResponseTime string         `json:"dbResponseTime"`
	Counts         map[string]int `json:"collections,omitempty"`
	Error          string         `json:"error,omitempty"`
}

// VerifyRequest carries the admin password.
type VerifyRequest struct {
	Password string `json:"password"`
}

// TokenResponse is an issued admin token.
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// LoadScenarioRequest is the request to load a scenario.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}
