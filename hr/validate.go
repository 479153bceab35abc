package hr

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

var (
	namePattern     = regexp.MustCompile(`^[\x{4e00}-\x{9fa5}]{2,20}$`)
	phonePattern    = regexp.MustCompile(`^1[3-9]\d{9}$`)
	idCardPattern   = regexp.MustCompile(`^[1-9]\d{5}(18|19|20)\d{2}((0[1-9])|(1[0-2]))(([0-2][1-9])|10|20|30|31)\d{3}[0-9Xx]$`)
	evidencePattern = regexp.MustCompile(`(?i)^https?://.+\.(jpg|jpeg|png|gif|webp)$`)
)

const (
	MinReasonLength = 2
	MaxReasonLength = 500
	MaxNotesLength  = 500
	MinCandidateAge = 16
	MaxCandidateAge = 70
	MaxTrialDays    = 90
)

// ValidName reports whether s is 2 to 20 CJK characters.
func ValidName(s string) bool { return namePattern.MatchString(s) }

// ValidPhone reports whether s is an 11-digit mainland mobile number.
func ValidPhone(s string) bool { return phonePattern.MatchString(s) }

// ValidIDCard reports whether s is an 18-character resident identity number.
func ValidIDCard(s string) bool { return idCardPattern.MatchString(s) }

// ValidateEmployee checks every field of an employee. now bounds the hire date.
func ValidateEmployee(e Employee, now time.Time) error {
	v := &validator{}
	v.check(ValidName(e.Name), "name", "must be 2-20 Chinese characters")
	v.check(e.Gender.Valid(), "gender", "must be male or female")
	v.check(ValidPhone(e.Phone), "phone", "must be a valid mobile number")
	v.check(ValidIDCard(e.IDCard), "idCard", "must be a valid 18-digit id card number")
	v.check(!e.HireDate.IsZero(), "hireDate", "is required")
	if !e.HireDate.IsZero() {
		v.check(!Date(e.HireDate).After(Date(now)), "hireDate", "cannot be in the future")
	}
	v.check(e.WorkStatus.Valid(), "workStatus", "must be active, resigned or leave")
	v.check(e.Department.Valid(), "department", "unknown department")
	v.check(e.Position.Valid(), "position", "unknown position")
	return v.err()
}

// NewScoreRecord validates in and builds the event, deriving ScoreChange
// from the behavior catalog.
func NewScoreRecord(in ScoreInput, now time.Time) (ScoreRecord, error) {
	v := &validator{}
	v.check(strings.TrimSpace(in.EmployeeID) != "", "employeeId", "is required")
	v.check(!in.RecordDate.IsZero(), "recordDate", "is required")
	if !in.RecordDate.IsZero() {
		v.check(!Date(in.RecordDate).After(Date(now)), "recordDate", "cannot be in the future")
	}
	def, ok := LookupBehavior(in.Behavior)
	v.check(ok, "behaviorType", "unknown behavior")
	reason := strings.TrimSpace(in.Reason)
	n := utf8.RuneCountInString(reason)
	v.check(n >= MinReasonLength && n <= MaxReasonLength, "reason", "must be 2-500 characters")
	evidence := strings.TrimSpace(in.Evidence)
	if evidence != "" {
		v.check(evidencePattern.MatchString(evidence), "evidence", "must be an http(s) image URL")
	}
	if err := v.err(); err != nil {
		return ScoreRecord{}, err
	}

	recorder := strings.TrimSpace(in.RecordedBy)
	if recorder == "" {
		recorder = DefaultRecorder
	}
	return ScoreRecord{
		ID:          uuid.NewString(),
		EmployeeID:  in.EmployeeID,
		RecordDate:  Date(in.RecordDate),
		Behavior:    in.Behavior,
		ScoreChange: def.Score,
		Reason:      reason,
		RecordedBy:  recorder,
		Evidence:    evidence,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// ValidateRecruitment checks a recruitment record after Normalize.
func ValidateRecruitment(r RecruitmentRecord, now time.Time) error {
	v := &validator{}
	v.check(!r.InterviewDate.IsZero(), "interviewDate", "is required")
	v.check(utf8.RuneCountInString(strings.TrimSpace(r.Name)) >= 2, "name", "is required")
	v.check(strings.TrimSpace(r.Channel) != "", "channel", "is required")
	v.check(r.Gender.Valid(), "gender", "must be male or female")
	v.check(r.Age >= MinCandidateAge && r.Age <= MaxCandidateAge, "age", "must be between 16 and 70")
	if r.IDCard != "" {
		v.check(ValidIDCard(r.IDCard), "idCard", "must be a valid 18-digit id card number")
	}
	v.check(ValidPhone(r.Phone), "phone", "must be a valid mobile number")
	v.check(strings.TrimSpace(r.AppliedPosition) != "", "appliedPosition", "is required")
	if r.TrialDate != nil && !r.InterviewDate.IsZero() {
		v.check(!Date(*r.TrialDate).Before(Date(r.InterviewDate)), "trialDate", "cannot be before the interview date")
	}
	if r.HasTrial {
		v.check(r.TrialDays >= 1 && r.TrialDays <= MaxTrialDays, "trialDays", "must be between 1 and 90")
		v.check(r.TrialStatus.Valid(), "trialStatus", "is required when there is a trial")
	}
	v.check(utf8.RuneCountInString(r.Notes) <= MaxNotesLength, "notes", "must be at most 500 characters")
	v.check(r.Status.Valid(), "status", "unknown status")
	return v.err()
}
