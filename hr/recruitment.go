package hr

import "time"

// RecruitmentStatus is the stage of a candidate in the hiring pipeline.
type RecruitmentStatus string

const (
	RecruitInterviewing RecruitmentStatus = "interviewing"
	RecruitTrial        RecruitmentStatus = "trial"
	RecruitHired        RecruitmentStatus = "hired"
	RecruitRejected     RecruitmentStatus = "rejected"
)

var RecruitmentStatuses = []RecruitmentStatus{RecruitInterviewing, RecruitTrial, RecruitHired, RecruitRejected}

func (s RecruitmentStatus) Valid() bool {
	for _, v := range RecruitmentStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// TrialStatus grades a trial day.
type TrialStatus string

const (
	TrialExcellent TrialStatus = "excellent"
	TrialGood      TrialStatus = "good"
	TrialAverage   TrialStatus = "average"
	TrialPoor      TrialStatus = "poor"
)

func (s TrialStatus) Valid() bool {
	switch s {
	case TrialExcellent, TrialGood, TrialAverage, TrialPoor:
		return true
	}
	return false
}

// Passed reports whether the trial counts towards the pass rate.
func (s TrialStatus) Passed() bool { return s == TrialExcellent || s == TrialGood }

// RecruitmentRecord is one interviewed candidate.
type RecruitmentRecord struct {
	ID              string
	InterviewDate   time.Time
	Name            string
	Channel         string
	Gender          Gender
	Age             int
	IDCard          string // optional
	Phone           string
	AppliedPosition string
	TrialDate       *time.Time
	HasTrial        bool
	TrialDays       int
	TrialStatus     TrialStatus
	Notes           string
	Status          RecruitmentStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Normalize applies the pipeline rules that do not depend on the caller:
// a record with a scheduled trial is in the trial stage, and trial details
// are cleared when there is no trial.
func (r *RecruitmentRecord) Normalize() {
	if r.Status == "" {
		r.Status = RecruitInterviewing
	}
	if r.HasTrial && r.TrialDate != nil {
		r.Status = RecruitTrial
	}
	if !r.HasTrial {
		r.TrialDays = 0
		r.TrialStatus = ""
	}
}

// RecruitmentFilter narrows recruitment listings.
type RecruitmentFilter struct {
	Status   RecruitmentStatus
	Keyword  string // name, phone, or channel substring
	From, To time.Time
	Page     Page
}
