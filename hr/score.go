/*
score.go - Behavior catalog and score events

PURPOSE:
  A ScoreRecord is one behavior event on one day. Its ScoreChange is never
  supplied by the caller: it is looked up from the catalog by Behavior, so a
  given behavior always moves the score by the same amount.

CATALOG:
  Deductions                   Additions
    late               -2        weekend_help      +5
    early_leave        -3        cleaning          +3
    absent            -10        moving_help       +3
    phone_usage        -1        group_activity    +5
    work_slack         -5        group_task        +8
    rule_violation_minor -5      suggestion       +10
    rule_violation_serious -20   help_newcomer     +5
    interview_record   -3        outstanding_work +10

SEE ALSO:
  - ledger.go: Summing events into totals
  - validate.go: ValidateScoreInput
*/
package hr

import (
	"sort"
	"time"
)

// BehaviorKind separates deductions from additions.
type BehaviorKind string

const (
	KindDeduction BehaviorKind = "deduction"
	KindAddition  BehaviorKind = "addition"
)

// Behavior is a catalog code such as "late".
type Behavior string

// BehaviorDef is one catalog entry.
type BehaviorDef struct {
	Code  Behavior     `json:"value"`
	Label string       `json:"label"`
	Score int64        `json:"score"`
	Kind  BehaviorKind `json:"kind"`
}

var behaviorCatalog = map[Behavior]BehaviorDef{
	"late":                   {"late", "迟到", -2, KindDeduction},
	"early_leave":            {"early_leave", "早退", -3, KindDeduction},
	"absent":                 {"absent", "旷工", -10, KindDeduction},
	"phone_usage":            {"phone_usage", "上班玩手机", -1, KindDeduction},
	"work_slack":             {"work_slack", "工作懈怠", -5, KindDeduction},
	"rule_violation_minor":   {"rule_violation_minor", "轻微违规", -5, KindDeduction},
	"rule_violation_serious": {"rule_violation_serious", "严重违规", -20, KindDeduction},
	"interview_record":       {"interview_record", "约谈记录", -3, KindDeduction},

	"weekend_help":     {"weekend_help", "周末帮忙", 5, KindAddition},
	"cleaning":         {"cleaning", "打扫卫生", 3, KindAddition},
	"moving_help":      {"moving_help", "搬运协助", 3, KindAddition},
	"group_activity":   {"group_activity", "集体活动", 5, KindAddition},
	"group_task":       {"group_task", "团队任务", 8, KindAddition},
	"suggestion":       {"suggestion", "合理建议", 10, KindAddition},
	"help_newcomer":    {"help_newcomer", "帮助新人", 5, KindAddition},
	"outstanding_work": {"outstanding_work", "工作突出", 10, KindAddition},
}

// LookupBehavior returns the catalog entry for code.
func LookupBehavior(code Behavior) (BehaviorDef, bool) {
	def, ok := behaviorCatalog[code]
	return def, ok
}

// Behaviors returns the catalog split by kind, each list ordered by score
// magnitude (largest first) then code.
func Behaviors() (deductions, additions []BehaviorDef) {
	for _, def := range behaviorCatalog {
		if def.Kind == KindDeduction {
			deductions = append(deductions, def)
		} else {
			additions = append(additions, def)
		}
	}
	byMagnitude := func(list []BehaviorDef) {
		sort.Slice(list, func(i, j int) bool {
			ai, aj := abs(list[i].Score), abs(list[j].Score)
			if ai != aj {
				return ai > aj
			}
			return list[i].Code < list[j].Code
		})
	}
	byMagnitude(deductions)
	byMagnitude(additions)
	return deductions, additions
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// DefaultRecorder is used when a score event names no recorder.
const DefaultRecorder = "管理员"

// ScoreRecord is one behavior event.
type ScoreRecord struct {
	ID          string
	EmployeeID  string
	RecordDate  time.Time
	Behavior    Behavior
	ScoreChange int64
	Reason      string
	RecordedBy  string
	Evidence    string // optional image URL
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ScoreInput is the caller-supplied part of a ScoreRecord.
type ScoreInput struct {
	EmployeeID string
	RecordDate time.Time
	Behavior   Behavior
	Reason     string
	RecordedBy string
	Evidence   string
}

// ScoreSort selects the ordering of score listings.
type ScoreSort string

const (
	SortByRecordDate  ScoreSort = "record_date"
	SortByScoreChange ScoreSort = "score_change"
)

// ScoreFilter narrows score listings. Zero values match everything.
type ScoreFilter struct {
	EmployeeID string
	Behavior   Behavior
	From, To   time.Time // inclusive calendar dates
	SortBy     ScoreSort
	Ascending  bool
	Page       Page
}
