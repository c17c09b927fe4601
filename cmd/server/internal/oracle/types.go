package oracle

import (
	"encoding/json"
	"strconv"
	"strings"
)

// DecompositionProposal is the oracle's answer to a goal-decomposition
// request: a short project theme plus candidate sub-tasks. Candidates are
// untrusted and individually repaired downstream.
type DecompositionProposal struct {
	ProjectTheme string          `json:"project_theme"`
	Tasks        []CandidateTask `json:"tasks"`
}

// CandidateTask is one machine-proposed sub-task, before repair.
type CandidateTask struct {
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Priority       string    `json:"priority"`
	EstimatedHours FlexFloat `json:"estimated_hours"`
}

// FlexFloat tolerates a numeric field arriving as a JSON number or as a
// quoted string, both of which the oracle has been observed to emit.
type FlexFloat struct {
	Value float64
	Valid bool
}

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		return nil
	}
	s = strings.Trim(s, `"`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Unparseable values are treated as absent, not fatal.
		return nil
	}
	f.Value = v
	f.Valid = true
	return nil
}

func (f FlexFloat) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// ScheduleProposal is the oracle's answer to a day-scheduling request.
type ScheduleProposal struct {
	Slots           []SlotProposal `json:"schedule"`
	Suggestions     []string       `json:"suggestions"`
	EfficiencyScore int            `json:"efficiency_score"`
}

// SlotProposal is one proposed time allocation. Times are wall-clock
// HH:MM strings; entries referencing unknown tasks or with non-positive
// spans are dropped during validation, not rejected wholesale.
type SlotProposal struct {
	TaskID    string `json:"task_id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Reason    string `json:"reason"`
}
