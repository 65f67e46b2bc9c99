// Package v1 holds the JSON types of the run history API.
package v1

import "time"

type Run struct {
	Id         string            `json:"id"`
	Scenario   string            `json:"scenario,omitempty"`
	Module     string            `json:"module"`
	Checkpoint string            `json:"checkpoint"`
	Params     map[string]string `json:"params"`
	Verdict    string            `json:"verdict"`
	Reason     string            `json:"reason,omitempty"`
	StartedAt  time.Time         `json:"startedAt"`
	FinishedAt time.Time         `json:"finishedAt"`
	DurationMs int64             `json:"durationMs"`
}

type RunListResponse struct {
	Page      int   `json:"page"`
	PageCount int   `json:"pageCount"`
	Total     int   `json:"total"`
	Runs      []Run `json:"runs"`
}

type LogEntry struct {
	Seq        int       `json:"seq"`
	Kind       string    `json:"kind"`
	Text       string    `json:"text"`
	ExitStatus int       `json:"exitStatus"`
	Passed     bool      `json:"passed"`
	At         time.Time `json:"at"`
}

type RunLogResponse struct {
	RunId   string     `json:"runId"`
	Entries []LogEntry `json:"entries"`
}

type Summary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Errors  int `json:"errors"`
	Skipped int `json:"skipped"`
}

type Checkpoint struct {
	Name        string            `json:"name"`
	Module      string            `json:"module"`
	Description string            `json:"description,omitempty"`
	NeedsImage  bool              `json:"needsImage"`
	Defaults    map[string]string `json:"defaults,omitempty"`
}

type Error struct {
	Error string `json:"error"`
}
