package session

import (
	"fmt"
	"time"

	"goinsight/domain/core"
	"goinsight/domain/insight"
)

// State is the position of a session in its recommendation lifecycle
type State string

const (
	StateIdle       State = "idle"
	StateProfiling  State = "profiling"
	StateClustering State = "clustering"
	StateReady      State = "ready"
)

// Snapshot is an immutable view of session state handed to renderers
type Snapshot struct {
	State   State         `json:"state"`
	Pending bool          `json:"pending"`
	Run     core.RunToken `json:"run"`
	Dataset string        `json:"dataset,omitempty"`

	Page      int    `json:"page"`
	PageCount int    `json:"pageCount"`
	PageLabel string `json:"pageLabel"`
	// DisplayedPage is the page the synthesis belongs to; it differs from Page
	// when the current page has no recommendation. -1 when nothing is displayed.
	DisplayedPage int `json:"displayedPage"`

	Synthesis    insight.Synthesis      `json:"synthesis"`
	VisualConfig insight.VisualConfig   `json:"visualConfig"`
	Override     insight.VisualOverride `json:"override"`

	Notice string `json:"notice,omitempty"`
	// NoticeCode is the error code behind Notice, e.g. PROFILING_ERROR or SYNTHESIS_FAILURE
	NoticeCode     string `json:"noticeCode,omitempty"`
	Retryable      bool   `json:"retryable"`
	MaxGroupNumber int    `json:"maxGroupNumber"`
}

// PageLabel renders the pager caption
func PageLabel(page, count int) string {
	if count == 0 {
		return "Page No. 0 of 0"
	}
	return fmt.Sprintf("Page No. %d of %d", page+1, count)
}

// EventType names what changed
type EventType string

const (
	EventState  EventType = "state"
	EventPage   EventType = "page"
	EventNotice EventType = "notice"
)

// Event is published to subscribers after every transition
type Event struct {
	Type     EventType `json:"type"`
	Snapshot Snapshot  `json:"snapshot"`
	At       time.Time `json:"at"`
}
