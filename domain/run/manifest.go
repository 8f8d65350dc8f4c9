package run

import (
	"fmt"
	"time"

	"goinsight/domain/core"
)

// Manifest records one run from start to outcome
type Manifest struct {
	Token       core.RunToken `json:"token"`
	Kind        Kind          `json:"kind"`
	Fingerprint Fingerprint   `json:"fingerprint"`
	Status      Status        `json:"status"`
	StartedAt   time.Time     `json:"startedAt"`
	FinishedAt  time.Time     `json:"finishedAt,omitempty"`
	Subspaces   int           `json:"subspaces"`
	ViewSpaces  int           `json:"viewSpaces"`
	Error       string        `json:"error,omitempty"`
}

// NewManifest starts a manifest for a run initiated now
func NewManifest(token core.RunToken, kind Kind, fp Fingerprint) Manifest {
	return Manifest{
		Token:       token,
		Kind:        kind,
		Fingerprint: fp,
		Status:      StatusRunning,
		StartedAt:   time.Now(),
	}
}

// Finish records the outcome. A nil err with status ready keeps the counts.
func (m *Manifest) Finish(status Status, subspaces, viewSpaces int, err error) {
	m.Status = status
	m.FinishedAt = time.Now()
	m.Subspaces = subspaces
	m.ViewSpaces = viewSpaces
	if err != nil {
		m.Error = err.Error()
	}
}

// Done reports whether the run has an outcome
func (m Manifest) Done() bool {
	return m.Status != StatusRunning
}

// Duration is the run's wall time so far
func (m Manifest) Duration() time.Duration {
	if m.FinishedAt.IsZero() {
		return time.Since(m.StartedAt)
	}
	return m.FinishedAt.Sub(m.StartedAt)
}

// Validate checks the manifest is complete
func (m Manifest) Validate() error {
	if m.Token.IsEmpty() {
		return fmt.Errorf("run manifest: token cannot be empty")
	}
	switch m.Kind {
	case KindFull, KindUpstream, KindRecluster:
	default:
		return fmt.Errorf("run manifest: unknown kind %q", m.Kind)
	}
	if m.Fingerprint.MaxGroupNumber < 1 {
		return fmt.Errorf("run manifest: max group number must be at least 1")
	}
	if m.Status == StatusFailed && m.Error == "" {
		return fmt.Errorf("run manifest: failed run without error")
	}
	return nil
}
