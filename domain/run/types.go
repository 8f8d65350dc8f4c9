// Package run describes background pipeline runs for inspection and replay
package run

import (
	"fmt"

	"goinsight/domain/core"
)

// Kind names which stages a run executes
type Kind string

const (
	// KindFull profiles, scores and clusters a freshly loaded dataset
	KindFull Kind = "full"
	// KindUpstream clusters subspaces scored elsewhere
	KindUpstream Kind = "upstream"
	// KindRecluster clusters the latest subspaces under a new group bound
	KindRecluster Kind = "recluster"
)

// Status is the outcome of a run
type Status string

const (
	StatusRunning    Status = "running"
	StatusReady      Status = "ready"
	StatusFailed     Status = "failed"
	StatusSuperseded Status = "superseded"
)

// Fingerprint identifies the inputs of a run. Two runs with equal fingerprints
// produce the same pages.
type Fingerprint struct {
	DatasetHash    core.Hash `json:"datasetHash,omitempty"`
	SubspaceHash   core.Hash `json:"subspaceHash,omitempty"`
	MaxGroupNumber int       `json:"maxGroupNumber"`
	Fingerprint    core.Hash `json:"fingerprint"` // Hash of all above
}

// NewFingerprint creates a fingerprint from the run inputs
func NewFingerprint(datasetHash, subspaceHash core.Hash, maxGroupNumber int) Fingerprint {
	data := fmt.Sprintf("dataset:%s|subspaces:%s|groups:%d", datasetHash, subspaceHash, maxGroupNumber)
	return Fingerprint{
		DatasetHash:    datasetHash,
		SubspaceHash:   subspaceHash,
		MaxGroupNumber: maxGroupNumber,
		Fingerprint:    core.NewHash([]byte(data)),
	}
}
