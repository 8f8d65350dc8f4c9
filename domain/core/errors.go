package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Profiling errors
	ErrProfiling     = errors.New("profiling failed")
	ErrFieldMissing  = fmt.Errorf("%w: field not present in dataset", ErrProfiling)
	ErrEmptyDataset  = fmt.Errorf("%w: dataset has no records", ErrProfiling)
	ErrNoFields      = fmt.Errorf("%w: no fields to profile", ErrProfiling)
	ErrDuplicateName = fmt.Errorf("%w: duplicate field name", ErrProfiling)

	// Clustering errors
	ErrClustering         = errors.New("clustering failed")
	ErrInvalidGroupNumber = fmt.Errorf("%w: max group number must be at least 1", ErrClustering)

	// Synthesis outcomes; never returned from navigation
	ErrNoRecommendation = errors.New("no recommendation for this view")

	// Session errors
	ErrSuperseded      = errors.New("run superseded by a newer run")
	ErrUnknownRun      = errors.New("unknown run token")
	ErrPageOutOfRange  = errors.New("page out of range")
	ErrSessionClosed   = errors.New("session closed")
	ErrInvalidOverride = errors.New("invalid visual override")
)
