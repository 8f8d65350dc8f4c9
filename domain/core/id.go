package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// RunToken identifies one invocation of a background pipeline run.
// Tokens are time-ordered but the session orders runs by Seq, not by token text.
type RunToken struct {
	ID  string `json:"id"`
	Seq uint64 `json:"seq"`
}

// NewRunToken creates a token for the seq-th initiated run using UUID v7
func NewRunToken(seq uint64) RunToken {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return RunToken{ID: id.String(), Seq: seq}
}

// IsEmpty checks if the token was never issued
func (t RunToken) IsEmpty() bool {
	return t.ID == ""
}

// Newer reports whether t was initiated after other
func (t RunToken) Newer(other RunToken) bool {
	return t.Seq > other.Seq
}

func (t RunToken) String() string {
	if t.IsEmpty() {
		return "run(none)"
	}
	short := t.ID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("run(%d:%s)", t.Seq, short)
}

// ParseRunToken parses the textual id of a token. Seq is unknown and left zero.
func ParseRunToken(s string) (RunToken, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return RunToken{}, fmt.Errorf("run token cannot be empty")
	}
	if _, err := uuid.Parse(s); err != nil {
		return RunToken{}, fmt.Errorf("invalid run token %q: %w", s, err)
	}
	return RunToken{ID: s}, nil
}
