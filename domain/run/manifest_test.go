package run

import (
	"errors"
	"testing"

	"goinsight/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprintDeterministic(t *testing.T) {
	fp1 := NewFingerprint("dataset", "", 5)
	fp2 := NewFingerprint("dataset", "", 5)
	assert.Equal(t, fp1, fp2)

	assert.NotEqual(t, fp1.Fingerprint, NewFingerprint("dataset", "", 4).Fingerprint)
	assert.NotEqual(t, fp1.Fingerprint, NewFingerprint("other", "", 5).Fingerprint)
	assert.NotEqual(t, fp1.Fingerprint, NewFingerprint("dataset", "subspaces", 5).Fingerprint)
}

func TestManifestLifecycle(t *testing.T) {
	m := NewManifest(core.NewRunToken(1), KindFull, NewFingerprint("dataset", "", 5))
	require.NoError(t, m.Validate())
	assert.False(t, m.Done())

	m.Finish(StatusReady, 40, 5, nil)
	assert.True(t, m.Done())
	assert.Equal(t, 40, m.Subspaces)
	assert.Empty(t, m.Error)
	assert.GreaterOrEqual(t, m.Duration().Nanoseconds(), int64(0))
	require.NoError(t, m.Validate())
}

func TestManifestValidate(t *testing.T) {
	m := NewManifest(core.RunToken{}, KindFull, NewFingerprint("d", "", 5))
	assert.Error(t, m.Validate())

	m = NewManifest(core.NewRunToken(1), Kind("partial"), NewFingerprint("d", "", 5))
	assert.Error(t, m.Validate())

	m = NewManifest(core.NewRunToken(1), KindRecluster, NewFingerprint("d", "", 0))
	assert.Error(t, m.Validate())

	m = NewManifest(core.NewRunToken(1), KindFull, NewFingerprint("d", "", 5))
	m.Finish(StatusFailed, 0, 0, errors.New("boom"))
	assert.NoError(t, m.Validate())
	assert.Equal(t, "boom", m.Error)
}
