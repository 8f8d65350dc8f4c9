package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"goinsight/domain/dataset"
	"goinsight/domain/insight"
	"goinsight/internal/session"
	"goinsight/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "ERROR")
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeRetailCSV(t *testing.T) string {
	t.Helper()
	ds := testkit.NewTestKit().RetailDataset()
	path := filepath.Join(t.TempDir(), "retail.csv")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := csv.NewWriter(f)
	header := make([]string, len(ds.Fields))
	for i, field := range ds.Fields {
		header[i] = field.Name
	}
	require.NoError(t, w.Write(header))
	for _, rec := range ds.Records {
		row := make([]string, len(ds.Fields))
		for i, field := range ds.Fields {
			row[i], _ = dataset.ValueKey(rec[field.Name])
		}
		require.NoError(t, w.Write(row))
	}
	w.Flush()
	require.NoError(t, w.Error())
	return path
}

func TestProfile(t *testing.T) {
	out, err := run(t, "profile", writeRetailCSV(t))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "FIELD"))
	assert.Contains(t, out, "region")
	assert.Contains(t, out, "sales(bin)")
	assert.Contains(t, out, "grouped")
}

func TestProfileJSON(t *testing.T) {
	out, err := run(t, "profile", writeRetailCSV(t), "--json")
	require.NoError(t, err)

	var set insight.SummarySet
	require.NoError(t, json.Unmarshal([]byte(out), &set))
	assert.Len(t, set.Origin, len(testkit.RetailFields))
}

func TestSubspacesTop(t *testing.T) {
	out, err := run(t, "subspaces", writeRetailCSV(t), "--top", "3", "--json")
	require.NoError(t, err)

	var subspaces []insight.Subspace
	require.NoError(t, json.Unmarshal([]byte(out), &subspaces))
	require.Len(t, subspaces, 3)
	assert.GreaterOrEqual(t, subspaces[0].Score, subspaces[2].Score)
}

func TestSubspacesYAML(t *testing.T) {
	path := writeRetailCSV(t)
	out, err := run(t, "subspaces", path, "--top", "2", "--yaml")
	require.NoError(t, err)

	var subspaces []insight.Subspace
	require.NoError(t, yaml.Unmarshal([]byte(out), &subspaces))
	require.Len(t, subspaces, 2)
	assert.NotEmpty(t, subspaces[0].Dimensions)

	_, err = run(t, "subspaces", path, "--json", "--yaml")
	assert.Error(t, err)
}

func TestRecommend(t *testing.T) {
	path := writeRetailCSV(t)

	out, err := run(t, "recommend", path, "--max-groups", "3", "--page", "2", "--json")
	require.NoError(t, err)
	var snap session.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.Equal(t, 1, snap.Page)
	assert.LessOrEqual(t, snap.PageCount, 3)
	assert.Equal(t, 3, snap.MaxGroupNumber)

	out, err = run(t, "recommend", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Page No. 1 of"))
	assert.Contains(t, out, "geometry")
}

func TestRecommendRejectsBadInput(t *testing.T) {
	path := writeRetailCSV(t)

	_, err := run(t, "recommend", path, "--max-groups", "0")
	assert.Error(t, err)

	_, err = run(t, "recommend", path, "--page", "40")
	assert.Error(t, err)

	_, err = run(t, "recommend", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestDemoReport(t *testing.T) {
	out, err := run(t, "demo", "--report")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "# retail\n"))
	assert.Contains(t, out, "## Recommended view")
}
