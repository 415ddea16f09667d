package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/scenekit/internal/ir"
	"github.com/roach88/scenekit/internal/testutil"
)

var (
	// siteManifest references an unregistered prefab, so it renders with a
	// placeholder but fails validation.
	siteManifest = filepath.Join("..", "harness", "testdata", "manifests", "site.yaml")
	scenariosDir = filepath.Join("..", "harness", "testdata", "scenarios")
)

// writeManifest writes m as JSON into a temp dir and returns its path.
func writeManifest(t *testing.T, m *ir.Manifest) string {
	t.Helper()
	data, err := ir.MarshalCanonical(m)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "sample.json")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func sampleManifestPath(t *testing.T) string {
	t.Helper()
	return writeManifest(t, testutil.SampleManifest())
}

func execute(cmd *cobra.Command, args ...string) (string, error) {
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// decodeResponse parses a JSON envelope and decodes its data into data.
func decodeResponse(t *testing.T, out string, data any) CLIResponse {
	t.Helper()
	var raw struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
		Error  *CLIError       `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &raw), "output: %s", out)
	if data != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return CLIResponse{Status: raw.Status, Error: raw.Error}
}
