package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Status string   `json:"status" yaml:"status"`
	Bytes  int64    `json:"bytes" yaml:"bytes"`
	Files  []string `json:"files,omitempty" yaml:"files,omitempty"`
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintJSON(&buf, entry{Status: "ok", Bytes: 42}))

	out := buf.String()
	assert.Contains(t, out, `"status": "ok"`)
	assert.Contains(t, out, `"bytes": 42`)
	assert.NotContains(t, out, "files")
}

func TestPrintYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintYAML(&buf, entry{Status: "ok", Files: []string{"a", "b"}}))

	out := buf.String()
	assert.Contains(t, out, "status: ok")
	assert.Contains(t, out, "files:\n  - a\n  - b")
}

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, FormatYAML, entry{Status: "ok"}))
	assert.Contains(t, buf.String(), "status: ok")

	buf.Reset()
	require.NoError(t, Encode(&buf, FormatJSON, entry{Status: "ok"}))
	assert.Contains(t, buf.String(), `"status": "ok"`)

	assert.Error(t, Encode(&buf, FormatTable, entry{}))
}
