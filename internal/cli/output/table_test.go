package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableData(t *testing.T) {
	table := NewTableData("Address", "State", "Commands")

	assert.Equal(t, []string{"Address", "State", "Commands"}, table.Headers())
	assert.Empty(t, table.Rows())

	table.AddRow("127.0.0.1:50000", "idle", "3")
	table.AddRow("127.0.0.1:50001", "transferring", "1")

	rows := table.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"127.0.0.1:50000", "idle", "3"}, rows[0])
	assert.Equal(t, []string{"127.0.0.1:50001", "transferring", "1"}, rows[1])
}

func TestPrintTable(t *testing.T) {
	table := NewTableData("Address", "State")
	table.AddRow("127.0.0.1:50000", "idle")
	table.AddRow("127.0.0.1:50001", "validating")

	var buf bytes.Buffer
	require.NoError(t, PrintTable(&buf, table))

	out := buf.String()
	assert.Contains(t, out, "ADDRESS")
	assert.Contains(t, out, "STATE")
	assert.Contains(t, out, "127.0.0.1:50000")
	assert.Contains(t, out, "validating")
}

func TestSimpleTable(t *testing.T) {
	pairs := [][2]string{
		{"Address", "0.0.0.0:57005"},
		{"Connections", "2"},
	}

	var buf bytes.Buffer
	require.NoError(t, SimpleTable(&buf, pairs))

	out := buf.String()
	assert.Contains(t, out, "Address")
	assert.Contains(t, out, "0.0.0.0:57005")
	assert.Contains(t, out, "Connections")
	assert.NotContains(t, out, "ADDRESS")
}
