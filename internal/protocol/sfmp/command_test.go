package sfmp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("GetWithTwoArgs", func(t *testing.T) {
		cmd, err := Parse("GET ./remote/b.txt ./local/c.txt")
		require.NoError(t, err)
		assert.Equal(t, HeaderGet, cmd.Header())
		assert.Equal(t, []string{"./remote/b.txt", "./local/c.txt"}, cmd.Args())
	})

	t.Run("HeaderIsCaseNormalized", func(t *testing.T) {
		cmd, err := Parse("put a b")
		require.NoError(t, err)
		assert.Equal(t, HeaderPut, cmd.Header())
		assert.Equal(t, "PUT a b", cmd.String())
	})

	t.Run("LsWithOneArg", func(t *testing.T) {
		cmd, err := Parse("Ls server")
		require.NoError(t, err)
		assert.Equal(t, HeaderLS, cmd.Header())
		assert.Equal(t, "server", cmd.Arg(0))
	})

	t.Run("TrailingTerminatorIgnored", func(t *testing.T) {
		cmd, err := Parse("LS server\r\n")
		require.NoError(t, err)
		assert.Equal(t, "server", cmd.Arg(0))
	})

	t.Run("EmptyLine", func(t *testing.T) {
		_, err := Parse("")
		assert.ErrorIs(t, err, ErrEmptyCommand)
		assert.True(t, IsMalformed(err))
	})

	t.Run("UnknownHeader", func(t *testing.T) {
		_, err := Parse("DELETE a")
		assert.ErrorIs(t, err, ErrUnknownHeader)
		assert.True(t, IsMalformed(err))
	})

	t.Run("DoubleSpaceCountsAsEmptyArgument", func(t *testing.T) {
		_, err := Parse("GET  a b")
		assert.ErrorIs(t, err, ErrArity)
	})
}

func TestParse_Arity(t *testing.T) {
	tests := []struct {
		line  string
		valid bool
	}{
		{"GET", false},
		{"GET a", false},
		{"GET a b", true},
		{"GET a b c", false},
		{"PUT", false},
		{"PUT a", false},
		{"PUT a b", true},
		{"PUT a b c", false},
		{"LS", false},
		{"LS server", true},
		{"LS server extra", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			_, err := Parse(tt.line)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrArity)
			}
		})
	}
}

func TestNewCommand(t *testing.T) {
	cmd, err := NewCommand(HeaderPut, "a.txt", "b.txt")
	require.NoError(t, err)
	assert.Equal(t, "PUT a.txt b.txt\n", cmd.Encode())

	_, err = NewCommand(HeaderLS)
	assert.ErrorIs(t, err, ErrArity)

	_, err = NewCommand(HeaderGet, "with space", "b")
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = NewCommand(HeaderUnknown, "a")
	assert.ErrorIs(t, err, ErrUnknownHeader)
}

func TestCommand_ArgsIsCopy(t *testing.T) {
	cmd, err := Parse("GET a b")
	require.NoError(t, err)

	args := cmd.Args()
	args[0] = "mutated"
	assert.Equal(t, "a", cmd.Arg(0))
	assert.Equal(t, "", cmd.Arg(5))
}

func TestHeader(t *testing.T) {
	assert.Equal(t, 2, HeaderGet.Arity())
	assert.Equal(t, 2, HeaderPut.Arity())
	assert.Equal(t, 1, HeaderLS.Arity())
	assert.Equal(t, -1, HeaderUnknown.Arity())
	assert.Equal(t, "UNKNOWN", HeaderUnknown.String())

	for _, h := range Headers() {
		parsed, ok := ParseHeader(h.String())
		require.True(t, ok)
		assert.Equal(t, h, parsed)
	}
}

func TestParseVerdict(t *testing.T) {
	v, err := ParseVerdict("VALID")
	require.NoError(t, err)
	assert.Equal(t, Valid, v)

	v, err = ParseVerdict("INVALID")
	require.NoError(t, err)
	assert.Equal(t, Invalid, v)

	_, err = ParseVerdict("valid")
	assert.ErrorIs(t, err, ErrUnexpectedToken)
}
