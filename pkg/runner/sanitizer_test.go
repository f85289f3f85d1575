package runner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeInput_SizeLimit(t *testing.T) {
	_, err := SanitizeInput(strings.Repeat("a", DefaultMaxInputSize))
	assert.NoError(t, err)

	_, err = SanitizeInput(strings.Repeat("a", DefaultMaxInputSize+1))
	assert.ErrorIs(t, err, ErrInputTooLarge)

	t.Setenv(EnvMaxInputSize, "10")
	assert.Equal(t, 10, MaxInputSize())
	_, err = SanitizeInput("git status")
	assert.NoError(t, err)
	_, err = SanitizeInput("git status -s")
	assert.ErrorIs(t, err, ErrInputTooLarge)

	t.Setenv(EnvMaxInputSize, "lots")
	assert.Equal(t, DefaultMaxInputSize, MaxInputSize(), "unparsable override is ignored")
}

func TestSanitizeInput_Cleaning(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain command", "ls -la", "ls -la"},
		{"unicode", "echo héllo ✓", "echo héllo ✓"},
		{"colour codes", "\x1b[31mgit\x1b[0m status", "git status"},
		{"window title", "\x1b]0;pwned\x07whoami", "whoami"},
		{"tabs and newlines", "echo\ta\r\nb", "echo a  b"},
		{"null and bell", "ca\x00t\x07 file", "cat file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeInput(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizeInput_InvalidUTF8(t *testing.T) {
	_, err := SanitizeInput("ls \xbd\xb2")
	assert.ErrorIs(t, err, ErrInvalidUTF8)
}
