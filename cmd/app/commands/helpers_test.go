package commands

import (
	"bufio"
	"bytes"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseExpiry(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected *time.Time
		wantErr  bool
	}{
		{name: "never", input: "never", expected: nil},
		{name: "never-uppercase", input: " NEVER ", expected: nil},
		{
			name:     "date-only",
			input:    "2030-06-15",
			expected: timePtr(time.Date(2030, 6, 15, 0, 0, 0, 0, time.UTC)),
		},
		{
			name:     "rfc3339",
			input:    "2030-06-15T12:30:00Z",
			expected: timePtr(time.Date(2030, 6, 15, 12, 30, 0, 0, time.UTC)),
		},
		{name: "invalid", input: "next year", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseExpiry(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.expected == nil {
				assert.Nil(t, result)
				return
			}
			require.NotNil(t, result)
			assert.True(t, tt.expected.Equal(*result))
		})
	}
}

func TestPrompt(t *testing.T) {
	t.Run("reads-lines", func(t *testing.T) {
		var out bytes.Buffer
		reader := bufio.NewReader(strings.NewReader("first\r\nsecond\n"))

		first, err := prompt(reader, &out, "A: ")
		require.NoError(t, err)
		second, err := prompt(reader, &out, "B: ")
		require.NoError(t, err)

		assert.Equal(t, "first", first)
		assert.Equal(t, "second", second)
		assert.Equal(t, "A: B: ", out.String())
	})

	t.Run("final-line-without-newline", func(t *testing.T) {
		reader := bufio.NewReader(strings.NewReader("last"))
		line, err := prompt(reader, io.Discard, "")
		require.NoError(t, err)
		assert.Equal(t, "last", line)
	})

	t.Run("eof", func(t *testing.T) {
		reader := bufio.NewReader(strings.NewReader(""))
		_, err := prompt(reader, io.Discard, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read input")
	})
}

func TestValidateFormat(t *testing.T) {
	assert.NoError(t, validateFormat("text"))
	assert.NoError(t, validateFormat("json"))
	assert.Error(t, validateFormat("yaml"))
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestPromptSecret(t *testing.T) {
	t.Run("reader-input", func(t *testing.T) {
		var out bytes.Buffer
		in := IOTuple{Reader: strings.NewReader("Str0ng!Pass\r\nnext\n"), Writer: &out}
		reader := bufio.NewReader(in.Reader)

		secret, err := promptSecret(reader, in, "Password: ")
		require.NoError(t, err)
		assert.Equal(t, "Str0ng!Pass", secret)
		assert.Equal(t, "Password: ", out.String())

		next, err := prompt(reader, &out, "")
		require.NoError(t, err)
		assert.Equal(t, "next", next)
	})

	t.Run("file-that-is-not-a-terminal", func(t *testing.T) {
		file, err := os.CreateTemp(t.TempDir(), "stdin")
		require.NoError(t, err)
		t.Cleanup(func() { _ = file.Close() })
		_, err = file.WriteString("Str0ng!Pass\n")
		require.NoError(t, err)
		_, err = file.Seek(0, io.SeekStart)
		require.NoError(t, err)

		var out bytes.Buffer
		in := IOTuple{Reader: file, Writer: &out}

		secret, err := promptSecret(bufio.NewReader(file), in, "Password: ")
		require.NoError(t, err)
		assert.Equal(t, "Str0ng!Pass", secret)
	})

	t.Run("empty-input", func(t *testing.T) {
		in := IOTuple{Reader: strings.NewReader(""), Writer: &bytes.Buffer{}}

		_, err := promptSecret(bufio.NewReader(in.Reader), in, "Password: ")
		require.Error(t, err)
	})
}
