package log

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"trace", LevelTrace},
		{"DEBUG", LevelTrace},
		{"info", LevelInfo},
		{" warn ", LevelWarning},
		{"error", LevelError},
		{"", LevelInfo},
		{"bogus", LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}

func TestInitFiltersBelowLevel(t *testing.T) {
	defer Init(os.Stderr, LevelInfo)

	var buf bytes.Buffer
	Init(&buf, LevelWarning)

	Trace.Println("trace line")
	Info.Println("info line")
	Warning.Println("warning line")
	Error.Println("error line")

	out := buf.String()
	assert.NotContains(t, out, "trace line")
	assert.NotContains(t, out, "info line")
	assert.Contains(t, out, "WARNING: ")
	assert.Contains(t, out, "error line")
}
