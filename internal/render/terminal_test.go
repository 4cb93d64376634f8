// internal/render/terminal_test.go
package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/ec-probe/internal/classify"
	"github.com/tamzrod/ec-probe/internal/snapshot"
)

func TestGridLayoutPlain(t *testing.T) {
	var s snapshot.Snapshot
	s[0x00] = 0xAB
	s[0x1F] = 0xFF

	var buf bytes.Buffer
	term := New(&buf, WithProfile(termenv.Ascii))
	require.NoError(t, term.Dump(classify.Static(s)))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3+16)
	assert.Equal(t, "   | 00 01 02 03 04 05 06 07 08 09 0A 0B 0C 0D 0E 0F", lines[1])
	assert.True(t, strings.HasPrefix(lines[3], "00 | AB 00"), lines[3])
	assert.True(t, strings.HasSuffix(lines[4], " FF"), lines[4])
	assert.True(t, strings.HasPrefix(lines[18], "F0 |"), lines[18])
}

func TestMonitorLinesPlain(t *testing.T) {
	trends := []classify.Trend{{
		Addr: 0x09,
		Samples: []classify.Cell{
			{Addr: 0x09, Value: 0x10, Tag: classify.Unchanged},
			{Addr: 0x09, Value: 0x11, Tag: classify.ChangedNow},
		},
	}}

	var buf bytes.Buffer
	term := New(&buf, WithProfile(termenv.Ascii))
	require.NoError(t, term.Monitor(1, trends))
	assert.Equal(t, "0x09: 10 11\n", buf.String())
}

func TestWatchUsesColors(t *testing.T) {
	var previous, current snapshot.Snapshot
	current[5] = 0x01

	var buf bytes.Buffer
	term := New(&buf, WithProfile(termenv.ANSI))
	require.NoError(t, term.Watch(1, classify.Watch(current, previous, nil)))

	assert.Contains(t, buf.String(), "\x1b[33m01")
}

func TestMonitorClearsScreen(t *testing.T) {
	var buf bytes.Buffer
	term := New(&buf, WithProfile(termenv.Ascii), WithClear(true))
	require.NoError(t, term.Monitor(0, nil))
	assert.Contains(t, buf.String(), "\x1b[2J")
}
