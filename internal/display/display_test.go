package display

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mars-robotics/buildseq/internal/sequence"
)

func TestPrintPlanRendersTableAndSummary(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewPrinter(buf)

	rows := []sequence.Row{
		{UID: "g1", Type: "MOVE", Description: "move to rail", Assets: []sequence.AssetRow{{UID: "a1"}}},
	}
	p.PrintPlan("work", rows)

	out := buf.String()
	require.Contains(t, out, "g1")
	require.Contains(t, out, "MOVE")
	require.Contains(t, out, "1 actions built for work")
}

func TestPrintPlanHandlesEmptySequence(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewPrinter(buf)

	p.PrintPlan("work", nil)

	require.Contains(t, buf.String(), "already at goal")
}

func TestPrintErrorRendersMessage(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewPrinter(buf)

	p.PrintError("work", errors.New("boom"))

	require.True(t, strings.Contains(buf.String(), "work failed: boom"))
}

func TestNewPrinterDisablesColorForNonFileWriter(t *testing.T) {
	p := NewPrinter(&bytes.Buffer{})
	require.False(t, p.useColor)
}
