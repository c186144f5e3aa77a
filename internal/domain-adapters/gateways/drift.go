package gateways

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// ErrDrift is returned when a generated file no longer matches its source
var ErrDrift = errors.New("generated output is out of date")

// DriftChecker compares generated output with a file on disk
type DriftChecker struct {
	dmp *diffmatchpatch.DiffMatchPatch
}

// NewDriftChecker creates a new drift checker
func NewDriftChecker() *DriftChecker {
	return &DriftChecker{dmp: diffmatchpatch.New()}
}

// Check returns a line diff and ErrDrift when path differs from want.
// A missing file counts as drift.
func (c *DriftChecker) Check(path string, want []byte) (string, error) {
	//nolint:gosec // G304: path is the render target chosen by the user
	got, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	if bytes.Equal(got, want) {
		return "", nil
	}
	return c.Diff(string(got), string(want)), fmt.Errorf("%w: %s", ErrDrift, path)
}

// Diff renders a line-oriented diff with "-" and "+" markers
func (c *DriftChecker) Diff(current, want string) string {
	a, b, lines := c.dmp.DiffLinesToChars(current, want)
	diffs := c.dmp.DiffCharsToLines(c.dmp.DiffMain(a, b, false), lines)

	var out strings.Builder
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			out.WriteString(prefix)
			out.WriteString(line)
			if !strings.HasSuffix(line, "\n") {
				out.WriteString("\n")
			}
		}
	}
	return out.String()
}
