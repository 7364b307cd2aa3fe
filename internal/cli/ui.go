package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	mcerrors "github.com/PrismLauncher/mcmeta/pkg/errors"
	"github.com/PrismLauncher/mcmeta/pkg/syncer"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	StyleDim     = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	StyleNumber  = lipgloss.NewStyle().Foreground(colorCyan)
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleSource      = lipgloss.NewStyle().Bold(true).Width(8)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// maxFailureLines caps the failures listed per source.
const maxFailureLines = 10

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printWarning(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

// printDetail prints a detail line (indented).
func printDetail(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printKeyValue prints a labeled value.
func printKeyValue(w io.Writer, key, value string) {
	fmt.Fprintln(w, styleKey.Render(key)+" "+StyleValue.Render(value))
}

// =============================================================================
// Sync Summary
// =============================================================================

// summary is the outcome of one source, ready for display.
type summary struct {
	Source   string
	Results  []*syncer.Result
	Notes    []string
	Duration time.Duration
	Err      error
}

func (s *summary) failures() []syncer.Failure {
	var out []syncer.Failure
	for _, r := range s.Results {
		if r != nil {
			out = append(out, r.Failures...)
		}
	}
	return out
}

func (s *summary) count(f func(*syncer.Result) int) int {
	n := 0
	for _, r := range s.Results {
		if r != nil {
			n += f(r)
		}
	}
	return n
}

// printSummary renders one line per source followed by its failures.
func printSummary(w io.Writer, s *summary) {
	failures := s.failures()
	synced := s.count(func(r *syncer.Result) int { return len(r.Succeeded) })
	skipped := s.count(func(r *syncer.Result) int { return len(r.Skipped) })

	icon := styleIconSuccess.Render(iconSuccess)
	switch {
	case s.Err != nil:
		icon = styleIconError.Render(iconError)
	case len(failures) > 0 || skipped > 0:
		icon = styleIconWarning.Render(iconWarning)
	}

	parts := []string{
		StyleNumber.Render(fmt.Sprint(synced)) + " synced",
		StyleNumber.Render(fmt.Sprint(len(failures))) + " failed" + classBreakdown(s),
	}
	if skipped > 0 {
		parts = append(parts, StyleNumber.Render(fmt.Sprint(skipped))+" skipped")
	}
	parts = append(parts, s.Notes...)
	parts = append(parts, s.Duration.Round(time.Millisecond).String())
	fmt.Fprintln(w, icon+" "+styleSource.Render(s.Source)+" "+strings.Join(parts, StyleDim.Render(" · ")))

	for i, f := range failures {
		if i == maxFailureLines {
			printDetail(w, "... and %d more", len(failures)-maxFailureLines)
			break
		}
		printDetail(w, "%s %s [%s] %s", iconArrow, f.Record.ID, f.Class, mcerrors.UserMessage(f.Err))
	}
	if s.Err != nil {
		printDetail(w, "%s %s", iconArrow, mcerrors.UserMessage(s.Err))
	}
}

func classBreakdown(s *summary) string {
	var parts []string
	for _, c := range []mcerrors.Class{mcerrors.Transient, mcerrors.DataError, mcerrors.Fatal} {
		if n := s.count(func(r *syncer.Result) int { return r.Count(c) }); n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, c))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return StyleDim.Render(" (" + strings.Join(parts, ", ") + ")")
}
