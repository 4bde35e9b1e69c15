package selector

import "github.com/MarianaDuarte/focal/internal/relevance"

// Verdict is the monitor's health assessment of a working set.
type Verdict string

const (
	// VerdictOK means the working set sits comfortably inside budget.
	VerdictOK Verdict = "ok"
	// VerdictWarn means total size reached the warn threshold; callers
	// should consider shrinking the budget and re-selecting.
	VerdictWarn Verdict = "warn"
	// VerdictOver means the budget invariant was violated. Unreachable
	// for working sets produced by Select; checked defensively.
	VerdictOver Verdict = "over"
)

// Check inspects a working set against the profile's thresholds. It is
// purely advisory and has no side effects — the caller decides whether
// to tighten the budget and re-invoke the selector.
func Check(ws *WorkingSet, p relevance.Profile) Verdict {
	switch {
	case ws.TotalSize > p.CapacityBudget:
		return VerdictOver
	case float64(ws.TotalSize) >= float64(p.CapacityBudget)*p.WarnThreshold:
		return VerdictWarn
	default:
		return VerdictOK
	}
}
