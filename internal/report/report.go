// Package report renders context-usage reports as markdown.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/MarianaDuarte/focal/internal/catalog"
	"github.com/MarianaDuarte/focal/internal/engine"
	"github.com/MarianaDuarte/focal/internal/relevance"
	"github.com/MarianaDuarte/focal/internal/selector"
)

// topItems is how many of the highest-scored selections the report
// lists individually.
const topItems = 10

// Render produces a markdown usage report for one optimization result.
func Render(res *engine.Result, p relevance.Profile) string {
	ws := res.WorkingSet
	usage := 0.0
	if p.CapacityBudget > 0 {
		usage = float64(ws.TotalSize) / float64(p.CapacityBudget) * 100
	}

	var b strings.Builder
	b.WriteString("# Context Usage Report\n\n")

	b.WriteString("## Summary\n")
	fmt.Fprintf(&b, "- Selected items: %d\n", len(ws.Items))
	fmt.Fprintf(&b, "- Total size: %s bytes\n", humanize.Comma(ws.TotalSize))
	fmt.Fprintf(&b, "- Capacity budget: %s bytes\n", humanize.Comma(p.CapacityBudget))
	fmt.Fprintf(&b, "- Usage: %.1f%%\n", usage)
	fmt.Fprintf(&b, "- Dropped for budget: %d\n", ws.DroppedCount)
	fmt.Fprintf(&b, "- Status: %s\n\n", verdictLabel(res.Verdict))

	b.WriteString("## By kind\n")
	for _, line := range kindBreakdown(ws) {
		b.WriteString(line)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## Top %d most relevant\n", topItems)
	for i, it := range topByScore(ws, res.Scores) {
		marker := ""
		if p.Pinned(it.ID) {
			marker = " (pinned)"
		}
		fmt.Fprintf(&b, "%d. %s — score %.3f, %s bytes%s\n",
			i+1, it.ID, res.Scores[it.ID], humanize.Comma(it.SizeBytes), marker)
	}

	if len(res.Degraded) > 0 {
		b.WriteString("\n## Degraded items\n")
		for _, id := range res.Degraded {
			fmt.Fprintf(&b, "- %s\n", id)
		}
	}

	return b.String()
}

func verdictLabel(v selector.Verdict) string {
	switch v {
	case selector.VerdictWarn:
		return "approaching limit"
	case selector.VerdictOver:
		return "OVER BUDGET"
	default:
		return "normal"
	}
}

func kindBreakdown(ws *selector.WorkingSet) []string {
	type agg struct {
		count int
		size  int64
	}
	byKind := make(map[catalog.Kind]*agg)
	for _, it := range ws.Items {
		a := byKind[it.Kind]
		if a == nil {
			a = &agg{}
			byKind[it.Kind] = a
		}
		a.count++
		a.size += it.SizeBytes
	}

	kinds := make([]string, 0, len(byKind))
	for k := range byKind {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)

	lines := make([]string, 0, len(kinds))
	for _, k := range kinds {
		a := byKind[catalog.Kind(k)]
		lines = append(lines, fmt.Sprintf("- %s: %d items, %s bytes\n", k, a.count, humanize.Comma(a.size)))
	}
	if len(lines) == 0 {
		lines = append(lines, "- (empty working set)\n")
	}
	return lines
}

func topByScore(ws *selector.WorkingSet, scores map[string]float64) []catalog.Item {
	items := make([]catalog.Item, len(ws.Items))
	copy(items, ws.Items)
	sort.Slice(items, func(i, j int) bool {
		si, sj := scores[items[i].ID], scores[items[j].ID]
		if si != sj {
			return si > sj
		}
		return items[i].ID < items[j].ID
	})
	if len(items) > topItems {
		items = items[:topItems]
	}
	return items
}
