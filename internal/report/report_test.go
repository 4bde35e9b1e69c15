package report

import (
	"strings"
	"testing"

	"github.com/MarianaDuarte/focal/internal/catalog"
	"github.com/MarianaDuarte/focal/internal/engine"
	"github.com/MarianaDuarte/focal/internal/relevance"
	"github.com/MarianaDuarte/focal/internal/selector"
)

func sampleResult() (*engine.Result, relevance.Profile) {
	items := []catalog.Item{
		{ID: "specs/plan.md", Kind: catalog.KindSpec, SizeBytes: 2000},
		{ID: "main.go", Kind: catalog.KindSourceCode, SizeBytes: 1500},
		{ID: "docs/setup.md", Kind: catalog.KindProductDoc, SizeBytes: 500},
	}
	p := relevance.NewProfile("plan the rollout", []string{"main.go"}, 10000)

	return &engine.Result{
		SnapshotID: "snap-1",
		WorkingSet: &selector.WorkingSet{
			Items:        items,
			TotalSize:    4000,
			TotalScore:   1.2,
			DroppedCount: 3,
		},
		Verdict: selector.VerdictOK,
		Scores: map[string]float64{
			"specs/plan.md": 0.9,
			"main.go":       0.2,
			"docs/setup.md": 0.1,
		},
	}, p
}

func TestRender(t *testing.T) {
	res, p := sampleResult()
	out := Render(res, p)

	for _, want := range []string{
		"# Context Usage Report",
		"- Selected items: 3",
		"- Total size: 4,000 bytes",
		"- Capacity budget: 10,000 bytes",
		"- Usage: 40.0%",
		"- Dropped for budget: 3",
		"- Status: normal",
		"## By kind",
		"- spec: 1 items, 2,000 bytes",
		"- source-code: 1 items, 1,500 bytes",
		"## Top 10 most relevant",
		"1. specs/plan.md",
		"(pinned)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q\n---\n%s", want, out)
		}
	}

	// Items are listed in score order, pinned marker only on the pin.
	if strings.Index(out, "specs/plan.md") > strings.Index(out, "2. main.go") {
		t.Error("top items not in score order")
	}
	if strings.Contains(out, "specs/plan.md — score 0.900, 2,000 bytes (pinned)") {
		t.Error("pinned marker applied to an unpinned item")
	}
	if strings.Contains(out, "## Degraded items") {
		t.Error("degraded section rendered with no degraded items")
	}
}

func TestRender_VerdictLabels(t *testing.T) {
	res, p := sampleResult()

	res.Verdict = selector.VerdictWarn
	if out := Render(res, p); !strings.Contains(out, "- Status: approaching limit") {
		t.Error("warn verdict not labeled")
	}

	res.Verdict = selector.VerdictOver
	if out := Render(res, p); !strings.Contains(out, "- Status: OVER BUDGET") {
		t.Error("over verdict not labeled")
	}
}

func TestRender_DegradedSection(t *testing.T) {
	res, p := sampleResult()
	res.Degraded = []string{"blob.bin", "broken.go"}

	out := Render(res, p)
	if !strings.Contains(out, "## Degraded items") {
		t.Fatal("missing degraded section")
	}
	if !strings.Contains(out, "- blob.bin") || !strings.Contains(out, "- broken.go") {
		t.Error("degraded IDs not listed")
	}
}

func TestRender_EmptyWorkingSet(t *testing.T) {
	p := relevance.NewProfile("task", nil, 10000)
	res := &engine.Result{
		SnapshotID: "snap-1",
		WorkingSet: &selector.WorkingSet{},
		Verdict:    selector.VerdictOK,
	}

	out := Render(res, p)
	if !strings.Contains(out, "- (empty working set)") {
		t.Error("empty working set not reported")
	}
	if !strings.Contains(out, "- Usage: 0.0%") {
		t.Error("usage not zero for empty set")
	}
}
