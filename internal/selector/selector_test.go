package selector

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/MarianaDuarte/focal/internal/catalog"
	"github.com/MarianaDuarte/focal/internal/relevance"
)

// fixture builds a snapshot from (id, size) pairs.
func fixture(t *testing.T, sizes map[string]int64) *catalog.Snapshot {
	t.Helper()
	items := make([]catalog.Item, 0, len(sizes))
	for id, size := range sizes {
		items = append(items, catalog.Item{
			ID:        id,
			Kind:      catalog.KindSourceCode,
			SizeBytes: size,
			Digest:    "digest-" + id,
		})
	}
	return catalog.NewSnapshot("snap-1", "/tmp/scope", time.Unix(0, 0), items)
}

func profileWith(budget int64, pins ...string) relevance.Profile {
	p := relevance.NewProfile("test task", pins, budget)
	return p
}

func TestSelect_GreedyUnderBudget(t *testing.T) {
	// Scenario: one large high-score item fills the budget exactly;
	// everything else is dropped.
	snap := fixture(t, map[string]int64{"a": 100, "b": 50, "c": 50})
	scores := map[string]float64{"a": 3, "b": 2, "c": 2}

	ws, err := Select(snap, scores, profileWith(100))
	if err != nil {
		t.Fatalf("Select: %v", err)
	}

	if got := ws.IDs(); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("selected = %v, want [a]", got)
	}
	if ws.TotalSize != 100 {
		t.Errorf("TotalSize = %d, want 100", ws.TotalSize)
	}
	if ws.DroppedCount != 2 {
		t.Errorf("DroppedCount = %d, want 2", ws.DroppedCount)
	}
}

func TestSelect_PinsForcedInFirst(t *testing.T) {
	// Scenario: c is pinned (size 50), leaving 100 for the greedy
	// pass: a (100) fits, b (50) does not.
	snap := fixture(t, map[string]int64{"a": 100, "b": 50, "c": 50})
	scores := map[string]float64{"a": 3, "b": 2, "c": 2}

	ws, err := Select(snap, scores, profileWith(150, "c"))
	if err != nil {
		t.Fatalf("Select: %v", err)
	}

	if got := ws.IDs(); !reflect.DeepEqual(got, []string{"c", "a"}) {
		t.Errorf("selected = %v, want [c a]", got)
	}
	if ws.TotalSize != 150 {
		t.Errorf("TotalSize = %d, want 150", ws.TotalSize)
	}
	if ws.DroppedCount != 1 {
		t.Errorf("DroppedCount = %d, want 1", ws.DroppedCount)
	}
}

func TestSelect_PinIncludedEvenAtZeroScore(t *testing.T) {
	snap := fixture(t, map[string]int64{"a": 10, "b": 10})
	scores := map[string]float64{"a": 5, "b": 0}

	ws, err := Select(snap, scores, profileWith(10, "b"))
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got := ws.IDs(); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("selected = %v, want [b]", got)
	}
}

func TestSelect_BudgetExceededByPins(t *testing.T) {
	snap := fixture(t, map[string]int64{"a": 100, "b": 60})
	scores := map[string]float64{"a": 1, "b": 1}

	ws, err := Select(snap, scores, profileWith(120, "a", "b"))
	if ws != nil {
		t.Fatal("expected no working set when pins exceed budget")
	}

	var pinErr *BudgetExceededByPinsError
	if !errors.As(err, &pinErr) {
		t.Fatalf("error = %v, want BudgetExceededByPinsError", err)
	}
	if pinErr.PinnedSize != 160 || pinErr.Budget != 120 {
		t.Errorf("error fields = %d/%d, want 160/120", pinErr.PinnedSize, pinErr.Budget)
	}
}

func TestSelect_PinsExactlyFillBudget(t *testing.T) {
	snap := fixture(t, map[string]int64{"a": 100, "b": 60})
	scores := map[string]float64{"a": 1, "b": 1}

	ws, err := Select(snap, scores, profileWith(160, "a", "b"))
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if ws.TotalSize != 160 {
		t.Errorf("TotalSize = %d, want 160", ws.TotalSize)
	}
	if ws.DroppedCount != 0 {
		t.Errorf("DroppedCount = %d, want 0", ws.DroppedCount)
	}
}

func TestSelect_SkipOversizedContinueSmaller(t *testing.T) {
	// Best-fit-by-rank: the top-scored item overflows, but smaller
	// lower-ranked items still get in.
	snap := fixture(t, map[string]int64{"big": 200, "mid": 60, "small": 30})
	scores := map[string]float64{"big": 10, "mid": 2, "small": 1}

	ws, err := Select(snap, scores, profileWith(100))
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got := ws.IDs(); !reflect.DeepEqual(got, []string{"mid", "small"}) {
		t.Errorf("selected = %v, want [mid small]", got)
	}
	if ws.DroppedCount != 1 {
		t.Errorf("DroppedCount = %d, want 1", ws.DroppedCount)
	}
}

func TestSelect_TieBreaksBySizeThenID(t *testing.T) {
	snap := fixture(t, map[string]int64{"z": 10, "m": 10, "a": 20})
	scores := map[string]float64{"z": 1, "m": 1, "a": 1}

	ws, err := Select(snap, scores, profileWith(1000))
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	// Equal scores: smaller size first, then lexical ID.
	if got := ws.IDs(); !reflect.DeepEqual(got, []string{"m", "z", "a"}) {
		t.Errorf("order = %v, want [m z a]", got)
	}
}

func TestSelect_Deterministic(t *testing.T) {
	snap := fixture(t, map[string]int64{"a": 30, "b": 30, "c": 40, "d": 50, "e": 10})
	scores := map[string]float64{"a": 2, "b": 2, "c": 3, "d": 1, "e": 1}
	p := profileWith(100, "e")

	first, err := Select(snap, scores, p)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	for i := 0; i < 20; i++ {
		again, err := Select(snap, scores, p)
		if err != nil {
			t.Fatalf("Select: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differed: %v vs %v", i, first.IDs(), again.IDs())
		}
	}
}

func TestSelect_NeverExceedsBudget(t *testing.T) {
	snap := fixture(t, map[string]int64{
		"a": 17, "b": 23, "c": 31, "d": 47, "e": 5, "f": 61, "g": 13,
	})
	scores := map[string]float64{"a": 1, "b": 4, "c": 2, "d": 5, "e": 3, "f": 6, "g": 2}

	for budget := int64(1); budget <= 200; budget += 7 {
		ws, err := Select(snap, scores, profileWith(budget))
		if err != nil {
			t.Fatalf("budget %d: %v", budget, err)
		}
		if ws.TotalSize > budget {
			t.Errorf("budget %d: TotalSize %d exceeds budget", budget, ws.TotalSize)
		}
	}
}

func TestSelect_ShrinkingBudgetNeverGrowsSelection(t *testing.T) {
	snap := fixture(t, map[string]int64{
		"a": 17, "b": 23, "c": 31, "d": 47, "e": 5, "f": 61, "g": 13,
	})
	scores := map[string]float64{"a": 1, "b": 4, "c": 2, "d": 5, "e": 3, "f": 6, "g": 2}

	prevSize := int64(1 << 62)
	for budget := int64(200); budget >= 0; budget -= 10 {
		p := profileWith(budget)
		if budget == 0 {
			// Zero budget is an invalid profile, not a selection case.
			if _, err := Select(snap, scores, p); err == nil {
				t.Error("expected error for zero budget")
			}
			continue
		}
		ws, err := Select(snap, scores, p)
		if err != nil {
			t.Fatalf("budget %d: %v", budget, err)
		}
		if ws.TotalSize > prevSize {
			t.Errorf("budget %d: total size grew from %d to %d", budget, prevSize, ws.TotalSize)
		}
		prevSize = ws.TotalSize
	}
}

func TestSelect_ShrinkingBudgetNeverGrowsCount(t *testing.T) {
	snap := fixture(t, map[string]int64{
		"a": 10, "b": 10, "c": 10, "d": 10, "e": 10, "f": 20,
	})
	scores := map[string]float64{"a": 1, "b": 2, "c": 3, "d": 4, "e": 5, "f": 6}

	prevCount := len(snap.Items) + 1
	for budget := int64(70); budget >= 10; budget -= 10 {
		ws, err := Select(snap, scores, profileWith(budget))
		if err != nil {
			t.Fatalf("budget %d: %v", budget, err)
		}
		if len(ws.Items) > prevCount {
			t.Errorf("budget %d: selected count grew from %d to %d", budget, prevCount, len(ws.Items))
		}
		prevCount = len(ws.Items)
	}
}

func TestSelect_UnknownPinIgnored(t *testing.T) {
	snap := fixture(t, map[string]int64{"a": 10})
	scores := map[string]float64{"a": 1}

	ws, err := Select(snap, scores, profileWith(100, "ghost"))
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got := ws.IDs(); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("selected = %v, want [a]", got)
	}
}

func TestSelect_InvalidProfile(t *testing.T) {
	snap := fixture(t, map[string]int64{"a": 10})
	if _, err := Select(snap, nil, profileWith(-1)); !errors.Is(err, relevance.ErrInvalidProfile) {
		t.Errorf("error = %v, want ErrInvalidProfile", err)
	}
}
