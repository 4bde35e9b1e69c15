package selector

import (
	"testing"

	"github.com/MarianaDuarte/focal/internal/relevance"
)

func TestCheck(t *testing.T) {
	p := relevance.NewProfile("task", nil, 1000)
	p.WarnThreshold = 0.83

	tests := []struct {
		name string
		size int64
		want Verdict
	}{
		{"empty set", 0, VerdictOK},
		{"well under budget", 500, VerdictOK},
		{"just below warn threshold", 829, VerdictOK},
		{"at warn threshold", 830, VerdictWarn},
		{"above warn threshold", 900, VerdictWarn},
		{"exactly at budget", 1000, VerdictWarn},
		{"over budget", 1001, VerdictOver},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := &WorkingSet{TotalSize: tt.size}
			if got := Check(ws, p); got != tt.want {
				t.Errorf("Check(size=%d) = %q, want %q", tt.size, got, tt.want)
			}
		})
	}
}
