package fonts

import "testing"

func TestHeuristicWidth(t *testing.T) {
	var m Heuristic

	tests := []struct {
		name string
		text string
		size float64
		want float64
	}{
		{"empty", "", 12, 0},
		{"single char", "a", 12, 12 * charWidthRatio},
		{"five chars", "fetch", 12, 5 * 12 * charWidthRatio},
		{"multibyte counts runes", "héllo", 10, 5 * 10 * charWidthRatio},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Width(tt.text, tt.size); got != tt.want {
				t.Errorf("Width(%q, %v) = %v, want %v", tt.text, tt.size, got, tt.want)
			}
		})
	}
}

func TestHeuristicMonotonic(t *testing.T) {
	var m Heuristic

	short := m.Width("ab", SizePx)
	long := m.Width("abcdef", SizePx)
	if long <= short {
		t.Errorf("Width(long) = %v, want > Width(short) = %v", long, short)
	}

	small := m.Width("label", 8)
	big := m.Width("label", 16)
	if big <= small {
		t.Errorf("Width at size 16 = %v, want > width at size 8 = %v", big, small)
	}
}

func TestDefault(t *testing.T) {
	m := Default()
	if m == nil {
		t.Fatal("Default() = nil")
	}

	// Whichever measurer was selected, non-empty text has positive width.
	if w := m.Width("Start", SizePx); w <= 0 {
		t.Errorf("Width(Start) = %v, want > 0", w)
	}

	// The choice is stable across calls.
	if Default() != m {
		t.Error("Default() returned a different measurer on second call")
	}
}
