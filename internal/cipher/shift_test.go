package cipher

import "testing"

func TestShiftRune(t *testing.T) {
	tests := []struct {
		name   string
		in     rune
		amount int
		want   rune
	}{
		{"lower forward", 'a', 3, 'd'},
		{"upper forward", 'A', 3, 'D'},
		{"wrap forward", 'z', 1, 'a'},
		{"wrap upper", 'Y', 3, 'B'},
		{"negative", 'a', -1, 'z'},
		{"negative upper", 'C', -5, 'X'},
		{"large positive", 'a', 26*4 + 2, 'c'},
		{"large negative", 'a', -(26*3 + 1), 'z'},
		{"zero", 'q', 0, 'q'},
		{"digit untouched", '7', 5, '7'},
		{"space untouched", ' ', 5, ' '},
		{"accent untouched", 'é', 5, 'é'},
		{"non latin untouched", 'ж', 5, 'ж'},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShiftRune(tt.in, tt.amount); got != tt.want {
				t.Errorf("ShiftRune(%q, %d) = %q, want %q", tt.in, tt.amount, got, tt.want)
			}
		})
	}
}

func TestShiftRuneInverse(t *testing.T) {
	for _, c := range "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ" {
		for amount := -60; amount <= 60; amount++ {
			if got := ShiftRune(ShiftRune(c, amount), -amount); got != c {
				t.Fatalf("ShiftRune(ShiftRune(%q, %d), %d) = %q", c, amount, -amount, got)
			}
		}
	}
}

func TestShiftRunePreservesCase(t *testing.T) {
	for amount := -30; amount <= 30; amount++ {
		if got := ShiftRune('m', amount); got < 'a' || got > 'z' {
			t.Fatalf("lower case lost for amount %d: %q", amount, got)
		}
		if got := ShiftRune('M', amount); got < 'A' || got > 'Z' {
			t.Fatalf("upper case lost for amount %d: %q", amount, got)
		}
	}
}
