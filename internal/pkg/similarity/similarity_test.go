package similarity

import (
	"math"
	"testing"
)

func TestCommon(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"World", "Word", 4},
		{"Hello", "World", 1},
		{"", "abc", 0},
		{"abc", "xyz", 0},
		{"plumber", "plumber", 7},
	}
	for _, tt := range tests {
		if got := Common(tt.a, tt.b); got != tt.want {
			t.Fatalf("Common(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"World", "Word", 88.888888},
		{"Hello", "World", 20},
		{"plumber", "plumber", 100},
		{"", "", 0},
		{"restaurants", "restaurant", 95.238095},
	}
	for _, tt := range tests {
		got := Percent(tt.a, tt.b)
		if math.Abs(got-tt.want) > 0.0001 {
			t.Fatalf("Percent(%q, %q) = %f, want %f", tt.a, tt.b, got, tt.want)
		}
	}
}
