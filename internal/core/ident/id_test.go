package ident

import "testing"

func TestNext(t *testing.T) {
	tests := []struct {
		name       string
		currentMax int64
		expected   int64
	}{
		{"empty table", 0, 1},
		{"after first", 1, 2},
		{"after gap", 41, 42},
		{"negative max treated as empty", -3, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Next(tt.currentMax); got != tt.expected {
				t.Errorf("Next(%d) = %d, want %d", tt.currentMax, got, tt.expected)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		cell     string
		expected int64
		wantErr  bool
	}{
		{"plain number", "17", 17, false},
		{"padded", "  9 ", 9, false},
		{"blank", "", 0, false},
		{"garbage", "SHIFT-1", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.cell)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.cell, err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("Parse(%q) = %d, want %d", tt.cell, got, tt.expected)
			}
		})
	}
}
