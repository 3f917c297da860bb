package utils

import "testing"

func TestFormatVND(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want string
	}{
		{"zero", 0, "0 VND"},
		{"small", 950, "950 VND"},
		{"thousands", 1500, "1,500 VND"},
		{"millions", 12345678.9, "12,345,678 VND"},
		{"exact groups", 1000000, "1,000,000 VND"},
		{"negative", -2500000, "-2,500,000 VND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatVND(tt.in); got != tt.want {
				t.Errorf("FormatVND(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatTrieuVND(t *testing.T) {
	if got := FormatTrieuVND(25.9); got != "25 Triệu" {
		t.Errorf("FormatTrieuVND(25.9) = %q", got)
	}
	if got := FormatTrieuVND(1250); got != "1,250 Triệu" {
		t.Errorf("FormatTrieuVND(1250) = %q", got)
	}
}
