package models

import "testing"

func TestParseScale(t *testing.T) {
	tests := []struct {
		in   string
		want Scale
	}{
		{in: "Linear", want: Linear},
		{in: "Log", want: Log},
		{in: "linear", want: Log},
		{in: " Linear", want: Log},
		{in: "", want: Log},
		{in: "anything", want: Log},
	}

	for _, tt := range tests {
		if got := ParseScale(tt.in); got != tt.want {
			t.Errorf("ParseScale(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestScaleAxisType(t *testing.T) {
	if got := Linear.AxisType(); got != "linear" {
		t.Errorf("Linear.AxisType() = %q", got)
	}
	if got := Log.AxisType(); got != "log" {
		t.Errorf("Log.AxisType() = %q", got)
	}
}

func TestNewIndicator(t *testing.T) {
	if got := NewIndicator("GDP", "EUR"); got != "GDP (EUR)" {
		t.Errorf("NewIndicator = %q", got)
	}
}
