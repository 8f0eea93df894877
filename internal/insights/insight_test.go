package insights

import (
	"math"
	"strings"
	"testing"
)

func TestPercentOfIncome(t *testing.T) {
	tests := []struct {
		name   string
		total  float64
		income float64
		want   float64
	}{
		{"normal share", 40, 100, 40},
		{"zero income guards the division", 500, 0, 0},
		{"negative income guards the division", 500, -10, 0},
		{"NaN income", 500, math.NaN(), 0},
		{"negative total", -5, 100, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PercentOfIncome(tt.total, tt.income)
			if got != tt.want {
				t.Errorf("PercentOfIncome(%v, %v) = %v, want %v", tt.total, tt.income, got, tt.want)
			}
		})
	}
}

func TestMonthOverMonthChange(t *testing.T) {
	if got := MonthOverMonthChange(120, 100); math.Abs(got-20) > 1e-9 {
		t.Errorf("MonthOverMonthChange(120, 100) = %v, want 20", got)
	}
	if got := MonthOverMonthChange(80, 100); math.Abs(got-(-20)) > 1e-9 {
		t.Errorf("MonthOverMonthChange(80, 100) = %v, want -20", got)
	}
	if got := MonthOverMonthChange(50, 0); got != 0 {
		t.Errorf("MonthOverMonthChange with zero previous = %v, want 0", got)
	}
}

func TestGenerate_SeverityBoundaries(t *testing.T) {
	tests := []struct {
		name    string
		current float64
		income  float64
		want    Severity
	}{
		{"well under budget", 10, 100, SeverityGood},
		{"just under the warning floor", 24.99, 100, SeverityGood},
		{"exactly 25 percent is warning", 25, 100, SeverityWarning},
		{"inside the warning band", 33, 100, SeverityWarning},
		{"exactly 40 percent stays warning", 40, 100, SeverityWarning},
		{"just above 40 percent is danger", 40.01, 100, SeverityDanger},
		{"far above income", 90, 100, SeverityDanger},
		{"no income reads as good", 500, 0, SeverityGood},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Generate(tt.current, 0, tt.income)
			if got.Severity != tt.want {
				t.Errorf("Generate(current=%v, income=%v).Severity = %s, want %s",
					tt.current, tt.income, got.Severity, tt.want)
			}
		})
	}
}

func TestGenerate_TrendCommentary(t *testing.T) {
	tests := []struct {
		name     string
		current  float64
		previous float64
		wantText string
	}{
		{"notable increase above 15 percent", 120, 100, "notable increase"},
		{"slight increase at or below 15 percent", 110, 100, "slight increase"},
		{"exactly 15 percent is still slight", 115, 100, "slight increase"},
		{"decrease", 80, 100, "down"},
		{"flat", 100, 100, "unchanged"},
		{"no previous month reads as unchanged", 50, 0, "unchanged"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Generate(tt.current, tt.previous, 1000)
			if !strings.Contains(got.Message, tt.wantText) {
				t.Errorf("Generate(current=%v, previous=%v).Message = %q, want it to mention %q",
					tt.current, tt.previous, got.Message, tt.wantText)
			}
		})
	}
}

func TestGenerate_ReportsNumbers(t *testing.T) {
	got := Generate(40, 100, 100)
	if got.PercentOfIncome != 40 {
		t.Errorf("PercentOfIncome = %v, want 40", got.PercentOfIncome)
	}
	if math.Abs(got.MonthOverMonth-(-60)) > 1e-9 {
		t.Errorf("MonthOverMonth = %v, want -60", got.MonthOverMonth)
	}
	if got.Severity != SeverityWarning {
		t.Errorf("Severity at exactly 40%% of income = %s, want warning", got.Severity)
	}
}
