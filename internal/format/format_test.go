package format

import (
	"math"
	"testing"
	"time"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		amount int64
		code   string
		want   string
	}{
		{0, "IDR", "Rp 0"},
		{999, "IDR", "Rp 999"},
		{1000, "IDR", "Rp 1,000"},
		{1265400, "IDR", "Rp 1,265,400"},
		{14999000, "", "Rp 14,999,000"},
		{-60000, "IDR", "-Rp 60,000"},
		{1300, "USD", "$1,300.00"},
		{50, "SGD", "50.00 SGD"},
		{math.MaxInt64, "IDR", "Rp 9,223,372,036,854,775,807"},
		{math.MinInt64, "IDR", "-Rp 9,223,372,036,854,775,808"},
		{math.MinInt64, "USD", "-$9,223,372,036,854,775,808.00"},
	}

	for _, tt := range tests {
		if got := Currency(tt.amount, tt.code); got != tt.want {
			t.Errorf("Currency(%d, %q) = %q, want %q", tt.amount, tt.code, got, tt.want)
		}
	}
}

func TestRupiah(t *testing.T) {
	if got := Rupiah(1332000); got != Currency(1332000, "IDR") {
		t.Errorf("Rupiah() = %q, want the IDR rendering", got)
	}
}

func TestDateTime(t *testing.T) {
	ts := time.Date(2024, 1, 15, 17, 30, 0, 0, time.UTC)

	if got := Date(ts); got != "15-01-2024" {
		t.Errorf("Date() = %q", got)
	}
	if got := DateTime(ts); got != "16-01-2024 00:30 WIB" {
		t.Errorf("DateTime() = %q", got)
	}
}

func TestPhone(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"555-123-4567", "(555) 123-4567"},
		{"1 555 123 4567", "+1 (555) 123-4567"},
		{"+62812-3456-7890", "+62812-3456-7890"},
	}

	for _, tt := range tests {
		if got := Phone(tt.in); got != tt.want {
			t.Errorf("Phone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
