package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"100.5", "100.5", false},
		{"100,5", "100.5", false},
		{"  25000 ", "25000", false},
		{"0", "", true},
		{"-5", "", true},
		{"+5", "", true},
		{"", "", true},
		{"abc", "", true},
		{"1.2.3", "", true},
		{"1e3", "", true},
	}
	for _, c := range cases {
		got, err := ParseAmount(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseAmount(%q): expected error, got %s", c.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseAmount(%q): unexpected error %v", c.in, err)
			continue
		}
		if got.String() != c.want {
			t.Errorf("ParseAmount(%q) = %s, want %s", c.in, got, c.want)
		}
	}
}

func TestParseAmountKeepsFractionExact(t *testing.T) {
	got, err := ParseAmount("100.5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(decimal.RequireFromString("100.5")) {
		t.Fatalf("amount not preserved exactly: %s", got)
	}
}

func TestFormatRupiah(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0", "Rp 0"},
		{"5", "Rp 5"},
		{"999", "Rp 999"},
		{"1000", "Rp 1.000"},
		{"25000", "Rp 25.000"},
		{"1234567", "Rp 1.234.567"},
		{"100.5", "Rp 101"},  // half-up rounding
		{"100.49", "Rp 100"},
		{"-1500", "Rp -1.500"},
	}
	for _, c := range cases {
		got := FormatRupiah(decimal.RequireFromString(c.in))
		if got != c.want {
			t.Errorf("FormatRupiah(%s) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatRupiahStringInvalidIsZero(t *testing.T) {
	for _, in := range []string{"", "abc", "NaN", "12x"} {
		if got := FormatRupiahString(in); got != "Rp 0" {
			t.Errorf("FormatRupiahString(%q) = %q, want %q", in, got, "Rp 0")
		}
	}
	if got := FormatRupiahString("2500"); got != "Rp 2.500" {
		t.Errorf("FormatRupiahString(2500) = %q", got)
	}
}

func TestFormatSigned(t *testing.T) {
	amt := decimal.RequireFromString("50000")
	if got := FormatSigned(Income, amt); got != "+Rp 50.000" {
		t.Errorf("income sign: %q", got)
	}
	if got := FormatSigned(Expense, amt); got != "-Rp 50.000" {
		t.Errorf("expense sign: %q", got)
	}
}
