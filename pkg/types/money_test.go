package types

import "testing"

func TestFormatCents(t *testing.T) {
	cases := map[int64]string{
		0:     "0.00",
		3000:  "30.00",
		1999:  "19.99",
		5:     "0.05",
		-1050: "-10.50",
	}
	for in, want := range cases {
		if got := FormatCents(in); got != want {
			t.Fatalf("FormatCents(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestParseAmount(t *testing.T) {
	got, err := ParseAmount("10.5")
	if err != nil || got != 1050 {
		t.Fatalf("expected 1050, got %d err=%v", got, err)
	}
	if got, err := ParseAmount(" 7 "); err != nil || got != 700 {
		t.Fatalf("expected 700, got %d err=%v", got, err)
	}
	for _, bad := range []string{"", "abc", "-1", "1.234"} {
		if _, err := ParseAmount(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
