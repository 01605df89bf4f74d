package main

import "testing"

func TestParseSeedDecimalAndHex(t *testing.T) {
	cases := map[string]uint32{
		"0":          0,
		"305419896":  0x12345678,
		"0x12345678": 0x12345678,
		"0XABCDEF01": 0xABCDEF01,
	}
	for in, want := range cases {
		got, err := parseSeed(in)
		if err != nil {
			t.Fatalf("parseSeed(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("parseSeed(%q) = %#x, want %#x", in, got, want)
		}
	}
}

func TestParseSeedRejectsGarbage(t *testing.T) {
	if _, err := parseSeed("not-a-seed"); err == nil {
		t.Error("expected an error for a non-numeric seed")
	}
}

func TestRunRequiresSeedOrQuery(t *testing.T) {
	if code := run([]string{"-sublevel", "scx1"}); code == 0 {
		t.Error("expected a nonzero exit code when neither -seed nor -query is given")
	}
}

func TestRunUnknownFlag(t *testing.T) {
	if code := run([]string{"-not-a-real-flag"}); code == 0 {
		t.Error("expected a nonzero exit code for an unparseable flag set")
	}
}
