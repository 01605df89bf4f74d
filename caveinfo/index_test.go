package caveinfo

import "testing"

const testConfigText = `
pikmin2, Shower Room, false, shower.txt, SCx, scx
pikmin2, Subterranean Complex, false, sub.txt, SmC
pikmin2, Citadel of Spiders, true, spider.txt, CoS, spider
`

func TestLoadCaveConfigs(t *testing.T) {
	cfgs, err := LoadCaveConfigs("pikmin2", testConfigText)
	if err != nil {
		t.Fatalf("LoadCaveConfigs: %v", err)
	}
	if len(cfgs) != 3 {
		t.Fatalf("got %d configs, want 3", len(cfgs))
	}
	if cfgs[0].HumanName != "Shower Room" {
		t.Errorf("got HumanName %q, want Shower Room", cfgs[0].HumanName)
	}
	if len(cfgs[0].Aliases) != 2 || cfgs[0].Aliases[0] != "SCx" {
		t.Errorf("got Aliases %v, want [SCx scx]", cfgs[0].Aliases)
	}
	if !cfgs[2].IsChallengeMode {
		t.Errorf("Citadel of Spiders should be challenge mode")
	}
}

func TestLoadCaveConfigsMalformed(t *testing.T) {
	_, err := LoadCaveConfigs("pikmin2", "pikmin2, Shower Room, notabool, shower.txt, SCx")
	if err == nil {
		t.Fatal("expected an error for a non-bool is_challenge_mode field")
	}
}

func TestResolveSublevel(t *testing.T) {
	cfgs, err := LoadCaveConfigs("pikmin2", testConfigText)
	if err != nil {
		t.Fatalf("LoadCaveConfigs: %v", err)
	}

	cases := []struct {
		shortcode string
		want      string
	}{
		{"scx7", "SCx-7"},
		{"SCx-4", "SCx-4"},
		{"SMC2", "SmC-2"},
		{"spider1", "CoS-1"},
	}
	for _, c := range cases {
		sl, err := ResolveSublevel(cfgs, c.shortcode)
		if err != nil {
			t.Fatalf("ResolveSublevel(%q): %v", c.shortcode, err)
		}
		if got := sl.NormalizedName(); got != c.want {
			t.Errorf("ResolveSublevel(%q).NormalizedName() = %q, want %q", c.shortcode, got, c.want)
		}
	}
}

func TestResolveSublevelUnknown(t *testing.T) {
	cfgs, err := LoadCaveConfigs("pikmin2", testConfigText)
	if err != nil {
		t.Fatalf("LoadCaveConfigs: %v", err)
	}
	if _, err := ResolveSublevel(cfgs, "zzz3"); err == nil {
		t.Fatal("expected UnknownSublevelError for an unmatched shortcode")
	}
	if _, err := ResolveSublevel(cfgs, "scx"); err == nil {
		t.Fatal("expected UnknownSublevelError when no digits are present")
	}
}
