package segment

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"en dash", "2023–2024", "2023-2024"},
		{"em dash", "rates—and spreads", "rates-and spreads"},
		{"line wrap hyphen", "The econ-\nomy expanded.", "The economy expanded."},
		{"wrap hyphen with spaces", "labor mar-   ket", "labor market"},
		{"chained wraps", "a- b- c", "abc"},
		{"compound kept", "longer-run goals", "longer-run goals"},
		{"whitespace collapse", "  one\n\ttwo   three \n", "one two three"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"The econ-\nomy grew — modestly.",
		"a- b- c- d",
		"  Inflation\n\nremained   elevated. ",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestProtect(t *testing.T) {
	m := string(Marker)
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"decimal", "rate of 2.5 percent", "rate of 2" + m + "5 percent"},
		{"multi-part number", "version 1.2.3 here", "version 1" + m + "2" + m + "3 here"},
		{"abbreviation", "The U.S. economy", "The U" + m + "S" + m + " economy"},
		{"month abbreviation", "held in Jan. and Feb.", "held in Jan" + m + " and Feb" + m},
		{"longest abbreviation wins", "in Sept. and Sep. meetings", "in Sept" + m + " and Sep" + m + " meetings"},
		{"lowercase abbreviation", "assets, e.g. bonds", "assets, e" + m + "g" + m + " bonds"},
		{"initial before name", "J. Powell spoke", "J" + m + " Powell spoke"},
		{"chained initials", "J. R. Smith voted", "J" + m + " R" + m + " Smith voted"},
		{"initial before lowercase", "Plan B. was adopted", "Plan B. was adopted"},
		{"initial at end", "option A.", "option A."},
		{"abbreviation inside word", "Omar. The end", "Omar. The end"},
		{"sentence period untouched", "Growth slowed. Prices rose.", "Growth slowed. Prices rose."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Protect(tt.in); got != tt.want {
				t.Errorf("Protect(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestProtect_NoDoubleProtection(t *testing.T) {
	// Every catalog entry is protected exactly once and a second pass is a no-op.
	for _, abbr := range Abbreviations {
		text := "before " + abbr + " after"
		once := Protect(text)
		if strings.Contains(once, abbr) {
			t.Errorf("%q left unprotected: %q", abbr, once)
		}
		if Restore(once) != text {
			t.Errorf("Restore(Protect(%q)) = %q", text, Restore(once))
		}
		if twice := Protect(once); twice != once {
			t.Errorf("Protect not idempotent for %q: %q then %q", abbr, once, twice)
		}
	}
}

func TestCheckCatalog(t *testing.T) {
	if err := checkCatalog(Abbreviations); err != nil {
		t.Fatalf("default catalog rejected: %v", err)
	}

	bad := map[string][]string{
		"no period":  {"US"},
		"duplicate":  {"Mr.", "Mr."},
		"has marker": {"x" + string(Marker) + "."},
	}
	for name, catalog := range bad {
		t.Run(name, func(t *testing.T) {
			if err := checkCatalog(catalog); err == nil {
				t.Errorf("checkCatalog(%q) accepted an invalid catalog", catalog)
			}
		})
	}
}

func TestProtectPattern_OverlappingEntries(t *testing.T) {
	catalog := []string{"S.", "U.S.", "e.g.", "g."}
	if err := checkCatalog(catalog); err != nil {
		t.Fatalf("overlapping entries rejected: %v", err)
	}

	re := mustProtectPattern(catalog)
	got := re.FindAllString("the U.S. economy, e.g. jobs", -1)
	want := []string{"U.S.", "e.g."}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("matches = %q, want %q", got, want)
	}
}
