package version

import "testing"

func TestParse(t *testing.T) {
	v, err := Parse("1.0")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if v.Major != 1 || v.Minor != 0 {
		t.Errorf("Parse(\"1.0\") = %+v", v)
	}
	if v.String() != "1.0" {
		t.Errorf("String() = %q, want \"1.0\"", v.String())
	}
}

func TestParseInvalid(t *testing.T) {
	for _, s := range []string{"", "1", "1.2.3", "a.b", "1.", ".0"} {
		if _, err := Parse(s); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", s)
		}
	}
}

func TestCompatible(t *testing.T) {
	a := LibVersion{Major: 1, Minor: 0}
	b := LibVersion{Major: 1, Minor: 5}
	c := LibVersion{Major: 2, Minor: 0}

	if !a.Compatible(b) {
		t.Error("1.0 should be compatible with 1.5")
	}
	if a.Compatible(c) {
		t.Error("1.0 should not be compatible with 2.0")
	}
}

func TestCurrentParses(t *testing.T) {
	if _, err := Parse(Current); err != nil {
		t.Errorf("Current %q does not parse: %v", Current, err)
	}
}
