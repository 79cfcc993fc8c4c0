package hash

import "testing"

func TestSHA1HexDeterministic(t *testing.T) {
	d := NewSHA1Hex()

	first := d.Digest("https://app.example.com")
	second := d.Digest("https://app.example.com")

	if first != second {
		t.Fatalf("digest not deterministic: %q != %q", first, second)
	}
	if len(first) != 40 {
		t.Fatalf("digest length = %d, want 40 hex chars", len(first))
	}
}

func TestSHA1HexKnownValue(t *testing.T) {
	d := NewSHA1Hex()

	// sha1("abc"), a fixed vector so addressing never silently changes.
	if got := d.Digest("abc"); got != "a9993e364706816aba3e25717850c26c9cd0d89d" {
		t.Fatalf("Digest(\"abc\") = %q", got)
	}
}

func TestSHA1HexDistinctInputsDiffer(t *testing.T) {
	d := NewSHA1Hex()

	if d.Digest("a@example.com") == d.Digest("b@example.com") {
		t.Fatalf("distinct users must map to distinct addresses")
	}
	if d.Digest("https://a.example.com") == d.Digest("https://b.example.com") {
		t.Fatalf("distinct tenants must map to distinct addresses")
	}
}
