package audience

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://app.example.com", "https://app.example.com"},
		{"https://Example.com:443", "https://example.com"},
		{"example.com", "https://example.com"},
		{"EXAMPLE.com", "https://example.com"},
		{"http://example.com:80", "http://example.com"},
		{"http://example.com:8080", "http://example.com:8080"},
		{"https://example.com:8443", "https://example.com:8443"},
		{"example.com:8443", "https://example.com:8443"},
		{"HTTP://EXAMPLE.COM", "http://example.com"},
		{"https://example.com/some/path", "https://example.com"},
		{"  https://example.com  ", "https://example.com"},
	}

	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"https://app.example.com",
		"Example.com:443",
		"http://example.com:8080",
		"example.com",
	}

	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Fatalf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestNormalizeEquivalentSpellingsCollapse(t *testing.T) {
	if Normalize("https://Example.com:443") != Normalize("example.com") {
		t.Fatalf("default-port and bare spellings must normalize identically")
	}
}
