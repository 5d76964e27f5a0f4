package geo

import "testing"

func TestIsCountry(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		expects bool
	}{
		{"exact match", "France", true},
		{"case-insensitive", "gErMaNy", true},
		{"previously missing C entry", "Canada", true},
		{"alias", "USA", true},
		{"unknown", "Atlantis", false},
		{"blank", "  ", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsCountry(tc.input); got != tc.expects {
				t.Fatalf("IsCountry(%q) = %v; want %v", tc.input, got, tc.expects)
			}
		})
	}
}

func TestCanonicalCountry(t *testing.T) {
	cases := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"canonical passes through", "Netherlands", "Netherlands", true},
		{"lowercase", "netherlands", "Netherlands", true},
		{"alias with article", "The Netherlands", "Netherlands", true},
		{"uk alias", "uk", "United Kingdom", true},
		{"surrounding space", "  Japan ", "Japan", true},
		{"unknown", "Gondor", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := CanonicalCountry(tc.input)
			if got != tc.want || ok != tc.wantOK {
				t.Fatalf("CanonicalCountry(%q) = %q, %v; want %q, %v", tc.input, got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestIdentifyPlace(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{"country detected", "Italy", "country"},
		{"city fallback", "Paris", "city"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IdentifyPlace(tc.input); got != tc.expected {
				t.Fatalf("IdentifyPlace(%q) = %q; want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestExtractCountry(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{"comma separated", "Amsterdam, Netherlands", "Netherlands"},
		{"comma with alias", "Austin, TX, USA", "United States"},
		{"in known country", "Offices in France", "France"},
		{"at known country", "Based at United States", "United States"},
		{"no marker", "Canada", ""},
		{"unknown candidate returned", "Offices in Middle Earth", "Middle Earth"},
		{"trailing spaces trimmed", " Offices in  Spain  ", "Spain"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractCountry(tc.input); got != tc.expected {
				t.Fatalf("ExtractCountry(%q) = %q; want %q", tc.input, got, tc.expected)
			}
		})
	}
}
