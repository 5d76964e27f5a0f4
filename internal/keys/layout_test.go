package keys

import "testing"

func TestKeys(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"latest", LatestLayout, "layouts/latest.json"},
		{"layout by id", Layout("6f1c2a"), "layouts/6f1c2a.json"},
		{"dataset sanitized", Dataset(" Dutch Companies "), "datasets/dutch-companies.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Fatalf("got %q; want %q", tt.got, tt.want)
			}
		})
	}
}
