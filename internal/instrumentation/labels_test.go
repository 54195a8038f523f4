package instrumentation

import "testing"

func TestDomainOf(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"jane@example.com", "example.com"},
		{"Jane@Example.COM", "example.com"},
		{"jane@", "unknown"},
		{"jane", "unknown"},
		{"a@b@c", "unknown"},
		{"", "unknown"},
	}

	for _, tt := range tests {
		if got := DomainOf(tt.email); got != tt.want {
			t.Errorf("DomainOf(%q) = %q, want %q", tt.email, got, tt.want)
		}
	}
}
