package topology

import "testing"

func TestAnonymizeIP(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"203.0.113.42", "203.0.113.X"},
		{"10.0.0.1", "10.0.0.X"},
		{"::1", "::1"},
		{"2001:db8::1", "2001:db8::1"},
		{"203.0.113.X", "203.0.113.X"},
		{"1.2.3", "1.2.3"},
		{"1.2.3.4.5", "1.2.3.4.5"},
		{"300.1.1.1", "300.1.1.1"},
		{"bridge (Gateway)", "bridge (Gateway)"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := AnonymizeIP(tt.input); got != tt.want {
			t.Errorf("AnonymizeIP(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestAnonymizeIPIsIdempotent(t *testing.T) {
	once := AnonymizeIP("198.51.100.7")
	if twice := AnonymizeIP(once); twice != once {
		t.Errorf("AnonymizeIP(%q) = %q, want unchanged", once, twice)
	}
}
