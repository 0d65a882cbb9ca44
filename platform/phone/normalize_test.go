package phone

import "testing"

func TestNormalizeE164(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		region string
		want   string
	}{
		{name: "empty", input: "  ", region: "US", want: ""},
		{name: "national us", input: "(201) 555-0123", region: "US", want: "+12015550123"},
		{name: "international overrides region", input: "+44 121 234 5678", region: "US", want: "+441212345678"},
		{name: "default region", input: "201 555 0123", region: "", want: "+12015550123"},
		{name: "garbage kept", input: "call me", region: "US", want: "call me"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeE164(tt.input, tt.region); got != tt.want {
				t.Fatalf("NormalizeE164(%q, %q) = %q, want %q", tt.input, tt.region, got, tt.want)
			}
		})
	}
}
