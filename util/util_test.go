package util

import "testing"

func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"1024", 1024, false},
		{"512KB", 512 << 10, false},
		{"25mb", 25 << 20, false},
		{" 2 GB ", 2 << 30, false},
		{"10B", 10, false},
		{"", 0, true},
		{"MB", 0, true},
		{"-5MB", 0, true},
		{"ten", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSize(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSize(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseSize(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"sk_1234567890abcdef", "sk_1***"},
		{"short", "***"},
		{"", "***"},
	}
	for _, tt := range tests {
		if got := MaskSecret(tt.in, 4); got != tt.want {
			t.Errorf("MaskSecret(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitize(t *testing.T) {
	if got := SanitizeString("  ad\x00min\n "); got != "admin" {
		t.Errorf("SanitizeString() = %q", got)
	}
	tests := map[string]string{
		`"quoted"`:   "quoted",
		`'single'`:   "single",
		` bare `:     "bare",
		`"mismatch'`: `"mismatch'`,
	}
	for in, want := range tests {
		if got := SanitizeEnvValue(in); got != want {
			t.Errorf("SanitizeEnvValue(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCoalesce(t *testing.T) {
	if got := Coalesce("", "", "voice"); got != "voice" {
		t.Errorf("Coalesce() = %q", got)
	}
	if got := Coalesce(0, 0); got != 0 {
		t.Errorf("Coalesce() = %d", got)
	}
}
