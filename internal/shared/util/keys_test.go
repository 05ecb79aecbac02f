package util

import (
	"strings"
	"testing"
)

func TestHashOwnerKey(t *testing.T) {
	id := "ada_example_com"
	got := HashOwnerKey(id)
	if got != HashOwnerKey(id) {
		t.Fatalf("expected stable hash, got %s", got)
	}
	for _, ch := range got {
		if !((ch >= 'a' && ch <= 'f') || (ch >= '0' && ch <= '9')) {
			t.Fatalf("hash contains non-hex character: %c", ch)
		}
	}
	if len(got) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(got))
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "plain", in: "shot.png", want: "shot.png"},
		{name: "separators", in: "a/b\\c.png", want: "a_b_c.png"},
		{name: "control chars", in: "sh\x00ot\n.png", want: "shot.png"},
		{name: "traversal", in: "../etc/passwd", wantErr: true},
		{name: "blank", in: "   ", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeFileName(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeFileNameCapsLength(t *testing.T) {
	got, err := SanitizeFileName(strings.Repeat("a", 300) + ".webp")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != maxFileNameLen || !strings.HasSuffix(got, ".webp") {
		t.Fatalf("unexpected capped name %q (%d)", got, len(got))
	}
}
