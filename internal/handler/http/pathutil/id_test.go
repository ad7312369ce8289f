package pathutil

import (
	"errors"
	"testing"
)

func TestExtractID(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		prefix  string
		want    int64
		wantErr bool
	}{
		{"post ID", "/posts/123", "/posts/", 123, false},
		{"campaign ID", "/campaigns/9007199254740991", "/campaigns/", 9007199254740991, false},
		{"non-numeric", "/posts/abc", "/posts/", 0, true},
		{"zero rejected", "/posts/0", "/posts/", 0, true},
		{"negative rejected", "/posts/-5", "/posts/", 0, true},
		{"empty after prefix", "/posts/", "/posts/", 0, true},
		{"trailing segment", "/posts/123/preview", "/posts/", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractID(tt.path, tt.prefix)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidID) {
					t.Errorf("ExtractID(%q) error = %v, want ErrInvalidID", tt.path, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractID(%q): %v", tt.path, err)
			}
			if got != tt.want {
				t.Errorf("ExtractID(%q) = %d, want %d", tt.path, got, tt.want)
			}
		})
	}
}
