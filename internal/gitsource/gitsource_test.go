package gitsource

import (
	"path/filepath"
	"testing"
)

func TestLocalPath(t *testing.T) {
	testCases := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{url: "https://github.com/owner/decks.git", want: filepath.Join("repos", "github.com", "owner", "decks")},
		{url: "http://example.org/team/cards", want: filepath.Join("repos", "example.org", "team", "cards")},
		{url: "git@github.com:owner/decks.git", want: filepath.Join("repos", "github.com", "owner", "decks")},
		{url: "not a url", wantErr: true},
		{url: "https://github.com/", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.url, func(t *testing.T) {
			got, err := LocalPath("repos", tc.url)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("Expected an error for %q, got path %q", tc.url, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("LocalPath() returned an unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("Expected '%s', but got '%s'", tc.want, got)
			}
		})
	}
}

func TestIsURL(t *testing.T) {
	for source, want := range map[string]bool{
		"https://github.com/a/b":  true,
		"git@github.com:a/b.git":  true,
		"decks/local":             false,
		"/abs/path/to/decks":      false,
		"file-share/decks.git":    true,
	} {
		if got := IsURL(source); got != want {
			t.Errorf("IsURL(%q) = %v, want %v", source, got, want)
		}
	}
}
