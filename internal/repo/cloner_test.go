package repo

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestIsRemote(t *testing.T) {
	tests := []struct {
		target string
		want   bool
	}{
		{"https://github.com/user/project", true},
		{"http://git.internal/repo.git", true},
		{"git@github.com:user/project.git", true},
		{"ssh://git@host/repo.git", true},
		{"./local/dir", false},
		{"/abs/path", false},
		{"project", false},
	}
	for _, tt := range tests {
		if got := IsRemote(tt.target); got != tt.want {
			t.Errorf("IsRemote(%q) = %v, want %v", tt.target, got, tt.want)
		}
	}
}

func TestCloneArgs(t *testing.T) {
	tests := []struct {
		name string
		opts CloneOptions
		want string
	}{
		{
			name: "defaults to depth 1",
			opts: CloneOptions{},
			want: "clone --depth 1 --single-branch https://x/y.git /tmp/dst",
		},
		{
			name: "branch selection",
			opts: CloneOptions{Branch: "develop"},
			want: "clone --depth 1 --single-branch --branch develop https://x/y.git /tmp/dst",
		},
		{
			name: "explicit depth",
			opts: CloneOptions{Depth: 5},
			want: "clone --depth 5 --single-branch https://x/y.git /tmp/dst",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := strings.Join(cloneArgs("https://x/y.git", "/tmp/dst", tt.opts), " ")
			if got != tt.want {
				t.Errorf("args = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateLocal(t *testing.T) {
	dir := t.TempDir()
	if err := ValidateLocal(dir); err != nil {
		t.Errorf("valid dir rejected: %v", err)
	}
	if err := ValidateLocal(filepath.Join(dir, "missing")); err == nil {
		t.Error("missing path accepted")
	}
}
