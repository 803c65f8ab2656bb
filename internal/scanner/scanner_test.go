package scanner

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestScanner(t *testing.T, cfg Config) (*Scanner, string) {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n")
	writeFile(t, root, "api.js", "const a = 1;\n")
	writeFile(t, root, "README.md", "# readme\n")
	writeFile(t, root, ".env", "SECRET=1\n")
	writeFile(t, root, "vendor/dep.go", "package dep\n")
	writeFile(t, root, "src/util.py", "x = 1\n")

	s, err := New(root, cfg)
	if err != nil {
		t.Fatal(err)
	}
	return s, root
}

func TestResolveRejectsEscapes(t *testing.T) {
	s, _ := newTestScanner(t, DefaultConfig())

	tests := []struct {
		name string
		path string
	}{
		{name: "dotdot traversal", path: "../../etc/passwd"},
		{name: "nested dotdot", path: "src/../../outside.txt"},
		{name: "absolute path", path: "/etc/passwd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Resolve(tt.path)
			if !errors.Is(err, ErrPathOutsideRoot) {
				t.Errorf("Resolve(%q) err = %v, want ErrPathOutsideRoot", tt.path, err)
			}
		})
	}
}

func TestResolveRejectsSymlinkEscape(t *testing.T) {
	s, root := newTestScanner(t, DefaultConfig())

	outside := t.TempDir()
	if err := os.WriteFile(filepath.Join(outside, "secret.go"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(outside, "secret.go"), filepath.Join(root, "link.go")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	if _, err := s.Resolve("link.go"); !errors.Is(err, ErrPathOutsideRoot) {
		t.Errorf("symlink escape err = %v, want ErrPathOutsideRoot", err)
	}
}

func TestResolveAllowsMissingLeaf(t *testing.T) {
	s, _ := newTestScanner(t, DefaultConfig())

	// Non-existent but safe paths must resolve so the caller can report
	// not-found instead of a safety violation.
	if _, err := s.Resolve("does/not/exist.go"); err != nil {
		t.Errorf("missing safe path should resolve, got %v", err)
	}
}

func TestCheckFilePolicy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxFileSize = 10
	s, root := newTestScanner(t, cfg)
	writeFile(t, root, "big.go", "package main // padding padding padding\n")

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{name: "allowed", path: "main.go", wantErr: nil},
		{name: "excluded dir", path: "vendor/dep.go", wantErr: ErrFileExcluded},
		{name: "disallowed extension", path: "README.md", wantErr: ErrFileExcluded},
		{name: "hidden file", path: ".env", wantErr: ErrFileExcluded},
		{name: "too large", path: "big.go", wantErr: ErrFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CheckFile(tt.path)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestListDir(t *testing.T) {
	s, _ := newTestScanner(t, DefaultConfig())

	entries, err := s.ListDir("")
	if err != nil {
		t.Fatal(err)
	}

	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}

	for _, name := range names {
		if name == ".env" {
			t.Error("hidden files must not be listed")
		}
		if name == "vendor/" {
			t.Error("excluded directories must not be listed")
		}
	}

	// Sorted, with directories suffixed.
	want := []string{"README.md", "api.js", "main.go", "src/"}
	if len(names) != len(want) {
		t.Fatalf("entries = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("entry[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestCollectFiles(t *testing.T) {
	s, _ := newTestScanner(t, DefaultConfig())

	files, err := s.CollectFiles()
	if err != nil {
		t.Fatal(err)
	}

	got := make(map[string]bool)
	for _, f := range files {
		got[f.Path] = true
	}
	for _, want := range []string{"main.go", "api.js", "src/util.py"} {
		if !got[want] {
			t.Errorf("expected %s in scan results", want)
		}
	}
	for _, reject := range []string{"README.md", ".env", "vendor/dep.go"} {
		if got[reject] {
			t.Errorf("%s should be filtered out", reject)
		}
	}
}

func TestCollectFilesHonorsMaxFiles(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxFiles = 2
	s, _ := newTestScanner(t, cfg)

	files, err := s.CollectFiles()
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Errorf("got %d files, want 2", len(files))
	}
}

func TestLanguage(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"main.go", "Go"},
		{"src/app.TS", "TypeScript"},
		{"lib.rs", "Rust"},
		{"notes.txt", "Unknown"},
	}
	for _, tt := range tests {
		if got := Language(tt.path); got != tt.want {
			t.Errorf("Language(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
