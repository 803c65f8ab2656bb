package filesystem

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ChamsBouzaiene/codeaudit/internal/scanner"
)

func newTestScanner(t *testing.T) *scanner.Scanner {
	t.Helper()
	root := t.TempDir()

	files := map[string]string{
		"main.go":     "package main\n\nfunc main() {}\n",
		"api.js":      "const q = `SELECT * FROM users WHERE id = ${id}`;\n",
		"src/util.py": "x = 1\n",
	}
	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(root, "blob.go"), []byte{0xff, 0xfe, 0x00, 0x01}, 0o644); err != nil {
		t.Fatal(err)
	}

	sc, err := scanner.New(root, scanner.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	return sc
}

func TestReadFile(t *testing.T) {
	sc := newTestScanner(t)
	tool := NewReadFileTool(sc)

	tests := []struct {
		name        string
		path        string
		wantErr     string
		wantContent string
	}{
		{name: "reads full content", path: "main.go", wantContent: "package main\n\nfunc main() {}\n"},
		{name: "nested file", path: "src/util.py", wantContent: "x = 1\n"},
		{name: "escape via dotdot", path: "../../etc/passwd", wantErr: "escapes repository root"},
		{name: "absolute path", path: "/etc/passwd", wantErr: "escapes repository root"},
		{name: "not found", path: "missing.go", wantErr: "file not found"},
		{name: "binary file", path: "blob.go", wantErr: "not valid UTF-8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tool.Fn(context.Background(), map[string]any{"path": tt.path})
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("err = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.wantContent {
				t.Errorf("content = %q, want %q", got, tt.wantContent)
			}
		})
	}
}

func TestReadFileRespectsSizeCap(t *testing.T) {
	root := t.TempDir()
	big := strings.Repeat("// padding\n", 100)
	if err := os.WriteFile(filepath.Join(root, "big.go"), []byte(big), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := scanner.DefaultConfig()
	cfg.MaxFileSize = 64
	sc, err := scanner.New(root, cfg)
	if err != nil {
		t.Fatal(err)
	}

	_, err = NewReadFileTool(sc).Fn(context.Background(), map[string]any{"path": "big.go"})
	if err == nil || !strings.Contains(err.Error(), "maximum size") {
		t.Errorf("err = %v, want size-cap rejection", err)
	}
}

func TestListFiles(t *testing.T) {
	sc := newTestScanner(t)
	tool := NewListFilesTool(sc)

	out, err := tool.Fn(context.Background(), map[string]any{"directory": ""})
	if err != nil {
		t.Fatal(err)
	}

	var result struct {
		Directory string          `json:"directory"`
		Entries   []scanner.Entry `json:"entries"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}

	names := make(map[string]bool)
	for _, e := range result.Entries {
		names[e.Name] = e.IsDir
	}
	if _, ok := names["main.go"]; !ok {
		t.Error("main.go missing from listing")
	}
	if isDir, ok := names["src/"]; !ok || !isDir {
		t.Error("src/ should be listed as a directory with trailing slash")
	}
}

func TestListFilesErrors(t *testing.T) {
	sc := newTestScanner(t)
	tool := NewListFilesTool(sc)

	if _, err := tool.Fn(context.Background(), map[string]any{"directory": "../.."}); err == nil ||
		!strings.Contains(err.Error(), "escapes repository root") {
		t.Errorf("escape err = %v", err)
	}
	if _, err := tool.Fn(context.Background(), map[string]any{"directory": "nope"}); err == nil ||
		!strings.Contains(err.Error(), "not found") {
		t.Errorf("not-found err = %v", err)
	}
}

func TestGetFileInfo(t *testing.T) {
	sc := newTestScanner(t)
	tool := NewFileInfoTool(sc)

	out, err := tool.Fn(context.Background(), map[string]any{"path": "main.go"})
	if err != nil {
		t.Fatal(err)
	}

	var info struct {
		Path      string `json:"path"`
		Language  string `json:"language"`
		LineCount int    `json:"line_count"`
		SizeBytes int    `json:"size_bytes"`
	}
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatal(err)
	}
	if info.Language != "Go" {
		t.Errorf("language = %q, want Go", info.Language)
	}
	if info.LineCount != 3 {
		t.Errorf("line_count = %d, want 3", info.LineCount)
	}
	if info.SizeBytes != len("package main\n\nfunc main() {}\n") {
		t.Errorf("size_bytes = %d", info.SizeBytes)
	}

	if _, err := tool.Fn(context.Background(), map[string]any{"path": "missing.go"}); err == nil ||
		!strings.Contains(err.Error(), "not found") {
		t.Errorf("not-found err = %v", err)
	}
}
