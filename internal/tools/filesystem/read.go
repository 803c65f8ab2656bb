package filesystem

import (
	"context"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/ChamsBouzaiene/codeaudit/internal/engine"
	"github.com/ChamsBouzaiene/codeaudit/internal/scanner"
)

// NewReadFileTool returns the complete text of one file. The scanner
// enforces containment, the exclude policy and the size cap before any
// bytes are read.
func NewReadFileTool(sc *scanner.Scanner) engine.Tool {
	return engine.Tool{
		Name: "read_file",
		Description: "Reads the full content of a file. Provide the path relative to the " +
			"repository root, exactly as returned by list_files.",
		SchemaJSON: `{"type":"object","properties":{"path":{"type":"string","description":"File path relative to the repository root"}},"required":["path"]}`,
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			path, _ := args["path"].(string)

			abs, err := sc.CheckFile(path)
			if err != nil {
				if os.IsNotExist(err) {
					return "", fmt.Errorf("file not found: %s", path)
				}
				return "", err
			}

			content, err := os.ReadFile(abs)
			if err != nil {
				return "", err
			}
			if !utf8.Valid(content) {
				return "", fmt.Errorf("file %s is not valid UTF-8 text", path)
			}
			return string(content), nil
		},
	}
}
