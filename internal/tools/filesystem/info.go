package filesystem

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ChamsBouzaiene/codeaudit/internal/engine"
	"github.com/ChamsBouzaiene/codeaudit/internal/scanner"
)

// NewFileInfoTool reports language, line count and byte size of a file so
// the model can decide whether a full read is worth the context.
func NewFileInfoTool(sc *scanner.Scanner) engine.Tool {
	return engine.Tool{
		Name:        "get_file_info",
		Description: "Returns the detected language, line count and byte size of a file without its content.",
		SchemaJSON:  `{"type":"object","properties":{"path":{"type":"string","description":"File path relative to the repository root"}},"required":["path"]}`,
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
			lines := strings.Count(string(content), "\n")
			if len(content) > 0 && !strings.HasSuffix(string(content), "\n") {
				lines++
			}

			result := map[string]any{
				"path":       path,
				"language":   scanner.Language(path),
				"line_count": lines,
				"size_bytes": len(content),
			}
			out, err := json.Marshal(result)
			if err != nil {
				return "", err
			}
			return string(out), nil
		},
	}
}
