package filesystem

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ChamsBouzaiene/codeaudit/internal/engine"
	"github.com/ChamsBouzaiene/codeaudit/internal/scanner"
)

// NewListFilesTool lists one directory of the audited tree. Filtering
// (hidden entries, excluded directories) is the scanner's policy; the tool
// never re-implements it.
func NewListFilesTool(sc *scanner.Scanner) engine.Tool {
	return engine.Tool{
		Name: "list_files",
		Description: "Lists the entries of a directory in the repository. " +
			"Directories carry a trailing slash. Pass an empty string for the repository root.",
		SchemaJSON: `{"type":"object","properties":{"directory":{"type":"string","description":"Directory path relative to the repository root"}},"required":["directory"]}`,
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			dir, _ := args["directory"].(string)

			entries, err := sc.ListDir(dir)
			if err != nil {
				if os.IsNotExist(err) {
					return "", fmt.Errorf("directory not found: %s", dir)
				}
				return "", err
			}

			result := map[string]any{
				"directory": dir,
				"entries":   entries,
			}
			out, err := json.Marshal(result)
			if err != nil {
				return "", err
			}
			return string(out), nil
		},
	}
}
