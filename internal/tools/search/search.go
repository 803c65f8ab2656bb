package search

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ChamsBouzaiene/codeaudit/internal/engine"
	"github.com/ChamsBouzaiene/codeaudit/internal/scanner"
)

const (
	defaultMaxResults = 50
	hardMaxResults    = 200
	maxMatchLength    = 300
)

// Match is one search hit.
type Match struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Text string `json:"text"`
}

// NewSearchCodeTool greps the scanner's file selection with a Go regular
// expression. Results are ordered by file (scan order) then line number
// and capped so one broad pattern cannot flood the context.
func NewSearchCodeTool(sc *scanner.Scanner) engine.Tool {
	return engine.Tool{
		Name: "search_code",
		Description: "Searches all auditable files with a regular expression (Go syntax). " +
			"Returns matching lines with file and line number.",
		SchemaJSON: `{"type":"object","properties":{
			"pattern":{"type":"string","description":"Regular expression to search for"},
			"max_results":{"type":"integer","minimum":1,"description":"Result cap, default 50"}
		},"required":["pattern"]}`,
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			pattern, _ := args["pattern"].(string)
			maxResults := defaultMaxResults
			if v, ok := args["max_results"].(float64); ok && v > 0 {
				maxResults = int(v)
			}
			if maxResults > hardMaxResults {
				maxResults = hardMaxResults
			}

			re, err := regexp.Compile(pattern)
			if err != nil {
				return "", fmt.Errorf("invalid pattern %q: %v", pattern, err)
			}

			files, err := sc.CollectFiles()
			if err != nil {
				return "", err
			}

			matches := make([]Match, 0, 16)
			truncated := false
		scan:
			for _, f := range files {
				path := filepath.Join(sc.Root(), filepath.FromSlash(f.Path))
				found, err := grepFile(path, f.Path, re, maxResults-len(matches))
				if err != nil {
					continue // unreadable files are skipped, not fatal
				}
				matches = append(matches, found...)
				if len(matches) >= maxResults {
					truncated = true
					break scan
				}
			}

			result := map[string]any{
				"pattern":   pattern,
				"matches":   matches,
				"truncated": truncated,
			}
			out, err := json.Marshal(result)
			if err != nil {
				return "", err
			}
			return string(out), nil
		},
	}
}

func grepFile(absPath, relPath string, re *regexp.Regexp, limit int) ([]Match, error) {
	if limit <= 0 {
		return nil, nil
	}
	f, err := os.Open(absPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var matches []Match
	s := bufio.NewScanner(f)
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for s.Scan() {
		lineNo++
		line := s.Text()
		if !re.MatchString(line) {
			continue
		}
		text := strings.TrimSpace(line)
		if len(text) > maxMatchLength {
			text = text[:maxMatchLength] + "..."
		}
		matches = append(matches, Match{File: relPath, Line: lineNo, Text: text})
		if len(matches) >= limit {
			break
		}
	}
	return matches, s.Err()
}
