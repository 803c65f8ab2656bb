package scanner

import (
	"path/filepath"
	"strings"
)

var languageByExt = map[string]string{
	"go":    "Go",
	"rs":    "Rust",
	"py":    "Python",
	"js":    "JavaScript",
	"jsx":   "JavaScript",
	"ts":    "TypeScript",
	"tsx":   "TypeScript",
	"java":  "Java",
	"c":     "C",
	"h":     "C",
	"cpp":   "C++",
	"cc":    "C++",
	"hpp":   "C++",
	"rb":    "Ruby",
	"php":   "PHP",
	"cs":    "C#",
	"swift": "Swift",
	"kt":    "Kotlin",
	"sh":    "Shell",
	"sql":   "SQL",
}

// Language guesses the programming language from a file extension.
// Unknown extensions map to "Unknown".
func Language(path string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if lang, ok := languageByExt[ext]; ok {
		return lang
	}
	return "Unknown"
}

// LanguageDistribution counts scanned files per language.
func LanguageDistribution(files []File) map[string]int {
	dist := make(map[string]int)
	for _, f := range files {
		dist[Language(f.Path)]++
	}
	return dist
}
