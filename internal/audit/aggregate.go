package audit

import "sort"

// Summary holds issue counts for a completed run.
type Summary struct {
	Total      int
	BySeverity map[Severity]int
	ByCategory map[string]int
}

// Summarize counts issues by severity and category.
func Summarize(issues []Issue) Summary {
	s := Summary{
		Total:      len(issues),
		BySeverity: make(map[Severity]int),
		ByCategory: make(map[string]int),
	}
	for _, issue := range issues {
		s.BySeverity[issue.Severity]++
		s.ByCategory[issue.Category]++
	}
	return s
}

// CountAtOrAbove returns how many issues have severity >= min.
func CountAtOrAbove(issues []Issue, min Severity) int {
	n := 0
	for _, issue := range issues {
		if issue.Severity.Rank() >= min.Rank() {
			n++
		}
	}
	return n
}

// FileIssues groups the issues belonging to one file.
type FileIssues struct {
	FilePath string
	Issues   []Issue
}

// GroupByFile groups issues per file. Files are ordered alphabetically and
// issues within a file by severity (most serious first), then line number.
func GroupByFile(issues []Issue) []FileIssues {
	byFile := make(map[string][]Issue)
	for _, issue := range issues {
		byFile[issue.FilePath] = append(byFile[issue.FilePath], issue)
	}

	out := make([]FileIssues, 0, len(byFile))
	for path, group := range byFile {
		SortIssues(group)
		out = append(out, FileIssues{FilePath: path, Issues: group})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].FilePath < out[j].FilePath
	})
	return out
}

// SortIssues orders issues in place by severity descending, then line
// number ascending, then title.
func SortIssues(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Severity.Rank() != issues[j].Severity.Rank() {
			return issues[i].Severity.Rank() > issues[j].Severity.Rank()
		}
		if issues[i].LineNumber != issues[j].LineNumber {
			return issues[i].LineNumber < issues[j].LineNumber
		}
		return issues[i].Title < issues[j].Title
	})
}

// FileCount is an issue tally for one file.
type FileCount struct {
	FilePath string
	Count    int
}

// MostProblematicFiles returns up to n files ordered by issue count
// descending, ties broken alphabetically.
func MostProblematicFiles(issues []Issue, n int) []FileCount {
	counts := make(map[string]int)
	for _, issue := range issues {
		counts[issue.FilePath]++
	}

	out := make([]FileCount, 0, len(counts))
	for path, count := range counts {
		out = append(out, FileCount{FilePath: path, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].FilePath < out[j].FilePath
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
