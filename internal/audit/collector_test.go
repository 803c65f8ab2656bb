package audit

import "testing"

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Severity
		wantErr bool
	}{
		{name: "low", input: "low", want: SeverityLow},
		{name: "critical", input: "critical", want: SeverityCritical},
		{name: "mixed case", input: "High", want: SeverityHigh},
		{name: "whitespace", input: " medium ", want: SeverityMedium},
		{name: "unknown", input: "severe", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSeverity(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSeverityOrdering(t *testing.T) {
	order := Severities()
	for i := 1; i < len(order); i++ {
		if order[i-1].Rank() >= order[i].Rank() {
			t.Errorf("severity %s should rank below %s", order[i-1], order[i])
		}
	}
}

func TestCollectorDeduplicates(t *testing.T) {
	issue := Issue{
		FilePath:   "api.js",
		LineNumber: 7,
		Severity:   SeverityCritical,
		Category:   "security",
		Title:      "SQL Injection",
	}

	c := NewCollector()
	if !c.Add(issue) {
		t.Fatal("first Add should record the issue")
	}
	if c.Add(issue) {
		t.Fatal("second Add of identical issue should be a no-op")
	}
	if c.Len() != 1 {
		t.Fatalf("want 1 issue, got %d", c.Len())
	}
}

func TestCollectorDedupKeyFields(t *testing.T) {
	base := Issue{
		FilePath:   "main.go",
		LineNumber: 10,
		Severity:   SeverityMedium,
		Category:   "bug",
		Title:      "nil deref",
	}

	tests := []struct {
		name   string
		mutate func(Issue) Issue
		added  bool
	}{
		{
			name:   "different description still duplicate",
			mutate: func(i Issue) Issue { i.Description = "other text"; return i },
			added:  false,
		},
		{
			name:   "different severity still duplicate",
			mutate: func(i Issue) Issue { i.Severity = SeverityHigh; return i },
			added:  false,
		},
		{
			name:   "different line is distinct",
			mutate: func(i Issue) Issue { i.LineNumber = 11; return i },
			added:  true,
		},
		{
			name:   "different category is distinct",
			mutate: func(i Issue) Issue { i.Category = "style"; return i },
			added:  true,
		},
		{
			name:   "title case matters",
			mutate: func(i Issue) Issue { i.Title = "Nil Deref"; return i },
			added:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCollector()
			c.Add(base)
			if got := c.Add(tt.mutate(base)); got != tt.added {
				t.Errorf("Add returned %v, want %v", got, tt.added)
			}
		})
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	c := NewCollector()
	c.Add(Issue{FilePath: "a.go", Title: "x", Severity: SeverityLow, Category: "style"})

	snap := c.Snapshot()
	snap[0].FilePath = "mutated"

	if c.Snapshot()[0].FilePath != "a.go" {
		t.Error("mutating a snapshot must not affect the collector")
	}
}
