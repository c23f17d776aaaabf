package output

// LintOutput is the JSON output for the lint command.
type LintOutput struct {
	RunID       string           `json:"run_id,omitempty"`
	Fingerprint string           `json:"fingerprint"`
	Summary     LintSummary      `json:"summary"`
	Files       []LintFileResult `json:"files"`
}

// LintSummary aggregates a lint run.
type LintSummary struct {
	FilesAnalyzed   int `json:"files_analyzed"`
	FilesWithIssues int `json:"files_with_issues"`
	CacheHits       int `json:"cache_hits"`
	TotalIssues     int `json:"total_issues"`
	Errors          int `json:"errors"`
	Warnings        int `json:"warnings"`
	Info            int `json:"info"`
	Hints           int `json:"hints"`
	RuleFailures    int `json:"rule_failures"`
	Skipped         int `json:"skipped_nodes"`
	ReadErrors      int `json:"read_errors"`
}

// LintFileResult holds the diagnostics of one file.
type LintFileResult struct {
	Path        string           `json:"path"`
	Diagnostics []LintDiagnostic `json:"diagnostics"`
	Skipped     int              `json:"skipped_nodes,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// LintDiagnostic is one diagnostic in JSON output.
type LintDiagnostic struct {
	RuleID           string `json:"rule_id"`
	Code             string `json:"code"`
	Kind             string `json:"kind"`
	Severity         string `json:"severity"`
	Message          string `json:"message"`
	Line             int    `json:"line"`
	Column           int    `json:"column"`
	DocumentationURL string `json:"documentation_url,omitempty"`
}

// IsFailure reports whether the diagnostic is a rule failure.
func (d LintDiagnostic) IsFailure() bool {
	return d.Kind == "rule-failure"
}
