// Package mlscore computes the ML Test Score from a YAML rubric sheet.
//
// The sheet maps each rubric section to its tests and each test to a status:
//
//	data:
//	  feature_expectations: auto
//	  privacy_controls: manual
//	model:
//	  offline_online_correlation: todo
//
// An automated test scores 1.0, a manual one 0.5 and anything else 0. The
// final score is the lowest section score.
package mlscore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// MaxSectionScore is the rubric maximum for every section.
const MaxSectionScore = 7

// Sections lists the rubric sections in report order.
var Sections = []string{"data", "model", "infra", "monitoring"}

// Test statuses.
const (
	StatusAuto   = "auto"
	StatusManual = "manual"
)

// ErrSheetNotFound is returned when the score sheet does not exist.
var ErrSheetNotFound = errors.New("score sheet not found")

// Sheet is the parsed rubric: section -> test -> status.
type Sheet map[string]map[string]string

// TestResult is the score of one rubric test.
type TestResult struct {
	Name   string  `json:"name"`
	Status string  `json:"status"`
	Points float64 `json:"points"`
}

// SectionResult is the score of one rubric section.
type SectionResult struct {
	Name  string       `json:"name"`
	Score float64      `json:"score"`
	Max   int          `json:"max"`
	Tests []TestResult `json:"tests"`
}

// Label returns the section name for display.
func (s SectionResult) Label() string {
	return cases.Title(language.English).String(s.Name)
}

// Result is a computed ML Test Score.
type Result struct {
	Sections []SectionResult `json:"sections"`
	Final    float64         `json:"final"`
	// Unknown lists sheet sections outside the rubric. They do not count.
	Unknown []string `json:"unknown,omitempty"`
}

// Badge returns the badge text, e.g. "3.5/7".
func (r *Result) Badge() string {
	return fmt.Sprintf("%.1f/%d", r.Final, MaxSectionScore)
}

// Points returns the score contribution of a test status.
func Points(status string) float64 {
	switch status {
	case StatusAuto:
		return 1.0
	case StatusManual:
		return 0.5
	default:
		return 0
	}
}

// Parse decodes a score sheet.
func Parse(data []byte) (Sheet, error) {
	var raw map[string]map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse score sheet: %w", err)
	}

	sheet := make(Sheet, len(raw))
	for section, tests := range raw {
		sheet[section] = make(map[string]string, len(tests))
		for name, status := range tests {
			if s, ok := status.(string); ok {
				sheet[section][name] = s
			} else {
				sheet[section][name] = fmt.Sprint(status)
			}
		}
	}
	return sheet, nil
}

// Load reads and parses the score sheet at path.
func Load(path string) (Sheet, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from config
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, path)
		}
		return nil, fmt.Errorf("failed to read score sheet: %w", err)
	}
	return Parse(data)
}

// Compute scores a sheet. Missing sections score 0.
func Compute(sheet Sheet) *Result {
	result := &Result{Sections: make([]SectionResult, 0, len(Sections))}

	for i, name := range Sections {
		section := SectionResult{Name: name, Max: MaxSectionScore}

		tests := sheet[name]
		names := make([]string, 0, len(tests))
		for test := range tests {
			names = append(names, test)
		}
		sort.Strings(names)

		for _, test := range names {
			status := tests[test]
			points := Points(status)
			section.Score += points
			section.Tests = append(section.Tests, TestResult{Name: test, Status: status, Points: points})
		}

		if i == 0 || section.Score < result.Final {
			result.Final = section.Score
		}
		result.Sections = append(result.Sections, section)
	}

	for name := range sheet {
		if !isRubricSection(name) {
			result.Unknown = append(result.Unknown, name)
		}
	}
	sort.Strings(result.Unknown)

	return result
}

// WriteBadge writes the badge text to path, creating parent directories.
func WriteBadge(path string, r *Result) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create badge directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(r.Badge()), 0o600); err != nil {
		return fmt.Errorf("failed to write badge: %w", err)
	}
	return nil
}

func isRubricSection(name string) bool {
	for _, s := range Sections {
		if s == name {
			return true
		}
	}
	return false
}
