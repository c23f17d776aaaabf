package output

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/mlsmell/pkg/core"
)

// SARIF 2.1.0 schema types
// See: https://docs.oasis-open.org/sarif/sarif/v2.1.0/sarif-v2.1.0.html

const (
	sarifSchema  = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"
	sarifVersion = "2.1.0"
	toolURI      = "https://mlsmell.dev"
)

// SARIFReport is the top-level SARIF document.
type SARIFReport struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []SARIFRun `json:"runs"`
}

// SARIFRun represents a single analysis run.
type SARIFRun struct {
	Tool        SARIFTool         `json:"tool"`
	Results     []SARIFResult     `json:"results"`
	Invocations []SARIFInvocation `json:"invocations,omitempty"`
}

// SARIFTool describes the analysis tool.
type SARIFTool struct {
	Driver SARIFDriver `json:"driver"`
}

// SARIFDriver describes the primary analysis component.
type SARIFDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version,omitempty"`
	InformationURI string      `json:"informationUri,omitempty"`
	Rules          []SARIFRule `json:"rules,omitempty"`
}

// SARIFRule describes a rule.
type SARIFRule struct {
	ID                   string                  `json:"id"`
	Name                 string                  `json:"name,omitempty"`
	ShortDescription     *SARIFMessage           `json:"shortDescription,omitempty"`
	FullDescription      *SARIFMessage           `json:"fullDescription,omitempty"`
	DefaultConfiguration *SARIFRuleConfiguration `json:"defaultConfiguration,omitempty"`
	HelpURI              string                  `json:"helpUri,omitempty"`
	Properties           map[string]any          `json:"properties,omitempty"`
}

// SARIFRuleConfiguration describes the default configuration for a rule.
type SARIFRuleConfiguration struct {
	Level string `json:"level,omitempty"` // error, warning, note, none
}

// SARIFResult represents a single finding.
type SARIFResult struct {
	RuleID              string            `json:"ruleId"`
	RuleIndex           int               `json:"ruleIndex"`
	Level               string            `json:"level,omitempty"`
	Message             SARIFMessage      `json:"message"`
	Locations           []SARIFLocation   `json:"locations,omitempty"`
	PartialFingerprints map[string]string `json:"partialFingerprints,omitempty"`
}

// SARIFMessage contains text in various formats.
type SARIFMessage struct {
	Text     string `json:"text,omitempty"`
	Markdown string `json:"markdown,omitempty"`
}

// SARIFLocation describes where a result was found.
type SARIFLocation struct {
	PhysicalLocation *SARIFPhysicalLocation `json:"physicalLocation,omitempty"`
}

// SARIFPhysicalLocation identifies a file and region.
type SARIFPhysicalLocation struct {
	ArtifactLocation *SARIFArtifactLocation `json:"artifactLocation,omitempty"`
	Region           *SARIFRegion           `json:"region,omitempty"`
}

// SARIFArtifactLocation identifies a file.
type SARIFArtifactLocation struct {
	URI       string `json:"uri,omitempty"`
	URIBaseID string `json:"uriBaseId,omitempty"`
}

// SARIFRegion identifies a region within a file.
type SARIFRegion struct {
	StartLine   int `json:"startLine,omitempty"`
	StartColumn int `json:"startColumn,omitempty"`
}

// SARIFInvocation describes a single invocation of the tool.
type SARIFInvocation struct {
	ExecutionSuccessful        bool                `json:"executionSuccessful"`
	ToolExecutionNotifications []SARIFNotification `json:"toolExecutionNotifications,omitempty"`
}

// SARIFNotification reports a problem the tool hit while running.
type SARIFNotification struct {
	Level     string                `json:"level"`
	Message   SARIFMessage          `json:"message"`
	Locations []SARIFLocation       `json:"locations,omitempty"`
	Rule      *SARIFRuleReference `json:"associatedRule,omitempty"`
}

// SARIFRuleReference references a rule by ID.
type SARIFRuleReference struct {
	ID string `json:"id"`
}

// BuildSARIF converts lint results to a SARIF report. Rule failures become
// tool execution notifications instead of results.
func BuildSARIF(files []LintFileResult, rules []core.RuleInfo, version, root string) *SARIFReport {
	ruleIndex := make(map[string]int, len(rules))
	sarifRules := make([]SARIFRule, 0, len(rules))
	for i, info := range rules {
		ruleIndex[info.ID] = i
		sarifRules = append(sarifRules, SARIFRule{
			ID:                   info.ID,
			Name:                 info.Name,
			ShortDescription:     &SARIFMessage{Text: info.Description},
			FullDescription:      fullDescription(info),
			DefaultConfiguration: &SARIFRuleConfiguration{Level: sarifLevel(info.DefaultSeverity.String())},
			HelpURI:              info.DocumentationURL,
			Properties: map[string]any{
				"code":  info.Code,
				"group": info.Group,
				"tags":  []string{"ml", info.Group},
			},
		})
	}

	results := make([]SARIFResult, 0)
	var notes []SARIFNotification
	for _, f := range files {
		uri := relativeURI(f.Path, root)
		for _, d := range f.Diagnostics {
			loc := SARIFLocation{
				PhysicalLocation: &SARIFPhysicalLocation{
					ArtifactLocation: &SARIFArtifactLocation{URI: uri, URIBaseID: "%SRCROOT%"},
					Region:           region(d.Line, d.Column),
				},
			}
			if d.IsFailure() {
				notes = append(notes, SARIFNotification{
					Level:     "error",
					Message:   SARIFMessage{Text: d.Message},
					Locations: []SARIFLocation{loc},
					Rule:      &SARIFRuleReference{ID: d.RuleID},
				})
				continue
			}
			results = append(results, SARIFResult{
				RuleID:    d.RuleID,
				RuleIndex: ruleIndex[d.RuleID],
				Level:     sarifLevel(d.Severity),
				Message:   SARIFMessage{Text: d.Message},
				Locations: []SARIFLocation{loc},
				PartialFingerprints: map[string]string{
					"mlsmell/v1": partialFingerprint(d.RuleID, uri, d.Message),
				},
			})
		}
	}

	return &SARIFReport{
		Schema:  sarifSchema,
		Version: sarifVersion,
		Runs: []SARIFRun{{
			Tool: SARIFTool{Driver: SARIFDriver{
				Name:           "mlsmell",
				Version:        version,
				InformationURI: toolURI,
				Rules:          sarifRules,
			}},
			Results: results,
			Invocations: []SARIFInvocation{{
				ExecutionSuccessful:        len(notes) == 0,
				ToolExecutionNotifications: notes,
			}},
		}},
	}
}

func fullDescription(info core.RuleInfo) *SARIFMessage {
	if info.Rationale == "" {
		return nil
	}
	return &SARIFMessage{Text: info.Rationale}
}

func region(line, col int) *SARIFRegion {
	if line <= 0 {
		return nil
	}
	return &SARIFRegion{StartLine: line, StartColumn: col}
}

// sarifLevel maps a severity name to a SARIF level.
func sarifLevel(severity string) string {
	switch severity {
	case "error":
		return "error"
	case "warning":
		return "warning"
	default:
		return "note"
	}
}

// partialFingerprint ignores line numbers so findings survive unrelated edits.
func partialFingerprint(ruleID, uri, message string) string {
	h := sha256.Sum256([]byte(ruleID + "|" + uri + "|" + message))
	return hex.EncodeToString(h[:16])
}

func relativeURI(path, root string) string {
	if root != "" {
		if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(path)
}
