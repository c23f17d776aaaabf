package output

import (
	"fmt"
	"io"
	"strings"
)

// WriteGitHubAnnotations writes one workflow command per diagnostic.
// See: https://docs.github.com/actions/using-workflows/workflow-commands-for-github-actions
func WriteGitHubAnnotations(w io.Writer, files []LintFileResult) error {
	for _, f := range files {
		if f.Error != "" {
			if _, err := fmt.Fprintf(w, "::error file=%s::%s\n", escapeProperty(f.Path), escapeData(f.Error)); err != nil {
				return err
			}
		}
		for _, d := range f.Diagnostics {
			props := []string{"file=" + escapeProperty(f.Path)}
			if d.Line > 0 {
				props = append(props, fmt.Sprintf("line=%d", d.Line), fmt.Sprintf("col=%d", d.Column))
			}
			props = append(props, "title="+escapeProperty(d.Code+" "+d.RuleID))
			if _, err := fmt.Fprintf(w, "::%s %s::%s\n", annotationLevel(d), strings.Join(props, ","), escapeData(d.Message)); err != nil {
				return err
			}
		}
	}
	return nil
}

func annotationLevel(d LintDiagnostic) string {
	if d.IsFailure() {
		return "error"
	}
	switch d.Severity {
	case "error":
		return "error"
	case "warning":
		return "warning"
	default:
		return "notice"
	}
}

func escapeData(s string) string {
	return strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A").Replace(s)
}

func escapeProperty(s string) string {
	return strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A", ":", "%3A", ",", "%2C").Replace(s)
}
