package smell

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Fingerprint hashes the effective rule set for cfg: the enabled rule IDs,
// their effective severities and their options. Two configs with the same
// fingerprint produce identical reports for identical input.
func Fingerprint(cfg *Config) string {
	var b strings.Builder
	for _, def := range Definitions() {
		id := def.Meta.ID
		if cfg.IsDisabled(id) {
			continue
		}
		fmt.Fprintf(&b, "%s|%s|%s\n", id, def.Meta.Code, cfg.GetSeverity(id, def.Meta.Severity))
		opts := cfg.GetRuleOptions(id)
		keys := sortedKeys(opts)
		for _, k := range keys {
			fmt.Fprintf(&b, "  %s=%v\n", k, opts[k])
		}
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
