package smell

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// Options holds rule-specific settings as decoded from configuration.
// Values arrive from YAML, JSON or env vars, so decoding is weakly typed:
// "true" decodes into a bool and "a, b" into a string list.
type Options map[string]any

// Decode fills out, a pointer to a struct with mapstructure tags, from the
// options. Fields without a matching key keep their current value, so callers
// pre-fill out with defaults. Unknown keys are an error.
func (o Options) Decode(out any) error {
	if len(o) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ZeroFields:       true,
		ErrorUnused:      true,
		DecodeHook:       splitListHook,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(map[string]any(o)); err != nil {
		return fmt.Errorf("decode options: %w", err)
	}
	return nil
}

// splitListHook turns "a, b" into []string{"a", "b"} for list fields.
func splitListHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Slice {
		return data, nil
	}
	var out []string
	for _, part := range strings.Split(data.(string), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out, nil
}

// Unknown returns the keys not listed in allowed, sorted.
func (o Options) Unknown(allowed []string) []string {
	ok := make(map[string]bool, len(allowed))
	for _, k := range allowed {
		ok[k] = true
	}
	var unknown []string
	for _, k := range sortedKeys(o) {
		if !ok[k] {
			unknown = append(unknown, k)
		}
	}
	return unknown
}

func (o Options) checkUnknown(ruleID string, allowed []string) []string {
	var problems []string
	for _, k := range o.Unknown(allowed) {
		problems = append(problems, fmt.Sprintf("rules.%s: unknown option %q", ruleID, k))
	}
	return problems
}

// StringSet converts a list to a lookup set.
func StringSet(list []string) map[string]bool {
	set := make(map[string]bool, len(list))
	for _, s := range list {
		set[s] = true
	}
	return set
}
