package searchindex

import (
	"strings"

	"github.com/inful/mdfp"
	"gopkg.in/yaml.v3"
)

// Fingerprint hashes everything that influences a page's derived outputs.
// extra carries caller-specific inputs (theme, site name) as key/value pairs.
func (r Record) Fingerprint(extra map[string]string) string {
	fields := map[string]any{
		"title":       r.Title,
		"description": r.Description,
		"url":         r.URL,
		"method":      r.HTTPMethod(),
		"section":     r.Section,
	}
	for k, v := range extra {
		fields["x_"+k] = v
	}
	// yaml.v3 sorts map keys, so the serialization is stable.
	fm, err := yaml.Marshal(fields)
	if err != nil {
		fm = nil
	}
	return mdfp.CalculateFingerprintFromParts(strings.TrimSuffix(string(fm), "\n"), r.Body())
}
