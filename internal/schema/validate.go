// Package schema decodes and checks the JSON returned by the AI corrector.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ValidationError describes a single schema violation.
type ValidationError struct {
	Path    string
	Message string
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Change is one correction the model reports having made.
type Change struct {
	Issue string `json:"issue"`
	Fix   string `json:"fix"`
}

// Correction is the corrector's reply: the rewritten text, paragraphs
// separated by a blank line, and the changes made.
type Correction struct {
	Text    string   `json:"corrected_text"`
	Changes []Change `json:"changes"`
}

// Decode parses raw model output. Raw control characters inside JSON strings
// are tolerated, since models often emit literal newlines in long text.
func Decode(raw string) (*Correction, []ValidationError) {
	var c Correction
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		if err2 := json.Unmarshal([]byte(escapeControl(raw)), &c); err2 != nil {
			return nil, []ValidationError{{"$", fmt.Sprintf("invalid JSON: %v", err)}}
		}
	}
	if errs := Validate(&c); len(errs) > 0 {
		return &c, errs
	}
	return &c, nil
}

// Validate checks a decoded correction for structural problems.
func Validate(c *Correction) []ValidationError {
	var errs []ValidationError
	if len(c.Changes) > 0 && strings.TrimSpace(c.Text) == "" {
		errs = append(errs, ValidationError{"corrected_text", "required when changes are listed"})
	}
	for i, ch := range c.Changes {
		prefix := fmt.Sprintf("changes[%d]", i)
		if strings.TrimSpace(ch.Issue) == "" {
			errs = append(errs, ValidationError{prefix + ".issue", "required"})
		}
		if strings.TrimSpace(ch.Fix) == "" {
			errs = append(errs, ValidationError{prefix + ".fix", "required"})
		}
	}
	return errs
}

// escapeControl escapes newlines, carriage returns and tabs that appear
// inside string literals.
func escapeControl(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inString, escaped := false, false
	for _, r := range s {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			case r == '\n':
				b.WriteString(`\n`)
				continue
			case r == '\r':
				b.WriteString(`\r`)
				continue
			case r == '\t':
				b.WriteString(`\t`)
				continue
			}
		} else if r == '"' {
			inString = true
		}
		b.WriteRune(r)
	}
	return b.String()
}
