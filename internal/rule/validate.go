package rule

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationError describes a single problem with a rule record.
type ValidationError struct {
	Path    string
	Message string
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks rule records for structural problems. It does not reject
// unknown check values; those are a dispatch-time no-op.
func Validate(rules []Rule) []ValidationError {
	var errs []ValidationError
	for i, r := range rules {
		prefix := fmt.Sprintf("rules[%d]", i)
		if r.Title == "" {
			errs = append(errs, ValidationError{prefix + ".title", "required"})
		}
		if !r.Type.Valid() {
			errs = append(errs, ValidationError{prefix + ".rule_type", fmt.Sprintf("invalid: %q", r.Type)})
		}
		if !r.DocType.Valid() {
			errs = append(errs, ValidationError{prefix + ".doc_type", fmt.Sprintf("invalid: %q", r.DocType)})
		}
		if strings.TrimSpace(r.CheckValue) == "" {
			errs = append(errs, ValidationError{prefix + ".check_value", "required"})
		}
		if r.Priority < 0 {
			errs = append(errs, ValidationError{prefix + ".priority", "must be >= 0"})
		}
		if r.Type == TypeColor && !r.UseAI && !isRGBList(r.ExpectedValue) {
			errs = append(errs, ValidationError{prefix + ".expected_value", fmt.Sprintf("color must be r,g,b: %q", r.ExpectedValue)})
		}
	}
	return errs
}

func isRGBList(s string) bool {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return false
	}
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 || n > 255 {
			return false
		}
	}
	return true
}
