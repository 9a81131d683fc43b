// Package redact replaces credentials in text with [REDACTED] before it is
// logged or returned in an error body.
package redact

import "regexp"

var patterns []*regexp.Regexp

func init() {
	raw := []string{
		// Bearer tokens in headers or messages
		`Bearer\s+[A-Za-z0-9\-._~+/]+=*`,
		// Provider API keys (Anthropic sk-ant-..., OpenAI sk-...)
		`sk-(ant-)?[A-Za-z0-9_\-]{16,}`,
		// OAuth form fields and query parameters
		`(?i)(client_secret|access_token|refresh_token|assertion)=[^&\s"]+`,
		// SharePoint / Azure SAS signatures
		`(?i)([?&]sig=)[^&\s"]+`,
		// Private key blocks
		`-----BEGIN [A-Z ]+PRIVATE KEY-----[\s\S]*?-----END [A-Z ]+PRIVATE KEY-----`,
		// Generic key/secret/token/password assignments
		`(?i)(api[_-]?key|api[_-]?secret|secret[_-]?key|client[_-]?secret|token|password|passwd|credentials)\s*[:=]\s*\S+`,
	}
	for _, r := range raw {
		patterns = append(patterns, regexp.MustCompile(r))
	}
}

// Redact replaces secret patterns in text with [REDACTED].
func Redact(text string) string {
	for _, p := range patterns {
		text = p.ReplaceAllString(text, "[REDACTED]")
	}
	return text
}
