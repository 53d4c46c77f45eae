// Package redact strips PII-shaped substrings out of free-form log text.
//
// This is pattern matching, not validation: anything shaped like a
// hyphenated phone number, a dotted quad, or an email is replaced, whether
// or not it really is one. Callers rely on that exact behavior (an order
// code like 123-456-7890 IS redacted; 555-12 is not).
package redact

import (
	"regexp"
)

const (
	TokenRedacted      = "[REDACTED]"
	TokenIPRedacted    = "[IP_REDACTED]"
	TokenEmailRedacted = "[EMAIL_REDACTED]"
)

// Compiled once at init and never mutated, so they are safe to share
// across concurrent batch invocations.
var (
	phone10Pattern = regexp.MustCompile(`\d{3}-\d{3}-\d{4}`)
	phone7Pattern  = regexp.MustCompile(`\d{3}-\d{4}`)
	ipPattern      = regexp.MustCompile(`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}`)
	emailPattern   = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
)

// Redact replaces phone-, IP-, and email-shaped substrings with fixed
// tokens. Pure and total: any input, including empty, returns immediately.
//
// Rule order matters. The 10-digit phone rule runs before the 7-digit one
// so that "123-456-7890" is consumed whole instead of leaving a dangling
// 7-digit match on its tail.
func Redact(text string) string {
	text = phone10Pattern.ReplaceAllString(text, TokenRedacted)
	text = phone7Pattern.ReplaceAllString(text, TokenRedacted)
	text = ipPattern.ReplaceAllString(text, TokenIPRedacted)
	text = emailPattern.ReplaceAllString(text, TokenEmailRedacted)
	return text
}
