package logger

import (
	"regexp"
	"strings"
)

// Sensitive field patterns to filter from logs
var (
	tokenPattern    = regexp.MustCompile(`(?i)(token|bearer)[\s:=]+[^\s]+`)
	passwordPattern = regexp.MustCompile(`(?i)(password|passwd|pwd)[\s:=]+[^\s]+`)
	secretPattern   = regexp.MustCompile(`(?i)(secret|access[_-]?key)[\s:=]+[^\s]+`)
	dsnPattern      = regexp.MustCompile(`(?i)(postgres(?:ql)?://[^:\s]+:)[^@\s]+@`)
)

const (
	redactedPlaceholder = "[REDACTED]"
	maskSuffix          = "***"
	maskVisibleChars    = 4
	minMaskableLength   = 2 * maskVisibleChars
)

// SanitizeLogMessage removes sensitive information from log messages
func SanitizeLogMessage(message string) string {
	message = tokenPattern.ReplaceAllString(message, "${1}="+redactedPlaceholder)
	message = passwordPattern.ReplaceAllString(message, "${1}="+redactedPlaceholder)
	message = secretPattern.ReplaceAllString(message, "${1}="+redactedPlaceholder)
	message = dsnPattern.ReplaceAllString(message, "${1}"+redactedPlaceholder+"@")
	return message
}

// MaskToken keeps a short prefix of a token id so log lines stay
// correlatable without disclosing the credential. Short ids are fully hidden.
func MaskToken(id string) string {
	if len(id) < minMaskableLength {
		return maskSuffix
	}
	var b strings.Builder
	b.Grow(maskVisibleChars + len(maskSuffix))
	b.WriteString(id[:maskVisibleChars])
	b.WriteString(maskSuffix)
	return b.String()
}
