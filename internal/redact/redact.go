// Package redact removes credentials, tokens and personal data from strings
// before they are logged. Error responses never carry internal details, so
// redaction only matters for log output.
package redact

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Placeholders substituted for redacted values.
const (
	CredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	KeyPlaceholder        = "[REDACTED_KEY]"
	JWTPlaceholder        = "[REDACTED_JWT]"
	EmailPlaceholder      = "[REDACTED_EMAIL]"
	PathPlaceholder       = "[REDACTED_PATH]"
)

type rule struct {
	re   *regexp.Regexp
	repl string
}

// rules run in order; earlier rules must not leave text a later rule would
// partially match (a JWT is removed before the generic token rule runs).
var rules = []rule{
	{regexp.MustCompile(`(?i)\b(postgres(?:ql)?|smtps?)://[^\s@/]+@`), "${1}://" + CredentialPlaceholder + "@"},
	{regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`), JWTPlaceholder},
	{regexp.MustCompile(`(?i)(password|passwd|pwd|contraseña)\s*[=:]\s*['"]?[^'"&\s]+`), CredentialPlaceholder},
	{regexp.MustCompile(`(?i)(secret|api[_-]?key|token)\s*[=:]\s*['"]?[A-Za-z0-9_\-.~+/]{8,}`), KeyPlaceholder},
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), EmailPlaceholder},
	{regexp.MustCompile(`(/[\w.-]+){3,}`), PathPlaceholder},
}

// String redacts sensitive information from the input string.
func String(input string) string {
	for _, r := range rules {
		if input == "" {
			break
		}
		input = r.re.ReplaceAllString(input, r.repl)
	}
	return input
}

// Error redacts sensitive information from an error's Error() output.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}

// Email masks an address for logging, keeping the first character of the
// local part and the domain: "ana@example.com" becomes "a***@example.com".
func Email(addr string) string {
	local, domain, ok := strings.Cut(strings.TrimSpace(addr), "@")
	if !ok || local == "" || domain == "" {
		return EmailPlaceholder
	}
	first, _ := utf8.DecodeRuneInString(local)
	return string(first) + "***@" + domain
}

// DSN masks the password of a connection URL, leaving the host and database
// visible for diagnostics.
func DSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "invalid-url"
	}
	if u.User == nil {
		return dsn
	}
	if _, has := u.User.Password(); has {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}
