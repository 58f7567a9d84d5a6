// Package environment inventories the environment variables a source tree
// declares, across manifest envVars, dotenv files, and Dockerfile ENV
// instructions.
package environment

import (
	"strconv"
	"strings"
	"unicode"
)

type EnvType int

const (
	EnvTypeUnknown EnvType = iota
	EnvTypeSecret
	EnvTypeDatabase
	EnvTypeConfig
	EnvTypeGenerated // generated-looking value (uuid, nanoid, jwt)
	EnvTypeURL
	EnvTypeBoolean
	EnvTypeNumeric
)

func (t EnvType) String() string {
	switch t {
	case EnvTypeSecret:
		return "secret"
	case EnvTypeDatabase:
		return "database"
	case EnvTypeConfig:
		return "config"
	case EnvTypeGenerated:
		return "generated"
	case EnvTypeURL:
		return "url"
	case EnvTypeBoolean:
		return "boolean"
	case EnvTypeNumeric:
		return "numeric"
	default:
		return "unknown"
	}
}

// EnvResult is one discovered environment variable with provenance.
type EnvResult struct {
	VarName    string
	Value      string
	Type       EnvType
	Sensitive  bool
	Source     string // e.g. "dotenv:/path/to/.env"
	Confidence int
}

var secretPatterns = []string{
	"secret", "key", "token", "password", "pass", "pwd",
	"auth", "authorization", "credential", "cred",
	"private", "cert", "certificate",
	"api_key", "apikey", "access_key", "secret_key",
	"client_secret", "oauth",
	"bearer", "jwt", "session", "cookie",
	"salt", "signature", "signing",
	"encryption", "cipher",
	"webhook", "vault",
}

var databasePatterns = []string{
	"database_url", "db_url", "dsn", "connection_string",
	"postgres_url", "mysql_url", "mongodb_url", "redis_url",
}

var systemEnvVars = []string{
	"path", "home", "user", "shell", "pwd", "lang", "term", "tmpdir",
	"editor", "pager", "browser", "display", "hostname", "logname",
	"oldpwd", "shlvl", "ssh_auth_sock",
}

// ShouldIgnore reports whether name is a shell/system variable that never
// belongs in a deployment inventory.
func ShouldIgnore(name string) bool {
	lower := strings.ToLower(name)
	for _, sysVar := range systemEnvVars {
		if lower == sysVar {
			return true
		}
	}
	return false
}

// Classify buckets an env var by name and value, and reports whether it
// should be treated as sensitive.
func Classify(name, value string) (EnvType, bool) {
	lower := strings.ToLower(name)

	if looksGenerated(value) {
		return EnvTypeGenerated, true
	}

	for _, pattern := range databasePatterns {
		if strings.Contains(lower, pattern) {
			return EnvTypeDatabase, true
		}
	}

	for _, pattern := range secretPatterns {
		if strings.Contains(lower, pattern) {
			return EnvTypeSecret, true
		}
	}

	if strings.HasPrefix(value, "http") || strings.Contains(lower, "url") {
		return EnvTypeURL, false
	}

	if value == "true" || value == "false" || strings.Contains(lower, "enable") || strings.Contains(lower, "flag") {
		return EnvTypeBoolean, false
	}

	if _, err := strconv.Atoi(value); err == nil && value != "" {
		return EnvTypeNumeric, false
	}

	return EnvTypeConfig, false
}

func looksGenerated(value string) bool {
	if len(value) < 8 {
		return false
	}

	// UUID: 36 chars, 4 dashes.
	if len(value) == 36 && strings.Count(value, "-") == 4 {
		return true
	}

	// JWT: three dot-separated base64 parts.
	if strings.Count(value, ".") == 2 && len(value) > 50 {
		return true
	}

	// Nanoid-style URL-safe base64.
	if len(value) >= 16 && isURLSafeBase64(value) && containsMixedCase(value) {
		return true
	}

	// General high-entropy mixed-case strings.
	return len(value) >= 20 && hasHighEntropy(value) && containsMixedCase(value)
}

func isURLSafeBase64(s string) bool {
	for _, r := range s {
		ok := (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') ||
			(r >= '0' && r <= '9') || r == '-' || r == '_'
		if !ok {
			return false
		}
	}
	return true
}

func hasHighEntropy(value string) bool {
	unique := make(map[rune]struct{})
	for _, r := range value {
		unique[r] = struct{}{}
	}
	return float64(len(unique))/float64(len(value)) > 0.5
}

func containsMixedCase(value string) bool {
	var hasUpper, hasLower bool
	for _, r := range value {
		if unicode.IsUpper(r) {
			hasUpper = true
		}
		if unicode.IsLower(r) {
			hasLower = true
		}
		if hasUpper && hasLower {
			return true
		}
	}
	return false
}
