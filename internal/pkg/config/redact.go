package config

import (
	"regexp"

	"gopkg.in/yaml.v3"
)

var secretRegex = regexp.MustCompile(`(?m)^(\s*(?:token|password):[ \t]*)(\S.*)$`)

// Redact masks token and password values in a YAML document.
func Redact(doc string) string {
	return secretRegex.ReplaceAllString(doc, `${1}"****"`)
}

// Redacted renders the configuration as YAML safe for logging.
func (c *Config) Redacted() string {
	out, err := yaml.Marshal(c)
	if err != nil {
		return ""
	}
	return Redact(string(out))
}
