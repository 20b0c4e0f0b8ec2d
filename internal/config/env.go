package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SYSINFO_"

// envVarPattern matches environment variable references in configuration values.
// Supports formats:
//   - ${VAR_NAME} - standard shell-like format
//   - ${VAR_NAME:-default} - with default value if unset or empty
//   - $VAR_NAME - simple format (word characters only)
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([a-zA-Z_][a-zA-Z0-9_]*)`)

// ExpandEnv expands environment variable references in a string.
// Unknown or unset variables without defaults are replaced with empty string.
func ExpandEnv(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if strings.HasPrefix(match, "${") && strings.HasSuffix(match, "}") {
			inner := match[2 : len(match)-1]

			// VAR:-default
			if idx := strings.Index(inner, ":-"); idx >= 0 {
				if val := os.Getenv(inner[:idx]); val != "" {
					return val
				}
				return inner[idx+2:]
			}
			return os.Getenv(inner)
		}
		return os.Getenv(match[1:])
	})
}

// expandEnvConfig expands ${VAR} and $VAR references in the string values
// that commonly hold secrets or paths.
func expandEnvConfig(cfg *Config) {
	cfg.Remote.Host = ExpandEnv(cfg.Remote.Host)
	cfg.Remote.User = ExpandEnv(cfg.Remote.User)
	cfg.Remote.KeyFile = ExpandEnv(cfg.Remote.KeyFile)
	cfg.Remote.Passphrase = ExpandEnv(cfg.Remote.Passphrase)
	cfg.Remote.Password = ExpandEnv(cfg.Remote.Password)
	cfg.Remote.KnownHosts = ExpandEnv(cfg.Remote.KnownHosts)
}

// envBinding maps one SYSINFO_* variable onto a Config field.
type envBinding struct {
	name string
	set  func(cfg *Config, value string) error
}

var envBindings = []envBinding{
	{"BACKEND", func(c *Config, v string) error { c.Backend = v; return nil }},
	{"WORKERS", intSetter(func(c *Config) *int { return &c.Workers })},
	{"REMOTE_HOST", func(c *Config, v string) error { c.Remote.Host = v; return nil }},
	{"REMOTE_PORT", intSetter(func(c *Config) *int { return &c.Remote.Port })},
	{"REMOTE_USER", func(c *Config, v string) error { c.Remote.User = v; return nil }},
	{"REMOTE_KEY_FILE", func(c *Config, v string) error { c.Remote.KeyFile = v; return nil }},
	{"REMOTE_PASSPHRASE", func(c *Config, v string) error { c.Remote.Passphrase = v; return nil }},
	{"REMOTE_PASSWORD", func(c *Config, v string) error { c.Remote.Password = v; return nil }},
	{"REMOTE_AGENT", boolSetter(func(c *Config) *bool { return &c.Remote.Agent })},
	{"REMOTE_KNOWN_HOSTS", func(c *Config, v string) error { c.Remote.KnownHosts = v; return nil }},
	{"REMOTE_INSECURE_IGNORE_HOST_KEY", boolSetter(func(c *Config) *bool { return &c.Remote.InsecureIgnoreHostKey })},
	{"REMOTE_COMMAND_TIMEOUT", durationSetter(func(c *Config) *time.Duration { return &c.Remote.CommandTimeout })},
	{"REFRESH_INTERVAL", durationSetter(func(c *Config) *time.Duration { return &c.Refresh.Interval })},
	{"REFRESH_COUNT", intSetter(func(c *Config) *int { return &c.Refresh.Count })},
	{"LOG_LEVEL", func(c *Config, v string) error { c.Log.Level = v; return nil }},
	{"LOG_FORMAT", func(c *Config, v string) error { c.Log.Format = v; return nil }},
	{"OUTPUT_PROCESSES", intSetter(func(c *Config) *int { return &c.Output.Processes })},
	{"OUTPUT_SORT", func(c *Config, v string) error { c.Output.Sort = v; return nil }},
	{"OUTPUT_NO_COLOR", boolSetter(func(c *Config) *bool { return &c.Output.NoColor })},
}

func intSetter(field func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func boolSetter(field func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}
}

func durationSetter(field func(*Config) *time.Duration) func(*Config, string) error {
	return func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*field(c) = d
		return nil
	}
}

// ApplyEnv overrides cfg with the SYSINFO_* variables returned by lookup
// (os.LookupEnv when nil). Empty values are ignored.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, b := range envBindings {
		key := EnvPrefix + b.name
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		if err := b.set(cfg, strings.TrimSpace(v)); err != nil {
			return fmt.Errorf("invalid %s=%q: %w", key, v, err)
		}
	}
	return nil
}
