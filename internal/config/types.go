// Package config provides configuration loading for the sysinfo command.
// Configuration comes from a YAML file, with SYSINFO_* environment variables
// taking precedence over file values.
package config

import "time"

// Backend names.
const (
	BackendNative   = "native"
	BackendGopsutil = "gopsutil"
	BackendRemote   = "remote"
)

// Sort orders for the process listing.
const (
	SortCPU    = "cpu"
	SortMemory = "memory"
	SortPid    = "pid"
	SortName   = "name"
)

// Log formats.
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
	LogFormatSlog    = "slog"
)

// Config holds the complete configuration.
type Config struct {
	// Backend selects the acquisition backend: native, gopsutil or remote.
	Backend string `yaml:"backend"`
	// Workers bounds concurrent process reads. Zero means GOMAXPROCS.
	Workers int           `yaml:"workers"`
	Remote  RemoteConfig  `yaml:"remote"`
	Refresh RefreshConfig `yaml:"refresh"`
	Log     LogConfig     `yaml:"log"`
	Output  OutputConfig  `yaml:"output"`
}

// RemoteConfig holds the SSH settings of the remote backend.
type RemoteConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	User string `yaml:"user"`

	// Exactly one of KeyFile, Password and Agent selects the authentication.
	KeyFile    string `yaml:"key_file"`
	Passphrase string `yaml:"passphrase"`
	Password   string `yaml:"password"`
	Agent      bool   `yaml:"agent"`

	KnownHosts            string `yaml:"known_hosts"`
	InsecureIgnoreHostKey bool   `yaml:"insecure_ignore_host_key"`

	CommandTimeout  time.Duration `yaml:"command_timeout"`
	ConnectAttempts uint          `yaml:"connect_attempts"`
}

// RefreshConfig controls periodic reports.
type RefreshConfig struct {
	// Interval between two reports. CPU usage needs at least two samples,
	// so even a single report waits one interval after the first sample.
	Interval time.Duration `yaml:"interval"`
	// Count is the number of reports; zero means until interrupted.
	Count int `yaml:"count"`
}

// LogConfig controls logging.
type LogConfig struct {
	// Level is debug, info or error.
	Level string `yaml:"level"`
	// Format is console, json or slog.
	Format string `yaml:"format"`
}

// OutputConfig controls the report.
type OutputConfig struct {
	// Processes is the number of processes listed. Zero hides the list.
	Processes int `yaml:"processes"`
	// Sort is cpu, memory, pid or name.
	Sort string `yaml:"sort"`
	// NoColor disables styling.
	NoColor bool `yaml:"no_color"`
}
