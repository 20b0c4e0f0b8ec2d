package config

import "time"

// Default values for configuration options.
const (
	// DefaultInterval is the default time between reports (1 second).
	DefaultInterval = time.Second
	// DefaultProcesses is the default number of listed processes.
	DefaultProcesses = 10
	// DefaultRemotePort is the default SSH port.
	DefaultRemotePort = 22
	// DefaultCommandTimeout bounds one remote command.
	DefaultCommandTimeout = 5 * time.Second
	// DefaultConnectAttempts is the default number of SSH connection attempts.
	DefaultConnectAttempts = 3
)

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Backend: BackendNative,
		Workers: 0, // GOMAXPROCS
		Remote: RemoteConfig{
			Port:            DefaultRemotePort,
			CommandTimeout:  DefaultCommandTimeout,
			ConnectAttempts: DefaultConnectAttempts,
		},
		Refresh: RefreshConfig{
			Interval: DefaultInterval,
			Count:    1,
		},
		Log: LogConfig{
			Level:  "info",
			Format: LogFormatConsole,
		},
		Output: OutputConfig{
			Processes: DefaultProcesses,
			Sort:      SortCPU,
		},
	}
}
