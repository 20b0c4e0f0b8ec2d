package platform

import (
	"time"

	"github.com/go-logr/logr"
)

// New creates the Backend for the current OS. Systems without a native
// backend get one that reports ErrUnsupported for every query.
func New(logger logr.Logger) (Backend, error) {
	return newNative(logger)
}

// NewGopsutil creates a Backend built on gopsutil. It runs on every OS
// gopsutil supports and is the native backend on macOS.
func NewGopsutil(logger logr.Logger) Backend {
	return newGopsutilBackend("gopsutil", logger)
}

// NewUnknown creates the Backend used when nothing else is available.
func NewUnknown() Backend {
	return newUnknownBackend()
}

// RemoteConfig specifies connection parameters for a remote Linux host.
type RemoteConfig struct {
	// Host is the hostname or IP address of the remote system.
	Host string

	// Port is the SSH port (default: 22).
	Port int

	// User is the SSH username.
	User string

	// AuthMethod specifies how to authenticate.
	AuthMethod AuthMethod

	// KnownHostsPath is the known_hosts file used to verify the host key
	// (default: ~/.ssh/known_hosts).
	KnownHostsPath string

	// InsecureIgnoreHostKey disables host key verification.
	InsecureIgnoreHostKey bool

	// CommandTimeout is the timeout for individual commands (default: 5s).
	CommandTimeout time.Duration

	// DialTimeout bounds one connection attempt (default: 10s).
	DialTimeout time.Duration

	// ConnectAttempts is the number of connection attempts (default: 3).
	ConnectAttempts uint
}

func (c RemoteConfig) withDefaults() RemoteConfig {
	if c.Port == 0 {
		c.Port = 22
	}
	if c.CommandTimeout == 0 {
		c.CommandTimeout = 5 * time.Second
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = 10 * time.Second
	}
	if c.ConnectAttempts == 0 {
		c.ConnectAttempts = 3
	}
	return c
}

// AuthMethod defines SSH authentication methods.
type AuthMethod interface {
	isAuthMethod()
}

// PasswordAuth authenticates using a password.
type PasswordAuth struct {
	Password string
}

func (PasswordAuth) isAuthMethod() {}

// KeyAuth authenticates using an SSH private key.
type KeyAuth struct {
	PrivateKeyPath string
	Passphrase     string // optional, for encrypted keys
}

func (KeyAuth) isAuthMethod() {}

// AgentAuth authenticates using the SSH agent.
type AgentAuth struct{}

func (AgentAuth) isAuthMethod() {}
