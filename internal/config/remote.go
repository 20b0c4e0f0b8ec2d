package config

import (
	"fmt"

	"github.com/opd-ai/go-sysinfo/internal/platform"
)

// Platform converts r into the connection parameters of the remote backend.
func (r RemoteConfig) Platform() (platform.RemoteConfig, error) {
	var auth platform.AuthMethod
	switch {
	case r.KeyFile != "":
		auth = platform.KeyAuth{PrivateKeyPath: r.KeyFile, Passphrase: r.Passphrase}
	case r.Password != "":
		auth = platform.PasswordAuth{Password: r.Password}
	case r.Agent:
		auth = platform.AgentAuth{}
	default:
		return platform.RemoteConfig{}, fmt.Errorf("remote: no authentication method configured")
	}

	return platform.RemoteConfig{
		Host:                  r.Host,
		Port:                  r.Port,
		User:                  r.User,
		AuthMethod:            auth,
		KnownHostsPath:        r.KnownHosts,
		InsecureIgnoreHostKey: r.InsecureIgnoreHostKey,
		CommandTimeout:        r.CommandTimeout,
		ConnectAttempts:       r.ConnectAttempts,
	}, nil
}
