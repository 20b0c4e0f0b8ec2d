package platform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/go-logr/logr"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// commandRunner executes a shell command on the monitored host.
type commandRunner interface {
	runCommand(ctx context.Context, cmd string) (string, error)
}

// commandError is a failed remote command.
type commandError struct {
	cmd    string
	stderr string
	err    error
}

func (e *commandError) Error() string {
	return fmt.Sprintf("command %q failed: %v (stderr: %s)", e.cmd, e.err, strings.TrimSpace(e.stderr))
}

func (e *commandError) Unwrap() error {
	return e.err
}

// stderrContains reports whether err is a commandError whose stderr
// mentions msg.
func stderrContains(err error, msg string) bool {
	var ce *commandError
	return errors.As(err, &ce) && strings.Contains(ce.stderr, msg)
}

// NewRemote connects to a Linux host over SSH and returns a Backend that
// reads its /proc and /sys with standard shell commands. Nothing needs to be
// installed on the remote host.
func NewRemote(ctx context.Context, config RemoteConfig, logger logr.Logger) (Backend, error) {
	if config.Host == "" {
		return nil, fmt.Errorf("host is required")
	}
	if config.User == "" {
		return nil, fmt.Errorf("user is required")
	}
	if config.AuthMethod == nil {
		return nil, fmt.Errorf("authentication method is required")
	}
	config = config.withDefaults()
	logger = logger.WithName("remote")

	sshConfig, err := buildSSHConfig(config, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build SSH config: %w", err)
	}

	addr := net.JoinHostPort(config.Host, strconv.Itoa(config.Port))
	client, err := backoff.Retry(ctx, func() (*ssh.Client, error) {
		c, err := ssh.Dial("tcp", addr, sshConfig)
		if err != nil {
			if strings.Contains(err.Error(), "unable to authenticate") {
				return nil, backoff.Permanent(err)
			}
			logger.V(1).Info("connection attempt failed", "address", addr, "error", err)
			return nil, err
		}
		return c, nil
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(config.ConnectAttempts),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	runner := newSSHRunner(client, config.CommandTimeout)
	b, err := newRemoteBackend(ctx, runner, logger)
	if err != nil {
		_ = runner.Close()
		return nil, err
	}
	b.closer = runner.Close
	logger.Info("connected", "address", addr)
	return b, nil
}

// newRemoteBackend builds a Linux backend whose filesystem and signals go
// through runner.
func newRemoteBackend(ctx context.Context, runner commandRunner, logger logr.Logger) (*linuxBackend, error) {
	out, err := runner.runCommand(ctx, "uname -s")
	if err != nil {
		return nil, fmt.Errorf("failed to detect remote OS: %w", err)
	}
	if osName := strings.TrimSpace(out); !strings.EqualFold(osName, "linux") {
		return nil, fmt.Errorf("remote OS %q: %w", osName, ErrUnsupported)
	}

	b := newLinuxBackend("remote", &remoteFS{runner: runner}, logger)
	if v, ok := getconf(ctx, runner, "PAGESIZE"); ok {
		b.pageSize = v
	}
	if v, ok := getconf(ctx, runner, "CLK_TCK"); ok {
		b.clkTck = v
	}
	b.kill = func(ctx context.Context, pid int, sig Signal) error {
		_, err := runner.runCommand(ctx, fmt.Sprintf("kill -%d %d", int(sig), pid))
		if stderrContains(err, "No such process") {
			return fmt.Errorf("pid %d: %w", pid, ErrNoProcess)
		}
		return err
	}
	b.statfs = func(ctx context.Context, mountPoint string) (uint64, uint64, error) {
		return remoteStatfs(ctx, runner, mountPoint)
	}
	return b, nil
}

func getconf(ctx context.Context, runner commandRunner, name string) (uint64, bool) {
	out, err := runner.runCommand(ctx, "getconf "+name)
	if err != nil {
		return 0, false
	}
	v, err := strconv.ParseUint(strings.TrimSpace(out), 10, 64)
	return v, err == nil && v > 0
}

// remoteStatfs uses GNU stat: total blocks, available blocks, block size.
func remoteStatfs(ctx context.Context, runner commandRunner, mountPoint string) (total, avail uint64, err error) {
	out, err := runner.runCommand(ctx, "stat -f -c '%b %a %S' "+shellEscape(mountPoint))
	if err != nil {
		return 0, 0, err
	}
	fields := strings.Fields(out)
	if len(fields) != 3 {
		return 0, 0, fmt.Errorf("unexpected stat output: %q", out)
	}
	bsize := parseUint64(fields[2])
	return parseUint64(fields[0]) * bsize, parseUint64(fields[1]) * bsize, nil
}

func buildSSHConfig(config RemoteConfig, logger logr.Logger) (*ssh.ClientConfig, error) {
	var authMethods []ssh.AuthMethod

	switch auth := config.AuthMethod.(type) {
	case PasswordAuth:
		authMethods = append(authMethods, ssh.Password(auth.Password))
	case KeyAuth:
		key, err := os.ReadFile(auth.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read private key: %w", err)
		}
		var signer ssh.Signer
		if auth.Passphrase != "" {
			signer, err = ssh.ParsePrivateKeyWithPassphrase(key, []byte(auth.Passphrase))
		} else {
			signer, err = ssh.ParsePrivateKey(key)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		authMethods = append(authMethods, ssh.PublicKeys(signer))
	case AgentAuth:
		socket := os.Getenv("SSH_AUTH_SOCK")
		if socket == "" {
			return nil, fmt.Errorf("SSH_AUTH_SOCK not set")
		}
		// Defer the agent connection until it's actually needed
		authMethods = append(authMethods, ssh.PublicKeysCallback(func() ([]ssh.Signer, error) {
			agentConn, err := net.Dial("unix", socket)
			if err != nil {
				return nil, fmt.Errorf("failed to connect to SSH agent: %w", err)
			}
			defer agentConn.Close()
			return agent.NewClient(agentConn).Signers()
		}))
	default:
		return nil, fmt.Errorf("unsupported auth method type: %T", auth)
	}

	hostKeyCallback, err := buildHostKeyCallback(config, logger)
	if err != nil {
		return nil, err
	}

	return &ssh.ClientConfig{
		User:            config.User,
		Auth:            authMethods,
		HostKeyCallback: hostKeyCallback,
		Timeout:         config.DialTimeout,
	}, nil
}

func buildHostKeyCallback(config RemoteConfig, logger logr.Logger) (ssh.HostKeyCallback, error) {
	if config.InsecureIgnoreHostKey {
		logger.Info("host key verification disabled", "host", config.Host)
		return ssh.InsecureIgnoreHostKey(), nil
	}
	path := config.KnownHostsPath
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("locating known_hosts: %w", err)
		}
		path = filepath.Join(home, ".ssh", "known_hosts")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("known_hosts file not found: %s: %w", path, err)
	}
	cb, err := knownhosts.New(path)
	if err != nil {
		return nil, fmt.Errorf("loading known hosts: %w", err)
	}
	return cb, nil
}

// sshRunner runs commands over one SSH client, one session per command.
type sshRunner struct {
	mu      sync.RWMutex
	client  *ssh.Client
	timeout time.Duration
	ctx     context.Context
	cancel  context.CancelFunc
}

func newSSHRunner(client *ssh.Client, timeout time.Duration) *sshRunner {
	ctx, cancel := context.WithCancel(context.Background())
	return &sshRunner{client: client, timeout: timeout, ctx: ctx, cancel: cancel}
}

func (r *sshRunner) runCommand(ctx context.Context, cmd string) (string, error) {
	r.mu.RLock()
	client := r.client
	r.mu.RUnlock()

	if client == nil {
		return "", fmt.Errorf("SSH client not connected")
	}

	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	done := make(chan error, 1)
	go func() {
		done <- session.Run(cmd)
	}()

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			return stdout.String(), &commandError{cmd: cmd, stderr: stderr.String(), err: err}
		}
		return stdout.String(), nil
	case <-timer.C:
		// Ensure the remote command is actually terminated on timeout
		_ = session.Signal(ssh.SIGKILL)
		return "", fmt.Errorf("command %q timed out after %v", cmd, r.timeout)
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGKILL)
		return "", ctx.Err()
	case <-r.ctx.Done():
		_ = session.Signal(ssh.SIGKILL)
		return "", r.ctx.Err()
	}
}

func (r *sshRunner) Close() error {
	r.cancel()
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client != nil {
		err := r.client.Close()
		r.client = nil
		return err
	}
	return nil
}
