// Package collect runs directive commands on devices and returns the raw
// response pair the pipeline consumes.
package collect

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/routeglass/routeglass/pkg/inventory"
	"github.com/routeglass/routeglass/pkg/plugin"
	"github.com/routeglass/routeglass/pkg/util"
	"github.com/routeglass/routeglass/pkg/version"
)

// DefaultDialTimeout bounds the TCP connect and SSH handshake.
const DefaultDialTimeout = 10 * time.Second

// Config describes how to reach and log in to one device.
type Config struct {
	Addr     string // host:port
	Username string
	Password string
	KeyFile  string
	// KnownHosts enables host key checking against an OpenSSH
	// known_hosts file. Empty accepts any host key.
	KnownHosts  string
	DialTimeout time.Duration
}

// ConfigFromDevice builds a Config from an inventory entry.
func ConfigFromDevice(d *inventory.Device) Config {
	return Config{
		Addr:       d.Addr(),
		Username:   d.Credential.Username,
		Password:   d.Credential.ResolvePassword(),
		KeyFile:    d.Credential.KeyFile,
		KnownHosts: d.KnownHosts,
	}
}

// SSHExecutor runs commands over one SSH connection, opening a fresh
// session per command. The connection is dialed on first use.
type SSHExecutor struct {
	cfg    Config
	mu     sync.Mutex
	client *ssh.Client
}

// NewSSHExecutor creates an executor; no connection is made yet.
func NewSSHExecutor(cfg Config) *SSHExecutor {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = DefaultDialTimeout
	}
	return &SSHExecutor{cfg: cfg}
}

func (e *SSHExecutor) clientConfig() (*ssh.ClientConfig, error) {
	var auth []ssh.AuthMethod
	if e.cfg.KeyFile != "" {
		key, err := os.ReadFile(e.cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("reading key %s: %w", e.cfg.KeyFile, err)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("parsing key %s: %w", e.cfg.KeyFile, err)
		}
		auth = append(auth, ssh.PublicKeys(signer))
	}
	if e.cfg.Password != "" {
		auth = append(auth, ssh.Password(e.cfg.Password))
	}
	if len(auth) == 0 {
		return nil, fmt.Errorf("ssh %s: %w: no password or key configured", e.cfg.Addr, util.ErrInvalidConfig)
	}

	hostKey := ssh.InsecureIgnoreHostKey()
	if e.cfg.KnownHosts != "" {
		cb, err := knownhosts.New(e.cfg.KnownHosts)
		if err != nil {
			return nil, fmt.Errorf("loading known hosts %s: %w", e.cfg.KnownHosts, err)
		}
		hostKey = cb
	}

	return &ssh.ClientConfig{
		User:            e.cfg.Username,
		Auth:            auth,
		HostKeyCallback: hostKey,
		Timeout:         e.cfg.DialTimeout,
		ClientVersion:   version.SSHClientVersion(),
	}, nil
}

// Connect dials the device if not already connected.
func (e *SSHExecutor) Connect(ctx context.Context) error {
	_, err := e.connect(ctx)
	return err
}

func (e *SSHExecutor) connect(ctx context.Context) (*ssh.Client, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.client != nil {
		return e.client, nil
	}

	config, err := e.clientConfig()
	if err != nil {
		return nil, err
	}

	dialCtx, cancel := context.WithTimeout(ctx, e.cfg.DialTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(dialCtx, "tcp", e.cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("SSH dial %s: %w", e.cfg.Addr, err)
	}
	if deadline, ok := dialCtx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}
	sconn, chans, reqs, err := ssh.NewClientConn(conn, e.cfg.Addr, config)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("SSH handshake %s: %w", e.cfg.Addr, err)
	}
	conn.SetDeadline(time.Time{})

	e.client = ssh.NewClient(sconn, chans, reqs)
	util.WithField("addr", e.cfg.Addr).Debug("ssh connected")
	return e.client, nil
}

// Run executes cmd and returns its stdout and stderr separately. A non-zero
// exit status still returns the captured output, with an error describing
// the status. Cancelling ctx aborts the command.
func (e *SSHExecutor) Run(ctx context.Context, cmd string) (plugin.Raw, error) {
	client, err := e.connect(ctx)
	if err != nil {
		return plugin.Raw{}, err
	}

	session, err := client.NewSession()
	if err != nil {
		return plugin.Raw{}, fmt.Errorf("SSH session: %w", err)
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	if err := session.Start(cmd); err != nil {
		return plugin.Raw{}, fmt.Errorf("SSH exec '%s': %w", cmd, err)
	}

	done := make(chan error, 1)
	go func() { done <- session.Wait() }()

	select {
	case err = <-done:
	case <-ctx.Done():
		session.Signal(ssh.SIGKILL)
		session.Close()
		select {
		case <-done:
		case <-time.After(time.Second):
		}
		return plugin.Raw{}, fmt.Errorf("SSH exec '%s': %w", cmd, ctx.Err())
	}

	raw := plugin.Raw{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			return raw, fmt.Errorf("SSH exec '%s': exit status %d", cmd, exitErr.ExitStatus())
		}
		return raw, fmt.Errorf("SSH exec '%s': %w", cmd, err)
	}
	return raw, nil
}

// Close closes the connection if open.
func (e *SSHExecutor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.client == nil {
		return nil
	}
	err := e.client.Close()
	e.client = nil
	return err
}
