package collector

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh"
)

// Runner executes a command on the inspected host and returns its stdout
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// LocalRunner runs commands on the machine dockerdash itself runs on
type LocalRunner struct{}

// Run implements Runner
func (LocalRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// SSHRunner runs commands on a remote host over a single reused SSH connection
type SSHRunner struct {
	addr    string
	config  *ssh.ClientConfig
	timeout time.Duration

	mu     sync.Mutex
	client *ssh.Client
}

// NewSSHRunner creates a runner that authenticates as user with the private
// key at keyPath
func NewSSHRunner(host string, port int, user, keyPath string, timeout time.Duration) (*SSHRunner, error) {
	if user == "" {
		return nil, errors.New("ssh user is required")
	}
	keyData, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read ssh key: %w", err)
	}
	signer, err := ssh.ParsePrivateKey(keyData)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	return &SSHRunner{
		addr: net.JoinHostPort(host, strconv.Itoa(port)),
		config: &ssh.ClientConfig{
			User:            user,
			Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
			HostKeyCallback: ssh.InsecureIgnoreHostKey(),
			Timeout:         timeout,
		},
		timeout: timeout,
	}, nil
}

// connect returns the cached client, dialing a new one when needed
func (r *SSHRunner) connect(ctx context.Context) (*ssh.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client != nil {
		return r.client, nil
	}

	dialer := &net.Dialer{Timeout: r.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", r.addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial: %w", err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, r.addr, r.config)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to establish SSH connection: %w", err)
	}

	r.client = ssh.NewClient(sshConn, chans, reqs)
	log.WithField("addr", r.addr).Info("SSH connection established")
	return r.client, nil
}

// reset drops a broken client so the next Run redials
func (r *SSHRunner) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client != nil {
		r.client.Close()
		r.client = nil
	}
}

// Run implements Runner
func (r *SSHRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	client, err := r.connect(ctx)
	if err != nil {
		return nil, err
	}

	session, err := client.NewSession()
	if err != nil {
		r.reset()
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	defer session.Close()

	cmd := shellJoin(name, args)
	done := make(chan error, 1)
	var output []byte
	go func() {
		var runErr error
		output, runErr = session.Output(cmd)
		done <- runErr
	}()

	select {
	case err := <-done:
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return output, nil
	case <-ctx.Done():
		session.Signal(ssh.SIGKILL)
		return nil, ctx.Err()
	}
}

// Close releases the SSH connection
func (r *SSHRunner) Close() error {
	r.reset()
	return nil
}

// shellJoin quotes each argument for the remote shell
func shellJoin(name string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, name)
	for _, a := range args {
		if a != "" && strings.IndexFunc(a, needsQuote) < 0 {
			parts = append(parts, a)
			continue
		}
		parts = append(parts, "'"+strings.ReplaceAll(a, "'", `'\''`)+"'")
	}
	return strings.Join(parts, " ")
}

func needsQuote(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	}
	return !strings.ContainsRune("-_./:=,@", r)
}
