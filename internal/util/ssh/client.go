// Copyright 2025 Alexandre Mahdhaoui
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ssh

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"time"

	"golang.org/x/crypto/ssh"
)

// Client implements the Runner interface for real SSH connections.
type Client struct {
	Host string
	User string
	Port string

	// Password authenticates with a plain password. Freshly provisioned test
	// VMs ship with a well-known default password, so this is the common path.
	Password string

	// PrivateKey holds a PEM-encoded private key. When set it is tried before
	// the password.
	PrivateKey []byte
}

// NewClient creates an SSH client authenticating with a password.
func NewClient(host, user, password, port string) *Client {
	return &Client{
		Host:     host,
		User:     user,
		Password: password,
		Port:     port,
	}
}

// NewClientWithKey creates an SSH client authenticating with the private key
// at the given path.
func NewClientWithKey(host, user, privateKeyPath, port string) (*Client, error) {
	key, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read private key: %w", err)
	}

	return &Client{
			Host:       host,
			User:       user,
			PrivateKey: key,
			Port:       port,
		},
		nil
}

func (c *Client) clientConfig() (*ssh.ClientConfig, error) {
	auth := make([]ssh.AuthMethod, 0, 2)

	if len(c.PrivateKey) > 0 {
		signer, err := ssh.ParsePrivateKey(c.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("unable to parse private key: %w", err)
		}

		auth = append(auth, ssh.PublicKeys(signer))
	}

	if c.Password != "" {
		auth = append(auth, ssh.Password(c.Password))
	}

	if len(auth) == 0 {
		return nil, errors.New("no authentication method configured")
	}

	return &ssh.ClientConfig{
		User:            c.User,
		Auth:            auth,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), // test VMs have throwaway host keys
		Timeout:         10 * time.Second,
	}, nil
}

// Run executes the command on the remote host and returns its stdout and
// stderr. Cancelling the context closes the connection and aborts the command.
func (c *Client) Run(ctx context.Context, cmd ...string) (stdout, stderr string, err error) {
	config, err := c.clientConfig()
	if err != nil {
		return "", "", err
	}

	addr := net.JoinHostPort(c.Host, c.Port)

	dialer := net.Dialer{Timeout: config.Timeout}
	netConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return "", "", fmt.Errorf("unable to connect to %s: %w", addr, err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(netConn, addr, config)
	if err != nil {
		_ = netConn.Close()
		return "", "", fmt.Errorf("unable to establish SSH connection to %s: %w", addr, err)
	}

	conn := ssh.NewClient(sshConn, chans, reqs)
	defer runFuncAndLogErr(conn.Close)

	// Closing the connection unblocks session.Run when the context ends.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	session, err := conn.NewSession()
	if err != nil {
		return "", "", fmt.Errorf("unable to create SSH session: %w", err)
	}
	defer runFuncAndLogErr(session.Close)

	var stdoutBuf, stderrBuf bytes.Buffer
	session.Stdout = &stdoutBuf
	session.Stderr = &stderrBuf

	if err := session.Run(FormatCmd(cmd...)); err != nil {
		if ctx.Err() != nil {
			return stdoutBuf.String(), stderrBuf.String(), ctx.Err()
		}

		return stdoutBuf.String(), stderrBuf.String(), fmt.Errorf("remote command failed: %w", err)
	}

	return stdoutBuf.String(), stderrBuf.String(), nil
}

// AwaitServer waits for the SSH server to accept an authenticated connection,
// retrying every 5 seconds until the timeout elapses.
func (c *Client) AwaitServer(ctx context.Context, timeout time.Duration) error {
	config, err := c.clientConfig()
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(c.Host, c.Port)
	timeoutChan := time.After(timeout)
	tick := time.NewTicker(5 * time.Second)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timeoutChan:
			return fmt.Errorf("timed out waiting for SSH server at %s", addr)
		case <-tick.C:
			conn, err := ssh.Dial("tcp", addr, config)
			if err != nil {
				slog.DebugContext(ctx, "ssh server not ready", "addr", addr, "error", err.Error())
				continue
			}

			_ = conn.Close()
			return nil
		}
	}
}

func runFuncAndLogErr(f func() error) {
	if err := f(); err != nil {
		slog.Debug("error closing ssh session or connection", "err", err.Error())
	}
}
