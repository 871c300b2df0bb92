package ssh

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	pkgsftp "github.com/pkg/sftp"
	gossh "golang.org/x/crypto/ssh"

	isftp "github.com/charlesng35/sftpctl/internal/sftp"
)

var errTransportClosed = errors.New("ssh: transport closed")

// Transport is a dialed TCP connection that becomes an SSH client once
// authenticated.
type Transport struct {
	addr   string
	driver *Driver

	mu        sync.Mutex
	conn      net.Conn
	client    *gossh.Client
	agentConn io.Closer
	closed    bool
	closeErr  error
}

// Authenticate performs the SSH handshake with creds. The handshake is bounded
// by the driver timeout.
func (t *Transport) Authenticate(creds isftp.Credentials) error {
	if t == nil {
		return errors.New("ssh: transport is nil")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed || t.conn == nil {
		return errTransportClosed
	}
	if t.client != nil {
		return errors.New("ssh: transport already authenticated")
	}

	clientConfig, agentConn, err := t.driver.buildClientConfig(creds)
	if err != nil {
		return err
	}

	if timeout := t.driver.cfg.Timeout; timeout > 0 {
		_ = t.conn.SetDeadline(time.Now().Add(timeout))
	}

	clientConn, chans, reqs, err := gossh.NewClientConn(t.conn, t.addr, clientConfig)
	if err != nil {
		closeQuietly(agentConn)
		return fmt.Errorf("ssh: client handshake: %w", err)
	}
	_ = t.conn.SetDeadline(time.Time{})

	t.agentConn = agentConn
	t.client = gossh.NewClient(clientConn, chans, reqs)
	return nil
}

// OpenChannel starts the sftp subsystem over the authenticated connection.
func (t *Transport) OpenChannel() (isftp.Channel, error) {
	if t == nil {
		return nil, errors.New("ssh: transport is nil")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil, errTransportClosed
	}
	if t.client == nil {
		return nil, errors.New("ssh: transport not authenticated")
	}

	client, err := pkgsftp.NewClient(t.client, pkgsftp.MaxPacket(t.driver.cfg.MaxPacket))
	if err != nil {
		return nil, fmt.Errorf("ssh: create sftp client: %w", err)
	}

	return &Channel{
		client: client,
		fs:     t.driver.cfg.Fs,
	}, nil
}

// Close releases the SSH client (or the bare connection before
// authentication). Subsequent calls return the first result.
func (t *Transport) Close() error {
	if t == nil {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return t.closeErr
	}
	t.closed = true

	switch {
	case t.client != nil:
		t.closeErr = t.client.Close()
	case t.conn != nil:
		t.closeErr = t.conn.Close()
	}
	closeQuietly(t.agentConn)

	t.client = nil
	t.conn = nil
	t.agentConn = nil
	return t.closeErr
}
