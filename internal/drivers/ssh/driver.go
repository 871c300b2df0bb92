// Package ssh implements the transfer engine over golang.org/x/crypto/ssh and
// github.com/pkg/sftp.
package ssh

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
	gossh "golang.org/x/crypto/ssh"

	isftp "github.com/charlesng35/sftpctl/internal/sftp"
)

const (
	defaultDialTimeout = 10 * time.Second
	defaultMaxPacket   = 1 << 15
)

var (
	// Compile-time checks to ensure the engine satisfies the transfer contract.
	_ isftp.Engine    = (*Driver)(nil)
	_ isftp.Transport = (*Transport)(nil)
	_ isftp.Channel   = (*Channel)(nil)
)

// Config tunes how the driver dials, verifies and authenticates hosts.
type Config struct {
	// Timeout bounds the TCP dial and the SSH handshake. Zero means 10s.
	Timeout time.Duration
	// KnownHostsPath is consulted when StrictHostKey is set.
	KnownHostsPath string
	StrictHostKey  bool
	// HostKeyCallback overrides KnownHostsPath/StrictHostKey when non-nil.
	HostKeyCallback gossh.HostKeyCallback
	// UseAgent offers keys from the agent at $SSH_AUTH_SOCK.
	UseAgent bool
	// MaxPacket is the SFTP packet size. Zero means 32KiB.
	MaxPacket int
	// Fs backs local reads and writes. Nil means the OS filesystem.
	Fs afero.Fs
}

// Driver opens SSH transports and SFTP channels.
type Driver struct {
	cfg Config
}

// NewDriver returns a driver with defaults applied to cfg.
func NewDriver(cfg Config) *Driver {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultDialTimeout
	}
	if cfg.MaxPacket <= 0 {
		cfg.MaxPacket = defaultMaxPacket
	}
	if cfg.Fs == nil {
		cfg.Fs = afero.NewOsFs()
	}
	return &Driver{cfg: cfg}
}

// OpenTransport dials host:port over TCP. The returned transport is not yet
// authenticated.
func (d *Driver) OpenTransport(ctx context.Context, host string, port int) (isftp.Transport, error) {
	if d == nil {
		return nil, errors.New("ssh: driver is nil")
	}
	host = strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(host), "["), "]")
	if host == "" {
		return nil, errors.New("ssh: host is required")
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("ssh: invalid port %d", port)
	}

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	dialer := net.Dialer{
		Timeout: d.cfg.Timeout,
	}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("ssh: dial %s: %w", addr, err)
	}

	return &Transport{
		addr:   addr,
		conn:   conn,
		driver: d,
	}, nil
}
