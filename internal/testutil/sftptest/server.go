// Package sftptest runs an in-process SSH server with an in-memory sftp
// subsystem for driver and session tests.
package sftptest

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync/atomic"
	"testing"

	pkgsftp "github.com/pkg/sftp"
	"github.com/stretchr/testify/require"
	gossh "golang.org/x/crypto/ssh"
)

// Credentials accepted by the server. AuthorizedKey enables public key auth.
type Credentials struct {
	Username      string
	Password      string
	AuthorizedKey gossh.PublicKey
}

// Server is a running mock SFTP server.
type Server struct {
	Host    string
	Port    int
	Creds   Credentials
	HostKey gossh.PublicKey

	handlers pkgsftp.Handlers
	accepted atomic.Int64
	listener net.Listener
}

// Start launches a server on 127.0.0.1 and registers cleanup with t.
func Start(t *testing.T, creds Credentials) *Server {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	signer, err := gossh.NewSignerFromKey(privateKey)
	require.NoError(t, err)

	serverConfig := &gossh.ServerConfig{
		PasswordCallback: func(conn gossh.ConnMetadata, password []byte) (*gossh.Permissions, error) {
			if creds.Password != "" && conn.User() == creds.Username && string(password) == creds.Password {
				return nil, nil
			}
			return nil, fmt.Errorf("permission denied")
		},
		PublicKeyCallback: func(conn gossh.ConnMetadata, key gossh.PublicKey) (*gossh.Permissions, error) {
			if creds.AuthorizedKey != nil && conn.User() == creds.Username &&
				bytes.Equal(key.Marshal(), creds.AuthorizedKey.Marshal()) {
				return nil, nil
			}
			return nil, fmt.Errorf("unknown public key")
		},
	}
	serverConfig.AddHostKey(signer)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	host, portStr, err := net.SplitHostPort(listener.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	server := &Server{
		Host:     host,
		Port:     port,
		Creds:    creds,
		HostKey:  signer.PublicKey(),
		handlers: pkgsftp.InMemHandler(),
		listener: listener,
	}

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			server.accepted.Add(1)
			go server.handleConnection(conn, serverConfig)
		}
	}()

	t.Cleanup(func() {
		_ = listener.Close()
	})
	return server
}

// Accepted returns how many TCP connections the server has accepted.
func (s *Server) Accepted() int64 {
	return s.accepted.Load()
}

// Addr returns host:port.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Client returns a password-authenticated sftp client for seeding and
// inspecting server state. It is closed on test cleanup.
func (s *Server) Client(t *testing.T) *pkgsftp.Client {
	t.Helper()

	sshClient, err := gossh.Dial("tcp", s.Addr(), &gossh.ClientConfig{
		User:            s.Creds.Username,
		Auth:            []gossh.AuthMethod{gossh.Password(s.Creds.Password)},
		HostKeyCallback: gossh.FixedHostKey(s.HostKey),
	})
	require.NoError(t, err)

	client, err := pkgsftp.NewClient(sshClient)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = client.Close()
		_ = sshClient.Close()
	})
	return client
}

// Mkdir creates a directory on the server.
func (s *Server) Mkdir(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, s.Client(t).MkdirAll(path))
}

// WriteFile creates or replaces a file on the server.
func (s *Server) WriteFile(t *testing.T, path string, data []byte) {
	t.Helper()
	f, err := s.Client(t).Create(path)
	require.NoError(t, err)
	_, err = f.Write(data)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

// ReadFile returns the contents of a file on the server.
func (s *Server) ReadFile(t *testing.T, path string) []byte {
	t.Helper()
	f, err := s.Client(t).Open(path)
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	return data
}

func (s *Server) handleConnection(conn net.Conn, config *gossh.ServerConfig) {
	defer conn.Close()

	sshConn, chans, reqs, err := gossh.NewServerConn(conn, config)
	if err != nil {
		return
	}
	defer sshConn.Close()

	go gossh.DiscardRequests(reqs)

	for newChannel := range chans {
		if newChannel.ChannelType() != "session" {
			_ = newChannel.Reject(gossh.UnknownChannelType, "unsupported channel type")
			continue
		}

		channel, requests, err := newChannel.Accept()
		if err != nil {
			continue
		}

		go s.handleRequests(channel, requests)
	}
}

func (s *Server) handleRequests(channel gossh.Channel, in <-chan *gossh.Request) {
	for req := range in {
		if req.Type == "subsystem" && len(req.Payload) > 4 && string(req.Payload[4:]) == "sftp" {
			_ = req.Reply(true, nil)
			go s.serveSFTP(channel)
			continue
		}
		_ = req.Reply(false, nil)
	}
}

func (s *Server) serveSFTP(channel gossh.Channel) {
	server := pkgsftp.NewRequestServer(channel, s.handlers)
	_ = server.Serve()
	_ = server.Close()
}
