package ssh

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"

	gossh "golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"

	isftp "github.com/charlesng35/sftpctl/internal/sftp"
)

// buildClientConfig assembles auth methods in preference order: private key,
// agent, password, keyboard-interactive answering with the password. The
// returned closer releases the agent socket, if one was opened.
func (d *Driver) buildClientConfig(creds isftp.Credentials) (*gossh.ClientConfig, io.Closer, error) {
	if creds.Username == "" {
		return nil, nil, errors.New("ssh: username is required")
	}

	authMethods := []gossh.AuthMethod{}

	if len(creds.PrivateKey) > 0 {
		var signer gossh.Signer
		var err error
		if creds.Passphrase != "" {
			signer, err = gossh.ParsePrivateKeyWithPassphrase(creds.PrivateKey, []byte(creds.Passphrase))
		} else {
			signer, err = gossh.ParsePrivateKey(creds.PrivateKey)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("ssh: parse private key: %w", err)
		}
		authMethods = append(authMethods, gossh.PublicKeys(signer))
	}

	var agentConn net.Conn
	if d.cfg.UseAgent {
		if sock := os.Getenv("SSH_AUTH_SOCK"); sock != "" {
			if conn, err := net.Dial("unix", sock); err == nil {
				agentConn = conn
				authMethods = append(authMethods, gossh.PublicKeysCallback(agent.NewClient(conn).Signers))
			}
		}
	}

	if creds.Password != "" {
		password := creds.Password
		authMethods = append(authMethods,
			gossh.Password(password),
			gossh.KeyboardInteractive(func(_, _ string, questions []string, _ []bool) ([]string, error) {
				answers := make([]string, len(questions))
				for i := range answers {
					answers[i] = password
				}
				return answers, nil
			}),
		)
	}

	if len(authMethods) == 0 {
		closeQuietly(agentConn)
		return nil, nil, errors.New("ssh: no authentication methods configured")
	}

	hostKeyCB, err := d.hostKeyCallback()
	if err != nil {
		closeQuietly(agentConn)
		return nil, nil, err
	}

	clientConfig := &gossh.ClientConfig{
		User:            creds.Username,
		Auth:            authMethods,
		HostKeyCallback: hostKeyCB,
		Timeout:         d.cfg.Timeout,
	}

	var closer io.Closer
	if agentConn != nil {
		closer = agentConn
	}
	return clientConfig, closer, nil
}

func (d *Driver) hostKeyCallback() (gossh.HostKeyCallback, error) {
	if d.cfg.HostKeyCallback != nil {
		return d.cfg.HostKeyCallback, nil
	}
	if !d.cfg.StrictHostKey {
		return gossh.InsecureIgnoreHostKey(), nil
	}
	if d.cfg.KnownHostsPath == "" {
		return nil, errors.New("ssh: strict host key checking requires a known_hosts path")
	}
	if _, err := os.Stat(d.cfg.KnownHostsPath); err != nil {
		return nil, fmt.Errorf("ssh: known_hosts file not found at %s: %w", d.cfg.KnownHostsPath, err)
	}
	cb, err := knownhosts.New(d.cfg.KnownHostsPath)
	if err != nil {
		return nil, fmt.Errorf("ssh: known_hosts: %w", err)
	}
	return cb, nil
}

func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}
