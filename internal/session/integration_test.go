package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	sshdriver "github.com/charlesng35/sftpctl/internal/drivers/ssh"
	"github.com/charlesng35/sftpctl/internal/session"
	"github.com/charlesng35/sftpctl/internal/testutil/sftptest"
	apperrors "github.com/charlesng35/sftpctl/pkg/errors"
	"github.com/charlesng35/sftpctl/pkg/result"
)

func newSSHClient(t *testing.T, server *sftptest.Server, password string) (*session.Client, afero.Fs) {
	t.Helper()

	fs := afero.NewMemMapFs()
	engine := sshdriver.NewDriver(sshdriver.Config{Fs: fs, Timeout: 5 * time.Second})
	client, err := session.New(session.Config{
		Hostname: server.Host,
		Port:     server.Port,
		Username: server.Creds.Username,
		Password: password,
	}, engine, session.WithFs(fs))
	require.NoError(t, err)
	return client, fs
}

func TestSessionOverSSH(t *testing.T) {
	server := sftptest.Start(t, sftptest.Credentials{Username: "u", Password: "p"})
	server.Mkdir(t, "/remote")

	client, fs := newSSHClient(t, server, "p")
	require.NoError(t, afero.WriteFile(fs, "/tmp/x.txt", []byte("over the wire"), 0o644))

	res := session.WithSession(context.Background(), client, func(c *session.Client) result.Result[[]string] {
		if up := c.Upload("/tmp/x.txt", "/remote/x.txt"); !up.IsOk() {
			return result.Fail[[]string](up.Err())
		}
		if down := c.Download("/remote/x.txt", "/tmp/copy.txt"); !down.IsOk() {
			return result.Fail[[]string](down.Err())
		}
		return c.ListDir("/remote")
	})

	entries, err := res.Get()
	require.NoError(t, err)
	require.Equal(t, []string{"x.txt"}, entries)

	data, err := afero.ReadFile(fs, "/tmp/copy.txt")
	require.NoError(t, err)
	require.Equal(t, "over the wire", string(data))

	after := client.ListDir("/remote")
	require.Equal(t, apperrors.KindNotConnected, after.Err().Kind)
}

func TestSessionOverSSHMissingDirectory(t *testing.T) {
	server := sftptest.Start(t, sftptest.Credentials{Username: "u", Password: "p"})
	client, _ := newSSHClient(t, server, "p")

	res := session.WithSession(context.Background(), client, func(c *session.Client) result.Result[[]string] {
		return c.ListDir("/nowhere")
	})
	require.False(t, res.IsOk())
	require.Equal(t, apperrors.KindPathNotFound, res.Err().Kind)
}

func TestSessionOverSSHBadPassword(t *testing.T) {
	server := sftptest.Start(t, sftptest.Credentials{Username: "u", Password: "p"})
	client, _ := newSSHClient(t, server, "wrong")

	res := client.Connect(context.Background())
	require.False(t, res.IsOk())
	require.Equal(t, apperrors.KindConnection, res.Err().Kind)

	require.Equal(t, apperrors.KindNotConnected, client.ListDir("/").Err().Kind)
}

func TestOperationsWithoutSessionNeverDial(t *testing.T) {
	server := sftptest.Start(t, sftptest.Credentials{Username: "u", Password: "p"})
	client, fs := newSSHClient(t, server, "p")
	require.NoError(t, afero.WriteFile(fs, "/tmp/x.txt", []byte("x"), 0o644))

	require.Equal(t, apperrors.KindNotConnected, client.ListDir("/").Err().Kind)
	require.Equal(t, apperrors.KindNotConnected, client.Upload("/tmp/x.txt", "/x.txt").Err().Kind)
	require.Equal(t, apperrors.KindNotConnected, client.Download("/x.txt", "/tmp/y.txt").Err().Kind)
	require.True(t, client.Disconnect().IsOk())
	require.Zero(t, server.Accepted())

	require.True(t, client.Connect(context.Background()).IsOk())
	require.Equal(t, int64(1), server.Accepted())
	require.True(t, client.Disconnect().IsOk())
}
