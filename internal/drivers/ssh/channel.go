package ssh

import (
	"errors"
	"io"
	"sync"

	pkgsftp "github.com/pkg/sftp"
	"github.com/spf13/afero"

	isftp "github.com/charlesng35/sftpctl/internal/sftp"
)

var errChannelUnavailable = errors.New("ssh: sftp client unavailable")

// Channel adapts *pkgsftp.Client to the transfer channel contract.
type Channel struct {
	client *pkgsftp.Client
	fs     afero.Fs

	closeOnce sync.Once
	closeErr  error
}

// List returns entry names for path as the server enumerates them.
func (c *Channel) List(path string) ([]string, error) {
	if c == nil || c.client == nil {
		return nil, errChannelUnavailable
	}
	infos, err := c.client.ReadDir(path)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		if info == nil {
			continue
		}
		names = append(names, info.Name())
	}
	return names, nil
}

// Put streams localPath to remotePath, creating or truncating the remote file.
func (c *Channel) Put(localPath, remotePath string) (int64, error) {
	if c == nil || c.client == nil {
		return 0, errChannelUnavailable
	}

	src, err := c.fs.Open(localPath)
	if err != nil {
		return 0, isftp.LocalFault("open", localPath, err)
	}
	defer src.Close()

	dst, err := c.client.Create(remotePath)
	if err != nil {
		return 0, isftp.RemoteFault("create", remotePath, err)
	}

	reader := &trackedReader{r: src}
	n, copyErr := io.Copy(dst, reader)
	closeErr := dst.Close()

	switch {
	case reader.err != nil:
		return n, isftp.LocalFault("read", localPath, reader.err)
	case copyErr != nil:
		return n, isftp.RemoteFault("write", remotePath, copyErr)
	case closeErr != nil:
		return n, isftp.RemoteFault("close", remotePath, closeErr)
	}
	return n, nil
}

// Get streams remotePath into localPath, creating or truncating the local
// file. The remote file is opened first so a missing source leaves no local
// artefact.
func (c *Channel) Get(remotePath, localPath string) (int64, error) {
	if c == nil || c.client == nil {
		return 0, errChannelUnavailable
	}

	src, err := c.client.Open(remotePath)
	if err != nil {
		return 0, isftp.RemoteFault("open", remotePath, err)
	}
	defer src.Close()

	dst, err := c.fs.Create(localPath)
	if err != nil {
		return 0, isftp.LocalFault("create", localPath, err)
	}

	writer := &trackedWriter{w: dst}
	n, copyErr := io.Copy(writer, src)
	closeErr := dst.Close()

	switch {
	case writer.err != nil:
		return n, isftp.LocalFault("write", localPath, writer.err)
	case copyErr != nil:
		return n, isftp.RemoteFault("read", remotePath, copyErr)
	case closeErr != nil:
		return n, isftp.LocalFault("close", localPath, closeErr)
	}
	return n, nil
}

// Close ends the sftp subsystem. The SSH connection stays open.
func (c *Channel) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	c.closeOnce.Do(func() {
		c.closeErr = c.client.Close()
	})
	return c.closeErr
}

// trackedReader remembers the first error from the local side of a copy.
type trackedReader struct {
	r   io.Reader
	err error
}

func (t *trackedReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && err != io.EOF && t.err == nil {
		t.err = err
	}
	return n, err
}

// trackedWriter remembers the first error from the local side of a copy.
type trackedWriter struct {
	w   io.Writer
	err error
}

func (t *trackedWriter) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	if err != nil && t.err == nil {
		t.err = err
	}
	return n, err
}
