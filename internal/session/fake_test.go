package session

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"sync"

	"github.com/spf13/afero"

	isftp "github.com/charlesng35/sftpctl/internal/sftp"
)

// fakeEngine is an in-memory engine with a mutable remote tree. Every method
// is counted so tests can assert on network activity.
type fakeEngine struct {
	mu sync.Mutex

	openErr    error
	authErr    error
	channelErr error

	channelCloseErr   error
	transportCloseErr error

	listErr error
	putErr  error
	getErr  error

	// dirs maps a remote directory to its entries in insertion order.
	dirs  map[string][]string
	files map[string][]byte

	transports []*fakeTransport
	opens      int
	dialCtx    context.Context
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		dirs:  map[string][]string{"/": {}},
		files: map[string][]byte{},
	}
}

func (e *fakeEngine) mkdir(dir string, entries ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dirs[dir] = append([]string(nil), entries...)
}

func (e *fakeEngine) OpenTransport(ctx context.Context, _ string, _ int) (isftp.Transport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opens++
	e.dialCtx = ctx
	if e.openErr != nil {
		return nil, e.openErr
	}
	t := &fakeTransport{engine: e}
	e.transports = append(e.transports, t)
	return t, nil
}

// networkCalls counts every engine interaction so far.
func (e *fakeEngine) networkCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	total := e.opens
	for _, t := range e.transports {
		total += t.authCalls + t.openChannelCalls + t.closeCalls
		if t.channel != nil {
			ch := t.channel
			total += ch.listCalls + ch.putCalls + ch.getCalls + ch.closeCalls
		}
	}
	return total
}

func (e *fakeEngine) lastTransport() *fakeTransport {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.transports) == 0 {
		return nil
	}
	return e.transports[len(e.transports)-1]
}

type fakeTransport struct {
	engine *fakeEngine

	authCalls        int
	openChannelCalls int
	closeCalls       int
	creds            isftp.Credentials

	channel *fakeChannel
}

func (t *fakeTransport) Authenticate(creds isftp.Credentials) error {
	t.authCalls++
	t.creds = creds
	return t.engine.authErr
}

func (t *fakeTransport) OpenChannel() (isftp.Channel, error) {
	t.openChannelCalls++
	if t.engine.channelErr != nil {
		return nil, t.engine.channelErr
	}
	t.channel = &fakeChannel{engine: t.engine}
	return t.channel, nil
}

func (t *fakeTransport) Close() error {
	t.closeCalls++
	return t.engine.transportCloseErr
}

type fakeChannel struct {
	engine *fakeEngine

	listCalls  int
	putCalls   int
	getCalls   int
	closeCalls int
}

func (c *fakeChannel) List(dir string) ([]string, error) {
	c.listCalls++
	e := c.engine
	if e.listErr != nil {
		return nil, e.listErr
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	entries, ok := e.dirs[dir]
	if !ok {
		return nil, &fs.PathError{Op: "readdir", Path: dir, Err: fs.ErrNotExist}
	}
	return append([]string(nil), entries...), nil
}

func (c *fakeChannel) Put(local, remote string) (int64, error) {
	c.putCalls++
	e := c.engine
	if e.putErr != nil {
		return 0, e.putErr
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	dir, name := path.Split(remote)
	dir = path.Clean(dir)
	entries, ok := e.dirs[dir]
	if !ok {
		return 0, isftp.RemoteFault("create", remote, fs.ErrNotExist)
	}
	if _, exists := e.files[remote]; !exists {
		e.dirs[dir] = append(entries, name)
	}
	data := []byte("uploaded:" + local)
	e.files[remote] = data
	return int64(len(data)), nil
}

func (c *fakeChannel) Get(remote, _ string) (int64, error) {
	c.getCalls++
	e := c.engine
	if e.getErr != nil {
		return 0, e.getErr
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	data, ok := e.files[remote]
	if !ok {
		return 0, isftp.RemoteFault("open", remote, fs.ErrNotExist)
	}
	return int64(len(data)), nil
}

func (c *fakeChannel) Close() error {
	c.closeCalls++
	return c.engine.channelCloseErr
}

// statFailFs fails every Stat with err.
type statFailFs struct {
	afero.Fs
	err error
}

func (f statFailFs) Stat(name string) (os.FileInfo, error) {
	return nil, &fs.PathError{Op: "stat", Path: name, Err: f.err}
}

var errBoom = errors.New("boom")
