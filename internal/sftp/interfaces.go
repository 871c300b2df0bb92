package sftp

import (
	"context"
)

// Credentials authenticate a transport. Password and PrivateKey may both be set,
// in which case the key is offered first.
type Credentials struct {
	Username   string
	Password   string
	PrivateKey []byte
	Passphrase string
}

// Engine opens network transports to a remote host.
type Engine interface {
	OpenTransport(ctx context.Context, host string, port int) (Transport, error)
}

// Transport is an open network connection that must be authenticated before a
// channel can be opened over it. Close is idempotent and safe in any state.
type Transport interface {
	Authenticate(creds Credentials) error
	OpenChannel() (Channel, error)
	Close() error
}

// Channel is the file-transfer session multiplexed over an authenticated
// transport. Close is idempotent.
type Channel interface {
	// List returns entry names in the order the server reports them.
	List(path string) ([]string, error)
	// Put copies localPath to remotePath and returns the bytes written.
	Put(localPath, remotePath string) (int64, error)
	// Get copies remotePath to localPath and returns the bytes written.
	Get(remotePath, localPath string) (int64, error)
	Close() error
}
