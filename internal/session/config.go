package session

import (
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Config identifies the remote endpoint and the credentials used to reach it.
// At least one of Password and PrivateKey must be set.
type Config struct {
	Hostname   string `mapstructure:"host" validate:"required,ssh_host"`
	Port       int    `mapstructure:"port" validate:"min=1,max=65535"`
	Username   string `mapstructure:"username" validate:"required"`
	Password   string `mapstructure:"password" validate:"required_without=PrivateKey"`
	PrivateKey []byte `mapstructure:"private_key" validate:"required_without=Password"`
	Passphrase string `mapstructure:"passphrase"`
}

// Option customises a Client.
type Option func(*Client)

// WithLogger injects the logger used for lifecycle and transfer events.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithFs sets the filesystem used to validate upload sources.
func WithFs(fs afero.Fs) Option {
	return func(c *Client) {
		if fs != nil {
			c.fs = fs
		}
	}
}
