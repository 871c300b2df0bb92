// Package session implements a single-caller client for a remote file-transfer
// session.
//
// A Client is either disconnected (no channel) or connected (it owns one
// authenticated transport and the transfer channel opened over it). Every
// operation returns a result.Result; no failure from the engine crosses the
// package boundary as a bare error or a panic.
//
// A Client is not safe for concurrent use. Callers sharing one must serialise
// access themselves.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	isftp "github.com/charlesng35/sftpctl/internal/sftp"
	apperrors "github.com/charlesng35/sftpctl/pkg/errors"
	"github.com/charlesng35/sftpctl/pkg/metrics"
	"github.com/charlesng35/sftpctl/pkg/result"
	"github.com/charlesng35/sftpctl/pkg/validator"
)

const (
	opConnect    = "connect"
	opDisconnect = "disconnect"
	opList       = "listdir"
	opUpload     = "upload"
	opDownload   = "download"
)

// Client owns at most one transfer channel and the transport beneath it.
type Client struct {
	cfg    Config
	engine isftp.Engine
	fs     afero.Fs
	log    *zap.Logger

	// transport and channel are both nil or both non-nil.
	transport isftp.Transport
	channel   isftp.Channel
	sessionID string
}

// New validates cfg and returns a disconnected client.
func New(cfg Config, engine isftp.Engine, opts ...Option) (*Client, error) {
	if engine == nil {
		return nil, errors.New("session: engine is required")
	}
	if err := validator.ValidateStruct(cfg); err != nil {
		return nil, fmt.Errorf("session: invalid config: %w", err)
	}

	c := &Client{
		cfg:    cfg,
		engine: engine,
		fs:     afero.NewOsFs(),
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) state() state {
	if c.channel != nil {
		return stateConnected
	}
	return stateDisconnected
}

func (c *Client) endpointFields() []zap.Field {
	return []zap.Field{
		zap.String("host", c.cfg.Hostname),
		zap.Int("port", c.cfg.Port),
		zap.String("username", c.cfg.Username),
	}
}

func (c *Client) credentials() isftp.Credentials {
	return isftp.Credentials{
		Username:   c.cfg.Username,
		Password:   c.cfg.Password,
		PrivateKey: c.cfg.PrivateKey,
		Passphrase: c.cfg.Passphrase,
	}
}

// Connect opens the transport, authenticates and opens the transfer channel.
// ctx bounds dialing only; a nil ctx is treated as context.Background.
//
// Calling Connect while connected closes the current session first and then
// connects afresh; a failure to close the old session is logged and does not
// prevent the new connection.
func (c *Client) Connect(ctx context.Context) result.Result[result.Unit] {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.state() == stateConnected {
		c.log.Warn("connect called while connected; replacing session",
			append(c.endpointFields(), zap.String("session_id", c.sessionID))...)
		if res := c.Disconnect(); !res.IsOk() {
			c.log.Warn("previous session did not close cleanly", zap.Error(res.Err()))
		}
	}

	start := time.Now()

	transport, err := c.engine.OpenTransport(ctx, c.cfg.Hostname, c.cfg.Port)
	if err != nil {
		return c.connectFailed("open transport", err, nil)
	}
	if transport == nil {
		return c.connectFailed("open transport", errors.New("engine returned no transport"), nil)
	}

	if err := transport.Authenticate(c.credentials()); err != nil {
		return c.connectFailed("authenticate", err, transport)
	}

	channel, err := transport.OpenChannel()
	if err != nil {
		return c.connectFailed("open channel", err, transport)
	}
	if channel == nil {
		return c.connectFailed("open channel", errors.New("engine returned no channel"), transport)
	}

	c.transport = transport
	c.channel = channel
	c.sessionID = uuid.NewString()

	elapsed := time.Since(start)
	metrics.ConnectDuration.Observe(elapsed.Seconds())
	metrics.Connected.Inc()
	metrics.ObserveOperation(opConnect, true)

	c.log.Info("connected", append(c.endpointFields(),
		zap.String("session_id", c.sessionID),
		zap.Stringer("state", c.state()),
		zap.Duration("elapsed", elapsed),
	)...)
	return result.Done()
}

// connectFailed releases any partially opened transport and reports the step
// that failed.
func (c *Client) connectFailed(step string, err error, transport isftp.Transport) result.Result[result.Unit] {
	if transport != nil {
		if closeErr := transport.Close(); closeErr != nil {
			c.log.Debug("release transport after failed connect", zap.Error(closeErr))
		}
	}

	metrics.ObserveOperation(opConnect, false)
	c.log.Error("connection failed", append(c.endpointFields(),
		zap.String("step", step),
		zap.Error(err),
	)...)
	return result.Fail[result.Unit](apperrors.ErrConnection.WithInternal(fmt.Errorf("%s: %w", step, err)))
}

// Disconnect closes the channel and then the transport. Both closes are always
// attempted and the client is disconnected afterwards even if either fails.
// Disconnecting a disconnected client is a no-op success.
func (c *Client) Disconnect() result.Result[result.Unit] {
	if c.channel == nil && c.transport == nil {
		return result.Done()
	}

	var errs error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("close channel: %w", err))
		}
	}
	if c.transport != nil {
		if err := c.transport.Close(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("close transport: %w", err))
		}
	}

	sessionID := c.sessionID
	c.channel = nil
	c.transport = nil
	c.sessionID = ""
	metrics.Connected.Dec()

	fields := append(c.endpointFields(), zap.String("session_id", sessionID))
	if errs != nil {
		metrics.ObserveOperation(opDisconnect, false)
		c.log.Error("disconnect failed", append(fields, zap.Error(errs))...)
		return result.Fail[result.Unit](apperrors.ErrDisconnection.WithInternal(errs))
	}

	metrics.ObserveOperation(opDisconnect, true)
	c.log.Info("disconnected", fields...)
	return result.Done()
}

// requireChannel is the precondition shared by all data operations.
func (c *Client) requireChannel(op string) (isftp.Channel, *apperrors.AppError) {
	if c.channel == nil {
		metrics.ObserveOperation(op, false)
		c.log.Warn("not connected", zap.String("operation", op))
		return nil, apperrors.ErrNotConnected.WithInternal(fmt.Errorf("%s requires an open channel", op))
	}
	return c.channel, nil
}
