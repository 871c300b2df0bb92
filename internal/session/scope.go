package session

import (
	"context"

	"go.uber.org/zap"

	apperrors "github.com/charlesng35/sftpctl/pkg/errors"
	"github.com/charlesng35/sftpctl/pkg/result"
)

// WithSession connects client, runs body and disconnects on every exit path,
// including a panic in body. When connecting fails body is not run and the
// connection failure is returned. A failure to disconnect is logged and never
// replaces the result of body.
func WithSession[T any](ctx context.Context, client *Client, body func(*Client) result.Result[T]) result.Result[T] {
	if client == nil {
		return result.Fail[T](apperrors.ErrNotConnected)
	}

	if res := client.Connect(ctx); !res.IsOk() {
		return result.Fail[T](res.Err())
	}

	defer func() {
		if res := client.Disconnect(); !res.IsOk() {
			client.log.Warn("session scope: disconnect failed", zap.Error(res.Err()))
		}
	}()

	return body(client)
}
