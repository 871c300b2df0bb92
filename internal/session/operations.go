package session

import (
	"errors"
	"fmt"
	"io/fs"

	"go.uber.org/zap"

	apperrors "github.com/charlesng35/sftpctl/pkg/errors"
	"github.com/charlesng35/sftpctl/pkg/metrics"
	"github.com/charlesng35/sftpctl/pkg/result"
)

// ListDir returns the entry names of remotePath in the order the server
// reported them.
func (c *Client) ListDir(remotePath string) result.Result[[]string] {
	channel, appErr := c.requireChannel(opList)
	if appErr != nil {
		return result.Fail[[]string](appErr)
	}

	entries, err := channel.List(remotePath)
	if err != nil {
		mapped := mapListError(remotePath, err)
		metrics.ObserveOperation(opList, false)
		c.log.Error("list failed",
			zap.String("session_id", c.sessionID),
			zap.String("path", remotePath),
			zap.String("kind", string(mapped.Kind)),
			zap.Error(err),
		)
		return result.Fail[[]string](mapped)
	}
	if entries == nil {
		entries = []string{}
	}

	for _, name := range entries {
		c.log.Debug("entry", zap.String("path", remotePath), zap.String("name", name))
	}
	metrics.ObserveOperation(opList, true)
	c.log.Info("listed directory",
		zap.String("session_id", c.sessionID),
		zap.String("path", remotePath),
		zap.Int("entries", len(entries)),
	)
	return result.Ok(entries)
}

// Upload copies the regular file at localPath to remotePath. The local path is
// checked before any data is sent.
func (c *Client) Upload(localPath, remotePath string) result.Result[result.Unit] {
	channel, appErr := c.requireChannel(opUpload)
	if appErr != nil {
		return result.Fail[result.Unit](appErr)
	}

	if appErr := c.checkLocalSource(localPath); appErr != nil {
		metrics.ObserveOperation(opUpload, false)
		c.log.Warn("upload rejected",
			zap.String("local", localPath),
			zap.String("kind", string(appErr.Kind)),
			zap.Error(appErr),
		)
		return result.Fail[result.Unit](appErr)
	}

	n, err := channel.Put(localPath, remotePath)
	if err != nil {
		mapped := mapTransferError(remotePath, localPath, err)
		metrics.ObserveOperation(opUpload, false)
		c.log.Error("upload failed",
			zap.String("session_id", c.sessionID),
			zap.String("local", localPath),
			zap.String("remote", remotePath),
			zap.String("side", string(mapped.Side)),
			zap.Error(err),
		)
		return result.Fail[result.Unit](mapped)
	}

	metrics.TransferBytes.WithLabelValues(metrics.DirectionUpload).Add(float64(n))
	metrics.ObserveOperation(opUpload, true)
	c.log.Info("uploaded",
		zap.String("session_id", c.sessionID),
		zap.String("local", localPath),
		zap.String("remote", remotePath),
		zap.Int64("bytes", n),
	)
	return result.Done()
}

func (c *Client) checkLocalSource(localPath string) *apperrors.AppError {
	info, err := c.fs.Stat(localPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return apperrors.ErrLocalPathNotFound.WithPath(localPath).WithSide(apperrors.SideLocal).WithInternal(err)
		}
		return apperrors.ErrInvalidLocalPath.WithPath(localPath).WithSide(apperrors.SideLocal).WithInternal(err)
	}
	if !info.Mode().IsRegular() {
		return apperrors.ErrInvalidLocalPath.WithPath(localPath).WithSide(apperrors.SideLocal).
			WithInternal(fmt.Errorf("mode %s is not a regular file", info.Mode().Type()))
	}
	return nil
}

// Download copies remotePath to localPath, creating or replacing the local
// file.
func (c *Client) Download(remotePath, localPath string) result.Result[result.Unit] {
	channel, appErr := c.requireChannel(opDownload)
	if appErr != nil {
		return result.Fail[result.Unit](appErr)
	}

	n, err := channel.Get(remotePath, localPath)
	if err != nil {
		mapped := mapTransferError(remotePath, localPath, err)
		metrics.ObserveOperation(opDownload, false)
		c.log.Error("download failed",
			zap.String("session_id", c.sessionID),
			zap.String("remote", remotePath),
			zap.String("local", localPath),
			zap.String("side", string(mapped.Side)),
			zap.Error(err),
		)
		return result.Fail[result.Unit](mapped)
	}

	metrics.TransferBytes.WithLabelValues(metrics.DirectionDownload).Add(float64(n))
	metrics.ObserveOperation(opDownload, true)
	c.log.Info("downloaded",
		zap.String("session_id", c.sessionID),
		zap.String("remote", remotePath),
		zap.String("local", localPath),
		zap.Int64("bytes", n),
	)
	return result.Done()
}
