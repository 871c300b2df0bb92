package session

import (
	"errors"
	"io/fs"

	pkgsftp "github.com/pkg/sftp"

	isftp "github.com/charlesng35/sftpctl/internal/sftp"
	apperrors "github.com/charlesng35/sftpctl/pkg/errors"
)

// isNotFound reports whether err is the remote "no such file" status or a
// wrapped fs.ErrNotExist.
func isNotFound(err error) bool {
	var statusErr *pkgsftp.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.FxCode() == pkgsftp.ErrSSHFxNoSuchFile
	}
	return errors.Is(err, fs.ErrNotExist)
}

func mapListError(path string, err error) *apperrors.AppError {
	if isNotFound(err) {
		return apperrors.ErrPathNotFound.WithPath(path).WithSide(apperrors.SideRemote).WithInternal(err)
	}
	return apperrors.ErrTransfer.WithPath(path).WithSide(apperrors.SideRemote).WithInternal(err)
}

// mapTransferError keeps the side recorded by the engine and names the path on
// that side. Errors without a side stay SideUnknown and name the remote path.
func mapTransferError(remotePath, localPath string, err error) *apperrors.AppError {
	side := isftp.SideOf(err)
	path := remotePath
	if side == apperrors.SideLocal {
		path = localPath
	}

	appErr := apperrors.ErrTransfer.WithPath(path).WithInternal(err)
	if side != apperrors.SideUnknown {
		appErr = appErr.WithSide(side)
	}
	return appErr
}
