package sftp

import (
	"errors"
	"fmt"

	apperrors "github.com/charlesng35/sftpctl/pkg/errors"
)

// TransferFault attributes a put/get failure to the local or remote side.
type TransferFault struct {
	Side apperrors.Side
	Op   string
	Path string
	Err  error
}

func (f *TransferFault) Error() string {
	if f == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s %s %s: %v", f.Side, f.Op, f.Path, f.Err)
}

func (f *TransferFault) Unwrap() error {
	if f == nil {
		return nil
	}
	return f.Err
}

// LocalFault wraps err as a local-side failure of op on path.
func LocalFault(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &TransferFault{Side: apperrors.SideLocal, Op: op, Path: path, Err: err}
}

// RemoteFault wraps err as a remote-side failure of op on path.
func RemoteFault(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &TransferFault{Side: apperrors.SideRemote, Op: op, Path: path, Err: err}
}

// SideOf returns the side recorded in err's chain, or SideUnknown.
func SideOf(err error) apperrors.Side {
	var fault *TransferFault
	if errors.As(err, &fault) && fault != nil {
		return fault.Side
	}
	return apperrors.SideUnknown
}
