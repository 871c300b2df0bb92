package result

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/charlesng35/sftpctl/pkg/errors"
)

func TestOkCarriesValue(t *testing.T) {
	r := Ok([]string{"a.txt", "b.txt"})

	require.True(t, r.IsOk())
	require.Nil(t, r.Err())

	v, ok := r.Value()
	require.True(t, ok)
	require.Equal(t, []string{"a.txt", "b.txt"}, v)

	got, err := r.Get()
	require.NoError(t, err)
	require.Equal(t, v, got)
}

func TestFailCarriesDescriptor(t *testing.T) {
	r := Fail[[]string](apperrors.ErrPathNotFound.WithPath("/missing"))

	require.False(t, r.IsOk())
	require.Equal(t, apperrors.KindPathNotFound, r.Err().Kind)

	v, ok := r.Value()
	require.False(t, ok)
	require.Nil(t, v)

	_, err := r.Get()
	require.Error(t, err)
	require.True(t, errors.Is(err, apperrors.ErrPathNotFound))
}

func TestGetReturnsUntypedNilOnSuccess(t *testing.T) {
	_, err := Done().Get()
	require.True(t, err == nil)
}

func TestFailWithNilDescriptorStillFails(t *testing.T) {
	r := Fail[Unit](nil)

	require.False(t, r.IsOk())
	require.Equal(t, apperrors.KindTransfer, r.Err().Kind)
}

func TestZeroResultIsSuccess(t *testing.T) {
	var r Result[Unit]
	require.True(t, r.IsOk())
}
