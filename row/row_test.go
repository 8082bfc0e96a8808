package row

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	r, err := New(7, "alice", "alice@example.com")
	require.NoError(t, err)

	buf := make([]byte, Size)
	r.Encode(buf)

	got, err := Decode(buf)
	require.NoError(t, err)
	require.Equal(t, r, got)
}

func TestEncodeDecodeEmptyStrings(t *testing.T) {
	r, err := New(1, "", "")
	require.NoError(t, err)

	buf := make([]byte, Size)
	r.Encode(buf)

	got, err := Decode(buf)
	require.NoError(t, err)
	require.Equal(t, uint32(1), got.ID)
	require.Equal(t, "", got.Username)
	require.Equal(t, "", got.Email)
}

func TestNewRejectsOversizeFields(t *testing.T) {
	_, err := New(1, strings.Repeat("a", UsernameColumnSize+1), "e@e.com")
	require.ErrorIs(t, err, ErrStringTooLong)

	_, err = New(1, "bob", strings.Repeat("e", EmailColumnSize+1))
	require.ErrorIs(t, err, ErrStringTooLong)
}

func TestNewAllowsMaxWidthFields(t *testing.T) {
	u := strings.Repeat("u", UsernameColumnSize)
	e := strings.Repeat("e", EmailColumnSize)
	r, err := New(1, u, e)
	require.NoError(t, err)

	buf := make([]byte, Size)
	r.Encode(buf)
	got, err := Decode(buf)
	require.NoError(t, err)
	require.Equal(t, u, got.Username)
	require.Equal(t, e, got.Email)
}

func TestStringFormat(t *testing.T) {
	r, err := New(1, "bob", "bob@example.com")
	require.NoError(t, err)
	require.Equal(t, "(1, bob, bob@example.com)", r.String())
}

func TestSizeConstant(t *testing.T) {
	require.Equal(t, 293, Size)
}
