package utils

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeDataURI(t *testing.T) {
	content := []byte("contenu du document")
	encoded := base64.StdEncoding.EncodeToString(content)

	t.Run("data URI with mime prefix", func(t *testing.T) {
		raw, err := DecodeDataURI("data:application/pdf;base64," + encoded)
		require.NoError(t, err)
		require.Equal(t, content, raw)
	})

	t.Run("empty input means no attachment", func(t *testing.T) {
		raw, err := DecodeDataURI("")
		require.NoError(t, err)
		require.Nil(t, raw)
	})

	t.Run("missing comma separator", func(t *testing.T) {
		_, err := DecodeDataURI(encoded)
		require.ErrorIs(t, err, ErrInvalidDataURI)
	})

	t.Run("payload is not base64", func(t *testing.T) {
		_, err := DecodeDataURI("data:text/plain;base64,not_base64!!")
		require.ErrorIs(t, err, ErrInvalidDataURI)
	})
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-15")
	require.NoError(t, err)
	require.Equal(t, 2024, d.Year())
	require.Equal(t, 3, int(d.Month()))
	require.Equal(t, 15, d.Day())

	_, err = ParseDate("15/03/2024")
	require.ErrorIs(t, err, ErrInvalidDate)
}

func TestParseOptionalDate(t *testing.T) {
	d, err := ParseOptionalDate("")
	require.NoError(t, err)
	require.Nil(t, d)

	d, err = ParseOptionalDate("2024-03-15")
	require.NoError(t, err)
	require.NotNil(t, d)

	_, err = ParseOptionalDate("bad")
	require.ErrorIs(t, err, ErrInvalidDate)
}
