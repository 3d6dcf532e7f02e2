package ustream_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/ulib-broker/pkg/ustream"
)

func Test_Write_Accumulates_Chunks(t *testing.T) {
	t.Parallel()

	s := ustream.New(4)

	n, err := s.Write([]byte("ab"))
	require.NoError(t, err)
	require.Equal(t, 2, n)

	require.NoError(t, s.WriteByte('c'))

	n, err = s.Write([]byte("de"))
	require.NoError(t, err)
	require.Equal(t, 2, n)

	require.Equal(t, "abcde", string(s.Bytes()))
	require.Equal(t, 5, s.Len())
}

func Test_Reset_Empties_Stream_For_Reuse(t *testing.T) {
	t.Parallel()

	s := ustream.New(0)

	_, err := s.Write([]byte("hello"))
	require.NoError(t, err)
	require.Equal(t, 5, s.Len())

	s.Reset()
	require.Equal(t, 0, s.Len())
	require.Empty(t, s.Bytes())

	_, err = s.Write([]byte("world"))
	require.NoError(t, err)
	require.Equal(t, "world", string(s.Bytes()))
}

func Test_Zero_Value_Is_Ready_To_Use(t *testing.T) {
	t.Parallel()

	var s ustream.Stream

	_, err := s.Write([]byte("x"))
	require.NoError(t, err)
	require.Equal(t, "x", string(s.Bytes()))
}
