package cipher_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/ulib-broker/demo/cipher"
	"github.com/calvinalkan/ulib-broker/pkg/ipc"
	"github.com/calvinalkan/ulib-broker/pkg/ipc/wrapper"
)

func Test_Encrypt_Decrypt_Round_Trip_Typed(t *testing.T) {
	t.Parallel()

	table, err := ipc.New(ipc.DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, table.Init())
	t.Cleanup(func() { _ = table.Deinit() })

	prod := cipher.NewProducer(table)
	require.NoError(t, prod.Start())
	t.Cleanup(func() { _ = prod.Stop(0) })

	h, err := table.TryGet(cipher.InterfaceName, cipher.InterfaceVersion, ipc.Any)
	require.NoError(t, err)
	t.Cleanup(func() { _ = table.Release(h) })

	encryptIdx, err := table.TryGetCapability(h, "encrypt")
	require.NoError(t, err)

	decryptIdx, err := table.TryGetCapability(h, "decrypt")
	require.NoError(t, err)

	plaintext := []byte("hello, ulib")

	encOut := cipher.EncryptResult{}
	require.NoError(t, table.Call(h, encryptIdx, &cipher.EncryptArgs{Context: 7, Src: plaintext}, &encOut))
	require.NotEqual(t, plaintext, encOut.Dest)

	decOut := cipher.DecryptResult{}
	require.NoError(t, table.Call(h, decryptIdx, &cipher.DecryptArgs{Src: encOut.Dest}, &decOut))
	require.Equal(t, plaintext, decOut.Dest)
}

func Test_Encrypt_Decrypt_Round_Trip_Span(t *testing.T) {
	t.Parallel()

	table, err := ipc.New(ipc.DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, table.Init())
	t.Cleanup(func() { _ = table.Deinit() })

	prod := cipher.NewProducer(table)
	require.NoError(t, prod.Start())
	t.Cleanup(func() { _ = prod.Stop(0) })

	h, err := table.TryGet(cipher.InterfaceName, cipher.InterfaceVersion, ipc.Any)
	require.NoError(t, err)
	t.Cleanup(func() { _ = table.Release(h) })

	encIn := wrapper.NewEncoder()
	encIn.PutUint32(7)
	encIn.PutBytes([]byte("span round trip"))

	encOut := make([]byte, 256)
	require.NoError(t, table.CallWithSpan(h, "encrypt", encIn.Bytes(), encOut))

	decIn := wrapper.NewEncoder()

	decDec := wrapper.NewDecoder(encOut)
	cipherText, err := decDec.Bytes()
	require.NoError(t, err)
	decIn.PutBytes(cipherText)

	decOut := make([]byte, 256)
	require.NoError(t, table.CallWithSpan(h, "decrypt", decIn.Bytes(), decOut))

	decDec2 := wrapper.NewDecoder(decOut)
	plain, err := decDec2.Bytes()
	require.NoError(t, err)
	require.Equal(t, "span round trip", string(plain))
}
