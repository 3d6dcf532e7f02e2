package ipc_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/ulib-broker/internal/errs"
	"github.com/calvinalkan/ulib-broker/pkg/ipc"
	"github.com/calvinalkan/ulib-broker/pkg/ipc/wrapper"
)

func spanEchoDescriptor() *ipc.Descriptor {
	return &ipc.Descriptor{
		Name:    "echo",
		Version: 1,
		Capabilities: []ipc.Capability{
			{
				Name: "upper",
				Kind: ipc.Command,
				Entry: func(modelIn, modelOut any) error {
					in := modelIn.(*string)
					out := modelOut.(*string)
					*out = *in

					return nil
				},
				Span: func(in, out []byte) error {
					dec := wrapper.NewDecoder(in)

					s, err := dec.String()
					if err != nil {
						return err
					}

					enc := wrapper.NewEncoder()
					enc.PutString(s)
					copy(out, enc.Bytes())

					return nil
				},
			},
			{Name: "temperature", Kind: ipc.Telemetry},
		},
	}
}

func Test_Call_Invokes_Typed_Entry_Point(t *testing.T) {
	t.Parallel()

	table := newTestTable(t, 4)

	d := spanEchoDescriptor()
	_, err := table.Publish(d)
	require.NoError(t, err)

	h, err := table.TryGet("echo", 1, ipc.Any)
	require.NoError(t, err)

	idx, err := table.TryGetCapability(h, "upper")
	require.NoError(t, err)

	in := "hello"

	var out string

	require.NoError(t, table.Call(h, idx, &in, &out))
	require.Equal(t, "hello", out)
}

func Test_Call_On_Telemetry_Is_Rejected(t *testing.T) {
	t.Parallel()

	table := newTestTable(t, 4)

	d := spanEchoDescriptor()
	_, err := table.Publish(d)
	require.NoError(t, err)

	h, err := table.TryGet("echo", 1, ipc.Any)
	require.NoError(t, err)

	idx, err := table.TryGetCapability(h, "temperature")
	require.NoError(t, err)

	err = table.Call(h, idx, nil, nil)
	require.ErrorIs(t, err, errs.ErrItemNotFound)
}

func Test_Call_After_Unpublish_Fails(t *testing.T) {
	t.Parallel()

	table := newTestTable(t, 4)

	d := spanEchoDescriptor()
	_, err := table.Publish(d)
	require.NoError(t, err)

	h, err := table.TryGet("echo", 1, ipc.Any)
	require.NoError(t, err)

	idx, err := table.TryGetCapability(h, "upper")
	require.NoError(t, err)

	require.NoError(t, table.Unpublish(d, 0))

	in := "hello"

	var out string

	err = table.Call(h, idx, &in, &out)
	require.ErrorIs(t, err, errs.ErrItemNotFound)
}

func Test_CallWithSpan_Round_Trips_Through_Wrapper_Codec(t *testing.T) {
	t.Parallel()

	table := newTestTable(t, 4)

	d := spanEchoDescriptor()
	_, err := table.Publish(d)
	require.NoError(t, err)

	h, err := table.TryGet("echo", 1, ipc.Any)
	require.NoError(t, err)

	enc := wrapper.NewEncoder()
	enc.PutString("span-hello")

	out := make([]byte, 64)

	require.NoError(t, table.CallWithSpan(h, "upper", enc.Bytes(), out))

	dec := wrapper.NewDecoder(out)

	got, err := dec.String()
	require.NoError(t, err)
	require.Equal(t, "span-hello", got)
}
