package display_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/ulib-broker/demo/display"
	"github.com/calvinalkan/ulib-broker/pkg/ipc"
)

func Test_Print_Writes_Into_Device_Buffer(t *testing.T) {
	t.Parallel()

	table, err := ipc.New(ipc.DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, table.Init())
	t.Cleanup(func() { _ = table.Deinit() })

	dev := display.NewDevice(10, 2)
	prod := display.NewProducer(table, dev, "contoso")
	require.NoError(t, prod.Start())
	t.Cleanup(func() { _ = prod.Stop(0) })

	h, err := table.TryGet(display.InterfaceName, display.InterfaceVersion, ipc.Any)
	require.NoError(t, err)
	t.Cleanup(func() { _ = table.Release(h) })

	printIdx, err := table.TryGetCapability(h, "print")
	require.NoError(t, err)

	require.NoError(t, table.Call(h, printIdx, &display.PrintArgs{X: 0, Y: 0, Buffer: "hi"}, nil))
	require.Equal(t, "hi        ", dev.Lines()[0])
}

func Test_MaxX_MaxY_Properties(t *testing.T) {
	t.Parallel()

	table, err := ipc.New(ipc.DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, table.Init())
	t.Cleanup(func() { _ = table.Deinit() })

	dev := display.NewDevice(48, 4)
	prod := display.NewProducer(table, dev, "contoso")
	require.NoError(t, prod.Start())
	t.Cleanup(func() { _ = prod.Stop(0) })

	h, err := table.TryGet(display.InterfaceName, display.InterfaceVersion, ipc.Any)
	require.NoError(t, err)
	t.Cleanup(func() { _ = table.Release(h) })

	maxXIdx, err := table.TryGetCapability(h, "max_x")
	require.NoError(t, err)

	var maxX int
	require.NoError(t, table.Call(h, maxXIdx, nil, &maxX))
	require.Equal(t, 48, maxX)
}

func Test_Two_Vendors_Cannot_Both_Publish_Display_1(t *testing.T) {
	t.Parallel()

	table, err := ipc.New(ipc.DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, table.Init())
	t.Cleanup(func() { _ = table.Deinit() })

	contoso := display.NewProducer(table, display.NewDevice(48, 4), "contoso")
	require.NoError(t, contoso.Start())
	t.Cleanup(func() { _ = contoso.Stop(0) })

	fabrikan := display.NewProducer(table, display.NewDevice(48, 4), "fabrikan")
	require.Error(t, fabrikan.Start())
}
