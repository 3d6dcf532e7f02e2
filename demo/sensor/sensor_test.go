package sensor_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/ulib-broker/demo/sensor"
	"github.com/calvinalkan/ulib-broker/pkg/ipc"
)

func Test_Subscribe_Then_Sample_Delivers_Reading(t *testing.T) {
	t.Parallel()

	table, err := ipc.New(ipc.DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, table.Init())
	t.Cleanup(func() { _ = table.Deinit() })

	prod := sensor.NewProducer(table, 1000)
	require.NoError(t, prod.Start())
	t.Cleanup(func() { _ = prod.Stop(0) })

	h, err := table.TryGet(sensor.InterfaceName, sensor.InterfaceVersion, ipc.Any)
	require.NoError(t, err)
	t.Cleanup(func() { _ = table.Release(h) })

	subIdx, err := table.TryGetCapability(h, "subscribe_temperature")
	require.NoError(t, err)

	readings := make(chan sensor.Reading, 1)

	args := sensor.SubscribeArgs{Context: 1, Callback: func(r sensor.Reading) { readings <- r }}
	require.NoError(t, table.Call(h, subIdx, &args, nil))

	prod.Sample(sensor.Reading{CelsiusTenths: 215})

	select {
	case r := <-readings:
		require.Equal(t, int32(215), r.CelsiusTenths)
	default:
		t.Fatal("expected a delivered reading")
	}
}

func Test_Unsubscribe_Stops_Delivery(t *testing.T) {
	t.Parallel()

	table, err := ipc.New(ipc.DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, table.Init())
	t.Cleanup(func() { _ = table.Deinit() })

	prod := sensor.NewProducer(table, 1000)
	require.NoError(t, prod.Start())
	t.Cleanup(func() { _ = prod.Stop(0) })

	h, err := table.TryGet(sensor.InterfaceName, sensor.InterfaceVersion, ipc.Any)
	require.NoError(t, err)
	t.Cleanup(func() { _ = table.Release(h) })

	subIdx, err := table.TryGetCapability(h, "subscribe_temperature")
	require.NoError(t, err)

	unsubIdx, err := table.TryGetCapability(h, "unsubscribe_temperature")
	require.NoError(t, err)

	readings := make(chan sensor.Reading, 1)

	args := sensor.SubscribeArgs{Context: 1, Callback: func(r sensor.Reading) { readings <- r }}
	require.NoError(t, table.Call(h, subIdx, &args, nil))
	require.NoError(t, table.Call(h, unsubIdx, &sensor.UnsubscribeArgs{Context: 1}, nil))

	prod.Sample(sensor.Reading{CelsiusTenths: 100})

	select {
	case <-readings:
		t.Fatal("did not expect a reading after unsubscribe")
	default:
	}
}

func Test_Temperature_Capability_Is_Not_Directly_Callable(t *testing.T) {
	t.Parallel()

	table, err := ipc.New(ipc.DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, table.Init())
	t.Cleanup(func() { _ = table.Deinit() })

	prod := sensor.NewProducer(table, 1000)
	require.NoError(t, prod.Start())
	t.Cleanup(func() { _ = prod.Stop(0) })

	h, err := table.TryGet(sensor.InterfaceName, sensor.InterfaceVersion, ipc.Any)
	require.NoError(t, err)
	t.Cleanup(func() { _ = table.Release(h) })

	idx, err := table.TryGetCapability(h, "temperature")
	require.NoError(t, err)

	require.Error(t, table.Call(h, idx, nil, nil))
}
