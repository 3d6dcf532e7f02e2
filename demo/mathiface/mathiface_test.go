package mathiface_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/ulib-broker/demo/mathiface"
	"github.com/calvinalkan/ulib-broker/pkg/ipc"
)

func newTable(t *testing.T) *ipc.Table {
	t.Helper()

	table, err := ipc.New(ipc.DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, table.Init())
	t.Cleanup(func() { _ = table.Deinit() })

	return table
}

func Test_Producer_Consumer_Sum_And_Subtract(t *testing.T) {
	t.Parallel()

	table := newTable(t)

	prod := mathiface.NewProducer(table)
	require.NoError(t, prod.Start())
	t.Cleanup(func() { _ = prod.Stop(0) })

	consumer, err := mathiface.Connect(table)
	require.NoError(t, err)
	t.Cleanup(func() { _ = consumer.Close() })

	sum, err := consumer.Sum(3, 4)
	require.NoError(t, err)
	require.Equal(t, int64(7), sum)

	diff, err := consumer.Subtract(10, 4)
	require.NoError(t, err)
	require.Equal(t, int64(6), diff)
}

func Test_Connect_Fails_Before_Publish(t *testing.T) {
	t.Parallel()

	table := newTable(t)

	_, err := mathiface.Connect(table)
	require.Error(t, err)
}
