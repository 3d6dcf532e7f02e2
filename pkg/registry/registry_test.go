package registry_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/ulib-broker/internal/errs"
	"github.com/calvinalkan/ulib-broker/pkg/registry"
	"github.com/calvinalkan/ulib-broker/pkg/registry/flashsim"
)

const testDirCount = 8

func newTestRegistry(t *testing.T, dev registry.Device, dataSize uint64) *registry.Registry {
	t.Helper()

	r := registry.New()

	err := r.Init(registry.ControlBlock{
		Device:          dev,
		DirectoryOffset: 0,
		DirectoryCount:  testDirCount,
		DataOffset:      testDirCount * 48,
		DataSize:        dataSize,
	})
	require.NoError(t, err)

	t.Cleanup(func() { _ = r.Deinit() })

	return r
}

func newTestDevice(dataSize uint64) *flashsim.Device {
	return flashsim.New(testDirCount*48+dataSize, flashsim.DefaultPageSize)
}

func Test_Add_Then_TryGetValue(t *testing.T) {
	t.Parallel()

	dev := newTestDevice(4096)
	r := newTestRegistry(t, dev, 4096)

	require.NoError(t, r.Add([]byte("wifi_ssid"), []byte("my-network")))

	got, err := r.TryGetValue([]byte("wifi_ssid"))
	require.NoError(t, err)
	require.Equal(t, "my-network", string(got))
}

func Test_Add_Rejects_Duplicate_Live_Key(t *testing.T) {
	t.Parallel()

	dev := newTestDevice(4096)
	r := newTestRegistry(t, dev, 4096)

	require.NoError(t, r.Add([]byte("k"), []byte("v1")))

	err := r.Add([]byte("k"), []byte("v2"))
	require.ErrorIs(t, err, errs.ErrElementDuplicate)
}

func Test_Add_Rejects_Empty_Key_Or_Value(t *testing.T) {
	t.Parallel()

	dev := newTestDevice(4096)
	r := newTestRegistry(t, dev, 4096)

	require.ErrorIs(t, r.Add(nil, []byte("v")), errs.ErrArg)
	require.ErrorIs(t, r.Add([]byte("k"), nil), errs.ErrArg)
}

func Test_Add_Fails_When_Directory_Full(t *testing.T) {
	t.Parallel()

	dev := newTestDevice(4096)
	r := newTestRegistry(t, dev, 4096)

	for i := 0; i < testDirCount; i++ {
		require.NoError(t, r.Add([]byte{byte('a' + i)}, []byte("v")))
	}

	err := r.Add([]byte("overflow"), []byte("v"))
	require.ErrorIs(t, err, errs.ErrNotEnoughSpace)
}

func Test_Add_Fails_When_Data_Region_Full(t *testing.T) {
	t.Parallel()

	dev := newTestDevice(16)
	r := newTestRegistry(t, dev, 16)

	err := r.Add([]byte("a-long-key"), []byte("a-long-value-too"))
	require.ErrorIs(t, err, errs.ErrOutOfMemory)
}

func Test_Delete_Tombstones_Live_Entry(t *testing.T) {
	t.Parallel()

	dev := newTestDevice(4096)
	r := newTestRegistry(t, dev, 4096)

	require.NoError(t, r.Add([]byte("k"), []byte("v")))
	require.NoError(t, r.Delete([]byte("k")))

	_, err := r.TryGetValue([]byte("k"))
	require.ErrorIs(t, err, errs.ErrItemNotFound)
}

func Test_Delete_Allows_Readding_Same_Key(t *testing.T) {
	t.Parallel()

	dev := newTestDevice(4096)
	r := newTestRegistry(t, dev, 4096)

	require.NoError(t, r.Add([]byte("k"), []byte("v1")))
	require.NoError(t, r.Delete([]byte("k")))
	require.NoError(t, r.Add([]byte("k"), []byte("v2")))

	got, err := r.TryGetValue([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, "v2", string(got))
}

func Test_Delete_Unknown_Key_Fails(t *testing.T) {
	t.Parallel()

	dev := newTestDevice(4096)
	r := newTestRegistry(t, dev, 4096)

	require.ErrorIs(t, r.Delete([]byte("missing")), errs.ErrItemNotFound)
}

func Test_CleanAll_Erases_Both_Regions(t *testing.T) {
	t.Parallel()

	dev := newTestDevice(4096)
	r := newTestRegistry(t, dev, 4096)

	require.NoError(t, r.Add([]byte("k"), []byte("v")))
	require.NoError(t, r.CleanAll())

	_, err := r.TryGetValue([]byte("k"))
	require.ErrorIs(t, err, errs.ErrItemNotFound)

	info, err := r.GetInfo()
	require.NoError(t, err)
	require.Equal(t, 0, info.InUseNodes)
	require.Equal(t, uint64(0), info.InUseDataBytes)
}

func Test_GetInfo_Reports_Usage(t *testing.T) {
	t.Parallel()

	dev := newTestDevice(4096)
	r := newTestRegistry(t, dev, 4096)

	require.NoError(t, r.Add([]byte("k1"), []byte("v1")))
	require.NoError(t, r.Add([]byte("k2"), []byte("v2")))
	require.NoError(t, r.Delete([]byte("k1")))

	info, err := r.GetInfo()
	require.NoError(t, err)
	require.Equal(t, testDirCount, info.TotalNodes)
	require.Equal(t, 1, info.InUseNodes)
	require.Equal(t, testDirCount-2, info.FreeNodes)
	require.Positive(t, info.InUseDataBytes)
}

// Test_Registry_Survives_Simulated_Reboot covers spec scenario S5: a
// Registry re-initialized against the same flash image after a simulated
// power cycle must recover both its directory contents and its data
// region's free-space bookkeeping without any in-memory state carried
// over.
func Test_Registry_Survives_Simulated_Reboot(t *testing.T) {
	t.Parallel()

	dev := newTestDevice(4096)

	r1 := registry.New()
	cb := registry.ControlBlock{
		Device:          dev,
		DirectoryOffset: 0,
		DirectoryCount:  testDirCount,
		DataOffset:      testDirCount * 48,
		DataSize:        4096,
	}

	require.NoError(t, r1.Init(cb))
	require.NoError(t, r1.Add([]byte("persisted"), []byte("value")))
	require.NoError(t, r1.Deinit())

	// Simulate reboot: a fresh Registry re-initialized over the same
	// backing Device, with no shared in-memory state with r1.
	r2 := registry.New()
	require.NoError(t, r2.Init(cb))

	t.Cleanup(func() { _ = r2.Deinit() })

	got, err := r2.TryGetValue([]byte("persisted"))
	require.NoError(t, err)
	require.Equal(t, "value", string(got))

	require.NoError(t, r2.Add([]byte("after-reboot"), []byte("v2")))

	got2, err := r2.TryGetValue([]byte("after-reboot"))
	require.NoError(t, err)
	require.Equal(t, "v2", string(got2))
}
