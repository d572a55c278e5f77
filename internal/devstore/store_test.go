package devstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"github.com/sgbasaraner/libyee/internal/device"
)

func announcement(id, address string) string {
	return "HTTP/1.1 200 OK\r\n" +
		"Location: yeelight://" + address + "\r\n" +
		"id: " + id + "\r\n" +
		"model: color\r\n" +
		"fw_ver: 18\r\n" +
		"support: get_prop set_power toggle set_rgb\r\n" +
		"power: off\r\n" +
		"bright: 40\r\n" +
		"color_mode: 1\r\n" +
		"ct: 4000\r\n" +
		"rgb: 65280\r\n" +
		"hue: 100\r\n" +
		"sat: 35\r\n" +
		"name: desk\r\n"
}

func parsed(t *testing.T, id, address string) *device.Descriptor {
	t.Helper()

	d, ok := device.ParseAnnouncement([]byte(announcement(id, address)))
	require.True(t, ok)
	return d
}

func openStore(t *testing.T) (*Store, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "devices.db")
	store, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func TestStore_PutGet(t *testing.T) {
	store, _ := openStore(t)

	d := parsed(t, "0x01", "192.168.1.239:55443")
	d.DiscoveredAt = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Put(d))

	got, err := store.Get("0x01")
	require.NoError(t, err)
	require.Equal(t, "0x01", got.ID)
	require.Equal(t, "192.168.1.239:55443", got.Address)
	require.Equal(t, device.RGBMode{Color: device.RGB{G: 255}}, got.ColorMode)
	require.Equal(t, uint8(40), got.Brightness)
	require.Equal(t, d.Support, got.Support)
	require.True(t, d.DiscoveredAt.Equal(got.DiscoveredAt), "got %v", got.DiscoveredAt)
}

func TestStore_PutReplaces(t *testing.T) {
	store, _ := openStore(t)

	require.NoError(t, store.Put(parsed(t, "0x01", "10.0.0.1:55443")))
	require.NoError(t, store.Put(parsed(t, "0x01", "10.0.0.2:55443")))

	got, err := store.Get("0x01")
	require.NoError(t, err)
	require.Equal(t, "10.0.0.2:55443", got.Address)
}

func TestStore_GetMissing(t *testing.T) {
	store, _ := openStore(t)

	_, err := store.Get("0x404")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStore_PutWithoutHeaders(t *testing.T) {
	store, _ := openStore(t)

	err := store.Put(&device.Descriptor{ID: "0x01", Address: "10.0.0.1:55443"})
	require.Error(t, err)
}

func TestStore_ListSortedAndSkipsCorrupt(t *testing.T) {
	store, _ := openStore(t)

	require.NoError(t, store.Put(parsed(t, "0x03", "10.0.0.3:55443")))
	require.NoError(t, store.Put(parsed(t, "0x01", "10.0.0.1:55443")))

	err := store.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put([]byte("0x02"), []byte("headers: {id: 0x02}"))
	})
	require.NoError(t, err)

	devices, err := store.List()
	require.NoError(t, err)
	require.Len(t, devices, 2)
	require.Equal(t, "0x01", devices[0].ID)
	require.Equal(t, "0x03", devices[1].ID)
}

func TestStore_Remove(t *testing.T) {
	store, _ := openStore(t)

	require.NoError(t, store.Put(parsed(t, "0x01", "10.0.0.1:55443")))
	require.NoError(t, store.Remove("0x01"))
	require.NoError(t, store.Remove("0x01"))

	_, err := store.Get("0x01")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStore_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devices.db")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Put(parsed(t, "0x01", "10.0.0.1:55443")))
	require.NoError(t, store.Close())

	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()

	got, err := store.Get("0x01")
	require.NoError(t, err)
	require.Equal(t, "desk", got.Name)
}
