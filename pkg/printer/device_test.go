package printer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceCentralPrintsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lp0")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	tr := NewTransport(NewDeviceCentral(path, "USB Printer"), Options{})
	name, err := tr.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "USB Printer", name)

	require.NoError(t, tr.Print(context.Background(), []byte("hello\n")))
	require.NoError(t, tr.Disconnect())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(got))
}

func TestDeviceVanishedIsNotACancelledScan(t *testing.T) {
	central := NewDeviceCentral(filepath.Join(t.TempDir(), "rfcomm0"), "BT Printer")

	_, err := central.RequestDevice(context.Background(), DiscoveryRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.NotErrorIs(t, err, ErrCancelled)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
