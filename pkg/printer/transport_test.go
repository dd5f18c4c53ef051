package printer

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChar struct {
	uuid  string
	props Properties

	mu     sync.Mutex
	writes [][]byte
	block  bool
	failAt int
}

func (c *fakeChar) UUID() string           { return c.uuid }
func (c *fakeChar) Properties() Properties { return c.props }

func (c *fakeChar) WriteValue(ctx context.Context, data []byte) error {
	if c.block {
		<-ctx.Done()
		return ctx.Err()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failAt > 0 && len(c.writes)+1 == c.failAt {
		return errors.New("gatt write failed")
	}
	c.writes = append(c.writes, append([]byte(nil), data...))
	return nil
}

type fakeService struct {
	uuid  string
	chars []Characteristic
	err   error
}

func (s *fakeService) UUID() string { return s.uuid }
func (s *fakeService) Characteristics(ctx context.Context) ([]Characteristic, error) {
	return s.chars, s.err
}

type fakePeripheral struct {
	name      string
	services  []Service
	connected bool
	hang      bool
	mu        sync.Mutex
}

func (p *fakePeripheral) Name() string { return p.name }
func (p *fakePeripheral) Connect(ctx context.Context) error {
	if p.hang {
		<-ctx.Done()
		return ctx.Err()
	}
	p.mu.Lock()
	p.connected = true
	p.mu.Unlock()
	return nil
}
func (p *fakePeripheral) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}
func (p *fakePeripheral) Services(ctx context.Context) ([]Service, error) { return p.services, nil }
func (p *fakePeripheral) Disconnect() error {
	p.mu.Lock()
	p.connected = false
	p.mu.Unlock()
	return nil
}

type fakeCentral struct {
	available bool
	devices   []*fakePeripheral
	err       error
	calls     int
	mu        sync.Mutex
}

func (c *fakeCentral) Available(ctx context.Context) bool { return c.available }
func (c *fakeCentral) RequestDevice(ctx context.Context, req DiscoveryRequest) (Peripheral, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	d := c.devices[c.calls%len(c.devices)]
	c.calls++
	return d, nil
}

func (c *fakeCentral) requests() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func writablePrinter(name string) (*fakePeripheral, *fakeChar) {
	ch := &fakeChar{uuid: "ffe1", props: Properties{WriteWithoutResponse: true}}
	readOnly := &fakeChar{uuid: "ffe2", props: Properties{}}
	return &fakePeripheral{
		name: name,
		services: []Service{
			&fakeService{uuid: "broken", err: errors.New("not permitted")},
			&fakeService{uuid: "ffe0", chars: []Characteristic{readOnly, ch}},
		},
	}, ch
}

func TestChunkSizes(t *testing.T) {
	payload := bytes.Repeat([]byte{0xAB}, 45)
	chunks := Chunk(payload, 20)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 20)
	assert.Len(t, chunks[2], 5)
	assert.Empty(t, Chunk(nil, 20))
	assert.Len(t, Chunk(bytes.Repeat([]byte{1}, 40), 20), 2)
}

func TestPrintWithoutLinkFailsNotConnected(t *testing.T) {
	tr := NewTransport(&fakeCentral{available: true}, Options{})
	for _, n := range []int{0, 1, 20, 500} {
		err := tr.Print(context.Background(), make([]byte, n))
		assert.ErrorIs(t, err, ErrNotConnected)
	}
}

func TestConnectBindsWritableChannelAndPrintsInOrder(t *testing.T) {
	dev, ch := writablePrinter("PT-210")
	tr := NewTransport(&fakeCentral{available: true, devices: []*fakePeripheral{dev}}, Options{})

	name, err := tr.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "PT-210", name)
	assert.True(t, tr.IsConnected())
	assert.Equal(t, StateConnected, tr.State())
	assert.Equal(t, "PT-210", tr.DeviceName())

	payload := make([]byte, 101)
	for i := range payload {
		payload[i] = byte(i)
	}
	require.NoError(t, tr.Print(context.Background(), payload))

	require.Len(t, ch.writes, 6)
	for _, w := range ch.writes {
		assert.LessOrEqual(t, len(w), 20)
	}
	assert.Equal(t, payload, bytes.Join(ch.writes, nil))
}

func TestConnectUnsupported(t *testing.T) {
	_, err := NewTransport(nil, Options{}).Connect(context.Background())
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = NewTransport(&fakeCentral{available: false}, Options{}).Connect(context.Background())
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestConnectCancelledByUser(t *testing.T) {
	tr := NewTransport(&fakeCentral{available: true, err: ErrCancelled}, Options{})
	_, err := tr.Connect(context.Background())
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, StateDisconnected, tr.State())
}

func TestConnectNoWritableChannel(t *testing.T) {
	dev := &fakePeripheral{name: "Scale", services: []Service{
		&fakeService{uuid: "180f", chars: []Characteristic{&fakeChar{uuid: "2a19"}}},
	}}
	tr := NewTransport(&fakeCentral{available: true, devices: []*fakePeripheral{dev}}, Options{})
	_, err := tr.Connect(context.Background())
	assert.ErrorIs(t, err, ErrNoWritableChannel)
	assert.False(t, tr.IsConnected())
	assert.False(t, dev.Connected())
}

func TestConnectTimeout(t *testing.T) {
	dev := &fakePeripheral{name: "Slow", hang: true}
	tr := NewTransport(&fakeCentral{available: true, devices: []*fakePeripheral{dev}}, Options{ConnectTimeout: 20 * time.Millisecond})
	_, err := tr.Connect(context.Background())
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestSecondConnectCancelsFirst(t *testing.T) {
	slow := &fakePeripheral{name: "Slow", hang: true}
	fast, _ := writablePrinter("Fast")
	central := &fakeCentral{available: true, devices: []*fakePeripheral{slow, fast}}
	tr := NewTransport(central, Options{ConnectTimeout: 5 * time.Second})

	firstErr := make(chan error, 1)
	go func() {
		_, err := tr.Connect(context.Background())
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return central.requests() == 1 }, time.Second, time.Millisecond)

	name, err := tr.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Fast", name)

	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, ErrCancelled)
	case <-time.After(time.Second):
		t.Fatal("first connect was not cancelled")
	}
	assert.True(t, tr.IsConnected())
	assert.Equal(t, "Fast", tr.DeviceName())
}

func TestPrintChunkTimeout(t *testing.T) {
	dev, ch := writablePrinter("PT")
	ch.block = true
	tr := NewTransport(&fakeCentral{available: true, devices: []*fakePeripheral{dev}}, Options{WriteTimeout: 10 * time.Millisecond})
	_, err := tr.Connect(context.Background())
	require.NoError(t, err)

	err = tr.Print(context.Background(), []byte("hello"))
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestPrintAfterLinkLoss(t *testing.T) {
	dev, ch := writablePrinter("PT")
	tr := NewTransport(&fakeCentral{available: true, devices: []*fakePeripheral{dev}}, Options{})
	_, err := tr.Connect(context.Background())
	require.NoError(t, err)

	_ = dev.Disconnect()
	assert.False(t, tr.IsConnected())

	err = tr.Print(context.Background(), []byte("hello"))
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.Empty(t, ch.writes)
	assert.Equal(t, "None", tr.DeviceName())
}

func TestPrintStopsAtFailedChunk(t *testing.T) {
	dev, ch := writablePrinter("PT")
	ch.failAt = 2
	tr := NewTransport(&fakeCentral{available: true, devices: []*fakePeripheral{dev}}, Options{})
	_, err := tr.Connect(context.Background())
	require.NoError(t, err)

	err = tr.Print(context.Background(), make([]byte, 60))
	require.Error(t, err)
	assert.Len(t, ch.writes, 1)
}

func TestDisconnect(t *testing.T) {
	dev, _ := writablePrinter("PT")
	tr := NewTransport(&fakeCentral{available: true, devices: []*fakePeripheral{dev}}, Options{})
	_, err := tr.Connect(context.Background())
	require.NoError(t, err)

	require.NoError(t, tr.Disconnect())
	assert.False(t, tr.IsConnected())
	assert.False(t, dev.Connected())
	assert.Equal(t, "None", tr.DeviceName())
}
