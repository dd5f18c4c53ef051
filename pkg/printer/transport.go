package printer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// State is the link state of a Transport
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Defaults applied by NewTransport when an option is left zero
const (
	DefaultChunkSize      = 20
	DefaultConnectTimeout = 10 * time.Second
	DefaultWriteTimeout   = 5 * time.Second
	DefaultDeviceName     = "Thermal Printer"
)

// Options tune a Transport
type Options struct {
	ChunkSize      int
	ConnectTimeout time.Duration
	WriteTimeout   time.Duration
	Logger         *zap.Logger
}

// Transport owns the single printer link. A new Connect replaces the previous
// link and cancels any connect still in flight.
type Transport struct {
	central Central
	opts    Options
	log     *zap.Logger

	mu            sync.Mutex
	state         State
	peripheral    Peripheral
	channel       Characteristic
	cancelConnect context.CancelFunc
	generation    uint64

	// printMu keeps whole payloads from interleaving on the wire
	printMu sync.Mutex
}

// NewTransport creates a transport over central. A nil central yields a
// transport that reports itself unsupported.
func NewTransport(central Central, opts Options) *Transport {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = DefaultConnectTimeout
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = DefaultWriteTimeout
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Transport{central: central, opts: opts, log: log}
}

// IsSupported reports whether the host exposes a discovery capability at all
func (t *Transport) IsSupported(ctx context.Context) (supported bool) {
	if t.central == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			t.log.Warn("printer availability check panicked", zap.Any("panic", r))
			supported = false
		}
	}()
	return t.central.Available(ctx)
}

// Connect discovers a printer, binds its first writable characteristic and
// returns the device name.
func (t *Transport) Connect(ctx context.Context) (string, error) {
	if !t.IsSupported(ctx) {
		return "", ErrUnsupported
	}

	ctx, cancel := context.WithTimeout(ctx, t.opts.ConnectTimeout)
	defer cancel()

	t.mu.Lock()
	if t.cancelConnect != nil {
		t.cancelConnect()
	}
	t.generation++
	gen := t.generation
	t.cancelConnect = cancel
	previous := t.peripheral
	t.peripheral, t.channel = nil, nil
	t.state = StateConnecting
	t.mu.Unlock()

	if previous != nil {
		if err := previous.Disconnect(); err != nil {
			t.log.Debug("dropping previous printer link", zap.Error(err))
		}
	}

	p, ch, err := t.discover(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()

	if gen != t.generation {
		// a later Connect or Disconnect took over this attempt
		if p != nil {
			_ = p.Disconnect()
		}
		return "", ErrCancelled
	}
	t.cancelConnect = nil

	if err != nil {
		t.state = StateDisconnected
		if p != nil {
			_ = p.Disconnect()
		}
		err = classify(ctx, err)
		t.log.Warn("printer connect failed", zap.Error(err))
		return "", err
	}

	t.peripheral, t.channel = p, ch
	t.state = StateConnected
	name := deviceName(p)
	t.log.Info("printer linked", zap.String("device", name), zap.String("channel", ch.UUID()))
	return name, nil
}

func (t *Transport) discover(ctx context.Context) (Peripheral, Characteristic, error) {
	p, err := t.central.RequestDevice(ctx, DiscoveryRequest{
		AcceptAll:        true,
		OptionalServices: KnownServiceUUIDs,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := p.Connect(ctx); err != nil {
		return p, nil, err
	}

	services, err := p.Services(ctx)
	if err != nil {
		return p, nil, err
	}
	for _, svc := range services {
		chars, err := svc.Characteristics(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return p, nil, ctx.Err()
			}
			t.log.Debug("skipping unreadable service", zap.String("service", svc.UUID()), zap.Error(err))
			continue
		}
		for _, c := range chars {
			if c.Properties().Writable() {
				return p, c, nil
			}
		}
	}
	return p, nil, ErrNoWritableChannel
}

// Print writes data to the bound channel in order, one chunk at a time,
// waiting for each write before sending the next.
func (t *Transport) Print(ctx context.Context, data []byte) error {
	t.printMu.Lock()
	defer t.printMu.Unlock()

	t.mu.Lock()
	p, ch := t.peripheral, t.channel
	t.mu.Unlock()

	if ch == nil || p == nil || !p.Connected() {
		t.dropLink(p)
		return ErrNotConnected
	}

	chunks := Chunk(data, t.opts.ChunkSize)
	for i, chunk := range chunks {
		wctx, cancel := context.WithTimeout(ctx, t.opts.WriteTimeout)
		err := ch.WriteValue(wctx, chunk)
		timedOut := errors.Is(wctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded)
		cancel()

		if err == nil {
			continue
		}
		switch {
		case ctx.Err() != nil && errors.Is(ctx.Err(), context.Canceled):
			return fmt.Errorf("printer: print aborted at chunk %d: %w", i, ctx.Err())
		case timedOut:
			return fmt.Errorf("%w: chunk %d of %d", ErrTimeout, i+1, len(chunks))
		case !p.Connected():
			t.dropLink(p)
			return fmt.Errorf("%w: link lost at chunk %d: %v", ErrNotConnected, i+1, err)
		default:
			return fmt.Errorf("printer: print failed at chunk %d: %w", i+1, err)
		}
	}

	t.log.Debug("printed payload", zap.Int("bytes", len(data)), zap.Int("chunks", len(chunks)))
	return nil
}

// Disconnect drops the link and cancels any connect in flight
func (t *Transport) Disconnect() error {
	t.mu.Lock()
	if t.cancelConnect != nil {
		t.cancelConnect()
		t.cancelConnect = nil
	}
	t.generation++
	p := t.peripheral
	t.peripheral, t.channel = nil, nil
	t.state = StateDisconnected
	t.mu.Unlock()

	if p == nil {
		return nil
	}
	return p.Disconnect()
}

// IsConnected reports whether a channel is bound and the link is still up
func (t *Transport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == StateConnected && t.channel != nil && t.peripheral != nil && t.peripheral.Connected()
}

// DeviceName returns the bound device name or "None"
func (t *Transport) DeviceName() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.peripheral == nil {
		return "None"
	}
	return deviceName(t.peripheral)
}

// State returns the current link state
func (t *Transport) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == StateConnected && (t.peripheral == nil || !t.peripheral.Connected()) {
		return StateDisconnected
	}
	return t.state
}

func (t *Transport) dropLink(p Peripheral) {
	if p == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.peripheral == p {
		t.peripheral, t.channel = nil, nil
		t.state = StateDisconnected
	}
}

// Chunk splits data into consecutive pieces of at most size bytes.
// The pieces alias data.
func Chunk(data []byte, size int) [][]byte {
	if size <= 0 {
		size = DefaultChunkSize
	}
	chunks := make([][]byte, 0, (len(data)+size-1)/size)
	for start := 0; start < len(data); start += size {
		end := start + size
		if end > len(data) {
			end = len(data)
		}
		chunks = append(chunks, data[start:end])
	}
	return chunks
}

func classify(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, ErrUnsupported), errors.Is(err, ErrCancelled),
		errors.Is(err, ErrPermissionDenied), errors.Is(err, ErrNoWritableChannel),
		errors.Is(err, ErrTimeout):
		return err
	case errors.Is(ctx.Err(), context.DeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: printer discovery did not finish", ErrTimeout)
	case errors.Is(err, context.Canceled):
		return ErrCancelled
	default:
		return fmt.Errorf("printer: connect failed: %w", err)
	}
}

func deviceName(p Peripheral) string {
	if name := p.Name(); name != "" {
		return name
	}
	return DefaultDeviceName
}
