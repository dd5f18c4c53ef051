package printer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"
)

// rawPortService is the pseudo service exposed by raw TCP printers
const rawPortService = "raw-9100"

// SocketCentral reaches a network printer on its raw port (e.g. 192.168.1.100:9100).
// Discovery always yields the configured printer.
type SocketCentral struct {
	Address string
	Name    string
}

// NewSocketCentral creates a central for a TCP printer.
// Address should include port, e.g. "192.168.1.100:9100".
func NewSocketCentral(address, name string) *SocketCentral {
	return &SocketCentral{Address: address, Name: name}
}

func (c *SocketCentral) Available(ctx context.Context) bool {
	return c.Address != ""
}

func (c *SocketCentral) RequestDevice(ctx context.Context, req DiscoveryRequest) (Peripheral, error) {
	if c.Address == "" {
		return nil, ErrUnsupported
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &socketPeripheral{address: c.Address, name: c.Name}, nil
}

type socketPeripheral struct {
	address string
	name    string

	mu   sync.Mutex
	conn net.Conn
}

func (p *socketPeripheral) Name() string { return p.name }

func (p *socketPeripheral) Connect(ctx context.Context) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", p.address)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", p.address, err)
	}
	p.mu.Lock()
	p.conn = conn
	p.mu.Unlock()
	return nil
}

func (p *socketPeripheral) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn != nil
}

func (p *socketPeripheral) Services(ctx context.Context) ([]Service, error) {
	if !p.Connected() {
		return nil, ErrNotConnected
	}
	return []Service{&socketService{peripheral: p}}, nil
}

func (p *socketPeripheral) Disconnect() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn = nil
	return err
}

func (p *socketPeripheral) write(ctx context.Context, data []byte) error {
	p.mu.Lock()
	conn := p.conn
	p.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Time{}
	}
	_ = conn.SetWriteDeadline(deadline)

	if _, err := conn.Write(data); err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return fmt.Errorf("write to %s: %w", p.address, context.DeadlineExceeded)
		}
		// a failed stream write leaves the printer in an unknown state
		_ = p.Disconnect()
		return fmt.Errorf("failed to write to %s: %w", p.address, err)
	}
	return nil
}

type socketService struct {
	peripheral *socketPeripheral
}

func (s *socketService) UUID() string { return rawPortService }

func (s *socketService) Characteristics(ctx context.Context) ([]Characteristic, error) {
	return []Characteristic{&streamCharacteristic{uuid: rawPortService + "/stream", write: s.peripheral.write}}, nil
}

// streamCharacteristic adapts a byte stream to the Characteristic contract
type streamCharacteristic struct {
	uuid  string
	write func(ctx context.Context, data []byte) error
}

func (c *streamCharacteristic) UUID() string { return c.uuid }

func (c *streamCharacteristic) Properties() Properties {
	return Properties{Write: true}
}

func (c *streamCharacteristic) WriteValue(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.write(ctx, data)
}
