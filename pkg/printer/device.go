package printer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
)

// DeviceCentral writes to a printer exposed as a device file, such as a bound
// Bluetooth serial port (/dev/rfcomm0) or a USB line printer (/dev/usb/lp0).
type DeviceCentral struct {
	Path string
	Name string
}

// NewDeviceCentral creates a central for a device file printer
func NewDeviceCentral(path, name string) *DeviceCentral {
	return &DeviceCentral{Path: path, Name: name}
}

// Available reports whether the device node exists
func (c *DeviceCentral) Available(ctx context.Context) bool {
	if c.Path == "" {
		return false
	}
	_, err := os.Stat(c.Path)
	return err == nil || os.IsPermission(err)
}

func (c *DeviceCentral) RequestDevice(ctx context.Context, req DiscoveryRequest) (Peripheral, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(c.Path); err != nil {
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, c.Path)
		}
		// the node vanished after Available; that is a lost link, not a user abort
		return nil, fmt.Errorf("%w: %s: %w", ErrUnsupported, c.Path, err)
	}
	return &devicePeripheral{path: c.Path, name: c.Name}, nil
}

type devicePeripheral struct {
	path string
	name string

	mu   sync.Mutex
	file *os.File
}

func (p *devicePeripheral) Name() string { return p.name }

func (p *devicePeripheral) Connect(ctx context.Context) error {
	f, err := os.OpenFile(p.path, os.O_WRONLY, 0)
	if err != nil {
		if os.IsPermission(err) {
			return fmt.Errorf("%w: %s", ErrPermissionDenied, p.path)
		}
		return fmt.Errorf("failed to open device %s: %w", p.path, err)
	}
	p.mu.Lock()
	p.file = f
	p.mu.Unlock()
	return nil
}

func (p *devicePeripheral) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.file != nil
}

func (p *devicePeripheral) Services(ctx context.Context) ([]Service, error) {
	if !p.Connected() {
		return nil, ErrNotConnected
	}
	return []Service{&deviceService{peripheral: p}}, nil
}

func (p *devicePeripheral) Disconnect() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.file == nil {
		return nil
	}
	err := p.file.Close()
	p.file = nil
	return err
}

func (p *devicePeripheral) write(ctx context.Context, data []byte) error {
	p.mu.Lock()
	f := p.file
	p.mu.Unlock()
	if f == nil {
		return ErrNotConnected
	}

	// deadlines only apply to pollable devices; others block until written
	if deadline, ok := ctx.Deadline(); ok {
		_ = f.SetWriteDeadline(deadline)
	}
	if _, err := f.Write(data); err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return fmt.Errorf("write to %s: %w", p.path, context.DeadlineExceeded)
		}
		_ = p.Disconnect()
		return fmt.Errorf("failed to write to device %s: %w", p.path, err)
	}
	return nil
}

type deviceService struct {
	peripheral *devicePeripheral
}

func (s *deviceService) UUID() string { return "device-file" }

func (s *deviceService) Characteristics(ctx context.Context) ([]Characteristic, error) {
	return []Characteristic{&streamCharacteristic{uuid: "device-file/stream", write: s.peripheral.write}}, nil
}

// NewCentralFromConfig creates the central for a printer type.
//
//	printerType: "socket", "device", or "none"
//	devicePath: device file for serial/USB printers (e.g. "/dev/rfcomm0")
//	address: TCP address for network printers (e.g. "192.168.1.100:9100")
//
// "none" returns a nil central, which makes the transport report itself unsupported.
func NewCentralFromConfig(printerType, devicePath, address, name string) (Central, error) {
	switch printerType {
	case "device", "usb":
		if devicePath == "" {
			return nil, fmt.Errorf("printer: device path is required for device printer type")
		}
		return NewDeviceCentral(devicePath, name), nil
	case "socket", "network":
		if address == "" {
			return nil, fmt.Errorf("printer: address is required for socket printer type")
		}
		return NewSocketCentral(address, name), nil
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("printer: unknown printer type %q (use socket, device, or none)", printerType)
	}
}
