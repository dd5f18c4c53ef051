package printer

import "context"

// KnownServiceUUIDs are the service identifiers advertised by common thermal
// printers. Discovery asks for them explicitly and also accepts any device.
var KnownServiceUUIDs = []string{
	"000018f0-0000-1000-8000-00805f9b34fb",
	"0000ffe0-0000-1000-8000-00805f9b34fb",
	"e7e11101-4966-4a54-8e88-548178849a9c",
	"0000af06-0000-1000-8000-00805f9b34fb",
}

// Properties are the capabilities a characteristic advertises
type Properties struct {
	Write                bool
	WriteWithoutResponse bool
}

// Writable reports whether either write mode is offered
func (p Properties) Writable() bool {
	return p.Write || p.WriteWithoutResponse
}

// Characteristic is a single channel on a peripheral service.
// WriteValue returns once the write has been acknowledged.
type Characteristic interface {
	UUID() string
	Properties() Properties
	WriteValue(ctx context.Context, data []byte) error
}

// Service groups characteristics on a peripheral
type Service interface {
	UUID() string
	Characteristics(ctx context.Context) ([]Characteristic, error)
}

// Peripheral is a discovered printer. Connected must not perform I/O.
type Peripheral interface {
	Name() string
	Connect(ctx context.Context) error
	Connected() bool
	Services(ctx context.Context) ([]Service, error)
	Disconnect() error
}

// DiscoveryRequest scopes a device scan
type DiscoveryRequest struct {
	AcceptAll        bool
	OptionalServices []string
}

// Central is the host's discovery capability. RequestDevice should return
// ErrCancelled when the user aborts the scan and ErrPermissionDenied when the
// host blocks access.
type Central interface {
	Available(ctx context.Context) bool
	RequestDevice(ctx context.Context, req DiscoveryRequest) (Peripheral, error)
}
