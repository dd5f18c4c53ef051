package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/sangkips/salespos-api/pkg/printer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	mu        sync.Mutex
	connected bool
	printErr  error
	printed   [][]byte
}

func (f *fakeTransport) IsSupported(ctx context.Context) bool { return true }
func (f *fakeTransport) DeviceName() string                   { return "Fake Printer" }

func (f *fakeTransport) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeTransport) State() printer.State {
	if f.IsConnected() {
		return printer.StateConnected
	}
	return printer.StateDisconnected
}

func (f *fakeTransport) Connect(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = true
	return "Fake Printer", nil
}

func (f *fakeTransport) Disconnect() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = false
	return nil
}

func (f *fakeTransport) Print(ctx context.Context, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.connected {
		return printer.ErrNotConnected
	}
	if f.printErr != nil {
		return f.printErr
	}
	f.printed = append(f.printed, append([]byte(nil), data...))
	return nil
}

func newPrinterEnv(t *testing.T, bridge bool) (*PrinterService, *fakeTransport, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	transport := &fakeTransport{}
	enc := NewReceiptEncoder(ReceiptOptions{})
	return NewPrinterService(transport, enc, env.ledger, "socket", bridge, nil), transport, env
}

func strategies(out *PrintOutcome) []string {
	names := make([]string, 0, len(out.Attempts))
	for _, a := range out.Attempts {
		names = append(names, a.Strategy)
	}
	return names
}

func TestDispatchPrefersConnectedTransport(t *testing.T) {
	svc, transport, _ := newPrinterEnv(t, true)
	_, err := svc.Connect(context.Background())
	require.NoError(t, err)

	out := svc.TestPrint(context.Background(), false)
	assert.Equal(t, StrategyTransport, out.DeliveredBy)
	assert.Equal(t, []string{StrategyTransport}, strategies(out))
	require.Len(t, transport.printed, 1)
	assert.Contains(t, string(transport.printed[0]), "PRINTER TEST")
}

func TestDispatchFallsBackToBridgeThenDocument(t *testing.T) {
	svc, _, _ := newPrinterEnv(t, true)

	out := svc.TestPrint(context.Background(), false)
	assert.Equal(t, StrategyBridge, out.DeliveredBy)
	assert.True(t, out.Attempts[0].Skipped)
	assert.True(t, strings.HasPrefix(out.BridgeURL, BridgeScheme))

	out = svc.TestPrint(context.Background(), true)
	assert.Equal(t, StrategyDocument, out.DeliveredBy)
	assert.Equal(t, []string{StrategyTransport, StrategyBridge, StrategyDocument}, strategies(out))
	assert.Contains(t, out.Document, "Printer is working")
}

func TestDispatchRecordsTransportFailure(t *testing.T) {
	svc, transport, _ := newPrinterEnv(t, false)
	_, err := svc.Connect(context.Background())
	require.NoError(t, err)
	transport.printErr = errors.New("link lost")

	out := svc.TestPrint(context.Background(), false)
	assert.Equal(t, StrategyDocument, out.DeliveredBy)
	require.Len(t, out.Attempts, 3)
	assert.False(t, out.Attempts[0].OK)
	assert.False(t, out.Attempts[0].Skipped)
	assert.Equal(t, "link lost", out.Attempts[0].Error)
	assert.True(t, out.Attempts[1].Skipped)
}

func TestPrintTransactionUnknownID(t *testing.T) {
	svc, _, _ := newPrinterEnv(t, true)
	_, err := svc.PrintTransaction(context.Background(), "missing", false)
	assert.Error(t, err)
}

func TestPrinterStatus(t *testing.T) {
	svc, _, _ := newPrinterEnv(t, true)
	status := svc.GetStatus(context.Background())
	assert.False(t, status.Connected)
	assert.Equal(t, "disconnected", status.State)
	assert.Equal(t, "socket", status.Type)

	status, err := svc.Connect(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Connected)

	status, err = svc.Disconnect(context.Background())
	require.NoError(t, err)
	assert.False(t, status.Connected)
}

func TestBridgeURLEncoding(t *testing.T) {
	link := BridgeURL("Total Due: 400.00\nA+B & C")
	assert.Equal(t, "rawbt:print?text=Total%20Due%3A%20400.00%0AA%2BB%20%26%20C", link)
	assert.NotContains(t, link, "+")

	decoded, err := url.QueryUnescape(strings.TrimPrefix(link, BridgeScheme))
	require.NoError(t, err)
	assert.Equal(t, "Total Due: 400.00\nA+B & C", decoded)
}
