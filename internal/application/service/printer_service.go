package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/sangkips/salespos-api/pkg/printer"
	"go.uber.org/zap"
)

// Print strategy names, in dispatch order
const (
	StrategyTransport = "transport"
	StrategyBridge    = "bridge"
	StrategyDocument  = "document"
)

// BridgeScheme is the hand-off URL understood by the RawBT print service app
const BridgeScheme = "rawbt:print?text="

// PrintTransport is the printer link the dispatcher drives
type PrintTransport interface {
	IsSupported(ctx context.Context) bool
	IsConnected() bool
	DeviceName() string
	State() printer.State
	Connect(ctx context.Context) (string, error)
	Disconnect() error
	Print(ctx context.Context, data []byte) error
}

// PrintJob is a rendered printout waiting for a strategy
type PrintJob struct {
	Label  string
	Layout *printer.Layout
	// SkipBridge asks for the document path when the client has no bridge app
	SkipBridge bool
}

// StrategyResult records one dispatch attempt
type StrategyResult struct {
	Strategy  string `json:"strategy"`
	OK        bool   `json:"ok"`
	Skipped   bool   `json:"skipped,omitempty"`
	Error     string `json:"error,omitempty"`
	BridgeURL string `json:"bridge_url,omitempty"`
	Document  string `json:"document,omitempty"`
}

// PrintOutcome is the result of a dispatch. DeliveredBy names the strategy
// that took the job.
type PrintOutcome struct {
	DeliveredBy string           `json:"delivered_by"`
	Attempts    []StrategyResult `json:"attempts"`
	BridgeURL   string           `json:"bridge_url,omitempty"`
	Document    string           `json:"document,omitempty"`
}

// PrintStrategy is one step of the fallback chain
type PrintStrategy interface {
	Name() string
	Attempt(ctx context.Context, job *PrintJob) StrategyResult
}

// PrinterService handles receipt rendering and dispatch to the printer link
// or its fallbacks.
type PrinterService struct {
	transport     PrintTransport
	encoder       *ReceiptEncoder
	ledger        *LedgerService
	strategies    []PrintStrategy
	printerType   string
	bridgeEnabled bool
	log           *zap.Logger
}

// NewPrinterService creates a new printer service with the standard chain:
// transport, then the bridge app hand-off, then the client print dialog.
func NewPrinterService(
	transport PrintTransport,
	encoder *ReceiptEncoder,
	ledger *LedgerService,
	printerType string,
	bridgeEnabled bool,
	log *zap.Logger,
) *PrinterService {
	if log == nil {
		log = zap.NewNop()
	}
	s := &PrinterService{
		transport:     transport,
		encoder:       encoder,
		ledger:        ledger,
		printerType:   printerType,
		bridgeEnabled: bridgeEnabled,
		log:           log,
	}
	s.strategies = []PrintStrategy{
		&transportStrategy{transport: transport, encoder: encoder},
		&bridgeStrategy{enabled: bridgeEnabled},
		documentStrategy{},
	}
	return s
}

// WithStrategies replaces the fallback chain. The last strategy should never fail.
func (s *PrinterService) WithStrategies(strategies ...PrintStrategy) *PrinterService {
	s.strategies = strategies
	return s
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Type          string `json:"type"`
	Supported     bool   `json:"supported"`
	Connected     bool   `json:"connected"`
	State         string `json:"state"`
	Device        string `json:"device"`
	BridgeEnabled bool   `json:"bridge_enabled"`
}

// GetStatus returns printer link status. It does no I/O beyond the
// availability check.
func (s *PrinterService) GetStatus(ctx context.Context) *PrinterStatus {
	return &PrinterStatus{
		Type:          s.printerType,
		Supported:     s.transport.IsSupported(ctx),
		Connected:     s.transport.IsConnected(),
		State:         s.transport.State().String(),
		Device:        s.transport.DeviceName(),
		BridgeEnabled: s.bridgeEnabled,
	}
}

// Connect links a printer, replacing any existing link
func (s *PrinterService) Connect(ctx context.Context) (*PrinterStatus, error) {
	if _, err := s.transport.Connect(ctx); err != nil {
		return nil, err
	}
	return s.GetStatus(ctx), nil
}

// Disconnect drops the printer link
func (s *PrinterService) Disconnect(ctx context.Context) (*PrinterStatus, error) {
	if err := s.transport.Disconnect(); err != nil {
		s.log.Warn("printer disconnect", zap.Error(err))
	}
	return s.GetStatus(ctx), nil
}

// PrintTransaction renders a stored transaction and dispatches it
func (s *PrinterService) PrintTransaction(ctx context.Context, id string, skipBridge bool) (*PrintOutcome, error) {
	tx, err := s.ledger.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Dispatch(ctx, &PrintJob{
		Label:      "receipt " + tx.ShortID(),
		Layout:     s.encoder.Layout(tx),
		SkipBridge: skipBridge,
	}), nil
}

// TestPrint dispatches a short test page
func (s *PrinterService) TestPrint(ctx context.Context, skipBridge bool) *PrintOutcome {
	return s.Dispatch(ctx, &PrintJob{
		Label:      "test page",
		Layout:     s.encoder.TestPageLayout(s.transport.DeviceName(), time.Now()),
		SkipBridge: skipBridge,
	})
}

// ReceiptText returns the plain-text receipt of a transaction
func (s *PrinterService) ReceiptText(ctx context.Context, id string) (string, error) {
	tx, err := s.ledger.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return s.encoder.PlainText(tx), nil
}

// ReceiptBytes returns the ESC/POS stream of a transaction
func (s *PrinterService) ReceiptBytes(ctx context.Context, id string) ([]byte, error) {
	tx, err := s.ledger.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.encoder.Encode(tx), nil
}

// Dispatch walks the strategies in order until one takes the job. Every
// attempt, skipped or failed, is recorded.
func (s *PrinterService) Dispatch(ctx context.Context, job *PrintJob) *PrintOutcome {
	out := &PrintOutcome{}
	for _, strategy := range s.strategies {
		res := strategy.Attempt(ctx, job)
		res.Strategy = strategy.Name()
		out.Attempts = append(out.Attempts, res)

		if res.Skipped {
			continue
		}
		if !res.OK {
			s.log.Warn("print strategy failed, falling back",
				zap.String("job", job.Label),
				zap.String("strategy", res.Strategy),
				zap.String("error", res.Error),
			)
			continue
		}

		out.DeliveredBy = res.Strategy
		out.BridgeURL = res.BridgeURL
		out.Document = res.Document
		s.log.Info("print dispatched", zap.String("job", job.Label), zap.String("strategy", res.Strategy))
		return out
	}
	s.log.Error("no print strategy accepted the job", zap.String("job", job.Label))
	return out
}

type transportStrategy struct {
	transport PrintTransport
	encoder   *ReceiptEncoder
}

func (transportStrategy) Name() string { return StrategyTransport }

func (t *transportStrategy) Attempt(ctx context.Context, job *PrintJob) StrategyResult {
	if !t.transport.IsConnected() {
		return StrategyResult{Skipped: true, Error: printer.ErrNotConnected.Error()}
	}
	if err := t.transport.Print(ctx, t.encoder.encodeLayout(job.Layout)); err != nil {
		return StrategyResult{Error: err.Error()}
	}
	return StrategyResult{OK: true}
}

type bridgeStrategy struct {
	enabled bool
}

func (bridgeStrategy) Name() string { return StrategyBridge }

func (b *bridgeStrategy) Attempt(ctx context.Context, job *PrintJob) StrategyResult {
	if !b.enabled || job.SkipBridge {
		return StrategyResult{Skipped: true}
	}
	return StrategyResult{OK: true, BridgeURL: BridgeURL(printer.PlainText(job.Layout))}
}

// documentStrategy hands plain text to the client's print dialog. It cannot fail.
type documentStrategy struct{}

func (documentStrategy) Name() string { return StrategyDocument }

func (documentStrategy) Attempt(ctx context.Context, job *PrintJob) StrategyResult {
	return StrategyResult{OK: true, Document: printer.PlainText(job.Layout)}
}

// BridgeURL builds the print-bridge hand-off link for text. Spaces are
// percent-encoded rather than turned into '+'.
func BridgeURL(text string) string {
	return BridgeScheme + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}
