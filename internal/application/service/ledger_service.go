package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sangkips/salespos-api/internal/domain/entity"
	"github.com/sangkips/salespos-api/internal/domain/enum"
	"github.com/sangkips/salespos-api/internal/domain/repository"
	"github.com/sangkips/salespos-api/pkg/apperror"
	"github.com/sangkips/salespos-api/pkg/money"
	"github.com/sangkips/salespos-api/pkg/pagination"
	"github.com/sangkips/salespos-api/pkg/utils"
	"go.uber.org/zap"
)

// LedgerService creates and amends transactions
type LedgerService struct {
	txRepo       repository.TransactionRepository
	catalogRepo  repository.CatalogRepository
	settingsRepo repository.SettingsRepository
	locks        *keyedMutex
	log          *zap.Logger

	// held shared by every ledger write and exclusively by a store restore
	writes sync.RWMutex

	now   func() time.Time
	newID func() (string, error)
}

// NewLedgerService creates a new ledger service
func NewLedgerService(
	txRepo repository.TransactionRepository,
	catalogRepo repository.CatalogRepository,
	settingsRepo repository.SettingsRepository,
	log *zap.Logger,
) *LedgerService {
	if log == nil {
		log = zap.NewNop()
	}
	return &LedgerService{
		txRepo:       txRepo,
		catalogRepo:  catalogRepo,
		settingsRepo: settingsRepo,
		locks:        newKeyedMutex(),
		log:          log,
		now:          time.Now,
		newID:        utils.NewTransactionID,
	}
}

// CartLineInput is one cart line. Either ItemID references a catalog item or
// Item carries the snapshot inline.
type CartLineInput struct {
	ItemID      string
	Item        *entity.CatalogItem
	Quantity    int
	ManualTotal *money.Amount
}

// CreateTransactionInput represents a finalized cart at checkout
type CreateTransactionInput struct {
	Lines       []CartLineInput
	PaymentMode enum.PaymentMode
	Tendered    *money.Amount
	Customer    *entity.CustomerInfo
	// Seller overrides the current store settings snapshot when set
	Seller *entity.SellerSnapshot
}

// Create turns a cart into a persisted transaction
func (s *LedgerService) Create(ctx context.Context, input *CreateTransactionInput) (*entity.Transaction, error) {
	s.writes.RLock()
	defer s.writes.RUnlock()

	lines, err := s.resolveLines(ctx, input.Lines)
	if err != nil {
		return nil, err
	}

	customer := normalizeCustomer(input.Customer)
	total := CartTotal(lines)
	settlement, err := CheckoutSettlement(total, input.PaymentMode, input.Tendered, customer)
	if err != nil {
		return nil, err
	}

	seller, err := s.sellerSnapshot(ctx, input.Seller)
	if err != nil {
		return nil, err
	}

	id, err := s.newID()
	if err != nil {
		return nil, err
	}
	now := s.now()

	tx := &entity.Transaction{
		ID:               id,
		Timestamp:        now.UnixMilli(),
		Lines:            lines,
		Total:            total,
		PaymentMode:      input.PaymentMode,
		AmountPaid:       settlement.AmountPaid,
		ChangeDue:        settlement.ChangeDue,
		RemainingBalance: settlement.RemainingBalance,
		IsSettled:        settlement.IsSettled,
		Customer:         customer,
		Seller:           seller,
	}
	if settlement.AmountPaid > 0 {
		tx.PaymentHistory = []entity.PaymentRecord{{Date: tx.Timestamp, Amount: settlement.AmountPaid}}
	}

	if err := s.txRepo.Save(ctx, tx); err != nil {
		return nil, fmt.Errorf("save transaction: %w", err)
	}

	s.log.Info("transaction recorded",
		zap.String("id", tx.ID),
		zap.String("mode", tx.PaymentMode.String()),
		zap.Stringer("total", tx.Total),
		zap.Stringer("balance", tx.RemainingBalance),
	)
	return tx, nil
}

// RecordRepayment credits amount against the transaction. Repayments on the
// same id run one at a time.
func (s *LedgerService) RecordRepayment(ctx context.Context, id string, amount money.Amount) (*entity.Transaction, error) {
	s.writes.RLock()
	defer s.writes.RUnlock()
	unlock := s.locks.Lock(id)
	defer unlock()

	tx, err := s.txRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, apperror.NewNotFoundError("Transaction")
	}

	amended, err := ApplyRepayment(tx, amount, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.txRepo.Save(ctx, amended); err != nil {
		return nil, fmt.Errorf("save repayment: %w", err)
	}

	s.log.Info("repayment recorded",
		zap.String("id", id),
		zap.Stringer("amount", amount),
		zap.Stringer("remaining", amended.RemainingBalance),
		zap.Bool("settled", amended.IsSettled),
	)
	return amended, nil
}

// Delete removes a transaction
func (s *LedgerService) Delete(ctx context.Context, id string) error {
	s.writes.RLock()
	defer s.writes.RUnlock()
	unlock := s.locks.Lock(id)
	defer unlock()

	tx, err := s.txRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if tx == nil {
		return apperror.NewNotFoundError("Transaction")
	}
	if err := s.txRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("transaction deleted", zap.String("id", id))
	return nil
}

// PauseWrites waits for in-flight ledger writes and holds off new ones until
// the returned resume func is called.
func (s *LedgerService) PauseWrites() (resume func()) {
	s.writes.Lock()
	return s.writes.Unlock
}

// Get retrieves a transaction by ID
func (s *LedgerService) Get(ctx context.Context, id string) (*entity.Transaction, error) {
	tx, err := s.txRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, apperror.NewNotFoundError("Transaction")
	}
	return tx, nil
}

// List returns transactions matching the filter, newest first
func (s *LedgerService) List(ctx context.Context, params *repository.TransactionFilterParams) (*pagination.PaginatedResult[entity.Transaction], error) {
	all, err := s.txRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if params == nil {
		params = &repository.TransactionFilterParams{}
	}

	matched := make([]entity.Transaction, 0, len(all))
	for i := range all {
		if matchesFilter(&all[i], params) {
			matched = append(matched, all[i])
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp > matched[j].Timestamp
	})

	pag := params.Pagination
	if pag == nil {
		pag = pagination.DefaultPagination()
	}
	return pagination.Paginate(matched, pag), nil
}

func matchesFilter(tx *entity.Transaction, p *repository.TransactionFilterParams) bool {
	created := tx.CreatedAt()
	if p.StartDate != nil && created.Before(*p.StartDate) {
		return false
	}
	if p.EndDate != nil && !created.Before(*p.EndDate) {
		return false
	}
	if p.PaymentMode != nil && tx.PaymentMode != *p.PaymentMode {
		return false
	}
	if p.OutstandingOnly && tx.RemainingBalance <= 0 {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(p.Search)); q != "" {
		if !strings.Contains(strings.ToLower(tx.CustomerName()), q) &&
			!strings.Contains(strings.ToLower(tx.ShortID()), q) {
			return false
		}
	}
	return true
}

func (s *LedgerService) resolveLines(ctx context.Context, inputs []CartLineInput) ([]entity.CartLine, error) {
	if len(inputs) == 0 {
		return nil, apperror.NewFieldError("lines", "Cart is empty")
	}

	lines := make([]entity.CartLine, 0, len(inputs))
	for i, in := range inputs {
		field := fmt.Sprintf("lines[%d]", i)
		if in.Quantity < 1 {
			return nil, apperror.NewFieldError(field+".quantity", "Quantity must be at least 1")
		}
		if in.ManualTotal != nil && *in.ManualTotal < 0 {
			return nil, apperror.NewFieldError(field+".manual_total", "Manual total cannot be negative")
		}

		var item entity.CatalogItem
		switch {
		case in.Item != nil:
			item = *in.Item
			if item.ID == "" {
				item.ID = utils.NewUUID()
			}
		case in.ItemID != "":
			found, err := s.catalogRepo.GetByID(ctx, in.ItemID)
			if err != nil {
				return nil, err
			}
			if found == nil {
				return nil, apperror.NewNotFoundError("Catalog item " + in.ItemID)
			}
			item = *found
		default:
			return nil, apperror.NewFieldError(field+".item_id", "Item reference is required")
		}
		if strings.TrimSpace(item.Name) == "" {
			return nil, apperror.NewFieldError(field+".name", "Item name is required")
		}
		if item.SellPrice < 0 || item.CostPrice < 0 {
			return nil, apperror.NewFieldError(field+".sell_price", "Prices cannot be negative")
		}

		line := entity.CartLine{CatalogItem: item, Quantity: in.Quantity}
		if in.ManualTotal != nil {
			v := *in.ManualTotal
			line.ManualOverride = &v
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (s *LedgerService) sellerSnapshot(ctx context.Context, override *entity.SellerSnapshot) (entity.SellerSnapshot, error) {
	if override != nil {
		return *override, nil
	}
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return entity.SellerSnapshot{}, err
	}
	return settings.Snapshot(), nil
}

func normalizeCustomer(c *entity.CustomerInfo) *entity.CustomerInfo {
	if c == nil {
		return nil
	}
	out := entity.CustomerInfo{
		Name:    strings.TrimSpace(c.Name),
		Address: strings.TrimSpace(c.Address),
		Contact: strings.TrimSpace(c.Contact),
	}
	if out.Name == "" {
		return nil
	}
	return &out
}
