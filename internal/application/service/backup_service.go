package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sangkips/salespos-api/internal/domain/entity"
	"github.com/sangkips/salespos-api/internal/domain/repository"
	"github.com/sangkips/salespos-api/pkg/apperror"
	"github.com/sangkips/salespos-api/pkg/money"
	"go.uber.org/zap"
)

// BackupService exports and restores the whole store
type BackupService struct {
	store        repository.RecordStore
	catalogRepo  repository.CatalogRepository
	txRepo       repository.TransactionRepository
	settingsRepo repository.SettingsRepository
	ledger       *LedgerService
	validate     *validator.Validate
	log          *zap.Logger
}

// NewBackupService creates a new backup service
func NewBackupService(
	store repository.RecordStore,
	catalogRepo repository.CatalogRepository,
	txRepo repository.TransactionRepository,
	settingsRepo repository.SettingsRepository,
	log *zap.Logger,
) *BackupService {
	if log == nil {
		log = zap.NewNop()
	}
	return &BackupService{
		store:        store,
		catalogRepo:  catalogRepo,
		txRepo:       txRepo,
		settingsRepo: settingsRepo,
		validate:     validator.New(),
		log:          log,
	}
}

// ImportSummary reports what a restore wrote
type ImportSummary struct {
	Items        int `json:"items"`
	Transactions int `json:"transactions"`
}

// Export returns the current items, transactions and settings
func (s *BackupService) Export(ctx context.Context) (*entity.Backup, error) {
	items, err := s.catalogRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	txs, err := s.txRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	return &entity.Backup{
		Format:     entity.BackupFormat,
		Version:    entity.BackupVersion,
		ExportedAt: time.Now().UTC(),
		Data: entity.BackupData{
			Items:        items,
			Transactions: txs,
			Settings:     *settings,
		},
	}, nil
}

// Import decodes a backup document, validates it completely and replaces
// the store contents in one atomic step. Nothing is written on failure.
func (s *BackupService) Import(ctx context.Context, r io.Reader) (*ImportSummary, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var backup entity.Backup
	if err := dec.Decode(&backup); err != nil {
		return nil, apperror.NewFieldError("backup", "Malformed backup document: "+err.Error())
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, apperror.NewFieldError("backup", "Unexpected data after backup document")
	}

	if err := validationError(s.validate.Struct(&backup), ""); err != nil {
		return nil, err
	}
	if err := checkBackupConsistency(&backup.Data); err != nil {
		return nil, err
	}

	snapshot, err := backupRecords(&backup.Data)
	if err != nil {
		return nil, err
	}
	resume := s.pauseLedger()
	err = s.store.ReplaceAll(ctx, snapshot)
	resume()
	if err != nil {
		return nil, fmt.Errorf("restore backup: %w", err)
	}

	s.log.Info("backup restored",
		zap.Int("items", len(backup.Data.Items)),
		zap.Int("transactions", len(backup.Data.Transactions)),
	)
	return &ImportSummary{Items: len(backup.Data.Items), Transactions: len(backup.Data.Transactions)}, nil
}

// ClearAll removes items, transactions and settings
func (s *BackupService) ClearAll(ctx context.Context) error {
	resume := s.pauseLedger()
	defer resume()

	err := s.store.ReplaceAll(ctx, map[string][]repository.Record{
		repository.CollectionItems:        nil,
		repository.CollectionTransactions: nil,
		repository.CollectionSettings:     nil,
	})
	if err != nil {
		return err
	}
	s.log.Warn("all store data cleared")
	return nil
}

// GuardLedger makes restores wait for in-flight ledger writes, so a
// repayment cannot write a stale record over restored data.
func (s *BackupService) GuardLedger(ledger *LedgerService) *BackupService {
	s.ledger = ledger
	return s
}

func (s *BackupService) pauseLedger() func() {
	if s.ledger == nil {
		return func() {}
	}
	return s.ledger.PauseWrites()
}

// checkBackupConsistency rejects records whose balances contradict each other
func checkBackupConsistency(data *entity.BackupData) error {
	seen := make(map[string]bool, len(data.Items))
	for i, item := range data.Items {
		if seen[item.ID] {
			return apperror.NewFieldError(fmt.Sprintf("data.items[%d].id", i), "Duplicate item id "+item.ID)
		}
		seen[item.ID] = true
	}

	seen = make(map[string]bool, len(data.Transactions))
	for i := range data.Transactions {
		tx := &data.Transactions[i]
		field := fmt.Sprintf("data.transactions[%d]", i)
		if seen[tx.ID] {
			return apperror.NewFieldError(field+".id", "Duplicate transaction id "+tx.ID)
		}
		seen[tx.ID] = true

		if tx.Total != CartTotal(tx.Lines) {
			return apperror.NewFieldError(field+".total", "Total does not match the lines")
		}
		if tx.RemainingBalance != money.Max(0, tx.Total-tx.AmountPaid) {
			return apperror.NewFieldError(field+".remaining_balance", "Remaining balance does not match total and amount paid")
		}
		if tx.IsSettled != (tx.RemainingBalance == 0) {
			return apperror.NewFieldError(field+".is_settled", "Settled flag does not match remaining balance")
		}
		if tx.PaymentMode.IsCredit() && !tx.Customer.HasName() {
			return apperror.NewFieldError(field+".customer.name", "Customer name is required for credit sales")
		}
		if len(tx.PaymentHistory) > 0 && tx.HistoryTotal() != tx.AmountPaid {
			return apperror.NewFieldError(field+".payment_history", "Payment history does not add up to amount paid")
		}
	}
	return nil
}

func backupRecords(data *entity.BackupData) (map[string][]repository.Record, error) {
	items := make([]repository.Record, 0, len(data.Items))
	for i := range data.Items {
		raw, err := json.Marshal(&data.Items[i])
		if err != nil {
			return nil, err
		}
		items = append(items, repository.Record{Key: data.Items[i].ID, Value: raw})
	}

	txs := make([]repository.Record, 0, len(data.Transactions))
	for i := range data.Transactions {
		raw, err := json.Marshal(&data.Transactions[i])
		if err != nil {
			return nil, err
		}
		txs = append(txs, repository.Record{Key: data.Transactions[i].ID, Value: raw})
	}

	settingsMap := data.Settings.ToMap()
	settings := make([]repository.Record, 0, len(settingsMap))
	for _, key := range entity.SettingKeys {
		settings = append(settings, repository.Record{Key: key, Value: []byte(settingsMap[key])})
	}

	return map[string][]repository.Record{
		repository.CollectionItems:        items,
		repository.CollectionTransactions: txs,
		repository.CollectionSettings:     settings,
	}, nil
}
