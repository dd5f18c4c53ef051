package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/sangkips/salespos-api/internal/domain/entity"
	"github.com/sangkips/salespos-api/internal/domain/repository"
	"github.com/sangkips/salespos-api/pkg/money"
)

// ReportService computes the dashboard aggregates over the ledger
type ReportService struct {
	txRepo repository.TransactionRepository
	loc    *time.Location
}

// NewReportService creates a new report service. Calendar days are taken in loc.
func NewReportService(txRepo repository.TransactionRepository, loc *time.Location) *ReportService {
	if loc == nil {
		loc = time.Local
	}
	return &ReportService{txRepo: txRepo, loc: loc}
}

// Location is the zone used for calendar days
func (s *ReportService) Location() *time.Location {
	return s.loc
}

// SoldItem is one row of the items-sold breakdown
type SoldItem struct {
	ItemID   string       `json:"item_id"`
	Name     string       `json:"name"`
	Quantity int          `json:"quantity"`
	Total    money.Amount `json:"total"`
}

// DailySummary is the admin dashboard for one day
type DailySummary struct {
	Date                 string               `json:"date"`
	GrossSales           money.Amount         `json:"gross_sales"`
	CashCollected        money.Amount         `json:"cash_collected"`
	RealizedProfit       money.Amount         `json:"realized_profit"`
	DailyLoansTotal      money.Amount         `json:"daily_loans_total"`
	AccumulatedLoans     money.Amount         `json:"accumulated_loans_total"`
	TransactionCount     int                  `json:"transaction_count"`
	Transactions         []entity.Transaction `json:"transactions"`
	ItemsSold            []SoldItem           `json:"items_sold"`
	OutstandingLoanCount int                  `json:"outstanding_loans"`
}

// CustomerBalance is the outstanding total owed by one customer
type CustomerBalance struct {
	Customer     string       `json:"customer"`
	Contact      string       `json:"contact,omitempty"`
	Outstanding  money.Amount `json:"outstanding"`
	Transactions int          `json:"transactions"`
}

// OutstandingLoans lists unsettled transactions by customer name, newest first per customer
func (s *ReportService) OutstandingLoans(ctx context.Context) ([]entity.Transaction, error) {
	txs, err := s.txRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return OutstandingLoans(txs), nil
}

// CashCollected sums the cash received on day
func (s *ReportService) CashCollected(ctx context.Context, day time.Time) (money.Amount, error) {
	txs, err := s.txRepo.List(ctx)
	if err != nil {
		return 0, err
	}
	return CashCollected(txs, day, s.loc), nil
}

// GrossSales sums the totals of transactions created on day
func (s *ReportService) GrossSales(ctx context.Context, day time.Time) (money.Amount, error) {
	txs, err := s.txRepo.List(ctx)
	if err != nil {
		return 0, err
	}
	return GrossSales(txs, day, s.loc), nil
}

// RealizedProfit sums the margin of settled transactions created on day
func (s *ReportService) RealizedProfit(ctx context.Context, day time.Time) (money.Amount, error) {
	txs, err := s.txRepo.List(ctx)
	if err != nil {
		return 0, err
	}
	return RealizedProfit(txs, day, s.loc), nil
}

// DailySummary builds every dashboard figure for day from one ledger read
func (s *ReportService) DailySummary(ctx context.Context, day time.Time) (*DailySummary, error) {
	txs, err := s.txRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	daily := make([]entity.Transaction, 0)
	for _, tx := range txs {
		if sameDay(tx.CreatedAt(), day, s.loc) {
			daily = append(daily, tx)
		}
	}
	sort.SliceStable(daily, func(i, j int) bool { return daily[i].Timestamp > daily[j].Timestamp })

	outstanding := OutstandingLoans(txs)
	summary := &DailySummary{
		Date:                 day.In(s.loc).Format("2006-01-02"),
		GrossSales:           GrossSales(txs, day, s.loc),
		CashCollected:        CashCollected(txs, day, s.loc),
		RealizedProfit:       RealizedProfit(txs, day, s.loc),
		TransactionCount:     len(daily),
		Transactions:         daily,
		ItemsSold:            AggregateItems(daily),
		OutstandingLoanCount: len(outstanding),
	}
	for _, tx := range daily {
		if tx.RemainingBalance > 0 {
			summary.DailyLoansTotal += tx.RemainingBalance
		}
	}
	for _, tx := range outstanding {
		summary.AccumulatedLoans += tx.RemainingBalance
	}
	return summary, nil
}

// CustomerBalances groups outstanding balances by customer name
func (s *ReportService) CustomerBalances(ctx context.Context) ([]CustomerBalance, error) {
	txs, err := s.txRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]*CustomerBalance)
	var order []string
	for _, tx := range OutstandingLoans(txs) {
		name := strings.TrimSpace(tx.CustomerName())
		key := strings.ToLower(name)
		cb, ok := byName[key]
		if !ok {
			cb = &CustomerBalance{Customer: name}
			if tx.Customer != nil {
				cb.Contact = tx.Customer.Contact
			}
			byName[key] = cb
			order = append(order, key)
		}
		cb.Outstanding += tx.RemainingBalance
		cb.Transactions++
	}

	out := make([]CustomerBalance, 0, len(order))
	for _, key := range order {
		out = append(out, *byName[key])
	}
	return out, nil
}

// OutstandingLoans filters txs to remaining balance > 0, ordered by customer
// name ascending then timestamp descending.
func OutstandingLoans(txs []entity.Transaction) []entity.Transaction {
	out := make([]entity.Transaction, 0)
	for _, tx := range txs {
		if tx.RemainingBalance > 0 {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].CustomerName()), strings.ToLower(out[j].CustomerName())
		if a != b {
			return a < b
		}
		return out[i].Timestamp > out[j].Timestamp
	})
	return out
}

// CashCollected sums history entries dated on day. A transaction without any
// history is a legacy record: its whole AmountPaid counts on the day of its
// own timestamp.
func CashCollected(txs []entity.Transaction, day time.Time, loc *time.Location) money.Amount {
	var cash money.Amount
	for _, tx := range txs {
		if len(tx.PaymentHistory) == 0 {
			if sameDay(tx.CreatedAt(), day, loc) {
				cash += tx.AmountPaid
			}
			continue
		}
		for _, p := range tx.PaymentHistory {
			if sameDay(p.Time(), day, loc) {
				cash += p.Amount
			}
		}
	}
	return cash
}

// GrossSales sums Total over transactions created on day
func GrossSales(txs []entity.Transaction, day time.Time, loc *time.Location) money.Amount {
	var gross money.Amount
	for _, tx := range txs {
		if sameDay(tx.CreatedAt(), day, loc) {
			gross += tx.Total
		}
	}
	return gross
}

// RealizedProfit sums total minus cost of goods over settled transactions
// created on day. Unsettled ones contribute nothing.
func RealizedProfit(txs []entity.Transaction, day time.Time, loc *time.Location) money.Amount {
	var profit money.Amount
	for i := range txs {
		tx := &txs[i]
		if !tx.IsSettled || !sameDay(tx.CreatedAt(), day, loc) {
			continue
		}
		profit += tx.Total - tx.CostOfGoods()
	}
	return profit
}

// AggregateItems totals quantity and line totals per catalog item
func AggregateItems(txs []entity.Transaction) []SoldItem {
	byKey := make(map[string]*SoldItem)
	var order []string
	for _, tx := range txs {
		for _, l := range tx.Lines {
			key := l.ID
			if key == "" {
				key = "name:" + strings.ToLower(l.Name)
			}
			si, ok := byKey[key]
			if !ok {
				si = &SoldItem{ItemID: l.ID, Name: l.Name}
				byKey[key] = si
				order = append(order, key)
			}
			si.Quantity += l.Quantity
			si.Total += LineTotal(l)
		}
	}

	out := make([]SoldItem, 0, len(order))
	for _, key := range order {
		out = append(out, *byKey[key])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

func sameDay(t, day time.Time, loc *time.Location) bool {
	y1, m1, d1 := t.In(loc).Date()
	y2, m2, d2 := day.In(loc).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
