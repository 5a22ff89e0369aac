// Package store holds the single mutable snapshot of all business
// collections. Mutations assign sequential ids, append in place, and push the
// full snapshot through the persistence port; nothing is ever deleted.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"khakhra/backend/internal/domain"
	"khakhra/backend/internal/seed"
	"khakhra/backend/internal/snapshot"
)

var ErrNotFound = errors.New("not found")

type Store struct {
	mu    sync.RWMutex
	state *domain.Snapshot
	port  snapshot.Store
	log   *logrus.Logger

	// Monotonic per-collection counters. Seeded from the loaded collection
	// lengths, so ids continue the seed sequence but never re-derive from
	// length at assignment time.
	counters map[string]int
}

// New loads the persisted snapshot through the port, falling back to the
// seed dataset when the slot is empty or unparsable. No partial recovery is
// attempted: a corrupt snapshot is discarded wholesale.
func New(ctx context.Context, port snapshot.Store, log *logrus.Logger) *Store {
	if port == nil {
		port = snapshot.Noop{}
	}
	if log == nil {
		log = logrus.New()
	}

	state, err := port.Load(ctx)
	if err != nil {
		if !errors.Is(err, snapshot.ErrNotFound) {
			log.WithError(err).Warn("snapshot load failed, using seed dataset")
		}
		state = seed.Snapshot()
	}

	s := &Store{
		state: state,
		port:  port,
		log:   log,
	}
	s.counters = map[string]int{
		"cust":  len(state.Customers),
		"prod":  len(state.Products),
		"raw":   len(state.RawMaterials),
		"order": len(state.Orders),
		"inv":   len(state.Invoices),
		"exp":   len(state.Expenses),
		"batch": len(state.ProductionBatches),
	}
	return s
}

func (s *Store) nextID(prefix string) string {
	s.counters[prefix]++
	return fmt.Sprintf("%s-%d", prefix, s.counters[prefix])
}

// persist writes the full snapshot. Fire-and-forget: failures are logged and
// never surfaced to the mutating caller.
func (s *Store) persist(ctx context.Context) {
	if err := s.port.Save(ctx, copySnapshot(s.state)); err != nil {
		s.log.WithError(err).Error("snapshot save failed")
	}
}

// ── Read accessors ──

func (s *Store) Customers() []domain.Customer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyCustomers(s.state.Customers)
}

func (s *Store) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyProducts(s.state.Products)
}

func (s *Store) RawMaterials() []domain.RawMaterial {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyRawMaterials(s.state.RawMaterials)
}

func (s *Store) Orders() []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyOrders(s.state.Orders)
}

func (s *Store) Invoices() []domain.Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyInvoices(s.state.Invoices)
}

func (s *Store) Expenses() []domain.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyExpenses(s.state.Expenses)
}

func (s *Store) ProductionBatches() []domain.ProductionBatch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyBatches(s.state.ProductionBatches)
}

func (s *Store) Profile() *domain.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.UserProfile == nil {
		return nil
	}
	profile := *s.state.UserProfile
	return &profile
}

func (s *Store) GetOrder(id string) (domain.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.state.Orders {
		if s.state.Orders[i].ID == id {
			return copyOrder(s.state.Orders[i]), true
		}
	}
	return domain.Order{}, false
}

// ExportData returns a consistent, deep copy of all seven collections for
// the exporters. Later mutations do not leak into the returned payload.
func (s *Store) ExportData() domain.ExportPayload {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.ExportPayload{
		Orders:            copyOrders(s.state.Orders),
		Invoices:          copyInvoices(s.state.Invoices),
		Expenses:          copyExpenses(s.state.Expenses),
		Products:          copyProducts(s.state.Products),
		RawMaterials:      copyRawMaterials(s.state.RawMaterials),
		Customers:         copyCustomers(s.state.Customers),
		ProductionBatches: copyBatches(s.state.ProductionBatches),
	}
}

// ── Mutations ──

func (s *Store) CreateCustomer(ctx context.Context, customer domain.Customer) domain.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	customer.ID = s.nextID("cust")
	s.state.Customers = append(s.state.Customers, customer)
	s.persist(ctx)
	return customer
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	product.ID = s.nextID("prod")
	s.state.Products = append(s.state.Products, product)
	s.persist(ctx)
	return product
}

func (s *Store) CreateRawMaterial(ctx context.Context, material domain.RawMaterial) domain.RawMaterial {
	s.mu.Lock()
	defer s.mu.Unlock()
	material.ID = s.nextID("raw")
	s.state.RawMaterials = append(s.state.RawMaterials, material)
	s.persist(ctx)
	return material
}

func (s *Store) CreateOrder(ctx context.Context, order domain.Order) domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	order.ID = s.nextID("order")
	s.state.Orders = append(s.state.Orders, copyOrder(order))
	s.persist(ctx)
	return order
}

func (s *Store) CreateInvoice(ctx context.Context, invoice domain.Invoice) domain.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	invoice.ID = s.nextID("inv")
	s.state.Invoices = append(s.state.Invoices, invoice)
	s.persist(ctx)
	return invoice
}

func (s *Store) CreateExpense(ctx context.Context, expense domain.Expense) domain.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	expense.ID = s.nextID("exp")
	s.state.Expenses = append(s.state.Expenses, expense)
	s.persist(ctx)
	return expense
}

func (s *Store) CreateProductionBatch(ctx context.Context, batch domain.ProductionBatch) domain.ProductionBatch {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch.ID = s.nextID("batch")
	s.state.ProductionBatches = append(s.state.ProductionBatches, copyBatch(batch))
	s.persist(ctx)
	return batch
}

// UpdateOrderStatus replaces the status of the matching order. A missing id
// is a silent no-op; found reports whether anything changed.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) (domain.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.Orders {
		if s.state.Orders[i].ID != orderID {
			continue
		}
		s.state.Orders[i].Status = status
		s.persist(ctx)
		return copyOrder(s.state.Orders[i]), true
	}
	return domain.Order{}, false
}

func (s *Store) UpdateProductStock(ctx context.Context, productID string, stock int) (domain.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.Products {
		if s.state.Products[i].ID != productID {
			continue
		}
		s.state.Products[i].Stock = stock
		s.persist(ctx)
		return s.state.Products[i], true
	}
	return domain.Product{}, false
}

func (s *Store) UpdateRawMaterialQuantity(ctx context.Context, materialID string, quantity float64) (domain.RawMaterial, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.RawMaterials {
		if s.state.RawMaterials[i].ID != materialID {
			continue
		}
		s.state.RawMaterials[i].Quantity = quantity
		s.persist(ctx)
		return s.state.RawMaterials[i], true
	}
	return domain.RawMaterial{}, false
}

func (s *Store) SetUserProfile(ctx context.Context, profile *domain.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if profile == nil {
		s.state.UserProfile = nil
	} else {
		copied := *profile
		s.state.UserProfile = &copied
	}
	s.persist(ctx)
}

// ── Copy helpers ──

func copySnapshot(state *domain.Snapshot) *domain.Snapshot {
	copied := &domain.Snapshot{
		Customers:         copyCustomers(state.Customers),
		Products:          copyProducts(state.Products),
		RawMaterials:      copyRawMaterials(state.RawMaterials),
		Orders:            copyOrders(state.Orders),
		Invoices:          copyInvoices(state.Invoices),
		Expenses:          copyExpenses(state.Expenses),
		ProductionBatches: copyBatches(state.ProductionBatches),
	}
	if state.UserProfile != nil {
		profile := *state.UserProfile
		copied.UserProfile = &profile
	}
	return copied
}

func copyCustomers(in []domain.Customer) []domain.Customer {
	out := make([]domain.Customer, len(in))
	copy(out, in)
	return out
}

func copyProducts(in []domain.Product) []domain.Product {
	out := make([]domain.Product, len(in))
	copy(out, in)
	return out
}

func copyRawMaterials(in []domain.RawMaterial) []domain.RawMaterial {
	out := make([]domain.RawMaterial, len(in))
	copy(out, in)
	return out
}

func copyInvoices(in []domain.Invoice) []domain.Invoice {
	out := make([]domain.Invoice, len(in))
	copy(out, in)
	return out
}

func copyExpenses(in []domain.Expense) []domain.Expense {
	out := make([]domain.Expense, len(in))
	copy(out, in)
	return out
}

func copyOrder(order domain.Order) domain.Order {
	copied := order
	copied.Items = make([]domain.OrderItem, len(order.Items))
	copy(copied.Items, order.Items)
	if order.DeliveredDate != nil {
		delivered := *order.DeliveredDate
		copied.DeliveredDate = &delivered
	}
	return copied
}

func copyOrders(in []domain.Order) []domain.Order {
	out := make([]domain.Order, len(in))
	for i := range in {
		out[i] = copyOrder(in[i])
	}
	return out
}

func copyBatch(batch domain.ProductionBatch) domain.ProductionBatch {
	copied := batch
	copied.RawMaterialUsage = make([]domain.RawMaterialUsage, len(batch.RawMaterialUsage))
	copy(copied.RawMaterialUsage, batch.RawMaterialUsage)
	return copied
}

func copyBatches(in []domain.ProductionBatch) []domain.ProductionBatch {
	out := make([]domain.ProductionBatch, len(in))
	for i := range in {
		out[i] = copyBatch(in[i])
	}
	return out
}
