package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/storefront/pkg/domain"
)

// Records implements ports.Records in memory. IDs are allocated from
// per-entity sequences under the store mutex.
type Records struct {
	mu sync.RWMutex

	products   map[int64]domain.Product
	orders     map[int64]domain.Order
	numbers    map[string]int64
	users      map[int64]domain.User
	productSeq int64
	orderSeq   int64
}

// NewRecords creates an empty record store.
func NewRecords() *Records {
	return &Records{
		products: make(map[int64]domain.Product),
		orders:   make(map[int64]domain.Order),
		numbers:  make(map[string]int64),
		users:    make(map[int64]domain.User),
	}
}

func (r *Records) CreateProduct(ctx context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.productSeq++
	p.ID = r.productSeq
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	r.products[p.ID] = *p
	return nil
}

func (r *Records) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return &p, nil
}

func (r *Records) UpdateProduct(ctx context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[p.ID]; !ok {
		return domain.ErrProductNotFound
	}
	r.products[p.ID] = *p
	return nil
}

func (r *Records) DeleteProduct(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.products, id)
	return nil
}

func (r *Records) ListProducts(ctx context.Context) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Records) ToggleAvailability(ctx context.Context, id int64) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	p.Available = !p.Available
	r.products[id] = p
	return &p, nil
}

func (r *Records) CreateOrder(ctx context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.numbers[o.Number]; taken {
		return domain.ErrDuplicateOrderNumber
	}
	r.orderSeq++
	o.ID = r.orderSeq
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = o.CreatedAt
	}
	r.orders[o.ID] = *o
	r.numbers[o.Number] = o.ID
	return nil
}

func (r *Records) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return &o, nil
}

func (r *Records) GetOrderByNumber(ctx context.Context, number string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.numbers[number]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	o := r.orders[id]
	return &o, nil
}

func (r *Records) ListOrdersByActor(ctx context.Context, actorID int64) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.Order{}
	for _, o := range r.orders {
		if o.ActorID == actorID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Records) UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.Status = status
	o.UpdatedAt = time.Now().UTC()
	r.orders[id] = o
	return nil
}

func (r *Records) AddUser(ctx context.Context, u domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.users[u.ID]; ok {
		u.JoinedAt = existing.JoinedAt
	} else if u.JoinedAt.IsZero() {
		u.JoinedAt = time.Now().UTC()
	}
	r.users[u.ID] = u
	return nil
}

func (r *Records) ListUsers(ctx context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].JoinedAt.Before(out[j].JoinedAt)
	})
	return out, nil
}

func (r *Records) CountUsers(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users), nil
}

// Snapshot is a point-in-time copy of every record, ordered by ID.
type Snapshot struct {
	Products []domain.Product `json:"products"`
	Orders   []domain.Order   `json:"orders"`
	Users    []domain.User    `json:"users"`
}

// Snapshot copies the current records.
func (r *Records) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := Snapshot{
		Products: make([]domain.Product, 0, len(r.products)),
		Orders:   make([]domain.Order, 0, len(r.orders)),
		Users:    make([]domain.User, 0, len(r.users)),
	}
	for _, p := range r.products {
		s.Products = append(s.Products, p)
	}
	for _, o := range r.orders {
		s.Orders = append(s.Orders, o)
	}
	for _, u := range r.users {
		s.Users = append(s.Users, u)
	}
	sort.Slice(s.Products, func(i, j int) bool { return s.Products[i].ID < s.Products[j].ID })
	sort.Slice(s.Orders, func(i, j int) bool { return s.Orders[i].ID < s.Orders[j].ID })
	sort.Slice(s.Users, func(i, j int) bool { return s.Users[i].ID < s.Users[j].ID })
	return s
}

// Restore replaces the records with s. Sequences continue after the highest ID.
func (r *Records) Restore(s Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.products = make(map[int64]domain.Product, len(s.Products))
	r.orders = make(map[int64]domain.Order, len(s.Orders))
	r.numbers = make(map[string]int64, len(s.Orders))
	r.users = make(map[int64]domain.User, len(s.Users))
	r.productSeq, r.orderSeq = 0, 0

	for _, p := range s.Products {
		r.products[p.ID] = p
		r.productSeq = max(r.productSeq, p.ID)
	}
	for _, o := range s.Orders {
		r.orders[o.ID] = o
		r.numbers[o.Number] = o.ID
		r.orderSeq = max(r.orderSeq, o.ID)
	}
	for _, u := range s.Users {
		r.users[u.ID] = u
	}
}
