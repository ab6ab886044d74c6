package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/aretw0/storefront/pkg/adapters/memory"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/ports"
)

const (
	productsFile = "products.json"
	ordersFile   = "orders.json"
	usersFile    = "users.json"
)

// DefaultDataDir is used when OpenRecords receives an empty path.
var DefaultDataDir = filepath.Join(".storefront", "data")

// Records implements ports.Records on three JSON files (products, orders,
// users). Reads are served from memory; every write rewrites the affected
// file atomically.
type Records struct {
	*memory.Records

	dir string
	mu  sync.Mutex
}

// OpenRecords loads the record files from dir. Missing files start empty.
func OpenRecords(dir string) (*Records, error) {
	if dir == "" {
		dir = DefaultDataDir
	}
	r := &Records{Records: memory.NewRecords(), dir: dir}

	var snap memory.Snapshot
	if err := readJSON(filepath.Join(dir, productsFile), &snap.Products); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, ordersFile), &snap.Orders); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, usersFile), &snap.Users); err != nil {
		return nil, err
	}
	r.Restore(snap)
	return r, nil
}

// Dir returns the data directory.
func (r *Records) Dir() string {
	return r.dir
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// flush writes the named file from the current in-memory records.
func (r *Records) flush(name string) error {
	snap := r.Snapshot()
	var v any
	switch name {
	case productsFile:
		v = snap.Products
	case ordersFile:
		v = snap.Orders
	default:
		v = snap.Users
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	return writeAtomic(filepath.Join(r.dir, name), data)
}

// mutate applies fn to the in-memory records and writes the named file.
// A failed write rolls memory back so it never runs ahead of disk.
func (r *Records) mutate(name string, fn func() error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	before := r.Snapshot()
	if err := fn(); err != nil {
		return err
	}
	if err := r.flush(name); err != nil {
		r.Restore(before)
		return err
	}
	return nil
}

func (r *Records) CreateProduct(ctx context.Context, p *domain.Product) error {
	return r.mutate(productsFile, func() error {
		return r.Records.CreateProduct(ctx, p)
	})
}

func (r *Records) UpdateProduct(ctx context.Context, p *domain.Product) error {
	return r.mutate(productsFile, func() error {
		return r.Records.UpdateProduct(ctx, p)
	})
}

func (r *Records) DeleteProduct(ctx context.Context, id int64) error {
	return r.mutate(productsFile, func() error {
		return r.Records.DeleteProduct(ctx, id)
	})
}

func (r *Records) ToggleAvailability(ctx context.Context, id int64) (*domain.Product, error) {
	var p *domain.Product
	err := r.mutate(productsFile, func() error {
		var err error
		p, err = r.Records.ToggleAvailability(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *Records) CreateOrder(ctx context.Context, o *domain.Order) error {
	return r.mutate(ordersFile, func() error {
		return r.Records.CreateOrder(ctx, o)
	})
}

func (r *Records) UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	return r.mutate(ordersFile, func() error {
		return r.Records.UpdateOrderStatus(ctx, id, status)
	})
}

func (r *Records) AddUser(ctx context.Context, u domain.User) error {
	return r.mutate(usersFile, func() error {
		return r.Records.AddUser(ctx, u)
	})
}

var _ ports.Records = (*Records)(nil)
