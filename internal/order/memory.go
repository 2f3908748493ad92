package order

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryRepository struct {
	mu        sync.Mutex
	orders    map[int64]Order
	nextOrder int64
	nextItem  int64
	now       func() time.Time
}

// NewMemoryRepository returns a Repository that keeps everything in process
// memory. Data is lost on restart.
func NewMemoryRepository() Repository {
	return newMemoryRepository(time.Now)
}

func newMemoryRepository(now func() time.Time) *memoryRepository {
	return &memoryRepository{
		orders: make(map[int64]Order),
		now:    now,
	}
}

func (r *memoryRepository) List(ctx context.Context) ([]Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, cloneOrder(o))
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})

	return out, nil
}

func (r *memoryRepository) Create(ctx context.Context, order *Order) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextOrder++
	order.ID = r.nextOrder
	order.CreatedAt = r.now().UTC()
	r.assignItems(order)

	r.orders[order.ID] = cloneOrder(*order)
	return order.ID, nil
}

func (r *memoryRepository) GetByID(ctx context.Context, id int64) (*Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}

	found := cloneOrder(o)
	return &found, nil
}

func (r *memoryRepository) Update(ctx context.Context, order *Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.orders[order.ID]
	if !ok {
		return ErrOrderNotFound
	}

	order.CreatedAt = existing.CreatedAt
	r.assignItems(order)

	r.orders[order.ID] = cloneOrder(*order)
	return nil
}

func (r *memoryRepository) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[id]; !ok {
		return ErrOrderNotFound
	}
	delete(r.orders, id)
	return nil
}

func (r *memoryRepository) TogglePayment(ctx context.Context, id int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return false, ErrOrderNotFound
	}
	o.Paid = !o.Paid
	r.orders[id] = o
	return o.Paid, nil
}

// assignItems gives every item a fresh id. Caller holds r.mu.
func (r *memoryRepository) assignItems(order *Order) {
	for i := range order.Items {
		r.nextItem++
		order.Items[i].ID = r.nextItem
		order.Items[i].OrderID = order.ID
	}
}

func cloneOrder(o Order) Order {
	items := make([]OrderItem, len(o.Items))
	copy(items, o.Items)
	o.Items = items
	return o
}
