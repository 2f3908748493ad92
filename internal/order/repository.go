package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// Repository is the storage handle for the order aggregate. Every method is
// atomic: either the whole operation is visible or none of it is.
type Repository interface {
	List(ctx context.Context) ([]Order, error)
	Create(ctx context.Context, order *Order) (int64, error)
	GetByID(ctx context.Context, id int64) (*Order, error)
	Update(ctx context.Context, order *Order) error
	Delete(ctx context.Context, id int64) error
	TogglePayment(ctx context.Context, id int64) (bool, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

const (
	selectOrderColumns = `SELECT id, day, name, base_price, shipping_price, address, time_window, paid, created_at FROM orders`
	insertItemQuery    = `INSERT INTO order_items (order_id, flavor, quantity) VALUES ($1, $2, $3) RETURNING id`
)

var readOnlySnapshot = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}

// inTx runs fn inside a transaction, committing when fn returns nil and
// rolling back on error or panic.
func (r *postgresRepository) inTx(ctx context.Context, opts *sql.TxOptions, op string, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := r.db.BeginTxx(ctx, opts)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction for %s: %w", op, err)
	}

	defer func() {
		if p := recover(); p != nil {
			log.Error().Interface("panic_value", p).Str("op", op).Msg("Panic recovered in transaction, rolling back")
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error().Err(rbErr).Str("op", op).Msg("Failed to rollback transaction after panic")
			}
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error().Err(rbErr).Str("op", op).Msg("Failed to rollback transaction")
			}
		} else if commitErr := tx.Commit(); commitErr != nil {
			err = fmt.Errorf("repository: failed to commit %s: %w", op, commitErr)
		}
	}()

	return fn(tx)
}

func (r *postgresRepository) List(ctx context.Context) ([]Order, error) {
	var orders []Order

	err := r.inTx(ctx, readOnlySnapshot, "list orders", func(tx *sqlx.Tx) error {
		if err := tx.SelectContext(ctx, &orders,
			selectOrderColumns+` ORDER BY day COLLATE "C", created_at DESC, id DESC`); err != nil {
			return fmt.Errorf("repository: failed to select orders: %w", err)
		}

		if len(orders) == 0 {
			return nil
		}

		var items []OrderItem
		if err := tx.SelectContext(ctx, &items,
			`SELECT id, order_id, flavor, quantity FROM order_items ORDER BY order_id, id`); err != nil {
			return fmt.Errorf("repository: failed to select order items: %w", err)
		}

		attachItems(orders, items)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if orders == nil {
		orders = []Order{}
	}
	return orders, nil
}

// attachItems distributes items to their orders. Items whose order is not in
// the slice are ignored.
func attachItems(orders []Order, items []OrderItem) {
	byID := make(map[int64]*Order, len(orders))
	for i := range orders {
		orders[i].Items = make([]OrderItem, 0)
		byID[orders[i].ID] = &orders[i]
	}

	for _, item := range items {
		if o, ok := byID[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
}

func (r *postgresRepository) Create(ctx context.Context, order *Order) (int64, error) {
	var id int64

	err := r.inTx(ctx, nil, "create order", func(tx *sqlx.Tx) error {
		queryOrder := `
			INSERT INTO orders (day, name, base_price, shipping_price, address, time_window, paid)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, created_at
		`
		err := tx.QueryRowxContext(ctx, queryOrder,
			order.Day,
			order.Name,
			order.BasePrice,
			order.ShippingPrice,
			order.Address,
			order.TimeWindow,
			order.Paid,
		).Scan(&id, &order.CreatedAt)
		if err != nil {
			return fmt.Errorf("repository: failed to insert order: %w", err)
		}

		return insertItems(ctx, tx, id, order.Items)
	})
	if err != nil {
		return 0, err
	}

	order.ID = id
	for i := range order.Items {
		order.Items[i].OrderID = id
	}

	return id, nil
}

func insertItems(ctx context.Context, tx *sqlx.Tx, orderID int64, items []OrderItem) error {
	for i := range items {
		item := &items[i]
		if err := tx.QueryRowxContext(ctx, insertItemQuery, orderID, item.Flavor, item.Quantity).Scan(&item.ID); err != nil {
			return fmt.Errorf("repository: failed to insert order item for order %d: %w", orderID, err)
		}
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*Order, error) {
	var order Order

	err := r.inTx(ctx, readOnlySnapshot, "get order", func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &order, selectOrderColumns+` WHERE id = $1`, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("repository: failed to select order by id %d: %w", id, err)
		}

		order.Items = make([]OrderItem, 0)
		if err := tx.SelectContext(ctx, &order.Items,
			`SELECT id, order_id, flavor, quantity FROM order_items WHERE order_id = $1 ORDER BY id`, id); err != nil {
			return fmt.Errorf("repository: failed to query order items for order id %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *postgresRepository) Update(ctx context.Context, order *Order) error {
	return r.inTx(ctx, nil, "update order", func(tx *sqlx.Tx) error {
		query := `
			UPDATE orders
			SET day = $1, name = $2, base_price = $3, shipping_price = $4,
				address = $5, time_window = $6, paid = $7
			WHERE id = $8
		`
		res, err := tx.ExecContext(ctx, query,
			order.Day,
			order.Name,
			order.BasePrice,
			order.ShippingPrice,
			order.Address,
			order.TimeWindow,
			order.Paid,
			order.ID,
		)
		if err != nil {
			return fmt.Errorf("repository: failed to update order %d: %w", order.ID, err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("repository: failed to read affected rows for order %d: %w", order.ID, err)
		}
		if affected == 0 {
			return ErrOrderNotFound
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, order.ID); err != nil {
			return fmt.Errorf("repository: failed to delete items of order %d: %w", order.ID, err)
		}

		if err := insertItems(ctx, tx, order.ID, order.Items); err != nil {
			return err
		}

		for i := range order.Items {
			order.Items[i].OrderID = order.ID
		}
		return nil
	})
}

func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	// order_items rows go with the order through ON DELETE CASCADE.
	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete order %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repository: failed to read affected rows for order %d: %w", id, err)
	}
	if affected == 0 {
		return ErrOrderNotFound
	}

	return nil
}

func (r *postgresRepository) TogglePayment(ctx context.Context, id int64) (bool, error) {
	var paid bool

	err := r.db.QueryRowxContext(ctx, `UPDATE orders SET paid = NOT paid WHERE id = $1 RETURNING paid`, id).Scan(&paid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrOrderNotFound
		}
		return false, fmt.Errorf("repository: failed to toggle payment of order %d: %w", id, err)
	}

	return paid, nil
}
