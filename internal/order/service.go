package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/BlundaBranco/SweetCookies-Manager/internal/auth"
)

type Service interface {
	ListOrders(ctx context.Context) ([]Order, error)
	CreateOrder(ctx context.Context, orderInput *Order) (*Order, error)
	GetOrderByID(ctx context.Context, id int64) (*Order, error)
	UpdateOrder(ctx context.Context, orderInput *Order) error
	DeleteOrder(ctx context.Context, id int64) error
	TogglePayment(ctx context.Context, id int64) (bool, error)
	Statistics(ctx context.Context) (*Statistics, error)
	Flavors() []string
}

type service struct {
	orderRepo Repository
}

func NewService(orderRepo Repository) Service {
	return &service{
		orderRepo: orderRepo,
	}
}

// Validate normalizes text fields in place and rejects orders that cannot be
// stored.
func Validate(o *Order) error {
	o.Day = strings.TrimSpace(o.Day)
	o.Name = strings.TrimSpace(o.Name)
	o.Address = strings.TrimSpace(o.Address)
	o.TimeWindow = strings.TrimSpace(o.TimeWindow)

	if o.Day == "" {
		return invalid("day", "is required")
	}
	if o.Name == "" {
		return invalid("name", "is required")
	}
	if err := validatePrice("base_price", o.BasePrice); err != nil {
		return err
	}
	if err := validatePrice("shipping_price", o.ShippingPrice); err != nil {
		return err
	}

	for i := range o.Items {
		item := &o.Items[i]
		item.Flavor = strings.TrimSpace(item.Flavor)
		if item.Flavor == "" {
			return invalid(fmt.Sprintf("items[%d].flavor", i), "is required")
		}
		if item.Quantity <= 0 {
			return invalid(fmt.Sprintf("items[%d].quantity", i), "must be greater than zero")
		}
	}

	return nil
}

// Prices are stored as NUMERIC(12, 2).
var maxPrice = decimal.New(1, 10)

func validatePrice(field string, p decimal.Decimal) error {
	switch {
	case p.IsNegative():
		return invalid(field, "must not be negative")
	case !p.Equal(p.Truncate(2)):
		return invalid(field, "must have at most 2 decimal places")
	case p.GreaterThanOrEqual(maxPrice):
		return invalid(field, "must be less than "+maxPrice.String())
	}
	return nil
}

// actor returns a logger tagged with the authenticated user, if any.
func actor(ctx context.Context) *zerolog.Logger {
	l := log.Logger
	if id, ok := auth.IdentityFromContext(ctx); ok {
		l = l.With().Str("actor", id.Username).Logger()
	}
	return &l
}

func warnUnknownFlavors(l *zerolog.Logger, o *Order) {
	for _, item := range o.Items {
		if !IsCatalogFlavor(item.Flavor) {
			l.Warn().Int64("order_id", o.ID).Str("flavor", item.Flavor).Msg("service: flavor outside the catalog accepted")
		}
	}
}

func (s *service) ListOrders(ctx context.Context) ([]Order, error) {
	orders, err := s.orderRepo.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list orders in repository")
		return nil, fmt.Errorf("service: failed to list orders: %w", err)
	}

	return orders, nil
}

func (s *service) CreateOrder(ctx context.Context, orderInput *Order) (*Order, error) {
	l := actor(ctx)

	if err := Validate(orderInput); err != nil {
		l.Warn().Err(err).Msg("service: rejected order creation")
		return nil, err
	}

	orderInput.ID = 0
	for i := range orderInput.Items {
		orderInput.Items[i].ID = 0
		orderInput.Items[i].OrderID = 0
	}

	if _, err := s.orderRepo.Create(ctx, orderInput); err != nil {
		l.Error().Err(err).Msg("service: failed to create order in repository")
		return nil, fmt.Errorf("service: failed to create order: %w", err)
	}

	warnUnknownFlavors(l, orderInput)
	l.Info().
		Int64("order_id", orderInput.ID).
		Str("day", orderInput.Day).
		Int("items", orderInput.ItemCount()).
		Stringer("total", orderInput.Total()).
		Msg("service: order created successfully")

	return orderInput, nil
}

func (s *service) GetOrderByID(ctx context.Context, id int64) (*Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			log.Warn().Int64("order_id", id).Msg("service: order not found by id")
			return nil, ErrOrderNotFound
		}

		log.Error().Err(err).Int64("order_id", id).Msg("service: failed to fetch order by id in repository")
		return nil, fmt.Errorf("service: failed to fetch order by id: %w", err)
	}

	return order, nil
}

func (s *service) UpdateOrder(ctx context.Context, orderInput *Order) error {
	l := actor(ctx)

	if orderInput.ID <= 0 {
		return ErrOrderNotFound
	}
	if err := Validate(orderInput); err != nil {
		l.Warn().Err(err).Int64("order_id", orderInput.ID).Msg("service: rejected order update")
		return err
	}

	if err := s.orderRepo.Update(ctx, orderInput); err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			l.Warn().Int64("order_id", orderInput.ID).Msg("service: order not found for update")
			return ErrOrderNotFound
		}
		l.Error().Err(err).Int64("order_id", orderInput.ID).Msg("service: failed to update order in repository")
		return fmt.Errorf("service: failed to update order: %w", err)
	}

	warnUnknownFlavors(l, orderInput)
	l.Info().Int64("order_id", orderInput.ID).Int("items", orderInput.ItemCount()).Msg("service: order updated successfully")
	return nil
}

func (s *service) DeleteOrder(ctx context.Context, id int64) error {
	l := actor(ctx)

	if err := s.orderRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			l.Warn().Int64("order_id", id).Msg("service: order not found for delete")
			return ErrOrderNotFound
		}
		l.Error().Err(err).Int64("order_id", id).Msg("service: failed to delete order in repository")
		return fmt.Errorf("service: failed to delete order: %w", err)
	}

	l.Info().Int64("order_id", id).Msg("service: order deleted")
	return nil
}

func (s *service) TogglePayment(ctx context.Context, id int64) (bool, error) {
	l := actor(ctx)

	paid, err := s.orderRepo.TogglePayment(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			l.Warn().Int64("order_id", id).Msg("service: order not found for payment toggle")
			return false, ErrOrderNotFound
		}
		l.Error().Err(err).Int64("order_id", id).Msg("service: failed to toggle payment in repository")
		return false, fmt.Errorf("service: failed to toggle payment: %w", err)
	}

	l.Info().Int64("order_id", id).Bool("paid", paid).Msg("service: payment status changed")
	return paid, nil
}

func (s *service) Statistics(ctx context.Context) (*Statistics, error) {
	orders, err := s.orderRepo.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to load orders for statistics")
		return nil, fmt.Errorf("service: failed to compute statistics: %w", err)
	}

	return ComputeStatistics(orders), nil
}

func (s *service) Flavors() []string {
	return Flavors()
}
