package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/BlundaBranco/SweetCookies-Manager/internal/order"
)

type OrderItemRequest struct {
	Flavor   string `json:"flavor" validate:"required"`
	Quantity int    `json:"quantity" validate:"gt=0"`
}

type CreateOrderRequest struct {
	Day           string             `json:"day" validate:"required"`
	Name          string             `json:"name" validate:"required"`
	BasePrice     *decimal.Decimal   `json:"base_price" validate:"required"`
	ShippingPrice *decimal.Decimal   `json:"shipping_price,omitempty"`
	Address       string             `json:"address,omitempty"`
	TimeWindow    string             `json:"time_window,omitempty"`
	Items         []OrderItemRequest `json:"items" validate:"dive"`
}

type UpdateOrderRequest struct {
	Day           string             `json:"day" validate:"required"`
	Name          string             `json:"name" validate:"required"`
	BasePrice     *decimal.Decimal   `json:"base_price" validate:"required"`
	ShippingPrice *decimal.Decimal   `json:"shipping_price,omitempty"`
	Address       string             `json:"address,omitempty"`
	TimeWindow    string             `json:"time_window,omitempty"`
	Paid          *bool              `json:"paid,omitempty"`
	Items         []OrderItemRequest `json:"items" validate:"dive"`
}

type OrderItemResponse struct {
	ID       int64  `json:"id"`
	Flavor   string `json:"flavor"`
	Quantity int    `json:"quantity"`
}

type OrderResponse struct {
	ID            int64               `json:"id"`
	Day           string              `json:"day"`
	Name          string              `json:"name"`
	BasePrice     decimal.Decimal     `json:"base_price"`
	ShippingPrice decimal.Decimal     `json:"shipping_price"`
	Address       string              `json:"address"`
	TimeWindow    string              `json:"time_window"`
	Paid          bool                `json:"paid"`
	CreatedAt     time.Time           `json:"created_at"`
	Total         decimal.Decimal     `json:"total"`
	Items         []OrderItemResponse `json:"items"`
}

type OrderHandler struct {
	service  order.Service
	validate *validator.Validate
}

func NewOrderHandler(service order.Service) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: newValidator(),
	}
}

func (h *OrderHandler) RegisterRoutes(router chi.Router) {
	router.Get("/orders", h.handleListOrders)
	router.Post("/orders", h.handleCreateOrder)
	router.Get("/orders/{id}", h.handleGetOrderByID)
	router.Put("/orders/{id}", h.handleUpdateOrder)
	router.Delete("/orders/{id}", h.handleDeleteOrder)
	router.Post("/orders/{id}/toggle-payment", h.handleTogglePayment)
	router.Get("/statistics", h.handleStatistics)
	router.Get("/flavors", h.handleFlavors)
}

func toOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemResponse{ID: it.ID, Flavor: it.Flavor, Quantity: it.Quantity})
	}

	return OrderResponse{
		ID:            o.ID,
		Day:           o.Day,
		Name:          o.Name,
		BasePrice:     o.BasePrice,
		ShippingPrice: o.ShippingPrice,
		Address:       o.Address,
		TimeWindow:    o.TimeWindow,
		Paid:          o.Paid,
		CreatedAt:     o.CreatedAt,
		Total:         o.Total(),
		Items:         items,
	}
}

func toDomainItems(in []OrderItemRequest) []order.OrderItem {
	items := make([]order.OrderItem, 0, len(in))
	for _, it := range in {
		items = append(items, order.OrderItem{Flavor: it.Flavor, Quantity: it.Quantity})
	}
	return items
}

func shippingOrZero(p *decimal.Decimal) decimal.Decimal {
	if p == nil {
		return decimal.Zero
	}
	return *p
}

func (h *OrderHandler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListOrders(r.Context())
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to list orders")
		return
	}

	payload := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		payload = append(payload, toOrderResponse(&orders[i]))
	}

	respondWithSuccess(w, http.StatusOK, "orders", payload)
}

func (h *OrderHandler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var requestPayload CreateOrderRequest

	if err := decodeJSON(r, &requestPayload); err != nil {
		log.Warn().Err(err).Msg("Failed to decode request body")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if !validateStruct(w, h.validate, requestPayload) {
		return
	}

	domainOrder := order.Order{
		Day:           requestPayload.Day,
		Name:          requestPayload.Name,
		BasePrice:     *requestPayload.BasePrice,
		ShippingPrice: shippingOrZero(requestPayload.ShippingPrice),
		Address:       requestPayload.Address,
		TimeWindow:    requestPayload.TimeWindow,
		Items:         toDomainItems(requestPayload.Items),
	}

	created, err := h.service.CreateOrder(r.Context(), &domainOrder)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to create order")
		return
	}

	respondWithSuccess(w, http.StatusCreated, "order_id", created.ID)
}

func (h *OrderHandler) handleGetOrderByID(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseID(w, r)
	if !ok {
		return
	}

	found, err := h.service.GetOrderByID(r.Context(), orderID)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to get order by id")
		return
	}

	respondWithSuccess(w, http.StatusOK, "order", toOrderResponse(found))
}

func (h *OrderHandler) handleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseID(w, r)
	if !ok {
		return
	}

	var requestPayload UpdateOrderRequest
	if err := decodeJSON(r, &requestPayload); err != nil {
		log.Warn().Err(err).Int64("order_id", orderID).Msg("Failed to decode request body")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if !validateStruct(w, h.validate, requestPayload) {
		return
	}

	domainOrder := order.Order{
		ID:            orderID,
		Day:           requestPayload.Day,
		Name:          requestPayload.Name,
		BasePrice:     *requestPayload.BasePrice,
		ShippingPrice: shippingOrZero(requestPayload.ShippingPrice),
		Address:       requestPayload.Address,
		TimeWindow:    requestPayload.TimeWindow,
		Items:         toDomainItems(requestPayload.Items),
	}
	// A full replace: an omitted paid flag means unpaid.
	if requestPayload.Paid != nil {
		domainOrder.Paid = *requestPayload.Paid
	}

	if err := h.service.UpdateOrder(r.Context(), &domainOrder); err != nil {
		respondWithServiceError(w, r, err, "Failed to update order")
		return
	}

	respondWithSuccess(w, http.StatusOK, "", nil)
}

func (h *OrderHandler) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteOrder(r.Context(), orderID); err != nil {
		respondWithServiceError(w, r, err, "Failed to delete order")
		return
	}

	respondWithSuccess(w, http.StatusOK, "", nil)
}

func (h *OrderHandler) handleTogglePayment(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseID(w, r)
	if !ok {
		return
	}

	paid, err := h.service.TogglePayment(r.Context(), orderID)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to toggle payment")
		return
	}

	respondWithSuccess(w, http.StatusOK, "paid", paid)
}

func (h *OrderHandler) handleStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Statistics(r.Context())
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to compute statistics")
		return
	}

	respondWithSuccess(w, http.StatusOK, "statistics", stats)
}

func (h *OrderHandler) handleFlavors(w http.ResponseWriter, r *http.Request) {
	respondWithSuccess(w, http.StatusOK, "flavors", h.service.Flavors())
}
