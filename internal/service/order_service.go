package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"storefront/internal/api"
	"storefront/internal/domain"
	"storefront/internal/logger"
	"storefront/internal/trace"
)

// OrderService order history, tracking and the admin status board
type OrderService struct {
	api *api.Client
	log *zap.Logger
}

func NewOrderService(client *api.Client, log *zap.Logger) *OrderService {
	return &OrderService{api: client, log: logger.OrNop(log).Named("orders")}
}

// Tracking customer facing progress of an order
type Tracking struct {
	Label string `json:"label"`
	Step  int    `json:"step"`
	Note  string `json:"note,omitempty"`
}

var statusMap = map[domain.OrderStatus]Tracking{
	domain.OrderStatusPending:   {Label: "Pendiente", Step: 0},
	domain.OrderStatusPaid:      {Label: "En proceso", Step: 1},
	domain.OrderStatusPreparing: {Label: "En proceso", Step: 1},
	domain.OrderStatusApproved:  {Label: "En proceso", Step: 1},
	domain.OrderStatusDelivered: {Label: "Completado", Step: 2, Note: "El delivery va en camino"},
}

// TrackingOf maps a status to its tracker; unknown statuses show their raw value
func TrackingOf(s domain.OrderStatus) Tracking {
	if t, ok := statusMap[s]; ok {
		return t
	}
	return Tracking{Label: string(s), Step: 0}
}

type TrackedOrder struct {
	domain.Order
	Tracking Tracking `json:"tracking"`
}

// MyOrders history of the caller with tracking info
func (s *OrderService) MyOrders(ctx context.Context, as api.TokenSource) ([]TrackedOrder, error) {
	env, err := s.api.WithTokenSource(as).ListOrders(ctx, false)
	if err != nil {
		return nil, err
	}
	out := make([]TrackedOrder, 0, len(env.Items))
	for _, o := range env.Items {
		out = append(out, TrackedOrder{Order: o, Tracking: TrackingOf(o.Status)})
	}
	return out, nil
}

func (s *OrderService) AllOrders(ctx context.Context, as Principal) ([]domain.Order, error) {
	if err := requireAdmin(as); err != nil {
		return nil, err
	}
	env, err := s.api.WithTokenSource(as).ListOrders(ctx, true)
	if err != nil {
		return nil, err
	}
	return env.Items, nil
}

func (s *OrderService) GetOrder(ctx context.Context, as Principal, id int64) (*domain.Order, error) {
	if err := requireAdmin(as); err != nil {
		return nil, err
	}
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.api.WithTokenSource(as).GetOrder(ctx, id)
}

// UpdateStatus sets one of the operator assignable statuses
func (s *OrderService) UpdateStatus(ctx context.Context, as Principal, id int64, status domain.OrderStatus) (*domain.Order, error) {
	if err := requireAdmin(as); err != nil {
		return nil, err
	}
	if id <= 0 || !status.Assignable() {
		return nil, fmt.Errorf("%w: status %q", ErrInvalidInput, status)
	}
	o, err := s.api.WithTokenSource(as).UpdateOrderStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.log.Info("order status changed", zap.Int64("order_id", id), zap.String("status", string(status)), trace.Field(ctx))
	return o, nil
}
