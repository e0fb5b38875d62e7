package planning

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/moldshop/backend/internal/application/inventory"
	"github.com/moldshop/backend/internal/domain/material"
	"github.com/moldshop/backend/internal/domain/planning"
	"github.com/moldshop/backend/internal/domain/shared"
)

// MovementRecorder is the slice of the movement service the order lifecycle
// needs: consuming reserved components at start and receiving finished stock
// at completion.
type MovementRecorder interface {
	ProcessMovement(ctx context.Context, orgID uuid.UUID, req inventory.MovementRequest) (*inventory.MovementResult, error)
}

// OrderService turns MRP plans into production order trees and drives the
// order lifecycle. Stock only moves through the movement service, which
// re-validates balances under lock; reservations are planning intent.
type OrderService struct {
	txScope        TransactionScope
	mrp            *MRPService
	movements      MovementRecorder
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewOrderService creates a new production order service
func NewOrderService(
	txScope TransactionScope,
	mrp *MRPService,
	movements MovementRecorder,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		txScope:        txScope,
		mrp:            mrp,
		movements:      movements,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// CreateFromPlan explodes the demand and commits the resulting order tree in
// one transaction: one order per PRODUCE node, linked through ParentOrderID,
// and one pending reservation per component an order will consume. Plans with
// unresolved nodes are rejected before anything is written.
func (s *OrderService) CreateFromPlan(ctx context.Context, orgID uuid.UUID, req CreateOrdersRequest) (*CreateOrdersResult, error) {
	plan, err := s.mrp.Simulate(ctx, orgID, SimulatePlanRequest{ProductCode: req.ProductCode, Quantity: req.Quantity})
	if err != nil {
		return nil, err
	}
	if plan.HasUnresolved() {
		return nil, shared.NewDomainError("CYCLE_DETECTED",
			"Plan for "+plan.Code+" contains unresolved nodes and cannot be ordered")
	}

	result := &CreateOrdersResult{Plan: plan}
	var events []shared.DomainEvent

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		rootNumber := generateOrderNumber()
		seq := 0
		root, err := s.createOrderNode(ctx, repos, orgID, plan, rootNumber, nil, &seq, req, result)
		if err != nil {
			return err
		}
		result.RootOrder = root

		for _, order := range result.Orders {
			events = append(events, order.GetDomainEvents()...)
			order.ClearDomainEvents()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, events)

	s.logger.Info("production orders created from plan",
		zap.String("org_id", orgID.String()),
		zap.String("root_order", result.RootOrder.OrderNumber),
		zap.Int("orders", len(result.Orders)),
		zap.Int("reservations", result.ReservationCount),
	)
	return result, nil
}

// createOrderNode creates the order for one PRODUCE node, its reservations
// for every direct component, and recurses into PRODUCE children.
func (s *OrderService) createOrderNode(
	ctx context.Context,
	repos TransactionalRepositories,
	orgID uuid.UUID,
	node *planning.MRPPlanItem,
	orderNumber string,
	parentID *uuid.UUID,
	seq *int,
	req CreateOrdersRequest,
	result *CreateOrdersResult,
) (*planning.ProductionOrder, error) {
	order, err := planning.NewProductionOrder(orgID, orderNumber, node.Code, node.NetRequirement)
	if err != nil {
		return nil, err
	}
	if parentID != nil {
		order.SetParent(*parentID)
	} else {
		if req.DueDate != nil {
			order.SetDueDate(*req.DueDate)
		}
		order.Notes = req.Notes
	}
	if err := repos.OrderRepo().Create(ctx, order); err != nil {
		return nil, err
	}
	result.Orders = append(result.Orders, order)

	// Every direct component is reserved at its gross requirement: that is
	// what this order draws from stock when it starts. PRODUCE children also
	// get their own replenishing child order.
	var reservations []*planning.MaterialReservation
	for _, child := range node.Children {
		r, err := planning.NewMaterialReservation(orgID, order.ID, child.Code, child.RequiredQuantity)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, r)

		if child.Action == planning.PlanActionProduce && child.NetRequirement.IsPositive() {
			*seq++
			childNumber := fmt.Sprintf("%s-%02d", orderNumberRoot(orderNumber), *seq)
			if _, err := s.createOrderNode(ctx, repos, orgID, child, childNumber, &order.ID, seq, req, result); err != nil {
				return nil, err
			}
		}
	}
	if len(reservations) > 0 {
		if err := repos.ReservationRepo().CreateBatch(ctx, reservations); err != nil {
			return nil, err
		}
		result.ReservationCount += len(reservations)
	}

	return order, nil
}

// StartOrder moves an order to IN_PROGRESS and consumes its pending
// reservations as OUT_PROD movements tagged with the order number.
//
// Each movement commits on its own and its reservation is flipped to CONSUMED
// right behind it. If a later movement fails the order stays PLANNED with the
// already-drawn components marked consumed, so a retry resumes with the
// remaining pending reservations instead of drawing the same stock twice.
func (s *OrderService) StartOrder(ctx context.Context, orgID, orderID uuid.UUID) (*planning.ProductionOrder, error) {
	var order *planning.ProductionOrder
	var pending []planning.MaterialReservation

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		if order, err = repos.OrderRepo().FindByID(ctx, orgID, orderID); err != nil {
			return err
		}
		if order.Status != planning.OrderStatusPlanned {
			return shared.NewDomainError("INVALID_STATE",
				"Order "+order.OrderNumber+" cannot start from status "+string(order.Status))
		}
		pending, err = repos.ReservationRepo().FindPendingByOrder(ctx, orgID, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	for i := range pending {
		res := &pending[i]
		_, err := s.movements.ProcessMovement(ctx, orgID, inventory.MovementRequest{
			MaterialCode:   res.ComponentCode,
			Type:           material.MovementTypeOutProd,
			Quantity:       res.Quantity,
			RelatedEntryID: order.OrderNumber,
			Note:           "consumed by order " + order.OrderNumber,
		})
		if err != nil {
			return nil, fmt.Errorf("consuming %s for order %s: %w", res.ComponentCode, order.OrderNumber, err)
		}
		if err := res.Consume(); err != nil {
			return nil, err
		}
		// Persisted per component, not after the loop: FindPendingByOrder
		// must skip this reservation if a later movement fails and the
		// caller retries.
		if err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			return repos.ReservationRepo().Update(ctx, res)
		}); err != nil {
			return nil, err
		}
	}

	var events []shared.DomainEvent
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := order.Start(); err != nil {
			return err
		}
		if err := repos.OrderRepo().SaveWithLock(ctx, order); err != nil {
			return err
		}
		events = order.GetDomainEvents()
		order.ClearDomainEvents()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, events)

	s.logger.Info("production order started",
		zap.String("org_id", orgID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.Int("reservations_consumed", len(pending)),
	)
	return order, nil
}

// CompleteOrder finishes an order and receives the produced quantity into
// stock as an IN movement. The receipt lands on the material row sharing the
// product's code; products without one complete without a receipt.
func (s *OrderService) CompleteOrder(ctx context.Context, orgID, orderID uuid.UUID, req CompleteOrderRequest) (*planning.ProductionOrder, error) {
	var order *planning.ProductionOrder
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.OrderRepo().FindByID(ctx, orgID, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if order.Status != planning.OrderStatusInProgress {
		return nil, shared.NewDomainError("INVALID_STATE",
			"Order "+order.OrderNumber+" cannot complete from status "+string(order.Status))
	}

	lotNumber := strings.TrimSpace(req.LotNumber)
	if lotNumber == "" {
		lotNumber = order.OrderNumber
	}
	_, err = s.movements.ProcessMovement(ctx, orgID, inventory.MovementRequest{
		MaterialCode:   order.ProductCode,
		Type:           material.MovementTypeIn,
		Quantity:       order.Quantity,
		LotNumber:      lotNumber,
		RelatedEntryID: order.OrderNumber,
		Note:           req.Note,
	})
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("receiving output of order %s: %w", order.OrderNumber, err)
	}
	if errors.Is(err, shared.ErrNotFound) {
		s.logger.Warn("order output has no material row, completing without receipt",
			zap.String("order_number", order.OrderNumber),
			zap.String("product_code", order.ProductCode),
		)
	}

	var events []shared.DomainEvent
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := order.Complete(); err != nil {
			return err
		}
		if err := repos.OrderRepo().SaveWithLock(ctx, order); err != nil {
			return err
		}
		events = order.GetDomainEvents()
		order.ClearDomainEvents()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, events)

	s.logger.Info("production order completed",
		zap.String("org_id", orgID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("lot_number", lotNumber),
	)
	return order, nil
}

// CancelOrder cancels a planned order, its pending reservations and,
// recursively, its planned children. A running child blocks the cancel.
func (s *OrderService) CancelOrder(ctx context.Context, orgID, orderID uuid.UUID) (*planning.ProductionOrder, error) {
	var order *planning.ProductionOrder
	var events []shared.DomainEvent

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		if order, err = repos.OrderRepo().FindByID(ctx, orgID, orderID); err != nil {
			return err
		}
		if err := s.cancelTree(ctx, repos, orgID, order, &events); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, events)

	s.logger.Info("production order cancelled",
		zap.String("org_id", orgID.String()),
		zap.String("order_number", order.OrderNumber),
	)
	return order, nil
}

func (s *OrderService) cancelTree(
	ctx context.Context,
	repos TransactionalRepositories,
	orgID uuid.UUID,
	order *planning.ProductionOrder,
	events *[]shared.DomainEvent,
) error {
	children, err := repos.OrderRepo().FindChildren(ctx, orgID, order.ID)
	if err != nil {
		return err
	}
	for i := range children {
		child := &children[i]
		if child.Status.IsTerminal() {
			continue
		}
		if child.Status == planning.OrderStatusInProgress {
			return shared.NewDomainError("INVALID_STATE",
				"Cannot cancel "+order.OrderNumber+": child order "+child.OrderNumber+" is in progress")
		}
		if err := s.cancelTree(ctx, repos, orgID, child, events); err != nil {
			return err
		}
	}

	if err := order.Cancel(); err != nil {
		return err
	}
	pending, err := repos.ReservationRepo().FindPendingByOrder(ctx, orgID, order.ID)
	if err != nil {
		return err
	}
	for i := range pending {
		if err := pending[i].Cancel(); err != nil {
			return err
		}
		if err := repos.ReservationRepo().Update(ctx, &pending[i]); err != nil {
			return err
		}
	}
	if err := repos.OrderRepo().SaveWithLock(ctx, order); err != nil {
		return err
	}
	*events = append(*events, order.GetDomainEvents()...)
	order.ClearDomainEvents()
	return nil
}

// GetOrder returns an order with its reservations and direct children
func (s *OrderService) GetOrder(ctx context.Context, orgID, orderID uuid.UUID) (*OrderDetail, error) {
	detail := &OrderDetail{}
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		if detail.Order, err = repos.OrderRepo().FindByID(ctx, orgID, orderID); err != nil {
			return err
		}
		if detail.Reservations, err = repos.ReservationRepo().FindByOrder(ctx, orgID, orderID); err != nil {
			return err
		}
		detail.Children, err = repos.OrderRepo().FindChildren(ctx, orgID, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// ListOrders returns a page of production orders
func (s *OrderService) ListOrders(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]planning.ProductionOrder, int64, error) {
	var orders []planning.ProductionOrder
	var total int64
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		if orders, err = repos.OrderRepo().FindAll(ctx, orgID, filter); err != nil {
			return err
		}
		total, err = repos.OrderRepo().Count(ctx, orgID, filter)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (s *OrderService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish order events", zap.Error(err))
	}
}

// generateOrderNumber builds a human-readable unique order number
func generateOrderNumber() string {
	return fmt.Sprintf("MO-%s-%s",
		time.Now().Format("20060102"),
		strings.ToUpper(uuid.New().String()[:8]))
}

// orderNumberRoot strips a child sequence suffix back to the root number
func orderNumberRoot(orderNumber string) string {
	parts := strings.Split(orderNumber, "-")
	if len(parts) > 3 {
		return strings.Join(parts[:3], "-")
	}
	return orderNumber
}
