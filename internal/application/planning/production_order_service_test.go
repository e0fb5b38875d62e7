package planning

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/moldshop/backend/internal/application/inventory"
	"github.com/moldshop/backend/internal/domain/material"
	"github.com/moldshop/backend/internal/domain/planning"
	"github.com/moldshop/backend/internal/domain/shared"
)

// ---- in-memory fakes ----

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*planning.ProductionOrder
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uuid.UUID]*planning.ProductionOrder)}
}

func (r *fakeOrderRepo) Create(_ context.Context, order *planning.ProductionOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *order
	r.orders[order.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) FindByID(_ context.Context, orgID, id uuid.UUID) (*planning.ProductionOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.orders[id]; ok && o.OrgID == orgID {
		cp := *o
		return &cp, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeOrderRepo) FindByOrderNumber(_ context.Context, orgID uuid.UUID, orderNumber string) (*planning.ProductionOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.OrgID == orgID && o.OrderNumber == orderNumber {
			cp := *o
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeOrderRepo) FindAll(_ context.Context, orgID uuid.UUID, _ shared.Filter) ([]planning.ProductionOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []planning.ProductionOrder
	for _, o := range r.orders {
		if o.OrgID == orgID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) Count(_ context.Context, orgID uuid.UUID, _ shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, o := range r.orders {
		if o.OrgID == orgID {
			n++
		}
	}
	return n, nil
}

func (r *fakeOrderRepo) FindChildren(_ context.Context, orgID, parentID uuid.UUID) ([]planning.ProductionOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []planning.ProductionOrder
	for _, o := range r.orders {
		if o.OrgID == orgID && o.ParentOrderID != nil && *o.ParentOrderID == parentID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) Save(ctx context.Context, order *planning.ProductionOrder) error {
	return r.Create(ctx, order)
}

func (r *fakeOrderRepo) SaveWithLock(ctx context.Context, order *planning.ProductionOrder) error {
	return r.Create(ctx, order)
}

type fakeReservationRepo struct {
	mu           sync.Mutex
	reservations map[uuid.UUID]*planning.MaterialReservation
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{reservations: make(map[uuid.UUID]*planning.MaterialReservation)}
}

func (r *fakeReservationRepo) Create(_ context.Context, res *planning.MaterialReservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *res
	r.reservations[res.ID] = &cp
	return nil
}

func (r *fakeReservationRepo) CreateBatch(ctx context.Context, rs []*planning.MaterialReservation) error {
	for _, res := range rs {
		if err := r.Create(ctx, res); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeReservationRepo) FindByOrder(_ context.Context, orgID, orderID uuid.UUID) ([]planning.MaterialReservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []planning.MaterialReservation
	for _, res := range r.reservations {
		if res.OrgID == orgID && res.OrderID == orderID {
			out = append(out, *res)
		}
	}
	return out, nil
}

func (r *fakeReservationRepo) FindPendingByOrder(ctx context.Context, orgID, orderID uuid.UUID) ([]planning.MaterialReservation, error) {
	all, err := r.FindByOrder(ctx, orgID, orderID)
	if err != nil {
		return nil, err
	}
	var out []planning.MaterialReservation
	for _, res := range all {
		if res.Status == planning.ReservationStatusPending {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *fakeReservationRepo) Update(ctx context.Context, res *planning.MaterialReservation) error {
	return r.Create(ctx, res)
}

type fakeProductRepo struct {
	products map[string]*planning.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[string]*planning.Product)}
}

func (r *fakeProductRepo) add(t *testing.T, orgID uuid.UUID, code, name, unit string) {
	t.Helper()
	p, err := planning.NewProduct(orgID, code, name, unit)
	require.NoError(t, err)
	r.products[code] = p
}

func (r *fakeProductRepo) FindByID(_ context.Context, orgID, id uuid.UUID) (*planning.Product, error) {
	for _, p := range r.products {
		if p.OrgID == orgID && p.ID == id {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeProductRepo) FindByCode(_ context.Context, orgID uuid.UUID, code string) (*planning.Product, error) {
	if p, ok := r.products[code]; ok && p.OrgID == orgID {
		return p, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeProductRepo) FindAll(_ context.Context, orgID uuid.UUID, _ shared.Filter) ([]planning.Product, error) {
	var out []planning.Product
	for _, p := range r.products {
		if p.OrgID == orgID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) Count(_ context.Context, orgID uuid.UUID, _ shared.Filter) (int64, error) {
	items, _ := r.FindAll(context.Background(), orgID, shared.DefaultFilter())
	return int64(len(items)), nil
}

func (r *fakeProductRepo) Save(_ context.Context, p *planning.Product) error {
	r.products[p.Code] = p
	return nil
}

func (r *fakeProductRepo) ExistsByCode(_ context.Context, orgID uuid.UUID, code string) (bool, error) {
	p, ok := r.products[code]
	return ok && p.OrgID == orgID, nil
}

type fakeBOMRepo struct {
	boms map[string]*planning.BillOfMaterials
}

func newFakeBOMRepo() *fakeBOMRepo {
	return &fakeBOMRepo{boms: make(map[string]*planning.BillOfMaterials)}
}

func (r *fakeBOMRepo) FindByID(_ context.Context, orgID, id uuid.UUID) (*planning.BillOfMaterials, error) {
	for _, b := range r.boms {
		if b.OrgID == orgID && b.ID == id {
			return b, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeBOMRepo) FindActiveByProductCode(_ context.Context, orgID uuid.UUID, productCode string) (*planning.BillOfMaterials, error) {
	if b, ok := r.boms[productCode]; ok && b.OrgID == orgID && b.Active {
		return b, nil
	}
	return nil, shared.ErrBOMNotFound
}

func (r *fakeBOMRepo) FindByProductCode(_ context.Context, orgID uuid.UUID, productCode string) ([]planning.BillOfMaterials, error) {
	if b, ok := r.boms[productCode]; ok && b.OrgID == orgID {
		return []planning.BillOfMaterials{*b}, nil
	}
	return nil, nil
}

func (r *fakeBOMRepo) Save(_ context.Context, bom *planning.BillOfMaterials) error {
	r.boms[bom.ProductCode] = bom
	return nil
}

func (r *fakeBOMRepo) Activate(_ context.Context, orgID, bomID uuid.UUID) error {
	for _, b := range r.boms {
		if b.OrgID == orgID && b.ID == bomID {
			b.Active = true
			return nil
		}
	}
	return shared.ErrNotFound
}

type fakeMaterialLookup struct {
	materials map[string]*material.Material
}

func newFakeMaterialLookup() *fakeMaterialLookup {
	return &fakeMaterialLookup{materials: make(map[string]*material.Material)}
}

func (r *fakeMaterialLookup) add(t *testing.T, orgID uuid.UUID, code string, stock float64, leadTime int) {
	t.Helper()
	m, err := material.NewMaterial(orgID, code, code+" material", "kg", material.CategoryResin)
	require.NoError(t, err)
	require.NoError(t, m.SetLeadTimeDays(leadTime))
	m.CurrentStock = decimal.NewFromFloat(stock)
	r.materials[code] = m
}

func (r *fakeMaterialLookup) FindByID(_ context.Context, orgID, id uuid.UUID) (*material.Material, error) {
	for _, m := range r.materials {
		if m.OrgID == orgID && m.ID == id {
			return m, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeMaterialLookup) FindByCode(_ context.Context, orgID uuid.UUID, code string) (*material.Material, error) {
	if m, ok := r.materials[code]; ok && m.OrgID == orgID {
		return m, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeMaterialLookup) FindAll(_ context.Context, _ uuid.UUID, _ shared.Filter) ([]material.Material, error) {
	return nil, nil
}

func (r *fakeMaterialLookup) Count(_ context.Context, _ uuid.UUID, _ shared.Filter) (int64, error) {
	return 0, nil
}

func (r *fakeMaterialLookup) Save(_ context.Context, m *material.Material) error {
	r.materials[m.Code] = m
	return nil
}

func (r *fakeMaterialLookup) SaveWithLock(ctx context.Context, m *material.Material) error {
	return r.Save(ctx, m)
}

func (r *fakeMaterialLookup) FindBelowMinimum(_ context.Context, _ uuid.UUID) ([]material.Material, error) {
	return nil, nil
}

// fakeMovements records movement requests and can fail on demand
type fakeMovements struct {
	mu         sync.Mutex
	requests   []inventory.MovementRequest
	failWith   error
	failOnCode string // narrows failWith to one material and clears after it fires
}

func (f *fakeMovements) ProcessMovement(_ context.Context, _ uuid.UUID, req inventory.MovementRequest) (*inventory.MovementResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil && (f.failOnCode == "" || f.failOnCode == req.MaterialCode) {
		err := f.failWith
		if f.failOnCode != "" {
			f.failWith = nil
			f.failOnCode = ""
		}
		return nil, err
	}
	f.requests = append(f.requests, req)
	return &inventory.MovementResult{MaterialCode: req.MaterialCode, MovementType: req.Type}, nil
}

// ---- fixture ----
//
// CRATE is assembled from one LID (a sub-assembly) and 2 kg of PP resin; a
// LID takes 0.5 kg of PP. LID stock partially covers its requirement.

type orderFixture struct {
	service      *OrderService
	orders       *fakeOrderRepo
	reservations *fakeReservationRepo
	materials    *fakeMaterialLookup
	products     *fakeProductRepo
	boms         *fakeBOMRepo
	movements    *fakeMovements
	orgID        uuid.UUID
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	orgID := uuid.New()

	materials := newFakeMaterialLookup()
	materials.add(t, orgID, "PP-H030", 1000, 7)
	materials.add(t, orgID, "LID", 40, 0)
	materials.add(t, orgID, "CRATE", 0, 0)

	products := newFakeProductRepo()
	products.add(t, orgID, "CRATE", "Stacking crate", "pcs")
	products.add(t, orgID, "LID", "Crate lid", "pcs")

	boms := newFakeBOMRepo()
	crateBOM, err := planning.NewBillOfMaterials(orgID, "CRATE", 1)
	require.NoError(t, err)
	require.NoError(t, crateBOM.AddItem("LID", decimal.NewFromInt(1), decimal.Zero))
	require.NoError(t, crateBOM.AddItem("PP-H030", decimal.NewFromInt(2), decimal.Zero))
	require.NoError(t, crateBOM.Activate())
	require.NoError(t, boms.Save(context.Background(), crateBOM))

	lidBOM, err := planning.NewBillOfMaterials(orgID, "LID", 1)
	require.NoError(t, err)
	require.NoError(t, lidBOM.AddItem("PP-H030", decimal.NewFromFloat(0.5), decimal.Zero))
	require.NoError(t, lidBOM.Activate())
	require.NoError(t, boms.Save(context.Background(), lidBOM))

	orders := newFakeOrderRepo()
	reservations := newFakeReservationRepo()
	movements := &fakeMovements{}

	gateway := NewRepositoryPlanningGateway(materials, products, boms)
	mrp := NewMRPService(gateway, zap.NewNop())
	scope := NewNoOpTransactionScope(orders, reservations)
	service := NewOrderService(scope, mrp, movements, nil, zap.NewNop())

	return &orderFixture{
		service:      service,
		orders:       orders,
		reservations: reservations,
		materials:    materials,
		products:     products,
		boms:         boms,
		movements:    movements,
		orgID:        orgID,
	}
}

func (f *orderFixture) createCrateOrders(t *testing.T, qty int64) *CreateOrdersResult {
	t.Helper()
	res, err := f.service.CreateFromPlan(context.Background(), f.orgID, CreateOrdersRequest{
		ProductCode: "CRATE",
		Quantity:    decimal.NewFromInt(qty),
	})
	require.NoError(t, err)
	return res
}

// ---- tests ----

func TestCreateFromPlan(t *testing.T) {
	ctx := context.Background()

	t.Run("Builds the order tree with reservations", func(t *testing.T) {
		f := newOrderFixture(t)

		// 100 crates: LID net = 100-40 = 60 (child order), PP covered by stock
		res := f.createCrateOrders(t, 100)

		require.Len(t, res.Orders, 2)
		root := res.RootOrder
		assert.Equal(t, "CRATE", root.ProductCode)
		assert.True(t, root.Quantity.Equal(decimal.NewFromInt(100)))
		assert.Nil(t, root.ParentOrderID)

		children, err := f.orders.FindChildren(ctx, f.orgID, root.ID)
		require.NoError(t, err)
		require.Len(t, children, 1)
		assert.Equal(t, "LID", children[0].ProductCode)
		assert.True(t, children[0].Quantity.Equal(decimal.NewFromInt(60)))
		assert.Contains(t, children[0].OrderNumber, root.OrderNumber)

		// root reserves its gross component needs: 100 LID + 200 PP
		rootRes, err := f.reservations.FindByOrder(ctx, f.orgID, root.ID)
		require.NoError(t, err)
		require.Len(t, rootRes, 2)

		// LID order reserves 30 PP (60 x 0.5)
		lidRes, err := f.reservations.FindByOrder(ctx, f.orgID, children[0].ID)
		require.NoError(t, err)
		require.Len(t, lidRes, 1)
		assert.Equal(t, "PP-H030", lidRes[0].ComponentCode)
		assert.True(t, lidRes[0].Quantity.Equal(decimal.NewFromInt(30)))

		assert.Equal(t, 3, res.ReservationCount)
	})

	t.Run("Rejects plans with cycles", func(t *testing.T) {
		f := newOrderFixture(t)
		f.products.add(t, f.orgID, "A", "Part A", "pcs")
		f.products.add(t, f.orgID, "B", "Part B", "pcs")
		f.materials.add(t, f.orgID, "A", 0, 0)
		f.materials.add(t, f.orgID, "B", 0, 0)

		bomA, err := planning.NewBillOfMaterials(f.orgID, "A", 1)
		require.NoError(t, err)
		require.NoError(t, bomA.AddItem("B", decimal.NewFromInt(1), decimal.Zero))
		require.NoError(t, bomA.Activate())
		require.NoError(t, f.boms.Save(ctx, bomA))

		bomB, err := planning.NewBillOfMaterials(f.orgID, "B", 1)
		require.NoError(t, err)
		require.NoError(t, bomB.AddItem("A", decimal.NewFromInt(1), decimal.Zero))
		require.NoError(t, bomB.Activate())
		require.NoError(t, f.boms.Save(ctx, bomB))

		_, err = f.service.CreateFromPlan(ctx, f.orgID, CreateOrdersRequest{
			ProductCode: "A",
			Quantity:    decimal.NewFromInt(10),
		})
		require.Error(t, err)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "CYCLE_DETECTED", de.Code)

		total, err := f.orders.Count(ctx, f.orgID, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("Root without active BOM fails", func(t *testing.T) {
		f := newOrderFixture(t)
		f.products.add(t, f.orgID, "PALLET", "Pallet", "pcs")

		_, err := f.service.CreateFromPlan(ctx, f.orgID, CreateOrdersRequest{
			ProductCode: "PALLET",
			Quantity:    decimal.NewFromInt(5),
		})
		assert.ErrorIs(t, err, shared.ErrBOMNotFound)
	})
}

func TestStartOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("Consumes reservations as production movements", func(t *testing.T) {
		f := newOrderFixture(t)
		res := f.createCrateOrders(t, 100)

		started, err := f.service.StartOrder(ctx, f.orgID, res.RootOrder.ID)
		require.NoError(t, err)
		assert.Equal(t, planning.OrderStatusInProgress, started.Status)

		require.Len(t, f.movements.requests, 2)
		for _, req := range f.movements.requests {
			assert.Equal(t, material.MovementTypeOutProd, req.Type)
			assert.Equal(t, started.OrderNumber, req.RelatedEntryID)
		}

		pending, err := f.reservations.FindPendingByOrder(ctx, f.orgID, started.ID)
		require.NoError(t, err)
		assert.Empty(t, pending)
	})

	t.Run("Failed consumption leaves the order planned", func(t *testing.T) {
		f := newOrderFixture(t)
		res := f.createCrateOrders(t, 100)
		f.movements.failWith = shared.ErrInsufficientStock

		_, err := f.service.StartOrder(ctx, f.orgID, res.RootOrder.ID)
		require.ErrorIs(t, err, shared.ErrInsufficientStock)

		order, err := f.orders.FindByID(ctx, f.orgID, res.RootOrder.ID)
		require.NoError(t, err)
		assert.Equal(t, planning.OrderStatusPlanned, order.Status)
	})

	t.Run("Retry after partial failure consumes each component once", func(t *testing.T) {
		f := newOrderFixture(t)
		res := f.createCrateOrders(t, 100)
		f.movements.failWith = shared.ErrInsufficientStock
		f.movements.failOnCode = "PP-H030"

		_, err := f.service.StartOrder(ctx, f.orgID, res.RootOrder.ID)
		require.ErrorIs(t, err, shared.ErrInsufficientStock)

		order, err := f.orders.FindByID(ctx, f.orgID, res.RootOrder.ID)
		require.NoError(t, err)
		assert.Equal(t, planning.OrderStatusPlanned, order.Status)

		started, err := f.service.StartOrder(ctx, f.orgID, res.RootOrder.ID)
		require.NoError(t, err)
		assert.Equal(t, planning.OrderStatusInProgress, started.Status)

		// components drawn before the failure stay consumed across the retry
		counts := make(map[string]int)
		for _, req := range f.movements.requests {
			counts[req.MaterialCode]++
		}
		assert.Equal(t, map[string]int{"LID": 1, "PP-H030": 1}, counts)

		pending, err := f.reservations.FindPendingByOrder(ctx, f.orgID, started.ID)
		require.NoError(t, err)
		assert.Empty(t, pending)
	})

	t.Run("Cannot start twice", func(t *testing.T) {
		f := newOrderFixture(t)
		res := f.createCrateOrders(t, 100)
		_, err := f.service.StartOrder(ctx, f.orgID, res.RootOrder.ID)
		require.NoError(t, err)

		_, err = f.service.StartOrder(ctx, f.orgID, res.RootOrder.ID)
		require.Error(t, err)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "INVALID_STATE", de.Code)
	})
}

func TestCompleteOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("Receives the finished quantity under the order lot", func(t *testing.T) {
		f := newOrderFixture(t)
		res := f.createCrateOrders(t, 100)
		_, err := f.service.StartOrder(ctx, f.orgID, res.RootOrder.ID)
		require.NoError(t, err)
		f.movements.requests = nil

		completed, err := f.service.CompleteOrder(ctx, f.orgID, res.RootOrder.ID, CompleteOrderRequest{})
		require.NoError(t, err)
		assert.Equal(t, planning.OrderStatusCompleted, completed.Status)

		require.Len(t, f.movements.requests, 1)
		receipt := f.movements.requests[0]
		assert.Equal(t, material.MovementTypeIn, receipt.Type)
		assert.Equal(t, "CRATE", receipt.MaterialCode)
		assert.Equal(t, completed.OrderNumber, receipt.LotNumber)
		assert.True(t, receipt.Quantity.Equal(decimal.NewFromInt(100)))
	})

	t.Run("Cannot complete a planned order", func(t *testing.T) {
		f := newOrderFixture(t)
		res := f.createCrateOrders(t, 100)

		_, err := f.service.CompleteOrder(ctx, f.orgID, res.RootOrder.ID, CompleteOrderRequest{})
		require.Error(t, err)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "INVALID_STATE", de.Code)
	})
}

func TestCancelOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("Cancels the tree and releases reservations", func(t *testing.T) {
		f := newOrderFixture(t)
		res := f.createCrateOrders(t, 100)

		cancelled, err := f.service.CancelOrder(ctx, f.orgID, res.RootOrder.ID)
		require.NoError(t, err)
		assert.Equal(t, planning.OrderStatusCancelled, cancelled.Status)

		children, err := f.orders.FindChildren(ctx, f.orgID, res.RootOrder.ID)
		require.NoError(t, err)
		require.Len(t, children, 1)
		assert.Equal(t, planning.OrderStatusCancelled, children[0].Status)

		pending, err := f.reservations.FindPendingByOrder(ctx, f.orgID, res.RootOrder.ID)
		require.NoError(t, err)
		assert.Empty(t, pending)
	})

	t.Run("Running child blocks the cancel", func(t *testing.T) {
		f := newOrderFixture(t)
		res := f.createCrateOrders(t, 100)

		var child *planning.ProductionOrder
		for _, o := range res.Orders {
			if o.ParentOrderID != nil {
				child = o
			}
		}
		require.NotNil(t, child)
		_, err := f.service.StartOrder(ctx, f.orgID, child.ID)
		require.NoError(t, err)

		_, err = f.service.CancelOrder(ctx, f.orgID, res.RootOrder.ID)
		require.Error(t, err)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "INVALID_STATE", de.Code)
	})
}

func TestPlanningGatewayResolution(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	gateway := NewRepositoryPlanningGateway(f.materials, f.products, f.boms)

	t.Run("Material with product row is manufacturable", func(t *testing.T) {
		info, err := gateway.ComponentInfo(ctx, f.orgID, "LID")
		require.NoError(t, err)
		assert.True(t, info.Manufacturable)
		assert.True(t, info.AvailableStock.Equal(decimal.NewFromInt(40)))
	})

	t.Run("Material without product row is buy-only", func(t *testing.T) {
		info, err := gateway.ComponentInfo(ctx, f.orgID, "PP-H030")
		require.NoError(t, err)
		assert.False(t, info.Manufacturable)
		assert.Equal(t, 7, info.LeadTimeDays)
	})

	t.Run("Product without material row has zero stock", func(t *testing.T) {
		f.products.add(t, f.orgID, "HANDLE", "Handle", "pcs")
		info, err := gateway.ComponentInfo(ctx, f.orgID, "HANDLE")
		require.NoError(t, err)
		assert.True(t, info.Manufacturable)
		assert.True(t, info.AvailableStock.IsZero())
	})

	t.Run("Unknown code resolves to an empty component", func(t *testing.T) {
		info, err := gateway.ComponentInfo(ctx, f.orgID, "UNKNOWN")
		require.NoError(t, err)
		assert.False(t, info.Manufacturable)
		assert.True(t, info.AvailableStock.IsZero())
	})
}
