package material

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/moldshop/backend/internal/domain/shared"
	"github.com/moldshop/backend/internal/domain/shared/strategy"
)

// LotPickStrategyType defines how lots are ordered for consumption
type LotPickStrategyType string

const (
	// LotPickStrategyTypeFEFO picks lots expiring soonest first, creation date as tie-break
	LotPickStrategyTypeFEFO LotPickStrategyType = "FEFO"
	// LotPickStrategyTypeFIFO picks lots strictly by receipt order
	LotPickStrategyTypeFIFO LotPickStrategyType = "FIFO"
)

// IsValid checks if the strategy type is valid
func (t LotPickStrategyType) IsValid() bool {
	return t == LotPickStrategyTypeFEFO || t == LotPickStrategyTypeFIFO
}

// String returns the string representation
func (t LotPickStrategyType) String() string {
	return string(t)
}

// LotPick represents the planned deduction from a single lot
type LotPick struct {
	LotID          uuid.UUID
	LotNumber      string
	Quantity       decimal.Decimal // amount drawn from this lot
	RemainingInLot decimal.Decimal // lot quantity after the draw
	FullyConsumed  bool
}

// LotPickResult is the complete outcome of a lot selection
type LotPickResult struct {
	Picks          []LotPick
	TotalPicked    decimal.Decimal
	Shortfall      decimal.Decimal // requested quantity that no lot could cover
	FullyFulfilled bool
}

// LotPickStrategy selects which lots to draw from and how much from each.
// Selection is pure: it never mutates the lots it is given.
type LotPickStrategy interface {
	strategy.Strategy
	// StrategyType returns the lot pick strategy type
	StrategyType() LotPickStrategyType
	// SelectLots plans deductions against the given lots
	SelectLots(requestedQuantity decimal.Decimal, lots []StockLot) (*LotPickResult, error)
}

// FEFOLotPickStrategy picks lots closest to expiry first. Lots without an
// expiration date sort last; ties fall back to receipt order.
type FEFOLotPickStrategy struct {
	strategy.BaseStrategy
}

// NewFEFOLotPickStrategy creates a new FEFO lot pick strategy
func NewFEFOLotPickStrategy() *FEFOLotPickStrategy {
	return &FEFOLotPickStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			"fefo_lot_pick",
			strategy.StrategyTypeAllocation,
			"FEFO lot pick strategy - consumes lots closest to expiry first, oldest receipt as tie-break",
		),
	}
}

// StrategyType returns the lot pick strategy type
func (s *FEFOLotPickStrategy) StrategyType() LotPickStrategyType {
	return LotPickStrategyTypeFEFO
}

// SelectLots plans deductions in FEFO order
func (s *FEFOLotPickStrategy) SelectLots(requestedQuantity decimal.Decimal, lots []StockLot) (*LotPickResult, error) {
	if requestedQuantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.ErrInvalidQuantity
	}

	candidates := filterAllocatableLots(lots)
	sort.Slice(candidates, func(i, j int) bool {
		ei, ej := candidates[i].ExpirationDate, candidates[j].ExpirationDate
		if ei != nil && ej != nil {
			if !ei.Equal(*ej) {
				return ei.Before(*ej)
			}
		} else if ei != nil {
			return true // dated lots leave before undated ones
		} else if ej != nil {
			return false
		}
		return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
	})

	return planPicks(requestedQuantity, candidates), nil
}

// FIFOLotPickStrategy picks lots strictly in receipt order, ignoring expiry
type FIFOLotPickStrategy struct {
	strategy.BaseStrategy
}

// NewFIFOLotPickStrategy creates a new FIFO lot pick strategy
func NewFIFOLotPickStrategy() *FIFOLotPickStrategy {
	return &FIFOLotPickStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			"fifo_lot_pick",
			strategy.StrategyTypeAllocation,
			"FIFO lot pick strategy - consumes lots in receipt order",
		),
	}
}

// StrategyType returns the lot pick strategy type
func (s *FIFOLotPickStrategy) StrategyType() LotPickStrategyType {
	return LotPickStrategyTypeFIFO
}

// SelectLots plans deductions in receipt order
func (s *FIFOLotPickStrategy) SelectLots(requestedQuantity decimal.Decimal, lots []StockLot) (*LotPickResult, error) {
	if requestedQuantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.ErrInvalidQuantity
	}

	candidates := filterAllocatableLots(lots)
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
	})

	return planPicks(requestedQuantity, candidates), nil
}

// filterAllocatableLots returns lots the allocator may draw from
func filterAllocatableLots(lots []StockLot) []StockLot {
	candidates := make([]StockLot, 0, len(lots))
	for _, lot := range lots {
		if lot.IsAllocatable() {
			candidates = append(candidates, lot)
		}
	}
	return candidates
}

// planPicks walks the sorted lots and assigns draw quantities greedily
func planPicks(requestedQuantity decimal.Decimal, sorted []StockLot) *LotPickResult {
	picks := make([]LotPick, 0, len(sorted))
	remaining := requestedQuantity
	totalPicked := decimal.Zero

	for _, lot := range sorted {
		if remaining.IsZero() {
			break
		}
		if lot.CurrentQuantity.LessThanOrEqual(decimal.Zero) {
			continue
		}

		draw := decimal.Min(remaining, lot.CurrentQuantity)
		remainingInLot := lot.CurrentQuantity.Sub(draw)

		picks = append(picks, LotPick{
			LotID:          lot.ID,
			LotNumber:      lot.LotNumber,
			Quantity:       draw,
			RemainingInLot: remainingInLot,
			FullyConsumed:  remainingInLot.IsZero(),
		})

		totalPicked = totalPicked.Add(draw)
		remaining = remaining.Sub(draw)
	}

	return &LotPickResult{
		Picks:          picks,
		TotalPicked:    totalPicked,
		Shortfall:      remaining,
		FullyFulfilled: remaining.IsZero(),
	}
}

// LotPickStrategyFactory creates lot pick strategies
type LotPickStrategyFactory struct{}

// NewLotPickStrategyFactory creates a new factory
func NewLotPickStrategyFactory() *LotPickStrategyFactory {
	return &LotPickStrategyFactory{}
}

// GetStrategy returns a strategy by type
func (f *LotPickStrategyFactory) GetStrategy(strategyType LotPickStrategyType) (LotPickStrategy, error) {
	switch strategyType {
	case LotPickStrategyTypeFEFO:
		return NewFEFOLotPickStrategy(), nil
	case LotPickStrategyTypeFIFO:
		return NewFIFOLotPickStrategy(), nil
	default:
		return nil, shared.NewDomainError("INVALID_STRATEGY", "Unknown lot pick strategy type")
	}
}

// GetDefaultStrategy returns the default strategy (FEFO)
func (f *LotPickStrategyFactory) GetDefaultStrategy() LotPickStrategy {
	return NewFEFOLotPickStrategy()
}

// ApplyLotPicks executes a pick plan against the lot entities. The plan must
// have been produced from the same lots; any mismatch aborts the allocation.
func ApplyLotPicks(lots []*StockLot, result *LotPickResult) error {
	if result == nil {
		return shared.NewDomainError("ALLOCATION_FAILED", "Lot pick result cannot be nil")
	}

	lotMap := make(map[uuid.UUID]*StockLot, len(lots))
	for _, lot := range lots {
		lotMap[lot.ID] = lot
	}

	for _, pick := range result.Picks {
		lot, ok := lotMap[pick.LotID]
		if !ok {
			return shared.NewDomainError("ALLOCATION_FAILED", "Lot not loaded: "+pick.LotID.String())
		}
		if err := lot.Deduct(pick.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// ValidateLotAvailability checks whether the lots can cover the request and
// returns the total allocatable quantity
func ValidateLotAvailability(lots []StockLot, requestedQuantity decimal.Decimal) (bool, decimal.Decimal) {
	totalAvailable := decimal.Zero
	for _, lot := range lots {
		if lot.IsAllocatable() {
			totalAvailable = totalAvailable.Add(lot.CurrentQuantity)
		}
	}
	return totalAvailable.GreaterThanOrEqual(requestedQuantity), totalAvailable
}
