package planning

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/moldshop/backend/internal/domain/shared"
)

// PlanAction is the sourcing decision for one node of an MRP plan
type PlanAction string

const (
	// PlanActionProduce means the net requirement is covered by manufacturing
	PlanActionProduce PlanAction = "PRODUCE"
	// PlanActionBuy means the net requirement is covered by purchasing
	PlanActionBuy PlanAction = "BUY"
	// PlanActionStock means current stock fully covers the requirement
	PlanActionStock PlanAction = "STOCK"
)

// UnresolvedReasonCycle marks a plan node cut off because its code already
// appears among its own ancestors
const UnresolvedReasonCycle = "CYCLE_DETECTED"

// MRPPlanItem is one node of the explosion result tree
type MRPPlanItem struct {
	Code             string          `json:"code"`
	Name             string          `json:"name"`
	Unit             string          `json:"unit"`
	RequiredQuantity decimal.Decimal `json:"required_quantity"`
	AvailableStock   decimal.Decimal `json:"available_stock"`
	NetRequirement   decimal.Decimal `json:"net_requirement"`
	Action           PlanAction      `json:"action"`
	LeadTimeDays     int             `json:"lead_time_days"`
	Manufacturable   bool            `json:"manufacturable"`
	Unresolved       bool            `json:"unresolved,omitempty"`
	UnresolvedReason string          `json:"unresolved_reason,omitempty"`
	Path             []string        `json:"path,omitempty"`
	Children         []*MRPPlanItem  `json:"children,omitempty"`
}

// CountNodes returns the size of the plan tree rooted at this node
func (p *MRPPlanItem) CountNodes() int {
	n := 1
	for _, c := range p.Children {
		n += c.CountNodes()
	}
	return n
}

// HasUnresolved returns true if any node in the tree is unresolved
func (p *MRPPlanItem) HasUnresolved() bool {
	if p.Unresolved {
		return true
	}
	for _, c := range p.Children {
		if c.HasUnresolved() {
			return true
		}
	}
	return false
}

// ComponentInfo is the planning view of an item code: its stock snapshot,
// procurement lead time and whether a product row makes it manufacturable.
type ComponentInfo struct {
	Code           string
	Name           string
	Unit           string
	AvailableStock decimal.Decimal
	LeadTimeDays   int
	Manufacturable bool
}

// PlanningGateway supplies the engine with read-only component and BOM data.
// The explosion never writes: plans are simulations until an order consumes
// them.
type PlanningGateway interface {
	// ComponentInfo resolves an item code. Unknown codes return a zero-stock,
	// non-manufacturable component rather than an error so a BOM can
	// reference a material that has not been received yet.
	ComponentInfo(ctx context.Context, orgID uuid.UUID, code string) (*ComponentInfo, error)
	// ActiveBOM returns the active BOM for a product code, or
	// shared.ErrBOMNotFound when the product has no active version.
	ActiveBOM(ctx context.Context, orgID uuid.UUID, productCode string) (*BillOfMaterials, error)
}

// MRPEngine recursively explodes a demand quantity through the BOM structure
type MRPEngine struct {
	gateway PlanningGateway
}

// NewMRPEngine creates a new MRP engine
func NewMRPEngine(gateway PlanningGateway) *MRPEngine {
	return &MRPEngine{gateway: gateway}
}

// Explode builds the full requirement tree for producing the given quantity
// of a product.
//
// The root is always planned as PRODUCE with the full demand as its net
// requirement: the caller asked to make this quantity, so existing stock of
// the finished product does not offset it. Every level below nets against
// the component's stock snapshot.
func (e *MRPEngine) Explode(ctx context.Context, orgID uuid.UUID, productCode string, quantity decimal.Decimal) (*MRPPlanItem, error) {
	if orgID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORG", "Organization ID cannot be empty")
	}
	productCode = strings.TrimSpace(productCode)
	if productCode == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Product code cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.ErrInvalidQuantity
	}

	info, err := e.gateway.ComponentInfo(ctx, orgID, productCode)
	if err != nil {
		return nil, err
	}
	if !info.Manufacturable {
		return nil, shared.NewDomainError("BOM_NOT_FOUND", "Item is not manufacturable: "+productCode)
	}

	root := &MRPPlanItem{
		Code:             info.Code,
		Name:             info.Name,
		Unit:             info.Unit,
		RequiredQuantity: quantity,
		AvailableStock:   info.AvailableStock,
		NetRequirement:   quantity,
		Action:           PlanActionProduce,
		Manufacturable:   true,
		Path:             []string{info.Code},
	}

	if err := e.explodeChildren(ctx, orgID, root); err != nil {
		return nil, err
	}
	rollUpLeadTime(root)
	return root, nil
}

// explodeChildren resolves the active BOM of a PRODUCE node and recurses into
// its components. node.Path already contains the node's own code.
func (e *MRPEngine) explodeChildren(ctx context.Context, orgID uuid.UUID, node *MRPPlanItem) error {
	bom, err := e.gateway.ActiveBOM(ctx, orgID, node.Code)
	if err != nil {
		if isBOMNotFound(err) {
			// Manufacturable but without an active recipe: the branch ends
			// here as a leaf the planner has to resolve by hand.
			if len(node.Path) == 1 {
				return shared.ErrBOMNotFound
			}
			return nil
		}
		return err
	}

	for _, item := range bom.Items {
		child, err := e.buildNode(ctx, orgID, item, node)
		if err != nil {
			return err
		}
		node.Children = append(node.Children, child)

		if child.Action == PlanActionProduce && child.NetRequirement.IsPositive() && !child.Unresolved {
			if err := e.explodeChildren(ctx, orgID, child); err != nil {
				return err
			}
		}
	}
	return nil
}

// buildNode creates the plan node for one BOM line under the given parent
func (e *MRPEngine) buildNode(ctx context.Context, orgID uuid.UUID, item BOMItem, parent *MRPPlanItem) (*MRPPlanItem, error) {
	required := item.GrossRequirement(parent.NetRequirement)

	info, err := e.gateway.ComponentInfo(ctx, orgID, item.ComponentCode)
	if err != nil {
		return nil, err
	}

	net := required.Sub(info.AvailableStock)
	if net.IsNegative() {
		net = decimal.Zero
	}

	node := &MRPPlanItem{
		Code:             info.Code,
		Name:             info.Name,
		Unit:             info.Unit,
		RequiredQuantity: required,
		AvailableStock:   info.AvailableStock,
		NetRequirement:   net,
		Manufacturable:   info.Manufacturable,
		LeadTimeDays:     info.LeadTimeDays,
		Path:             appendPath(parent.Path, info.Code),
	}

	switch {
	case net.IsZero():
		node.Action = PlanActionStock
		node.LeadTimeDays = 0
	case info.Manufacturable:
		node.Action = PlanActionProduce
	default:
		node.Action = PlanActionBuy
	}

	// A code that reappears on its own ancestor path would recurse forever.
	// The node is kept in the tree, flagged, and the branch stops.
	if node.Action == PlanActionProduce && containsCode(parent.Path, info.Code) {
		node.Unresolved = true
		node.UnresolvedReason = UnresolvedReasonCycle
	}

	return node, nil
}

// rollUpLeadTime computes manufactured lead times bottom-up: a produced node
// takes the slowest child plus one day of production buffer.
func rollUpLeadTime(node *MRPPlanItem) {
	if len(node.Children) == 0 {
		return
	}
	maxChild := 0
	for _, c := range node.Children {
		rollUpLeadTime(c)
		if c.LeadTimeDays > maxChild {
			maxChild = c.LeadTimeDays
		}
	}
	if node.Action == PlanActionProduce {
		node.LeadTimeDays = maxChild + 1
	}
}

func appendPath(path []string, code string) []string {
	out := make([]string, 0, len(path)+1)
	out = append(out, path...)
	return append(out, code)
}

func containsCode(path []string, code string) bool {
	for _, p := range path {
		if p == code {
			return true
		}
	}
	return false
}

func isBOMNotFound(err error) bool {
	var de *shared.DomainError
	return errors.As(err, &de) && de.Code == "BOM_NOT_FOUND"
}
