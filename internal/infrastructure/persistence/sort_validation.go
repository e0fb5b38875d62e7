package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// Per-entity sort field whitelists. OrderBy values arriving from the API are
// only ever interpolated into SQL after passing through one of these.

// MaterialSortFields contains allowed sort fields for materials
var MaterialSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"code":           true,
	"name":           true,
	"category":       true,
	"current_stock":  true,
	"min_stock":      true,
	"unit_cost":      true,
	"lead_time_days": true,
}

// StockLotSortFields contains allowed sort fields for stock lots
var StockLotSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"lot_number":       true,
	"supplier":         true,
	"expiration_date":  true,
	"current_quantity": true,
	"status":           true,
}

// StockTransactionSortFields contains allowed sort fields for ledger entries
var StockTransactionSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"occurred_at":   true,
	"movement_type": true,
	"quantity":      true,
}

// StockAlertSortFields contains allowed sort fields for stock alerts
var StockAlertSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"material_code": true,
	"status":        true,
	"resolved_at":   true,
}

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"code":       true,
	"name":       true,
}

// BOMSortFields contains allowed sort fields for bill-of-material versions
var BOMSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"product_code": true,
	"bom_version":  true,
}

// ProductionOrderSortFields contains allowed sort fields for production orders
var ProductionOrderSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"order_number": true,
	"product_code": true,
	"quantity":     true,
	"status":       true,
	"due_date":     true,
	"started_at":   true,
	"completed_at": true,
}

// ReservationSortFields contains allowed sort fields for material reservations
var ReservationSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"component_code": true,
	"quantity":       true,
	"status":         true,
	"consumed_at":    true,
}
