package event

import (
	"context"
	"testing"

	"github.com/moldshop/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

type recordingHandler struct {
	eventTypes []string
	handled    []shared.DomainEvent
}

func newRecordingHandler(eventTypes ...string) *recordingHandler {
	return &recordingHandler{eventTypes: eventTypes}
}

func (h *recordingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.handled = append(h.handled, event)
	return nil
}

func (h *recordingHandler) EventTypes() []string {
	return h.eventTypes
}

func TestHandlerRegistry_SpecificTypes(t *testing.T) {
	registry := NewHandlerRegistry()
	handler := newRecordingHandler("MovementRecorded", "StockBelowMinimum")

	registry.Register(handler, "MovementRecorded", "StockBelowMinimum")

	assert.Len(t, registry.GetHandlers("MovementRecorded"), 1)
	assert.Len(t, registry.GetHandlers("StockBelowMinimum"), 1)
	assert.Empty(t, registry.GetHandlers("LotDepleted"))
}

func TestHandlerRegistry_Wildcard(t *testing.T) {
	registry := NewHandlerRegistry()
	handler := newRecordingHandler()

	registry.Register(handler)

	assert.Len(t, registry.GetHandlers("MovementRecorded"), 1)
	assert.Len(t, registry.GetHandlers("ProductionOrderCreated"), 1)
}

func TestHandlerRegistry_TypedBeforeWildcard(t *testing.T) {
	registry := NewHandlerRegistry()
	typed := newRecordingHandler("MovementRecorded")
	wildcard := newRecordingHandler()

	registry.Register(typed, "MovementRecorded")
	registry.Register(wildcard)

	handlers := registry.GetHandlers("MovementRecorded")
	assert.Len(t, handlers, 2)
	assert.Equal(t, typed, handlers[0], "type-specific handlers come first")

	handlers = registry.GetHandlers("LotDepleted")
	assert.Len(t, handlers, 1)
	assert.Equal(t, wildcard, handlers[0])
}

func TestHandlerRegistry_Unregister(t *testing.T) {
	registry := NewHandlerRegistry()
	first := newRecordingHandler("MovementRecorded")
	second := newRecordingHandler("MovementRecorded")

	registry.Register(first, "MovementRecorded")
	registry.Register(second, "MovementRecorded")
	assert.Len(t, registry.GetHandlers("MovementRecorded"), 2)

	registry.Unregister(first)

	handlers := registry.GetHandlers("MovementRecorded")
	assert.Len(t, handlers, 1)
	assert.Equal(t, second, handlers[0])
}

func TestHandlerRegistry_UnregisterWildcard(t *testing.T) {
	registry := NewHandlerRegistry()
	wildcard := newRecordingHandler()

	registry.Register(wildcard)
	assert.Len(t, registry.GetHandlers("MovementRecorded"), 1)

	registry.Unregister(wildcard)
	assert.Empty(t, registry.GetHandlers("MovementRecorded"))
}

func TestHandlerRegistry_GetAllHandlers(t *testing.T) {
	registry := NewHandlerRegistry()
	movement := newRecordingHandler("MovementRecorded")
	order := newRecordingHandler("ProductionOrderCreated")
	wildcard := newRecordingHandler()

	registry.Register(movement, "MovementRecorded")
	registry.Register(order, "ProductionOrderCreated")
	registry.Register(wildcard)

	assert.Len(t, registry.GetAllHandlers(), 3)
}

// A handler registered under several event types must appear once.
func TestHandlerRegistry_GetAllHandlers_Deduplicates(t *testing.T) {
	registry := NewHandlerRegistry()
	handler := newRecordingHandler("MovementRecorded", "LotDepleted")

	registry.Register(handler, "MovementRecorded", "LotDepleted")

	assert.Len(t, registry.GetAllHandlers(), 1)
}
