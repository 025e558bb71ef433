package notify

import "github.com/kushal45/OMS-sub001/internal/realtime"

// Result is the uniform outcome shape returned to dispatch callers
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ok builds a success result
func ok(message string) Result {
	return Result{Success: true, Message: message}
}

// invalid builds a validation-failure result; it is a reported value, never
// a panic or error propagation.
func invalid(message string) Result {
	return Result{Success: false, Message: message}
}

// Event is the closed set of domain events the dispatcher translates into
// hub broadcasts. The sealed marker keeps the variant set exhaustive at the
// dispatch switch.
type Event interface {
	isEvent()
}

// OrderCreated signals a newly placed order
type OrderCreated struct {
	Update realtime.OrderUpdate
}

// OrderStatusChanged signals an order moving through its lifecycle
type OrderStatusChanged struct {
	Update realtime.OrderUpdate
}

// InventoryChanged signals a stock level transition
type InventoryChanged struct {
	Update realtime.InventoryUpdate
}

// SystemBroadcast targets every connected session
type SystemBroadcast struct {
	Payload map[string]any
}

// RoleBroadcast targets one role room
type RoleBroadcast struct {
	Role    string
	Payload map[string]any
}

// UserBroadcast targets one user's sessions
type UserBroadcast struct {
	UserID  string
	Payload map[string]any
}

func (OrderCreated) isEvent()       {}
func (OrderStatusChanged) isEvent() {}
func (InventoryChanged) isEvent()   {}
func (SystemBroadcast) isEvent()    {}
func (RoleBroadcast) isEvent()      {}
func (UserBroadcast) isEvent()      {}
