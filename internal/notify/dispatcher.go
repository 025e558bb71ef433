package notify

import (
	"context"
	"fmt"

	"github.com/kushal45/OMS-sub001/internal/common/cnst"
	"github.com/kushal45/OMS-sub001/internal/realtime"

	"go.uber.org/zap"
)

// Broadcaster is the hub surface the dispatcher depends on
type Broadcaster interface {
	BroadcastOrderUpdate(ctx context.Context, u *realtime.OrderUpdate) error
	BroadcastInventoryUpdate(ctx context.Context, u *realtime.InventoryUpdate) error
	SendUserNotification(ctx context.Context, userID string, payload any) error
	SendRoleNotification(ctx context.Context, role string, payload any) error
	BroadcastSystemNotification(ctx context.Context, payload any) error
}

// Dispatcher translates domain events into hub broadcasts. It validates
// targets, attaches human-readable companion notifications for order and
// inventory events, and reports hub failures as results instead of letting
// them propagate.
type Dispatcher struct {
	logger *zap.Logger
	hub    Broadcaster
}

// NewDispatcher creates a dispatcher over the given hub
func NewDispatcher(logger *zap.Logger, hub Broadcaster) *Dispatcher {
	return &Dispatcher{
		logger: logger.Named("notify.dispatcher"),
		hub:    hub,
	}
}

// Dispatch translates one domain event. The switch is exhaustive over the
// closed Event set; an unknown variant is a programming error reported as a
// failure result.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) Result {
	switch e := ev.(type) {
	case OrderCreated:
		return d.orderEvent(ctx, e.Update, "created")
	case OrderStatusChanged:
		return d.orderEvent(ctx, e.Update, e.Update.Status)
	case InventoryChanged:
		return d.inventoryEvent(ctx, e.Update)
	case SystemBroadcast:
		if err := d.hub.BroadcastSystemNotification(ctx, e.Payload); err != nil {
			return d.hubFailure("system notification", err)
		}
		return ok("system notification broadcast")
	case RoleBroadcast:
		if e.Role == "" {
			return invalid("role is required for role-targeted broadcasts")
		}
		if err := d.hub.SendRoleNotification(ctx, e.Role, e.Payload); err != nil {
			return d.hubFailure("role notification", err)
		}
		return ok("role notification sent to " + e.Role)
	case UserBroadcast:
		if e.UserID == "" {
			return invalid("userId is required for user-targeted broadcasts")
		}
		if err := d.hub.SendUserNotification(ctx, e.UserID, e.Payload); err != nil {
			return d.hubFailure("user notification", err)
		}
		return ok("user notification sent")
	default:
		return invalid(fmt.Sprintf("unsupported event type %T", ev))
	}
}

// orderEvent broadcasts the order update and sends the owner a readable
// companion notification.
func (d *Dispatcher) orderEvent(ctx context.Context, u realtime.OrderUpdate, verb string) Result {
	if u.UserID == "" {
		return invalid("userId is required for order events")
	}
	if err := d.hub.BroadcastOrderUpdate(ctx, &u); err != nil {
		return d.hubFailure("order update", err)
	}

	message := fmt.Sprintf("Your order %s has been %s", u.AliasID, verb)
	if u.AliasID == "" {
		message = fmt.Sprintf("Your order has been %s", verb)
	}
	if err := d.hub.SendUserNotification(ctx, u.UserID, map[string]any{
		"message": message,
		"aliasId": u.AliasID,
		"status":  u.Status,
	}); err != nil {
		return d.hubFailure("order notification", err)
	}
	return ok("order update dispatched")
}

// inventoryEvent broadcasts the stock update; low and out-of-stock levels
// also notify admins with a readable message.
func (d *Dispatcher) inventoryEvent(ctx context.Context, u realtime.InventoryUpdate) Result {
	if u.ProductID == "" {
		return invalid("productId is required for inventory events")
	}
	if err := d.hub.BroadcastInventoryUpdate(ctx, &u); err != nil {
		return d.hubFailure("inventory update", err)
	}

	if u.Status == cnst.InventoryLowStock || u.Status == cnst.InventoryOutOfStock {
		message := fmt.Sprintf("Product %s is running low (%d left)", u.Name, u.Quantity)
		if u.Status == cnst.InventoryOutOfStock {
			message = fmt.Sprintf("Product %s is out of stock", u.Name)
		}
		if err := d.hub.SendRoleNotification(ctx, cnst.RoleAdmin, map[string]any{
			"message":   message,
			"productId": u.ProductID,
			"status":    u.Status,
		}); err != nil {
			return d.hubFailure("inventory notification", err)
		}
	}
	return ok("inventory update dispatched")
}

// hubFailure logs and converts a hub error into a failure result so callers
// never see a crash from a broadcast path.
func (d *Dispatcher) hubFailure(what string, err error) Result {
	d.logger.Error("hub broadcast failed",
		zap.String("event", what),
		zap.Error(err))
	return Result{Success: false, Message: "failed to dispatch " + what}
}
