package realtime

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/kushal45/OMS-sub001/internal/common/cnst"
	"github.com/kushal45/OMS-sub001/internal/realtime/notifier"
	"github.com/kushal45/OMS-sub001/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Hub owns the broadcast surface over the session registry. Deliveries are
// best-effort and at-most-once per session: a full or closed session queue
// drops the event for that session only, logged individually, and never
// aborts delivery to the remaining room members.
type Hub struct {
	logger     *zap.Logger
	instanceID string
	registry   *Registry
	notifier   notifier.Notifier
	metrics    *metrics.Metrics
}

// NewHub creates a hub over the given registry. The notifier may be nil for
// single-instance deployments.
func NewHub(logger *zap.Logger, registry *Registry, n notifier.Notifier, m *metrics.Metrics) *Hub {
	return &Hub{
		logger:     logger.Named("realtime.hub"),
		instanceID: uuid.NewString(),
		registry:   registry,
		notifier:   n,
		metrics:    m,
	}
}

// Registry exposes the session registry to the transport layer
func (h *Hub) Registry() *Registry {
	return h.registry
}

// Start begins replaying peer broadcasts from the notifier. Returns
// immediately when no notifier is configured.
func (h *Hub) Start(ctx context.Context) error {
	if h.notifier == nil {
		return nil
	}
	events, err := h.notifier.Watch(ctx)
	if err != nil {
		return err
	}
	go func() {
		for evt := range events {
			if evt.Origin == h.instanceID {
				continue
			}
			var env Envelope
			if err := json.Unmarshal(evt.Payload, &env); err != nil {
				h.logger.Error("failed to unmarshal peer event", zap.Error(err))
				continue
			}
			if evt.All {
				h.deliverAll(&env)
				continue
			}
			h.deliverRooms(evt.Rooms, &env)
		}
	}()
	return nil
}

// BroadcastOrderUpdate delivers an order event to the order owner, to admin
// and staff roles, and to the order_updates topic - four independent room
// deliveries, each reaching only current members.
func (h *Hub) BroadcastOrderUpdate(ctx context.Context, u *OrderUpdate) error {
	env := NewEnvelope(cnst.EventOrderUpdate, u)
	env.UserID = u.UserID

	rooms := []string{
		cnst.RoomUserPrefix + u.UserID,
		cnst.RoomRolePrefix + cnst.RoleAdmin,
		cnst.RoomRolePrefix + cnst.RoleStaff,
		cnst.RoomOrderUpdates,
	}
	h.deliverRooms(rooms, env)
	return h.publish(ctx, false, rooms, env)
}

// BroadcastInventoryUpdate delivers a stock event to the inventory_updates
// topic; low and out-of-stock statuses additionally alert the admin role.
func (h *Hub) BroadcastInventoryUpdate(ctx context.Context, u *InventoryUpdate) error {
	env := NewEnvelope(cnst.EventInventoryUpdate, u)
	rooms := []string{cnst.RoomInventoryUpdates}
	h.deliverRooms(rooms, env)
	if err := h.publish(ctx, false, rooms, env); err != nil {
		return err
	}

	if u.Status == cnst.InventoryLowStock || u.Status == cnst.InventoryOutOfStock {
		alert := NewEnvelope(cnst.EventInventoryAlert, u)
		alertRooms := []string{cnst.RoomRolePrefix + cnst.RoleAdmin}
		h.deliverRooms(alertRooms, alert)
		return h.publish(ctx, false, alertRooms, alert)
	}
	return nil
}

// SendUserNotification delivers a payload to every session of one user
func (h *Hub) SendUserNotification(ctx context.Context, userID string, payload any) error {
	env := NewEnvelope(cnst.EventUserNotification, payload)
	env.UserID = userID
	rooms := []string{cnst.RoomUserPrefix + userID}
	h.deliverRooms(rooms, env)
	return h.publish(ctx, false, rooms, env)
}

// SendRoleNotification delivers a payload to every session of one role
func (h *Hub) SendRoleNotification(ctx context.Context, role string, payload any) error {
	env := NewEnvelope(cnst.EventRoleNotification, payload)
	rooms := []string{cnst.RoomRolePrefix + role}
	h.deliverRooms(rooms, env)
	return h.publish(ctx, false, rooms, env)
}

// BroadcastSystemNotification delivers a payload to every connected session
// regardless of room membership.
func (h *Hub) BroadcastSystemNotification(ctx context.Context, payload any) error {
	env := NewEnvelope(cnst.EventSystemNotification, payload)
	h.deliverAll(env)
	return h.publish(ctx, true, nil, env)
}

// ConnectionStats computes live counts from current registry state
func (h *Hub) ConnectionStats() Stats {
	sessions, users := h.registry.Counts()
	return Stats{
		Connections: sessions,
		Users:       users,
		OnlineUsers: h.registry.OnlineUsers(),
	}
}

// IsUserOnline reports whether the user has at least one live session
func (h *Hub) IsUserOnline(userID string) bool {
	return h.registry.IsUserOnline(userID)
}

// deliverRooms fans an envelope out to each room independently. Membership
// is snapshotted per room, so concurrently disconnecting sessions are
// skipped rather than crashed on.
func (h *Hub) deliverRooms(rooms []string, env *Envelope) {
	h.metrics.ObserveBroadcast(env.Type)
	for _, room := range rooms {
		for _, s := range h.registry.Members(room) {
			h.deliver(s, room, env)
		}
	}
}

// deliverAll fans an envelope out to every connected session
func (h *Hub) deliverAll(env *Envelope) {
	h.metrics.ObserveBroadcast(env.Type)
	for _, s := range h.registry.All() {
		h.deliver(s, "*", env)
	}
}

func (h *Hub) deliver(s *Session, room string, env *Envelope) {
	err := s.Send(env)
	if err == nil {
		h.metrics.ObserveDelivery(env.Type, true)
		return
	}
	h.metrics.ObserveDelivery(env.Type, false)
	if errors.Is(err, ErrSessionClosed) {
		// lost the race with a disconnect; at-most-once means we drop it
		return
	}
	h.logger.Warn("dropping event for session",
		zap.String("session_id", s.ID),
		zap.String("room", room),
		zap.String("event", env.Type),
		zap.Error(err))
}

// publish forwards the broadcast to peer instances when a notifier is
// configured. Publish failures surface to the caller but local delivery has
// already happened.
func (h *Hub) publish(ctx context.Context, all bool, rooms []string, env *Envelope) error {
	if h.notifier == nil {
		return nil
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return h.notifier.Publish(ctx, &notifier.Event{
		Origin:  h.instanceID,
		All:     all,
		Rooms:   rooms,
		Payload: payload,
	})
}
