package cnst

// Well-known room labels. User and role rooms are derived with the prefixes
// below; topic rooms use the "<topic>_updates" convention.
const (
	RoomUserPrefix = "user:"
	RoomRolePrefix = "role:"
	RoomSuffix     = "_updates"

	RoomOrderUpdates     = "order_updates"
	RoomInventoryUpdates = "inventory_updates"
)

// Outbound event types delivered to realtime clients
const (
	EventConnected             = "connected"
	EventError                 = "error"
	EventPong                  = "pong"
	EventSubscriptionConfirmed = "subscription_confirmed"
	EventSubscriptionCancelled = "subscription_cancelled"
	EventOrderUpdate           = "order_update"
	EventInventoryUpdate       = "inventory_update"
	EventInventoryAlert        = "inventory_alert"
	EventUserNotification      = "user_notification"
	EventSystemNotification    = "system_notification"
	EventRoleNotification      = "role_notification"
)

// Inbound message types accepted from realtime clients
const (
	MsgPing               = "ping"
	MsgSubscribeOrders    = "subscribe_to_orders"
	MsgSubscribeInventory = "subscribe_to_inventory"
	MsgSubscribe          = "subscribe"
	MsgUnsubscribe        = "unsubscribe"
)
