package realtime

// OrderUpdate is the payload broadcast when an order is created or changes
// status.
type OrderUpdate struct {
	UserID  string         `json:"userId"`
	AliasID string         `json:"aliasId,omitempty"`
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}

// InventoryUpdate is the payload broadcast when stock levels change
type InventoryUpdate struct {
	ProductID string         `json:"productId"`
	Name      string         `json:"name,omitempty"`
	Status    string         `json:"status"`
	Quantity  int            `json:"quantity"`
	Details   map[string]any `json:"details,omitempty"`
}

// Stats is a point-in-time view of the session registry, computed from
// current state on every call.
type Stats struct {
	Connections int      `json:"connections"`
	Users       int      `json:"users"`
	OnlineUsers []string `json:"onlineUsers"`
}
