package cnst

// Header names used across the gateway
const (
	// HeaderCorrelationID carries the request correlation identifier
	HeaderCorrelationID = "X-Correlation-ID"
	// HeaderForwardedUser carries the serialized principal to upstream services
	HeaderForwardedUser = "X-Forwarded-User"
	// HeaderAuthorization is the standard bearer credential header
	HeaderAuthorization = "Authorization"
)

// Fixed response bodies
const (
	// MsgUnauthorizedToken is returned on any authentication rejection
	MsgUnauthorizedToken = "Unauthorized Token"
	// MsgProxyTargetNotFound is returned when no upstream matches the path
	MsgProxyTargetNotFound = "Proxy target not found"
	// MsgBadGateway is returned when the upstream call fails
	MsgBadGateway = "Bad Gateway"
)

// Roles with elevated event visibility
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// Inventory statuses that trigger an alert to admins
const (
	InventoryLowStock   = "low_stock"
	InventoryOutOfStock = "out_of_stock"
	InventoryRestocked  = "restocked"
)
