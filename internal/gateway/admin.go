package gateway

import (
	"net/http"

	"github.com/kushal45/OMS-sub001/internal/notify"
	"github.com/kushal45/OMS-sub001/internal/realtime"

	"github.com/gin-gonic/gin"
)

// Request bodies for the management surface. Everything responds with the
// uniform {success, message} shape; read endpoints add a data field.
type (
	systemNotifyRequest struct {
		Message string         `json:"message"`
		Data    map[string]any `json:"data"`
	}

	roleNotifyRequest struct {
		Role    string         `json:"role"`
		Message string         `json:"message"`
		Data    map[string]any `json:"data"`
	}

	userNotifyRequest struct {
		UserID  string         `json:"userId"`
		Message string         `json:"message"`
		Data    map[string]any `json:"data"`
	}

	orderNotifyRequest struct {
		UserID  string         `json:"userId"`
		AliasID string         `json:"aliasId"`
		Status  string         `json:"status"`
		Details map[string]any `json:"details"`
	}

	inventoryNotifyRequest struct {
		ProductID string         `json:"productId"`
		Name      string         `json:"name"`
		Status    string         `json:"status"`
		Quantity  int            `json:"quantity"`
		Details   map[string]any `json:"details"`
	}
)

// registerAdminRoutes wires the management surface onto the authenticated
// group.
func (s *Server) registerAdminRoutes(g *gin.RouterGroup) {
	g.GET("/stats", s.handleStats)
	g.GET("/online", s.handleOnlineUsers)
	g.GET("/online/:userId", s.handleUserOnline)
	g.POST("/notify/system", s.handleNotifySystem)
	g.POST("/notify/role", s.handleNotifyRole)
	g.POST("/notify/user", s.handleNotifyUser)
	g.POST("/notify/order-created", s.handleNotifyOrderCreated)
	g.POST("/notify/order-status", s.handleNotifyOrderStatus)
	g.POST("/notify/inventory", s.handleNotifyInventory)
}

func (s *Server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "ok",
		"data":    s.hub.ConnectionStats(),
	})
}

func (s *Server) handleOnlineUsers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "ok",
		"data":    s.hub.Registry().OnlineUsers(),
	})
}

func (s *Server) handleUserOnline(c *gin.Context) {
	userID := c.Param("userId")
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "ok",
		"data": gin.H{
			"userId": userID,
			"online": s.hub.IsUserOnline(userID),
		},
	})
}

func (s *Server) handleNotifySystem(c *gin.Context) {
	var req systemNotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeResult(c, notify.Result{Success: false, Message: "invalid request body"})
		return
	}
	s.writeResult(c, s.dispatcher.Dispatch(c.Request.Context(), notify.SystemBroadcast{
		Payload: mergeMessage(req.Message, req.Data),
	}))
}

func (s *Server) handleNotifyRole(c *gin.Context) {
	var req roleNotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeResult(c, notify.Result{Success: false, Message: "invalid request body"})
		return
	}
	s.writeResult(c, s.dispatcher.Dispatch(c.Request.Context(), notify.RoleBroadcast{
		Role:    req.Role,
		Payload: mergeMessage(req.Message, req.Data),
	}))
}

func (s *Server) handleNotifyUser(c *gin.Context) {
	var req userNotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeResult(c, notify.Result{Success: false, Message: "invalid request body"})
		return
	}
	s.writeResult(c, s.dispatcher.Dispatch(c.Request.Context(), notify.UserBroadcast{
		UserID:  req.UserID,
		Payload: mergeMessage(req.Message, req.Data),
	}))
}

func (s *Server) handleNotifyOrderCreated(c *gin.Context) {
	var req orderNotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeResult(c, notify.Result{Success: false, Message: "invalid request body"})
		return
	}
	s.writeResult(c, s.dispatcher.Dispatch(c.Request.Context(), notify.OrderCreated{
		Update: realtime.OrderUpdate{
			UserID:  req.UserID,
			AliasID: req.AliasID,
			Status:  req.Status,
			Details: req.Details,
		},
	}))
}

func (s *Server) handleNotifyOrderStatus(c *gin.Context) {
	var req orderNotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeResult(c, notify.Result{Success: false, Message: "invalid request body"})
		return
	}
	s.writeResult(c, s.dispatcher.Dispatch(c.Request.Context(), notify.OrderStatusChanged{
		Update: realtime.OrderUpdate{
			UserID:  req.UserID,
			AliasID: req.AliasID,
			Status:  req.Status,
			Details: req.Details,
		},
	}))
}

func (s *Server) handleNotifyInventory(c *gin.Context) {
	var req inventoryNotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeResult(c, notify.Result{Success: false, Message: "invalid request body"})
		return
	}
	s.writeResult(c, s.dispatcher.Dispatch(c.Request.Context(), notify.InventoryChanged{
		Update: realtime.InventoryUpdate{
			ProductID: req.ProductID,
			Name:      req.Name,
			Status:    req.Status,
			Quantity:  req.Quantity,
			Details:   req.Details,
		},
	}))
}

// writeResult maps a dispatch result to the response: validation and hub
// failures get 400, successes 200.
func (s *Server) writeResult(c *gin.Context, res notify.Result) {
	status := http.StatusOK
	if !res.Success {
		status = http.StatusBadRequest
	}
	c.JSON(status, res)
}

// mergeMessage folds an optional message field into the payload map
func mergeMessage(message string, data map[string]any) map[string]any {
	if message == "" {
		return data
	}
	payload := make(map[string]any, len(data)+1)
	for k, v := range data {
		payload[k] = v
	}
	payload["message"] = message
	return payload
}
