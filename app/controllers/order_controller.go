package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shashiranjanraj/dabba/app/resources"
	"github.com/shashiranjanraj/dabba/app/services"
	"github.com/shashiranjanraj/dabba/pkg/ctx"
	"github.com/shashiranjanraj/dabba/pkg/middleware"
	"github.com/shashiranjanraj/dabba/pkg/sse"
	"github.com/shashiranjanraj/dabba/pkg/ws"
)

// OrderController serves the customer's order history and live tracking.
type OrderController struct {
	orders *services.OrderService
	hub    *ws.Hub
}

func NewOrderController(orders *services.OrderService, hub *ws.Hub) *OrderController {
	return &OrderController{orders: orders, hub: hub}
}

// Index handles GET /orders: the caller's orders, newest first.
func (h *OrderController) Index(c *ctx.Context) {
	orders, err := h.orders.ListByUser(middleware.UserID(c.Context()))
	if err != nil {
		c.Error(http.StatusInternalServerError, "Could not load orders")
		return
	}
	c.Success(resources.Orders(orders))
}

// Show handles GET /orders/{id}. Other users' orders come back 403, not 404.
func (h *OrderController) Show(c *ctx.Context) {
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}

	order, err := h.orders.Get(middleware.UserID(c.Context()), orderID)
	if err != nil {
		if serviceError(c, err) {
			return
		}
		c.Error(http.StatusInternalServerError, "Could not load the order")
		return
	}
	c.Success(resources.Order(order))
}

// Track handles GET /ws/orders/{id}: upgrades to a websocket subscribed to
// the order's status topic. Ownership is checked before the upgrade.
func (h *OrderController) Track(c *ctx.Context) {
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if _, err := h.orders.Get(middleware.UserID(c.Context()), orderID); err != nil {
		if serviceError(c, err) {
			return
		}
		c.Error(http.StatusInternalServerError, "Could not load the order")
		return
	}

	ws.Upgrade(c.W, c.R, h.hub, fmt.Sprintf("orders.%d", orderID))
}

// TrackSSE handles GET /sse/orders/{id}: the EventSource fallback for
// clients that cannot open a websocket. Same topic, same ownership check.
func (h *OrderController) TrackSSE(c *ctx.Context) {
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if _, err := h.orders.Get(middleware.UserID(c.Context()), orderID); err != nil {
		if serviceError(c, err) {
			return
		}
		c.Error(http.StatusInternalServerError, "Could not load the order")
		return
	}

	stream := sse.New(c.W, c.R)
	if stream == nil {
		return
	}

	sub := h.hub.Subscribe(fmt.Sprintf("orders.%d", orderID))
	defer h.hub.Unsubscribe(sub)

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case data, open := <-sub.C:
			if !open {
				return
			}
			stream.Send("status", json.RawMessage(data))
		case <-heartbeat.C:
			stream.Comment("keepalive")
		case <-c.R.Context().Done():
			return
		}
		if stream.IsClosed() {
			return
		}
	}
}
