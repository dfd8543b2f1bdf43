package handlers

import (
	"fmt"
	"log"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"storefront/internal/middleware"
	"storefront/internal/services"
)

var zipPattern = regexp.MustCompile(`^\d{5}(-\d{4})?$`)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	v := validator.New()
	// 5-digit US zip, optionally +4.
	_ = v.RegisterValidation("uszip", func(fl validator.FieldLevel) bool {
		return zipPattern.MatchString(fl.Field().String())
	})
	return &OrderHandler{
		service:  service,
		validate: v,
	}
}

// RegisterRoutes registers the order routes with the Fiber app. auth must
// authenticate the request, admin must additionally require the admin
// role.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler, admin fiber.Handler) {
	orderRoutes := router.Group("/orders", auth)

	// User routes.
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Get("/my-orders", h.HandleMyOrders)
	orderRoutes.Get("/my-orders/:id", h.HandleGetOrder)
	orderRoutes.Get("/track/:orderNumber", h.HandleTrackOrder)

	// Admin routes. Specific paths are registered before "/:id" so Fiber
	// does not swallow them as an ID.
	orderRoutes.Get("/", admin, h.HandleListOrders)
	orderRoutes.Get("/stats", admin, h.HandleOrderStats)
	orderRoutes.Patch("/:id/status", admin, h.HandleUpdateOrderStatus)
	orderRoutes.Get("/:id", admin, h.HandleGetOrder)
}

// HandleCreateOrder places a new order for the authenticated user.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req services.PlaceOrderRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing order request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.validate.Struct(req); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": errorMessages,
		})
	}

	order, err := h.service.PlaceOrder(middleware.UserID(c), req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleMyOrders lists the authenticated user's orders, paginated.
func (h *OrderHandler) HandleMyOrders(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)

	result, err := h.service.ListUserOrders(middleware.UserID(c), page, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// HandleGetOrder retrieves a single order. Non-admin users only see their
// own orders.
func (h *OrderHandler) HandleGetOrder(c *fiber.Ctx) error {
	order, err := h.service.GetOrderForUser(c.Params("id"), middleware.UserID(c), middleware.IsAdmin(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}

// HandleTrackOrder retrieves an order by its human-readable order number.
func (h *OrderHandler) HandleTrackOrder(c *fiber.Ctx) error {
	order, err := h.service.TrackOrder(c.Params("orderNumber"), middleware.UserID(c), middleware.IsAdmin(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}

// HandleListOrders lists all orders (admin only), optionally filtered by
// status.
func (h *OrderHandler) HandleListOrders(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)
	status := c.Query("status")

	result, err := h.service.ListOrders(page, limit, status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// HandleOrderStats returns per-status counts and total revenue (admin
// only).
func (h *OrderHandler) HandleOrderStats(c *fiber.Ctx) error {
	stats, err := h.service.Stats()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}

// HandleUpdateOrderStatus moves an order through its lifecycle (admin
// only).
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	var updateData struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&updateData); err != nil {
		log.Printf("Error parsing request body for status update: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body for status update",
		})
	}
	if updateData.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Status is required for order status update",
		})
	}

	order, err := h.service.UpdateOrderStatus(c.Params("id"), updateData.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}
