package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-pos/events"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
)

// OrderController -> permukaan order placement. Engine lifecycle hanya
// membaca status order dan me-re-parent saat transfer/merge; pembuatan
// order terjadi di sini dan bebas berjalan paralel dengan transisi meja
// (order selalu menempel ke sesi aktif saat insert).
type OrderController struct {
	DB     *gorm.DB
	Events events.Publisher
}

func NewOrderController(db *gorm.DB, bus events.Publisher) *OrderController {
	return &OrderController{DB: db, Events: bus}
}

// GetAllOrders -> list orders beserta items
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	var orders []models.Order
	if err := oc.DB.Preload("OrderItems").Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

// CreateOrder -> customer membuat order lewat token sesi dari QR
func (oc *OrderController) CreateOrder(c *gin.Context) {
	type ItemReq struct {
		MenuID       uint   `json:"menu_id" binding:"required"`
		Quantity     int    `json:"quantity" binding:"required"`
		Notes        string `json:"notes"`
		ParentItemID *uint  `json:"parent_item_id,omitempty"` // untuk add-on
	}

	var body struct {
		SessionToken string    `json:"session_token" binding:"required"`
		Items        []ItemReq `json:"items" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	// Cari sesi aktif dari token. Token yang sudah dirotasi (transfer)
	// atau sesi yang sudah tutup tidak valid lagi.
	var session models.TableSession
	if err := oc.DB.Where("session_token = ? AND ended_at IS NULL", body.SessionToken).
		First(&session).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound,
			fmt.Errorf("tidak ada sesi aktif untuk token ini"))
		return
	}

	var order models.Order
	err := oc.DB.Transaction(func(tx *gorm.DB) error {
		order = models.Order{
			TableID:        session.TableID,
			TableSessionID: session.ID,
			Status:         models.OrderOpen,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		var total float64
		for _, item := range body.Items {
			var menu models.Menu
			if err := tx.First(&menu, item.MenuID).Error; err != nil {
				return fmt.Errorf("menu %d tidak ditemukan", item.MenuID)
			}
			if item.Quantity < 1 {
				return errors.New("quantity minimal 1")
			}
			total += float64(item.Quantity) * menu.Price

			orderItem := models.OrderItem{
				OrderID:      order.ID,
				MenuID:       menu.ID,
				Quantity:     item.Quantity,
				Price:        menu.Price,
				Notes:        item.Notes,
				ParentItemID: item.ParentItemID,
				Status:       "pending",
			}
			if err := tx.Create(&orderItem).Error; err != nil {
				return err
			}
		}

		return tx.Model(&order).Update("total_amount", total).Error
	})
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	oc.broadcast(events.TopicOrderCreated, order)

	// notifikasi untuk staff; best-effort, order sudah commit
	title := "New Order"
	notif := models.Notification{
		Title:   &title,
		Message: fmt.Sprintf("Order %d masuk di meja %d", order.ID, order.TableID),
	}
	if err := oc.DB.Create(&notif).Error; err != nil {
		utils.ErrorLogger.Printf("Failed to record notification: %v", err)
	}

	utils.InfoLogger.Printf("Order %d created on table %d (session=%d)",
		order.ID, order.TableID, order.TableSessionID)
	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

// GetOrderByID -> detail 1 order
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	idStr := c.Param("order_id")
	id, _ := strconv.Atoi(idStr)

	var order models.Order
	if err := oc.DB.Preload("OrderItems").First(&order, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// UpdateOrderStatus -> staff mengubah status order (paid, cancelled, dst).
// Status settled itulah yang membuka jalan CLOSE meja.
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	orderID := c.Param("order_id")

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var order models.Order
	if err := oc.DB.First(&order, orderID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	order.Status = req.Status
	if err := oc.DB.Save(&order).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	oc.broadcast(events.TopicOrderUpdated, order)
	utils.InfoLogger.Printf("Order %d status changed to %s", order.ID, order.Status)
	utils.RespondJSON(c, http.StatusOK, "Order updated", order)
}

// GetOrdersBySession -> order satu sesi (untuk tablet customer)
func (oc *OrderController) GetOrdersBySession(c *gin.Context) {
	token := c.Query("session_token")
	if token == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("session_token required"))
		return
	}

	var session models.TableSession
	if err := oc.DB.Where("session_token = ?", token).First(&session).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var orders []models.Order
	if err := oc.DB.Preload("OrderItems").
		Where("table_session_id = ?", session.ID).
		Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Orders for session", orders)
}

func (oc *OrderController) broadcast(topic string, payload interface{}) {
	if oc.Events == nil {
		return
	}
	if err := oc.Events.Publish(topic, payload); err != nil {
		utils.ErrorLogger.Printf("Failed to publish %s: %v", topic, err)
	}
}
