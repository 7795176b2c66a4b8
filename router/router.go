package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-pos/controllers"
	"github.com/yeremiapane/restaurant-pos/events"
	"github.com/yeremiapane/restaurant-pos/lifecycle"
	"github.com/yeremiapane/restaurant-pos/middlewares"
)

func SetupRouter(db *gorm.DB, hub *events.Hub, manager *lifecycle.Manager) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	// Inisialisasi controller
	userCtrl := controllers.NewUserController(db)
	tableCtrl := controllers.NewTableController(db, manager)
	sessionCtrl := controllers.NewSessionController(db, manager)
	orderCtrl := controllers.NewOrderController(db, hub)
	notifCtrl := controllers.NewNotificationController(db)
	wsCtrl := controllers.NewWSController(hub)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Rate limiter untuk login/register
	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	// -- CUSTOMER (Tanpa Auth) --
	// Scan QR di meja lalu order pakai token sesi
	r.GET("/tables", tableCtrl.GetAllTables)
	r.GET("/tables/:table_id/scan", sessionCtrl.ScanTable)
	r.GET("/sessions/:token", sessionCtrl.GetSessionByToken)
	r.POST("/orders", orderCtrl.CreateOrder)
	r.GET("/orders/by-session", orderCtrl.GetOrdersBySession)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/admin")
	auth.Use(middlewares.AuthMiddleware())

	auth.GET("/profile", userCtrl.GetProfile)
	auth.POST("/logout", userCtrl.Logout)

	// TABLE (admin mengelola denah)
	admin := auth.Group("/")
	admin.Use(middlewares.RequireRoles("admin"))
	{
		admin.POST("/tables", tableCtrl.CreateTable)
		admin.DELETE("/tables/:table_id", tableCtrl.DeleteTable)
	}

	// TABLE LIFECYCLE (staff/admin)
	staff := auth.Group("/")
	staff.Use(middlewares.RequireRoles("staff", "admin"))
	{
		staff.GET("/tables", tableCtrl.GetAllTables)
		staff.GET("/tables/by-status", tableCtrl.FindTablesByStatus)
		staff.GET("/tables/:table_id", tableCtrl.GetTableByID)
		staff.POST("/tables/:table_id/open", tableCtrl.OpenTable)
		staff.POST("/tables/:table_id/close", tableCtrl.CloseTable)
		staff.POST("/tables/:table_id/transfer", tableCtrl.TransferTable)
		staff.POST("/tables/:table_id/merge", tableCtrl.MergeTables)
		staff.GET("/tables/:table_id/qr", tableCtrl.GetQrTarget)
		staff.GET("/tables/:table_id/sessions", sessionCtrl.GetSessionHistory)

		// ORDERS (staff menandai paid/cancelled, dsb.)
		staff.GET("/orders", orderCtrl.GetAllOrders)
		staff.GET("/orders/:order_id", orderCtrl.GetOrderByID)
		staff.PATCH("/orders/:order_id", orderCtrl.UpdateOrderStatus)

		// NOTIFICATIONS
		staff.GET("/notifications", notifCtrl.GetAllNotifications)
		staff.POST("/notifications", notifCtrl.CreateNotification)
		staff.DELETE("/notifications/:notif_id", notifCtrl.DeleteNotification)
	}

	// WebSocket endpoint untuk semua observer real-time
	wsGroup := r.Group("/ws")
	wsGroup.Use(middlewares.WebSocketAuthMiddleware())
	{
		wsGroup.GET("", wsCtrl.Handle)
	}

	return r
}
