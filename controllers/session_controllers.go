package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-pos/lifecycle"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
)

// SessionController -> permukaan read-only untuk perangkat customer yang
// scan QR di meja. Tidak ada transisi di sini; semua mutasi lewat Manager.
type SessionController struct {
	DB      *gorm.DB
	Manager *lifecycle.Manager
}

func NewSessionController(db *gorm.DB, manager *lifecycle.Manager) *SessionController {
	return &SessionController{DB: db, Manager: manager}
}

// ScanTable -> customer scan QR; balas target self-order kalau mejanya
// sedang terbuka
func (sc *SessionController) ScanTable(c *gin.Context) {
	tableID, ok := parseTableID(c, "table_id")
	if !ok {
		return
	}

	target, err := sc.Manager.QrTarget(tableID)
	if err != nil {
		respondLifecycleError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Scan OK", target)
}

// GetSessionByToken -> tablet customer memvalidasi tokennya masih hidup
// (token mati setelah close atau rotasi saat transfer)
func (sc *SessionController) GetSessionByToken(c *gin.Context) {
	token := c.Param("token")

	var session models.TableSession
	err := sc.DB.Preload("Table").
		Where("session_token = ? AND ended_at IS NULL", token).
		First(&session).Error
	if err != nil {
		respondLifecycleError(c, lifecycle.ErrNoSession)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Active session", gin.H{
		"session":      session,
		"table_number": session.Table.TableNumber,
	})
}

// GetSessionHistory -> riwayat sesi sebuah meja (audit trail, staff)
func (sc *SessionController) GetSessionHistory(c *gin.Context) {
	tableID, ok := parseTableID(c, "table_id")
	if !ok {
		return
	}

	var sessions []models.TableSession
	if err := sc.DB.Where("table_id = ?", tableID).
		Order("started_at DESC").
		Find(&sessions).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Session history", sessions)
}
