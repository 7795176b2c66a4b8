package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-pos/lifecycle"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
)

type TableController struct {
	DB      *gorm.DB
	Manager *lifecycle.Manager
}

func NewTableController(db *gorm.DB, manager *lifecycle.Manager) *TableController {
	return &TableController{DB: db, Manager: manager}
}

// CreateTable -> menambahkan meja baru (admin)
func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		TableNumber string `json:"table_number" binding:"required"`
		Name        string `json:"name"`
		Capacity    int    `json:"capacity"`
		PosX        int    `json:"pos_x"`
		PosY        int    `json:"pos_y"`
		Area        string `json:"area"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table := models.Table{
		TableNumber: req.TableNumber,
		Name:        req.Name,
		Capacity:    req.Capacity,
		PosX:        req.PosX,
		PosY:        req.PosY,
		Area:        req.Area,
		Status:      models.TableAvailable,
	}
	if table.Capacity < 1 {
		table.Capacity = 2
	}

	if err := tc.DB.Create(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("New table created: %s", table.TableNumber)
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

// GetAllTables -> menampilkan seluruh meja
func (tc *TableController) GetAllTables(c *gin.Context) {
	var tables []models.Table
	if err := tc.DB.Find(&tables).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

// GetTableByID -> detail satu meja
func (tc *TableController) GetTableByID(c *gin.Context) {
	tableID := c.Param("table_id")
	var table models.Table
	if err := tc.DB.First(&table, tableID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

// FindTablesByStatus -> mis. list meja available
func (tc *TableController) FindTablesByStatus(c *gin.Context) {
	status := c.Query("status")
	if status == "" {
		status = models.TableAvailable
	}
	var tables []models.Table
	if err := tc.DB.Where("status = ?", status).Find(&tables).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Tables with status: "+status, tables)
}

// DeleteTable -> menghapus meja. Hanya boleh kalau meja belum pernah punya
// sesi atau order (audit trail tidak boleh kehilangan induknya).
func (tc *TableController) DeleteTable(c *gin.Context) {
	tableID := c.Param("table_id")
	var table models.Table

	if err := tc.DB.First(&table, tableID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var sessionCount int64
	if err := tc.DB.Model(&models.TableSession{}).
		Where("table_id = ?", table.ID).
		Count(&sessionCount).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if sessionCount > 0 {
		utils.RespondError(c, http.StatusConflict,
			fmt.Errorf("table %s has session history and cannot be deleted", table.TableNumber))
		return
	}

	if err := tc.DB.Delete(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Table %d deleted", table.ID)
	utils.RespondJSON(c, http.StatusOK, "Table deleted", gin.H{
		"id": table.ID,
	})
}

// OpenTable -> staff membuka sesi di sebuah meja
func (tc *TableController) OpenTable(c *gin.Context) {
	tableID, ok := parseTableID(c, "table_id")
	if !ok {
		return
	}

	var req struct {
		CustomerCount int `json:"customer_count"`
	}
	// body boleh kosong; default 1 tamu
	_ = c.ShouldBindJSON(&req)

	session, err := tc.Manager.Open(tableID, req.CustomerCount)
	if err != nil {
		respondLifecycleError(c, err)
		return
	}

	utils.InfoLogger.Printf("Table %d opened (session=%d)", tableID, session.ID)
	utils.RespondJSON(c, http.StatusCreated, "Table opened", gin.H{
		"session": session,
		"token":   session.SessionToken,
	})
}

// CloseTable -> staff menutup sesi sebuah meja
func (tc *TableController) CloseTable(c *gin.Context) {
	tableID, ok := parseTableID(c, "table_id")
	if !ok {
		return
	}

	if err := tc.Manager.Close(tableID); err != nil {
		respondLifecycleError(c, err)
		return
	}

	utils.InfoLogger.Printf("Table %d closed", tableID)
	utils.RespondJSON(c, http.StatusOK, "Table closed", nil)
}

// TransferTable -> memindahkan sesi aktif ke meja lain
func (tc *TableController) TransferTable(c *gin.Context) {
	fromID, ok := parseTableID(c, "table_id")
	if !ok {
		return
	}

	var req struct {
		ToTableID uint `json:"to_table_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	newToken, err := tc.Manager.Transfer(fromID, req.ToTableID)
	if err != nil {
		respondLifecycleError(c, err)
		return
	}

	utils.InfoLogger.Printf("Session transferred from table %d to table %d", fromID, req.ToTableID)
	utils.RespondJSON(c, http.StatusOK, "Table transferred", gin.H{
		"new_token": newToken,
	})
}

// MergeTables -> menggabungkan sesi meja lain ke meja ini
func (tc *TableController) MergeTables(c *gin.Context) {
	targetID, ok := parseTableID(c, "table_id")
	if !ok {
		return
	}

	var req struct {
		FromTableID uint `json:"from_table_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := tc.Manager.Merge(targetID, req.FromTableID); err != nil {
		respondLifecycleError(c, err)
		return
	}

	utils.InfoLogger.Printf("Table %d merged into table %d", req.FromTableID, targetID)
	utils.RespondJSON(c, http.StatusOK, "Tables merged", nil)
}

// GetQrTarget -> isi QR code untuk meja yang sedang terbuka
func (tc *TableController) GetQrTarget(c *gin.Context) {
	tableID, ok := parseTableID(c, "table_id")
	if !ok {
		return
	}

	target, err := tc.Manager.QrTarget(tableID)
	if err != nil {
		respondLifecycleError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "QR target", target)
}

func parseTableID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid table id"))
		return 0, false
	}
	return uint(id), true
}

// respondLifecycleError memetakan error engine ke status HTTP. Error yang
// tidak dikenal berarti transaksi roll back karena masalah store; jangan
// bocorkan detailnya ke pemanggil.
func respondLifecycleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, lifecycle.ErrTableNotFound),
		errors.Is(err, lifecycle.ErrNoSession):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, lifecycle.ErrSessionExists),
		errors.Is(err, lifecycle.ErrTableOccupied),
		errors.Is(err, lifecycle.ErrUnpaidOrders):
		utils.RespondError(c, http.StatusConflict, err)
	case errors.Is(err, lifecycle.ErrInvalidRequest):
		utils.RespondError(c, http.StatusBadRequest, err)
	default:
		utils.ErrorLogger.Printf("lifecycle operation failed: %v", err)
		utils.RespondError(c, http.StatusInternalServerError,
			errors.New("internal error"))
	}
}
