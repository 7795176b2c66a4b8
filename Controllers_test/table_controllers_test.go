package Controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-pos/controllers"
	"github.com/yeremiapane/restaurant-pos/lifecycle"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
)

// setupTestDBForTables menggunakan SQLite in-memory khusus untuk TableController
func setupTestDBForTables(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.Table{},
		&models.TableSession{},
		&models.Order{},
		&models.OrderItem{},
		&models.Menu{},
		&models.MenuCategory{},
		&models.Notification{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func setupTableRouter(db *gorm.DB) (*gin.Engine, *lifecycle.Manager) {
	gin.SetMode(gin.TestMode)
	utils.InitLogger()

	manager := lifecycle.NewManager(db, nil)
	tableCtrl := controllers.NewTableController(db, manager)

	router := gin.Default()
	router.POST("/tables", tableCtrl.CreateTable)
	router.GET("/tables", tableCtrl.GetAllTables)
	router.DELETE("/tables/:table_id", tableCtrl.DeleteTable)
	router.POST("/tables/:table_id/open", tableCtrl.OpenTable)
	router.POST("/tables/:table_id/close", tableCtrl.CloseTable)
	router.POST("/tables/:table_id/transfer", tableCtrl.TransferTable)
	router.POST("/tables/:table_id/merge", tableCtrl.MergeTables)
	router.GET("/tables/:table_id/qr", tableCtrl.GetQrTarget)
	return router, manager
}

func doJSON(t *testing.T, router *gin.Engine, method, url string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		assert.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func seedTableRow(t *testing.T, db *gorm.DB, number string) *models.Table {
	t.Helper()
	table := models.Table{TableNumber: number, Status: models.TableAvailable, Capacity: 4}
	assert.NoError(t, db.Create(&table).Error)
	return &table
}

func TestCreateTable(t *testing.T) {
	db := setupTestDBForTables(t)
	router, _ := setupTableRouter(db)

	w := doJSON(t, router, http.MethodPost, "/tables", map[string]interface{}{
		"table_number": "A1",
		"capacity":     4,
		"area":         "indoor",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Table created successfully", response["message"])

	data := response["data"].(map[string]interface{})
	assert.Equal(t, "available", data["status"])
}

func TestOpenTableEndpoint(t *testing.T) {
	db := setupTestDBForTables(t)
	router, _ := setupTableRouter(db)
	table := seedTableRow(t, db, "T5")

	url := "/tables/" + strconv.Itoa(int(table.ID)) + "/open"
	w := doJSON(t, router, http.MethodPost, url, map[string]interface{}{
		"customer_count": 2,
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	token := data["token"].(string)
	assert.Len(t, token, 64)

	// open kedua di meja yang sama -> conflict, state tidak berubah
	w2 := doJSON(t, router, http.MethodPost, url, map[string]interface{}{
		"customer_count": 3,
	})
	assert.Equal(t, http.StatusConflict, w2.Code)

	var table5 models.Table
	assert.NoError(t, db.First(&table5, table.ID).Error)
	assert.Equal(t, models.TableOccupied, table5.Status)
}

func TestCloseTableEndpoint(t *testing.T) {
	db := setupTestDBForTables(t)
	router, manager := setupTableRouter(db)
	table := seedTableRow(t, db, "T5")

	session, err := manager.Open(table.ID, 2)
	assert.NoError(t, err)

	// order yang belum settled menghalangi close
	order := models.Order{
		TableID:        table.ID,
		TableSessionID: session.ID,
		Status:         models.OrderOpen,
	}
	assert.NoError(t, db.Create(&order).Error)

	url := "/tables/" + strconv.Itoa(int(table.ID)) + "/close"
	w := doJSON(t, router, http.MethodPost, url, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// setelah dibayar, close jalan
	assert.NoError(t, db.Model(&order).Update("status", models.OrderPaid).Error)
	w2 := doJSON(t, router, http.MethodPost, url, nil)
	assert.Equal(t, http.StatusOK, w2.Code)

	var closedTable models.Table
	assert.NoError(t, db.First(&closedTable, table.ID).Error)
	assert.Equal(t, models.TableAvailable, closedTable.Status)

	// close ulang -> not found (tidak pernah sukses diam-diam)
	w3 := doJSON(t, router, http.MethodPost, url, nil)
	assert.Equal(t, http.StatusNotFound, w3.Code)
}

func TestTransferTableEndpoint(t *testing.T) {
	db := setupTestDBForTables(t)
	router, manager := setupTableRouter(db)
	from := seedTableRow(t, db, "T3")
	to := seedTableRow(t, db, "T8")

	session, err := manager.Open(from.ID, 2)
	assert.NoError(t, err)

	url := "/tables/" + strconv.Itoa(int(from.ID)) + "/transfer"
	w := doJSON(t, router, http.MethodPost, url, map[string]interface{}{
		"to_table_id": to.ID,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	newToken := data["new_token"].(string)
	assert.Len(t, newToken, 64)
	assert.NotEqual(t, session.SessionToken, newToken)

	// transfer ke diri sendiri -> bad request
	w2 := doJSON(t, router, http.MethodPost,
		"/tables/"+strconv.Itoa(int(to.ID))+"/transfer",
		map[string]interface{}{"to_table_id": to.ID})
	assert.Equal(t, http.StatusBadRequest, w2.Code)
}

func TestMergeTablesEndpoint(t *testing.T) {
	db := setupTestDBForTables(t)
	router, manager := setupTableRouter(db)
	from := seedTableRow(t, db, "T3")
	target := seedTableRow(t, db, "T5")

	_, err := manager.Open(from.ID, 2)
	assert.NoError(t, err)
	targetSession, err := manager.Open(target.ID, 4)
	assert.NoError(t, err)

	url := "/tables/" + strconv.Itoa(int(target.ID)) + "/merge"
	w := doJSON(t, router, http.MethodPost, url, map[string]interface{}{
		"from_table_id": from.ID,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var merged models.TableSession
	assert.NoError(t, db.First(&merged, targetSession.ID).Error)
	assert.Equal(t, 6, merged.CustomerCount)
}

func TestQrTargetEndpoint(t *testing.T) {
	db := setupTestDBForTables(t)
	router, manager := setupTableRouter(db)
	table := seedTableRow(t, db, "T9")

	url := "/tables/" + strconv.Itoa(int(table.ID)) + "/qr"

	// belum ada sesi -> 404
	w := doJSON(t, router, http.MethodGet, url, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	session, err := manager.Open(table.ID, 2)
	assert.NoError(t, err)

	w2 := doJSON(t, router, http.MethodGet, url, nil)
	assert.Equal(t, http.StatusOK, w2.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w2.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	assert.Equal(t, session.SessionToken, data["token"])
	assert.Equal(t, "T9", data["table_number"])
}

func TestDeleteTableWithHistory(t *testing.T) {
	db := setupTestDBForTables(t)
	router, manager := setupTableRouter(db)
	table := seedTableRow(t, db, "T5")

	_, err := manager.Open(table.ID, 2)
	assert.NoError(t, err)
	assert.NoError(t, manager.Close(table.ID))

	// meja dengan riwayat sesi tidak boleh dihapus
	w := doJSON(t, router, http.MethodDelete,
		"/tables/"+strconv.Itoa(int(table.ID)), nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	fresh := seedTableRow(t, db, "T6")
	w2 := doJSON(t, router, http.MethodDelete,
		"/tables/"+strconv.Itoa(int(fresh.ID)), nil)
	assert.Equal(t, http.StatusOK, w2.Code)
}
