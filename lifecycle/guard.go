package lifecycle

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-pos/models"
)

// Guard: pengecekan prasyarat sebelum transisi lifecycle dijalankan.
// Semua fungsi di sini murni baca dan dievaluasi di dalam transaksi yang
// sama dengan mutasinya. Pre-check ini hanya untuk pesan error yang ramah;
// penentu akhir saat dua request balapan adalah unique index ActiveTableID
// plus update bersyarat (WHERE ended_at IS NULL) yang dicek RowsAffected-nya.

func getTable(tx *gorm.DB, tableID uint) (*models.Table, error) {
	var table models.Table
	err := tx.First(&table, tableID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTableNotFound
	}
	if err != nil {
		return nil, err
	}
	return &table, nil
}

// findActiveSession mencari sesi yang belum berakhir pada sebuah meja.
// ErrNoSession jika tidak ada.
func findActiveSession(tx *gorm.DB, tableID uint) (*models.TableSession, error) {
	var session models.TableSession
	err := tx.Where("table_id = ? AND ended_at IS NULL", tableID).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// hasActiveSession -> versi boolean untuk guard OPEN/TRANSFER
func hasActiveSession(tx *gorm.DB, tableID uint) (bool, error) {
	var count int64
	err := tx.Model(&models.TableSession{}).
		Where("table_id = ? AND ended_at IS NULL", tableID).
		Count(&count).Error
	return count > 0, err
}

// countBlockingOrders menghitung order di sebuah sesi yang statusnya belum
// "settled". Daftar status settled sengaja configurable (lihat Manager);
// semua status lain dianggap menghalangi penutupan meja.
func countBlockingOrders(tx *gorm.DB, sessionID uint, settled []string) (int64, error) {
	var count int64
	err := tx.Model(&models.Order{}).
		Where("table_session_id = ? AND status NOT IN ?", sessionID, settled).
		Count(&count).Error
	return count, err
}
