package lifecycle

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-pos/events"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
)

// Manager adalah state machine occupancy meja: open/close/transfer/merge.
// Setiap transisi multi-entity dibungkus satu transaksi database: commit
// semua atau tidak sama sekali. Hanya Manager yang boleh mengubah
// Table.Status dan TableSession.EndedAt/TableID/SessionToken/CustomerCount.
//
// Handler request berjalan paralel tanpa lock in-memory bersama, jadi
// pre-check guard saja tidak cukup. Dua mekanisme store yang jadi penentu:
// unique index di TableSession.ActiveTableID (dua OPEN balapan, satu kalah
// saat insert) dan update bersyarat WHERE ended_at IS NULL AND table_id = ?
// yang dicek RowsAffected-nya (dua TRANSFER/CLOSE balapan, yang kedua
// melihat 0 row dan batal).
type Manager struct {
	DB     *gorm.DB
	Events events.Publisher

	// Status order yang dianggap selesai dan tidak menghalangi CLOSE.
	// Sengaja configurable, bukan hardcode dua status.
	SettledStatuses []string

	// Base URL untuk target QR code di meja
	QRBaseURL string
}

// QrTarget -> isi QR code yang ditempel/ditampilkan di meja
type QrTarget struct {
	URL         string `json:"url"`
	Token       string `json:"token"`
	TableNumber string `json:"table_number"`
}

func NewManager(db *gorm.DB, bus events.Publisher) *Manager {
	return &Manager{
		DB:              db,
		Events:          bus,
		SettledStatuses: []string{models.OrderPaid, models.OrderCancelled},
		QRBaseURL:       "http://localhost:8080",
	}
}

// update struct per transisi; Select di pemanggil yang memaksa kolom
// bernilai NULL ikut tertulis

type closeSessionUpdate struct {
	ActiveTableID *uint
	EndedAt       *time.Time
}

type transferSessionUpdate struct {
	TableID       uint
	ActiveTableID *uint
	SessionToken  string
}

// Open membuka sesi baru di sebuah meja: buat TableSession dengan token
// baru, set meja jadi occupied.
func (m *Manager) Open(tableID uint, customerCount int) (*models.TableSession, error) {
	if customerCount < 1 {
		customerCount = 1
	}

	var session models.TableSession
	err := m.DB.Transaction(func(tx *gorm.DB) error {
		table, err := getTable(tx, tableID)
		if err != nil {
			return err
		}

		occupied, err := hasActiveSession(tx, table.ID)
		if err != nil {
			return err
		}
		if occupied {
			return ErrSessionExists
		}

		session = models.TableSession{
			TableID:       table.ID,
			ActiveTableID: &table.ID,
			SessionToken:  IssueToken(),
			CustomerCount: customerCount,
			StartedAt:     time.Now(),
		}
		if err := tx.Create(&session).Error; err != nil {
			// kalah balapan dengan OPEN lain di meja yang sama
			if isDuplicateKey(err) {
				return ErrSessionExists
			}
			return err
		}

		return setTableStatus(tx, table.ID, models.TableOccupied)
	})
	if err != nil {
		return nil, err
	}

	m.publish(events.TopicTableOpened, map[string]interface{}{
		"table_id": tableID,
		"session":  session,
	})
	return &session, nil
}

// Close menutup sesi aktif sebuah meja. Ditolak selama masih ada order
// yang belum settled. Menutup meja yang sudah tertutup selalu ErrNoSession,
// tidak pernah sukses diam-diam.
func (m *Manager) Close(tableID uint) error {
	err := m.DB.Transaction(func(tx *gorm.DB) error {
		table, err := getTable(tx, tableID)
		if err != nil {
			return err
		}

		session, err := findActiveSession(tx, table.ID)
		if err != nil {
			return err
		}

		blocking, err := countBlockingOrders(tx, session.ID, m.SettledStatuses)
		if err != nil {
			return err
		}
		if blocking > 0 {
			return ErrUnpaidOrders
		}

		if err := endSession(tx, session.ID, table.ID); err != nil {
			return err
		}
		return setTableStatus(tx, table.ID, models.TableAvailable)
	})
	if err != nil {
		return err
	}

	m.publish(events.TopicTableClosed, map[string]interface{}{
		"table_id": tableID,
	})
	return nil
}

// Transfer memindahkan seluruh sesi aktif (beserta ordernya) dari satu
// meja ke meja lain. Token dirotasi: token lama terpampang fisik di meja
// asal, kalau dipakai ulang perangkat customer lama masih bisa mengakses
// meja yang salah.
func (m *Manager) Transfer(fromID, toID uint) (string, error) {
	if fromID == toID {
		return "", ErrInvalidRequest
	}

	var newToken string
	err := m.DB.Transaction(func(tx *gorm.DB) error {
		fromTable, err := getTable(tx, fromID)
		if err != nil {
			return err
		}
		toTable, err := getTable(tx, toID)
		if err != nil {
			return err
		}

		session, err := findActiveSession(tx, fromTable.ID)
		if err != nil {
			return err
		}

		occupied, err := hasActiveSession(tx, toTable.ID)
		if err != nil {
			return err
		}
		if occupied {
			return ErrTableOccupied
		}

		newToken = IssueToken()
		res := tx.Model(&models.TableSession{}).
			Where("id = ? AND table_id = ? AND ended_at IS NULL", session.ID, fromTable.ID).
			Select("TableID", "ActiveTableID", "SessionToken").
			Updates(transferSessionUpdate{
				TableID:       toTable.ID,
				ActiveTableID: &toTable.ID,
				SessionToken:  newToken,
			})
		if res.Error != nil {
			// kalah balapan dengan OPEN/TRANSFER lain ke meja tujuan
			if isDuplicateKey(res.Error) {
				return ErrTableOccupied
			}
			return res.Error
		}
		if res.RowsAffected != 1 {
			// sesi keburu ditutup/dipindah request lain
			return ErrNoSession
		}

		// Re-parent semua order yang menunjuk sesi ini. Scope-nya query
		// di dalam transaksi, bukan daftar yang diambil lebih awal, supaya
		// order yang masuk di tengah request tidak tertinggal.
		if err := tx.Model(&models.Order{}).
			Where("table_session_id = ?", session.ID).
			Update("table_id", toTable.ID).Error; err != nil {
			return err
		}

		if err := setTableStatus(tx, fromTable.ID, models.TableAvailable); err != nil {
			return err
		}
		return setTableStatus(tx, toTable.ID, models.TableOccupied)
	})
	if err != nil {
		return "", err
	}

	m.publish(events.TopicTableTransferred, map[string]interface{}{
		"from_table_id": fromID,
		"to_table_id":   toID,
		"new_token":     newToken,
	})
	return newToken, nil
}

// Merge melipat sesi aktif meja `from` ke sesi aktif meja `target`:
// semua order pindah ke sesi target, jumlah tamu diakumulasikan, lalu
// sesi sumber ditutup dan mejanya kembali available.
func (m *Manager) Merge(targetID, fromID uint) error {
	if targetID == fromID {
		return ErrInvalidRequest
	}

	err := m.DB.Transaction(func(tx *gorm.DB) error {
		targetTable, err := getTable(tx, targetID)
		if err != nil {
			return err
		}
		fromTable, err := getTable(tx, fromID)
		if err != nil {
			return err
		}

		targetSession, err := findActiveSession(tx, targetTable.ID)
		if err != nil {
			return err
		}
		fromSession, err := findActiveSession(tx, fromTable.ID)
		if err != nil {
			return err
		}

		// Akumulasi tamu secara compare-and-set. findActiveSession di atas
		// hanya snapshot; sesi target bisa keburu ditutup request lain
		// sebelum kita menulis. 0 row berarti target sudah berakhir dan
		// seluruh merge batal, jangan sampai order sumber menempel ke sesi
		// yang sudah ended.
		res := tx.Model(&models.TableSession{}).
			Where("id = ? AND ended_at IS NULL", targetSession.ID).
			Update("customer_count",
				gorm.Expr("customer_count + ?", fromSession.CustomerCount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return ErrNoSession
		}

		// re-parent order: meja DAN sesi ikut pindah ke target
		if err := tx.Model(&models.Order{}).
			Where("table_session_id = ?", fromSession.ID).
			Updates(map[string]interface{}{
				"table_id":         targetTable.ID,
				"table_session_id": targetSession.ID,
			}).Error; err != nil {
			return err
		}

		if err := endSession(tx, fromSession.ID, fromTable.ID); err != nil {
			return err
		}
		return setTableStatus(tx, fromTable.ID, models.TableAvailable)
	})
	if err != nil {
		return err
	}

	m.publish(events.TopicTableMerged, map[string]interface{}{
		"target_table_id": targetID,
		"from_table_id":   fromID,
	})
	m.publish(events.TopicTableClosed, map[string]interface{}{
		"table_id": fromID,
	})
	return nil
}

// QrTarget mengembalikan isi QR code meja: URL self-order + token sesi
// aktif. Read-only, bukan transisi.
func (m *Manager) QrTarget(tableID uint) (*QrTarget, error) {
	table, err := getTable(m.DB, tableID)
	if err != nil {
		return nil, err
	}

	session, err := findActiveSession(m.DB, table.ID)
	if err != nil {
		return nil, err
	}

	return &QrTarget{
		URL: fmt.Sprintf("%s/tables/%d/menu?token=%s",
			m.QRBaseURL, table.ID, session.SessionToken),
		Token:       session.SessionToken,
		TableNumber: table.TableNumber,
	}, nil
}

// endSession menutup sesi secara compare-and-set; 0 row berarti sesi sudah
// keburu ditutup atau dipindah oleh request lain
func endSession(tx *gorm.DB, sessionID, tableID uint) error {
	now := time.Now()
	res := tx.Model(&models.TableSession{}).
		Where("id = ? AND table_id = ? AND ended_at IS NULL", sessionID, tableID).
		Select("ActiveTableID", "EndedAt").
		Updates(closeSessionUpdate{ActiveTableID: nil, EndedAt: &now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		return ErrNoSession
	}
	return nil
}

// setTableStatus -> satu-satunya jalur penulisan Table.Status
func setTableStatus(tx *gorm.DB, tableID uint, status string) error {
	return tx.Model(&models.Table{}).
		Where("id = ?", tableID).
		Update("status", status).Error
}

// isDuplicateKey mengenali pelanggaran unique index dari MySQL maupun
// SQLite (driver test)
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// publish -> side channel best-effort; transisi yang sudah commit tidak
// pernah dibatalkan gara-gara notifikasi gagal
func (m *Manager) publish(topic string, payload interface{}) {
	if m.Events == nil {
		return
	}
	if err := m.Events.Publish(topic, payload); err != nil {
		utils.ErrorLogger.Printf("Failed to publish %s: %v", topic, err)
	}
}
