package config

import (
	"fmt"
	"os"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// InitDB membuka koneksi database berdasarkan env. Production pakai MySQL;
// DB_DRIVER=sqlite dipakai untuk development lokal. TranslateError aktif
// supaya pelanggaran unique index terbaca sebagai gorm.ErrDuplicatedKey
// di semua driver.
func InitDB() (*gorm.DB, error) {
	cfg := &gorm.Config{TranslateError: true}

	driver := os.Getenv("DB_DRIVER")
	if driver == "sqlite" {
		path := os.Getenv("DB_PATH")
		if path == "" {
			path = "restaurant-pos.db"
		}
		return gorm.Open(sqlite.Open(path), cfg)
	}

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			getEnv("DB_USER", "root"),
			os.Getenv("DB_PASSWORD"),
			getEnv("DB_HOST", "127.0.0.1"),
			getEnv("DB_PORT", "3306"),
			getEnv("DB_NAME", "restaurant_pos"),
		)
	}
	return gorm.Open(mysql.Open(dsn), cfg)
}

// SettledOrderStatuses membaca daftar status order yang dianggap selesai
// dari env (comma separated). Default: paid,cancelled.
func SettledOrderStatuses() []string {
	raw := os.Getenv("ORDER_SETTLED_STATUSES")
	if raw == "" {
		return nil
	}
	var statuses []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			statuses = append(statuses, s)
		}
	}
	return statuses
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
