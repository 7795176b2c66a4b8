package lifecycle

import (
	"crypto/rand"
	"encoding/hex"
)

// Panjang token sesi dalam karakter hex (32 byte = 256 bit entropi).
const tokenLength = 64

// IssueToken menghasilkan token sesi yang tidak bisa ditebak untuk binding
// QR code. Dengan 256 bit entropi, kemungkinan tabrakan diabaikan; token
// yang baru tidak dicek ulang terhadap token yang sudah ada.
func IssueToken() string {
	buf := make([]byte, tokenLength/2)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand di platform yang didukung tidak pernah gagal
		panic(err)
	}
	return hex.EncodeToString(buf)
}
