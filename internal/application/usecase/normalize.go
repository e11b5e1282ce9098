package usecase

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// normalizeCode forma canónica de SKU y códigos de bodega: NFKC, sin espacios en los
// extremos, espacios internos como guion y en mayúsculas. Así "sku 001", "ＳＫＵ 001" y
// " SKU-001 " colisionan en el índice único.
func normalizeCode(s string) string {
	s = norm.NFKC.String(s)
	s = strings.Join(strings.Fields(s), "-")
	return strings.ToUpper(s)
}
