package inventory

import (
	"fmt"
	"strings"
	"time"
)

// Prefijos de doc_ref con significado (se cuentan para los topes mensuales).
const (
	TransferPrefix  = "TRF-"
	InventoryPrefix = "INV-"
)

// TransferDocRef TRF-<origen>-<destino>-<YYYYMMDDHHMMSS>-<sufijo>.
// El sufijo distingue documentos emitidos en el mismo segundo.
func TransferDocRef(src, dst string, at time.Time, suffix string) string {
	return withSuffix(fmt.Sprintf("%s%s-%s-%s", TransferPrefix, slug(src), slug(dst), at.UTC().Format("20060102150405")), suffix)
}

// InventoryDocRef INV-<warehouse_id>-<YYYYMMDDHHMMSS>-<sufijo>.
func InventoryDocRef(warehouseID int64, at time.Time, suffix string) string {
	return withSuffix(fmt.Sprintf("%s%d-%s", InventoryPrefix, warehouseID, at.UTC().Format("20060102150405")), suffix)
}

func withSuffix(ref, suffix string) string {
	if suffix == "" {
		return ref
	}
	return ref + "-" + suffix
}

func slug(s string) string {
	s = strings.TrimSpace(s)
	return strings.Join(strings.Fields(s), "_")
}
