package billing

import (
	"fmt"
	"time"
)

// FormatNumber FA<W>-<YY><MM><DD>-<NNNN>. NNNN con 4 dígitos mínimo; crece sin truncar.
func FormatNumber(warehouseID int64, at time.Time, n int64) string {
	return fmt.Sprintf("FA%d-%s-%04d", warehouseID, at.Format("060102"), n)
}
