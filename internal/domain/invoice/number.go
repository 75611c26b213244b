package invoice

import "fmt"

// MinNumberWidth is the minimum digit count of the numeric part of an invoice
// number. Larger values are printed in full, never truncated.
const MinNumberWidth = 3

// FormatNumber renders prefix + zero padded value, e.g. INV-007 or INV-1500.
func FormatNumber(prefix string, value int64) string {
	return fmt.Sprintf("%s%0*d", prefix, MinNumberWidth, value)
}
