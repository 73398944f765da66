package notify

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
)

// FormatCurrency formatea en USD con separador de miles y entre 2 y 4 decimales.
// 12.5 → "$12.50", 1234.56789 → "$1,234.5679", -3 → "-$3.00".
func FormatCurrency(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Sprintf("%v", v)
	}
	sign, abs := splitSign(v)
	return sign + "$" + groupedDecimal(abs)
}

// FormatPercentage formatea una fracción como porcentaje con 2 a 4 decimales.
// 0.5775 → "57.75%", 0.577493 → "57.7493%".
func FormatPercentage(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Sprintf("%v", v)
	}
	sign, abs := splitSign(v * 100)
	return sign + groupedDecimal(abs) + "%"
}

// FormatFactor formatea u y d con 4 decimales fijos.
func FormatFactor(v float64) string {
	return fmt.Sprintf("%.4f", v)
}

// splitSign redondea a 4 decimales antes de decidir el signo, para que
// -0.00001 se imprima como "0.00" y no como "-0.00".
func splitSign(v float64) (string, float64) {
	rounded := math.Round(v*1e4) / 1e4
	if rounded < 0 {
		return "-", -rounded
	}
	return "", math.Abs(rounded)
}

// groupedDecimal redondea a 4 decimales, agrupa miles y rellena hasta 2 decimales.
func groupedDecimal(v float64) string {
	rounded := math.Round(v*1e4) / 1e4
	s := humanize.CommafWithDigits(rounded, 4)

	dot := strings.IndexByte(s, '.')
	switch {
	case dot < 0:
		return s + ".00"
	case len(s)-dot-1 < 2:
		return s + strings.Repeat("0", 2-(len(s)-dot-1))
	}
	return s
}
