// Package reference mints the human-readable control numbers shown to callers
// as proof of a payment. Control numbers are display-only and not unique.
package reference

import (
	"fmt"
	"math/rand/v2"
	"time"
)

const FallbackPrefix = "PY"

var prefixes = map[string]string{
	"mpesa":       "MP",
	"tigopesa":    "TP",
	"airtelmoney": "AM",
}

// Prefix returns the two-letter prefix for a payment method code.
func Prefix(methodCode string) string {
	if p, ok := prefixes[methodCode]; ok {
		return p
	}
	return FallbackPrefix
}

type Generator struct {
	suffix func() int
}

func NewGenerator() *Generator {
	return &Generator{suffix: func() int { return rand.IntN(10000) }}
}

// WithSuffix builds a generator with a fixed random component.
func WithSuffix(fn func() int) *Generator {
	return &Generator{suffix: fn}
}

// Control builds <prefix><YYYYMMDD><booking id %04d><suffix %04d>.
func (g *Generator) Control(bookingID int64, methodCode string, now time.Time) string {
	return fmt.Sprintf("%s%s%04d%04d", Prefix(methodCode), now.Format("20060102"), bookingID%10000, g.suffix()%10000)
}
