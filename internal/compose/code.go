package compose

import (
	"fmt"
	"time"
)

// CodeGenerator produces the display code printed in the certificate footer.
// Codes are not guaranteed unique: two certificates issued at the same
// millisecond modulo 1e6 share a suffix.
type CodeGenerator struct {
	now func() time.Time
}

func NewCodeGenerator(now func() time.Time) *CodeGenerator {
	if now == nil {
		now = time.Now
	}
	return &CodeGenerator{now: now}
}

// Generate returns DD/MM/YYYY-NNNNNN for the current instant.
func (g *CodeGenerator) Generate() string {
	return FormatCode(g.now())
}

func FormatCode(t time.Time) string {
	suffix := t.UnixMilli() % 1_000_000
	if suffix < 0 {
		suffix += 1_000_000
	}
	return fmt.Sprintf("%s-%06d", t.Format("02/01/2006"), suffix)
}
