package idgen

import (
	"strconv"
	"strings"

	"approvalflow/internal/clock"

	"github.com/google/uuid"
)

// Generator creates request identifiers.
type Generator interface {
	NewID(formPrefix string) string
}

type timeGenerator struct {
	clock clock.Clock
}

// New returns a Generator producing `<PREFIX>-<yyyymmddHHMMSS>-<4 hex>` ids.
// The random suffix keeps ids unique when two submissions share a second.
func New(c clock.Clock) Generator {
	if c == nil {
		c = clock.System
	}
	return &timeGenerator{clock: c}
}

func (g *timeGenerator) NewID(formPrefix string) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:4]
	return strings.ToUpper(formPrefix) + "-" + g.clock.Now().UTC().Format("20060102150405") + "-" + suffix
}

// Func adapts a function to Generator.
type Func func(formPrefix string) string

func (f Func) NewID(formPrefix string) string { return f(formPrefix) }

// Sequence is a deterministic Generator for tests: the nth id for prefix P
// is `P-n`.
func Sequence() Generator {
	n := 0
	return Func(func(formPrefix string) string {
		n++
		return strings.ToUpper(formPrefix) + "-" + strconv.Itoa(n)
	})
}
