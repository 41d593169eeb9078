// Package reportcode выпускает публичные коды обращений вида WS-<год>-<4 символа>.
package reportcode

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"regexp"
	"strings"

	"github.com/jonboulle/clockwork"
)

const (
	// Prefix - общий префикс всех кодов.
	Prefix = "WS"
	// SuffixLength - длина случайной части кода.
	SuffixLength = 4

	alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

var codeRe = regexp.MustCompile(`^WS-\d{4}-[0-9A-Z]{4}$`)

// Generator собирает коды из года по часам и криптографически случайного суффикса.
type Generator struct {
	clock  clockwork.Clock
	random io.Reader
}

// NewGenerator создаёт генератор. nil clock означает реальное время.
func NewGenerator(clock clockwork.Clock) *Generator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Generator{clock: clock, random: rand.Reader}
}

// WithRandom подменяет источник случайности, используется в тестах.
func (g *Generator) WithRandom(r io.Reader) *Generator {
	g.random = r
	return g
}

// Generate возвращает новый код. Уникальность проверяет хранилище, а не генератор.
func (g *Generator) Generate() (string, error) {
	var sb strings.Builder
	sb.Grow(SuffixLength)

	base := big.NewInt(int64(len(alphabet)))
	for i := 0; i < SuffixLength; i++ {
		n, err := rand.Int(g.random, base)
		if err != nil {
			return "", fmt.Errorf("reportcode: не удалось получить случайное число: %w", err)
		}
		sb.WriteByte(alphabet[n.Int64()])
	}

	return fmt.Sprintf("%s-%d-%s", Prefix, g.clock.Now().UTC().Year(), sb.String()), nil
}

// Valid проверяет формат кода.
func Valid(code string) bool {
	return codeRe.MatchString(code)
}

// Canonical приводит введённый пользователем код к виду, в котором он хранится.
func Canonical(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
