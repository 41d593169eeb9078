package reportcode

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestGenerator_Format(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))
	gen := NewGenerator(clock)

	for i := 0; i < 200; i++ {
		code, err := gen.Generate()
		require.NoError(t, err)
		assert.True(t, Valid(code), code)
		assert.Equal(t, "WS-2026-", code[:8])
	}
}

func TestGenerator_UsesClockYear(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 12, 31, 23, 59, 0, 0, time.UTC))
	gen := NewGenerator(clock)

	code, err := gen.Generate()
	require.NoError(t, err)
	assert.Contains(t, code, "-2025-")

	clock.Advance(2 * time.Minute)
	code, err = gen.Generate()
	require.NoError(t, err)
	assert.Contains(t, code, "-2026-")
}

func TestGenerator_Deterministic(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	seed := bytes.Repeat([]byte{0x00}, 64)

	a, err := NewGenerator(clock).WithRandom(bytes.NewReader(seed)).Generate()
	require.NoError(t, err)
	b, err := NewGenerator(clock).WithRandom(bytes.NewReader(seed)).Generate()
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.True(t, Valid(a))
}

func TestGenerator_RandomFailure(t *testing.T) {
	gen := NewGenerator(nil).WithRandom(failingReader{})

	_, err := gen.Generate()
	assert.Error(t, err)
}

func TestGenerator_SpreadsAcrossAlphabet(t *testing.T) {
	gen := NewGenerator(nil)
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		code, err := gen.Generate()
		require.NoError(t, err)
		seen[code] = struct{}{}
	}
	// 1000 кодов из 36^4 почти наверняка различны.
	assert.Greater(t, len(seen), 990)
}

func TestValidAndCanonical(t *testing.T) {
	assert.True(t, Valid("WS-2025-A1B2"))
	assert.False(t, Valid("WS-2025-001"))
	assert.False(t, Valid("ws-2025-a1b2"))
	assert.Equal(t, "WS-2025-A1B2", Canonical("  ws-2025-a1b2 "))
}
