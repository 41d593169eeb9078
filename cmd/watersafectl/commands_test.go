package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedAndOperatorCreate_Badger(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("STORAGE_DRIVER", "badger")
	t.Setenv("BADGER_PATH", filepath.Join(t.TempDir(), "badger"))
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("KAFKA_BROKERS", "")

	var out bytes.Buffer
	rootCmd.SetOut(&out)

	rootCmd.SetArgs([]string{"seed"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "users upserted: 2")
	assert.Contains(t, out.String(), "reports created: 3")

	out.Reset()
	rootCmd.SetArgs([]string{"seed"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "reports skipped")

	out.Reset()
	rootCmd.SetArgs([]string{"operator", "create", "--email", "ops@watersafe.example", "--password", "CorrectHorse42"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "operator ops@watersafe.example ready")

	rootCmd.SetArgs([]string{"operator", "create", "--email", "ops@watersafe.example", "--password", "weak"})
	assert.Error(t, rootCmd.Execute())

	out.Reset()
	rootCmd.SetArgs([]string{"migrate"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "migrations applied")
}
