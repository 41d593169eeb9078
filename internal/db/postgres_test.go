package db

import (
	"os"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMigrations_OrderedSQLOnly(t *testing.T) {
	fsys := fstest.MapFS{
		"002_users.sql":   {Data: []byte("CREATE TABLE users (id UUID);")},
		"001_init.sql":    {Data: []byte("CREATE TABLE reports (id UUID);")},
		"README.md":       {Data: []byte("notes")},
		"drafts/003.sql":  {Data: []byte("SELECT 1;")},
		"010_indexes.sql": {Data: []byte("CREATE INDEX x ON reports (id);")},
	}

	migrations, err := LoadMigrations(fsys)
	require.NoError(t, err)

	names := make([]string, 0, len(migrations))
	for _, m := range migrations {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"001_init.sql", "002_users.sql", "010_indexes.sql"}, names)
	assert.Contains(t, migrations[0].SQL, "reports")
}

func TestLoadMigrations_RejectsEmptyFile(t *testing.T) {
	_, err := LoadMigrations(fstest.MapFS{"001_init.sql": {Data: []byte("  \n")}})
	assert.Error(t, err)
}

func TestLoadMigrations_RepositoryMigrations(t *testing.T) {
	migrations, err := LoadMigrations(os.DirFS("../../migrations"))
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, "001_init.sql", migrations[0].Name)
	assert.Contains(t, migrations[0].SQL, "report_codes")
	assert.Equal(t, "002_users.sql", migrations[1].Name)
}

func TestPending(t *testing.T) {
	all := []Migration{{Name: "001_init.sql"}, {Name: "002_users.sql"}, {Name: "003_more.sql"}}

	assert.Equal(t, all, Pending(all, nil))
	assert.Equal(t, []Migration{{Name: "002_users.sql"}, {Name: "003_more.sql"}}, Pending(all, []string{"001_init.sql"}))
	assert.Empty(t, Pending(all, []string{"003_more.sql", "001_init.sql", "002_users.sql"}))
}
