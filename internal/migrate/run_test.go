package migrate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiles(t *testing.T) {
	for _, driver := range []string{"pgx", "mysql"} {
		t.Run(driver, func(t *testing.T) {
			files, err := Files(driver)
			require.NoError(t, err)
			require.NotEmpty(t, files)
			assert.Equal(t, "0001_queue_tables.sql", files[0])
		})
	}

	_, err := Files("sqlite")
	assert.Error(t, err)
}

func TestSplitStatements(t *testing.T) {
	script := `
-- comment
CREATE TABLE a (
    id INT
);

CREATE INDEX idx ON a (id);
SELECT 1`
	stmts := SplitStatements(script)
	require.Len(t, stmts, 3)
	assert.True(t, strings.HasPrefix(stmts[0], "CREATE TABLE a ("))
	assert.False(t, strings.HasSuffix(stmts[0], ";"))
	assert.Equal(t, "CREATE INDEX idx ON a (id)", stmts[1])
	assert.Equal(t, "SELECT 1", stmts[2])
}

func TestEmbeddedMigrationsCreateQueueTables(t *testing.T) {
	for _, dir := range []string{"migrations/postgres", "migrations/mysql"} {
		raw, err := migrationsFS.ReadFile(dir + "/0001_queue_tables.sql")
		require.NoError(t, err)
		stmts := SplitStatements(string(raw))
		joined := strings.Join(stmts, "\n")
		for _, table := range []string{"queue_push", "queue_exec", "queue_worker"} {
			assert.Contains(t, joined, table, dir)
		}
	}
}

func TestRun_UnknownDriver(t *testing.T) {
	err := Run(t.Context(), nil, "oracle")
	assert.Error(t, err)
}
