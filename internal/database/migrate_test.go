// migrate_test.go validates the migration SQL files themselves so schema
// mistakes are caught in CI instead of at startup against a live database.
package database

import (
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validChatRoles must match the ENUM values on chatbot_messages.role.
// Defined in 000003.
var validChatRoles = map[string]bool{
	"user":      true,
	"assistant": true,
}

// migrationsDir returns the absolute path to db/migrations/ from the
// project root.
func migrationsDir(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine test file path")
	}
	// thisFile is internal/database/migrate_test.go, root is two dirs up.
	projectRoot := filepath.Join(filepath.Dir(thisFile), "..", "..")
	dir := filepath.Join(projectRoot, "db", "migrations")
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("migrations directory not found at %s: %v", dir, err)
	}
	return dir
}

// TestMigrations_UpDownPairs verifies every .up.sql has a matching .down.sql
// so golang-migrate never hits a one-sided version.
func TestMigrations_UpDownPairs(t *testing.T) {
	dir := migrationsDir(t)

	ups, err := filepath.Glob(filepath.Join(dir, "*.up.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, ups, "no migrations found")

	for _, up := range ups {
		down := strings.TrimSuffix(up, ".up.sql") + ".down.sql"
		_, err := os.Stat(down)
		assert.NoError(t, err, "missing down migration for %s", filepath.Base(up))
	}
}

// TestMigrations_ChatRoleEnum checks the chatbot_messages.role ENUM
// definition matches the roles the application writes. A mismatch fails
// with a data-truncation error only at insert time, which is far too late
// to find out.
func TestMigrations_ChatRoleEnum(t *testing.T) {
	dir := migrationsDir(t)

	data, err := os.ReadFile(filepath.Join(dir, "000003_create_chatbot_messages.up.sql"))
	require.NoError(t, err)

	enumRe := regexp.MustCompile(`(?i)ENUM\(([^)]+)\)`)
	m := enumRe.FindStringSubmatch(string(data))
	require.NotNil(t, m, "role ENUM definition not found")

	defined := map[string]bool{}
	for _, v := range strings.Split(m[1], ",") {
		defined[strings.Trim(strings.TrimSpace(v), "'")] = true
	}
	assert.Equal(t, validChatRoles, defined)
}

// TestMigrations_UsersEmailCaseSensitive ensures the users.email column
// keeps its binary collation. Losing it would make duplicate-email checks
// case-insensitive and diverge from the application's lookup semantics.
func TestMigrations_UsersEmailCaseSensitive(t *testing.T) {
	dir := migrationsDir(t)

	data, err := os.ReadFile(filepath.Join(dir, "000001_create_users.up.sql"))
	require.NoError(t, err)

	sql := strings.ToLower(string(data))
	assert.Contains(t, sql, "utf8mb4_bin", "users.email must use a binary collation")
	assert.Contains(t, sql, "uq_users_email", "users.email must be unique")
}
