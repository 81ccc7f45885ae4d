package test

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/smartenroll/backend/pkg/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// TmpFile returns the path to a unique file to be used in tests
func TmpFile(t *testing.T) string {
	dir := t.TempDir()
	return filepath.Join(dir, uuid.New().String())
}

// DB returns a migrated database in a temporary file that is closed
// when the test ends.
func DB(t *testing.T) *gorm.DB {
	db, err := models.Connect(models.SQLite(TmpFile(t)))
	require.Nil(t, err, "database could not be initialized")

	t.Cleanup(func() {
		_ = models.Close(db)
	})

	return db
}
