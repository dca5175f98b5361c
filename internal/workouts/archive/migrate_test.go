package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://postgres@localhost:5432/gymbalance_db", migrateURL("postgres://postgres@localhost:5432/gymbalance_db"))
	assert.Equal(t, "pgx5://u@db:5432/x?sslmode=disable", migrateURL("postgresql://u@db:5432/x?sslmode=disable"))
	assert.Equal(t, "pgx5://already", migrateURL("pgx5://already"))
}
