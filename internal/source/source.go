package source

import (
	"github.com/gaussfff/momitroll/migration"
	"github.com/pkg/errors"
)

const DefaultMigrationsFolder = "./migrations"

var (
	ErrMissingMigrationFile   = errors.New("migration file does not exist")
	ErrMigrationAlreadyExists = errors.New("migration folder already exists")
)

// Store owns the on-disk migration units, one folder per unit holding the up and down command files
type Store interface {
	EnsureRoot() (bool, error)
	CreateScaffold(name string) error
	Read(name string, d migration.Direction) ([]byte, error)
	Remove(name string) error
}
