package migration

import (
	"github.com/pkg/errors"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidMigrationName = errors.New("invalid migration name")

type (
	Status    string
	Direction string

	// Record is a changelog entry, the source of truth for the state of a migration unit
	Record struct {
		Name        string     `bson:"name"`
		Status      Status     `bson:"status"`
		AppliedAt   *time.Time `bson:"appliedAt"`
		Description *string    `bson:"description"`
	}

	Records []Record

	ClockFunc func() time.Time
)

const (
	Pending Status = "pending"
	Applied Status = "applied"

	Up   Direction = "up"
	Down Direction = "down"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	return s == Pending || s == Applied
}

// FileSuffix is appended to the migration name to form the command file name
func (d Direction) FileSuffix() string {
	return "_" + string(d) + ".json"
}

// NewRecord creates a pending record
func NewRecord(name string) Record {
	return Record{Name: name, Status: Pending}
}

func (r Record) IsApplied() bool {
	return r.Status == Applied
}

func (r Record) DescriptionOr(fallback string) string {
	if r.Description == nil {
		return fallback
	}

	return *r.Description
}

func (rs Records) Names() (result []string) {
	for i := range rs {
		result = append(result, rs[i].Name)
	}
	return result
}

func (rs Records) Len() int {
	return len(rs)
}

func (rs Records) Less(i, j int) bool {
	return rs[i].Name < rs[j].Name
}

func (rs Records) Swap(i, j int) {
	rs[i], rs[j] = rs[j], rs[i]
}

// NewName builds a migration name from the current unix time and the user supplied name,
// so that the lexicographic order of names follows the order of creation.
// The user name is kept as typed, only names that can't be used as a folder name are rejected.
func NewName(cf ClockFunc, userName string) (string, error) {
	if err := validateUserName(userName); err != nil {
		return "", err
	}

	var result strings.Builder
	result.WriteString(strconv.FormatInt(cf().Unix(), 10))
	result.WriteString("_")
	result.WriteString(userName)
	return result.String(), nil
}

func validateUserName(userName string) error {
	switch {
	case strings.TrimSpace(userName) == "":
		return errors.Wrap(ErrInvalidMigrationName, "name is empty")
	case strings.ContainsAny(userName, "/\\\x00"):
		return errors.Wrapf(ErrInvalidMigrationName, "[%s] contains a path separator or a null byte", userName)
	case strings.Contains(userName, ".."):
		return errors.Wrapf(ErrInvalidMigrationName, "[%s] contains ..", userName)
	}

	return nil
}
