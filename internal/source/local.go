package source

import (
	"github.com/gaussfff/momitroll/migration"
	"github.com/pkg/errors"
	"io/ioutil"
	"os"
	"path/filepath"
)

const (
	folderPerm = 0755
	filePerm   = 0644
)

const commandFileStub = `{
    "description": "TODO: describe which changes will do this migration",
    "commands": [

    ]
}
`

type LocalFolder struct {
	folder string
}

var _ Store = (*LocalFolder)(nil)

func NewLocalFolder(folder string) *LocalFolder {
	if folder == "" {
		folder = DefaultMigrationsFolder
	}

	return &LocalFolder{folder: folder}
}

func (lf *LocalFolder) Folder() string {
	return lf.folder
}

// EnsureRoot creates the migrations folder, reporting false if it was already there
func (lf *LocalFolder) EnsureRoot() (bool, error) {
	info, err := os.Stat(lf.folder)
	if err == nil {
		if !info.IsDir() {
			return false, errors.Errorf("migrations path [%s] is not a folder", lf.folder)
		}

		return false, nil
	}

	if !os.IsNotExist(err) {
		return false, errors.Wrapf(err, "could not stat migrations folder [%s]", lf.folder)
	}

	if err := os.MkdirAll(lf.folder, folderPerm); err != nil {
		return false, errors.Wrapf(err, "could not create migrations folder [%s]", lf.folder)
	}

	return true, nil
}

func (lf *LocalFolder) CreateScaffold(name string) error {
	dir := lf.unitFolder(name)
	if _, err := os.Stat(dir); err == nil {
		return errors.Wrapf(ErrMigrationAlreadyExists, "[%s]", dir)
	}

	if err := os.MkdirAll(dir, folderPerm); err != nil {
		return errors.Wrapf(err, "could not create folder [%s]", dir)
	}

	for _, d := range []migration.Direction{migration.Up, migration.Down} {
		filename := lf.commandFile(name, d)
		if err := ioutil.WriteFile(filename, []byte(commandFileStub), filePerm); err != nil {
			return errors.Wrapf(err, "could not create file [%s]", filename)
		}
	}

	return nil
}

func (lf *LocalFolder) Read(name string, d migration.Direction) ([]byte, error) {
	filename := lf.commandFile(name, d)

	b, err := ioutil.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrMissingMigrationFile, "[%s]", filename)
		}

		return nil, errors.Wrapf(err, "could not read file [%s]", filename)
	}

	return b, nil
}

func (lf *LocalFolder) Remove(name string) error {
	dir := lf.unitFolder(name)
	if err := os.RemoveAll(dir); err != nil {
		return errors.Wrapf(err, "could not remove folder [%s]", dir)
	}

	return nil
}

func (lf *LocalFolder) unitFolder(name string) string {
	return filepath.Join(lf.folder, name)
}

func (lf *LocalFolder) commandFile(name string, d migration.Direction) string {
	return filepath.Join(lf.folder, name, name+d.FileSuffix())
}
