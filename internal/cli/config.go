package cli

import (
	"github.com/BurntSushi/toml"
	"github.com/gaussfff/momitroll/internal/database/mongogateway"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
	"io/fs"
	"io/ioutil"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const ConfigFileName = "momitroll-config"

var (
	ErrConfigNotFound     = errors.New("didn't find config file")
	ErrMissingCredentials = errors.New("database credentials are not set")
	ErrInvalidConfig      = errors.New("invalid configuration")

	errConfigFound = errors.New("config file found")

	configExtensions = []string{".yaml", ".yml", ".json", ".toml"}
)

type (
	MigrationConfig struct {
		Dir               string `yaml:"dir" toml:"dir"`
		ChangelogCollName string `yaml:"changelog-coll-name" toml:"changelog-coll-name"`
	}

	DBConfig struct {
		Host            string `yaml:"host" toml:"host"`
		Port            int    `yaml:"port" toml:"port"`
		Name            string `yaml:"name" toml:"name"`
		ConnectAttempts int    `yaml:"connect-attempts" toml:"connect-attempts"`
		ConnectTimeout  int    `yaml:"connect-timeout" toml:"connect-timeout"`
	}

	CredEnvVars struct {
		Username string `yaml:"username" toml:"username"`
		Password string `yaml:"password" toml:"password"`
	}

	Config struct {
		Migration   MigrationConfig `yaml:"migration" toml:"migration"`
		DB          DBConfig        `yaml:"db" toml:"db"`
		CredEnvVars CredEnvVars     `yaml:"creds-env-vars" toml:"creds-env-vars"`
	}
)

// ChangelogCollection is the configured changelog name prefixed with an underscore
func (c Config) ChangelogCollection() string {
	return "_" + c.Migration.ChangelogCollName
}

// Credentials reads the username and password from the configured environment variables
func (c Config) Credentials() (string, string, error) {
	username, ok := os.LookupEnv(c.CredEnvVars.Username)
	if !ok || c.CredEnvVars.Username == "" {
		return "", "", errors.Wrapf(ErrMissingCredentials, "environment variable [%s] is not set", c.CredEnvVars.Username)
	}

	password, ok := os.LookupEnv(c.CredEnvVars.Password)
	if !ok || c.CredEnvVars.Password == "" {
		return "", "", errors.Wrapf(ErrMissingCredentials, "environment variable [%s] is not set", c.CredEnvVars.Password)
	}

	return username, password, nil
}

// MongoURI authenticates against the admin database
func (c Config) MongoURI(username, password string) string {
	u := url.URL{
		Scheme:   "mongodb",
		User:     url.UserPassword(username, password),
		Host:     net.JoinHostPort(c.DB.Host, strconv.Itoa(c.DB.Port)),
		Path:     "/",
		RawQuery: "authSource=admin",
	}

	return u.String()
}

func (c Config) ConnectOptions(username, password string) *mongogateway.ConnectOptions {
	opts := mongogateway.NewDefaultConnectOptions(c.MongoURI(username, password), c.DB.Name)

	if c.DB.ConnectAttempts > 0 {
		opts.MaxAttempts = c.DB.ConnectAttempts
	}

	if c.DB.ConnectTimeout > 0 {
		opts.MaxTimeout = time.Duration(c.DB.ConnectTimeout) * time.Second
	}

	return opts
}

func (c Config) validate() error {
	switch {
	case c.Migration.Dir == "":
		return errors.Wrap(ErrInvalidConfig, "migration dir was not defined")
	case c.Migration.ChangelogCollName == "":
		return errors.Wrap(ErrInvalidConfig, "changelog collection name was not defined")
	case c.DB.Host == "":
		return errors.Wrap(ErrInvalidConfig, "db host was not defined")
	case c.DB.Port <= 0 || c.DB.Port > 65535:
		return errors.Wrapf(ErrInvalidConfig, "db port [%d] is out of range", c.DB.Port)
	case c.DB.Name == "":
		return errors.Wrap(ErrInvalidConfig, "db name was not defined")
	case c.CredEnvVars.Username == "" || c.CredEnvVars.Password == "":
		return errors.Wrap(ErrInvalidConfig, "credential environment variable names were not defined")
	}

	return nil
}

// LoadConfig reads a yaml, json or toml config file, values wrapped in %% are taken from the environment
func LoadConfig(path string) (Config, error) {
	var cfg Config

	b, err := ioutil.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "could not read momitroll configuration file")
	}

	if err := unmarshalConfig(path, b, &cfg); err != nil {
		return cfg, errors.Wrap(err, "could not parse momitroll configuration file")
	}

	cfg.Migration.Dir = fromEnv(cfg.Migration.Dir)
	cfg.Migration.ChangelogCollName = fromEnv(cfg.Migration.ChangelogCollName)
	cfg.DB.Host = fromEnv(cfg.DB.Host)
	cfg.DB.Name = fromEnv(cfg.DB.Name)

	if err := cfg.validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// FindConfigFile walks root looking for the first momitroll-config file
func FindConfigFile(root string) (string, error) {
	var found string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if isConfigFile(d.Name()) {
			found = path
			return errConfigFound
		}

		return nil
	})

	if err != nil && !errors.Is(err, errConfigFound) {
		return "", errors.Wrapf(err, "could not search for config in [%s]", root)
	}

	if found == "" {
		return "", errors.Wrapf(ErrConfigNotFound, "no %s{%s} in [%s]", ConfigFileName, strings.Join(configExtensions, ","), root)
	}

	return found, nil
}

// unmarshalConfig picks the decoder by extension, json is read as yaml
func unmarshalConfig(path string, b []byte, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return toml.Unmarshal(b, cfg)
	}

	return yaml.Unmarshal(b, cfg)
}

func isConfigFile(name string) bool {
	for _, ext := range configExtensions {
		if name == ConfigFileName+ext {
			return true
		}
	}

	return false
}

func fromEnv(value string) string {
	if len(value) > 4 && strings.HasPrefix(value, "%%") && strings.HasSuffix(value, "%%") {
		return os.Getenv(strings.ReplaceAll(value, "%%", ""))
	}

	return value
}
