// Package config loads admingen settings: defaults, then an optional YAML
// file, then ADMINGEN_* environment variables. Command-line flags are
// applied last by the commands themselves.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/untillpro/goutils/logger"
	"gopkg.in/yaml.v3"

	"github.com/matthewbaird/admingen/internal/admin"
	"github.com/matthewbaird/admingen/internal/model"
)

// DefaultFile is read when Load is called with an empty path and the file
// exists in the working directory.
const DefaultFile = "admingen.yaml"

// ErrInvalidConfig is matched by Error.
var ErrInvalidConfig = errors.New("admingen: invalid configuration")

// Error reports a bad configuration value.
type Error struct {
	Option  string
	Value   any
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("admingen: config")
	if e.Option != "" {
		b.WriteString(" option ")
		b.WriteString(e.Option)
	}
	if e.Value != nil {
		fmt.Fprintf(&b, " (value: %v)", e.Value)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether the target is ErrInvalidConfig.
func (e *Error) Is(target error) bool {
	return target == ErrInvalidConfig
}

// NewError creates a new Error.
func NewError(option string, value any, message string, cause error) *Error {
	return &Error{Option: option, Value: value, Message: message, Cause: cause}
}

// Config holds every admingen setting. YAML keys follow the names operators
// already use in their project configuration.
type Config struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`

	// Model is a .cue, .json or .yaml model file, or an ent schema directory.
	Model       string `yaml:"model"`
	// DBURL selects legacy mode: the schema is read from a live database.
	DBURL       string `yaml:"db_url"`
	UseAtlasCLI bool   `yaml:"use_atlas_cli"`

	ProjectDir   string `yaml:"project_dir"`
	PrototypeDir string `yaml:"prototype_dir"`
	HomeJS       string `yaml:"home_js"`

	NotExposed       string `yaml:"not_exposed"`
	FavoriteNames    string `yaml:"favorite_names"`
	NonFavoriteNames string `yaml:"non_favorite_names"`
	TablePrefix      string `yaml:"table_prefix"`
	ClassPrefix      string `yaml:"class_prefix"`
	TypedTypes       string `yaml:"typed_types"`
	SuppressedTypes  string `yaml:"suppressed_types"`

	MaxListColumns           int  `yaml:"max_list_columns"`
	ParentJoinsImplicit      bool `yaml:"admin_parent_joins_implicit"`
	ChildGrids               bool `yaml:"admin_child_grids"`
	RelationshipsWithParents bool `yaml:"admin_relationships_with_parents"`

	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Host:                     admin.DefaultHost,
		Port:                     admin.DefaultPort,
		ProjectDir:               ".",
		FavoriteNames:            model.DefaultFavoriteNames,
		NonFavoriteNames:         model.DefaultNonFavoriteNames,
		TablePrefix:              admin.DefaultTablePrefix,
		ClassPrefix:              admin.DefaultClassPrefix,
		TypedTypes:               "DECIMAL DATE",
		SuppressedTypes:          "NTEXT IMAGE",
		MaxListColumns:           admin.DefaultMaxListColumns,
		ParentJoinsImplicit:      true,
		RelationshipsWithParents: true,
		LogLevel:                 "info",
	}
}

// Load builds the configuration. An explicit path must exist; an empty path
// reads DefaultFile when present.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, NewError("file", path, "cannot parse", err)
		}
		logger.Verbose("config: loaded", path)
	case explicit || !errors.Is(err, os.ErrNotExist):
		return cfg, NewError("file", path, "cannot read", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"ADMINGEN_HOST":               &c.Host,
		"ADMINGEN_PORT":               &c.Port,
		"ADMINGEN_MODEL":              &c.Model,
		"ADMINGEN_DB_URL":             &c.DBURL,
		"ADMINGEN_PROJECT_DIR":        &c.ProjectDir,
		"ADMINGEN_PROTOTYPE_DIR":      &c.PrototypeDir,
		"ADMINGEN_HOME_JS":            &c.HomeJS,
		"ADMINGEN_NOT_EXPOSED":        &c.NotExposed,
		"ADMINGEN_FAVORITE_NAMES":     &c.FavoriteNames,
		"ADMINGEN_NON_FAVORITE_NAMES": &c.NonFavoriteNames,
		"ADMINGEN_TABLE_PREFIX":       &c.TablePrefix,
		"ADMINGEN_CLASS_PREFIX":       &c.ClassPrefix,
		"ADMINGEN_TYPED_TYPES":        &c.TypedTypes,
		"ADMINGEN_SUPPRESSED_TYPES":   &c.SuppressedTypes,
		"ADMINGEN_LOG_LEVEL":          &c.LogLevel,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"ADMINGEN_USE_ATLAS_CLI":                    &c.UseAtlasCLI,
		"ADMINGEN_ADMIN_PARENT_JOINS_IMPLICIT":      &c.ParentJoinsImplicit,
		"ADMINGEN_ADMIN_CHILD_GRIDS":                &c.ChildGrids,
		"ADMINGEN_ADMIN_RELATIONSHIPS_WITH_PARENTS": &c.RelationshipsWithParents,
	}
	for key, dst := range bools {
		v, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return NewError(key, v, "expected a boolean", err)
		}
		*dst = b
	}

	if v, ok := os.LookupEnv("ADMINGEN_MAX_LIST_COLUMNS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return NewError("ADMINGEN_MAX_LIST_COLUMNS", v, "expected an integer", err)
		}
		c.MaxListColumns = n
	}
	return nil
}

var logLevels = map[string]logger.TLogLevel{
	"none":    logger.LogLevelNone,
	"error":   logger.LogLevelError,
	"warning": logger.LogLevelWarning,
	"info":    logger.LogLevelInfo,
	"verbose": logger.LogLevelVerbose,
	"trace":   logger.LogLevelTrace,
}

// Validate checks values the engine cannot recover from.
func (c Config) Validate() error {
	if c.MaxListColumns < 0 {
		return NewError("max_list_columns", c.MaxListColumns, "must not be negative", nil)
	}
	if _, ok := logLevels[strings.ToLower(c.LogLevel)]; !ok {
		return NewError("log_level", c.LogLevel, "unknown level", nil)
	}
	if c.Port != "" {
		if _, err := strconv.ParseUint(c.Port, 10, 16); err != nil {
			return NewError("port", c.Port, "expected a port number", err)
		}
	}
	return nil
}

// ApplyLogLevel sets the process-wide logger level.
func (c Config) ApplyLogLevel() {
	if level, ok := logLevels[strings.ToLower(c.LogLevel)]; ok {
		logger.SetLogLevel(level)
	}
}

// Preferences returns the favorite-attribute preferences.
func (c Config) Preferences() model.Preferences {
	return model.NewPreferences(c.FavoriteNames, c.NonFavoriteNames)
}

// AdminOptions maps the configuration onto engine options.
func (c Config) AdminOptions(version string) admin.Options {
	opts := admin.DefaultOptions()
	opts.Host = c.Host
	opts.Port = c.Port
	opts.NotExposed = c.NotExposed
	opts.TablePrefix = c.TablePrefix
	opts.ClassPrefix = c.ClassPrefix
	opts.Preferences = c.Preferences()
	opts.MaxListColumns = c.MaxListColumns
	opts.ParentJoinsImplicit = c.ParentJoinsImplicit
	opts.ChildGrids = c.ChildGrids
	opts.RelationshipsWithParents = c.RelationshipsWithParents
	opts.TypedTypes = attributeTypes(c.TypedTypes)
	opts.SuppressedTypes = attributeTypes(c.SuppressedTypes)
	opts.Version = version
	return opts
}

func attributeTypes(s string) []model.AttributeType {
	var out []model.AttributeType
	for _, f := range strings.Fields(s) {
		out = append(out, model.AttributeType(strings.ToUpper(f)))
	}
	return out
}
