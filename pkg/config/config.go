package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"erdgraph/internal/diagram"
	"erdgraph/internal/dialect"
)

type DBConfig struct {
	Type         string `yaml:"type" json:"type"`
	Host         string `yaml:"host" json:"host"`
	Port         int    `yaml:"port" json:"port"`
	Username     string `yaml:"username" json:"username"`
	Password     string `yaml:"password" json:"password"`
	DatabaseName string `yaml:"database_name" json:"database_name"`
	DSN          string `yaml:"dsn" json:"dsn"` // optional explicit DSN
}

type ServerConfig struct {
	Port int `yaml:"port" json:"port"`
}

// StoreConfig selects where built diagrams are kept. An empty RedisAddr keeps
// them in memory.
type StoreConfig struct {
	RedisAddr     string        `yaml:"redis_addr" json:"redis_addr"`
	RedisPassword string        `yaml:"redis_password" json:"redis_password"`
	RedisDB       int           `yaml:"redis_db" json:"redis_db"`
	TTL           time.Duration `yaml:"ttl" json:"ttl"`
}

type LogConfig struct {
	Level string `yaml:"level" json:"level"`
}

// DialectOverride adjusts the built-in tables of one dialect.
type DialectOverride struct {
	DefaultSchema *string           `yaml:"default_schema" json:"default_schema"`
	Synonyms      map[string]string `yaml:"synonyms" json:"synonyms"`
}

// Dialects maps a database type name ("postgresql", "mysql", ...) to its
// overrides.
type Dialects map[string]DialectOverride

type AppConfig struct {
	Database DBConfig     `yaml:"database" json:"database"`
	Server   ServerConfig `yaml:"server" json:"server"`
	Store    StoreConfig  `yaml:"store" json:"store"`
	Log      LogConfig    `yaml:"log" json:"log"`
	Dialects Dialects     `yaml:"dialects" json:"dialects"`
}

// LoadFile loads YAML config from path.
func LoadFile(path string) (AppConfig, error) {
	var cfg AppConfig
	f, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(f, &cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Apply returns the configuration for database type t with any overrides for
// it applied on top of the built-in tables.
func (d Dialects) Apply(t diagram.DatabaseType) dialect.Config {
	cfg := dialect.For(t)
	for name, o := range d {
		if dialect.NormalizeType(name) != t {
			continue
		}
		if o.DefaultSchema != nil {
			cfg = cfg.WithDefaultSchema(*o.DefaultSchema)
		}
		if len(o.Synonyms) > 0 {
			cfg = cfg.WithSynonyms(o.Synonyms)
		}
	}
	return cfg
}

// NormalizeDriver maps common aliases to canonical keys (keeps backwards compat).
func NormalizeDriver(d string) string {
	switch strings.ToLower(strings.TrimSpace(d)) {
	case "postgresql", "pg", "postgres":
		return "postgres"
	case "mysql", "mariadb":
		return "mysql"
	case "sqlite", "sqlite3":
		return "sqlite"
	case "mssql", "sqlserver":
		return "sqlserver"
	case "godror", "oracle":
		return "godror"
	case "cockroach", "cockroachdb", "crdb", "pgx":
		return "pgx"
	default:
		return strings.ToLower(d)
	}
}

// DatabaseType returns the diagram database type a driver key produces.
func DatabaseType(driver string) diagram.DatabaseType {
	switch NormalizeDriver(driver) {
	case "postgres":
		return diagram.PostgreSQL
	case "mysql":
		return diagram.MySQL
	case "sqlite":
		return diagram.SQLite
	case "sqlserver":
		return diagram.SQLServer
	case "godror":
		return diagram.Oracle
	case "pgx":
		return diagram.CockroachDB
	default:
		return diagram.Generic
	}
}

// BuildDriverAndDSN produces a driver name and DSN string for supported DB types.
func BuildDriverAndDSN(db DBConfig) (driver string, dsn string, err error) {
	// If explicit DSN provided, user must also set Type to choose driver or we guess
	t := NormalizeDriver(db.Type)

	if db.DSN != "" {
		return t, db.DSN, nil
	}

	switch t {
	case "postgres":
		driver = "postgres"
		// simple URL form
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
			db.Username, db.Password, db.Host, db.Port, db.DatabaseName)
	case "pgx":
		driver = "pgx"
		port := db.Port
		if port == 0 {
			port = 26257
		}
		dsn = fmt.Sprintf("postgresql://%s:%s@%s:%d/%s?sslmode=disable",
			db.Username, db.Password, db.Host, port, db.DatabaseName)
	case "mysql":
		driver = "mysql"
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
			db.Username, db.Password, db.Host, db.Port, db.DatabaseName)
	case "sqlite":
		driver = "sqlite"
		if db.DatabaseName == "" {
			return "", "", fmt.Errorf("sqlite needs a file path in database_name")
		}
		dsn = fmt.Sprintf("file:%s?mode=ro", db.DatabaseName)
	case "sqlserver":
		driver = "sqlserver"
		dsn = fmt.Sprintf("sqlserver://%s:%s@%s:%d?database=%s",
			db.Username, db.Password, db.Host, db.Port, db.DatabaseName)
	case "godror":
		driver = "godror"
		// simple EZCONNECT style; may need adjustments per environment
		dsn = fmt.Sprintf("%s/%s@%s:%d/%s",
			db.Username, db.Password, db.Host, db.Port, db.DatabaseName)
	default:
		err = fmt.Errorf("unsupported database type: %s", db.Type)
	}
	return
}
