package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"erdgraph/internal/metadata"
)

var testdialect string = "testdialect"

type testExtractor struct{}

func (testExtractor) Extract(ctx context.Context, dbConn *sql.DB) (metadata.DatabaseMetadata, error) {
	var m metadata.DatabaseMetadata
	return m, errors.New("not implemented")
}

type nameExtractor struct{}

func (nameExtractor) Extract(ctx context.Context, dbConn *sql.DB) (metadata.DatabaseMetadata, error) {
	m := NewMetadata()
	names, err := Collect(ctx, dbConn, func(r *sql.Rows) (string, error) {
		var name string
		err := r.Scan(&name)
		return name, err
	}, `SELECT 'orders' UNION ALL SELECT 'customers' ORDER BY 1`)
	if err != nil {
		return m, err
	}
	for _, n := range names {
		m.Tables = append(m.Tables, metadata.TableInfo{Table: n})
	}
	return m, nil
}

func TestRegister(t *testing.T) {
	// tests both Register and RegisteredDialects because they take the same setup

	Register(testdialect, testExtractor{})

	if _, ok := dialects[testdialect]; !ok {
		t.Errorf("\ndialect %v not registered correctly in %v", testdialect, dialects)
	}

	rd := RegisteredDialects()

	if !(len(rd) == 1 && rd[0] == testdialect) {
		t.Errorf("\nRegisteredDialects returned unexpected result %v", rd)
	}
}

func TestConnectAndExtract(t *testing.T) {

	var tests = []struct {
		name          string
		dialect       string
		dsn           string
		timeout       time.Duration
		extractor     Extractor
		registerFirst bool
		tables        int
		errIsNil      bool
	}{
		{"unregistered dialect", "nosuchdialect", "", 10 * time.Second, nil, false, 0, false},
		{"sqlite with testExtractor", "sqlite", ":memory:", 10 * time.Second, testExtractor{}, true, 0, false},
		{"sqlite3 alias with nameExtractor", "sqlite3", ":memory:", 10 * time.Second, nameExtractor{}, true, 2, true},
	}

	for _, tt := range tests {
		// Use t.Run to run each case as a subtest with a descriptive name
		t.Run(tt.name, func(t *testing.T) {
			if tt.registerFirst {
				Register("sqlite", tt.extractor)
			}

			m, err := ConnectAndExtract(context.Background(), tt.dialect, tt.dsn, tt.timeout)

			if (err == nil) != tt.errIsNil {
				if tt.errIsNil {
					t.Errorf("\ngot unexpected error: \"%v\"", err)
				} else {
					t.Errorf("\nexpected an error, did not receive one")
				}
			} else if len(m.Tables) != tt.tables {
				t.Errorf("\ngot %d tables, wanted %d", len(m.Tables), tt.tables)
			}
		})
	}
}

func TestNewMetadataIsValid(t *testing.T) {
	if err := metadata.Validate(NewMetadata()); err != nil {
		t.Errorf("\ngot unexpected error: \"%v\"", err)
	}
}
