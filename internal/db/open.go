package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// Config selects where the ledger lives, a remote libsql url takes
// precedence over a local file.
type Config struct {
	File      string `json:"file"`
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

func wrapOpenDB(err error) error {
	return fmt.Errorf("open db: %w", err)
}

// OpenDB opens the configured database and makes sure the schema exists.
func OpenDB(ctx context.Context, config Config) (*sql.DB, error) {
	database, err := open(config)
	if err != nil {
		return nil, wrapOpenDB(err)
	}
	err = EnsureSchema(ctx, database)
	if err != nil {
		database.Close()
		return nil, wrapOpenDB(err)
	}
	return database, nil
}

func open(config Config) (*sql.DB, error) {
	if config.Url != "" {
		values := url.Values{}
		if config.AuthToken != "" {
			values.Add("authToken", config.AuthToken)
		}
		dsn := config.Url
		if len(values) > 0 {
			dsn += "?" + values.Encode()
		}
		return sql.Open("libsql", dsn)
	}

	if config.File == "" {
		return nil, fmt.Errorf("neither a database file nor url was specified")
	}
	if config.File != ":memory:" {
		err := os.MkdirAll(filepath.Dir(config.File), 0700)
		if err != nil {
			return nil, err
		}
	}

	database, err := sql.Open("sqlite", config.File)
	if err != nil {
		return nil, err
	}
	// a single connection serializes every write, for :memory: it also
	// guarantees all queries see the same database.
	database.SetMaxOpenConns(1)
	if config.File != ":memory:" {
		_, err = database.Exec("PRAGMA journal_mode=WAL")
		if err != nil {
			database.Close()
			return nil, err
		}
	}
	return database, nil
}
