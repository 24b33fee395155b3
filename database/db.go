package database

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/dnldd/htfbot/shared"
	rqlitehttp "github.com/rqlite/rqlite-go-http"
	"github.com/rs/zerolog"
)

const (
	// SQL statements.
	createSignalTableSQL = "CREATE TABLE IF NOT EXISTS signal (id TEXT PRIMARY KEY, market TEXT, " +
		"type TEXT, price REAL, reason TEXT, levelkind TEXT, levelprice REAL, " +
		"distancepercent REAL, strength INTEGER, stoploss REAL, target REAL, " +
		"synthetic INTEGER, createdon INTEGER)"
	persistSignalSQL = "INSERT INTO signal(id, market, type, price, reason, levelkind, " +
		"levelprice, distancepercent, strength, stoploss, target, synthetic, createdon) " +
		"VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?)"
)

// DatabaseConfig is the configuration for the database.
type DatabaseConfig struct {
	// Endpoint represents the database connection endpoint.
	Endpoint string
	// User is the database user.
	User string
	// Pass is the database user pass.
	Pass string
	// Logger is the database logger.
	Logger *zerolog.Logger
}

// Database represents the database connection.
type Database struct {
	cfg    *DatabaseConfig
	client *rqlitehttp.Client
}

// Ensure the database implements the SignalStorer interface.
var _ shared.SignalStorer = (*Database)(nil)

// NewDatabase initializes a new database connection.
func NewDatabase(ctx context.Context, cfg *DatabaseConfig) (*Database, error) {
	httpc := &http.Client{Timeout: time.Second * 5}
	client, err := rqlitehttp.NewClient(cfg.Endpoint, httpc)
	if err != nil {
		return nil, fmt.Errorf("creating database client: %w", err)
	}

	client.SetBasicAuth(cfg.User, cfg.Pass)

	db := &Database{
		cfg:    cfg,
		client: client,
	}

	err = db.bootstrap(ctx)
	if err != nil {
		return nil, fmt.Errorf("bootstrapping database: %w", err)
	}

	return db, nil
}

// bootstrap initializes the database.
func (db *Database) bootstrap(ctx context.Context) error {
	_, err := db.client.Execute(ctx, rqlitehttp.SQLStatements{
		{SQL: createSignalTableSQL},
	}, &rqlitehttp.ExecuteOptions{
		Transaction: true,
		Timings:     true,
	})
	if err != nil {
		return err
	}

	return nil
}

// PersistSignal stores the provided dispatched signal to the database.
func (db *Database) PersistSignal(ctx context.Context, signal *shared.Signal) error {
	synthetic := 0
	if signal.Synthetic {
		synthetic = 1
	}

	resp, err := db.client.Execute(ctx, rqlitehttp.SQLStatements{
		{
			SQL: persistSignalSQL,
			PositionalParams: []any{signal.ID, signal.Market, signal.Type.String(),
				signal.Price, signal.Reason, signal.LevelKind.String(), signal.LevelPrice,
				signal.DistancePercent, signal.Strength, signal.StopLoss, signal.Target,
				synthetic, signal.CreatedOn.Unix()},
		},
	}, &rqlitehttp.ExecuteOptions{Transaction: true, Timings: true})
	if err != nil {
		return err
	}

	has, idx, errStr := resp.HasError()
	if has {
		db.cfg.Logger.Error().Msgf("unexpected signal state for persistence: %s", spew.Sdump(signal))
		return fmt.Errorf("persisting signal %s: %d -> %s", signal.ID, idx, errStr)
	}

	return nil
}
