// Package db manages the SurrealDB connection for the firm's record store.
package db

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/contrib/rews"
	"github.com/surrealdb/surrealdb.go/pkg/connection"
	"github.com/surrealdb/surrealdb.go/pkg/connection/gorillaws"
	"github.com/surrealdb/surrealdb.go/pkg/logger"
	"github.com/surrealdb/surrealdb.go/surrealcbor"
)

func init() {
	// WebSocket upgrade needs HTTP/1.1; ALPN must not negotiate h2 on wss.
	gorillaws.DefaultDialer.TLSClientConfig = &tls.Config{
		NextProtos: []string{"http/1.1"},
	}
}

// Config holds the SurrealDB connection settings.
type Config struct {
	URL       string
	Namespace string
	Database  string
	Username  string
	Password  string
	AuthLevel string // "root" or "database"
}

// Client is an authenticated SurrealDB session over a reconnecting
// WebSocket. All store queries go through DB().
type Client struct {
	conn *rews.Connection[*gorillaws.Connection]
	db   *surrealdb.DB
	log  logger.Logger
}

// tables that hold firm data, ordered leaf-first for wipes (tasks and cases
// reference clients and team members).
var tables = []string{"task", "legal_case", "client", "team_member"}

func dial(cfg Config, log logger.Logger) *rews.Connection[*gorillaws.Connection] {
	// surrealcbor decodes SurrealDB's CBOR tags (record ids, datetimes).
	codec := surrealcbor.New()

	// gorillaws appends /rpc itself.
	baseURL := strings.TrimSuffix(cfg.URL, "/rpc")

	conn := rews.New(
		func(ctx context.Context) (*gorillaws.Connection, error) {
			return gorillaws.New(&connection.Config{
				BaseURL:     baseURL,
				Marshaler:   codec,
				Unmarshaler: codec,
				Logger:      log,
			}), nil
		},
		5*time.Second,
		codec,
		log,
	)

	retryer := rews.NewExponentialBackoffRetryer()
	retryer.InitialDelay = 1 * time.Second
	retryer.MaxDelay = 30 * time.Second
	retryer.Multiplier = 2.0
	retryer.MaxRetries = 10
	conn.Retryer = retryer

	return conn
}

func signIn(ctx context.Context, db *surrealdb.DB, cfg Config) error {
	auth := surrealdb.Auth{
		Username: cfg.Username,
		Password: cfg.Password,
	}
	if cfg.AuthLevel == "database" {
		auth.Namespace = cfg.Namespace
		auth.Database = cfg.Database
	}
	_, err := db.SignIn(ctx, auth)
	return err
}

// NewClient connects, authenticates, and selects the configured
// namespace and database.
func NewClient(ctx context.Context, cfg Config, log *slog.Logger) (*Client, error) {
	handler := slog.Default().Handler()
	if log != nil {
		handler = log.Handler()
	}
	sdkLog := logger.New(handler)
	conn := dial(cfg, sdkLog)

	sdkLog.Info("connecting to SurrealDB", "url", cfg.URL)
	if err := conn.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	db, err := surrealdb.FromConnection(ctx, conn)
	if err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("from connection: %w", err)
	}

	if err := signIn(ctx, db, cfg); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("signin: %w", err)
	}
	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("use: %w", err)
	}

	sdkLog.Info("SurrealDB connection established", "namespace", cfg.Namespace, "database", cfg.Database)
	return &Client{conn: conn, db: db, log: sdkLog}, nil
}

// DB returns the session for queries.
func (c *Client) DB() *surrealdb.DB {
	return c.db
}

func (c *Client) Close(ctx context.Context) error {
	c.log.Info("closing SurrealDB connection")
	return c.conn.Close(ctx)
}

// InitSchema applies the table and index definitions. Safe to run on every
// startup; all definitions use IF NOT EXISTS.
func (c *Client) InitSchema(ctx context.Context) error {
	c.log.Info("initializing database schema")
	if _, err := surrealdb.Query[any](ctx, c.db, SchemaSQL, nil); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// WipeData deletes every record from the firm tables, keeping the schema.
func (c *Client) WipeData(ctx context.Context) error {
	c.log.Warn("wiping all data from database")
	for _, table := range tables {
		if _, err := surrealdb.Query[any](ctx, c.db, "DELETE "+table, nil); err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}
	}
	return nil
}
