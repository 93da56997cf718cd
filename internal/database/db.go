// Package database owns the MySQL connection lifecycle and the schema.
package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Options locates the database.
type Options struct {
	User string
	Pass string
	Host string
	Port string
	Name string
}

// Client is the explicitly constructed persistence handle passed to the
// repositories.  Nothing is opened until Connect.
type Client struct {
	opts Options
	db   *sql.DB
}

func New(opts Options) *Client {
	return &Client{opts: opts}
}

// DSN renders the driver connection string.  Times travel as UTC and are
// parsed into time.Time.
func (c *Client) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = c.opts.User
	cfg.Passwd = c.opts.Pass
	cfg.Net = "tcp"
	cfg.Addr = c.opts.Host + ":" + c.opts.Port
	cfg.DBName = c.opts.Name
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

// Connect opens the pool and verifies it with a ping.
func (c *Client) Connect(ctx context.Context) error {
	if c.db != nil {
		return nil
	}
	db, err := sql.Open("mysql", c.DSN())
	if err != nil {
		return err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return fmt.Errorf("ping mysql: %w", err)
	}
	c.db = db
	return nil
}

// DB returns the pool; it is nil before Connect.
func (c *Client) DB() *sql.DB { return c.db }

func (c *Client) Close() error {
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}

// Migrate applies the embedded goose migrations.
func (c *Client) Migrate(ctx context.Context) error {
	if c.db == nil {
		return errors.New("database: not connected")
	}
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("mysql"); err != nil {
		return err
	}
	return goose.UpContext(ctx, c.db, "migrations")
}
