package database

import (
	"context"
	"strings"
	"testing"
)

func TestDSN(t *testing.T) {
	c := New(Options{User: "lib", Pass: "s3cret", Host: "db", Port: "3306", Name: "library"})
	dsn := c.DSN()
	for _, want := range []string{"lib:s3cret@tcp(db:3306)/library", "parseTime=true", "charset=utf8mb4"} {
		if !strings.Contains(dsn, want) {
			t.Errorf("dsn %q missing %q", dsn, want)
		}
	}
}

func TestMigrateRequiresConnection(t *testing.T) {
	if err := New(Options{}).Migrate(context.Background()); err == nil {
		t.Fatal("want error before Connect")
	}
	if err := New(Options{}).Close(); err != nil {
		t.Fatalf("close unopened: %v", err)
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	data, err := migrations.ReadFile("migrations/00001_init.sql")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "-- +goose Up") || !strings.Contains(string(data), "uq_attendance_slot") {
		t.Fatal("init migration incomplete")
	}
}
