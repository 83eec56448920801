package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"

	"storefront-be/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestBuildDSN(t *testing.T) {
	t.Run("KeyValue", func(t *testing.T) {
		cfg := &config.Config{
			DBHost:     "localhost",
			DBUser:     "test_user",
			DBPassword: "test_password",
			DBName:     "test_db",
			DBPort:     "5432",
		}

		expected := "host=localhost user=test_user password=test_password dbname=test_db port=5432 sslmode=disable"
		assert.Equal(t, expected, buildDSN(cfg))
	})

	t.Run("SSLMode", func(t *testing.T) {
		cfg := &config.Config{DBHost: "db", DBPort: "5432", DBSSLMode: "require"}
		assert.Contains(t, buildDSN(cfg), "sslmode=require")
	})

	t.Run("URLWins", func(t *testing.T) {
		cfg := &config.Config{DatabaseURL: "postgres://u:p@db:5432/shop", DBHost: "ignored"}
		assert.Equal(t, "postgres://u:p@db:5432/shop", buildDSN(cfg))
	})
}

func TestNewDatabase_InvalidDriver(t *testing.T) {
	cfg := &config.Config{}
	db, err := newDatabaseWithDriver(cfg, "invalid_driver_name")

	assert.Error(t, err)
	assert.Nil(t, db)
	assert.Contains(t, err.Error(), "failed to connect to DB")
}

func TestNewMongo_MissingURI(t *testing.T) {
	client, db, err := NewMongo(context.Background(), &config.Config{})

	assert.Error(t, err)
	assert.Nil(t, client)
	assert.Nil(t, db)
}

// --- Mock Driver ---
// Lets sql.Open and Ping succeed without a running database.

type mockDriver struct{}

func (m *mockDriver) Open(name string) (driver.Conn, error) {
	return &mockConn{}, nil
}

type mockConn struct{}

func (c *mockConn) Prepare(query string) (driver.Stmt, error) { return &mockStmt{}, nil }
func (c *mockConn) Close() error                              { return nil }
func (c *mockConn) Begin() (driver.Tx, error)                 { return nil, nil }

type mockStmt struct{}

func (s *mockStmt) Close() error                                    { return nil }
func (s *mockStmt) NumInput() int                                   { return 0 }
func (s *mockStmt) Exec(args []driver.Value) (driver.Result, error) { return nil, nil }
func (s *mockStmt) Query(args []driver.Value) (driver.Rows, error)  { return nil, nil }

type failingDriver struct{}

func (d *failingDriver) Open(name string) (driver.Conn, error) {
	return nil, driver.ErrBadConn
}

func init() {
	sql.Register("mock_driver_success", &mockDriver{})
	sql.Register("mock_driver_failing", &failingDriver{})
}

func TestNewDatabase_Success(t *testing.T) {
	cfg := &config.Config{DBHost: "localhost"}
	db, err := newDatabaseWithDriver(cfg, "mock_driver_success")
	assert.NoError(t, err)
	assert.NotNil(t, db)
}

func TestNewDatabase_PingFailure(t *testing.T) {
	cfg := &config.Config{DBHost: "localhost"}
	db, err := newDatabaseWithDriver(cfg, "mock_driver_failing")

	assert.Error(t, err)
	assert.Nil(t, db)
	assert.Contains(t, err.Error(), "failed to ping DB")
}
