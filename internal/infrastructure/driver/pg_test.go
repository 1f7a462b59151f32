package driver

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPGWrapperPingUnreachable(t *testing.T) {
	conn, err := NewPostgreSQLConn("postgres://u:p@127.0.0.1:1/learniq?connect_timeout=1", &DBConfig{MaxConn: 1})
	if err != nil {
		// pool dialed eagerly and failed already
		return
	}
	defer conn.Close(context.Background())
	assert.Error(t, conn.Ping())
}

func TestPGWrapperPing(t *testing.T) {
	dsn := os.Getenv("GOAPP_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("GOAPP_TEST_PG_DSN not set")
	}
	conn, err := NewPostgreSQLConn(dsn, &DBConfig{MaxConn: 2})
	require.NoError(t, err)
	defer conn.Close(context.Background())
	assert.NoError(t, conn.Ping())
}
