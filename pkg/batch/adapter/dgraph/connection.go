// Package dgraph implements the transaction and schema abstractions of
// pkg/batch/core/tx on top of the Dgraph Go client, and exposes the
// best-effort Adapter the ingestion writer and the CLI use.
package dgraph

import (
	"context"
	"fmt"

	"github.com/dgraph-io/dgo/v230"
	"github.com/dgraph-io/dgo/v230/protos/api"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/tigerroll/graphload/pkg/batch/core/config"
	"github.com/tigerroll/graphload/pkg/batch/support/util/exception"
	"github.com/tigerroll/graphload/pkg/batch/support/util/logger"
)

const moduleName = "dgraph"

// Connection owns the gRPC connection to a Dgraph alpha and the client built on it.
type Connection struct {
	endpoint string
	conn     *grpc.ClientConn
	client   *dgo.Dgraph
}

// NewConnection creates a client for cfg.Endpoint. The gRPC connection is
// established lazily by the first request. When credentials are configured
// the client logs in before returning.
func NewConnection(ctx context.Context, cfg *config.DgraphConfig) (*Connection, error) {
	if cfg == nil || cfg.Endpoint == "" {
		return nil, exception.NewBatchError(moduleName, "dgraph endpoint is not configured", nil, false, false)
	}

	conn, err := grpc.NewClient(cfg.Endpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, exception.NewBatchError(moduleName, fmt.Sprintf("failed to create client for %s", cfg.Endpoint), err, false, false)
	}
	c := &Connection{
		endpoint: cfg.Endpoint,
		conn:     conn,
		client:   dgo.NewDgraphClient(api.NewDgraphClient(conn)),
	}

	if cfg.Username != "" {
		if err := c.client.Login(ctx, cfg.Username, cfg.Password); err != nil {
			_ = conn.Close()
			return nil, exception.NewBatchError(moduleName, "dgraph login failed", err, false, false)
		}
	}
	logger.Debugf("Dgraph client created for %s", cfg.Endpoint)
	return c, nil
}

// Client returns the underlying Dgraph client.
func (c *Connection) Client() *dgo.Dgraph {
	return c.client
}

// Endpoint returns the configured alpha address.
func (c *Connection) Endpoint() string {
	return c.endpoint
}

// Close closes the gRPC connection.
func (c *Connection) Close() error {
	logger.Debugf("Closing Dgraph connection to %s", c.endpoint)
	return c.conn.Close()
}
