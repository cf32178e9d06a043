//go:build integration

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/agenthands/graphrag/internal/config"
	"github.com/agenthands/graphrag/internal/driver"
)

const neo4jPassword = "graphrag-test"

// startNeo4j runs a throwaway neo4j and returns a connected driver. The
// container is removed when the test ends.
func startNeo4j(ctx context.Context, t *testing.T) *driver.Neo4jDriver {
	t.Helper()
	req := testcontainers.ContainerRequest{
		Image:        "neo4j:5.26-community",
		ExposedPorts: []string{"7687/tcp"},
		Env: map[string]string{
			"NEO4J_AUTH": "neo4j/" + neo4jPassword,
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("Started."),
			wait.ForListeningPort("7687/tcp"),
		).WithStartupTimeout(120 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("neo4j container unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate neo4j container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "7687")
	if err != nil {
		t.Fatalf("failed to get container port: %v", err)
	}

	d, err := driver.NewNeo4jDriver(ctx, config.Neo4jConfig{
		URI:      fmt.Sprintf("bolt://%s:%s", host, port.Port()),
		User:     "neo4j",
		Password: neo4jPassword,
	})
	if err != nil {
		t.Fatalf("failed to connect to neo4j: %v", err)
	}
	t.Cleanup(func() { _ = d.Close(context.Background()) })

	if err := d.BuildIndices(ctx); err != nil {
		t.Fatalf("failed to build indices: %v", err)
	}
	return d
}
