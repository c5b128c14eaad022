//go:build integration

package memcachestore

import (
	"context"
	"flag"
	"os"
	"testing"

	"github.com/sandrolain/respcache/test"
	"github.com/testcontainers/testcontainers-go"
	testcontainerswait "github.com/testcontainers/testcontainers-go/wait"
)

const (
	skipIntegrationMsg = "skipping integration test in short mode"
	memcachedImage      = "memcached:1.6-alpine"
)

var (
	sharedContainer testcontainers.Container
	sharedEndpoint  string
)

func TestMain(m *testing.M) {
	flag.Parse()
	var code int

	if os.Getenv("SKIP_INTEGRATION") == "" {
		ctx := context.Background()

		req := testcontainers.ContainerRequest{
			Image:        memcachedImage,
			ExposedPorts: []string{"11211/tcp"},
			WaitingFor:   testcontainerswait.ForListeningPort("11211/tcp"),
		}
		container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
		if err != nil {
			panic("failed to start memcached container: " + err.Error())
		}
		sharedContainer = container

		host, err := container.Host(ctx)
		if err != nil {
			_ = testcontainers.TerminateContainer(container)
			panic("failed to get memcached host: " + err.Error())
		}
		port, err := container.MappedPort(ctx, "11211/tcp")
		if err != nil {
			_ = testcontainers.TerminateContainer(container)
			panic("failed to get memcached port: " + err.Error())
		}
		sharedEndpoint = host + ":" + port.Port()

		code = m.Run()

		if err := testcontainers.TerminateContainer(container); err != nil {
			panic("failed to terminate memcached container: " + err.Error())
		}
	} else {
		code = m.Run()
	}

	os.Exit(code)
}

func setupStore(t *testing.T) *Store {
	t.Helper()
	store := New(sharedEndpoint)
	_ = store.Clear(context.Background())
	return store
}

func TestMemcachedIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip(skipIntegrationMsg)
	}
	test.Store(t, setupStore(t))
}
