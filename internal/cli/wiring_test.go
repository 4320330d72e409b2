package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/patchbay"
	"github.com/aretw0/patchbay/internal/config"
	"github.com/aretw0/patchbay/internal/logging"
	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/aretw0/patchbay/pkg/persistence/middleware"
	"github.com/aretw0/patchbay/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadFrom(config.Sources{}, nil)
	require.NoError(t, err)
	return cfg
}

func TestOpenLibrary(t *testing.T) {
	ctx := context.Background()
	patch := []*protocol.Object{{Name: domain.EngineName, Kind: domain.EngineKind}}

	mr := miniredis.RunT(t)
	tests := []struct {
		name  string
		setup func(cfg *config.Config)
	}{
		{"file", func(cfg *config.Config) {
			cfg.Store = config.StoreFile
			cfg.PatchDir = t.TempDir()
		}},
		{"memory", func(cfg *config.Config) { cfg.Store = config.StoreMemory }},
		{"redis", func(cfg *config.Config) {
			cfg.Store = config.StoreRedis
			cfg.Redis.Addr = mr.Addr()
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.setup(cfg)
			lib, closer, err := OpenLibrary(cfg, logging.NewNop())
			require.NoError(t, err)
			defer closer.Close()

			require.NoError(t, lib.Save(ctx, "boot", patch))
			names, err := lib.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"boot"}, names)
		})
	}

	t.Run("sealed", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.PatchDir = t.TempDir()
		cfg.PatchKey = strings.Repeat("7f", 32)
		lib, closer, err := OpenLibrary(cfg, nil)
		require.NoError(t, err)
		defer closer.Close()

		require.NoError(t, lib.Save(ctx, "boot", patch))
		raw, err := os.ReadFile(filepath.Join(cfg.PatchDir, "boot.json"))
		require.NoError(t, err)
		assert.Contains(t, string(raw), middleware.SealedKind)
		assert.NotContains(t, string(raw), domain.EngineKind)

		loaded, err := lib.Load(ctx, "boot")
		require.NoError(t, err)
		assert.Equal(t, patch, loaded)
	})

	cfg := testConfig(t)
	cfg.Store = "tape"
	_, _, err := OpenLibrary(cfg, logging.NewNop())
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestLoadCatalog(t *testing.T) {
	cfg := testConfig(t)
	cat, err := LoadCatalog(cfg)
	require.NoError(t, err)
	assert.Contains(t, cat.Names(), "sequencer")

	cfg.Kinds = filepath.Join(t.TempDir(), "kinds.yaml")
	require.NoError(t, os.WriteFile(cfg.Kinds, []byte("kinds:\n  - name: engine\n    inputs: [root]\n  - name: drone\n"), 0644))
	cat, err = LoadCatalog(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"engine", "drone"}, cat.Names())
}

func TestServe(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store = config.StoreMemory
	cfg.Listen = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ready := make(chan string, 1)
	served := make(chan error, 1)
	go func() {
		served <- Serve(ctx, ServeOptions{Config: cfg, Out: io.Discard, Ready: func(addr string) { ready <- addr }})
	}()

	var addr string
	select {
	case addr = <-ready:
	case err := <-served:
		t.Fatalf("serve exited early: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not start")
	}

	dialCtx, dialCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer dialCancel()
	ed, err := patchbay.Connect(dialCtx, "ws://"+addr+"/socket")
	require.NoError(t, err)
	assert.Contains(t, ed.Palette(), "sin")

	cancel()
	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("server did not stop")
	}

	select {
	case <-ed.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("editor was not disconnected")
	}
}
