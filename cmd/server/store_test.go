package main

import (
	"context"
	"path/filepath"
	"testing"

	"finance-tracker/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStore(t *testing.T) {
	tests := []struct {
		name    string
		cfg     func(t *testing.T) *config.Config
		wantErr bool
	}{
		{
			name: "正常系: memory",
			cfg: func(t *testing.T) *config.Config {
				return &config.Config{Storage: config.StorageConfig{Driver: config.StorageDriverMemory}}
			},
		},
		{
			name: "正常系: sqlite",
			cfg: func(t *testing.T) *config.Config {
				return &config.Config{
					Storage: config.StorageConfig{Driver: config.StorageDriverSQLite},
					SQLite:  config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "finance.db")},
				}
			},
		},
		{
			name: "異常系: 未対応のドライバー",
			cfg: func(t *testing.T) *config.Config {
				return &config.Config{Storage: config.StorageConfig{Driver: "postgres"}}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := openStore(context.Background(), tt.cfg(t), true)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, st)
				return
			}
			require.NoError(t, err)
			t.Cleanup(func() { _ = st.close() })

			assert.NotNil(t, st.repo)
			assert.NoError(t, st.health.HealthCheck(context.Background()))
		})
	}
}

func TestRootCommand(t *testing.T) {
	names := make([]string, 0, len(rootCmd.Commands()))
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "migrate", "token"}, names)
}
