package cmd

import (
	"github.com/packagewjx/traffic-classifier/internal/artifact"
	"github.com/packagewjx/traffic-classifier/internal/server"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func readConfig(t *testing.T, content string) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
		return path
	}

	viper.SetConfigFile(write("config.yaml", content))
	if err := viper.ReadInConfig(); err != nil {
		t.Fatal(err)
	}

	empty := write("empty.yaml", "")
	t.Cleanup(func() {
		viper.SetConfigFile(empty)
		_ = viper.ReadInConfig()
	})
}

func TestConfigFile(t *testing.T) {
	readConfig(t, `
log:
  level: debug
  format: json
  maxBackups: 7
model:
  source: database
  features: [duration, pkt_rate]
  database:
    driver: sqlite
    dsn: /tmp/registry.db
    bundle: traffic
server:
  port: 8080
  maxBodyBytes: 2048
  shutdownTimeout: 10s
`)

	logConfig := loggingConfig()
	assert.Equal(t, "debug", logConfig.Level)
	assert.Equal(t, "json", logConfig.Format)
	assert.Equal(t, 7, logConfig.MaxBackups)

	modelConfig := artifactConfig()
	assert.Equal(t, artifact.SourceDatabase, modelConfig.Source)
	assert.Equal(t, []string{"duration", "pkt_rate"}, modelConfig.FeatureNames)
	assert.Equal(t, artifact.DatabaseConfig{Driver: "sqlite", DSN: "/tmp/registry.db", Bundle: "traffic"},
		modelConfig.Database)
	assert.Equal(t, artifact.DefaultClassifierPath, modelConfig.ClassifierPath)

	config, err := serverConfig()
	assert.NoError(t, err)
	assert.Equal(t, uint16(8080), config.Port)
	assert.Equal(t, int64(2048), config.MaxBodyBytes)
	assert.Equal(t, 10*time.Second, config.ShutdownTimeout)
}

func TestConfigFileDefaults(t *testing.T) {
	readConfig(t, "")

	config, err := serverConfig()
	assert.NoError(t, err)
	assert.Equal(t, uint16(server.DefaultPort), config.Port)
	assert.Equal(t, int64(server.DefaultMaxBodyBytes), config.MaxBodyBytes)
	assert.Equal(t, artifact.SourceFile, config.Artifact.Source)
}

func TestConfigFilePortOutOfRange(t *testing.T) {
	readConfig(t, "server:\n  port: 70000\n")

	_, err := serverConfig()
	assert.Error(t, err)
}
