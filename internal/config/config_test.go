// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// setupTestConfig sets PROCURECTL_CFG to point to a test config file.
// Returns cleanup function that should be deferred.
func setupTestConfig(t *testing.T, testdataFile string) (cleanup func()) {
	t.Helper()

	// Get absolute path to testdata file
	configPath := filepath.Join("testdata", testdataFile)
	absPath, err := filepath.Abs(configPath)
	assert.NoError(t, err, "failed to get absolute path for test config")

	t.Setenv("PROCURECTL_CFG", absPath)

	// Reset the global Config to force reload
	Config = Type{}

	return func() {
		Config = Type{}
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		testFile  string
		wantErr   bool
		checkFunc func(*testing.T, Type)
	}{
		{
			name:     "simple string values",
			testFile: "simple.yaml",
			checkFunc: func(t *testing.T, cfg Type) {
				assert.NotEmpty(t, cfg.Source)
				assert.Equal(t, "abc123", cfg.Data["token"])
			},
		},
		{
			name:     "nested structure",
			testFile: "nested.yaml",
			checkFunc: func(t *testing.T, cfg Type) {
				services, ok := cfg.Data["services"].(map[string]interface{})
				assert.True(t, ok, "services should be a map")
				assert.Equal(t, "https://erp.example.com/api", services["procurement"])
			},
		},
		{
			name:     "mixed types",
			testFile: "mixed-types.yaml",
			checkFunc: func(t *testing.T, cfg Type) {
				assert.Equal(t, 1, cfg.Data["version"])
				assert.Equal(t, true, cfg.Data["enabled"])
				assert.Equal(t, 30.5, cfg.Data["timeout"])
			},
		},
		{
			name:     "empty file",
			testFile: "empty.yaml",
			checkFunc: func(t *testing.T, cfg Type) {
				// Empty YAML unmarshals to nil map, which is acceptable
				assert.NotEmpty(t, cfg.Source, "should have a source path")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanup := setupTestConfig(t, tt.testFile)
			defer cleanup()

			cfg, err := Load()

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			if tt.checkFunc != nil {
				tt.checkFunc(t, cfg)
			}
		})
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	t.Setenv("PROCURECTL_CFG", "/nonexistent/path/procurectl.yaml")
	Config = Type{}

	_, err := Load()
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestLoad_CFG_IsDirectory(t *testing.T) {
	t.Setenv("PROCURECTL_CFG", "testdata")
	Config = Type{}

	_, err := Load()
	assert.ErrorIs(t, err, ErrIsDirectory)
	assert.Contains(t, err.Error(), "points to a directory")
}

func TestGetString(t *testing.T) {
	tests := []struct {
		name         string
		testFile     string
		key          string
		defaultValue []string
		want         string
		wantErr      bool
	}{
		{name: "simple string value", testFile: "simple.yaml", key: "token", want: "abc123"},
		{name: "nested string value", testFile: "nested.yaml", key: "services.identity", want: "https://id.example.com"},
		{name: "missing key with default", testFile: "simple.yaml", key: "missing", defaultValue: []string{"default-value"}, want: "default-value"},
		{name: "missing key without default", testFile: "simple.yaml", key: "missing", wantErr: true},
		{name: "non-string value", testFile: "mixed-types.yaml", key: "version", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanup := setupTestConfig(t, tt.testFile)
			defer cleanup()

			_, _ = Load()

			got, err := GetString(tt.key, tt.defaultValue...)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetInt(t *testing.T) {
	tests := []struct {
		name         string
		testFile     string
		key          string
		defaultValue []int
		want         int
		wantErr      bool
	}{
		{name: "int value", testFile: "mixed-types.yaml", key: "version", want: 1},
		{name: "float value converted to int", testFile: "mixed-types.yaml", key: "timeout", want: 30},
		{name: "nested int value", testFile: "nested.yaml", key: "cache.clean", want: 24},
		{name: "missing key with default", testFile: "simple.yaml", key: "missing", defaultValue: []int{60}, want: 60},
		{name: "missing key without default", testFile: "simple.yaml", key: "missing", wantErr: true},
		{name: "non-int value", testFile: "simple.yaml", key: "token", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanup := setupTestConfig(t, tt.testFile)
			defer cleanup()

			_, _ = Load()

			got, err := GetInt(tt.key, tt.defaultValue...)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetDuration(t *testing.T) {
	tests := []struct {
		name         string
		namespace    string
		key          string
		defaultValue []time.Duration
		want         time.Duration
		wantErr      bool
	}{
		{name: "duration string", key: "cache.short", want: 2 * time.Minute},
		{name: "bare int is seconds", key: "cache.long", want: 45 * time.Second},
		{name: "namespace shadows global", namespace: "prq", key: "cache.short", want: 30 * time.Second},
		{name: "namespace falls back to global", namespace: "aq", key: "cache.short", want: 2 * time.Minute},
		{name: "missing with default", key: "cache.none", defaultValue: []time.Duration{time.Hour}, want: time.Hour},
		{name: "wrong type", key: "cache.bogus", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanup := setupTestConfig(t, "nested.yaml")
			defer cleanup()

			_, _ = Load(tt.namespace)

			got, err := GetDuration(tt.key, tt.defaultValue...)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrWrongType)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetStringMap(t *testing.T) {
	cleanup := setupTestConfig(t, "nested.yaml")
	defer cleanup()

	m, err := GetStringMap("services")
	assert.NoError(t, err)
	assert.Equal(t, map[string]string{
		"procurement": "https://erp.example.com/api",
		"identity":    "https://id.example.com",
	}, m)

	_, err = GetStringMap("output")
	assert.ErrorIs(t, err, ErrWrongType)
}

func TestGetStringSlice(t *testing.T) {
	cleanup := setupTestConfig(t, "mixed-types.yaml")
	defer cleanup()

	tags, err := GetStringSlice("tags")
	assert.NoError(t, err)
	assert.Equal(t, []string{"finance", "ops"}, tags)
}

func TestConfig_LazyLoad(t *testing.T) {
	cleanup := setupTestConfig(t, "simple.yaml")
	defer cleanup()

	// Don't explicitly call Load(), just use GetString
	val, err := GetString("region")
	assert.NoError(t, err)
	assert.Equal(t, "ap-southeast-1", val)
	assert.NotEmpty(t, Config.Source, "Config should be loaded")
}

func TestConfig_NamespacedOutput(t *testing.T) {
	cleanup := setupTestConfig(t, "nested.yaml")
	defer cleanup()

	_, err := Load("prq")
	assert.NoError(t, err)

	val, err := GetString("output")
	assert.NoError(t, err)
	assert.Equal(t, "json", val)

	Config.Namespace = "rlq"
	val, err = GetString("output")
	assert.NoError(t, err)
	assert.Equal(t, "text", val)
}
