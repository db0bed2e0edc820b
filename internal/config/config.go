// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/apex/log"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked for in the standard locations.
const FileName = "procurectl.yaml"

var (
	ErrNotFound    = errors.New("config file not found")
	ErrIsDirectory = errors.New("config path points to a directory")
	ErrWrongType   = errors.New("value has the wrong type")
)

type Type struct {
	Source    string
	Namespace string
	Data      map[string]interface{}
}

var Config Type

// Load reads the config file and makes it the package Config. The optional
// argument is the namespace, normally the subcommand name, whose keys shadow
// the global ones.
func Load(namespace ...string) (Type, error) {
	ns := ""
	if len(namespace) > 0 {
		ns = namespace[0]
	}

	path, err := getConfigPath()
	if err != nil {
		Config = Type{Namespace: ns}
		return Config, err
	}

	bytes, err := os.ReadFile(path)
	if err != nil {
		return Type{}, err
	}

	var data map[string]interface{}
	if err := yaml.Unmarshal(bytes, &data); err != nil {
		return Type{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	Config = Type{
		Source:    path,
		Namespace: ns,
		Data:      data,
	}

	return Config, nil
}

// ensureLoaded lazily loads the config file, keeping the current namespace.
func ensureLoaded() {
	if len(Config.Data) == 0 {
		_, _ = Load(Config.Namespace)
	}
}

// get traverses the map using a dotted key path. The namespaced key is tried
// before the bare one.
func (cfg *Type) get(kspec string) (any, error) {
	candidateKeys := []string{kspec}
	if cfg.Namespace != "" {
		candidateKeys = []string{cfg.Namespace + "." + kspec, kspec}
	}

	for _, key := range candidateKeys {
		keys := strings.Split(key, ".")
		var current interface{} = cfg.Data

		success := true
		for _, key := range keys {
			m, ok := current.(map[string]interface{})
			if !ok {
				success = false
				break
			}
			current, ok = m[key]
			if !ok {
				success = false
				break
			}
		}

		if success {
			return current, nil
		}
	}

	return nil, fmt.Errorf("no valid path found among: %v", candidateKeys)
}

func GetString(key string, defaultValue ...string) (string, error) {
	ensureLoaded()

	val, err := Config.get(key)
	if err != nil {
		if len(defaultValue) == 1 {
			return defaultValue[0], nil
		}
		return "", err
	}

	s, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("%s is not a string: %w", key, ErrWrongType)
	}

	return s, nil
}

func GetInt(key string, defaultValue ...int) (int, error) {
	ensureLoaded()

	val, err := Config.get(key)
	if err != nil {
		if len(defaultValue) == 1 {
			return defaultValue[0], nil
		}
		return 0, err
	}

	// YAML numbers may be unmarshaled as int/float64 depending on content.
	switch v := val.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("%s is not an int: %w", key, ErrWrongType)
	}
}

// GetDuration reads a Go duration string ("5m", "90s"). A bare integer is
// taken as seconds.
func GetDuration(key string, defaultValue ...time.Duration) (time.Duration, error) {
	ensureLoaded()

	val, err := Config.get(key)
	if err != nil {
		if len(defaultValue) == 1 {
			return defaultValue[0], nil
		}
		return 0, err
	}

	switch v := val.(type) {
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", key, err)
		}
		return d, nil
	case int:
		return time.Duration(v) * time.Second, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	default:
		return 0, fmt.Errorf("%s is not a duration: %w", key, ErrWrongType)
	}
}

// GetStringMap returns a map of string values, such as the services table.
// Non-string values are skipped.
func GetStringMap(key string) (map[string]string, error) {
	ensureLoaded()

	val, err := Config.get(key)
	if err != nil {
		return map[string]string{}, err
	}

	m, ok := val.(map[string]interface{})
	if !ok {
		return map[string]string{}, fmt.Errorf("%s is not a map: %w", key, ErrWrongType)
	}

	result := make(map[string]string, len(m))
	for k, v := range m {
		if s, ok := v.(string); ok {
			result[k] = s
		}
	}
	return result, nil
}

func GetStringSlice(key string) ([]string, error) {
	ensureLoaded()

	val, err := Config.get(key)
	if err != nil {
		return nil, err
	}

	items, ok := val.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%s is not a list: %w", key, ErrWrongType)
	}

	result := make([]string, 0, len(items))
	for _, item := range items {
		result = append(result, fmt.Sprint(item))
	}
	return result, nil
}

// getConfigPath honors PROCURECTL_CFG first and then looks in the standard
// locations.
func getConfigPath() (string, error) {
	if p, ok := os.LookupEnv("PROCURECTL_CFG"); ok && p != "" {
		fileInfo, err := os.Stat(p)
		if err != nil {
			return "", fmt.Errorf("%s: %w", p, ErrNotFound)
		}
		if fileInfo.IsDir() {
			return "", fmt.Errorf("%s: %w", p, ErrIsDirectory)
		}
		return p, nil
	}

	var candidates []string = []string{
		os.Getenv("XDG_CONFIG_HOME"),
		os.Getenv("APPDATA"),
		os.Getenv("HOME"),
	}

	for _, c := range candidates {
		if c == "" {
			continue
		}
		file := filepath.Join(c, FileName)
		if fileInfo, err := os.Stat(file); err == nil {
			if !fileInfo.IsDir() {
				log.Debugf("using config file: %s", file)
				return file, nil
			}
		}
	}
	return "", fmt.Errorf("no %s in standard locations: %w", FileName, ErrNotFound)
}
