// Package cli provides CLI command implementations.
package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/adrianpk/stopgate/internal/config"
)

// RunInit creates a stopgate configuration file. With local set it writes
// .stopgate.yml into dir, otherwise the global config file.
func RunInit(local bool, dir string, out io.Writer) error {
	var configPath string

	if local {
		if dir == "" {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("cannot get working directory: %w", err)
			}
			dir = cwd
		}
		configPath = config.LocalConfigPath(dir)
	} else {
		configPath = config.GlobalConfigPath()
		if configPath == "" {
			return errors.New("cannot get home directory")
		}
	}

	if _, err := os.Stat(configPath); err == nil {
		fmt.Fprintf(out, "Config already exists: %s\n", configPath)
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("cannot stat config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0644); err != nil {
		return fmt.Errorf("cannot write config: %w", err)
	}

	fmt.Fprintf(out, "Created config: %s\n", configPath)
	return nil
}

const defaultConfig = `version: 1

status:
  max_age: 5m

git:
  timeout: 5s
  binary: git

rules:
  disable: []
  custom: []
  # custom:
  #   - id: graphql
  #     name: GRAPHQL CHANGES
  #     patterns: ['gql` + "`" + `', 'schema\.graphql']
  #     checks: ['Run the schema diff against production']

logging:
  debug: false
  file: ""
  level: info
`
