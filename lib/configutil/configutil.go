package configutil

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/titanous/json5"
)

func splitExt(f string) (string, string) {
	for i := len(f) - 1; i >= 0; i-- {
		if f[i] == '.' {
			return f[0:i], f[i+1:]
		}
	}
	return f, ""
}

// LocalPath returns the path of the local override file for a config file,
// `config.json5` becomes `config.local.json5`.
func LocalPath(name string) string {
	prefix, ext := splitExt(filepath.Base(name))
	if ext == "" {
		return filepath.Join(filepath.Dir(name), fmt.Sprintf("%s.local", prefix))
	}
	return filepath.Join(filepath.Dir(name), fmt.Sprintf("%s.local.%s", prefix, ext))
}

// readLayer decodes a single file on top of `out`, found is false if the file doesn't
// exist or is empty. Keys missing from the file leave `out` untouched.
func readLayer[T any](path string, out *T) (found bool, err error) {
	contents, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(contents) == 0 {
		return false, nil
	}
	err = json5.Unmarshal(contents, out)
	if err != nil {
		return false, fmt.Errorf("decode %s: %w", path, err)
	}
	return true, nil
}

// readLayers decodes <name>.<ext> and then <name>.local.<ext> on top of `out`.
func readLayers[T any](name string, out *T) (bool, error) {
	foundDefault, err := readLayer(name, out)
	if err != nil {
		return false, err
	}

	localPath := LocalPath(name)
	foundLocal, err := readLayer(localPath, out)
	if err != nil {
		return false, err
	}
	if foundLocal {
		slog.Info("merging config with local overrides", "local", localPath)
	}
	return foundDefault || foundLocal, nil
}

// reads a configuration file, `name` should come with a file extension,
// it will automatically be lopped off to produce the other extensions.
// this function will merge the following files, where higher number is more prioritized.
// 1. <name>.<ext>
// 2. <name>.local.<ext>
func ReadConfig[T any](name string) (T, error) {
	var out T
	found, err := readLayers(name, &out)
	if err != nil {
		return out, err
	}
	if !found {
		return out, os.ErrNotExist
	}
	return out, nil
}

// ReadConfigWithDefaults is ReadConfig with the files decoded on top of `defaults`, so a
// key the files set explicitly wins even when its value is zero. A missing file is not an
// error, `defaults` is returned as-is.
//
// Slices in `defaults` are decoded into element by element, leave them nil and fill them
// in afterwards when a partial element should not inherit the default one.
func ReadConfigWithDefaults[T any](name string, defaults T) (T, error) {
	out := defaults
	_, err := readLayers(name, &out)
	if err != nil {
		return defaults, err
	}
	return out, nil
}

// ReadConfig but it recursively goes up the filesystem until the root
// to find a configuration file matching the name.
func ReadRecursively[T any](name string) (T, error) {
	var defaultOut T

	current, err := os.Getwd()
	if err != nil {
		return defaultOut, err
	}

	for {
		config, err := ReadConfig[T](filepath.Join(current, name))
		if err == nil {
			return config, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return defaultOut, err
		}

		parent := filepath.Dir(current)
		if parent == current {
			return defaultOut, os.ErrNotExist
		}
		current = parent
	}
}
