package configutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// localPath turns `dir/name.ext` into `dir/name.local.ext`
func localPath(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + ".local" + ext
}

func readLayer[T any](path string, out *T) (bool, error) {
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

	var layer T
	err = json5.Unmarshal(contents, &layer)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", path, err)
	}
	// pointers are swapped whole, so a layer can set a pointer field to its
	// zero value
	err = mergo.Merge(out, layer, mergo.WithOverride, mergo.WithoutDereference)
	if err != nil {
		return false, fmt.Errorf("merge %s: %w", path, err)
	}
	return true, nil
}

// ReadConfig reads a configuration file, `name` should come with a file
// extension. It merges the following files over each other, where the
// higher number wins.
// 1. <name>.<ext>
// 2. <name>.local.<ext>
//
// It returns os.ErrNotExist when neither file exists.
func ReadConfig[T any](name string) (T, error) {
	var out T
	return out, readInto(name, &out)
}

// ReadWithDefaults is ReadConfig layered on top of `defaults`, missing
// files are not an error.
func ReadWithDefaults[T any](name string, defaults T) (T, error) {
	out := defaults
	err := readInto(name, &out)
	if errors.Is(err, os.ErrNotExist) {
		return defaults, nil
	}
	return out, err
}

func readInto[T any](name string, out *T) error {
	foundDefault, err := readLayer(name, out)
	if err != nil {
		return err
	}
	foundLocal, err := readLayer(localPath(name), out)
	if err != nil {
		return err
	}
	if !foundDefault && !foundLocal {
		return os.ErrNotExist
	}
	return nil
}

// ReadRecursively is ReadConfig but it goes up the filesystem until the
// root to find a configuration file matching the name.
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
