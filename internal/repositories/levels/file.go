package levels

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dunnston/dungeongraph/internal/domain/level"
	apperr "github.com/dunnston/dungeongraph/internal/errors"
)

// LoadFile reads a single level from a YAML or JSON file. The file
// extension picks the decoder.
func LoadFile(path string) (*level.Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.Wrapf(err, "failed to read level file %s", path)
	}

	var l level.Level
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &l); err != nil {
			return nil, apperr.Wrapf(err, "failed to parse level file %s", path)
		}
	case ".json":
		if err := json.Unmarshal(data, &l); err != nil {
			return nil, apperr.Wrapf(err, "failed to parse level file %s", path)
		}
	default:
		return nil, apperr.InvalidArgumentf("unsupported level file extension: %s", path)
	}

	if l.ID == "" {
		// Fall back to the file name so hand-authored files need not
		// repeat it.
		l.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	return &l, nil
}

// LoadDir reads every .yaml/.yml/.json level file in a directory
func LoadDir(dir string) ([]*level.Level, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, apperr.Wrapf(err, "failed to read level directory %s", dir)
	}

	var out []*level.Level
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".yaml", ".yml", ".json":
		default:
			continue
		}
		l, err := LoadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

// Seed loads every level file in a directory into a repository,
// replacing levels that already exist.
func Seed(ctx context.Context, repo Repository, dir string) (int, error) {
	loaded, err := LoadDir(dir)
	if err != nil {
		return 0, err
	}

	for _, l := range loaded {
		if err := repo.Create(ctx, l); err != nil {
			if !apperr.Is(err, apperr.CodeAlreadyExists) {
				return 0, err
			}
			if err := repo.Update(ctx, l); err != nil {
				return 0, err
			}
		}
	}
	return len(loaded), nil
}
