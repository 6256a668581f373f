package enemies

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dunnston/dungeongraph/internal/domain/combat"
	apperr "github.com/dunnston/dungeongraph/internal/errors"
)

// LoadFile reads a list of enemy definitions from a YAML or JSON file
func LoadFile(path string) ([]*combat.Enemy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.Wrapf(err, "failed to read enemy file %s", path)
	}

	var out []*combat.Enemy
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &out); err != nil {
			return nil, apperr.Wrapf(err, "failed to parse enemy file %s", path)
		}
	case ".json":
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, apperr.Wrapf(err, "failed to parse enemy file %s", path)
		}
	default:
		return nil, apperr.InvalidArgumentf("unsupported enemy file extension: %s", path)
	}
	return out, nil
}

// Seed loads every enemy file in a directory into a repository. Create
// is an upsert for catalog content, so reseeding replaces definitions.
func Seed(ctx context.Context, repo Repository, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, apperr.Wrapf(err, "failed to read enemy directory %s", dir)
	}

	total := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".yaml", ".yml", ".json":
		default:
			continue
		}
		loaded, err := LoadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return total, err
		}
		for _, enemy := range loaded {
			if err := repo.Create(ctx, enemy); err != nil {
				return total, err
			}
			total++
		}
	}
	return total, nil
}
