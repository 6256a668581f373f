package questions

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dunnston/dungeongraph/internal/domain/quiz"
	apperr "github.com/dunnston/dungeongraph/internal/errors"
)

// LoadFile reads a list of questions from a YAML or JSON file
func LoadFile(path string) ([]*quiz.Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.Wrapf(err, "failed to read question file %s", path)
	}

	var out []*quiz.Question
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &out); err != nil {
			return nil, apperr.Wrapf(err, "failed to parse question file %s", path)
		}
	case ".json":
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, apperr.Wrapf(err, "failed to parse question file %s", path)
		}
	default:
		return nil, apperr.InvalidArgumentf("unsupported question file extension: %s", path)
	}
	return out, nil
}

// Seed loads every question file in a directory into a repository.
// Create is an upsert for catalog content, so reseeding replaces
// questions in place.
func Seed(ctx context.Context, repo Repository, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, apperr.Wrapf(err, "failed to read question directory %s", dir)
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
		for _, question := range loaded {
			if err := repo.Create(ctx, question); err != nil {
				return total, err
			}
			total++
		}
	}
	return total, nil
}
