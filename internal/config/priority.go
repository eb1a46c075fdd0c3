package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/epw-station-etl/internal/domain"
)

// priorityFile is the YAML layout of SOURCE_PRIORITY_FILE:
//
//	sources:
//	  - type: TMY3
//	    rank: 10
//	  - type: IWEC
//	    rank: 7
type priorityFile struct {
	Sources []prioritySource `yaml:"sources" validate:"required,min=1,unique=Type,dive"`
}

type prioritySource struct {
	Type string `yaml:"type" validate:"required"`
	Rank int    `yaml:"rank"`
}

// LoadPriorityFile reads and validates a source-type priority table.
func LoadPriorityFile(path string) ([]domain.SourceRank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read SOURCE_PRIORITY_FILE: %w", err)
	}
	return parsePriority(data)
}

func parsePriority(data []byte) ([]domain.SourceRank, error) {
	var pf priorityFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parse SOURCE_PRIORITY_FILE: %w", err)
	}
	if err := validator.New().Struct(pf); err != nil {
		return nil, fmt.Errorf("validate SOURCE_PRIORITY_FILE: %w", err)
	}

	ranks := make([]domain.SourceRank, len(pf.Sources))
	for i, s := range pf.Sources {
		ranks[i] = domain.SourceRank{SourceType: s.Type, Rank: s.Rank}
	}
	return ranks, nil
}
