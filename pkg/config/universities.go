package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Component names used as keys of weights and totals.
const (
	ComponentMatric = "matric"
	ComponentFSc    = "fsc"
	ComponentTest   = "test"
)

// Standardized tests a university may require.
const (
	TestNTS     = "NTS"
	TestNET     = "NET"
	TestECAT    = "ECAT"
	TestNEDTest = "NED Entry Test"
	TestSAT     = "SAT"
)

// History source types.
const (
	HistoryInline     = "inline"
	HistoryFile       = "file"
	HistoryClickHouse = "clickhouse"
)

var knownTests = map[string]struct{}{
	TestNTS: {}, TestNET: {}, TestECAT: {}, TestNEDTest: {}, TestSAT: {},
}

// IsKnownTest reports whether name is one of the supported standardized tests.
func IsKnownTest(name string) bool {
	_, ok := knownTests[name]
	return ok
}

type UniversityConfig struct {
	ID           string             `yaml:"id"`
	Name         string             `yaml:"name"`
	Weights      map[string]float64 `yaml:"weights"`
	Totals       map[string]float64 `yaml:"totals"`
	RequiredTest string             `yaml:"required_test"`
	History      *HistoryConfig     `yaml:"history"`
}

// HistoryConfig points at a university's historical cutoff table.
type HistoryConfig struct {
	Type          string                   `yaml:"type"`
	Path          string                   `yaml:"path"`
	Sheet         string                   `yaml:"sheet"`
	ProgramColumn string                   `yaml:"program_column"`
	YearColumn    string                   `yaml:"year_column"`
	CutoffColumn  string                   `yaml:"cutoff_column"`
	Rows          []map[string]interface{} `yaml:"rows"`
}

type universitiesFile struct {
	Universities []UniversityConfig `yaml:"universities"`
}

// LoadUniversities reads the ordered university catalog.
func LoadUniversities(path string) ([]UniversityConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read universities: %w", err)
	}
	var f universitiesFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse universities: %w", err)
	}
	return f.Universities, nil
}

// ValidateUniversities checks ids, scoring schemes and history references.
func ValidateUniversities(unis []UniversityConfig) error {
	seen := make(map[string]struct{}, len(unis))
	for i, u := range unis {
		if u.ID == "" {
			return fmt.Errorf("universities[%d]: id is required", i)
		}
		if _, dup := seen[u.ID]; dup {
			return fmt.Errorf("universities[%d]: duplicate id '%s'", i, u.ID)
		}
		seen[u.ID] = struct{}{}

		for comp, total := range u.Totals {
			if !isComponent(comp) {
				return fmt.Errorf("university '%s': unknown component '%s' in totals", u.ID, comp)
			}
			if total <= 0 {
				return fmt.Errorf("university '%s': total for '%s' must be positive", u.ID, comp)
			}
			if u.Weights[comp] < 0 {
				return fmt.Errorf("university '%s': weight for '%s' must be non-negative", u.ID, comp)
			}
		}
		for comp := range u.Weights {
			if !isComponent(comp) {
				return fmt.Errorf("university '%s': unknown component '%s' in weights", u.ID, comp)
			}
		}
		if u.RequiredTest != "" && !IsKnownTest(u.RequiredTest) {
			return fmt.Errorf("university '%s': unknown required_test '%s'", u.ID, u.RequiredTest)
		}

		h := u.History
		if h == nil {
			continue
		}
		switch h.Type {
		case HistoryInline, HistoryClickHouse:
		case HistoryFile:
			if h.Path == "" {
				return fmt.Errorf("university '%s': history path is required for file sources", u.ID)
			}
		default:
			return fmt.Errorf("university '%s': unknown history type '%s'", u.ID, h.Type)
		}
		if h.ProgramColumn == "" || h.CutoffColumn == "" {
			return fmt.Errorf("university '%s': history needs program_column and cutoff_column", u.ID)
		}
	}
	return nil
}

func isComponent(name string) bool {
	return name == ComponentMatric || name == ComponentFSc || name == ComponentTest
}
