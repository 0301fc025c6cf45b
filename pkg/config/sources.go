package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Content source kinds.
const (
	KindFeeTables          = "fee_tables"
	KindFeeSections        = "fee_sections"
	KindScholarshipSection = "scholarship_section"
	KindEventsAnchor       = "events_anchor"
	KindEventsTable        = "events_table"
	KindEventsText         = "events_text"
)

// SourceConfig describes one scraped page.
type SourceConfig struct {
	ID            string   `yaml:"id"`
	Name          string   `yaml:"name"`
	URL           string   `yaml:"url"`
	Kind          string   `yaml:"kind"`
	Title         string   `yaml:"title"`
	SectionTitles []string `yaml:"section_titles"`
}

type sourcesFile struct {
	Sources []SourceConfig `yaml:"sources"`
}

// LoadSources reads scrape source definitions.
func LoadSources(path string) ([]SourceConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources: %w", err)
	}
	var f sourcesFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse sources: %w", err)
	}
	return f.Sources, nil
}

func ValidateSources(srcs []SourceConfig) error {
	seen := make(map[string]struct{}, len(srcs))
	for i, s := range srcs {
		if s.ID == "" || s.URL == "" {
			return fmt.Errorf("sources[%d]: id and url are required", i)
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("sources[%d]: duplicate id '%s'", i, s.ID)
		}
		seen[s.ID] = struct{}{}
		switch s.Kind {
		case KindFeeTables, KindEventsAnchor, KindEventsTable, KindEventsText:
		case KindFeeSections:
			if len(s.SectionTitles) == 0 {
				return fmt.Errorf("source '%s': section_titles required for %s", s.ID, s.Kind)
			}
		case KindScholarshipSection:
			if s.Title == "" {
				return fmt.Errorf("source '%s': title required for %s", s.ID, s.Kind)
			}
		default:
			return fmt.Errorf("source '%s': unknown kind '%s'", s.ID, s.Kind)
		}
	}
	return nil
}
