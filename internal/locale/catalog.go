// Package locale serves the display strings of the doctor and patient
// portals.
package locale

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

const DefaultLanguage = "en"

//go:embed locales.yaml
var bundled []byte

var supported = map[string]bool{"en": true, "es": true, "fr": true}

var requiredKeys = map[string][]string{
	"doctor": {
		"header_title", "header_subtitle", "chat_tab", "patient_list",
		"select_patient", "chat_placeholder",
	},
	"patient": {
		"header_title", "header_subtitle", "copilot_tab", "chat_tab",
		"upload_image", "using_placeholder", "clinical_notes",
		"clinical_notes_placeholder", "lab_values", "lab_values_placeholder",
		"ai_summary", "synthesizing", "error_prefix", "begin_analysis",
		"generate", "generating", "chat_placeholder",
	},
}

// Strings is one language's catalog.
type Strings struct {
	Language string            `yaml:"-" json:"language"`
	Name     string            `yaml:"name" json:"name"`
	Doctor   map[string]string `yaml:"doctor" json:"doctor"`
	Patient  map[string]string `yaml:"patient" json:"patient"`
}

func (s *Strings) portal(name string) map[string]string {
	switch name {
	case "doctor":
		return s.Doctor
	case "patient":
		return s.Patient
	}
	return nil
}

type Catalog struct {
	byLang map[string]*Strings
}

// Load parses the bundled catalog.
func Load() (*Catalog, error) {
	return Parse(bundled)
}

// Parse rejects unknown languages and any language missing a required key.
func Parse(data []byte) (*Catalog, error) {
	raw := make(map[string]*Strings)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse locales: %w", err)
	}

	for lang := range supported {
		if _, ok := raw[lang]; !ok {
			return nil, fmt.Errorf("locale %q is missing", lang)
		}
	}

	for lang, s := range raw {
		if !supported[lang] {
			return nil, fmt.Errorf("unsupported locale %q", lang)
		}
		if s == nil {
			return nil, fmt.Errorf("locale %q is empty", lang)
		}
		for portal, keys := range requiredKeys {
			values := s.portal(portal)
			for _, key := range keys {
				if values[key] == "" {
					return nil, fmt.Errorf("locale %q: %s.%s is not defined", lang, portal, key)
				}
			}
		}
		s.Language = lang
	}

	return &Catalog{byLang: raw}, nil
}

// Strings returns the catalog for lang, or English when lang is unknown.
func (c *Catalog) Strings(lang string) *Strings {
	if s, ok := c.byLang[lang]; ok {
		return s
	}
	return c.byLang[DefaultLanguage]
}

func (c *Catalog) Languages() []string {
	langs := make([]string, 0, len(c.byLang))
	for lang := range c.byLang {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}
