package dbcfg

import (
	"os"

	"gopkg.in/yaml.v3"

	"gapscan/errors"
)

// Report section names, rendered in the order the config lists them.
const (
	SectionProcessed    = "processed"
	SectionCollected    = "collected"
	SectionCounters     = "counters"
	SectionMemberCounts = "member_counts"
	SectionFeatures     = "features"
)

var validSections = map[string]bool{
	SectionProcessed:    true,
	SectionCollected:    true,
	SectionCounters:     true,
	SectionMemberCounts: true,
	SectionFeatures:     true,
}

// Summary defines a frequency pivot over a type's findings table.
type Summary struct {
	Name    string   `yaml:"name"`
	GroupBy []string `yaml:"group_by"`
}

// ReportConfig lists the enabled report sections and per-type summaries.
type ReportConfig struct {
	Sections  []string           `yaml:"report_sections"`
	Summaries map[string]Summary `yaml:"summaries,omitempty"`
}

// LoadReportConfig reads and validates a report configuration file.
func LoadReportConfig(path string) (*ReportConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrConfig, "report config %q: %v", path, err)
	}
	return ParseReportConfig(data)
}

// ParseReportConfig decodes and validates report configuration YAML.
func ParseReportConfig(data []byte) (*ReportConfig, error) {
	var rc ReportConfig
	if err := yaml.Unmarshal(data, &rc); err != nil {
		return nil, errors.Wrapf(errors.ErrConfig, "report config: %v", err)
	}
	if len(rc.Sections) == 0 {
		return nil, errors.NewConfigError("report config enables no sections")
	}
	for _, s := range rc.Sections {
		if !validSections[s] {
			return nil, errors.NewConfigError("report config: unknown section %q", s)
		}
	}
	for id, sum := range rc.Summaries {
		if sum.Name == "" {
			return nil, errors.NewConfigError("summary for %s has no name", id)
		}
		if len(sum.GroupBy) == 0 {
			return nil, errors.NewConfigError("summary %q has no group_by keys", sum.Name)
		}
	}
	return &rc, nil
}

// Enabled reports whether a section is listed in the config.
func (rc *ReportConfig) Enabled(section string) bool {
	for _, s := range rc.Sections {
		if s == section {
			return true
		}
	}
	return false
}
