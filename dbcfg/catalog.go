// Package dbcfg loads the declarative configuration that drives the
// analysis pass: the object catalog (which database types are processed,
// and how) and the report configuration (which report sections are
// rendered).
package dbcfg

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"gapscan/errors"
)

// Action tags an object pipeline may declare, executed in declared order.
const (
	ActionCount   = "count"   // increment the per-type counter
	ActionFeature = "feature" // sticky feature-flag detection
	ActionProcess = "process" // run the type's validator
	ActionCollect = "collect" // collect configured properties
	ActionMember  = "member"  // tally the owning member
)

// ObjectConfig describes the pipeline for one database object type.
type ObjectConfig struct {
	Type       string   `yaml:"type"`
	Header     string   `yaml:"header,omitempty"`
	Actions    []string `yaml:"actions"`
	Properties []string `yaml:"properties,omitempty"`
	Feature    string   `yaml:"feature,omitempty"`
	Keypair    []string `yaml:"keypair,omitempty"`
	Func       string   `yaml:"func,omitempty"`
}

// Catalog maps database type identifiers to their pipelines, plus the two
// registry-wide DHCP option code sets.
type Catalog struct {
	Objects             map[string]ObjectConfig `yaml:"objects"`
	IncompatibleOptions []int                   `yaml:"incompatible_options"`
	ValidateOptions     []int                   `yaml:"validate_options"`

	incompatible map[int]bool
	validate     map[int]bool
}

// Load reads and validates an object catalog from a YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrConfig, "object catalog %q: %v", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates an object catalog from YAML bytes.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrapf(errors.ErrConfig, "object catalog: %v", err)
	}
	if err := c.validateConfig(); err != nil {
		return nil, err
	}

	c.incompatible = make(map[int]bool, len(c.IncompatibleOptions))
	for _, code := range c.IncompatibleOptions {
		c.incompatible[code] = true
	}
	c.validate = make(map[int]bool, len(c.ValidateOptions))
	for _, code := range c.ValidateOptions {
		c.validate[code] = true
	}

	return &c, nil
}

func (c *Catalog) validateConfig() error {
	if len(c.Objects) == 0 {
		return errors.NewConfigError("object catalog declares no objects")
	}
	for id, obj := range c.Objects {
		// Unknown action tags are deliberately NOT rejected here: the
		// dispatcher treats them as non-fatal warnings so a newer config
		// can run against an older binary.
		if kp := obj.Keypair; len(kp) != 0 && len(kp) != 2 {
			return errors.NewConfigError("object %s: keypair must have exactly 2 elements, got %d", id, len(kp))
		}
		for _, action := range obj.Actions {
			if (action == ActionProcess || action == ActionMember) && obj.Func == "" {
				return errors.NewConfigError("object %s: action %q requires a func identifier", id, action)
			}
			if action == ActionFeature && obj.Feature == "" {
				return errors.NewConfigError("object %s: action %q requires a feature name", id, action)
			}
		}
	}
	return nil
}

// Included reports whether the given type identifier is configured.
func (c *Catalog) Included(dbType string) bool {
	_, ok := c.Objects[dbType]
	return ok
}

// Count returns the number of configured object types.
func (c *Catalog) Count() int {
	return len(c.Objects)
}

// ObjectType returns the category label for a type, or "" if unregistered.
func (c *Catalog) ObjectType(dbType string) string {
	return c.Objects[dbType].Type
}

// Actions returns the ordered action list for a type. Empty if the type is
// not registered.
func (c *Catalog) Actions(dbType string) []string {
	return c.Objects[dbType].Actions
}

// Header returns the ordered column labels for a type's findings table.
// Empty for registered types without a header.
func (c *Catalog) Header(dbType string) []string {
	h := c.Objects[dbType].Header
	if h == "" {
		return nil
	}
	return strings.Split(h, ",")
}

// Properties returns the property names to collect for a type.
func (c *Catalog) Properties(dbType string) []string {
	return c.Objects[dbType].Properties
}

// Feature returns the feature name tracked for a type, or "".
func (c *Catalog) Feature(dbType string) string {
	return c.Objects[dbType].Feature
}

// Keypair returns the configured key/expected-value pair, or nil.
func (c *Catalog) Keypair(dbType string) []string {
	return c.Objects[dbType].Keypair
}

// Func returns the validator/collector identifier for a type, or "".
func (c *Catalog) Func(dbType string) string {
	return c.Objects[dbType].Func
}

// IncompatibleOption reports whether the option code is flatly incompatible.
func (c *Catalog) IncompatibleOption(code int) bool {
	return c.incompatible[code]
}

// ValidateOption reports whether the option code needs manual validation.
func (c *Catalog) ValidateOption(code int) bool {
	return c.validate[code]
}
