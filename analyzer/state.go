// Package analyzer drives one pass over a database stream: it classifies
// each object by declared type, looks up the type's configured action
// pipeline, and applies the actions against a single aggregate State.
package analyzer

import "strconv"

// Status of a finding.
type Status string

const (
	// StatusIncompatible marks an element with no equivalent on the
	// target platform.
	StatusIncompatible Status = "INCOMPATIBLE"

	// StatusValidationNeeded marks an element that needs manual review
	// before migration.
	StatusValidationNeeded Status = "VALIDATION_NEEDED"
)

// Finding categories.
const (
	CategoryDHCPOption  = "DHCPOPTION"
	CategoryDHCPNetwork = "DHCPNETWORK"
)

// Finding is one structured validation result. Seq is the 1-based ordinal
// of the originating object in the stream; provenance only, never used for
// business logic.
type Finding struct {
	Category string
	Status   Status
	Parent   string // decoded parent category (NETWORK, FIXEDADDRESS, ...)
	Object   string // decoded parent key, or the subject address
	Space    string // DHCP option space
	Code     int    // DHCP option code
	Value    string
	Seq      int
}

// Row renders the finding as an ordered CSV row matching the category's
// configured header.
func (f Finding) Row() []string {
	switch f.Category {
	case CategoryDHCPOption:
		return []string{
			f.Category, string(f.Status), f.Parent, f.Object,
			f.Space, strconv.Itoa(f.Code), f.Value, strconv.Itoa(f.Seq),
		}
	default:
		return []string{f.Category, string(f.Status), f.Object + f.Value, strconv.Itoa(f.Seq)}
	}
}

// State is the aggregate report model for one pass. It has exactly one
// writer (the Analyzer) for the run's duration and becomes read-only once
// the stream is exhausted.
type State struct {
	// Counters maps type identifier to occurrence count.
	Counters map[string]int

	// Features maps feature name to detection result. Write-once-to-true:
	// a feature seen enabled anywhere in the stream stays enabled.
	Features map[string]bool

	// Collected maps type identifier to the property maps captured for it,
	// in stream order.
	Collected map[string][]map[string]string

	// Findings maps type identifier to validation results, in stream order.
	Findings map[string][]Finding

	// MemberCounts maps category label to per-member tallies.
	MemberCounts map[string]map[string]int

	// Objects is the total number of stream objects seen, configured or not.
	Objects int
}

// NewState creates an empty aggregate, one per run.
func NewState() *State {
	return &State{
		Counters:     make(map[string]int),
		Features:     make(map[string]bool),
		Collected:    make(map[string][]map[string]string),
		Findings:     make(map[string][]Finding),
		MemberCounts: make(map[string]map[string]int),
	}
}
