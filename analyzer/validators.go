package analyzer

import (
	"regexp"
	"strconv"
	"strings"

	"gapscan/onedb"
)

// Decoded parent-reference categories.
const (
	ParentNetwork          = "NETWORK"
	ParentFixedAddress     = "FIXEDADDRESS"
	ParentDHCPRange        = "DHCPRANGE"
	ParentNetworkContainer = "NETWORKCONTAINER"
)

// Each parent namespace carries a fixed literal suffix appended to the
// encoded key, stripped during decoding.
var parentNamespaces = map[string]struct {
	category string
	suffix   string
}{
	".com.infoblox.dns.network":           {ParentNetwork, "/0"},
	".com.infoblox.dns.fixed_address":     {ParentFixedAddress, ".0.."},
	".com.infoblox.dns.dhcp_range":        {ParentDHCPRange, "///0/"},
	".com.infoblox.dns.network_container": {ParentNetworkContainer, "/0"},
}

// CheckParentObject decodes a composite parent reference of the shape
// <namespace>$<encodedKey><suffix>. Unknown namespaces decode to empty
// category and key; not an error.
func CheckParentObject(ref string) (category, key string) {
	i := strings.LastIndex(ref, "$")
	if i < 0 {
		return "", ""
	}
	ns, ok := parentNamespaces[ref[:i]]
	if !ok {
		return "", ""
	}
	return ns.category, strings.TrimSuffix(ref[i+1:], ns.suffix)
}

var optionDefRe = regexp.MustCompile(`^(.*)\.\.(true|false)\.(\d+)$`)

// ParseOptionDef splits an encoded option definition into its option space
// and integer code. Malformed input is unclassifiable: ok is false and no
// finding should be produced.
func ParseOptionDef(def string) (space string, code int, ok bool) {
	m := optionDefRe.FindStringSubmatch(def)
	if m == nil {
		return "", 0, false
	}
	code, err := strconv.Atoi(m[3])
	if err != nil {
		return "", 0, false
	}
	return m[1], code, true
}

var hexValueRe = regexp.MustCompile(`^[0-9a-fA-F:\s]*$`)

// IsHexValue reports whether the value fully matches the hex pattern
// (hex digits with optional ':' or whitespace separators).
func IsHexValue(v string) bool {
	return hexValueRe.MatchString(v)
}

// NormalizeHex canonicalizes a hex-like value: separators stripped,
// lowercased, re-joined as ':'-separated byte pairs. A trailing odd nibble
// is dropped.
func NormalizeHex(v string) string {
	v = strings.ReplaceAll(v, ":", "")
	v = strings.ReplaceAll(v, " ", "")
	v = strings.ToLower(v)

	pairs := make([]string, 0, len(v)/2)
	for i := 0; i+1 < len(v); i += 2 {
		pairs = append(pairs, v[i:i+2])
	}
	return strings.Join(pairs, ":")
}

// validateDHCPOption applies the option decision table: flatly
// incompatible codes, codes needing manual validation (with the hex-only
// carve-out for code 43), everything else compatible.
func (a *Analyzer) validateDHCPOption(rec *onedb.Record, seq int) (*Finding, error) {
	category, key := CheckParentObject(rec.Value("parent"))

	space, code, ok := ParseOptionDef(rec.Value("option_definition"))
	if !ok {
		return nil, nil
	}

	value := rec.Value("value")
	hexLike := IsHexValue(value)
	if hexLike {
		value = NormalizeHex(value)
	}

	var status Status
	switch {
	case a.catalog.IncompatibleOption(code):
		status = StatusIncompatible
	case a.catalog.ValidateOption(code):
		if code == 43 && !hexLike {
			// Vendor-encapsulated options carry over only as opaque hex.
			status = StatusIncompatible
		} else {
			status = StatusValidationNeeded
		}
	default:
		return nil, nil
	}

	return &Finding{
		Category: CategoryDHCPOption,
		Status:   status,
		Parent:   category,
		Object:   key,
		Space:    space,
		Code:     code,
		Value:    value,
		Seq:      seq,
	}, nil
}

// validateNetwork flags /32 networks, which the target platform cannot
// represent. Single-rule extension point for further prefix policy checks.
func validateNetwork(rec *onedb.Record, seq int) (*Finding, error) {
	cidr := rec.Value("cidr")
	if cidr != "32" {
		return nil, nil
	}
	return &Finding{
		Category: CategoryDHCPNetwork,
		Status:   StatusIncompatible,
		Object:   rec.Value("address"),
		Value:    "/" + cidr,
		Seq:      seq,
	}, nil
}

// leaseMember returns the lease's owning member, but only while the lease
// is active. Binding state compares case-insensitively; exports disagree
// on the case they emit.
func leaseMember(rec *onedb.Record) (string, error) {
	state, ok := rec.Get("binding_state")
	if !ok || !strings.EqualFold(state, "active") {
		return "", nil
	}
	return rec.Value("node_id"), nil
}

// CollectProperties captures the requested properties present on the
// record.
func CollectProperties(rec *onedb.Record, names []string) map[string]string {
	collected := make(map[string]string, len(names))
	for _, name := range names {
		if v, ok := rec.Get(name); ok {
			collected[name] = v
		}
	}
	return collected
}
