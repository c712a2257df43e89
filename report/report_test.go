package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gapscan/analyzer"
	"gapscan/dbcfg"
)

func reportCatalog(t *testing.T) *dbcfg.Catalog {
	t.Helper()
	c, err := dbcfg.Parse([]byte(`
objects:
  .com.infoblox.dns.option:
    type: DHCP Option
    actions: [count, process]
    header: 'TYPE,STATUS,PARENT,OBJECT,OPTIONSPACE,OPTIONCODE,OPTIONVALUE,OBJECTLINE'
    func: dhcp_option
  .com.infoblox.dns.network:
    type: DHCP Network
    actions: [count, process]
    func: dhcp_network
  .com.infoblox.dns.lease:
    type: Lease
    actions: [count, member]
    func: lease_member
  .com.infoblox.dns.fixed_address:
    type: Fixed Address
    actions: [count, collect]
    properties: [address, match_option]
  .com.infoblox.dns.dhcp_failover_association:
    type: DHCP Failover
    actions: [feature]
    feature: dhcp_failover
incompatible_options: [12]
validate_options: [43, 151]
`))
	require.NoError(t, err)
	return c
}

func reportConfig(t *testing.T) *dbcfg.ReportConfig {
	t.Helper()
	rc, err := dbcfg.ParseReportConfig([]byte(`
report_sections: [processed, collected, counters, member_counts, features]
summaries:
  .com.infoblox.dns.option:
    name: option_summary
    group_by: [STATUS, OPTIONCODE]
`))
	require.NoError(t, err)
	return rc
}

func populatedState() *analyzer.State {
	state := analyzer.NewState()
	state.Objects = 10
	state.Counters[".com.infoblox.dns.option"] = 3
	state.Counters[".com.infoblox.dns.network"] = 2
	state.Findings[".com.infoblox.dns.option"] = []analyzer.Finding{
		{Category: analyzer.CategoryDHCPOption, Status: analyzer.StatusIncompatible,
			Parent: "NETWORK", Object: "10.0.0.0", Space: "DHCP", Code: 12, Value: "x", Seq: 1},
		{Category: analyzer.CategoryDHCPOption, Status: analyzer.StatusIncompatible,
			Parent: "NETWORK", Object: "10.1.0.0", Space: "DHCP", Code: 12, Value: "y", Seq: 4},
		{Category: analyzer.CategoryDHCPOption, Status: analyzer.StatusValidationNeeded,
			Parent: "DHCPRANGE", Object: "10.0.0.100", Space: "DHCP", Code: 151, Value: "z", Seq: 9},
	}
	state.Collected[".com.infoblox.dns.fixed_address"] = []map[string]string{
		{"address": "10.0.0.5", "match_option": "MAC_ADDRESS"},
		{"address": "10.0.0.6"},
	}
	state.MemberCounts["Lease"] = map[string]int{"member-b": 1, "member-a": 2}
	state.Features["dhcp_failover"] = true
	return state
}

func findTable(t *testing.T, tables []Table, name string) Table {
	t.Helper()
	for _, table := range tables {
		if table.Name == name {
			return table
		}
	}
	t.Fatalf("table %q not found in %v", name, tableNames(tables))
	return Table{}
}

func tableNames(tables []Table) []string {
	names := make([]string, len(tables))
	for i, table := range tables {
		names[i] = table.Name
	}
	return names
}

func TestBuildSections(t *testing.T) {
	tables := Build(populatedState(), reportCatalog(t), reportConfig(t))

	processed := findTable(t, tables, "processed_DHCP_Option")
	require.Len(t, processed.Rows, 3)
	assert.Equal(t, "TYPE", processed.Columns[0])
	assert.Equal(t,
		[]string{"DHCPOPTION", "INCOMPATIBLE", "NETWORK", "10.0.0.0", "DHCP", "12", "x", "1"},
		processed.Rows[0])

	// Network has no findings: placeholder, never omitted.
	network := findTable(t, tables, "processed_DHCP_Network")
	assert.True(t, network.Empty())

	collected := findTable(t, tables, "collected_Fixed_Address")
	require.Len(t, collected.Rows, 2)
	assert.Equal(t, []string{"address", "match_option"}, collected.Columns)
	assert.Equal(t, []string{"10.0.0.6", ""}, collected.Rows[1])

	counters := findTable(t, tables, "counters")
	require.Len(t, counters.Rows, 4) // types declaring count, sorted
	assert.Equal(t, []string{".com.infoblox.dns.fixed_address", "Fixed Address", "0"}, counters.Rows[0])
	assert.Equal(t, []string{".com.infoblox.dns.option", "DHCP Option", "3"}, counters.Rows[3])

	members := findTable(t, tables, "member_counts_Lease")
	assert.Equal(t, [][]string{{"member-a", "2"}, {"member-b", "1"}}, members.Rows)

	features := findTable(t, tables, "features")
	assert.Equal(t, [][]string{{"dhcp_failover", "true"}}, features.Rows)
}

func TestBuildSummaryPivot(t *testing.T) {
	tables := Build(populatedState(), reportCatalog(t), reportConfig(t))

	summary := findTable(t, tables, "option_summary")
	assert.Equal(t, []string{"STATUS", "OPTIONCODE", "COUNT"}, summary.Columns)
	assert.Equal(t, [][]string{
		{"INCOMPATIBLE", "12", "2"},
		{"VALIDATION_NEEDED", "151", "1"},
	}, summary.Rows)
}

func TestBuildSummaryDegradesToPlaceholder(t *testing.T) {
	rc, err := dbcfg.ParseReportConfig([]byte(`
report_sections: [processed]
summaries:
  .com.infoblox.dns.network:
    name: network_summary
    group_by: [STATUS]
`))
	require.NoError(t, err)

	// Network type has no header, so the pivot cannot be built. The
	// placeholder still carries the same columns a built summary would.
	tables := Build(populatedState(), reportCatalog(t), rc)
	summary := findTable(t, tables, "network_summary")
	assert.True(t, summary.Empty())
	assert.Equal(t, []string{"STATUS", "COUNT"}, summary.Columns)
}

func TestBuildDeterministic(t *testing.T) {
	first := Build(populatedState(), reportCatalog(t), reportConfig(t))
	second := Build(populatedState(), reportCatalog(t), reportConfig(t))
	assert.Equal(t, first, second)
}

func TestBuildSectionOrderFollowsConfig(t *testing.T) {
	rc, err := dbcfg.ParseReportConfig([]byte("report_sections: [counters, features]"))
	require.NoError(t, err)

	tables := Build(populatedState(), reportCatalog(t), rc)
	names := tableNames(tables)
	assert.Equal(t, []string{"counters", "features"}, names)
}

func TestWriteCSV(t *testing.T) {
	dir := t.TempDir()
	tables := []Table{
		{
			Name:    "processed_DHCP_Option",
			Columns: []string{"TYPE", "STATUS"},
			Rows:    [][]string{{"DHCPOPTION", "INCOMPATIBLE"}},
		},
		placeholderTable("member_counts_Lease", []string{"MEMBER", "ACTIVELEASES"}),
	}

	paths, err := WriteCSV(tables, dir)
	require.NoError(t, err)
	require.Len(t, paths, 2)

	data, err := os.ReadFile(filepath.Join(dir, "processed_dhcp_option.csv"))
	require.NoError(t, err)
	assert.Equal(t, "TYPE,STATUS\nDHCPOPTION,INCOMPATIBLE\n", string(data))

	data, err = os.ReadFile(filepath.Join(dir, "member_counts_lease.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(data), Placeholder+"\n"))
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, "10 objects scanned, 3 findings", Summarize(populatedState()))
}
