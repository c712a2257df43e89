// Package report assembles the finalized aggregate state into named
// tabular views: one table per type per section, scalar tables for
// counters, features and member tallies, and configured summary pivots.
// Rendering destinations (console, CSV) live in render.go.
package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gapscan/analyzer"
	"gapscan/dbcfg"
	"gapscan/errors"
	"gapscan/logger"
)

// Placeholder marks a section that produced no rows. Tables are never
// omitted, so downstream consumers see every configured section.
const Placeholder = "NONE FOUND"

// Table is one named tabular artifact.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// Empty reports whether the table holds only the placeholder row.
func (t Table) Empty() bool {
	return len(t.Rows) == 1 && len(t.Rows[0]) == 1 && t.Rows[0][0] == Placeholder
}

func placeholderTable(name string, columns []string) Table {
	return Table{Name: name, Columns: columns, Rows: [][]string{{Placeholder}}}
}

// Build produces the report tables in the section order the report config
// declares, followed by the configured summary pivots. A section that
// fails to assemble degrades to a placeholder table rather than failing
// the whole report.
func Build(state *analyzer.State, catalog *dbcfg.Catalog, rc *dbcfg.ReportConfig) []Table {
	var tables []Table

	for _, section := range rc.Sections {
		switch section {
		case dbcfg.SectionProcessed:
			tables = append(tables, processedTables(state, catalog)...)
		case dbcfg.SectionCollected:
			tables = append(tables, collectedTables(state, catalog)...)
		case dbcfg.SectionCounters:
			tables = append(tables, countersTable(state, catalog))
		case dbcfg.SectionMemberCounts:
			tables = append(tables, memberCountTables(state, catalog)...)
		case dbcfg.SectionFeatures:
			tables = append(tables, featuresTable(state, catalog))
		}
	}

	for _, id := range sortedKeys(rc.Summaries) {
		sum := rc.Summaries[id]
		table, err := summaryTable(state, catalog, id, sum)
		if err != nil {
			logger.Warnw("summary degraded to placeholder", "summary", sum.Name, "error", err)
			table = placeholderTable(sum.Name, summaryColumns(sum))
		}
		tables = append(tables, table)
	}

	return tables
}

// typesWithAction returns catalog type ids declaring the action, sorted.
func typesWithAction(catalog *dbcfg.Catalog, action string) []string {
	var ids []string
	for id := range catalog.Objects {
		for _, a := range catalog.Actions(id) {
			if a == action {
				ids = append(ids, id)
				break
			}
		}
	}
	sort.Strings(ids)
	return ids
}

func tableName(section, label string) string {
	return section + "_" + strings.ReplaceAll(label, " ", "_")
}

func processedTables(state *analyzer.State, catalog *dbcfg.Catalog) []Table {
	var tables []Table
	for _, id := range typesWithAction(catalog, dbcfg.ActionProcess) {
		name := tableName(dbcfg.SectionProcessed, catalog.ObjectType(id))
		columns := catalog.Header(id)

		findings := state.Findings[id]
		if len(findings) == 0 {
			tables = append(tables, placeholderTable(name, columns))
			continue
		}
		rows := make([][]string, 0, len(findings))
		for _, f := range findings {
			rows = append(rows, f.Row())
		}
		tables = append(tables, Table{Name: name, Columns: columns, Rows: rows})
	}
	return tables
}

func collectedTables(state *analyzer.State, catalog *dbcfg.Catalog) []Table {
	var tables []Table
	for _, id := range typesWithAction(catalog, dbcfg.ActionCollect) {
		name := tableName(dbcfg.SectionCollected, catalog.ObjectType(id))
		columns := catalog.Properties(id)

		collected := state.Collected[id]
		if len(collected) == 0 {
			tables = append(tables, placeholderTable(name, columns))
			continue
		}
		rows := make([][]string, 0, len(collected))
		for _, props := range collected {
			row := make([]string, len(columns))
			for i, col := range columns {
				row[i] = props[col]
			}
			rows = append(rows, row)
		}
		tables = append(tables, Table{Name: name, Columns: columns, Rows: rows})
	}
	return tables
}

func countersTable(state *analyzer.State, catalog *dbcfg.Catalog) Table {
	ids := typesWithAction(catalog, dbcfg.ActionCount)
	table := Table{
		Name:    dbcfg.SectionCounters,
		Columns: []string{"OBJECT", "TYPE", "COUNT"},
	}
	for _, id := range ids {
		table.Rows = append(table.Rows, []string{
			id, catalog.ObjectType(id), strconv.Itoa(state.Counters[id]),
		})
	}
	if len(table.Rows) == 0 {
		return placeholderTable(table.Name, table.Columns)
	}
	return table
}

func memberCountTables(state *analyzer.State, catalog *dbcfg.Catalog) []Table {
	var tables []Table
	for _, id := range typesWithAction(catalog, dbcfg.ActionMember) {
		label := catalog.ObjectType(id)
		name := tableName(dbcfg.SectionMemberCounts, label)
		columns := []string{"MEMBER", "ACTIVELEASES"}

		tally := state.MemberCounts[label]
		if len(tally) == 0 {
			tables = append(tables, placeholderTable(name, columns))
			continue
		}
		table := Table{Name: name, Columns: columns}
		for _, member := range sortedKeys(tally) {
			table.Rows = append(table.Rows, []string{member, strconv.Itoa(tally[member])})
		}
		tables = append(tables, table)
	}
	return tables
}

func featuresTable(state *analyzer.State, catalog *dbcfg.Catalog) Table {
	table := Table{
		Name:    dbcfg.SectionFeatures,
		Columns: []string{"FEATURE", "ENABLED"},
	}
	seen := make(map[string]bool)
	for _, id := range typesWithAction(catalog, dbcfg.ActionFeature) {
		feature := catalog.Feature(id)
		if feature == "" || seen[feature] {
			continue
		}
		seen[feature] = true
	}
	for _, feature := range sortedKeys(seen) {
		table.Rows = append(table.Rows, []string{
			feature, strconv.FormatBool(state.Features[feature]),
		})
	}
	if len(table.Rows) == 0 {
		return placeholderTable(table.Name, table.Columns)
	}
	return table
}

// summaryTable pivots a type's findings into group-by frequency counts.
func summaryTable(state *analyzer.State, catalog *dbcfg.Catalog, id string, sum dbcfg.Summary) (Table, error) {
	header := catalog.Header(id)
	if header == nil {
		return Table{}, errors.Newf("type %s has no header to group by", id)
	}

	indexes := make([]int, 0, len(sum.GroupBy))
	for _, key := range sum.GroupBy {
		i := indexOf(header, key)
		if i < 0 {
			return Table{}, errors.Newf("group-by key %q not in header of %s", key, id)
		}
		indexes = append(indexes, i)
	}

	counts := make(map[string]int)
	for _, f := range state.Findings[id] {
		row := f.Row()
		if len(row) != len(header) {
			return Table{}, errors.Newf("finding row width %d does not match header width %d", len(row), len(header))
		}
		parts := make([]string, len(indexes))
		for i, idx := range indexes {
			parts[i] = row[idx]
		}
		counts[strings.Join(parts, "\x1f")]++
	}

	table := Table{Name: sum.Name, Columns: summaryColumns(sum)}
	if len(counts) == 0 {
		return placeholderTable(sum.Name, table.Columns), nil
	}
	for _, key := range sortedKeys(counts) {
		row := append(strings.Split(key, "\x1f"), strconv.Itoa(counts[key]))
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// summaryColumns is the one column shape for a summary, whether it
// builds or degrades.
func summaryColumns(sum dbcfg.Summary) []string {
	return append(append([]string{}, sum.GroupBy...), "COUNT")
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Summarize returns a short human-readable digest of the pass for the CLI
// completion message.
func Summarize(state *analyzer.State) string {
	findings := 0
	for _, f := range state.Findings {
		findings += len(f)
	}
	return fmt.Sprintf("%d objects scanned, %d findings", state.Objects, findings)
}
