package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"

	"gapscan/errors"
)

// RenderConsole prints every table to the terminal.
func RenderConsole(tables []Table) {
	for _, table := range tables {
		pterm.DefaultSection.Println(table.Name)

		if table.Empty() {
			pterm.Println(pterm.Gray(Placeholder))
			continue
		}

		data := pterm.TableData{}
		hasHeader := len(table.Columns) > 0
		if hasHeader {
			data = append(data, table.Columns)
		}
		for _, row := range table.Rows {
			data = append(data, row)
		}
		if err := pterm.DefaultTable.WithHasHeader(hasHeader).WithData(data).Render(); err != nil {
			pterm.Error.Printf("rendering %s: %v\n", table.Name, err)
		}
	}
}

// WriteCSV writes one CSV artifact per table into dir, named after the
// table. Returns the written paths.
func WriteCSV(tables []Table, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "report directory %q", dir)
	}

	paths := make([]string, 0, len(tables))
	for _, table := range tables {
		path := filepath.Join(dir, fileName(table.Name))
		if err := writeTable(table, path); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeTable(table Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "writing %q", path)
	}

	w := csv.NewWriter(f)
	if len(table.Columns) > 0 {
		w.Write(table.Columns)
	}
	for _, row := range table.Rows {
		w.Write(row)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing %q", path)
	}
	return errors.Wrapf(f.Close(), "writing %q", path)
}

func fileName(tableName string) string {
	name := strings.ToLower(tableName)
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, name)
	return name + ".csv"
}
