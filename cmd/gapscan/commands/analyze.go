package commands

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"gapscan/analyzer"
	"gapscan/dbcfg"
	"gapscan/errors"
	"gapscan/logger"
	"gapscan/onedb"
	"gapscan/report"
)

// AnalyzeCmd runs the compatibility analysis over a database backup.
var AnalyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a database backup for migration blockers",
	Long: `Stream every object of a NIOS database backup through the configured
per-type checks and report the findings as console tables and CSV
artifacts.

The database may be a plain onedb.xml or a .tar.gz grid backup
containing one. CSV artifacts land in a per-run directory under the
output directory, named after the customer and a timestamp.

Examples:
  gapscan analyze -d backup.tar.gz
  gapscan analyze -d backup.tar.gz -c acme -o reports/
  gapscan analyze -d onedb.xml --objects objects.yaml --report-config rc.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		database, _ := cmd.Flags().GetString("database")
		customer, _ := cmd.Flags().GetString("customer")
		objects, _ := cmd.Flags().GetString("objects")
		reportCfg, _ := cmd.Flags().GetString("report-config")
		outdir, _ := cmd.Flags().GetString("outdir")

		return runAnalyze(cmd, database, customer, objects, reportCfg, outdir)
	},
}

func init() {
	AnalyzeCmd.Flags().StringP("database", "d", "", "Path to the database backup (.tar.gz or onedb.xml)")
	AnalyzeCmd.MarkFlagRequired("database")
	AnalyzeCmd.Flags().StringP("customer", "c", "", "Customer name, used in artifact naming")
	AnalyzeCmd.Flags().String("objects", "configs/objects.yaml", "Object catalog file")
	AnalyzeCmd.Flags().String("report-config", "configs/report_config.yaml", "Report configuration file")
	AnalyzeCmd.Flags().StringP("outdir", "o", ".", "Directory for CSV artifacts")
}

func runAnalyze(cmd *cobra.Command, database, customer, objects, reportCfg, outdir string) error {
	log := logger.Named("analyze")

	catalog, err := dbcfg.Load(objects)
	if err != nil {
		return err
	}
	rc, err := dbcfg.LoadReportConfig(reportCfg)
	if err != nil {
		return err
	}
	a, err := analyzer.New(catalog, logger.Named("analyzer"))
	if err != nil {
		return err
	}

	tmpDir, err := os.MkdirTemp("", "gapscan-*")
	if err != nil {
		return errors.Wrap(err, "creating scratch directory")
	}
	defer os.RemoveAll(tmpDir)

	dbPath, err := onedb.ExtractBackup(database, tmpDir)
	if err != nil {
		return err
	}

	// The count only sizes the progress bar; a failed pre-pass must not
	// abort an analysis the reader can still run.
	total, err := countObjects(dbPath)
	if err != nil {
		log.Warnw("object count pre-pass failed, progress will be unsized", "error", err)
		total = 0
	}
	log.Infow("database opened", "path", database, "objects", total)

	f, err := os.Open(dbPath)
	if err != nil {
		return errors.Wrapf(err, "opening database %q", dbPath)
	}
	defer f.Close()

	var bar *pterm.ProgressbarPrinter
	if total > 0 {
		bar, _ = pterm.DefaultProgressbar.
			WithTotal(total).
			WithTitle("Analyzing").
			Start()
	}
	state, err := a.Run(cmd.Context(), onedb.NewReader(f), func(seq int) {
		if bar != nil {
			bar.Increment()
		}
	})
	if bar != nil {
		if _, stopErr := bar.Stop(); stopErr != nil {
			log.Debugw("stopping progress bar", "error", stopErr)
		}
	}
	if err != nil {
		return err
	}

	tables := report.Build(state, catalog, rc)
	report.RenderConsole(tables)

	runDir := filepath.Join(outdir, runName(customer, time.Now()))
	paths, err := report.WriteCSV(tables, runDir)
	if err != nil {
		return err
	}

	pterm.Success.Printf("%s; %d CSV artifacts in %s\n", report.Summarize(state), len(paths), runDir)
	return nil
}

// countObjects is a cosmetic pre-pass sizing the progress bar.
func countObjects(dbPath string) (int, error) {
	f, err := os.Open(dbPath)
	if err != nil {
		return 0, errors.Wrapf(err, "opening database %q", dbPath)
	}
	defer f.Close()
	return onedb.CountRecords(f)
}

func runName(customer string, now time.Time) string {
	stamp := now.Format("20060102-150405")
	if customer == "" {
		return stamp
	}
	return customer + "-" + stamp
}
