package cmd

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/spatialmodel/nowcast/internal/calendar"
	nowcastconfig "github.com/spatialmodel/nowcast/internal/config"
	"github.com/spatialmodel/nowcast/internal/datasource"
	"github.com/spatialmodel/nowcast/internal/geo"
	"github.com/spatialmodel/nowcast/internal/nowcast"
)

// Version is the nowcast engine version, set at build time via -ldflags.
var Version = "dev"

// configFile specifies the location of the TOML configuration file.
var configFile string

// outputFile specifies where run writes its CSV output; the empty string
// means standard output.
var outputFile string

func init() {
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)

	Root.PersistentFlags().StringVar(&configFile, "config", "", "configuration file location")
	nowcastconfig.AddFlags(Root.PersistentFlags())

	runCmd.Flags().StringVar(&outputFile, "output", "", "output CSV file location (default: standard output)")
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "nowcast",
	Short: "A sensor-fusion nowcasting engine for influenza-like illness.",
	Long: `nowcast fuses noisy partial sensor observations of influenza-like
illness into posterior mean/stdev estimates across a geographic hierarchy.
Use the subcommands below to access the engine.`,
	DisableAutoGenTag: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("nowcast v%s\n", Version)
	},
	DisableAutoGenTag: true,
}

// runCmd produces nowcasts for the epiweeks given as arguments and writes
// them as CSV (spec §6 "on-disk form").
var runCmd = &cobra.Command{
	Use:   "run [epiweeks...]",
	Short: "Produce nowcasts for one or more epiweeks (format yyyyww).",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		weeks, err := parseEpiweeks(args)
		if err != nil {
			return err
		}

		cfg, err := nowcastconfig.Load(configFile, Root.PersistentFlags())
		if err != nil {
			return fmt.Errorf("nowcast: loading configuration: %w", err)
		}

		cat := geo.NewCatalog()
		atoms := cat.Atoms()

		epidata := datasource.NewEpidata(cfg.EpidataBaseURL, cfg.EpidataAPIKey)
		ds := datasource.NewCachingDataSource(epidata, atoms, atoms, cfg.SensorSignals, cfg.FirstDataEpiweek)

		ctx := context.Background()
		for _, w := range weeks {
			if err := ds.Prefetch(ctx, w); err != nil {
				logrus.WithField("epiweek", w).WithError(err).Warn("prefetch failed, falling back to per-cell fetches")
			}
		}

		driver := nowcast.NewDriver(ds, cat, nowcast.Options{
			MinObservations:       cfg.MinObservations,
			ShrinkageVariant:      cfg.ShrinkageVariant,
			ExcludedAtomsOverride: cfg.ExcludedAtomsOverride,
		})

		records, err := driver.BatchNowcast(weeks)
		if err != nil {
			return fmt.Errorf("nowcast: %w", err)
		}

		var w io.Writer = os.Stdout
		if outputFile != "" {
			f, err := os.Create(outputFile)
			if err != nil {
				return fmt.Errorf("nowcast: creating %s: %w", outputFile, err)
			}
			defer f.Close()
			w = f
		}
		return writeRecords(w, records)
	},
	DisableAutoGenTag: true,
}

func parseEpiweeks(args []string) ([]calendar.Epiweek, error) {
	weeks := make([]calendar.Epiweek, len(args))
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("nowcast: invalid epiweek %q: %w", a, err)
		}
		weeks[i] = calendar.Epiweek(n)
	}
	return weeks, nil
}

func writeRecords(w io.Writer, records []nowcast.Record) error {
	out := csv.NewWriter(w)
	defer out.Flush()
	if err := out.Write([]string{"epiweek", "location", "mean", "stdev"}); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.Epiweek.String(),
			r.Location,
			strconv.FormatFloat(r.Mean, 'g', -1, 64),
			strconv.FormatFloat(r.Stdev, 'g', -1, 64),
		}
		if err := out.Write(row); err != nil {
			return err
		}
	}
	return nil
}
