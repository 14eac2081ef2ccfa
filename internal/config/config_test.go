package config

import (
	"os"
	"testing"

	"github.com/spf13/pflag"

	"github.com/spatialmodel/nowcast/internal/covariance"
)

func TestLoadDefaults(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(flags)
	if err := flags.Parse(nil); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("", flags)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MinObservations != 5 {
		t.Errorf("MinObservations = %d, want 5", cfg.MinObservations)
	}
	if cfg.ShrinkageVariant != covariance.VariantDenWeighted {
		t.Errorf("ShrinkageVariant = %v, want VariantDenWeighted", cfg.ShrinkageVariant)
	}
	if cfg.ExcludedAtomsOverride != nil {
		t.Errorf("ExcludedAtomsOverride = %v, want nil", cfg.ExcludedAtomsOverride)
	}
	if cfg.TruthSignal != "ilinet" {
		t.Errorf("TruthSignal = %q, want ilinet", cfg.TruthSignal)
	}
}

func TestLoadTOMLFile(t *testing.T) {
	f, err := os.CreateTemp("", "nowcast-config-*.toml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(f.Name())
	const contents = `
min_observations = 3
shrinkage_variant = 0
excluded_atoms_override = ["va", "wv"]
epidata_base_url = "https://example.test/epidata"
`
	if _, err := f.WriteString(contents); err != nil {
		t.Fatal(err)
	}
	f.Close()

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(flags)
	if err := flags.Parse(nil); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(f.Name(), flags)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MinObservations != 3 {
		t.Errorf("MinObservations = %d, want 3", cfg.MinObservations)
	}
	if cfg.ShrinkageVariant != covariance.VariantDiagonal {
		t.Errorf("ShrinkageVariant = %v, want VariantDiagonal", cfg.ShrinkageVariant)
	}
	if !cfg.ExcludedAtomsOverride["va"] || !cfg.ExcludedAtomsOverride["wv"] {
		t.Errorf("ExcludedAtomsOverride = %v, want va and wv", cfg.ExcludedAtomsOverride)
	}
	if cfg.EpidataBaseURL != "https://example.test/epidata" {
		t.Errorf("EpidataBaseURL = %q, want override", cfg.EpidataBaseURL)
	}
}

func TestLoadFlagOverridesDefault(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(flags)
	if err := flags.Parse([]string{"--min_observations=9"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("", flags)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MinObservations != 9 {
		t.Errorf("MinObservations = %d, want 9 from flag", cfg.MinObservations)
	}
}

func TestLoadInvalidShrinkageVariant(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(flags)
	if err := flags.Parse([]string{"--shrinkage_variant=7"}); err != nil {
		t.Fatal(err)
	}
	if _, err := Load("", flags); err == nil {
		t.Fatal("want error for out-of-range shrinkage_variant")
	}
}

func TestParseAtomSetCommaString(t *testing.T) {
	got, err := parseAtomSet("va, wv,  ")
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]bool{"va": true, "wv": true}
	if len(got) != len(want) || !got["va"] || !got["wv"] {
		t.Errorf("parseAtomSet = %v, want %v", got, want)
	}
}

func TestParseAtomSetEmpty(t *testing.T) {
	got, err := parseAtomSet("")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("parseAtomSet(\"\") = %v, want nil", got)
	}
}
