package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/lnashier/viper"
	"github.com/spf13/cast"
	"github.com/spf13/pflag"

	"github.com/spatialmodel/nowcast/internal/calendar"
	"github.com/spatialmodel/nowcast/internal/covariance"
)

// Config holds every option recognized at the core/collaborator boundary
// (spec §6), plus the epidata connection settings a CLI collaborator
// needs to construct a datasource.DataSource.
type Config struct {
	MinObservations       int
	ShrinkageVariant      covariance.Variant
	FirstDataEpiweek      calendar.Epiweek
	ExcludedAtomsOverride map[string]bool // nil means "no override"

	EpidataBaseURL string
	EpidataAPIKey  string
	TruthSignal    string
	SensorSignals  []string
}

// option mirrors inmaputil's options table: one entry per recognized
// setting, carrying its flag usage string and default value.
type option struct {
	name, usage string
	defaultVal  interface{}
}

var options = []option{
	{
		name:       "min_observations",
		usage:      "minimum observed training rows a column needs to survive per-week pruning",
		defaultVal: 5,
	},
	{
		name:       "shrinkage_variant",
		usage:      "covariance shrinkage family: 0 (diagonal), 1 (bounded diagonal), 2 (observation-count-weighted)",
		defaultVal: 2,
	},
	{
		name:       "first_data_epiweek",
		usage:      "earliest epiweek (yyyyww) available for training and prefetch",
		defaultVal: 0,
	},
	{
		name:       "excluded_atoms_override",
		usage:      "comma-separated atom ids excluded from the statespace for every test week, overriding the data source's missing_locations",
		defaultVal: []string{},
	},
	{
		name:       "epidata_base_url",
		usage:      "base URL of the epidata HTTP service",
		defaultVal: "https://api.delphi.cmu.edu/epidata",
	},
	{
		name:       "epidata_api_key",
		usage:      "epidata API key",
		defaultVal: "",
	},
	{
		name:       "truth_signal",
		usage:      "name of the ground-truth ILI signal",
		defaultVal: "ilinet",
	},
	{
		name:       "sensor_signals",
		usage:      "comma-separated sensor signal names to fuse",
		defaultVal: []string{},
	},
}

// AddFlags registers every recognized option as a flag on flags, mirroring
// inmaputil.InitializeConfig's per-option flag registration.
func AddFlags(flags *pflag.FlagSet) {
	for _, opt := range options {
		switch v := opt.defaultVal.(type) {
		case string:
			flags.String(opt.name, v, opt.usage)
		case []string:
			flags.StringSlice(opt.name, v, opt.usage)
		case int:
			flags.Int(opt.name, v, opt.usage)
		default:
			panic(fmt.Errorf("config: invalid default value type for option %q: %T", opt.name, v))
		}
	}
}

// Load builds a Config from, in increasing precedence, the recognized
// options' defaults, an optional TOML configFile, NOWCAST_-prefixed
// environment variables, and flags already parsed onto flags.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("NOWCAST")
	v.AutomaticEnv()

	for _, opt := range options {
		v.SetDefault(opt.name, opt.defaultVal)
		if flags != nil {
			if err := v.BindPFlag(opt.name, flags.Lookup(opt.name)); err != nil {
				return nil, fmt.Errorf("config: binding flag %q: %w", opt.name, err)
			}
		}
	}

	if configFile != "" {
		b, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", configFile, err)
		}
		var m map[string]interface{}
		if _, err := toml.Decode(string(b), &m); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", configFile, err)
		}
		if err := v.MergeConfigMap(m); err != nil {
			return nil, fmt.Errorf("config: merging %s: %w", configFile, err)
		}
	}

	variant, err := parseVariant(v.GetInt("shrinkage_variant"))
	if err != nil {
		return nil, err
	}

	excluded, err := parseAtomSet(v.Get("excluded_atoms_override"))
	if err != nil {
		return nil, fmt.Errorf("config: excluded_atoms_override: %w", err)
	}

	sensorSignals, err := cast.ToStringSliceE(v.Get("sensor_signals"))
	if err != nil {
		return nil, fmt.Errorf("config: sensor_signals: %w", err)
	}

	return &Config{
		MinObservations:       v.GetInt("min_observations"),
		ShrinkageVariant:      variant,
		FirstDataEpiweek:      calendar.Epiweek(v.GetInt("first_data_epiweek")),
		ExcludedAtomsOverride: excluded,
		EpidataBaseURL:        v.GetString("epidata_base_url"),
		EpidataAPIKey:         v.GetString("epidata_api_key"),
		TruthSignal:           v.GetString("truth_signal"),
		SensorSignals:         sensorSignals,
	}, nil
}

func parseVariant(n int) (covariance.Variant, error) {
	switch n {
	case 0:
		return covariance.VariantDiagonal, nil
	case 1:
		return covariance.VariantBoundedDiagonal, nil
	case 2:
		return covariance.VariantDenWeighted, nil
	default:
		return 0, fmt.Errorf("config: shrinkage_variant must be 0, 1, or 2, got %d", n)
	}
}

// parseAtomSet accepts the comma-separated-string form a flag or
// environment variable produces, or the native []string form a TOML
// array decodes to, matching the dual-type handling
// inmaputil.GetStringMapString performs for its own list-valued options.
func parseAtomSet(raw interface{}) (map[string]bool, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		return atomSet(strings.Split(v, ",")), nil
	case []string:
		if len(v) == 0 {
			return nil, nil
		}
		return atomSet(v), nil
	default:
		s, err := cast.ToStringSliceE(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid type %T", raw)
		}
		if len(s) == 0 {
			return nil, nil
		}
		return atomSet(s), nil
	}
}

func atomSet(atoms []string) map[string]bool {
	out := make(map[string]bool, len(atoms))
	for _, a := range atoms {
		a = strings.TrimSpace(a)
		if a != "" {
			out[a] = true
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
