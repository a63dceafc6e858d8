// Package config loads application configuration from file and environment
// and owns global logger initialization.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/facility-atlas/internal/model"
	"github.com/sells-group/facility-atlas/internal/overlap"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Sources  SourcesConfig  `yaml:"sources" mapstructure:"sources"`
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`
	Geocode  GeocodeConfig  `yaml:"geocode" mapstructure:"geocode"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// SourcesConfig points at the raw facility source files.
type SourcesConfig struct {
	Hospitals string `yaml:"hospitals" mapstructure:"hospitals"`
	RHCs      string `yaml:"rhcs" mapstructure:"rhcs"`
	FQHCs     string `yaml:"fqhcs" mapstructure:"fqhcs"`
	Counties  string `yaml:"counties" mapstructure:"counties"`
}

// AnalysisConfig holds the redundancy-analysis tunables. Category costs are
// keyed by category name so they stay expressible in YAML.
type AnalysisConfig struct {
	ServiceRadiusMiles          float64            `yaml:"service_radius_miles" mapstructure:"service_radius_miles"`
	ConsolidationRadiusFraction float64            `yaml:"consolidation_radius_fraction" mapstructure:"consolidation_radius_fraction"`
	SeedNeighborThreshold       int                `yaml:"seed_neighbor_threshold" mapstructure:"seed_neighbor_threshold"`
	MinClusterSize              int                `yaml:"min_cluster_size" mapstructure:"min_cluster_size"`
	RedundantNeighborThreshold  int                `yaml:"redundant_neighbor_threshold" mapstructure:"redundant_neighbor_threshold"`
	TopK                        int                `yaml:"top_k" mapstructure:"top_k"`
	TopCities                   int                `yaml:"top_cities" mapstructure:"top_cities"`
	CategoryCosts               map[string]float64 `yaml:"category_costs" mapstructure:"category_costs"`
	SavingsFraction             float64            `yaml:"savings_fraction" mapstructure:"savings_fraction"`
}

// Overlap converts the YAML-shaped analysis config into the analyzer's
// config struct.
func (a AnalysisConfig) Overlap() overlap.Config {
	costs := make(map[model.Category]float64, len(a.CategoryCosts))
	for name, cost := range a.CategoryCosts {
		costs[model.Category(name)] = cost
	}
	return overlap.Config{
		ServiceRadiusMiles:          a.ServiceRadiusMiles,
		ConsolidationRadiusFraction: a.ConsolidationRadiusFraction,
		SeedNeighborThreshold:       a.SeedNeighborThreshold,
		MinClusterSize:              a.MinClusterSize,
		RedundantNeighborThreshold:  a.RedundantNeighborThreshold,
		TopK:                        a.TopK,
		TopCities:                   a.TopCities,
		CategoryCosts:               costs,
		SavingsFraction:             a.SavingsFraction,
	}
}

// GeocodeConfig configures the coordinate backfill.
type GeocodeConfig struct {
	GoogleAPIKey    string  `yaml:"google_api_key" mapstructure:"google_api_key"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec" mapstructure:"rate_limit_per_sec"`
	BatchSize       int     `yaml:"batch_size" mapstructure:"batch_size"`
}

// OutputConfig configures report and map artifact locations.
type OutputConfig struct {
	Dir        string `yaml:"dir" mapstructure:"dir"`
	ReportFile string `yaml:"report_file" mapstructure:"report_file"`
	MapFile    string `yaml:"map_file" mapstructure:"map_file"`
	GeoJSON    string `yaml:"geojson_file" mapstructure:"geojson_file"`
}

// ServerConfig configures the read-only HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("FACILITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "facility-atlas.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("sources.hospitals", "data/raw/missouri_hospitals.csv")
	v.SetDefault("sources.rhcs", "data/raw/missouri_rhc_enrollments.csv")
	v.SetDefault("sources.fqhcs", "data/external/missouri_fqhcs.csv")
	v.SetDefault("sources.counties", "data/tiger/tl_2024_us_county.shp")
	v.SetDefault("analysis.service_radius_miles", 20.0)
	v.SetDefault("analysis.consolidation_radius_fraction", 0.5)
	v.SetDefault("analysis.seed_neighbor_threshold", 5)
	v.SetDefault("analysis.min_cluster_size", 3)
	v.SetDefault("analysis.redundant_neighbor_threshold", 3)
	v.SetDefault("analysis.top_k", 15)
	v.SetDefault("analysis.top_cities", 10)
	v.SetDefault("analysis.category_costs", map[string]float64{
		string(model.CategoryRHC):  2_000_000,
		string(model.CategoryFQHC): 5_000_000,
	})
	v.SetDefault("analysis.savings_fraction", 0.3)
	v.SetDefault("geocode.rate_limit_per_sec", 5.0)
	v.SetDefault("geocode.batch_size", 500)
	v.SetDefault("output.dir", "outputs")
	v.SetDefault("output.report_file", "redundancy_analysis_results.json")
	v.SetDefault("output.map_file", "missouri_healthcare_coverage.html")
	v.SetDefault("output.geojson_file", "facilities.geojson")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
