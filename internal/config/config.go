// Package config loads settings from config.yaml, .env and ZONES_* variables.
package config

import (
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/property-zones/internal/cachestore"
	"github.com/sells-group/property-zones/internal/zone"
)

// Primary provider names.
const (
	PrimaryNominatim = "nominatim"
	PrimaryCensus    = "census"
)

// Config holds the full application configuration.
type Config struct {
	Geocode GeocodeConfig     `yaml:"geocode" mapstructure:"geocode"`
	Cache   cachestore.Config `yaml:"cache" mapstructure:"cache"`
	Zones   ZonesConfig       `yaml:"zones" mapstructure:"zones"`
	Output  OutputConfig      `yaml:"output" mapstructure:"output"`
	Enrich  EnrichConfig      `yaml:"enrich" mapstructure:"enrich"`
	Server  ServerConfig      `yaml:"server" mapstructure:"server"`
	Log     LogConfig         `yaml:"log" mapstructure:"log"`
}

// GeocodeConfig configures the provider tiers.
type GeocodeConfig struct {
	MinDelay      time.Duration `yaml:"min_delay" mapstructure:"min_delay"`
	Country       string        `yaml:"country" mapstructure:"country"`
	Primary       string        `yaml:"primary" mapstructure:"primary"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxAttempts   int           `yaml:"max_attempts" mapstructure:"max_attempts"`
	RetryNegative bool          `yaml:"retry_negative" mapstructure:"retry_negative"`
	NominatimURL  string        `yaml:"nominatim_url" mapstructure:"nominatim_url"`
	CensusURL     string        `yaml:"census_url" mapstructure:"census_url"`
	GoogleURL     string        `yaml:"google_url" mapstructure:"google_url"`
	GoogleAPIKey  string        `yaml:"google_api_key" mapstructure:"google_api_key"`
}

// ZonesConfig describes the metro area and its quadrant split.
type ZonesConfig struct {
	Area        string  `yaml:"area" mapstructure:"area"`
	SouthLatMin float64 `yaml:"south_lat_min" mapstructure:"south_lat_min"`
	NorthLatMax float64 `yaml:"north_lat_max" mapstructure:"north_lat_max"`
	WestLonMin  float64 `yaml:"west_lon_min" mapstructure:"west_lon_min"`
	EastLonMax  float64 `yaml:"east_lon_max" mapstructure:"east_lon_max"`
	LatSplit    float64 `yaml:"lat_split" mapstructure:"lat_split"`
	LonSplit    float64 `yaml:"lon_split" mapstructure:"lon_split"`
}

// Classifier builds the zone classifier described by the config.
func (z ZonesConfig) Classifier() zone.Classifier {
	return zone.Classifier{
		Bounds: zone.Bounds{
			SouthLatMin: z.SouthLatMin,
			NorthLatMax: z.NorthLatMax,
			WestLonMin:  z.WestLonMin,
			EastLonMax:  z.EastLonMax,
		},
		LatSplit: z.LatSplit,
		LonSplit: z.LonSplit,
	}
}

// OutputConfig selects the output directory and optional formats.
type OutputConfig struct {
	Dir       string `yaml:"dir" mapstructure:"dir"`
	XLSX      bool   `yaml:"xlsx" mapstructure:"xlsx"`
	GeoJSON   bool   `yaml:"geojson" mapstructure:"geojson"`
	Shapefile bool   `yaml:"shapefile" mapstructure:"shapefile"`
}

// EnrichConfig points at the optional property reference dataset.
type EnrichConfig struct {
	ReferencePath string `yaml:"reference_path" mapstructure:"reference_path"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Validate checks values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	switch c.Geocode.Primary {
	case PrimaryNominatim, PrimaryCensus:
	default:
		return eris.Errorf("config: geocode.primary must be %q or %q, got %q",
			PrimaryNominatim, PrimaryCensus, c.Geocode.Primary)
	}
	if len(c.Geocode.Country) != 2 {
		return eris.Errorf("config: geocode.country must be a two-letter code, got %q", c.Geocode.Country)
	}
	if c.Geocode.MinDelay < 0 {
		return eris.New("config: geocode.min_delay must not be negative")
	}
	if c.Zones.Area == "" {
		return eris.New("config: zones.area is required")
	}
	if err := c.Zones.Classifier().Validate(); err != nil {
		return eris.Wrap(err, "config: zones")
	}
	return nil
}

// Load reads configuration from .env, config.yaml and the environment, in
// increasing order of precedence for variables already set in the process.
func Load() (*Config, error) {
	// A missing .env is normal.
	_ = godotenv.Load()

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ZONES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("geocode.google_api_key", "ZONES_GEOCODE_GOOGLE_API_KEY", "GOOGLE_MAPS_API_KEY"); err != nil {
		return nil, eris.Wrap(err, "config: bind google api key")
	}

	// Defaults
	v.SetDefault("geocode.min_delay", 1.0)
	v.SetDefault("geocode.country", "US")
	v.SetDefault("geocode.primary", PrimaryNominatim)
	v.SetDefault("geocode.user_agent", "property-zones/1.0")
	v.SetDefault("geocode.timeout", 10)
	v.SetDefault("geocode.max_attempts", 2)
	v.SetDefault("geocode.retry_negative", false)
	v.SetDefault("geocode.nominatim_url", "")
	v.SetDefault("geocode.census_url", "")
	v.SetDefault("geocode.google_url", "")
	v.SetDefault("cache.driver", cachestore.DriverCSV)
	v.SetDefault("cache.path", cachestore.DefaultPath)
	v.SetDefault("cache.table", cachestore.DefaultTable)
	v.SetDefault("cache.database_url", "")
	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.redis_key", cachestore.DefaultRedisKey)
	v.SetDefault("zones.area", "san_antonio")
	v.SetDefault("zones.south_lat_min", zone.DefaultSouthLatMin)
	v.SetDefault("zones.north_lat_max", zone.DefaultNorthLatMax)
	v.SetDefault("zones.west_lon_min", zone.DefaultWestLonMin)
	v.SetDefault("zones.east_lon_max", zone.DefaultEastLonMax)
	v.SetDefault("zones.lat_split", zone.DefaultLatSplit)
	v.SetDefault("zones.lon_split", zone.DefaultLonSplit)
	v.SetDefault("output.dir", "data/outputs")
	v.SetDefault("output.xlsx", false)
	v.SetDefault("output.geojson", false)
	v.SetDefault("output.shapefile", false)
	v.SetDefault("enrich.reference_path", "data/property_reference.csv")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		secondsToDurationHook,
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	cfg.Geocode.Country = strings.ToUpper(cfg.Geocode.Country)
	cfg.Geocode.Primary = strings.ToLower(cfg.Geocode.Primary)

	return &cfg, nil
}

var durationType = reflect.TypeOf(time.Duration(0))

// secondsToDurationHook decodes durations given as plain numbers ("1.5",
// 1.5, 2) as seconds. Strings with a unit ("250ms") go through
// time.ParseDuration.
func secondsToDurationHook(from, to reflect.Type, data any) (any, error) {
	if to != durationType || from == durationType {
		return data, nil
	}
	switch v := data.(type) {
	case string:
		s := strings.TrimSpace(v)
		if secs, err := strconv.ParseFloat(s, 64); err == nil {
			return secondsToDuration(secs), nil
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, eris.Wrapf(err, "config: parse duration %q", v)
		}
		return d, nil
	case float64:
		return secondsToDuration(v), nil
	case float32:
		return secondsToDuration(float64(v)), nil
	case int:
		return secondsToDuration(float64(v)), nil
	case int64:
		return secondsToDuration(float64(v)), nil
	case uint64:
		return secondsToDuration(float64(v)), nil
	}
	return data, nil
}

func secondsToDuration(secs float64) time.Duration {
	return time.Duration(secs * float64(time.Second))
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
