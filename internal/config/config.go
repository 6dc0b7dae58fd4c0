package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/ehr/nutrition/internal/domain/nutrition"
)

type Config struct {
	Port                  string        `mapstructure:"PORT"`
	Env                   string        `mapstructure:"ENV"`
	LogLevel              string        `mapstructure:"LOG_LEVEL"`
	DatabaseURL           string        `mapstructure:"DATABASE_URL"`
	DBMaxConns            int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns            int32         `mapstructure:"DB_MIN_CONNS"`
	CORSOrigins           []string      `mapstructure:"CORS_ORIGINS"`
	BodyLimit             string        `mapstructure:"BODY_LIMIT"`
	RequestTimeout        time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	RateLimitRPS          float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst        int           `mapstructure:"RATE_LIMIT_BURST"`
	CatalogReloadInterval time.Duration `mapstructure:"CATALOG_RELOAD_INTERVAL"`
	HSTSMaxAge            int           `mapstructure:"HSTS_MAX_AGE"`

	NursingHourlyRate           string  `mapstructure:"NURSING_HOURLY_RATE"`
	IndirectLaborCost           string  `mapstructure:"INDIRECT_LABOR_COST"`
	NursingSecondsClosedPump    float64 `mapstructure:"NURSING_SECONDS_CLOSED_PUMP"`
	NursingSecondsClosedGravity float64 `mapstructure:"NURSING_SECONDS_CLOSED_GRAVITY"`
	NursingSecondsOpenPump      float64 `mapstructure:"NURSING_SECONDS_OPEN_PUMP"`
	NursingSecondsOpenGravity   float64 `mapstructure:"NURSING_SECONDS_OPEN_GRAVITY"`
	NursingSecondsBolus         float64 `mapstructure:"NURSING_SECONDS_BOLUS"`

	MaxPumpRateMlH           float64 `mapstructure:"MAX_PUMP_RATE_ML_H"`
	MaxInfusionHours         float64 `mapstructure:"MAX_INFUSION_HOURS"`
	MaxGlucoseInfusionRate   float64 `mapstructure:"MAX_GLUCOSE_INFUSION_RATE"`
	MaxGravityDropsPerMin    float64 `mapstructure:"MAX_GRAVITY_DROPS_PER_MIN"`
	DefaultEquipmentVolumeMl float64 `mapstructure:"DEFAULT_EQUIPMENT_VOLUME_ML"`
}

var keys = []string{
	"PORT", "ENV", "LOG_LEVEL", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS", "CORS_ORIGINS",
	"BODY_LIMIT", "REQUEST_TIMEOUT", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "CATALOG_RELOAD_INTERVAL", "HSTS_MAX_AGE",
	"NURSING_HOURLY_RATE", "INDIRECT_LABOR_COST",
	"NURSING_SECONDS_CLOSED_PUMP", "NURSING_SECONDS_CLOSED_GRAVITY",
	"NURSING_SECONDS_OPEN_PUMP", "NURSING_SECONDS_OPEN_GRAVITY", "NURSING_SECONDS_BOLUS",
	"MAX_PUMP_RATE_ML_H", "MAX_INFUSION_HOURS", "MAX_GLUCOSE_INFUSION_RATE", "MAX_GRAVITY_DROPS_PER_MIN",
	"DEFAULT_EQUIPMENT_VOLUME_ML",
}

// Load reads the environment and an optional .env file. It does not require a
// database; commands that need one call RequireDatabase.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("BODY_LIMIT", "1M")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("RATE_LIMIT_RPS", 50)
	v.SetDefault("RATE_LIMIT_BURST", 100)
	v.SetDefault("CATALOG_RELOAD_INTERVAL", "5m")
	v.SetDefault("HSTS_MAX_AGE", 0)

	v.SetDefault("NURSING_HOURLY_RATE", "45.00")
	v.SetDefault("INDIRECT_LABOR_COST", "12.50")
	v.SetDefault("NURSING_SECONDS_CLOSED_PUMP", 300)
	v.SetDefault("NURSING_SECONDS_CLOSED_GRAVITY", 420)
	v.SetDefault("NURSING_SECONDS_OPEN_PUMP", 480)
	v.SetDefault("NURSING_SECONDS_OPEN_GRAVITY", 600)
	v.SetDefault("NURSING_SECONDS_BOLUS", 360)

	v.SetDefault("MAX_PUMP_RATE_ML_H", 300)
	v.SetDefault("MAX_INFUSION_HOURS", 24)
	v.SetDefault("MAX_GLUCOSE_INFUSION_RATE", 5)
	v.SetDefault("MAX_GRAVITY_DROPS_PER_MIN", 100)
	v.SetDefault("DEFAULT_EQUIPMENT_VOLUME_ML", 0)

	for _, k := range keys {
		v.BindEnv(k)
	}

	// .env is optional
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if len(cfg.CORSOrigins) == 1 && strings.Contains(cfg.CORSOrigins[0], ",") {
		cfg.CORSOrigins = strings.Split(cfg.CORSOrigins[0], ",")
	}
	for i := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(cfg.CORSOrigins[i])
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// RequireDatabase fails when DATABASE_URL is not configured.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	return nil
}

// Validate rejects negative costs and times and a non-positive pump limit.
func (c *Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.LogLevel)
	}
	for name, s := range map[string]string{
		"NURSING_HOURLY_RATE": c.NursingHourlyRate,
		"INDIRECT_LABOR_COST": c.IndirectLaborCost,
	} {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return fmt.Errorf("%s is not a number: %w", name, err)
		}
		if d.IsNegative() {
			return fmt.Errorf("%s must not be negative, got %s", name, s)
		}
	}
	for name, v := range map[string]float64{
		"NURSING_SECONDS_CLOSED_PUMP":    c.NursingSecondsClosedPump,
		"NURSING_SECONDS_CLOSED_GRAVITY": c.NursingSecondsClosedGravity,
		"NURSING_SECONDS_OPEN_PUMP":      c.NursingSecondsOpenPump,
		"NURSING_SECONDS_OPEN_GRAVITY":   c.NursingSecondsOpenGravity,
		"NURSING_SECONDS_BOLUS":          c.NursingSecondsBolus,
		"DEFAULT_EQUIPMENT_VOLUME_ML":    c.DefaultEquipmentVolumeMl,
		"MAX_INFUSION_HOURS":             c.MaxInfusionHours,
		"MAX_GLUCOSE_INFUSION_RATE":      c.MaxGlucoseInfusionRate,
		"MAX_GRAVITY_DROPS_PER_MIN":      c.MaxGravityDropsPerMin,
	} {
		if v < 0 {
			return fmt.Errorf("%s must not be negative, got %v", name, v)
		}
	}
	if c.MaxPumpRateMlH <= 0 {
		return fmt.Errorf("MAX_PUMP_RATE_ML_H must be positive, got %v", c.MaxPumpRateMlH)
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if c.CatalogReloadInterval < 0 {
		return fmt.Errorf("CATALOG_RELOAD_INTERVAL must not be negative")
	}
	return nil
}

// Engine builds the configuration handed to every computation. Call Validate
// first; unparseable amounts fall back to zero here.
func (c *Config) Engine() nutrition.Config {
	hourly, _ := decimal.NewFromString(c.NursingHourlyRate)
	indirect, _ := decimal.NewFromString(c.IndirectLaborCost)
	return nutrition.Config{
		Costs: nutrition.CostConfig{
			NursingSeconds: map[nutrition.NursingKey]float64{
				{System: nutrition.SystemClosed, Mode: nutrition.ModePump}:    c.NursingSecondsClosedPump,
				{System: nutrition.SystemClosed, Mode: nutrition.ModeGravity}: c.NursingSecondsClosedGravity,
				{System: nutrition.SystemOpen, Mode: nutrition.ModePump}:      c.NursingSecondsOpenPump,
				{System: nutrition.SystemOpen, Mode: nutrition.ModeGravity}:   c.NursingSecondsOpenGravity,
			},
			BolusSeconds:      c.NursingSecondsBolus,
			HourlyRate:        hourly,
			IndirectLaborCost: indirect,
		},
		Limits: nutrition.Limits{
			MaxPumpRateMlPerHour:     c.MaxPumpRateMlH,
			MaxInfusionHours:         c.MaxInfusionHours,
			MaxGravityDropsPerMinute: c.MaxGravityDropsPerMin,
			MaxGlucoseInfusionRate:   c.MaxGlucoseInfusionRate,
		},
		DefaultEquipmentVolumeMl: c.DefaultEquipmentVolumeMl,
	}
}

// Logger builds the process logger: console output in development, JSON otherwise.
func (c *Config) Logger() zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	var logger zerolog.Logger
	if c.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
	return logger.Level(level)
}
