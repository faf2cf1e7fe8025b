package config

import (
	"os"
	"strings"

	"codeberg.org/voss/hydractl/internal/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultInterval   = 3
	DefaultDegreeMin  = 30.0
	DefaultDegreeMax  = 46.0
	DefaultGovernor   = "powersave"
	DefaultSensorChip = "k10temp"
	DefaultListenAddr = "127.0.0.1"

	DefaultRootPort    = 9096
	DefaultUserPort    = 9095
	DefaultGatewayPort = 9090
	DefaultBridgePort  = 9091

	minPort = 1025
	maxPort = 65534
)

// DefaultSensorLabels are the host sensor labels accepted as CPU die
// temperature, in preference order.
var DefaultSensorLabels = []string{"tdie", "tctl", "tccd1", "tccd2"}

type Config struct {
	Interval     int      `mapstructure:"interval"`
	DegreeMin    float64  `mapstructure:"degree_min"`
	DegreeMax    float64  `mapstructure:"degree_max"`
	HueFix       bool     `mapstructure:"hue_fix"`
	Governor     string   `mapstructure:"governor"`
	SensorChip   string   `mapstructure:"sensor_chip"`
	SensorLabels []string `mapstructure:"sensor_labels"`
	ListenAddr   string   `mapstructure:"listen_addr"`
	RootPort     int      `mapstructure:"root_port"`
	UserPort     int      `mapstructure:"user_port"`
	GatewayPort  int      `mapstructure:"gateway_port"`
	BridgePort   int      `mapstructure:"bridge_port"`
	Monitor      bool     `mapstructure:"monitor"`
	Debug        bool     `mapstructure:"debug"`
	Verbose      bool     `mapstructure:"verbose"`
}

// Load reads configuration from /etc/hydractl.conf (or the file named by
// HYDRACTL_CONFIG), environment variables prefixed HYDRACTL_, and command-line
// flags, in increasing order of precedence.
func Load() (*Config, error) {
	errFactory := errors.New()

	v := viper.New()
	v.SetDefault("interval", DefaultInterval)
	v.SetDefault("degree_min", DefaultDegreeMin)
	v.SetDefault("degree_max", DefaultDegreeMax)
	v.SetDefault("hue_fix", false)
	v.SetDefault("governor", DefaultGovernor)
	v.SetDefault("sensor_chip", DefaultSensorChip)
	v.SetDefault("sensor_labels", DefaultSensorLabels)
	v.SetDefault("listen_addr", DefaultListenAddr)
	v.SetDefault("root_port", DefaultRootPort)
	v.SetDefault("user_port", DefaultUserPort)
	v.SetDefault("gateway_port", DefaultGatewayPort)
	v.SetDefault("bridge_port", DefaultBridgePort)
	v.SetDefault("monitor", false)
	v.SetDefault("debug", false)
	v.SetDefault("verbose", false)

	flags := pflag.NewFlagSet("hydractl", pflag.ContinueOnError)
	// Unknown flags (e.g. the test runner's) are not ours to reject
	flags.ParseErrorsWhitelist.UnknownFlags = true
	flags.Int("interval", DefaultInterval, "Seconds between control-loop ticks")
	flags.Float64("degree-min", DefaultDegreeMin, "Coolest temperature of the lighting gradient")
	flags.Float64("degree-max", DefaultDegreeMax, "Hottest temperature of the lighting gradient")
	flags.Bool("hue-fix", false, "Apply the AORUS X470 hue correction table")
	flags.String("governor", DefaultGovernor, "CPU frequency-scaling governor to apply")
	flags.Bool("monitor", false, "Only monitor, do not actuate")
	flags.Bool("debug", false, "Enable debugging mode")
	flags.Bool("verbose", false, "Enable verbose logging")
	if err := flags.Parse(os.Args[1:]); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	v.SetConfigName("hydractl.conf")
	v.SetConfigType("toml")
	if path := os.Getenv("HYDRACTL_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("/etc")
	}
	v.SetEnvPrefix("HYDRACTL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	// Flags override file and environment values
	flags.Visit(func(f *pflag.Flag) {
		v.Set(strings.ReplaceAll(f.Name, "-", "_"), f.Value.String())
	})

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	// Set log level based on config
	if config.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else if config.Verbose {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}

	return config, nil
}

// validate rejects values that cannot be clamped into a working state and
// normalizes the ones that can.
func (c *Config) validate() error {
	errFactory := errors.New()

	if c.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Interval)
	}

	// Out-of-range temperatures clamp rather than fail
	c.DegreeMin = clampDegree(c.DegreeMin)
	c.DegreeMax = clampDegree(c.DegreeMax)
	if c.DegreeMin >= c.DegreeMax {
		c.DegreeMin = DefaultDegreeMin
		c.DegreeMax = DefaultDegreeMax
	}

	c.RootPort = normalizePort(c.RootPort, DefaultRootPort)
	c.UserPort = normalizePort(c.UserPort, DefaultUserPort)
	c.GatewayPort = normalizePort(c.GatewayPort, DefaultGatewayPort)
	c.BridgePort = normalizePort(c.BridgePort, DefaultBridgePort)

	if c.Governor == "" {
		c.Governor = DefaultGovernor
	}
	if c.SensorChip == "" {
		c.SensorChip = DefaultSensorChip
	}
	if len(c.SensorLabels) == 0 {
		c.SensorLabels = DefaultSensorLabels
	}
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}

	return nil
}

func clampDegree(degree float64) float64 {
	if degree < 0 {
		return 0
	}
	if degree > 100 {
		return 100
	}

	return degree
}

func normalizePort(port, fallback int) int {
	if port < minPort || port > maxPort {
		return fallback
	}

	return port
}
