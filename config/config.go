// Package config holds the configuration of the proposald daemon. Values
// come from command line flags, PROPOSALD_ prefixed environment variables
// or an optional config file, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of the environment variables, e.g.
// PROPOSALD_DATADIR or PROPOSALD_API_PORT.
const EnvPrefix = "PROPOSALD"

// Config is the configuration of the daemon.
type Config struct {
	DataDir string       `mapstructure:"datadir"`
	DBType  string       `mapstructure:"dbtype"`
	Log     LogConfig    `mapstructure:"log"`
	API     APIConfig    `mapstructure:"api"`
	Voting  VotingConfig `mapstructure:"voting"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Output string `mapstructure:"output"`
}

// APIConfig configures the HTTP API.
type APIConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// VotingConfig configures the voting service.
type VotingConfig struct {
	// EnforceDeadline rejects votes after the proposal deadline.
	EnforceDeadline bool `mapstructure:"enforcedeadline"`
	// HashFunction is either sha256 or blake2b.
	HashFunction string `mapstructure:"hashfunction"`
	// PendingSalts bounds the issued salts waiting for a vote.
	PendingSalts int `mapstructure:"pendingsalts"`
}

// Default returns the default configuration.
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Config{
		DataDir: filepath.Join(home, ".proposald"),
		DBType:  "pebble",
		Log: LogConfig{
			Level:  "info",
			Output: "stdout",
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 9090,
		},
		Voting: VotingConfig{
			HashFunction: "sha256",
			PendingSalts: 10000,
		},
	}
}

// Load parses args (without the program name) and the environment into a
// Config.
func Load(args []string) (*Config, error) {
	def := Default()
	fs := flag.NewFlagSet("proposald", flag.ContinueOnError)
	fs.String("datadir", def.DataDir, "directory where the database is stored")
	fs.String("dbtype", def.DBType, "database backend (pebble or leveldb)")
	fs.String("config", "", "optional config file (yaml, json or toml)")
	fs.String("log.level", def.Log.Level, "log level (debug, info, warn, error)")
	fs.String("log.output", def.Log.Output, "log output (stdout, stderr or a file path)")
	fs.String("api.host", def.API.Host, "API listen host")
	fs.Int("api.port", def.API.Port, "API listen port")
	fs.Bool("voting.enforcedeadline", def.Voting.EnforceDeadline, "reject votes after the proposal deadline")
	fs.String("voting.hashfunction", def.Voting.HashFunction, "hash function of commitments and trees (sha256 or blake2b)")
	fs.Int("voting.pendingsalts", def.Voting.PendingSalts, "maximum number of issued salts kept in memory")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("could not bind flags: %w", err)
	}
	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("could not read config file %s: %w", file, err)
		}
	}

	conf := &Config{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("could not decode config: %w", err)
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	switch {
	case c.DataDir == "":
		return fmt.Errorf("datadir cannot be empty")
	case c.DBType != "pebble" && c.DBType != "leveldb":
		return fmt.Errorf("unsupported database type %q", c.DBType)
	case c.API.Port < 0 || c.API.Port > 65535:
		return fmt.Errorf("invalid API port %d", c.API.Port)
	case c.Voting.HashFunction != "sha256" && c.Voting.HashFunction != "blake2b":
		return fmt.Errorf("unsupported hash function %q", c.Voting.HashFunction)
	case c.Voting.PendingSalts <= 0:
		return fmt.Errorf("pending salts must be positive")
	}
	return nil
}
