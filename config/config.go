// config/config.go
package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Data       DataConfig       `mapstructure:"data"`
	Policy     PolicyConfig     `mapstructure:"policy"`
	Settlement SettlementConfig `mapstructure:"settlement"`
	Identity   IdentityConfig   `mapstructure:"identity"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Backup     BackupConfig     `mapstructure:"backup"`
}

type ServerConfig struct {
	Port           string `mapstructure:"port"`
	AllowedOrigins string `mapstructure:"allowed_origins"`
}

type DataConfig struct {
	BountiesFile string `mapstructure:"bounties_file"`
	TribesFile   string `mapstructure:"tribes_file"`
}

// PolicyConfig carries the tunable lifecycle thresholds. It is injected into
// the services so nothing reads process-wide policy constants.
type PolicyConfig struct {
	MaxTribeSize      int            `mapstructure:"max_tribe_size"`
	MaxActiveBounties int            `mapstructure:"max_active_bounties"`
	MinTeamSize       map[string]int `mapstructure:"min_team_size"`
	RequiredReviewers map[string]int `mapstructure:"required_reviewers"`
}

// MinMembers returns the minimum team size for a bounty size tier.
func (p PolicyConfig) MinMembers(size string) int {
	if n, ok := p.MinTeamSize[size]; ok {
		return n
	}
	return 1
}

// Reviewers returns the review quorum for a bounty size tier.
func (p PolicyConfig) Reviewers(size string) int {
	if n, ok := p.RequiredReviewers[size]; ok {
		return n
	}
	return 1
}

// SettlementConfig points at the external settlement backend. An empty URL
// disables settlement: rewards are still split and recorded, just not transferred.
type SettlementConfig struct {
	URL     string `mapstructure:"url"`
	Token   string `mapstructure:"token"`
	Network string `mapstructure:"network"`
}

// IdentityConfig points at the external identity service. An empty URL means
// open mode: every wallet passes the gate.
type IdentityConfig struct {
	URL          string `mapstructure:"url"`
	Token        string `mapstructure:"token"`
	SyncInterval int    `mapstructure:"sync_interval"` // seconds
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type BackupConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Interval int    `mapstructure:"interval"` // minutes
	Prefix   string `mapstructure:"prefix"`
}

// DefaultPolicy is the policy shipped when no config overrides it.
func DefaultPolicy() PolicyConfig {
	return PolicyConfig{
		MaxTribeSize:      12,
		MaxActiveBounties: 3,
		MinTeamSize:       map[string]int{"small": 1, "medium": 3, "large": 3},
		RequiredReviewers: map[string]int{"small": 1, "medium": 2, "large": 3},
	}
}

func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetDefault("server.port", "5300")
	viper.SetDefault("server.allowed_origins", "http://localhost:3000")
	viper.SetDefault("data.bounties_file", "data/bounties.json")
	viper.SetDefault("data.tribes_file", "data/tribes.json")

	policy := DefaultPolicy()
	viper.SetDefault("policy.max_tribe_size", policy.MaxTribeSize)
	viper.SetDefault("policy.max_active_bounties", policy.MaxActiveBounties)
	viper.SetDefault("policy.min_team_size", policy.MinTeamSize)
	viper.SetDefault("policy.required_reviewers", policy.RequiredReviewers)

	viper.SetDefault("settlement.network", "devnet")
	viper.SetDefault("identity.sync_interval", 60)
	viper.SetDefault("backup.interval", 60)
	viper.SetDefault("backup.prefix", "snapshots")

	// Environment overrides, e.g. SETTLEMENT_URL, DATABASE_URL.
	viper.AutomaticEnv()
	viper.BindEnv("server.port", "PORT")
	viper.BindEnv("server.allowed_origins", "ALLOWED_ORIGINS")
	viper.BindEnv("settlement.url", "SETTLEMENT_SERVICE_URL")
	viper.BindEnv("settlement.token", "SETTLEMENT_SERVICE_TOKEN")
	viper.BindEnv("settlement.network", "SETTLEMENT_NETWORK")
	viper.BindEnv("identity.url", "IDENTITY_SERVICE_URL")
	viper.BindEnv("identity.token", "IDENTITY_SERVICE_TOKEN")
	viper.BindEnv("database.url", "DATABASE_URL")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("⚠️  No config file found, using defaults and environment: %v", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		log.Fatalf("Unable to decode config into struct: %v", err)
	}
	return &cfg
}
