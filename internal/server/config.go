package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/guandan/internal/bot"
)

// Config is the complete server configuration.
type Config struct {
	Server ServerSettings
	Game   GameSettings
}

// ServerSettings contains transport-level configuration.
type ServerSettings struct {
	Addr     string `hcl:"addr,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// GameSettings contains the room pacing knobs and the strategy bots play.
type GameSettings struct {
	BotDelayMs  int    `hcl:"bot_delay_ms,optional"`
	DealGraceMs int    `hcl:"deal_grace_ms,optional"`
	BotStrategy string `hcl:"bot_strategy,optional"`
}

// fileConfig is the HCL schema. Blocks are pointers so a config file may
// carry either block alone.
type fileConfig struct {
	Server *ServerSettings `hcl:"server,block"`
	Game   *GameSettings   `hcl:"game,block"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Server: ServerSettings{
			Addr:     ":3000",
			LogLevel: "info",
		},
		Game: GameSettings{
			BotDelayMs:  1000,
			DealGraceMs: 3000,
			BotStrategy: "low",
		},
	}
}

// LoadConfig loads configuration from an HCL file. A missing file is not
// an error; the defaults apply, as they do for any field the file leaves
// unset.
func LoadConfig(filename string) (Config, error) {
	if filename == "" {
		return DefaultConfig(), nil
	}
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to parse %s: %s", filename, diags.Error())
	}

	var fc fileConfig
	if diags := gohcl.DecodeBody(file.Body, nil, &fc); diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to decode %s: %s", filename, diags.Error())
	}

	config := Config{}
	if fc.Server != nil {
		config.Server = *fc.Server
	}
	if fc.Game != nil {
		config.Game = *fc.Game
	}

	// Apply defaults for missing values
	def := DefaultConfig()
	if config.Server.Addr == "" {
		config.Server.Addr = def.Server.Addr
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = def.Server.LogLevel
	}
	if config.Game.BotDelayMs == 0 {
		config.Game.BotDelayMs = def.Game.BotDelayMs
	}
	if config.Game.DealGraceMs == 0 {
		config.Game.DealGraceMs = def.Game.DealGraceMs
	}
	if config.Game.BotStrategy == "" {
		config.Game.BotStrategy = def.Game.BotStrategy
	}

	return config, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Game.BotDelayMs < 1000 {
		return fmt.Errorf("bot_delay_ms must be at least 1000, got %d", c.Game.BotDelayMs)
	}
	if c.Game.DealGraceMs < 0 {
		return fmt.Errorf("deal_grace_ms must not be negative, got %d", c.Game.DealGraceMs)
	}
	if _, err := bot.Resolve(c.Game.BotStrategy); err != nil {
		return err
	}
	return nil
}

// BotDelay is the pause before a bot seat acts.
func (g GameSettings) BotDelay() time.Duration {
	return time.Duration(g.BotDelayMs) * time.Millisecond
}

// DealGrace is the pause between a deal ending and the next one starting.
func (g GameSettings) DealGrace() time.Duration {
	return time.Duration(g.DealGraceMs) * time.Millisecond
}
