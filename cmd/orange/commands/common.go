package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"github.com/orangewallet/orange/internal/config"
	"github.com/orangewallet/orange/internal/engine"
)

// Global context passed to subcommands if we need to share global state later.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"config.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Balance                  BalanceCmd                  `cmd:"" help:"Get wallet balance"`
	Receive                  ReceiveCmd                  `cmd:"" help:"Generate single-use BIP21 receive URI"`
	ReceiveOffer             ReceiveOfferCmd             `cmd:"" name:"receive-offer" help:"Get reusable BOLT12 offer"`
	Send                     SendCmd                     `cmd:"" help:"Send a payment"`
	Parse                    ParseCmd                    `cmd:"" help:"Parse a payment string"`
	Transactions             TransactionsCmd             `cmd:"" help:"List transaction history"`
	Channels                 ChannelsCmd                 `cmd:"" help:"List lightning channels"`
	Info                     InfoCmd                     `cmd:"" help:"Get wallet/node information"`
	EstimateFee              EstimateFeeCmd              `cmd:"" name:"estimate-fee" help:"Estimate fee for a payment"`
	LightningAddress         LightningAddressCmd         `cmd:"" name:"lightning-address" help:"Get the wallet's lightning address"`
	RegisterLightningAddress RegisterLightningAddressCmd `cmd:"" name:"register-lightning-address" help:"Register a lightning address for this wallet"`
	Init                     InitCmd                     `cmd:"" help:"Initialize a new configuration file"`
	Daemon                   DaemonCmd                   `cmd:"" help:"Run as a long-lived daemon, listening for wallet events"`
	GetEvent                 GetEventCmd                 `cmd:"" name:"get-event" help:"Get the next pending event from the wallet event queue"`
	EventHandled             EventHandledCmd             `cmd:"" name:"event-handled" help:"Mark the current event as handled, removing it from the queue"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// loadConfig loads the config file named by the root --config flag.
func loadConfig(root *CLI) (*config.Config, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// engineClient builds the wallet engine API client from config.
func engineClient(root *CLI) (*engine.Client, *config.Config, error) {
	cfg, err := loadConfig(root)
	if err != nil {
		return nil, nil, err
	}
	return engine.NewClient(cfg.Engine.URL, cfg.Engine.Token), cfg, nil
}

// queryContext bounds one-shot engine queries.
func queryContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// initConfig writes an example configuration file.
func initConfig(path string, force bool) error {
	if err := config.Init(path, force); err != nil {
		return err
	}
	fmt.Printf("Created configuration file: %s\n", path)
	return nil
}

// printJSON pretty-prints a command result to stdout.
func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
