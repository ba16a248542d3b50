package main

import (
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"legisbase/internal/backend"
	"legisbase/internal/cli"
	"legisbase/internal/config"
	applog "legisbase/internal/log"
	"legisbase/internal/mcpserver"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.LoadEnvFile()

	// stdout carries the MCP protocol, so every log line goes to stderr.
	boot := cli.SetupStderrLogger(applog.ComponentMCP, "info", "text")
	cfg := cli.LoadAndValidateConfig(boot.Logger, (*config.Config).Validate)
	logger := cli.SetupStderrLogger(applog.ComponentMCP, cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg, logger); err != nil {
		cli.Fatal(logger.Logger, "MCP server failed", err)
	}
}

func run(cfg *config.Config, logger *applog.Logger) error {
	ctx, stop := cli.SignalContext(logger.Logger)
	defer stop()

	bc, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	cat, err := backend.OpenCatalog(ctx, backend.NewFactory(logger.Logger), bc, cfg.PublishesLookups())
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer cat.Close()

	return mcpserver.New(cat.Service, version, logger).Run(ctx, &mcp.StdioTransport{})
}
