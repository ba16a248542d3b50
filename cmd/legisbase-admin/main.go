package main

import (
	"fmt"
	"os"

	"legisbase/internal/admin"
	"legisbase/internal/cli"
	applog "legisbase/internal/log"
)

func main() {
	cli.LoadEnvFile()

	// Command output goes to stdout; logs stay on stderr and quiet by default.
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "warn"
	}
	logger := cli.SetupStderrLogger(applog.ComponentAdmin, level, "text")

	ctx, stop := cli.SignalContext(logger.Logger)
	root := admin.NewRootCommand(admin.Deps{Logger: logger.Logger})
	err := root.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(admin.ExitCode(err))
	}
}
