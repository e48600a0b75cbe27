package commands

import (
	"fmt"

	"github.com/plantworks/leantwin/am"
	"github.com/plantworks/leantwin/internal/version"
	"github.com/plantworks/leantwin/logger"
)

// printStartupBanner prints the user-friendly startup message
func printStartupBanner(verbosity int, cfg *am.Config, projectDir string) {
	// ANSI escape codes
	cyan := "\033[36m"
	green := "\033[32m"
	yellow := "\033[33m"
	blue := "\033[34m"
	bold := "\033[1m"
	reset := "\033[0m"

	versionInfo := version.Get()

	fmt.Printf("\n%s%s", cyan, bold)
	fmt.Printf("   ╔══════════════════════════════════════════════╗\n")
	fmt.Printf("   ║                                              ║\n")
	fmt.Printf("   ║   ██      ███████  █████  ███    ██          ║\n")
	fmt.Printf("   ║   ██      ██      ██   ██ ████   ██          ║\n")
	fmt.Printf("   ║   ██      █████   ███████ ██ ██  ██          ║\n")
	fmt.Printf("   ║   ██      ██      ██   ██ ██  ██ ██          ║\n")
	fmt.Printf("   ║   ███████ ███████ ██   ██ ██   ████          ║\n")
	fmt.Printf("   ║                                              ║\n")
	fmt.Printf("   ║   digital twin · graph · tags · datasheets   ║\n")
	fmt.Printf("   ║                                              ║\n")
	fmt.Printf("   ╚══════════════════════════════════════════════╝%s\n\n", reset)

	fmt.Printf("%s%s┌─ leantwin ──────────────────────────────────────────┐%s\n", green, bold, reset)
	fmt.Printf("%s│%s Version:    %s (commit %s)\n", green, reset, versionInfo.Version, versionInfo.Short())
	fmt.Printf("%s│%s Built:      %s\n", green, reset, versionInfo.BuildTime)
	fmt.Printf("%s│%s Verbosity:  %s\n", green, reset, logger.LevelName(verbosity))
	if cfg.Repository.URL != "" {
		fmt.Printf("%s│%s Repository: %s\n", green, reset, cfg.Repository.URL)
	}
	fmt.Printf("%s│%s Project:    %s\n", green, reset, projectDir)
	fmt.Printf("%s└─────────────────────────────────────────────────────┘%s\n", green, reset)

	fmt.Printf("\n%s%s✨ Select nodes in the UI to see live graph updates%s\n", yellow, bold, reset)
	fmt.Printf("%s💡 Press Ctrl+C to stop%s\n\n", blue, reset)
}
