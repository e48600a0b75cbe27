package commands

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/plantworks/leantwin/am"
)

// ConfigCmd manages the layered leantwin configuration.
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and change leantwin configuration",
	Long: `Display and manage leantwin configuration settings.

Configuration sources (in order of precedence):
1. Environment variables (LEANTWIN_* prefix)
2. Project config (./leantwin.toml or ./config.toml)
3. UI-managed config (~/.leantwin/leantwin_from_ui.toml)
4. User config (~/.leantwin/leantwin.toml)
5. System config (/etc/leantwin/config.toml)
6. Default values

Changes made with "config set" land in the UI-managed file, so they
never clobber a hand-edited config.

Examples:
  leantwin config show                               # Effective configuration
  leantwin config get repository.url                 # One value
  leantwin config set repository http://localhost:7200/repositories/plant
  leantwin config set theme dark`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the effective leantwin configuration from all sources",
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long:  "Get a specific configuration value using dot notation (e.g., repository.url, tracker.workers)",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <setting> <value>",
	Short: "Change a configuration setting",
	Long: `Change a configuration setting in the UI-managed config file.

Settings:
  repository <url>   SPARQL repository URL (also updates the recent list)
  prefix <decl>      Prefix declaration, e.g. 'PREFIX ex: <http://...#>'
  theme <name>       Log theme for the web UI
  workers <n>        Tracker worker count
  storage <dir>      Project storage directory`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configFormat string

func init() {
	configShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml, json")

	ConfigCmd.AddCommand(configShowCmd)
	ConfigCmd.AddCommand(configGetCmd)
	ConfigCmd.AddCommand(configSetCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	switch configFormat {
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config to JSON: %w", err)
		}
		fmt.Println(string(data))

	case "toml":
		data, err := toml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config to TOML: %w", err)
		}
		fmt.Printf("# leantwin configuration\n%s", string(data))

	default:
		return fmt.Errorf("unsupported format: %s (supported: toml, json)", configFormat)
	}

	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	key := args[0]

	v := am.GetViper()
	if !v.IsSet(key) {
		return fmt.Errorf("configuration key %q not found", key)
	}

	fmt.Println(am.Get(key))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	setting, value := args[0], args[1]

	switch setting {
	case "repository":
		if err := am.UpdateRepository(value, ""); err != nil {
			return err
		}
	case "prefix":
		cfg, err := am.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := am.UpdateRepository(cfg.Repository.URL, value); err != nil {
			return err
		}
	case "theme":
		if err := am.UpdateLogTheme(value); err != nil {
			return err
		}
	case "workers":
		workers, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("workers must be a number, got %q", value)
		}
		if err := am.UpdateTrackerWorkers(workers); err != nil {
			return err
		}
	case "storage":
		if err := am.UpdateStorageDir(value); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown setting %q (supported: repository, prefix, theme, workers, storage)", setting)
	}

	fmt.Printf("✓ %s updated\n", setting)
	return nil
}
