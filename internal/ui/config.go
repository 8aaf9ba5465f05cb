package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/indico/internal/config"
	"github.com/javiermolinar/indico/internal/tui/theme"
)

func (a *App) configCmd() *cobra.Command {
	var show bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or edit configuration",
		Long: `Interactive configuration management.

If no config file exists, creates one with default values.
Otherwise, displays current config and allows editing.

Example:
  indico config
  indico config --show`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := a.configPath
			if path == "" {
				path = config.DefaultConfigPath()
			}
			if show {
				fmt.Fprintf(cmd.OutOrStdout(), "Config file: %s\n\n", path)
				printConfig(cmd.OutOrStdout(), a.config)
				return nil
			}
			return runConfigInteractive(path, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&show, "show", false, "Print the effective configuration and exit")
	return cmd
}

func runConfigInteractive(configPath string, in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, "Config file: %s\n\n", configPath)

	// Load existing config or create defaults
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Check if file exists
	_, fileErr := os.Stat(configPath)
	if os.IsNotExist(fileErr) {
		fmt.Fprintln(out, "No config file found. Creating with default values...")
		if err := cfg.SaveTo(configPath); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintf(out, "Created %s\n\n", configPath)
	}

	printConfig(out, cfg)

	reader := bufio.NewReader(in)
	if !promptYesNo(reader, out, "\nWould you like to edit the configuration?") {
		return nil
	}

	envs := cfg.EnvironmentNames()
	cfg.Indico.Environment = promptChoice(reader, out, "Environment", cfg.Indico.Environment, envs)
	cfg.Indico.BaseURL = promptValue(reader, out, "Base URL override (empty to use the environment)", cfg.Indico.BaseURL)
	cfg.Indico.Token = promptSecret(reader, out, "API token", cfg.Indico.Token)
	cfg.Indico.RequestTimeout = promptValue(reader, out, "Request timeout", cfg.Indico.RequestTimeout)
	cfg.Swap.Deadline = promptValue(reader, out, "Swap deadline", cfg.Swap.Deadline)
	cfg.Swap.Journal = promptYesNo(reader, out, "  Record swaps in the journal?")
	cfg.Storage.DBPath = promptValue(reader, out, "Journal database path", cfg.Storage.DBPath)
	cfg.UI.Theme = promptChoice(reader, out, "UI theme", cfg.UI.Theme, theme.Available())
	cfg.UI.Color = promptChoice(reader, out, "Color", cfg.UI.Color, []string{"auto", "always", "never"})

	// Validate before saving
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if err := cfg.SaveTo(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Fprintln(out, "\nConfiguration saved!")
	return nil
}

func printConfig(out io.Writer, cfg *config.Config) {
	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintln(out, "──────────────────────")
	fmt.Fprintln(out, "[indico]")
	fmt.Fprintf(out, "  environment      = %s (%s)\n", cfg.Indico.Environment, cfg.Endpoint())
	if cfg.Indico.BaseURL != "" {
		fmt.Fprintf(out, "  base_url         = %s\n", cfg.Indico.BaseURL)
	}
	fmt.Fprintf(out, "  token            = %s\n", maskToken(cfg.Indico.Token))
	fmt.Fprintf(out, "  request_timeout  = %s\n", cfg.Indico.RequestTimeout)
	for _, name := range cfg.EnvironmentNames() {
		fmt.Fprintf(out, "  environments.%-4s = %s\n", name, cfg.Indico.Environments[name])
	}
	fmt.Fprintln(out, "\n[swap]")
	fmt.Fprintf(out, "  deadline         = %s\n", cfg.Swap.Deadline)
	fmt.Fprintf(out, "  journal          = %t\n", cfg.Swap.Journal)
	fmt.Fprintln(out, "\n[storage]")
	fmt.Fprintf(out, "  db_path          = %s\n", cfg.Storage.DBPath)
	fmt.Fprintln(out, "\n[ui]")
	fmt.Fprintf(out, "  theme            = %s\n", cfg.UI.Theme)
	fmt.Fprintf(out, "  color            = %s\n", cfg.UI.Color)
}

// maskToken hides all but the last four characters of a token.
func maskToken(token string) string {
	switch {
	case token == "":
		return "(not set)"
	case len(token) <= 4:
		return "****"
	default:
		return "****" + token[len(token)-4:]
	}
}

func promptYesNo(reader *bufio.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

func promptValue(reader *bufio.Reader, out io.Writer, label, current string) string {
	if current == "" {
		fmt.Fprintf(out, "  %s: ", label)
	} else {
		fmt.Fprintf(out, "  %s [%s]: ", label, current)
	}
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return current
	}
	return input
}

func promptSecret(reader *bufio.Reader, out io.Writer, label, current string) string {
	fmt.Fprintf(out, "  %s [%s]: ", label, maskToken(current))
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return current
	}
	return input
}

func promptChoice(reader *bufio.Reader, out io.Writer, label, current string, options []string) string {
	list := strings.Join(options, ", ")
	label = fmt.Sprintf("%s (%s)", label, list)
	for {
		value := strings.ToLower(promptValue(reader, out, label, current))
		if slices.Contains(options, value) {
			return value
		}
		if _, err := reader.Peek(1); err != nil {
			// Input exhausted, keep the current value.
			return current
		}
		fmt.Fprintf(out, "  Invalid value %q. Available: %s\n", value, list)
	}
}
