package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := newRootCommand()
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "hlextract [url]",
		Short:         "Extract highlight clips from a YouTube video",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args)
		},
	}

	root.Flags().String("config", "", "Config file (default ./hlextract.toml or ~/.config/hlextract/config.toml)")
	root.Flags().String("out", "", "Output directory for clips")
	root.Flags().String("label", "", "Clip filename label")
	root.Flags().BoolP("verbose", "v", false, "Debug logging")

	root.AddCommand(newConfigCommand())
	return root
}

func newConfigCommand() *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a sample configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return configInit(cmd)
		},
	}
	initCmd.Flags().String("path", "", "Destination (default ~/.config/hlextract/config.toml)")
	initCmd.Flags().Bool("force", false, "Overwrite an existing file")

	cfgCmd.AddCommand(initCmd)
	return cfgCmd
}
