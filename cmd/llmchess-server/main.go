// Package main implements the LLM chess move server: a small REST API that
// asks a language model for a legal move in a given position.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	flags := &serveFlags{}

	cmd := &cobra.Command{
		Use:          "llmchess-server",
		Short:        "Serve LLM-selected chess moves over HTTP",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, configPath, flags)
		},
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	flags.register(cmd)

	cmd.AddCommand(serveCmd(&configPath), tokenCmd(&configPath))
	return cmd
}

func serveCmd(configPath *string) *cobra.Command {
	flags := &serveFlags{}
	c := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, *configPath, flags)
		},
	}
	flags.register(c)
	return c
}
