package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jwtpizza/pizza-e2e/internal/config"
	"github.com/jwtpizza/pizza-e2e/internal/version"
)

func newRootCmd() *cobra.Command {
	v := config.New()
	var configFile string

	root := &cobra.Command{
		Use:   "pizzamock",
		Short: "Canned JWT Pizza backend for storefront testing",
		Long: `pizzamock serves a named scenario of canned JWT Pizza API responses.

The same scenarios drive the browser tests, so a storefront dev server
pointed at pizzamock sees exactly what the tests see.`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default ./pizzamock.yaml)")
	root.PersistentFlags().String("scenario-dir", "", "Directory of scenario YAML files checked before the built-in catalog")
	_ = v.BindPFlag("scenario.dir", root.PersistentFlags().Lookup("scenario-dir"))

	load := func() (*config.Config, error) {
		return config.Load(v, configFile)
	}

	root.AddCommand(newServeCmd(v, load))
	root.AddCommand(newListCmd(load))
	root.AddCommand(newValidateCmd())
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pizzamock %s\n", root.Version)
		},
	})
	return root
}

type loader func() (*config.Config, error)

func bindFlag(v *viper.Viper, key string, cmd *cobra.Command, name string) {
	_ = v.BindPFlag(key, cmd.Flags().Lookup(name))
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
