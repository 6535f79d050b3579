package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jwtpizza/pizza-e2e/internal/scenario"
)

func newListCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}

			all := map[string]*scenario.Scenario{}
			builtin, err := scenario.Catalog()
			if err != nil {
				return err
			}
			for _, s := range builtin {
				all[s.Name] = s
			}
			local := map[string]bool{}
			if cfg.Scenario.Dir != "" {
				found, err := scenario.LoadDir(cfg.Scenario.Dir)
				if err != nil {
					return err
				}
				for name, s := range found {
					all[name] = s
					local[name] = true
				}
			}

			names := make([]string, 0, len(all))
			for name := range all {
				names = append(names, name)
			}
			sort.Strings(names)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tROUTES\tSOURCE\tDESCRIPTION")
			for _, name := range names {
				source := "builtin"
				if local[name] {
					source = cfg.Scenario.Dir
				}
				s := all[name]
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", s.Name, len(s.Routes), source, s.Description)
			}
			return w.Flush()
		},
	}
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE|DIR...",
		Short: "Check scenario files against the API contract",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var errs []error
			for _, arg := range args {
				info, err := os.Stat(arg)
				if err != nil {
					errs = append(errs, err)
					continue
				}
				if info.IsDir() {
					found, err := scenario.LoadDir(arg)
					if err != nil {
						errs = append(errs, err)
						continue
					}
					for name := range found {
						fmt.Fprintf(cmd.OutOrStdout(), "ok   %s (%s)\n", name, arg)
					}
					continue
				}
				s, err := scenario.LoadFile(arg)
				if err != nil {
					errs = append(errs, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ok   %s (%s)\n", s.Name, filepath.Base(arg))
			}
			if len(errs) > 0 {
				for _, err := range errs {
					fmt.Fprintf(cmd.ErrOrStderr(), "FAIL %v\n", err)
				}
				return errors.Join(errs...)
			}
			return nil
		},
	}
}
