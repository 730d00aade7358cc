package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"yashubustudio/boqmatch/config"
)

func newInitRulesCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init-rules [PATH]",
		Short: "Write the built-in keyword rules to a YAML file for editing",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "rules.yaml"
			if len(args) == 1 {
				path = args[0]
			} else if cfg.RulesFile != "" {
				path = cfg.RulesFile
			}
			return runInitRules(path, force, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func runInitRules(path string, force bool, w io.Writer) error {
	if err := config.WriteDefaultRules(path, force); err != nil {
		if errors.Is(err, config.ErrExists) {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		return err
	}
	fmt.Fprintf(w, "default rules written to %s\n", path)
	return nil
}
