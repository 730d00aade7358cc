package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"yashubustudio/boqmatch/classify"
	"yashubustudio/boqmatch/config"
)

func newClassifyCmd() *cobra.Command {
	var unit, section string
	cmd := &cobra.Command{
		Use:   "classify DESCRIPTION",
		Short: "Show the measurement intent, subtype and discipline of a description",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			desc := strings.TrimSpace(strings.Join(args, " "))
			if desc == "" && strings.TrimSpace(unit) == "" {
				return errors.New("description or --unit is required")
			}
			return runClassify(desc, unit, section, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&unit, "unit", "u", "", "Declared unit (m2, ml, un, ...)")
	cmd.Flags().StringVar(&section, "section", "", "Section heading the item sits under")
	return cmd
}

func runClassify(desc, unit, section string, w io.Writer) error {
	rules, fromFile, err := config.LoadRules(cfg.RulesFile)
	if err != nil {
		return err
	}
	if fromFile {
		logger.Debug("rules loaded from file")
	}
	cls := classify.NewClassifier(rules)
	intent := cls.Intent(unit, desc)
	sub := cls.Subtype(intent.Kind, desc)
	disc := cls.Discipline(section, desc, nil)

	fmt.Fprintf(w, "intent:     %s (%s, %.2f)\n", intent.Kind, intent.Method, intent.Confidence)
	fmt.Fprintf(w, "reason:     %s\n", intent.Reason)
	if intent.Ambiguous {
		fmt.Fprintln(w, "            ambiguous")
	}
	if sub.Name != "" {
		fmt.Fprintf(w, "subtype:    %s (%.2f)\n", sub.Name, sub.Confidence)
		for _, alt := range sub.Alternatives {
			fmt.Fprintf(w, "            alt %s\n", alt.Name)
		}
	}
	fmt.Fprintf(w, "discipline: %s (%s)\n", disc.Discipline, disc.Source)
	return nil
}
