package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dshills/docstyle/internal/graph"
	"github.com/dshills/docstyle/internal/rule"
)

func newRulesCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect, lint and publish rule catalogues",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List built-in catalogues",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRulesList(cmd.OutOrStdout())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <catalogue|file.yaml>",
		Short: "Print the rules of a catalogue in priority order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := rule.Load(args[0])
			if err != nil {
				return exitError(exitInput, "failed to load rules: %v", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), rule.Format(c))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "lint <catalogue|file.yaml>",
		Short: "Check a catalogue for invalid rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRulesLint(args[0], cmd.OutOrStdout())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "seed <catalogue|file.yaml>",
		Short: "Create the catalogue's rules in the SharePoint rules list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRulesSeed(cmd.Context(), g, args[0], cmd.OutOrStdout())
		},
	})
	return cmd
}

func runRulesList(w io.Writer) error {
	names, err := rule.List()
	if err != nil {
		return err
	}
	for _, n := range names {
		c, err := rule.LoadBuiltin(n)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%-10s %3d rules  %s\n", n, len(c.Rules), c.Description)
	}
	return nil
}

func runRulesLint(ref string, w io.Writer) error {
	c, err := rule.Load(ref)
	if err != nil {
		return exitError(exitInput, "failed to load rules: %v", err)
	}
	errs := rule.Validate(c.Rules)
	for _, e := range errs {
		fmt.Fprintln(w, e.Error())
	}
	if len(errs) > 0 {
		return exitError(exitInput, "%s: %d invalid rules", c.Name, len(errs))
	}
	fmt.Fprintf(w, "%s: %d rules OK\n", c.Name, len(c.Rules))
	return nil
}

func runRulesSeed(ctx context.Context, g *globalFlags, ref string, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log, err := newLogger(g.logLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	c, err := rule.Load(ref)
	if err != nil {
		return exitError(exitInput, "failed to load rules: %v", err)
	}
	if errs := rule.Validate(c.Rules); len(errs) > 0 {
		return exitError(exitInput, "rules %s are invalid: %s", c.Name, joinErrs(errs))
	}

	cfg, err := loadConfig(g.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return exitError(exitInput, "%v", err)
	}
	gc, err := graph.New(cfg.Graph, graph.WithLogger(log))
	if err != nil {
		return exitError(exitInput, "%v", err)
	}

	n, err := gc.SeedRules(ctx, c.Rules)
	if err != nil {
		return fail(err, "seeded %d of %d rules", n, len(c.Rules))
	}
	fmt.Fprintf(w, "seeded %d rules into %q\n", n, cfg.Graph.RulesList)
	return nil
}
