package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/docstyle/internal/check"
	"github.com/dshills/docstyle/internal/lock"
	"github.com/dshills/docstyle/internal/patch"
	"github.com/dshills/docstyle/internal/render"
	"github.com/dshills/docstyle/internal/rule"
	"github.com/dshills/docstyle/internal/validate"
)

type checkFlags struct {
	rules        string
	format       string
	out          string
	inPlace      bool
	report       string
	diff         string
	failOnIssues bool
	isolate      bool
	noAI         bool
}

func newCheckCmd(g *globalFlags) *cobra.Command {
	f := &checkFlags{}
	cmd := &cobra.Command{
		Use:   "check <document>",
		Short: "Validate a local document and optionally write the fixed copy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), g, f, args[0], cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.rules, "rules", "mace", "Built-in catalogue name or rules YAML file")
	flags.StringVar(&f.format, "format", "md", "Output format: md or json")
	flags.StringVar(&f.out, "out", "", "Write the fixed document to this path")
	flags.BoolVar(&f.inPlace, "in-place", false, "Overwrite the input document with the fixed copy")
	flags.StringVar(&f.report, "report", "", "Write the HTML report to this path")
	flags.StringVar(&f.diff, "diff", "", "Write a unified diff of the text changes to this path")
	flags.BoolVar(&f.failOnIssues, "fail-on-issues", false, "Exit 2 when the document fails validation")
	flags.BoolVar(&f.isolate, "isolate-rules", false, "Report a failing rule as an issue instead of aborting")
	flags.BoolVar(&f.noAI, "no-ai", false, "Skip AI rules even when a provider key is configured")
	return cmd
}

type checkOutput struct {
	File        string          `json:"file"`
	Status      string          `json:"status"`
	IssuesFound int             `json:"issuesFound"`
	IssuesFixed int             `json:"issuesFixed"`
	Issues      []check.Finding `json:"issues"`
	Fixes       []check.Finding `json:"fixes"`
	FixedPath   string          `json:"fixedPath,omitempty"`
	ReportPath  string          `json:"reportPath,omitempty"`
	DiffPath    string          `json:"diffPath,omitempty"`
}

func runCheck(ctx context.Context, g *globalFlags, f *checkFlags, docPath string, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if f.format != "md" && f.format != "json" {
		return exitError(exitInput, "unknown format: %s", f.format)
	}
	if f.inPlace && f.out != "" {
		return exitError(exitInput, "--out and --in-place are mutually exclusive")
	}

	log, err := newLogger(g.logLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	cfg, err := loadConfig(g.configPath)
	if err != nil {
		return err
	}
	if err := cfg.ValidateAI(); err != nil {
		return exitError(exitInput, "%v", err)
	}
	if f.noAI {
		off := false
		cfg.AI.Enabled = &off
	}

	dt, err := validate.DocTypeFor(docPath)
	if err != nil {
		return exitError(exitInput, "%v", err)
	}
	cat, err := rule.Load(f.rules)
	if err != nil {
		return exitError(exitInput, "failed to load rules: %v", err)
	}
	if errs := rule.Validate(cat.Rules); len(errs) > 0 {
		return exitError(exitInput, "rules %s are invalid: %s", cat.Name, joinErrs(errs))
	}

	v, err := newValidator(cfg, log, validatorOpts{isolate: f.isolate})
	if err != nil {
		return err
	}

	target := f.out
	if f.inPlace {
		target = docPath
	}

	var res *validate.Result
	diffWritten := false
	run := func() error {
		data, err := os.ReadFile(docPath)
		if err != nil {
			return exitError(exitInput, "failed to read document: %v", err)
		}
		res, err = v.Validate(ctx, data, cat.Rules, dt)
		if err != nil {
			return fail(err, "validation failed")
		}
		if f.diff != "" {
			if diffWritten, err = writeDiff(v, dt, filepath.Base(docPath), data, res.Document, f.diff); err != nil {
				return err
			}
		}
		if target != "" && res.Fixed() {
			if err := writeAtomic(target, res.Document); err != nil {
				return exitError(exitInput, "failed to write fixed document: %v", err)
			}
			log.Info("fixed document written", zap.String("path", target))
		}
		return nil
	}
	if f.inPlace {
		err = lock.Do(ctx, docPath, run)
	} else {
		err = run()
	}
	if err != nil {
		return err
	}

	name := filepath.Base(docPath)
	html, err := render.HTML(name, check.Messages(res.Issues), check.Messages(res.Fixes), time.Now())
	if err != nil {
		return err
	}
	if f.report != "" {
		if err := os.WriteFile(f.report, []byte(html), 0o644); err != nil {
			return exitError(exitInput, "failed to write report: %v", err)
		}
	}

	out := checkOutput{
		File:        name,
		Status:      string(res.Status),
		IssuesFound: len(res.Issues),
		IssuesFixed: len(res.Fixes),
		Issues:      res.Issues,
		Fixes:       res.Fixes,
		ReportPath:  f.report,
	}
	if target != "" && res.Fixed() {
		out.FixedPath = target
	}
	if diffWritten {
		out.DiffPath = f.diff
	}
	if err := writeOutput(stdout, f.format, out, html); err != nil {
		return err
	}

	if f.failOnIssues && res.Status == validate.StatusFailed {
		return exitError(exitIssues, "%s failed validation: %d issues, %d fixed", name, len(res.Issues), len(res.Fixes))
	}
	return nil
}

func writeOutput(w io.Writer, format string, out checkOutput, html string) error {
	switch format {
	case "json":
		if out.Issues == nil {
			out.Issues = []check.Finding{}
		}
		if out.Fixes == nil {
			out.Fixes = []check.Finding{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	default:
		md, err := render.Markdown(html)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\n**Status:** %s\n", md, out.Status)
		return nil
	}
}

// writeDiff records the text changes between the original and fixed bytes.
// It reports false when the text did not change.
func writeDiff(v *validate.Validator, dt rule.DocType, name string, before, after []byte, path string) (bool, error) {
	a, err := v.Load(before, dt)
	if err != nil {
		return false, fail(err, "failed to diff document")
	}
	b, err := v.Load(after, dt)
	if err != nil {
		return false, fail(err, "failed to diff document")
	}
	diff, err := patch.Unified(name, a.Document(), b.Document())
	if err != nil {
		return false, err
	}
	if err := patch.WriteFile(diff, path); err != nil {
		return false, exitError(exitInput, "failed to write diff: %v", err)
	}
	return diff != "", nil
}

// writeAtomic replaces path through a temp file in the same directory. An
// existing file keeps its permission bits; a new one gets 0644.
func writeAtomic(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func joinErrs(errs []rule.ValidationError) string {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}
