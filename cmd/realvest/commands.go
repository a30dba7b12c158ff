package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/bobmcallan/realvest/internal/app"
	"github.com/bobmcallan/realvest/internal/common"
	"github.com/bobmcallan/realvest/internal/export"
	"github.com/bobmcallan/realvest/internal/finance"
	"github.com/bobmcallan/realvest/internal/models"
	"github.com/bobmcallan/realvest/internal/services/portfolio"
)

var commands = []subcommands.Command{
	&simulateCmd{},
	&goalCmd{},
	&matchCmd{},
	&loanCmd{},
	&versionCmd{},
}

// outputFlags are shared by every command that produces a projection.
type outputFlags struct {
	xlsx   string
	csv    string
	chart  string
	save   string
	months bool
}

func (o *outputFlags) register(f *flag.FlagSet) {
	f.StringVar(&o.xlsx, "xlsx", "", "write the timeline to an Excel workbook")
	f.StringVar(&o.csv, "csv", "", "write the timeline to a CSV file")
	f.StringVar(&o.chart, "chart", "", "write a PNG chart of cash, equity and debt")
	f.StringVar(&o.save, "save", "", "write the resulting plan as JSON")
	f.BoolVar(&o.months, "months", false, "print every month instead of the summary only")
}

func (o *outputFlags) write(a *app.App, w io.Writer) error {
	state := a.Portfolio.CurrentState()
	if state == nil {
		return fmt.Errorf("no projection to write")
	}

	fmt.Fprint(w, formatProjection(state, o.months))

	if o.xlsx != "" {
		if err := writeFile(o.xlsx, func(f io.Writer) error { return export.WriteXLSX(f, state) }); err != nil {
			return err
		}
	}
	if o.csv != "" {
		if err := writeFile(o.csv, func(f io.Writer) error { return export.WriteCSV(f, state) }); err != nil {
			return err
		}
	}
	if o.chart != "" {
		png, err := portfolio.RenderChart(state)
		if err != nil {
			return err
		}
		if err := os.WriteFile(o.chart, png, 0o644); err != nil {
			return fmt.Errorf("failed to write chart %s: %w", o.chart, err)
		}
	}
	if o.save != "" {
		if err := a.SavePlanFile(o.save); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(name string, fn func(io.Writer) error) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// withApp initializes the App, prints the banner and runs fn.
func withApp(quiet bool, fn func(a *app.App) error) subcommands.ExitStatus {
	a, err := app.NewApp(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if !quiet {
		common.PrintBanner(os.Stdout, a.Config, a.Logger)
	}
	if err := fn(a); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type simulateCmd struct {
	out   outputFlags
	quiet bool
}

func (*simulateCmd) Name() string     { return "simulate" }
func (*simulateCmd) Synopsis() string { return "project a plan file month by month" }
func (*simulateCmd) Usage() string {
	return `realvest simulate [-xlsx file] [-csv file] [-chart file] [-months] <plan.json>

  Loads a plan (simulation parameters and transactions) and prints the projection.
`
}

func (c *simulateCmd) SetFlags(f *flag.FlagSet) {
	c.out.register(f)
	f.BoolVar(&c.quiet, "q", false, "do not print the banner")
}

func (c *simulateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: a plan file is required")
		return subcommands.ExitUsageError
	}
	return withApp(c.quiet, func(a *app.App) error {
		if err := a.LoadPlanFile(f.Arg(0)); err != nil {
			return err
		}
		return c.out.write(a, os.Stdout)
	})
}

type goalCmd struct {
	out   outputFlags
	quiet bool
}

func (*goalCmd) Name() string     { return "goal" }
func (*goalCmd) Synopsis() string { return "turn a free-text investment goal into a plan" }
func (*goalCmd) Usage() string {
	return `realvest goal [-save plan.json] [-xlsx file] [-csv file] [-chart file] <goal text...>

  Parses the goal, generates a strategy (Gemini when configured, otherwise a
  rental ladder), projects it and reviews the result.
`
}

func (c *goalCmd) SetFlags(f *flag.FlagSet) {
	c.out.register(f)
	f.BoolVar(&c.quiet, "q", false, "do not print the banner")
}

func (c *goalCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	text := strings.TrimSpace(strings.Join(f.Args(), " "))
	if text == "" {
		fmt.Fprintln(os.Stderr, "Error: goal text is required")
		return subcommands.ExitUsageError
	}
	return withApp(c.quiet, func(a *app.App) error {
		plan, err := a.PlanFromGoal(ctx, text)
		if err != nil {
			return err
		}
		fmt.Fprint(os.Stdout, formatGoalPlan(plan))
		return c.out.write(a, os.Stdout)
	})
}

type matchCmd struct {
	out      outputFlags
	quiet    bool
	location string
}

func (*matchCmd) Name() string     { return "match" }
func (*matchCmd) Synopsis() string { return "bind a plan's placeholder purchases to real listings" }
func (*matchCmd) Usage() string {
	return `realvest match [-location "City, ST"] [-save plan.json] <plan.json>

  Searches for-sale listings near each placeholder purchase price and rewrites
  the plan with the best match. Requires a listing search API key.
`
}

func (c *matchCmd) SetFlags(f *flag.FlagSet) {
	c.out.register(f)
	f.BoolVar(&c.quiet, "q", false, "do not print the banner")
	f.StringVar(&c.location, "location", "", "search location (default from config)")
}

func (c *matchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: a plan file is required")
		return subcommands.ExitUsageError
	}
	return withApp(c.quiet, func(a *app.App) error {
		if err := a.LoadPlanFile(f.Arg(0)); err != nil {
			return err
		}
		result, err := a.FindListings(ctx, models.MatchAssumptions{Location: c.location})
		if err != nil {
			return err
		}
		fmt.Fprint(os.Stdout, formatReconcile(result, a.Matcher.Summary(result.Transactions)))
		return c.out.write(a, os.Stdout)
	})
}

type loanCmd struct {
	amount   float64
	payment  float64
	rate     float64
	term     float64
	schedule bool
}

func (*loanCmd) Name() string     { return "loan" }
func (*loanCmd) Synopsis() string { return "show the payment and amortization of a loan" }
func (*loanCmd) Usage() string {
	return `realvest loan (-amount n | -payment n) [-rate pct] [-term years] [-schedule]

  Prints the monthly payment, lifetime interest and amortization of a
  fixed-rate loan. With -payment instead of -amount, the loan is the largest
  one that payment can service.
`
}

func (c *loanCmd) SetFlags(f *flag.FlagSet) {
	f.Float64Var(&c.amount, "amount", 0, "loan principal")
	f.Float64Var(&c.payment, "payment", 0, "monthly payment to size the loan from")
	f.Float64Var(&c.rate, "rate", 7, "annual interest rate percent")
	f.Float64Var(&c.term, "term", 30, "term in years")
	f.BoolVar(&c.schedule, "schedule", false, "print every month instead of yearly totals")
}

func (c *loanCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	amount := c.amount
	if amount <= 0 && c.payment > 0 {
		amount = common.RoundCents(finance.LoanFromPayment(c.payment, c.rate, c.term))
	}
	if amount <= 0 || c.term <= 0 {
		fmt.Fprintln(os.Stderr, "Error: a positive -amount or -payment and -term are required")
		return subcommands.ExitUsageError
	}
	fmt.Fprint(os.Stdout, formatLoan(amount, c.rate, c.term, c.schedule))
	return subcommands.ExitSuccess
}

type versionCmd struct {
	json bool
}

func (*versionCmd) Name() string     { return "version" }
func (*versionCmd) Synopsis() string { return "print version information" }
func (*versionCmd) Usage() string    { return "realvest version [-json]\n" }

func (c *versionCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.json, "json", false, "print build information as JSON")
}

func (c *versionCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	common.LoadVersionFromFile()
	if !c.json {
		fmt.Println(common.GetFullVersion())
		return subcommands.ExitSuccess
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(common.GetVersionInfo()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
