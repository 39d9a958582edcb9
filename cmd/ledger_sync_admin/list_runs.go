package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/subcommands"

	"github.com/SscSPs/ledger_sync/internal/adapters/database/pgsql"
	"github.com/SscSPs/ledger_sync/internal/platform/config"
	"github.com/SscSPs/ledger_sync/pkg/database"
)

type listRunsCmd struct {
	limit int
	token string
	realm string
}

func (*listRunsCmd) Name() string     { return "list-runs" }
func (*listRunsCmd) Synopsis() string { return "list recorded batch runs, newest first" }
func (*listRunsCmd) Usage() string {
	return `list-runs [-n <count>] [-token <next token>] [-realm <realm id>]

  Reads the audit trail of submission cycles straight from the database.
  When more runs exist, the token to pass for the next page is printed last.
`
}

func (c *listRunsCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "n", 20, "Number of runs to show.")
	f.StringVar(&c.token, "token", "", "Token printed by a previous invocation.")
	f.StringVar(&c.realm, "realm", "", "Realm to list. Defaults to LEDGER_REALM_ID.")
}

func (c *listRunsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.limit <= 0 {
		fmt.Fprintln(os.Stderr, "-n must be positive")
		return subcommands.ExitUsageError
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	realm := c.realm
	if realm == "" {
		realm = cfg.LedgerRealmID
	}

	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to database: %v\n", err)
		return subcommands.ExitFailure
	}
	defer pool.Close()

	var nextToken *string
	if c.token != "" {
		nextToken = &c.token
	}
	runs, next, err := pgsql.NewPgxBatchRunRepository(pool).ListBatchRunsByRealm(ctx, realm, c.limit, nextToken)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing runs: %v\n", err)
		return subcommands.ExitFailure
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSTARTED\tSTATUS\tADDED\tFAILED\tINCONSISTENT\tERROR")
	for _, run := range runs {
		errText := ""
		if run.Error != nil {
			errText = *run.Error
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			run.RunID, run.StartedAt.Format(time.RFC3339), run.Status,
			run.Added, run.Failed, run.Inconsistent, errText)
	}
	if err := w.Flush(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if next != nil {
		fmt.Printf("\nnext page: -token %s\n", *next)
	}
	return subcommands.ExitSuccess
}
