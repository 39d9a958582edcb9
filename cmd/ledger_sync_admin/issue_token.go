package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"github.com/SscSPs/ledger_sync/internal/platform/config"
	"github.com/SscSPs/ledger_sync/internal/utils"
)

type issueTokenCmd struct {
	subject string
	ttl     time.Duration
}

func (*issueTokenCmd) Name() string     { return "issue-token" }
func (*issueTokenCmd) Synopsis() string { return "sign a bearer token for the API" }
func (*issueTokenCmd) Usage() string {
	return `issue-token -sub <caller> [-ttl <duration>]

  Signs an HS256 token with JWT_SECRET and JWT_ISSUER from the environment,
  the same values the server validates against.
`
}

func (c *issueTokenCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.subject, "sub", "", "Subject identifying the caller, e.g. the importer job name.")
	f.DurationVar(&c.ttl, "ttl", 24*time.Hour, "How long the token stays valid.")
}

func (c *issueTokenCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.subject == "" {
		fmt.Fprintln(os.Stderr, "-sub is required")
		return subcommands.ExitUsageError
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	token, err := utils.GenerateJWT(c.subject, cfg.JWTSecret, c.ttl, cfg.JWTIssuer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error signing token: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Println(token)
	return subcommands.ExitSuccess
}
