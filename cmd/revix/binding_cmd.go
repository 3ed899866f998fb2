package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"revix/internal/config"
	"revix/internal/domain"
	"revix/internal/infra/db"
)

type bindingFlags struct {
	account  string
	address  string
	provider string
}

func parseBindingFlags(name string, args []string, stderr io.Writer) (bindingFlags, bool) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	var f bindingFlags
	fs.StringVar(&f.account, "account", "", "external account id")
	fs.StringVar(&f.address, "address", "", "account address")
	fs.StringVar(&f.provider, "provider", "", "identity provider (default AUTH_MODE)")
	if err := fs.Parse(args); err != nil {
		return f, false
	}
	if f.account == "" || f.address == "" {
		fmt.Fprintf(stderr, "%s requires --account and --address\n", name)
		return f, false
	}
	return f, true
}

// openBindingRepo connects to POSTGRES_DSN and ensures the table exists.
func openBindingRepo(ctx context.Context, provider string, stderr io.Writer) (*db.BindingRepository, func(), bool) {
	cfg := config.FromEnv()
	if cfg.PostgresDSN == "" {
		fmt.Fprintln(stderr, "POSTGRES_DSN is required")
		return nil, nil, false
	}
	store, err := db.NewStore(cfg, nil)
	if err != nil {
		fmt.Fprintf(stderr, "open store: %v\n", err)
		return nil, nil, false
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		fmt.Fprintf(stderr, "migrate: %v\n", err)
		return nil, nil, false
	}
	if provider == "" {
		provider = cfg.AuthMode
	}
	return db.NewBindingRepository(store.DB, provider), func() { _ = store.Close() }, true
}

func runBindingAdd(args []string, stdout, stderr io.Writer) int {
	return runBinding("binding add", args, stdout, stderr, func(ctx context.Context, repo *db.BindingRepository, f bindingFlags, now time.Time) error {
		addr, err := domain.ParseAddress("address", f.address)
		if err != nil {
			return err
		}
		return repo.Bind(ctx, f.account, addr, now)
	})
}

func runBindingRemove(args []string, stdout, stderr io.Writer) int {
	return runBinding("binding remove", args, stdout, stderr, func(ctx context.Context, repo *db.BindingRepository, f bindingFlags, now time.Time) error {
		addr, err := domain.ParseAddress("address", f.address)
		if err != nil {
			return err
		}
		return repo.Revoke(ctx, f.account, addr, now)
	})
}

func runBinding(name string, args []string, stdout, stderr io.Writer, apply func(context.Context, *db.BindingRepository, bindingFlags, time.Time) error) int {
	f, ok := parseBindingFlags(name, args, stderr)
	if !ok {
		return 1
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	repo, closeFn, ok := openBindingRepo(ctx, f.provider, stderr)
	if !ok {
		return 1
	}
	defer closeFn()
	if err := apply(ctx, repo, f, time.Now().UTC()); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", name, err)
		return 1
	}
	fmt.Fprintf(stdout, "%s: %s %s\n", name, f.account, f.address)
	return 0
}
