package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"WalletReg/internal/cli"
	"WalletReg/internal/logsink"
	"WalletReg/pkg/appcfg"
	"WalletReg/pkg/i18n"
	"WalletReg/pkg/logx"
)

type flags struct {
	config  string
	proxies string
	wallets string
	keys    string
	count   string
	ref     string
}

func main() {
	var f flags
	root := &cobra.Command{
		Use:           "walletreg",
		Short:         "Create wallets and register them with a referral code",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), f)
		},
	}
	root.Flags().StringVar(&f.config, "config", filepath.Join("configs", "app.yaml"), "path to app config")
	root.Flags().StringVar(&f.proxies, "proxies", "", "proxy list file (overrides config)")
	root.Flags().StringVar(&f.wallets, "wallets", "", "wallet store file (overrides config)")
	root.Flags().StringVar(&f.keys, "keys", "", "register existing private keys from this file instead of generating")
	root.Flags().StringVar(&f.count, "count", "", "number of wallets (skips the prompt)")
	root.Flags().StringVar(&f.ref, "ref", "", "referral code (skips the prompt)")

	if err := root.Execute(); err != nil {
		// input errors were already reported on the console
		var ie *cli.InputError
		if !errors.As(err, &ie) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, f flags) error {
	appConf, err := appcfg.Load(f.config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", i18n.Get("").ConfigNotLoaded, err)
		os.Exit(2)
	}
	if f.proxies != "" {
		appConf.Files.Proxies = f.proxies
	}
	if f.wallets != "" {
		appConf.Files.Wallets = f.wallets
	}

	runDir, err := logsink.MakeRunDir(appConf.Files.Logs, "register", time.Now())
	if err != nil {
		return err
	}
	if err := logx.Init(logx.Config{
		Level:                appConf.LogLevel,
		FilePath:             filepath.Join(runDir, "app.log"),
		HideSecretsInConsole: appConf.HideSecretsInConsole,
	}); err != nil {
		return fmt.Errorf("log init: %w", err)
	}
	defer logx.Close()

	logx.S().Infow("walletreg started",
		"config", f.config,
		"lang", appConf.Language,
		"log_level", appConf.LogLevel,
		"hide_secrets_in_console", appConf.HideSecretsInConsole,
		"run_dir", runDir,
	)

	r := cli.NewRunner(appConf, cli.NewInput(), logx.With("walletreg"))
	r.RunDir = runDir
	r.Count = f.count
	r.Code = f.ref
	r.KeysPath = f.keys

	ctx, stop := cli.WithInterrupt(ctx)
	defer stop()
	return r.Run(ctx)
}
