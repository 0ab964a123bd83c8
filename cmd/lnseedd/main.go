package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"

	"github.com/breez/lnseed/discovery"
	"github.com/breez/lnseed/lncfg"
	"github.com/urfave/cli"
)

const defaultPeerPort = "9735"

func main() {
	app := cli.NewApp()
	app.Name = "lnseedd"
	app.Usage = "discover Lightning Network peers via DNS bootstrap"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "configfile",
			Usage: "path to an INI config file",
		},
		cli.StringSliceFlag{
			Name:  "seed",
			Usage: "DNS seed hostname to query; may be repeated",
		},
		cli.BoolTFlag{
			Name:  "system-resolver",
			Usage: "use the host's configured DNS resolver",
		},
		cli.StringFlag{
			Name:  "connect",
			Usage: "bypass DNS bootstrap and target <pubkey-hex>@host:port directly",
		},
		cli.StringFlag{
			Name:  "debuglevel",
			Value: "info",
			Usage: "logging level: trace, debug, info, warn, error, critical",
		},
		cli.StringFlag{
			Name:  "logdir",
			Value: ".",
			Usage: "directory to place rotated log files in",
		},
		cli.IntFlag{
			Name:  "maxlogfilesize",
			Value: 10,
			Usage: "maximum log file size in megabytes before rotation",
		},
		cli.IntFlag{
			Name:  "maxlogfiles",
			Value: 3,
			Usage: "maximum number of rotated log files to keep",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "lnseedd: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	cfg := lncfg.DefaultConfig()
	if err := lncfg.LoadConfigFile(ctx.String("configfile"), &cfg); err != nil {
		return fmt.Errorf("failed to load config file: %w", err)
	}

	if seeds := ctx.StringSlice("seed"); len(seeds) > 0 {
		cfg.Seeds = seeds
	}
	if ctx.IsSet("system-resolver") {
		cfg.UseSystemResolver = ctx.BoolT("system-resolver")
	}
	if ctx.IsSet("connect") {
		cfg.Connect = ctx.String("connect")
	}
	if ctx.IsSet("debuglevel") {
		cfg.DebugLevel = ctx.String("debuglevel")
	}
	if ctx.IsSet("logdir") {
		cfg.LogDir = ctx.String("logdir")
	}
	if ctx.IsSet("maxlogfilesize") {
		cfg.MaxLogFileSize = ctx.Int("maxlogfilesize")
	}
	if ctx.IsSet("maxlogfiles") {
		cfg.MaxLogFiles = ctx.Int("maxlogfiles")
	}
	if cfg.LogDir == "" {
		cfg.LogDir = "."
	}

	if err := initLogRotator(cfg.LogDir, lncfg.DefaultLogFilename,
		cfg.MaxLogFileSize, cfg.MaxLogFiles); err != nil {
		return err
	}
	setLogLevel(cfg.DebugLevel)

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		cancel()
	}()

	if cfg.Connect != "" {
		endpoint, err := lncfg.ParseEndpointString(
			cfg.Connect, defaultPeerPort, net.ResolveTCPAddr,
		)
		if err != nil {
			return fmt.Errorf("invalid --connect endpoint: %w", err)
		}
		fmt.Println(endpoint.String())
		return nil
	}

	if !cfg.UseSystemResolver {
		return fmt.Errorf("--system-resolver=false requires an injected " +
			"resolver, which this binary does not provide")
	}

	endpoints, errs := discovery.BootstrapLookup(runCtx, &discovery.SeedConfig{
		Seeds:       cfg.Seeds,
		DialTimeout: cfg.DialTimeout,
	})

	for {
		select {
		case endpoint, ok := <-endpoints:
			if !ok {
				return nil
			}
			fmt.Println(endpoint.String())
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			fmt.Fprintf(os.Stderr, "lnseedd: %v\n", err)
		case <-runCtx.Done():
			return nil
		}
	}
}
