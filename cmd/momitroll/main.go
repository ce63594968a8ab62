package main

import (
	"context"
	"flag"
	"fmt"
	"github.com/gaussfff/momitroll"
	"github.com/gaussfff/momitroll/internal/cli"
	"github.com/gaussfff/momitroll/internal/logger"
	"github.com/logrusorgru/aurora/v3"
	"github.com/pkg/errors"
	"log"
	"os"
	"os/signal"
	"syscall"
)

var errUnknownCommand = errors.New("unknown command")

type flags struct {
	configPath string
	debug      bool
	verbose    bool
	noColor    bool
}

type commandFunc func(ctx context.Context, ctrl *momitroll.Controller, args []string) error

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage: %s [flags] <command> [args]\n\nCommands:\n", cli.AppName)
	fmt.Fprintln(out, "  init                      create the migrations folder and the changelog collection")
	fmt.Fprintln(out, "  create <name>             create a new pending migration")
	fmt.Fprintln(out, "  up [-pending] [-steps n]  apply migrations")
	fmt.Fprintln(out, "  down                      roll back the last applied migration")
	fmt.Fprintln(out, "  status                    list migrations, most recent first")
	fmt.Fprintln(out, "  drop                      remove the most recent pending migration")
	fmt.Fprintln(out, "  info                      print information about momitroll")
	fmt.Fprintln(out, "  version                   print the version")
	fmt.Fprintln(out, "\nFlags:")
	flag.PrintDefaults()
}

func commands(p *cli.Printer) map[string]commandFunc {
	return map[string]commandFunc{
		"init": func(ctx context.Context, ctrl *momitroll.Controller, _ []string) error {
			return ctrl.Init(ctx)
		},
		"create": func(ctx context.Context, ctrl *momitroll.Controller, args []string) error {
			if len(args) != 1 {
				return errors.New("create expects exactly one migration name")
			}

			_, err := ctrl.Create(ctx, args[0])
			return err
		},
		"up": func(ctx context.Context, ctrl *momitroll.Controller, args []string) error {
			fs := flag.NewFlagSet("up", flag.ContinueOnError)
			onlyPending := fs.Bool("pending", false, "apply pending migrations only")
			steps := fs.Int("steps", 0, "apply at most n migrations, 0 means all")
			if err := fs.Parse(args); err != nil {
				return err
			}

			_, err := ctrl.Up(ctx, momitroll.CreateConfigurators(*steps, *onlyPending)...)
			return err
		},
		"down": func(ctx context.Context, ctrl *momitroll.Controller, _ []string) error {
			_, err := ctrl.Down(ctx)
			return err
		},
		"status": func(ctx context.Context, ctrl *momitroll.Controller, _ []string) error {
			records, err := ctrl.Status(ctx)
			if err != nil {
				return err
			}

			p.Status(records)
			return nil
		},
		"drop": func(ctx context.Context, ctrl *momitroll.Controller, _ []string) error {
			_, err := ctrl.Drop(ctx)
			return err
		},
	}
}

func createLogger(f flags) logger.Logger {
	p := log.New(os.Stdout, "", 0)
	if f.noColor {
		return logger.NewBWLogger(p, f.verbose, f.debug)
	}

	return logger.NewColorLogger(p, f.verbose, f.debug)
}

func loadConfig(path string) (cli.Config, error) {
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return cli.Config{}, errors.Wrap(err, "could not resolve working directory")
		}

		if path, err = cli.FindConfigFile(cwd); err != nil {
			return cli.Config{}, err
		}
	}

	return cli.LoadConfig(path)
}

func run(ctx context.Context, f flags, p *cli.Printer, args []string) (err error) {
	cmd, ok := commands(p)[args[0]]
	if !ok {
		return errors.Wrapf(errUnknownCommand, "[%s]", args[0])
	}

	lg := createLogger(f)

	cfg, err := loadConfig(f.configPath)
	if err != nil {
		return err
	}

	ctrl, closer, err := cli.NewController(ctx, cfg, lg)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := closer(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return cmd(ctx, ctrl, args[1:])
}

func main() {
	var f flags
	flag.StringVar(&f.configPath, "config", "", "path to config file, searched in the working directory when empty")
	flag.BoolVar(&f.debug, "debug", false, "print debug messages")
	flag.BoolVar(&f.verbose, "verbose", false, "print every command sent to the database")
	flag.BoolVar(&f.noColor, "no-color", false, "disable colored output")
	flag.Usage = usage
	flag.Parse()

	au := aurora.NewAurora(!f.noColor)
	p := cli.NewPrinter(os.Stdout, !f.noColor)

	args := flag.Args()
	if len(args) == 0 {
		fmt.Println(au.Red("momitroll: "), "Command not specified")
		flag.Usage()
		os.Exit(1)
	}

	switch args[0] {
	case "info":
		p.Info()
		os.Exit(0)
	case "version":
		p.Version()
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, f, p, args); err != nil {
		stop()
		fmt.Println(au.Red("momitroll: "), err.Error())
		if errors.Is(err, errUnknownCommand) {
			flag.Usage()
		}
		os.Exit(1)
	}
}
