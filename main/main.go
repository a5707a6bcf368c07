package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/april1989/fieldprop/compare"
	"github.com/april1989/fieldprop/flags"
	"github.com/april1989/fieldprop/go/arguments"
	"github.com/april1989/fieldprop/go/field"
	"github.com/april1989/fieldprop/go/model"
	"github.com/april1989/fieldprop/go/solver"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"golang.org/x/xerrors"
)

func main() {
	app := cli.NewApp()
	app.Name = "fieldprop"
	app.Usage = "resolve the field values of the abstract objects of a model"
	app.Flags = flags.Flags
	app.Commands = []cli.Command{
		{
			Name:      "run",
			Usage:     "build, finalize and print every object of a model",
			ArgsUsage: "<model.yaml>",
			Action:    run,
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.NewExitError("run needs exactly one model file", 2)
	}
	if err := flags.ParseFlags(c); err != nil {
		return err
	}
	logfile, err := setupLog()
	if err != nil {
		return err
	}
	if logfile != nil {
		defer logfile.Close()
	}

	ctx := context.Background()
	if flags.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flags.TimeLimit)
		defer cancel()
	}

	start := time.Now()
	res, timers, err := analyze(ctx, c.Args().First())
	if err != nil {
		return err
	}
	timers.Total = time.Since(start)
	fmt.Println("Done  -- " + c.Args().First() + ": " + fmt.Sprint(res.Len()) + " objects")
	res.Fprint(os.Stdout)

	if flags.DoCompare != "" {
		other, _, err := analyze(ctx, flags.DoCompare)
		if err != nil {
			return err
		}
		compare.CommonParts(res, other).Fprint(os.Stdout)
	}
	if flags.DoPerformance {
		timers.Fprint(os.Stdout)
	}
	return nil
}

// analyze runs one model with a fresh pool: interned values do not outlive
// the run.
func analyze(ctx context.Context, path string) (*solver.Result, *solver.Timers, error) {
	start := time.Now()
	m, err := model.DecodeFile(path)
	if err != nil {
		return nil, nil, err
	}
	parsing := time.Since(start)

	fields := field.NewManager(field.NewPool())
	fields.RegisterDefaultFactories()
	args := arguments.NewManager(fields)
	args.RegisterDefaults()

	s, err := solver.New(m, fields, args)
	if err != nil {
		return nil, nil, xerrors.Errorf("%s: %w", path, err)
	}
	s.Timers.ModelParsing = parsing
	log.WithFields(log.Fields{"model": path, "objects": len(m.Objects)}).Info("model built")

	res, err := s.Run(ctx, flags.DoParallel)
	if err != nil {
		return nil, nil, xerrors.Errorf("%s: %w", path, err)
	}
	log.WithFields(log.Fields{"model": path, "interned": fields.Pool().Len()}).Info("model finalized")
	return res, s.Timers, nil
}

func setupLog() (*os.File, error) {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})
	log.SetLevel(log.InfoLevel)
	if flags.DoLog {
		log.SetLevel(log.DebugLevel)
	}
	if flags.LogFile == "" {
		return nil, nil
	}
	logfile, err := os.OpenFile(flags.LogFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return nil, xerrors.Errorf("log file: %w", err)
	}
	log.SetOutput(logfile)
	return logfile, nil
}
