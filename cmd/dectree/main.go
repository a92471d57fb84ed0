package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"runtime/pprof"

	"github.com/ar90n/dectree"
	"github.com/ar90n/dectree/config"
	"github.com/ar90n/dectree/dataset"
	"github.com/ar90n/dectree/render"
	"github.com/ar90n/dectree/tree"
	"github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc/pool"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type env struct {
	cfg    config.Config
	logger *zap.Logger
	stop   func()
}

func (e env) Close() {
	e.stop()
	e.logger.Sync()
}

// setup merges the environment configuration with the command line flags.
func setup(c *cli.Context) (env, error) {
	cfg, err := config.Load()
	if err != nil {
		return env{}, err
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("max-goroutines") {
		cfg.MaxGoroutines = c.Uint("max-goroutines")
	}
	if c.IsSet("terminate-ratio") {
		cfg.TerminateRatio = c.Float64("terminate-ratio")
	}
	if c.IsSet("strict") {
		cfg.Strict = c.Bool("strict")
	}
	if c.IsSet("profile-output") {
		cfg.ProfileOutput = c.String("profile-output")
	}
	if err := cfg.Validate(); err != nil {
		return env{}, err
	}

	logger, err := cfg.Logger()
	if err != nil {
		return env{}, err
	}

	stop := func() {}
	if cfg.ProfileOutput != "" {
		stop, err = startProfiler(cfg.ProfileOutput)
		if err != nil {
			return env{}, err
		}
	}

	return env{cfg: cfg, logger: logger, stop: stop}, nil
}

func startProfiler(path string) (func(), error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return nil, err
	}

	return func() {
		pprof.StopCPUProfile()
		f.Close()
	}, nil
}

func newBuilder(e env) *tree.Builder {
	return tree.NewBuilder().
		SetTerminateRatio(e.cfg.TerminateRatio).
		SetMaxGoroutines(e.cfg.MaxGoroutines).
		SetStrict(e.cfg.Strict).
		SetLogger(e.logger)
}

func loadDatasets(paths ...string) ([]*dataset.Dataset, error) {
	datasets := make([]*dataset.Dataset, len(paths))
	p := pool.New().WithErrors()
	for i, path := range paths {
		i, path := i, path
		p.Go(func() error {
			data, err := dataset.Load(path)
			if err != nil {
				return err
			}
			datasets[i] = data
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	return datasets, nil
}

func loadModel(path string) (*dectree.Model, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer file.Close()

	model, err := dectree.Load(file)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return model, nil
}

func requireArgs(c *cli.Context, n int) error {
	if c.NArg() != n {
		return errors.Newf("expected %d arguments, got %d\nusage: %s %s", n, c.NArg(), c.Command.HelpName, c.Command.ArgsUsage)
	}
	return nil
}

func evaluateAction(c *cli.Context) error {
	if c.NArg() != 2 {
		return errors.Newf("expected 2 arguments, got %d\nusage: %s %s", c.NArg(), c.App.HelpName, c.App.ArgsUsage)
	}

	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.Close()

	e.logger.Info("reading data...")
	datasets, err := loadDatasets(c.Args().Get(0), c.Args().Get(1))
	if err != nil {
		return err
	}
	trainData, testData := datasets[0], datasets[1]
	e.logger.Info("done", zap.Int("training", trainData.Len()), zap.Int("testing", testData.Len()))

	builder := newBuilder(e)
	e.logger.Info("building tree...", zap.String("params", builder.ParameterString()))
	model, err := dectree.Train(c.Context, trainData, builder)
	if err != nil {
		return err
	}
	trainData.Release()
	e.logger.Info("done")

	evaluation, err := model.Evaluate(testData, e.logger)
	if err != nil {
		return err
	}
	testData.Release()
	model.Release()

	fmt.Fprintln(c.App.Writer, evaluation.Correct)
	return nil
}

func trainAction(c *cli.Context) error {
	if err := requireArgs(c, 1); err != nil {
		return err
	}

	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.Close()

	e.logger.Info("reading data...")
	data, err := dataset.Load(c.Args().First())
	if err != nil {
		return err
	}
	e.logger.Info("done", zap.Int("training", data.Len()))

	builder := newBuilder(e)
	e.logger.Info("building tree...", zap.String("params", builder.ParameterString()))
	model, err := dectree.Train(c.Context, data, builder)
	if err != nil {
		return err
	}
	data.Release()
	e.logger.Info("done")

	e.logger.Info("saving model...")
	file, err := os.Create(c.String("output"))
	if err != nil {
		return err
	}
	defer file.Close()
	if err := model.Save(file); err != nil {
		return err
	}
	e.logger.Info("done")

	return nil
}

func predictAction(c *cli.Context) error {
	if err := requireArgs(c, 1); err != nil {
		return err
	}

	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.Close()

	model, err := loadModel(c.String("model"))
	if err != nil {
		return err
	}
	defer model.Release()

	data, err := dataset.Load(c.Args().First())
	if err != nil {
		return err
	}
	defer data.Release()

	evaluation, err := model.Evaluate(data, e.logger)
	if err != nil {
		return err
	}

	fmt.Fprintln(c.App.Writer, evaluation.Correct)
	return nil
}

type inspection struct {
	Trained        int        `yaml:"trained"`
	TerminateRatio float64    `yaml:"terminate_ratio"`
	Tree           tree.Stats `yaml:"tree"`
}

func inspectAction(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.Close()

	model, err := loadModel(c.String("model"))
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(c.App.Writer)
	defer enc.Close()
	return enc.Encode(inspection{
		Trained:        model.Trained,
		TerminateRatio: model.TerminateRatio,
		Tree:           model.Stats(),
	})
}

func renderAction(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.Close()

	format, err := render.ParseFormat(c.String("format"))
	if err != nil {
		return err
	}

	model, err := loadModel(c.String("model"))
	if err != nil {
		return err
	}

	var w io.Writer = c.App.Writer
	if output := c.String("output"); output != "" {
		file, err := os.Create(output)
		if err != nil {
			return err
		}
		defer file.Close()
		w = file
	}

	return render.Tree(model.Root, format, w)
}

func modelFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "model",
		Value: "model.bin",
		Usage: "model file",
	}
}

const description = `Trains a tree on the training data and prints how many testing images it
classifies correctly. A first argument named train, predict, inspect or render
runs that command, so pass a data file with such a name as ./train.`

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:        "dectree",
		HelpName:    "dectree",
		Usage:       "decision tree classifier for 28x28 binary images",
		ArgsUsage:   "<training data> <testing data>",
		Description: description,
		Writer:      stdout,
		ErrWriter:   stderr,
		Action:      evaluateAction,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
			},
			&cli.UintFlag{
				Name:  "max-goroutines",
				Usage: "goroutines evaluating split pixels, 0 means one per CPU",
			},
			&cli.Float64Flag{
				Name:  "terminate-ratio",
				Usage: "majority label ratio at which a node becomes a leaf",
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "fail on pixels that are neither 0 nor 255",
			},
			&cli.StringFlag{
				Name:  "profile-output",
				Usage: "cpu profile output file",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "train",
				Usage:     "train a tree and save it",
				UsageText: "dectree train [command options] <training data>",
				ArgsUsage: "<training data>",
				Action:    trainAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "output",
						Value: "model.bin",
						Usage: "output file",
					},
				},
			},
			{
				Name:      "predict",
				Usage:     "count correct predictions of a saved tree",
				UsageText: "dectree predict [command options] <testing data>",
				ArgsUsage: "<testing data>",
				Action:    predictAction,
				Flags:     []cli.Flag{modelFlag()},
			},
			{
				Name:      "inspect",
				Usage:     "print statistics of a saved tree",
				UsageText: "dectree inspect [command options]",
				Action:    inspectAction,
				Flags:     []cli.Flag{modelFlag()},
			},
			{
				Name:      "render",
				Usage:     "draw a saved tree with graphviz",
				UsageText: "dectree render [command options]",
				Action:    renderAction,
				Flags: []cli.Flag{
					modelFlag(),
					&cli.StringFlag{
						Name:  "format",
						Value: "dot",
						Usage: "dot, svg, png or jpg",
					},
					&cli.StringFlag{
						Name:  "output",
						Usage: "output file, stdout when empty",
					},
				},
			},
		},
	}
}

func main() {
	if err := newApp(os.Stdout, os.Stderr).RunContext(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
