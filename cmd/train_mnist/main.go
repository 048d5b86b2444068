package main

import (
	"context"
	"flag"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/neurlang/digits/datasets"
	"github.com/neurlang/digits/datasets/mnist"
	"github.com/neurlang/digits/device"
	"github.com/neurlang/digits/metrics"
	"github.com/neurlang/digits/net/feedforward"
	"github.com/neurlang/digits/trainer"
)

func main() {
	cfg := trainer.DefaultConfig()

	configPath := flag.String("config", "", "yaml file with the run settings, flags override it")
	logLevel := flag.String("log-level", "info", "log level")
	flag.IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "input batch size for training")
	flag.IntVar(&cfg.TestBatchSize, "test-batch-size", cfg.TestBatchSize, "input batch size for testing")
	flag.IntVar(&cfg.Epochs, "epochs", cfg.Epochs, "number of epochs to train")
	flag.Float64Var(&cfg.LR, "lr", cfg.LR, "learning rate")
	flag.Float64Var(&cfg.Gamma, "gamma", cfg.Gamma, "learning rate step gamma")
	flag.BoolVar(&cfg.NoCUDA, "no-cuda", cfg.NoCUDA, "skip probing CUDA devices")
	flag.BoolVar(&cfg.DryRun, "dry-run", cfg.DryRun, "quickly check a single pass")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed")
	flag.IntVar(&cfg.LogInterval, "log-interval", cfg.LogInterval, "how many batches to wait before logging training status")
	flag.BoolVar(&cfg.SaveModel, "save-model", cfg.SaveModel, "save the trained model")
	flag.StringVar(&cfg.ModelPath, "dstmodel", cfg.ModelPath, "model destination .json.lzw file")
	flag.BoolVar(&cfg.FullBatch, "fullbatch", cfg.FullBatch, "one step per epoch over the whole train set")
	flag.StringVar(&cfg.Data, "data", cfg.Data, "directory holding the mnist idx files")
	flag.BoolVar(&cfg.Verify, "verify", cfg.Verify, "check the sha256 of the mnist files")
	flag.IntVar(&cfg.Threads, "threads", cfg.Threads, "goroutines assembling batches, 0 for one per core")
	flag.BoolVar(&cfg.Whiten, "whiten", cfg.Whiten, "normalize by statistics measured on the train set")
	flag.BoolVar(&cfg.Cache, "cache", cfg.Cache, "memoize decoded train samples")
	flag.IntVar(&cfg.CacheSize, "cache-size", cfg.CacheSize, "bound of the sample cache, 0 for unbounded")
	flag.BoolVar(&cfg.MergeTest, "merge-test", cfg.MergeTest, "train on the union of the train and test splits")
	flag.IntVar(&cfg.Limit, "limit", cfg.Limit, "train on the first n samples only, 0 for all")
	flag.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "serve prometheus metrics on this address")
	pgo := flag.Bool("pgo", false, "write a cpu profile to default.pgo")
	flag.Parse()

	if *configPath != "" {
		if err := trainer.LoadConfig(*configPath, &cfg); err != nil {
			log.Fatal().Err(err).Msg("config")
		}
		// flags given on the command line win over the file
		if err := flag.CommandLine.Parse(os.Args[1:]); err != nil {
			log.Fatal().Err(err).Msg("flags")
		}
	}

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.With().Str("run", uuid.New().String()).Logger()

	info, err := device.Probe(cfg.NoCUDA)
	if err != nil {
		log.Warn().Err(err).Msg("cuda probe failed")
	}
	log.Info().Object("device", info).Msg("host")
	if len(info.GPUs) > 0 {
		log.Info().Msg("training runs on the cpu, gpus are listed only")
	}
	if cfg.Threads <= 0 {
		cfg.Threads = info.Threads()
	}

	var prom *metrics.Prometheus
	if cfg.MetricsAddr != "" {
		prom = metrics.NewPrometheusMetrics()
		prom.Serve(cfg.MetricsAddr)
	}

	train, test, err := pipeline(cfg, prom)
	if err != nil {
		log.Fatal().Err(err).Msg("dataset")
	}
	log.Info().Int("train", train.Len()).Int("test", test.Len()).Msg("datasets ready")

	net := feedforward.NewMLP(rand.New(rand.NewSource(cfg.Seed)), mnist.ImgSize*mnist.ImgSize, cfg.Hidden, mnist.Classes)
	tr, err := trainer.New(cfg, net, train, test)
	if err != nil {
		log.Fatal().Err(err).Msg("trainer")
	}
	if prom != nil {
		tr.SetObserver(prom)
	}

	if *pgo {
		defer profile()()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	last, err := tr.Run(ctx)
	if errors.Is(err, context.Canceled) {
		log.Warn().Msg("training interrupted")
		return
	}
	if err != nil {
		log.Fatal().Err(err).Msg("training")
	}
	log.Info().Float64("accuracy", last.Accuracy()).Str("results", cfg.Results()).Msg("done")
}

// pipeline loads the splits and wraps them the way the run is configured.
func pipeline(cfg trainer.Config, prom *metrics.Prometheus) (train, test datasets.Source[datasets.Sample], err error) {
	loader := mnist.Loader{Verify: cfg.Verify}
	if cfg.Data != "" {
		loader.Dirs = []string{cfg.Data}
	}
	trainSet, testSet, err := loader.Load()
	if err != nil {
		return nil, nil, err
	}

	var rawTrain datasets.Source[mnist.Item] = trainSet
	if cfg.MergeTest {
		if rawTrain, err = datasets.NewUnion[mnist.Item](trainSet, testSet); err != nil {
			return nil, nil, err
		}
	}
	if cfg.Limit > 0 {
		if rawTrain, err = datasets.NewSubset(rawTrain, 0, cfg.Limit); err != nil {
			return nil, nil, err
		}
	}

	if cfg.Whiten {
		white, err := datasets.NewWhiten[int](datasets.NewMap[mnist.Item, datasets.Sample](rawTrain, mnist.ToTensor))
		if err != nil {
			return nil, nil, errors.Wrap(err, "whitening train set")
		}
		log.Info().Float64("mean", white.Mean()).Float64("std", white.Std()).Msg("whitening")
		// the test split is normalized by the train statistics
		train = white
		test = datasets.NewTransform[[]float64, int](datasets.NewMap[mnist.Item, datasets.Sample](testSet, mnist.ToTensor), mnist.Normalize(white.Mean(), white.Std()), nil)
	} else {
		train = mnist.Tensors(rawTrain)
		test = mnist.Tensors(testSet)
	}

	if cfg.Cache {
		var opts = []datasets.CacheOption{datasets.WithCapacity(cfg.CacheSize)}
		if prom != nil {
			opts = append(opts, datasets.WithObserver(prom.Cache("train")))
		}
		train = datasets.NewCache(train, opts...)
	}
	return train, test, nil
}
