package main

import (
	"flag"
	"math/rand"

	"github.com/rs/zerolog/log"

	"github.com/neurlang/digits/datasets"
	"github.com/neurlang/digits/datasets/mnist"
	"github.com/neurlang/digits/device"
	"github.com/neurlang/digits/net/feedforward"
	"github.com/neurlang/digits/trainer"
)

func main() {
	cfg := trainer.DefaultConfig()
	configPath := flag.String("config", "", "yaml file with the network settings")
	flag.StringVar(&cfg.ModelPath, "dstmodel", cfg.ModelPath, "model .json.lzw file to evaluate")
	flag.StringVar(&cfg.Data, "data", cfg.Data, "directory holding the mnist idx files")
	flag.IntVar(&cfg.TestBatchSize, "test-batch-size", cfg.TestBatchSize, "input batch size for testing")
	flag.IntVar(&cfg.Threads, "threads", cfg.Threads, "goroutines assembling batches, 0 for one per core")
	flag.IntVar(&cfg.Limit, "limit", cfg.Limit, "evaluate the first n test samples only, 0 for all")
	flag.Parse()

	if *configPath != "" {
		if err := trainer.LoadConfig(*configPath, &cfg); err != nil {
			log.Fatal().Err(err).Msg("config")
		}
	}
	if cfg.Threads <= 0 {
		info, _ := device.Probe(true)
		cfg.Threads = info.Threads()
	}

	loader := mnist.Loader{}
	if cfg.Data != "" {
		loader.Dirs = []string{cfg.Data}
	}
	testSet, err := loader.Split(false)
	if err != nil {
		log.Fatal().Err(err).Msg("dataset")
	}
	var test datasets.Source[mnist.Item] = testSet
	if cfg.Limit > 0 {
		if test, err = datasets.NewSubset[mnist.Item](testSet, 0, cfg.Limit); err != nil {
			log.Fatal().Err(err).Msg("dataset")
		}
	}

	net := feedforward.NewMLP(rand.New(rand.NewSource(cfg.Seed)), mnist.ImgSize*mnist.ImgSize, cfg.Hidden, mnist.Classes)
	if err := net.ReadCompressedWeightsFromFile(cfg.ModelPath); err != nil {
		log.Fatal().Err(err).Str("path", cfg.ModelPath).Msg("model")
	}

	e, err := trainer.Evaluate(net, mnist.Tensors(test), cfg.TestBatchSize, cfg.Threads)
	if err != nil {
		log.Fatal().Err(err).Msg("evaluate")
	}
	log.Info().
		Float64("loss", e.Loss).
		Int("correct", e.Correct).
		Int("total", e.Total).
		Float64("accuracy", e.Accuracy()).
		Msg("Test set")
}
