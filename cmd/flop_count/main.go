package main

import (
	"context"
	"flag"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"

	"github.com/neurlang/digits/datasets/mnist"
	"github.com/neurlang/digits/net/feedforward"
	"github.com/neurlang/digits/parallel"
	"github.com/neurlang/digits/trainer"
)

const spinBatch = 128

func main() {
	cfg := trainer.DefaultConfig()
	configPath := flag.String("config", "", "yaml file with the network settings")
	spin := flag.Bool("spin", false, "run inference on a zero batch until interrupted")
	workers := flag.Int("workers", 1, "goroutines running inference with -spin")
	flag.Parse()

	if *configPath != "" {
		if err := trainer.LoadConfig(*configPath, &cfg); err != nil {
			log.Fatal().Err(err).Msg("config")
		}
	}

	net := feedforward.NewMLP(rand.New(rand.NewSource(cfg.Seed)), mnist.ImgSize*mnist.ImgSize, cfg.Hidden, mnist.Classes)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"layer", "kind", "inputs", "outputs", "macs", "params"})
	for i, l := range net.Complexity() {
		table.Append([]string{
			strconv.Itoa(i),
			l.Kind,
			strconv.Itoa(l.Inputs),
			strconv.Itoa(l.Outputs),
			strconv.Itoa(l.MACs),
			strconv.Itoa(l.Params),
		})
	}
	macs, params := net.TotalComplexity()
	table.SetFooter([]string{"", "", "", "total", strconv.Itoa(macs), strconv.Itoa(params)})
	table.Render()

	if !*spin {
		return
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := spinLoop(ctx, net, *workers); err != nil {
		log.Fatal().Err(err).Msg("spin")
	}
}

// spinLoop keeps inferring a zero batch on workers goroutines, logging
// throughput every second.
func spinLoop(ctx context.Context, net *feedforward.FeedforwardNetwork, workers int) error {
	x := mat.NewDense(spinBatch, net.Inputs(), nil)
	var samples int64
	go func() {
		tick := time.NewTicker(time.Second)
		defer tick.Stop()
		last := time.Now()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-tick.C:
				n := atomic.SwapInt64(&samples, 0)
				log.Info().
					Int("workers", workers).
					Float64("samples_per_sec", float64(n)/now.Sub(last).Seconds()).
					Msg("spin")
				last = now
			}
		}
	}()
	return parallel.Loop(workers).Until(ctx, func(uint64) error {
		if _, err := net.Infer(x); err != nil {
			return err
		}
		atomic.AddInt64(&samples, spinBatch)
		return nil
	})
}
