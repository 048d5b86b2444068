package trainer

import (
	"context"
	"math/rand"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"

	"github.com/neurlang/digits/datasets"
	"github.com/neurlang/digits/learning"
	"github.com/neurlang/digits/net/feedforward"
)

// EpochObserver is told about the evaluation after every epoch.
type EpochObserver interface {
	Epoch(epoch int, split string, loss, accuracy float64)
}

// Trainer runs the epochs of one experiment.
type Trainer struct {
	cfg       Config
	net       *feedforward.FeedforwardNetwork
	optimizer *learning.Adadelta
	train     datasets.Source[datasets.Sample]
	test      datasets.Source[datasets.Sample]
	rng       *rand.Rand
	results   *Results
	observer  EpochObserver

	// materialized sets of the full batch regime
	trainX, testX           *mat.Dense
	trainLabels, testLabels []int
}

// New prepares a run of net on the given splits.
func New(cfg Config, net *feedforward.FeedforwardNetwork, train, test datasets.Source[datasets.Sample]) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid training config")
	}
	if cfg.Threads <= 0 {
		cfg.Threads = 1
	}
	return &Trainer{
		cfg:       cfg,
		net:       net,
		optimizer: learning.NewAdadelta(cfg.HyperParameters()),
		train:     train,
		test:      test,
		rng:       rand.New(rand.NewSource(cfg.Seed)),
		results:   NewResults(cfg.Results()),
	}, nil
}

// SetObserver reports every epoch evaluation to o.
func (t *Trainer) SetObserver(o EpochObserver) {
	t.observer = o
}

// Results returns the per-epoch table
func (t *Trainer) Results() *Results {
	return t.results
}

// Run trains for the configured epochs, evaluating after each one, and
// returns the last evaluation.
func (t *Trainer) Run(ctx context.Context) (last Evaluation, err error) {
	if t.cfg.FullBatch {
		if err = t.stack(); err != nil {
			return
		}
	}
	start := time.Now()
	for epoch := 1; epoch <= t.cfg.Epochs; epoch++ {
		if err = ctx.Err(); err != nil {
			return
		}
		t.optimizer.SetEpoch(epoch - 1)
		if t.cfg.FullBatch {
			err = t.trainFullBatch(epoch)
		} else {
			err = t.trainEpoch(ctx, epoch)
		}
		if err != nil {
			return
		}
		if last, err = t.evaluate(); err != nil {
			return
		}
		log.Info().
			Int("epoch", epoch).
			Float64("loss", last.Loss).
			Int("correct", last.Correct).
			Int("total", last.Total).
			Float64("accuracy", last.Accuracy()).
			Msg("Test set")
		if t.observer != nil {
			t.observer.Epoch(epoch, "test", last.Loss, last.Accuracy())
		}
		if err = t.results.Append(ctx, epoch, last.Accuracy(), t.cfg.Mode()); err != nil {
			return
		}
	}
	log.Info().Str("duration", time.Since(start).String()).Msg("Training time")

	if t.cfg.SaveModel {
		if err = t.net.WriteCompressedWeightsToFile(t.cfg.ModelPath); err != nil {
			return last, errors.Wrap(err, "saving model")
		}
		log.Info().Str("path", t.cfg.ModelPath).Msg("saved model")
	}
	return last, nil
}

func (t *Trainer) stack() (err error) {
	if t.trainX, t.trainLabels, err = datasets.Stack(t.train, t.cfg.Threads); err != nil {
		return errors.Wrap(err, "stacking train set")
	}
	if t.testX, t.testLabels, err = datasets.Stack(t.test, t.cfg.Threads); err != nil {
		return errors.Wrap(err, "stacking test set")
	}
	return nil
}

func (t *Trainer) evaluate() (Evaluation, error) {
	if t.cfg.FullBatch {
		return evaluateStacked(t.net, t.testX, t.testLabels)
	}
	return Evaluate(t.net, t.test, t.cfg.TestBatchSize, t.cfg.Threads)
}

func (t *Trainer) step(x *mat.Dense, labels []int) (float64, error) {
	loss, err := t.net.Step(x, labels)
	if err != nil {
		return 0, err
	}
	t.optimizer.Step(t.net.Params())
	return loss, nil
}

func (t *Trainer) trainFullBatch(epoch int) error {
	loss, err := t.step(t.trainX, t.trainLabels)
	if err != nil {
		return err
	}
	log.Info().
		Int("epoch", epoch).
		Int("seen", 0).
		Int("total", len(t.trainLabels)).
		Float64("percent", 0).
		Float64("loss", loss).
		Msg("Train Epoch")
	return nil
}

// trainEpoch visits the train set in a fresh random order, one minibatch per step.
func (t *Trainer) trainEpoch(ctx context.Context, epoch int) error {
	shuffled, err := datasets.NewShuffle[datasets.Sample](t.train, t.rng)
	if err != nil {
		return err
	}
	n, size := shuffled.Len(), t.cfg.BatchSize
	batches := (n + size - 1) / size
	for b := 0; b < batches; b++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		stop := (b + 1) * size
		if stop > n {
			stop = n
		}
		x, labels, err := datasets.StackRange(shuffled, b*size, stop, t.cfg.Threads)
		if err != nil {
			return errors.Wrapf(err, "epoch %d batch %d", epoch, b)
		}
		loss, err := t.step(x, labels)
		if err != nil {
			return errors.Wrapf(err, "epoch %d batch %d", epoch, b)
		}
		if b%t.cfg.LogInterval == 0 {
			log.Info().
				Int("epoch", epoch).
				Int("seen", b*size).
				Int("total", n).
				Float64("percent", 100*float64(b)/float64(batches)).
				Float64("loss", loss).
				Float64("lr", t.optimizer.LR()).
				Msg("Train Epoch")
			if t.cfg.DryRun {
				break
			}
		}
	}
	return nil
}
