// Package feedforward implements a dense feedforward classifier: linear layers,
// tanh activations and a log-softmax output trained against the negative log
// likelihood. Batches are gonum matrices with one row per sample.
package feedforward
