// Package main provides a demo program for training a handwritten digit classifier on
// the MNIST dataset. The samples flow through lazy dataset wrappers (tensor
// conversion, normalization or whitening, caching, optional union with the test
// split and truncation) into a tanh multilayer perceptron trained with Adadelta.
// Per epoch test accuracies are written to mnist_fulltrue.csv or mnist_fullfalse.csv.
package main
