// Package main evaluates a trained MNIST digit classifier on the test split and
// logs its loss and accuracy.
package main
