// Package trainer provides high-level training orchestration for the digit
// classifier. It runs stochastic or full batch epochs over indexed datasets,
// evaluates after every epoch and keeps the table of accuracies on disk.
package trainer
