// Package main prints the per layer multiply-accumulate and parameter counts of
// the digit classifier. With -spin it keeps running inference on a zero batch so
// the process can be profiled.
package main
