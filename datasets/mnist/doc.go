// Package mnist loads the MNIST handwritten digit dataset from its gzip idx
// files and exposes each split as an indexed dataset, ready to be wrapped by
// the datasets package.
package mnist
