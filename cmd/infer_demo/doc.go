// Package main provides a demo program running a small convolutional network on
// the net engine: a 3x3 convolution with parametric ReLU, max pooling, and a
// 1x1 convolution with two channel softmax, all with generated weights.
package main
