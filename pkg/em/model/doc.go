// Package model provides the data structures shared by the EM trainer and its observers.
// It defines the stages of one EM iteration, the information reported after each iteration
// and the hooks an observer implements to follow the training.
package model
