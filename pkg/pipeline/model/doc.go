// Package model provides the data structures shared by the pipeline package and its options.
// It defines the closed enumerations used to describe a job (descriptor kinds, property value types,
// data handle directions and output levels) and the hook interface implemented by pipeline options.
package model
