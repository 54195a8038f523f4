// Package common holds what every tool package shares: the tool middleware,
// argument helpers and the rendering of results as JSON envelopes.
package common
