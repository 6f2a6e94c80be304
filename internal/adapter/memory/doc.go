// Package memory provides in-process implementations of the record store
// and the score cache for single-instance and development deployments.
// State is lost on restart.
package memory
