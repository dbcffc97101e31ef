// Package server implements the HTTP server and handlers for the file drop
// service: upload admission and naming, listing and download of files kept
// in a single flat directory, plus the health and metrics endpoints used by
// operators.
package server
