// Package server is the HTTP boundary of the rate calendar.
//
// Routes:
//
//	POST /                       calendar (legacy entry point)
//	POST /api/v1/rates/calendar  calendar
//	GET  /health                 liveness
//	GET  <metrics.path>          Prometheus exposition, when enabled
//
// Calendar requests always answer 200 with either {"data":[...]} or
// {"errors":[...]}; only an oversized body (413) or an internal failure
// (500) answers otherwise.
package server
