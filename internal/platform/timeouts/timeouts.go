// Package timeouts defines shared timeout constants used across the service.
package timeouts

import "time"

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long servers wait for in-flight work on exit.
const Shutdown = 5 * time.Second

// Transport caps a single presenter call (render, update, delete, lookup).
const Transport = 5 * time.Second

// Generator caps a single narrative generation request.
const Generator = 30 * time.Second

// WSWrite caps a single WebSocket frame write.
const WSWrite = 10 * time.Second

// GRPCDial bounds how long clients wait for a gRPC service to report healthy.
const GRPCDial = 5 * time.Second
