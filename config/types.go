// Package config provides configuration types for the order service.
package config

// Engine selects the HTTP framework that serves the API.
type Engine string

const (
	// EngineFiber serves the API with Fiber on fasthttp.
	EngineFiber Engine = "fiber"
	// EngineEcho serves the API with Echo on net/http.
	EngineEcho Engine = "echo"
)
