// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services are pure Go with no CGO. Type conversion is delegated to the
// polytype package; adapters are only reached through driven ports.
package services
