// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem under ~/.polydb.
//
// Adapters:
//   - ConfigStore: TOML connection and mirror settings (config.toml)
//   - TypeRegistry: property type signatures, embedded defaults layered
//     under user overrides (types.toml)
//
// Both reload themselves when their file changes on disk (see Watch).
package file
