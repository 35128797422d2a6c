// Package mongodb implements driven.Database on a polyDB MongoDB server.
//
// Requests are throttled by a token bucket so that a single client cannot
// flood the public server. Documents are decoded into plain Go values
// (map[string]any, []any, int64, float64, string, bool) so that the rest of
// the application never sees BSON types.
package mongodb
