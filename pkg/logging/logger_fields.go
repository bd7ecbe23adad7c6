package logging

import (
	"time"
)

const componentKey = "component"

func String(key, value string) Field             { return Field{Key: key, Value: value} }
func Int(key string, value int) Field            { return Field{Key: key, Value: value} }
func Float64(key string, value float64) Field    { return Field{Key: key, Value: value} }
func Bool(key string, value bool) Field          { return Field{Key: key, Value: value} }
func Any(key string, value any) Field            { return Field{Key: key, Value: value} }
func Duration(key string, d time.Duration) Field { return Field{Key: key, Value: d.String()} }

// Error records err's message, or null for a nil error.
func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Component names the emitting package. JSONLogger.With lifts it to the
// top level of each entry.
func Component(name string) Field { return String(componentKey, name) }

// Graph identifiers.

func NodeID(id string) Field      { return String("node_id", id) }
func EdgeID(id string) Field      { return String("edge_id", id) }
func CommunityID(id string) Field { return String("community_id", id) }

// Joiner command name.
func Command(cmd string) Field { return String("cmd", cmd) }

func Operation(op string) Field     { return String("operation", op) }
func Latency(d time.Duration) Field { return Duration("latency", d) }
func Count(n int) Field             { return Int("count", n) }
func Limit(n int) Field             { return Int("limit", n) }
func Path(p string) Field           { return String("path", p) }
