package settings

import (
	"fmt"
	"time"
)

// Type indicates a variable type.
type Type string

const (
	TypeBool     Type = "bool"
	TypeFloat64  Type = "float64"
	TypeDuration Type = "duration"
	TypeEnum     Type = "enum"
)

// Source indicates where the current effective value comes from.
type Source int

const (
	SourceDefault Source = iota
	SourceRuntimeSet
)

func (s Source) String() string {
	switch s {
	case SourceDefault:
		return "default"
	case SourceRuntimeSet:
		return "runtime-set"
	default:
		return fmt.Sprintf("Source(%d)", int(s))
	}
}

// Item is a point-in-time view of a single variable.
type Item struct {
	Key          string    `json:"key"`
	Type         Type      `json:"type"`
	Value        string    `json:"value"`
	DefaultValue string    `json:"default_value"`
	Source       Source    `json:"source"`
	Min          string    `json:"min,omitempty"`
	Max          string    `json:"max,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

// Snapshot is a view of all registered variables, sorted by key.
type Snapshot struct {
	Items []Item `json:"items"`
}

// Get finds an item by key.
func (s Snapshot) Get(key string) (Item, bool) {
	for _, it := range s.Items {
		if it.Key == key {
			return it, true
		}
	}
	return Item{}, false
}
