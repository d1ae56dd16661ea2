package state

import (
	"fmt"
	"strconv"
	"strings"
)

// EntityKind tags the dynamic value carried by an EntityValue.
type EntityKind string

const (
	EntityString EntityKind = "string"
	EntityNumber EntityKind = "number"
	EntityBool   EntityKind = "bool"
	EntityMap    EntityKind = "map"
)

// EntityValue is a tagged value for extracted entities and collected
// fields. It keeps the entity bag extensible without falling back to
// untyped `any` at the boundaries where field matching happens.
type EntityValue struct {
	Kind EntityKind             `json:"kind"`
	Str  string                 `json:"str,omitempty"`
	Num  float64                `json:"num,omitempty"`
	Bool bool                   `json:"bool,omitempty"`
	Map  map[string]EntityValue `json:"map,omitempty"`
}

func StringValue(s string) EntityValue {
	return EntityValue{Kind: EntityString, Str: s}
}

func NumberValue(n float64) EntityValue {
	return EntityValue{Kind: EntityNumber, Num: n}
}

func BoolValue(b bool) EntityValue {
	return EntityValue{Kind: EntityBool, Bool: b}
}

func MapValue(m map[string]EntityValue) EntityValue {
	return EntityValue{Kind: EntityMap, Map: m}
}

// EntityFromAny converts a decoded JSON value into a tagged EntityValue.
// Unknown shapes degrade to their fmt representation as a string.
func EntityFromAny(v any) EntityValue {
	switch t := v.(type) {
	case nil:
		return StringValue("")
	case string:
		return StringValue(strings.TrimSpace(t))
	case bool:
		return BoolValue(t)
	case float64:
		return NumberValue(t)
	case int:
		return NumberValue(float64(t))
	case int64:
		return NumberValue(float64(t))
	case map[string]any:
		m := make(map[string]EntityValue, len(t))
		for k, vv := range t {
			m[k] = EntityFromAny(vv)
		}
		return MapValue(m)
	default:
		return StringValue(fmt.Sprint(t))
	}
}

// EntitiesFromAny converts a flat decoded-JSON mapping.
func EntitiesFromAny(in map[string]any) map[string]EntityValue {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]EntityValue, len(in))
	for k, v := range in {
		key := strings.TrimSpace(k)
		if key == "" {
			continue
		}
		out[key] = EntityFromAny(v)
	}
	return out
}

// String renders the value for prompts, summaries, and logs.
func (v EntityValue) String() string {
	switch v.Kind {
	case EntityNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case EntityBool:
		return strconv.FormatBool(v.Bool)
	case EntityMap:
		parts := make([]string, 0, len(v.Map))
		for k, vv := range v.Map {
			parts = append(parts, k+"="+vv.String())
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return v.Str
	}
}

// Equal reports value equality for contradiction detection on
// collected fields. Map values compare by rendered form.
func (v EntityValue) Equal(other EntityValue) bool {
	if v.Kind != other.Kind {
		return v.String() == other.String()
	}
	switch v.Kind {
	case EntityNumber:
		return v.Num == other.Num
	case EntityBool:
		return v.Bool == other.Bool
	case EntityMap:
		return v.String() == other.String()
	default:
		return v.Str == other.Str
	}
}

// CloneEntities deep-copies an entity mapping.
func CloneEntities(in map[string]EntityValue) map[string]EntityValue {
	if in == nil {
		return nil
	}
	out := make(map[string]EntityValue, len(in))
	for k, v := range in {
		if v.Kind == EntityMap {
			v = MapValue(CloneEntities(v.Map))
		}
		out[k] = v
	}
	return out
}
