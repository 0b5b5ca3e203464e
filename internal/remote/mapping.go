package remote

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/desertthunder/carekeep/internal/models"
)

// WireRecord is a record in the collaborator's field layout.
type WireRecord map[string]any

// Field pairs a local field name with its wire name.
type Field struct {
	Local string
	Wire  string
}

// Mapping is the complete list of fields exchanged with the collaborator for one dataset.
type Mapping []Field

// ToWire converts a local record. Every mapped field is emitted; missing local values are null.
func (m Mapping) ToWire(local models.Fields) WireRecord {
	wire := make(WireRecord, len(m))
	for _, f := range m {
		wire[f.Wire] = local[f.Local]
	}
	return wire
}

// FromWire converts a wire record, keeping mapped fields only. A numeric id becomes its decimal string.
func (m Mapping) FromWire(wire WireRecord) models.Fields {
	local := make(models.Fields, len(m))
	for _, f := range m {
		v, ok := wire[f.Wire]
		if !ok {
			continue
		}
		if f.Local == "id" {
			v = normalizeID(v)
		}
		local[f.Local] = v
	}
	return local
}

// Wire returns the wire name for a local field, or "" when the field is unmapped.
func (m Mapping) Wire(local string) string {
	for _, f := range m {
		if f.Local == local {
			return f.Wire
		}
	}
	return ""
}

func normalizeID(v any) any {
	switch id := v.(type) {
	case json.Number:
		return id.String()
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case int:
		return strconv.Itoa(id)
	case int64:
		return strconv.FormatInt(id, 10)
	default:
		return v
	}
}

// Encode converts v into its wire record through its local JSON shape.
func Encode[T any](m Mapping, v T) (WireRecord, error) {
	local, err := models.ToFields(v)
	if err != nil {
		return nil, err
	}
	return m.ToWire(local), nil
}

// Decode converts a wire record into T. Null wire values leave the zero value in place.
func Decode[T any](m Mapping, wire WireRecord) (T, error) {
	v, err := models.FromFields[T](m.FromWire(wire))
	if err != nil {
		return v, fmt.Errorf("failed to map wire record: %w", err)
	}
	return v, nil
}

// DecodeAll converts every wire record, failing on the first one that cannot be decoded.
func DecodeAll[T any](m Mapping, wires []WireRecord) ([]T, error) {
	out := make([]T, 0, len(wires))
	for i, w := range wires {
		v, err := Decode[T](m, w)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}
