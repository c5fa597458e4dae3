package termite

import (
	"encoding/json"

	"github.com/mtytel/termite-go/internal/control"
)

// Snapshot captures every control's current value into a name->number
// map, matching spec.md §6's persisted patch format. Pure: no file I/O,
// which is the external collaborator's job.
func Snapshot(m control.Map) map[string]float64 {
	out := make(map[string]float64, len(m))
	for name, c := range m {
		out[name] = c.CurrentValue()
	}
	return out
}

// Apply writes each name's value onto the matching control via
// Control.Set, which clamps to the control's range. Unknown names
// in patch are ignored; control names absent from patch keep their
// current value.
func Apply(m control.Map, patch map[string]float64) {
	for name, v := range patch {
		if c, ok := m[name]; ok {
			c.Set(v)
		}
	}
}

// EncodePatch marshals a control-name -> number map to JSON, the file
// format the external patch collaborator reads/writes (spec.md §6).
func EncodePatch(patch map[string]float64) ([]byte, error) {
	return json.MarshalIndent(patch, "", "  ")
}

// DecodePatch parses a JSON control-name -> number map produced by
// EncodePatch.
func DecodePatch(data []byte) (map[string]float64, error) {
	var patch map[string]float64
	if err := json.Unmarshal(data, &patch); err != nil {
		return nil, err
	}
	return patch, nil
}
