package triangulation

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Carmen-Shannon/oxy-cone/engine/geometry"
)

// wireVertex detects missing fields: a nil coordinate was absent from the record.
type wireVertex struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
	Z *float64 `json:"z"`
}

// DecodeTriangles validates a response body and flattens it into vertex records.
// The body must be a JSON array whose elements are {x, y, z} records or further arrays of
// them, to any depth. Records are emitted in document order.
//
// Parameters:
//   - data: the response body
//
// Returns:
//   - geometry.TriangleList: the vertices, empty (not nil) for an empty array
//   - error: ErrMalformedResponse describing the first offending element
func DecodeTriangles(data []byte) (geometry.TriangleList, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		return nil, fmt.Errorf("%w: body is not a JSON array", ErrMalformedResponse)
	}
	list := geometry.TriangleList{}
	if err := flatten(json.RawMessage(data), "$", &list); err != nil {
		return nil, err
	}
	return list, nil
}

func flatten(raw json.RawMessage, path string, out *geometry.TriangleList) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return fmt.Errorf("%w: %s: empty element", ErrMalformedResponse, path)
	}

	switch raw[0] {
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(raw, &elems); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrMalformedResponse, path, err)
		}
		for i, e := range elems {
			if err := flatten(e, fmt.Sprintf("%s[%d]", path, i), out); err != nil {
				return err
			}
		}
		return nil

	case '{':
		var v wireVertex
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrMalformedResponse, path, err)
		}
		if v.X == nil || v.Y == nil || v.Z == nil {
			return fmt.Errorf("%w: %s: %w: want numeric x, y and z", ErrMalformedResponse, path, geometry.ErrMalformedVertex)
		}
		*out = append(*out, geometry.TriangleVertex{X: *v.X, Y: *v.Y, Z: *v.Z})
		return nil

	default:
		return fmt.Errorf("%w: %s: unexpected %s", ErrMalformedResponse, path, truncate(raw, 32))
	}
}
