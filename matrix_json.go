package exrplanes

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// matrixJSON is the wire form of Matrix.
type matrixJSON struct {
	Rows int         `json:"rows"`
	Cols int         `json:"cols"`
	Data jsonSamples `json:"data"`
}

// MarshalJSON encodes finite samples as numbers and NaN, +Inf and -Inf as the
// strings "NaN", "+Inf" and "-Inf".
func (m *Matrix) MarshalJSON() ([]byte, error) {
	return json.Marshal(matrixJSON{Rows: m.Rows, Cols: m.Cols, Data: m.Data})
}

// UnmarshalJSON accepts the form produced by MarshalJSON.
func (m *Matrix) UnmarshalJSON(data []byte) error {
	var v matrixJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	m.Rows, m.Cols, m.Data = v.Rows, v.Cols, v.Data
	return nil
}

type jsonSamples []float64

func (s jsonSamples) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	buf := make([]byte, 0, 2+len(s)*8)
	buf = append(buf, '[')
	for i, v := range s {
		if i > 0 {
			buf = append(buf, ',')
		}
		switch {
		case math.IsNaN(v):
			buf = append(buf, `"NaN"`...)
		case math.IsInf(v, 1):
			buf = append(buf, `"+Inf"`...)
		case math.IsInf(v, -1):
			buf = append(buf, `"-Inf"`...)
		default:
			buf = strconv.AppendFloat(buf, v, 'g', -1, 64)
		}
	}
	return append(buf, ']'), nil
}

func (s *jsonSamples) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*s = nil
		return nil
	}
	out := make([]float64, len(raw))
	for i, r := range raw {
		if len(r) > 0 && r[0] == '"' {
			var tok string
			if err := json.Unmarshal(r, &tok); err != nil {
				return err
			}
			switch tok {
			case "NaN":
				out[i] = math.NaN()
			case "+Inf", "Inf":
				out[i] = math.Inf(1)
			case "-Inf":
				out[i] = math.Inf(-1)
			default:
				return fmt.Errorf("sample %d: unknown token %q", i, tok)
			}
			continue
		}
		if err := json.Unmarshal(r, &out[i]); err != nil {
			return fmt.Errorf("sample %d: %w", i, err)
		}
	}
	*s = out
	return nil
}
