package core

import "footfall_service/internal/domain/model"

// UnseenCode is assigned to categorical values not present at training
// time. First-seen codes start at 0, so -1 never collides; this also
// keeps it distinct from the legitimate "Unknown" district/state rows
// that the importer produces, which get a real code of their own.
const UnseenCode = -1

// Columns that carry categorical encodings.
const (
	colCategory = "center_category"
	colDistrict = "district"
	colState    = "state"
)

// Encoder assigns stable integer codes to categorical values. The
// center category uses a fixed table; district and state get codes in
// first-seen order during the training pass. The resulting map is
// captured in the model artifact and reused verbatim at inference.
type Encoder struct {
	codes model.EncodingMap
}

// NewEncoder creates an encoder with the fixed category table and
// empty district/state maps, ready for a training pass.
func NewEncoder() *Encoder {
	return &Encoder{codes: model.EncodingMap{
		colCategory: {
			string(model.CategoryRural):     0,
			string(model.CategorySemiUrban): 1,
			string(model.CategoryUrban):     2,
		},
		colDistrict: {},
		colState:    {},
	}}
}

// NewEncoderFromMap restores an encoder from a persisted map.
func NewEncoderFromMap(m model.EncodingMap) *Encoder {
	e := NewEncoder()
	for column, values := range m {
		if e.codes[column] == nil {
			e.codes[column] = make(map[string]int, len(values))
		}
		for value, code := range values {
			e.codes[column][value] = code
		}
	}
	return e
}

// FitCode returns the code for a value, assigning the next first-seen
// code if the value is new. Used only during the training pass.
func (e *Encoder) FitCode(column, value string) int {
	values, ok := e.codes[column]
	if !ok {
		values = make(map[string]int)
		e.codes[column] = values
	}
	if code, ok := values[value]; ok {
		return code
	}
	code := len(values)
	values[value] = code
	return code
}

// Code returns the training-time code for a value, or UnseenCode when
// the value was never seen. Never fails.
func (e *Encoder) Code(column, value string) int {
	if code, ok := e.codes[column][value]; ok {
		return code
	}
	return UnseenCode
}

// Map returns a deep copy of the encoding map for persistence.
func (e *Encoder) Map() model.EncodingMap {
	out := make(model.EncodingMap, len(e.codes))
	for column, values := range e.codes {
		out[column] = make(map[string]int, len(values))
		for value, code := range values {
			out[column][value] = code
		}
	}
	return out
}
