package reader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/tigerroll/graphload/pkg/batch/core/domain/model"
)

// ErrNotObject is the cause of a DecodeError for valid JSON that is not an object.
var ErrNotObject = errors.New("record is not a JSON object")

// DecodeError reports a line that could not be decoded into a record.
// It is always fatal for the job.
type DecodeError struct {
	// Line is the 1-based line number in the source.
	Line int
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("malformed record on line %d: %v", e.Line, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// DecodeLine decodes one line into a record. Numbers are kept as json.Number.
// The line must hold exactly one JSON object.
func DecodeLine(line []byte) (model.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil, ErrNotObject
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after record")
	}
	return model.Record(obj), nil
}
