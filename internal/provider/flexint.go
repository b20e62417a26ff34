package provider

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// FlexibleInt64 parses int, float (scientific notation) or quoted number to int64.
type FlexibleInt64 int64

// UnmarshalJSON parses int or float
func (f *FlexibleInt64) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		val, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return err
		}
		*f = FlexibleInt64(int64(val))
		return nil
	}

	var floatVal float64
	if err := json.Unmarshal(data, &floatVal); err == nil {
		*f = FlexibleInt64(int64(floatVal))
		return nil
	}

	var intVal int64
	if err := json.Unmarshal(data, &intVal); err == nil {
		*f = FlexibleInt64(intVal)
		return nil
	}

	return fmt.Errorf("cannot parse as int64: %s", string(data))
}

// Volume converts an optional provider volume to the bar representation.
func (f *FlexibleInt64) Volume() *int64 {
	if f == nil {
		return nil
	}
	v := int64(*f)
	if v < 0 {
		v = 0
	}
	return &v
}
