package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/lib/pq"
)

// IDs is a reference set stored as a TEXT[] column.
type IDs []string

func (ids *IDs) Scan(src interface{}) error {
	var arr pq.StringArray
	if err := arr.Scan(src); err != nil {
		return err
	}
	*ids = IDs(arr)
	return nil
}

func (ids IDs) Value() (driver.Value, error) {
	if ids == nil {
		return "{}", nil
	}
	return pq.StringArray(ids).Value()
}

// MarshalJSON writes an empty set as [] rather than null.
func (ids IDs) MarshalJSON() ([]byte, error) {
	if ids == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(ids))
}

func (ids IDs) Has(id string) bool {
	return slices.Contains(ids, id)
}

type Question struct {
	Text    string   `json:"text" validate:"required"`
	Options []string `json:"options" validate:"min=2,dive,required"`
	// CorrectOption is omitted from responses shown to test takers.
	CorrectOption *int `json:"correctOption,omitempty" validate:"required"`
}

// Questions is stored as JSONB.
type Questions []Question

func (q *Questions) Scan(src interface{}) error {
	if src == nil {
		*q = Questions{}
		return nil
	}
	switch s := src.(type) {
	case []byte:
		if len(s) == 0 {
			*q = Questions{}
			return nil
		}
		return json.Unmarshal(s, q)
	case string:
		if s == "" {
			*q = Questions{}
			return nil
		}
		return json.Unmarshal([]byte(s), q)
	default:
		return fmt.Errorf("unsupported data type: %T", src)
	}
}

func (q Questions) Value() (driver.Value, error) {
	if q == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(q)
}

// WithoutAnswers returns a copy with the correct options removed.
func (q Questions) WithoutAnswers() Questions {
	out := make(Questions, len(q))
	for i, question := range q {
		out[i] = Question{
			Text:    question.Text,
			Options: slices.Clone(question.Options),
		}
	}
	return out
}
