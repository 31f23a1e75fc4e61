package models

import (
	"bytes"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// GenericRecord is the untyped read target. Columns named after one of its
// reserved fields (ID, Name, Tags) are assigned to that field; every other
// column lands in CustomData.
type GenericRecord struct {
	// ID identifies the record. A fresh ID is assigned unless the row carries one.
	ID uuid.UUID `json:"id"`
	// Name is the record name.
	Name string `json:"name,omitempty"`
	// Tags holds free-form labels.
	Tags []string `json:"tags,omitempty"`
	// CustomData holds the remaining columns in header order.
	CustomData *OrderedMap `json:"custom_data,omitempty"`
}

// NewGenericRecord creates an empty record with a new ID.
func NewGenericRecord() *GenericRecord {
	return &GenericRecord{
		ID:         uuid.New(),
		CustomData: NewOrderedMap(),
	}
}

// OrderedMap is a string-keyed map that remembers insertion order.
type OrderedMap struct {
	keys   []string
	values map[string]interface{}
}

// NewOrderedMap creates an empty OrderedMap.
func NewOrderedMap() *OrderedMap {
	return &OrderedMap{values: make(map[string]interface{})}
}

// Set stores value under key. Existing keys keep their position.
func (m *OrderedMap) Set(key string, value interface{}) {
	if m.values == nil {
		m.values = make(map[string]interface{})
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value stored under key.
func (m *OrderedMap) Get(key string) (interface{}, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (m *OrderedMap) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

// Len returns the number of entries.
func (m *OrderedMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// MarshalJSON encodes the map as a JSON object with keys in insertion order.
func (m *OrderedMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
