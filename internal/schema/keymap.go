package schema

import (
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// KeyColumnMap maps ordinal position to column name.
type KeyColumnMap map[int]string

// Columns returns the column names ordered by position.
func (m KeyColumnMap) Columns() []string {
	positions := make([]int, 0, len(m))
	for p := range m {
		positions = append(positions, p)
	}
	sort.Ints(positions)
	cols := make([]string, len(positions))
	for i, p := range positions {
		cols[i] = m[p]
	}
	return cols
}

// Contains reports whether the column is part of the key, ignoring case.
func (m KeyColumnMap) Contains(column string) bool {
	for _, c := range m {
		if strings.EqualFold(c, column) {
			return true
		}
	}
	return false
}

// NamedKey is a unique key or an index.
type NamedKey struct {
	Name    string       `yaml:"name"`
	Columns KeyColumnMap `yaml:"columns"`
}

// ColumnNames returns the key columns in position order.
func (k *NamedKey) ColumnNames() []string {
	return k.Columns.Columns()
}

// KeyMap is an insertion-ordered map of key name to NamedKey, used for
// unique keys and indexes.
type KeyMap struct {
	keys  []*NamedKey
	index map[string]*NamedKey
}

// NewKeyMap creates an empty key map.
func NewKeyMap() *KeyMap {
	return &KeyMap{index: make(map[string]*NamedKey)}
}

// Put records a column at a position of the named key, creating the key on first use.
func (m *KeyMap) Put(name string, position int, column string) {
	if m.index == nil {
		m.index = make(map[string]*NamedKey)
	}
	k, ok := m.index[name]
	if !ok {
		k = &NamedKey{Name: name, Columns: KeyColumnMap{}}
		m.index[name] = k
		m.keys = append(m.keys, k)
	}
	k.Columns[position] = column
}

// Get returns the named key.
func (m *KeyMap) Get(name string) (*NamedKey, bool) {
	if m == nil || m.index == nil {
		return nil, false
	}
	k, ok := m.index[name]
	return k, ok
}

// Has reports whether the named key exists.
func (m *KeyMap) Has(name string) bool {
	_, ok := m.Get(name)
	return ok
}

// Remove deletes the named key.
func (m *KeyMap) Remove(name string) {
	if _, ok := m.index[name]; !ok {
		return
	}
	delete(m.index, name)
	for i, k := range m.keys {
		if k.Name == name {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (m *KeyMap) Keys() []*NamedKey {
	if m == nil {
		return nil
	}
	out := make([]*NamedKey, len(m.keys))
	copy(out, m.keys)
	return out
}

// Names returns the key names in insertion order.
func (m *KeyMap) Names() []string {
	if m == nil {
		return nil
	}
	names := make([]string, len(m.keys))
	for i, k := range m.keys {
		names[i] = k.Name
	}
	return names
}

// Len returns the number of keys.
func (m *KeyMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

func (m *KeyMap) MarshalYAML() (interface{}, error) {
	return m.Keys(), nil
}

func (m *KeyMap) UnmarshalYAML(value *yaml.Node) error {
	var keys []*NamedKey
	if err := value.Decode(&keys); err != nil {
		return err
	}
	m.keys = nil
	m.index = make(map[string]*NamedKey, len(keys))
	for _, k := range keys {
		if k.Columns == nil {
			k.Columns = KeyColumnMap{}
		}
		m.index[k.Name] = k
		m.keys = append(m.keys, k)
	}
	return nil
}
