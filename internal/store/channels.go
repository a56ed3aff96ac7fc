package store

import (
	"encoding/json"
	"slices"
)

// ChannelSet is an immutable set of channel names kept sorted. The zero
// value is the empty set, meaning "no channel restriction".
type ChannelSet struct {
	names []string
}

func NewChannelSet(names ...string) ChannelSet {
	if len(names) == 0 {
		return ChannelSet{}
	}
	out := slices.Clone(names)
	slices.Sort(out)
	return ChannelSet{names: slices.Compact(out)}
}

func (c ChannelSet) Len() int { return len(c.names) }

func (c ChannelSet) Contains(name string) bool {
	_, ok := slices.BinarySearch(c.names, name)
	return ok
}

// Toggle returns a set with name added when absent or removed when present.
func (c ChannelSet) Toggle(name string) ChannelSet {
	i, ok := slices.BinarySearch(c.names, name)
	if ok {
		if len(c.names) == 1 {
			return ChannelSet{}
		}
		return ChannelSet{names: slices.Delete(slices.Clone(c.names), i, i+1)}
	}
	return ChannelSet{names: slices.Insert(slices.Clone(c.names), i, name)}
}

// Values returns a copy of the members in ascending order.
func (c ChannelSet) Values() []string { return slices.Clone(c.names) }

func (c ChannelSet) Equal(o ChannelSet) bool { return slices.Equal(c.names, o.names) }

func (c ChannelSet) MarshalJSON() ([]byte, error) {
	if c.names == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.names)
}

func (c *ChannelSet) UnmarshalJSON(b []byte) error {
	var names []string
	if err := json.Unmarshal(b, &names); err != nil {
		return err
	}
	*c = NewChannelSet(names...)
	return nil
}
