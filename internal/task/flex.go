package task

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FlexStrings is an ordered, deduplicated set of strings whose JSON shape
// collapses to a plain string when it holds exactly one value. Single-source
// tasks therefore expose scalar provenance fields; merged tasks expose
// arrays. Internally it is always a proper set.
type FlexStrings []string

// NewFlexStrings builds a set from the given values, dropping empties and
// duplicates while preserving first-seen order.
func NewFlexStrings(values ...string) FlexStrings {
	var fs FlexStrings
	for _, v := range values {
		fs = fs.Add(v)
	}
	return fs
}

// Add returns the set with v appended unless v is empty or already present.
func (fs FlexStrings) Add(v string) FlexStrings {
	v = strings.TrimSpace(v)
	if v == "" {
		return fs
	}
	for _, existing := range fs {
		if existing == v {
			return fs
		}
	}
	return append(fs, v)
}

// Union returns the deduplicated union of fs and other, preserving order.
func (fs FlexStrings) Union(other FlexStrings) FlexStrings {
	out := fs.Clone()
	for _, v := range other {
		out = out.Add(v)
	}
	return out
}

// Contains reports whether v is in the set.
func (fs FlexStrings) Contains(v string) bool {
	for _, existing := range fs {
		if existing == v {
			return true
		}
	}
	return false
}

// First returns the first value, or "" for an empty set.
func (fs FlexStrings) First() string {
	if len(fs) == 0 {
		return ""
	}
	return fs[0]
}

// Clone returns an independent copy.
func (fs FlexStrings) Clone() FlexStrings {
	if fs == nil {
		return nil
	}
	return append(FlexStrings(nil), fs...)
}

// MarshalJSON collapses a singleton set to a bare string.
func (fs FlexStrings) MarshalJSON() ([]byte, error) {
	if len(fs) == 1 {
		return json.Marshal(fs[0])
	}
	return json.Marshal([]string(fs))
}

// UnmarshalJSON accepts either a bare string or an array of strings.
func (fs *FlexStrings) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*fs = NewFlexStrings(single)
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("flex strings: expected string or array: %w", err)
	}
	*fs = NewFlexStrings(many...)
	return nil
}

// UnmarshalYAML mirrors the JSON behavior for configuration files.
func (fs *FlexStrings) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var single string
	if err := unmarshal(&single); err == nil {
		*fs = NewFlexStrings(single)
		return nil
	}
	var many []string
	if err := unmarshal(&many); err != nil {
		return fmt.Errorf("flex strings: expected string or sequence: %w", err)
	}
	*fs = NewFlexStrings(many...)
	return nil
}
