package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Metadata collections. Every section and collection of the database has a
// companion collection holding a single descriptive document.
const (
	SectionInfoPrefix    = "_sectionInfo."
	CollectionInfoPrefix = "_collectionInfo."

	// MetadataVersion is the schema version suffix of metadata document ids.
	MetadataVersion = "2.1"
)

// SectionInfoCollection returns the metadata collection of a section.
func SectionInfoCollection(section string) string {
	return SectionInfoPrefix + section
}

// CollectionInfoCollection returns the metadata collection of a collection.
func CollectionInfoCollection(collection string) string {
	return CollectionInfoPrefix + collection
}

// MetadataID returns the _id of the metadata document for name.
func MetadataID(name string) string {
	return name + "." + MetadataVersion
}

// IsMetadataCollection reports whether name is a section or collection
// metadata collection.
func IsMetadataCollection(name string) bool {
	return strings.HasPrefix(name, SectionInfoPrefix) || strings.HasPrefix(name, CollectionInfoPrefix)
}

// Person is an author, contributor or maintainer.
type Person struct {
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	Affiliation string `json:"affiliation,omitempty"`
	Remark      string `json:"remark,omitempty"`
}

func (p Person) String() string {
	if p.Email == "" {
		return p.Name
	}
	return fmt.Sprintf("%s <%s>", p.Name, p.Email)
}

// PeopleFrom reads people from a metadata value. Sections store a single
// record, collections a list of records; bare strings are taken as names.
func PeopleFrom(v any) []Person {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		return []Person{{Name: x}}
	case []any:
		var out []Person
		for _, e := range x {
			out = append(out, PeopleFrom(e)...)
		}
		return out
	default:
		rec, ok := asRecord(v)
		if !ok {
			return nil
		}
		return []Person{{
			Name:        stringField(rec, "name"),
			Email:       stringField(rec, "email"),
			Affiliation: stringField(rec, "affiliation"),
			Remark:      stringField(rec, "remark"),
		}}
	}
}

// SectionInfo describes a section.
type SectionInfo struct {
	Name        string   `json:"name"`
	Maintainers []Person `json:"maintainer,omitempty"`
	Description string   `json:"description,omitempty"`
	Depth       int      `json:"sectionDepth"`
	Sections    []string `json:"sections"`
	Collections []string `json:"collections"`
}

// SectionInfoFrom builds section metadata from its stored document.
// Sections and Collections are filled in by the caller.
func SectionInfoFrom(name string, doc Document) *SectionInfo {
	info := &SectionInfo{
		Name:        name,
		Maintainers: PeopleFrom(doc["maintainer"]),
		Description: stringField(doc, "description"),
	}
	if d, ok := intField(doc["sectionDepth"]); ok {
		info.Depth = d
	}
	return info
}

// CollectionInfo describes a collection.
type CollectionInfo struct {
	Name         string   `json:"name"`
	Authors      []Person `json:"author,omitempty"`
	Contributors []Person `json:"contributor,omitempty"`
	Maintainers  []Person `json:"maintainer,omitempty"`
	References   []any    `json:"references,omitempty"`
	Description  string   `json:"description,omitempty"`
}

// CollectionInfoFrom builds collection metadata from its stored document.
func CollectionInfoFrom(name string, doc Document) *CollectionInfo {
	info := &CollectionInfo{
		Name:         name,
		Authors:      PeopleFrom(doc["author"]),
		Contributors: PeopleFrom(doc["contributor"]),
		Maintainers:  PeopleFrom(doc["maintainer"]),
		Description:  stringField(doc, "description"),
	}
	switch refs := doc["references"].(type) {
	case []any:
		info.References = refs
	case nil:
	default:
		info.References = []any{refs}
	}
	return info
}

// SectionTree is the nested hierarchy of subsections below a section.
type SectionTree map[string]SectionTree

// Insert adds a dot-separated section path to the tree.
func (t SectionTree) Insert(path string) {
	node := t
	for _, part := range strings.Split(path, ".") {
		if part == "" {
			continue
		}
		child, ok := node[part]
		if !ok {
			child = SectionTree{}
			node[part] = child
		}
		node = child
	}
}

// Names returns the top-level names in sorted order.
func (t SectionTree) Names() []string {
	out := make([]string, 0, len(t))
	for k := range t {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func stringField(rec map[string]any, key string) string {
	switch s := rec[key].(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprint(s)
	}
}

func intField(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), n == float64(int(n))
	default:
		return 0, false
	}
}
