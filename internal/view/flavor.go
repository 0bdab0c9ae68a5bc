package view

import (
	"fmt"
	"sort"
)

// Flavor selects the vocabulary of the rendered document.
type Flavor struct {
	// Name identifies the flavor on the command line.
	Name string
	// Language is written to the document's Language field.
	Language string
	// NamespacePrefix is prepended to the service title.
	NamespacePrefix string
	// ModelKeyword opens body model blocks ("model Foo {").
	ModelKeyword string
	// MapFormat renders a map type from its value type.
	MapFormat string
}

const DefaultFlavor = "llc"

var flavors = make(map[string]Flavor)

func init() {
	RegisterFlavor(Flavor{
		Name:            "llc",
		Language:        "LLC",
		NamespacePrefix: "Azure.",
		ModelKeyword:    "model",
		MapFormat:       "Map<str, %s>",
	})
	RegisterFlavor(Flavor{
		Name:            "protocol",
		Language:        "Protocol",
		NamespacePrefix: "Azure.",
		ModelKeyword:    "class",
		MapFormat:       "dict[str, %s]",
	})
}

// RegisterFlavor adds or replaces a flavor.
func RegisterFlavor(f Flavor) {
	flavors[f.Name] = f
}

// LookupFlavor returns the flavor registered under name.
func LookupFlavor(name string) (Flavor, error) {
	f, ok := flavors[name]
	if !ok {
		return Flavor{}, fmt.Errorf("unknown flavor %q (available: %v)", name, Flavors())
	}
	return f, nil
}

// Flavors returns the registered flavor names, sorted.
func Flavors() []string {
	names := make([]string, 0, len(flavors))
	for name := range flavors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (f Flavor) orDefault() Flavor {
	if f.Name == "" {
		return flavors[DefaultFlavor]
	}
	return f
}
