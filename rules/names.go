package rules

import (
	"slices"
	"strings"
)

// named is anything that builds or is a building of some kind.
type named interface {
	TypeName() string
}

// nameIs matches building names the way the game server does, ignoring case.
func nameIs[T named](name string) func(T) bool {
	return func(item T) bool { return strings.EqualFold(item.TypeName(), name) }
}

func hasNamed[T named](items []T, name string) bool {
	return slices.ContainsFunc(items, nameIs[T](name))
}

func countNamed[T named](items []T, name string) int {
	n := 0
	match := nameIs[T](name)
	for _, item := range items {
		if match(item) {
			n++
		}
	}
	return n
}

// hasAnyNamed reports whether items holds at least one of names.
func hasAnyNamed[T named](items []T, names []string) bool {
	return slices.ContainsFunc(names, func(name string) bool { return hasNamed(items, name) })
}

// Residence names offered on the public maps.
const (
	Apartments         = "Apartments"
	ModernApartments   = "ModernApartments"
	Cabin              = "Cabin"
	EnvironmentalHouse = "EnvironmentalHouse"
	HighRise           = "HighRise"
	LuxuryResidence    = "LuxuryResidence"
)

// ResidenceNames lists the known residences.
func ResidenceNames() []string {
	return []string{Cabin, Apartments, ModernApartments, EnvironmentalHouse, HighRise, LuxuryResidence}
}
