package models

// Facet is one statistical view of a stats panel.
type Facet struct {
	// Name is the label shown on the page and written to artifacts.
	Name string `json:"name"`
	// Key is the suffix the page uses in control and region identifiers.
	Key string `json:"key"`
}

// Facets is the fixed extraction order.
var Facets = []Facet{
	{Name: "Summary", Key: "summary"},
	{Name: "Passing", Key: "passing"},
	{Name: "Pass Types", Key: "passing_types"},
	{Name: "Defensive Actions", Key: "defense"},
	{Name: "Possession", Key: "possession"},
	{Name: "Miscellaneous Stats", Key: "misc"},
}

// FacetByKey looks a facet up by its key.
func FacetByKey(key string) (Facet, bool) {
	for _, f := range Facets {
		if f.Key == key {
			return f, true
		}
	}
	return Facet{}, false
}

// FacetRow is one extracted player record of one facet.
type FacetRow struct {
	PlayerName string   `json:"player_name" bson:"player_name"`
	TeamLabel  string   `json:"team_label" bson:"team_label"`
	FacetName  string   `json:"facet_name" bson:"facet_name"`
	Cells      []string `json:"cells" bson:"cells"`
}

// ArtifactHeader is the column header of every per-fixture artifact.
var ArtifactHeader = []string{"playerName", "teamLabel", "facetName", "cells"}
