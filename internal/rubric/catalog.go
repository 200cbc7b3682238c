// Package rubric scores generated exercises against a fixed rubric of
// five dimensions and fifteen items.
package rubric

// Item is one scored criterion.
type Item struct {
	Code        string
	Dimension   string
	Description string
}

// Dimension groups related items.
type Dimension struct {
	Code  string
	Name  string
	Items []Item
}

// MinItemScore and MaxItemScore bound every item score.
const (
	MinItemScore = 0
	MaxItemScore = 2
)

// dimensions is the rubric in canonical order.
var dimensions = []Dimension{
	{
		Code: "T",
		Name: "Text quality",
		Items: []Item{
			{Code: "T1", Description: "The wording is clear, grammatical and free of ambiguity"},
			{Code: "T2", Description: "Terminology is used consistently throughout the description"},
		},
	},
	{
		Code: "D",
		Name: "Domain",
		Items: []Item{
			{Code: "D1", Description: "The domain is realistic and familiar to students"},
			{Code: "D2", Description: "The description is self-contained; no outside knowledge is needed"},
			{Code: "D3", Description: "The amount of modeling work matches the requested length"},
			{Code: "D4", Description: "The modeling difficulty matches the requested difficulty level"},
		},
	},
	{
		Code: "S",
		Name: "Study goal",
		Items: []Item{
			{Code: "S1", Description: "The exercise targets the requested misconception"},
			{Code: "S2", Description: "A student holding the misconception would plausibly make the mistake"},
			{Code: "S3", Description: "The description does not give away the correct modeling decision"},
		},
	},
	{
		Code: "L",
		Name: "Learning objectives",
		Items: []Item{
			{Code: "L1", Description: "Learning objectives are concrete and checkable"},
			{Code: "L2", Description: "Learning objectives are aligned with the problem description"},
		},
	},
	{
		Code: "P",
		Name: "Pedagogical fit",
		Items: []Item{
			{Code: "P1", Description: "The exercise is solvable with the requested diagram type"},
			{Code: "P2", Description: "A reference solution is reasonably unambiguous"},
			{Code: "P3", Description: "The exercise exercises classes, attributes and relationships"},
			{Code: "P4", Description: "The exercise is appropriate for undergraduate software engineering students"},
		},
	},
}

// itemDimension maps each item code to its dimension code.
var itemDimension map[string]string

func init() {
	itemDimension = make(map[string]string)
	for i := range dimensions {
		d := &dimensions[i]
		for j := range d.Items {
			d.Items[j].Dimension = d.Code
			itemDimension[d.Items[j].Code] = d.Code
		}
	}
}

// Dimensions returns the rubric in canonical order.
func Dimensions() []Dimension {
	out := make([]Dimension, len(dimensions))
	for i, d := range dimensions {
		out[i] = Dimension{Code: d.Code, Name: d.Name, Items: append([]Item(nil), d.Items...)}
	}
	return out
}

// ItemCodes returns all fifteen item codes in canonical order.
func ItemCodes() []string {
	var codes []string
	for _, d := range dimensions {
		for _, it := range d.Items {
			codes = append(codes, it.Code)
		}
	}
	return codes
}

// DimensionOf returns the dimension code of an item, or "" if unknown.
func DimensionOf(item string) string {
	return itemDimension[item]
}
