package domain

import (
	"bytes"
	"encoding/json"
)

// Bucket is a single aggregation bucket as returned by the search engine.
type Bucket struct {
	Key      string `json:"key"`
	DocCount int64  `json:"doc_count"`
}

// BucketAggregation is a terms aggregation result (a list of buckets).
type BucketAggregation struct {
	Buckets []Bucket `json:"buckets"`
}

// RangeAggregation holds the min/max stats of a numeric aggregation.
// Both bounds are nil when the aggregation matched no documents.
type RangeAggregation struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// FacetAggregations is the raw aggregation response produced by the search
// engine for one storefront query. Option pairs arrive as a single bucket
// list whose keys encode "name<sep>value" with a reserved separator.
type FacetAggregations struct {
	Vendors           *BucketAggregation `json:"vendors,omitempty"`
	ProductTypes      *BucketAggregation `json:"productTypes,omitempty"`
	Tags              *BucketAggregation `json:"tags,omitempty"`
	Collections       *BucketAggregation `json:"collections,omitempty"`
	OptionPairs       *BucketAggregation `json:"optionPairs,omitempty"`
	PriceRange        *RangeAggregation  `json:"priceRange,omitempty"`
	VariantPriceRange *RangeAggregation  `json:"variantPriceRange,omitempty"`
}

// FacetValue is one selectable value of a facet. Count is a pointer so that
// "count hidden" serializes as an omitted key rather than null or zero.
type FacetValue struct {
	Value string `json:"value"`
	Count *int64 `json:"count,omitempty"`
}

// PriceRange is the min/max price facet served to the storefront.
type PriceRange struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// ProductFilters is the shaped facet payload served to the storefront widget.
// Every key is present only when it has content.
type ProductFilters struct {
	Vendors           []FacetValue  `json:"vendors,omitempty"`
	ProductTypes      []FacetValue  `json:"productTypes,omitempty"`
	Tags              []FacetValue  `json:"tags,omitempty"`
	Collections       []FacetValue  `json:"collections,omitempty"`
	Options           *OptionGroups `json:"options,omitempty"`
	PriceRange        *PriceRange   `json:"priceRange,omitempty"`
	VariantPriceRange *PriceRange   `json:"variantPriceRange,omitempty"`
}

// IsEmpty reports whether no facet survived shaping.
func (f *ProductFilters) IsEmpty() bool {
	return len(f.Vendors) == 0 &&
		len(f.ProductTypes) == 0 &&
		len(f.Tags) == 0 &&
		len(f.Collections) == 0 &&
		(f.Options == nil || f.Options.Len() == 0) &&
		f.PriceRange == nil &&
		f.VariantPriceRange == nil
}

// OptionGroups is an insertion-ordered map from raw option name to facet
// values. Go maps do not preserve insertion order (and encoding/json marshals
// map keys sorted), so the filter payload ordering (config position order
// first, unmatched raw groups after) needs an explicit type.
type OptionGroups struct {
	keys   []string
	groups map[string][]FacetValue
}

// NewOptionGroups creates an empty ordered option map.
func NewOptionGroups() *OptionGroups {
	return &OptionGroups{groups: make(map[string][]FacetValue)}
}

// Len returns the number of option groups.
func (g *OptionGroups) Len() int {
	if g == nil {
		return 0
	}
	return len(g.keys)
}

// Keys returns the option names in insertion order.
func (g *OptionGroups) Keys() []string {
	if g == nil {
		return nil
	}
	out := make([]string, len(g.keys))
	copy(out, g.keys)
	return out
}

// Get returns the values stored under the given option name.
func (g *OptionGroups) Get(name string) ([]FacetValue, bool) {
	if g == nil {
		return nil, false
	}
	v, ok := g.groups[name]
	return v, ok
}

// Has reports whether the option name is present.
func (g *OptionGroups) Has(name string) bool {
	if g == nil {
		return false
	}
	_, ok := g.groups[name]
	return ok
}

// Set stores values under the given option name. A new name is appended to
// the key order; an existing name keeps its original slot and its values are
// overwritten.
func (g *OptionGroups) Set(name string, values []FacetValue) {
	if _, ok := g.groups[name]; !ok {
		g.keys = append(g.keys, name)
	}
	g.groups[name] = values
}

// MarshalJSON serializes the groups as a JSON object in insertion order.
func (g *OptionGroups) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range g.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		valJSON, err := json.Marshal(g.groups[key])
		if err != nil {
			return nil, err
		}
		buf.Write(valJSON)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON restores the groups from a JSON object. Key order follows the
// document order of the object.
func (g *OptionGroups) UnmarshalJSON(data []byte) error {
	g.keys = nil
	g.groups = make(map[string][]FacetValue)

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok != json.Delim('{') {
		return &json.UnmarshalTypeError{Value: "non-object", Type: nil}
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key := keyTok.(string)
		var values []FacetValue
		if err := dec.Decode(&values); err != nil {
			return err
		}
		g.Set(key, values)
	}
	_, err = dec.Token()
	return err
}
