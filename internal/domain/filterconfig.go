package domain

import (
	"time"
)

// Target scopes for a configured filter option.
const (
	TargetScopeAll      = "all"
	TargetScopeEntitled = "entitled"
)

// Publication status of a configured filter option.
const (
	OptionStatusPublished = "published"
	OptionStatusDraft     = "draft"
)

// Text transforms applied to facet values after grouping.
const (
	TransformNone       = "none"
	TransformCapitalize = "capitalize"
	TransformUppercase  = "uppercase"
	TransformLowercase  = "lowercase"
	TransformTitle      = "title"
)

// DefaultOptionPosition is assumed when a configured option has no explicit
// position, pushing it behind all explicitly positioned entries.
const DefaultOptionPosition = 999

// TextReplacement is a single find/replace rule applied to facet values.
// From is interpreted as a case-insensitive regular expression.
type TextReplacement struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// OptionSettings holds the per-option value transforms authored by the
// merchant. The zero value applies no transforms, so a missing settings
// object degrades to pass-through behavior.
type OptionSettings struct {
	VariantOptionKey     string            `json:"variantOptionKey,omitempty"`
	RemovePrefix         []string          `json:"removePrefix,omitempty"`
	RemoveSuffix         []string          `json:"removeSuffix,omitempty"`
	ReplaceText          []TextReplacement `json:"replaceText,omitempty"`
	FilterByPrefix       []string          `json:"filterByPrefix,omitempty"`
	GroupBySimilarValues bool              `json:"groupBySimilarValues,omitempty"`
	TextTransform        string            `json:"textTransform,omitempty"`
}

// FilterOptionConfig is one merchant-authored rule describing how a facet
// should be matched, filtered, transformed, and displayed.
type FilterOptionConfig struct {
	Label          string         `json:"label"`
	OptionType     string         `json:"optionType"`
	TargetScope    string         `json:"targetScope"`
	AllowedOptions []string       `json:"allowedOptions,omitempty"`
	ShowCount      *bool          `json:"showCount,omitempty"`
	Position       *int           `json:"position,omitempty"`
	Status         string         `json:"status"`
	OptionSettings OptionSettings `json:"optionSettings"`
}

// EffectivePosition returns the sort position, defaulting when absent.
func (o *FilterOptionConfig) EffectivePosition() int {
	if o.Position == nil {
		return DefaultOptionPosition
	}
	return *o.Position
}

// CountsVisible reports whether facet counts are shown for this option.
// Counts are stripped only on an explicit showCount false; a config stored
// without the field keeps them.
func (o *FilterOptionConfig) CountsVisible() bool {
	return o.ShowCount == nil || *o.ShowCount
}

// FilterConfig is the shop-specific ordered set of filter option rules.
// At most one config per shop is active at a time; Version is bumped on
// every update and participates in cache keys.
type FilterConfig struct {
	ID        string               `json:"id"`
	Shop      string               `json:"shop"`
	Name      string               `json:"name"`
	Active    bool                 `json:"active"`
	Version   int                  `json:"version"`
	Options   []FilterOptionConfig `json:"options"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

// StorefrontFilterOption is the slimmed-down shape of a published option as
// consumed by the theme widget.
type StorefrontFilterOption struct {
	Label      string `json:"label"`
	OptionType string `json:"optionType"`
	ShowCount  bool   `json:"showCount"`
	Position   int    `json:"position"`
}

// StorefrontFilterConfig is the widget-facing projection of a FilterConfig.
type StorefrontFilterConfig struct {
	ID      string                   `json:"id"`
	Shop    string                   `json:"shop"`
	Version int                      `json:"version"`
	Options []StorefrontFilterOption `json:"options"`
}
