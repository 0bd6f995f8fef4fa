package facet

import (
	"regexp"
	"sort"
	"strings"

	"github.com/utafrali/StorefrontFilterGo/internal/domain"
)

// ProcessOptions applies the shop's filter configuration to decoded option
// groups. Without a usable configuration (nil config, no options, or empty
// raw groups) the raw groups are returned unchanged.
//
// Published config options are walked in position order (stable, missing
// positions default behind all explicit ones). Each option is matched to its
// raw group by the first non-empty of variantOptionKey, optionType, and label,
// compared case-insensitively against the raw option names. Matched groups
// run through the value pipeline and are inserted under the raw name (never
// the config label) in config order. Raw groups no config option claimed are
// appended afterwards in their original order.
//
// A matched raw name is not consumed: two config options resolving to the
// same raw name both write that key, and the second silently overwrites the
// first. Known quirk, kept until product decides otherwise.
func ProcessOptions(raw *domain.OptionGroups, cfg *domain.FilterConfig) *domain.OptionGroups {
	if cfg == nil || len(cfg.Options) == 0 || raw.Len() == 0 {
		return raw
	}

	published := make([]domain.FilterOptionConfig, 0, len(cfg.Options))
	for _, opt := range cfg.Options {
		if opt.Status == domain.OptionStatusPublished {
			published = append(published, opt)
		}
	}
	sort.SliceStable(published, func(i, j int) bool {
		return published[i].EffectivePosition() < published[j].EffectivePosition()
	})

	// Request-scoped index from normalized raw name to the first raw name
	// that produced it, replacing a key scan per config option.
	rawIndex := make(map[string]string, raw.Len())
	for _, name := range raw.Keys() {
		norm := normalizeKey(name)
		if _, ok := rawIndex[norm]; !ok {
			rawIndex[norm] = name
		}
	}

	out := domain.NewOptionGroups()

	for i := range published {
		opt := &published[i]

		rawName, ok := matchRawName(rawIndex, opt)
		if !ok {
			continue
		}
		values, _ := raw.Get(rawName)
		if len(values) == 0 {
			continue
		}

		processed := processOptionValues(values, opt)
		if len(processed) > 0 {
			out.Set(rawName, processed)
		}
	}

	for _, name := range raw.Keys() {
		if out.Has(name) {
			continue
		}
		values, _ := raw.Get(name)
		if len(values) > 0 {
			out.Set(name, values)
		}
	}

	return out
}

// matchRawName resolves a config option to a raw option name by trying its
// match tiers in priority order. The first non-empty tier that hits a raw
// name wins; a tier that misses falls through to the next.
func matchRawName(rawIndex map[string]string, opt *domain.FilterOptionConfig) (string, bool) {
	for _, candidate := range []string{opt.OptionSettings.VariantOptionKey, opt.OptionType, opt.Label} {
		if strings.TrimSpace(candidate) == "" {
			continue
		}
		if rawName, ok := rawIndex[normalizeKey(candidate)]; ok {
			return rawName, true
		}
	}
	return "", false
}

// processOptionValues runs one matched raw group through the configured value
// pipeline: entitlement filtering, prefix/suffix stripping, text replacement,
// prefix allow-listing, similar-value grouping, casing, and count visibility.
func processOptionValues(values []domain.FacetValue, opt *domain.FilterOptionConfig) []domain.FacetValue {
	settings := opt.OptionSettings

	var allowed map[string]struct{}
	if opt.TargetScope == domain.TargetScopeEntitled && len(opt.AllowedOptions) > 0 {
		allowed = make(map[string]struct{}, len(opt.AllowedOptions))
		for _, a := range opt.AllowedOptions {
			allowed[normalizeKey(a)] = struct{}{}
		}
	}

	// Replacement patterns compile once per option, not per value. From is a
	// merchant-supplied regex; invalid patterns are skipped, never fatal.
	type replacement struct {
		re *regexp.Regexp
		to string
	}
	replacements := make([]replacement, 0, len(settings.ReplaceText))
	for _, r := range settings.ReplaceText {
		re, err := regexp.Compile("(?i)" + r.From)
		if err != nil {
			continue
		}
		replacements = append(replacements, replacement{re: re, to: r.To})
	}

	out := make([]domain.FacetValue, 0, len(values))

	for _, item := range values {
		original := strings.TrimSpace(item.Value)
		if original == "" {
			continue
		}

		if allowed != nil {
			if _, ok := allowed[normalizeKey(original)]; !ok {
				continue
			}
		}

		// The allow-list inspects the original value, before any stripping.
		if len(settings.FilterByPrefix) > 0 && !hasAnyPrefixFold(original, settings.FilterByPrefix) {
			continue
		}

		value := stripFirstPrefixFold(original, settings.RemovePrefix)
		value = stripFirstSuffixFold(value, settings.RemoveSuffix)
		for _, r := range replacements {
			value = r.re.ReplaceAllString(value, r.to)
		}

		out = append(out, domain.FacetValue{Value: value, Count: item.Count})
	}

	if settings.GroupBySimilarValues {
		out = GroupSimilarValues(out)
	}

	if settings.TextTransform != "" {
		for i := range out {
			out[i].Value = ApplyTextTransform(out[i].Value, settings.TextTransform)
		}
	}

	if !opt.CountsVisible() {
		for i := range out {
			out[i].Count = nil
		}
	}

	return out
}

// normalizeKey trims and lower-cases a name for case-insensitive comparison.
func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// hasPrefixFold reports whether s starts with prefix, ignoring case.
func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// hasSuffixFold reports whether s ends with suffix, ignoring case.
func hasSuffixFold(s, suffix string) bool {
	return len(s) >= len(suffix) && strings.EqualFold(s[len(s)-len(suffix):], suffix)
}

func hasAnyPrefixFold(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && hasPrefixFold(s, p) {
			return true
		}
	}
	return false
}

// stripFirstPrefixFold removes the first matching prefix from the list, then
// stops: at most one prefix is ever removed.
func stripFirstPrefixFold(s string, prefixes []string) string {
	for _, p := range prefixes {
		if p != "" && hasPrefixFold(s, p) {
			return s[len(p):]
		}
	}
	return s
}

// stripFirstSuffixFold removes the first matching suffix from the list, then
// stops: at most one suffix is ever removed.
func stripFirstSuffixFold(s string, suffixes []string) string {
	for _, suf := range suffixes {
		if suf != "" && hasSuffixFold(s, suf) {
			return s[:len(s)-len(suf)]
		}
	}
	return s
}
