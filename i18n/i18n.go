// Package i18n resolves localized task names against a caller's language
// preference.
package i18n

import (
	"sort"

	"golang.org/x/text/language"
)

// Pick returns the best entry of names for the given Accept-Language header
// value. When nothing matches it falls back to the fallback language tag,
// and failing that to the alphabetically first entry, so a task always has
// some displayable name.
func Pick(names map[string]string, accept, fallback string) string {
	if len(names) == 0 {
		return ""
	}

	keys := make([]string, 0, len(names))
	for k := range names {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var tags []language.Tag
	var tagKeys []string
	for _, k := range keys {
		tag, err := language.Parse(k)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
		tagKeys = append(tagKeys, k)
	}

	if len(tags) > 0 && accept != "" {
		wanted, _, err := language.ParseAcceptLanguage(accept)
		if err == nil && len(wanted) > 0 {
			matcher := language.NewMatcher(tags)
			if _, index, conf := matcher.Match(wanted...); conf > language.No {
				return names[tagKeys[index]]
			}
		}
	}

	if name, ok := names[fallback]; ok {
		return name
	}
	return names[keys[0]]
}
