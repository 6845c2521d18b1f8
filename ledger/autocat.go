/*
autocat.go - Keyword rules that categorize operations from their note
*/
package ledger

import "strings"

// NormalizeAutoCatRules drops rules without id, keyword, or category and
// defaults the match mode, mirroring what load-time normalization of old
// data sets must tolerate.
func NormalizeAutoCatRules(rules []AutoCatRule) []AutoCatRule {
	out := make([]AutoCatRule, 0, len(rules))
	for _, r := range rules {
		r.Keyword = CleanName(r.Keyword)
		r.Category = CleanName(r.Category)
		if r.ID == "" || r.Keyword == "" || r.Category == "" {
			continue
		}
		if r.MatchMode != MatchWord {
			r.MatchMode = MatchContains
		}
		out = append(out, r)
	}
	return out
}

// RuleMatches reports whether a rule's keyword matches a note.
// Matching is case-insensitive; "word" mode requires a whole-word hit.
func RuleMatches(r AutoCatRule, note string) bool {
	if !r.Enabled {
		return false
	}
	haystack := strings.ToLower(note)
	needle := strings.ToLower(r.Keyword)
	if needle == "" {
		return false
	}
	if r.MatchMode == MatchWord {
		for _, w := range strings.FieldsFunc(haystack, func(c rune) bool {
			return !('a' <= c && c <= 'z' || '0' <= c && c <= '9')
		}) {
			if w == needle {
				return true
			}
		}
		return false
	}
	return strings.Contains(haystack, needle)
}

// ApplyAutoCatRules rewrites the category of operations whose note
// matches an enabled rule. Transfer legs keep their reserved category.
// First matching rule wins. Returns the updated set and how many
// operations changed.
func ApplyAutoCatRules(rules []AutoCatRule, ops []Operation) ([]Operation, int) {
	rules = NormalizeAutoCatRules(rules)
	changed := 0
	out := make([]Operation, len(ops))
	for i, o := range ops {
		if !o.Kind.IsTransferLeg() {
			for _, r := range rules {
				if RuleMatches(r, o.Note) {
					if o.Category != r.Category {
						o.Category = r.Category
						changed++
					}
					break
				}
			}
		}
		out[i] = o
	}
	return out, changed
}
