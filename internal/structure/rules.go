package structure

import (
	"regexp"
	"slices"

	"github.com/dgallion1/lexchunk/internal/doctree"
)

// Rule maps a line pattern to a hierarchy level. Pattern group 1 is the
// ordinal label, group 2 (optional) the remainder of the line.
type Rule struct {
	Level   doctree.Level
	Pattern *regexp.Regexp
	// Titled rules treat a heading-like remainder as the node title. For the
	// others the remainder opens the node body.
	Titled bool
	// Unlabelled rules (bullets) keep an empty label so they add no context.
	Unlabelled bool
}

// Profile selects a rule table.
type Profile int

const (
	ProfileAuto Profile = iota
	ProfileStatute
	ProfileDirective
)

func (p Profile) String() string {
	switch p {
	case ProfileStatute:
		return "statute"
	case ProfileDirective:
		return "directive"
	}
	return "auto"
}

// ParseProfile maps a config value to a Profile; unknown values mean auto.
func ParseProfile(s string) Profile {
	switch s {
	case "statute":
		return ProfileStatute
	case "directive":
		return ProfileDirective
	}
	return ProfileAuto
}

// Statute documents: Chương > Điều > khoản "1." > điểm "a)".
var statuteRules = []Rule{
	{Level: doctree.LevelChapter, Pattern: regexp.MustCompile(`^((?i:chương)\s+(?:[IVXLCDM]+|\d+))(?:\s*[.:–-]\s*(.*)|\s+(.*))?$`), Titled: true},
	{Level: doctree.LevelSection, Pattern: regexp.MustCompile(`^((?i:điều)\s+\d+[a-zđ]?)(?:\s*[.:]\s*(.*))?$`), Titled: true},
	{Level: doctree.LevelClause, Pattern: regexp.MustCompile(`^(\d{1,3})\.(?:\s+(.*))?$`)},
	{Level: doctree.LevelPoint, Pattern: regexp.MustCompile(`^([a-zđ])\)(?:\s*(.*))?$`)},
}

// Directive documents: "I." > "1." > "a)" > "-" bullets.
var directiveRules = []Rule{
	{Level: doctree.LevelChapter, Pattern: regexp.MustCompile(`^([IVXLCDM]+)\.(?:\s+(.*))?$`), Titled: true},
	{Level: doctree.LevelSection, Pattern: regexp.MustCompile(`^(\d{1,3})\.(?:\s+(.*))?$`), Titled: true},
	{Level: doctree.LevelClause, Pattern: regexp.MustCompile(`^([a-zđ])\)(?:\s*(.*))?$`)},
	{Level: doctree.LevelPoint, Pattern: regexp.MustCompile(`^([-–+•])\s+(.*)$`), Unlabelled: true},
}

var statuteProbe = regexp.MustCompile(`^((?i:điều)\s+\d+[a-zđ]?\s*[.:]|(?i:chương)\s+(?:[IVXLCDM]+|\d+)\b)`)

func rulesFor(p Profile) []Rule {
	if p == ProfileDirective {
		return directiveRules
	}
	return statuteRules
}

// orderRules sorts a table coarse-first so a line matching two patterns
// resolves to the coarser level.
func orderRules(rules []Rule) []Rule {
	out := slices.Clone(rules)
	slices.SortStableFunc(out, func(a, b Rule) int {
		return int(a.Level) - int(b.Level)
	})
	return out
}

// match returns the first rule matching line with its label and remainder.
func match(rules []Rule, line string) (Rule, string, string, bool) {
	for _, r := range rules {
		m := r.Pattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		label := m[1]
		rest := ""
		for _, g := range m[2:] {
			if g != "" {
				rest = g
				break
			}
		}
		return r, label, rest, true
	}
	return Rule{}, "", "", false
}
