package activity

import (
	"regexp"
	"strings"

	"github.com/mahendrapaipuri/gitlab-activity/internal/log"
	"github.com/mahendrapaipuri/gitlab-activity/internal/model"
)

// GroupDef is one caller-defined report group. A record belongs to the
// group when any of its labels matches any of the label patterns, or
// its title starts with any of the prefixes.
type GroupDef struct {
	// Labels are start-anchored regular expression patterns matched
	// against record labels. A pattern that does not compile is
	// matched literally instead.
	Labels []string
	// Prefixes are literal title prefixes, e.g. "FIX".
	Prefixes []string
	// Description heads the group's report section.
	Description string
}

// Group is a populated report group.
type Group struct {
	Description string
	Records     []model.ActivityRecord
}

type compiledGroup struct {
	def      GroupDef
	patterns []*regexp.Regexp
}

func compileGroups(defs []GroupDef) []compiledGroup {
	out := make([]compiledGroup, 0, len(defs))
	for _, def := range defs {
		cg := compiledGroup{def: def}
		for _, pat := range def.Labels {
			re, err := regexp.Compile("^(?:" + pat + ")")
			if err != nil {
				log.Debug("label pattern does not compile, matching literally", "pattern", pat, "err", err)
				re = regexp.MustCompile("^" + regexp.QuoteMeta(pat))
			}
			cg.patterns = append(cg.patterns, re)
		}
		out = append(out, cg)
	}
	return out
}

func (cg compiledGroup) matches(r model.ActivityRecord) bool {
	for _, re := range cg.patterns {
		for _, label := range r.Labels {
			if re.MatchString(label) {
				return true
			}
		}
	}
	for _, pre := range cg.def.Prefixes {
		if strings.HasPrefix(r.Title, pre) {
			return true
		}
	}
	return false
}

// Partition buckets the records into the given groups, in definition
// order. A record may land in several groups; records matching none are
// collected into a trailing fallback group so that every record appears
// in the report exactly once at minimum. With no definitions all
// records land in the fallback group.
func Partition(records []model.ActivityRecord, defs []GroupDef, fallbackTitle string) []Group {
	compiled := compileGroups(defs)

	groups := make([]Group, len(compiled))
	for i, cg := range compiled {
		groups[i].Description = cg.def.Description
	}
	var rest []model.ActivityRecord

	for _, r := range records {
		matched := false
		for i, cg := range compiled {
			if cg.matches(r) {
				groups[i].Records = append(groups[i].Records, r)
				matched = true
			}
		}
		if !matched {
			rest = append(rest, r)
		}
	}

	out := groups[:0]
	for _, g := range groups {
		if len(g.Records) > 0 {
			out = append(out, g)
		}
	}
	if len(rest) > 0 {
		out = append(out, Group{Description: fallbackTitle, Records: rest})
	}
	return out
}
