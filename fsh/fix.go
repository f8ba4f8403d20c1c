package fsh

import (
	"strings"
)

// FixStats counts multi-line property groups before and after a fix.
type FixStats struct {
	Original  int `json:"original" yaml:"original"`
	Remaining int `json:"remaining" yaml:"remaining"`
	Fixed     int `json:"fixed" yaml:"fixed"`
}

func countMultiLine(lines []string) int {
	n := 0
	for _, l := range lines {
		if multiLineStartRe.MatchString(l) {
			n++
		}
	}
	return n
}

// FixPropertySyntax rewrites multi-line property groups
//
//	* ^property[+]
//	  * code = #validFrom
//	  * valueDateTime = "2013-01-25T00:00:00+00:00"
//
// into the single-line form
//
//	* ^property[+].code = #validFrom
//	* ^property[=].valueDateTime = "2013-01-25T00:00:00+00:00"
//
// keeping the indentation of the group start. Groups whose next two lines are
// not a code and a value assignment are left as they are.
func FixPropertySyntax(content string) (string, FixStats) {
	lines := strings.Split(content, "\n")
	stats := FixStats{Original: countMultiLine(lines)}

	out := make([]string, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if !multiLineStartRe.MatchString(line) || i+2 >= len(lines) {
			out = append(out, line)
			continue
		}

		codeLine := strings.TrimSpace(lines[i+1])
		valueLine := strings.TrimSpace(lines[i+2])
		if !strings.HasPrefix(codeLine, "* code = #") || !strings.HasPrefix(valueLine, "* value") {
			out = append(out, line)
			continue
		}

		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		out = append(out,
			indent+"* ^property[+].code = #"+strings.TrimPrefix(codeLine, "* code = #"),
			indent+"* ^property[=]."+strings.TrimPrefix(valueLine, "* "),
		)
		i += 2
	}

	stats.Remaining = countMultiLine(out)
	stats.Fixed = stats.Original - stats.Remaining
	return strings.Join(out, "\n"), stats
}
