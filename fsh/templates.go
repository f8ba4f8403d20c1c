package fsh

import (
	"text/template"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const basicHeaderTemplate = `// Norwegian Laboratory Codebook (Norsk Laboratoriekodeverk)
// Generated from CSV: {{.Source}}
// Generated on: {{.Generated}}
// Active concepts: {{.Total}}

CodeSystem: NorskLaboratoriekodeverk
Id: {{.ID}}
Title: "Norsk Laboratoriekodeverk"
Description: "Norwegian Laboratory Codebook - comprehensive terminology for laboratory medicine in Norway"
* ^url = "{{.URL}}"
* ^version = "{{.Version}}"
* ^status = #active
* ^experimental = false
* ^date = "{{.Date}}"
* ^publisher = {{quote .Publisher}}
* ^contact.name = {{quote .Publisher}}
* ^jurisdiction = urn:iso:std:iso:3166#NO "Norway"
* ^caseSensitive = true
* ^content = #complete
* ^count = {{.Total}}

`

const enhancedHeaderTemplate = `
// Norwegian Laboratory Codebook (NLK) - Enhanced FHIR CodeSystem
// Generated from: {{.Source}}
// Generated on: {{.Generated}}
//
// Total concepts: {{num .Total}}
// Active concepts: {{num .Active}}
// Retired concepts: {{num .Retired}}

CodeSystem: NorskLaboratoriekodeverk
Id: {{.ID}}
Title: "Norsk Laboratoriekodeverk (NLK)"
Description: """Enhanced Norwegian Laboratory Codebook containing {{num .Total}} laboratory test codes with comprehensive metadata including components, systems, properties, units, and medical domains. Generated from official source data version {{.Version}}."""
* ^url = "{{.URL}}"
* ^version = "{{.Version}}"
* ^status = #active
* ^experimental = true
* ^date = "{{.Date}}"
* ^publisher = {{quote .Publisher}}
* ^contact.name = {{quote .Publisher}}
* ^jurisdiction = urn:iso:std:iso:3166#NO "Norway"
* ^copyright = {{quote (printf "© %s" .Publisher)}}
* ^caseSensitive = true
* ^content = #complete
* ^count = {{.Total}}

// Property definitions for enhanced metadata
{{range .Properties}}* ^property[+].code = #{{.Code}}
* ^property[=].type = #{{.Type}}
* ^property[=].description = {{quote .Description}}

{{end}}
// Concept definitions
`

const detailedHeaderTemplate = `// Norwegian Laboratory Codebook (Norsk Laboratoriekodeverk) - Enhanced with Complete Properties
// Generated from: {{.Source}}
// Generated on: {{.Generated}}
// Total concepts: {{.Total}}
// Active concepts: {{.Active}}
// Retired concepts: {{.Retired}}

CodeSystem: NorskLaboratoriekodeverkDetailed
Id: {{.ID}}
Title: "Norsk Laboratoriekodeverk"
Description: "Norwegian Laboratory Codebook - a comprehensive terminology for laboratory medicine in Norway with complete metadata properties"
* ^url = "{{.URL}}"
* ^version = "{{.Version}}"
* ^status = #active
* ^experimental = true
* ^date = "{{.Date}}"
* ^publisher = {{quote .Publisher}}
* ^contact.name = {{quote .Publisher}}
* ^jurisdiction = urn:iso:std:iso:3166#NO "Norway"
* ^caseSensitive = true
* ^content = #complete
* ^count = {{.Total}}

// Properties for additional metadata
{{range $i, $p := .Properties}}* ^property[{{if eq $i 0}}0{{else}}+{{end}}].code = #{{$p.Code}}
* ^property[=].description = {{quote $p.Description}}
* ^property[=].type = #{{$p.Type}}

{{end}}// Concepts with complete properties
`

// headerData feeds the header templates.
type headerData struct {
	Source     string
	Generated  string
	Date       string
	ID         string
	URL        string
	Version    string
	Publisher  string
	Total      int
	Active     int
	Retired    int
	Properties []PropertyDefinition
}

type profileLayout struct {
	id         string
	header     *template.Template
	properties []PropertyDefinition
	// spaced puts a blank line after every concept.
	spaced bool
}

var layouts map[Profile]profileLayout

func init() {
	funcs := template.FuncMap{
		"quote": Escape,
		"num":   func(n int) string { return message.NewPrinter(language.English).Sprintf("%d", n) },
	}
	parse := func(name, src string) *template.Template {
		return template.Must(template.New(name).Funcs(funcs).Parse(src))
	}

	layouts = map[Profile]profileLayout{
		ProfileBasic: {
			id:     "norsk-laboratoriekodeverk",
			header: parse("basic", basicHeaderTemplate),
		},
		ProfileEnhanced: {
			id:         "norsk-laboratoriekodeverk",
			header:     parse("enhanced", enhancedHeaderTemplate),
			properties: enhancedDefinitions,
			spaced:     true,
		},
		ProfileDetailed: {
			id:         "norsk-laboratoriekodeverk-detailed",
			header:     parse("detailed", detailedHeaderTemplate),
			properties: detailedDefinitions,
		},
	}
}
