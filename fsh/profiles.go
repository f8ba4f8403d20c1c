package fsh

import (
	"time"

	"github.com/SanteonNL/nlk/models/fhir"
	"github.com/SanteonNL/nlk/models/nlk"
)

// Profile selects how much of a codebook row ends up in a concept.
type Profile string

const (
	// ProfileBasic emits active codes only, with code and display.
	ProfileBasic Profile = "basic"
	// ProfileEnhanced emits every row with status, validity and laboratory
	// properties.
	ProfileEnhanced Profile = "enhanced"
	// ProfileDetailed emits every row with validity, change and laboratory
	// properties.
	ProfileDetailed Profile = "detailed"
)

// Profiles lists the supported profiles.
var Profiles = []Profile{ProfileBasic, ProfileEnhanced, ProfileDetailed}

// ParseProfile validates a profile name.
func ParseProfile(s string) (Profile, error) {
	for _, p := range Profiles {
		if string(p) == s {
			return p, nil
		}
	}
	return "", ErrUnknownProfile
}

type labProperty struct {
	code  string
	value func(nlk.LabCode) string
}

var (
	enhancedDefinitions = []PropertyDefinition{
		{Code: "status", Type: "code", Description: "Status of the concept (active|retired)"},
		{Code: "effectiveDate", Type: "dateTime", Description: "Date when the concept became effective"},
		{Code: "expirationDate", Type: "dateTime", Description: "Date when the concept expires"},
		{Code: "lastModified", Type: "dateTime", Description: "Date of last modification"},
		{Code: "replacedBy", Type: "code", Description: "Code that replaces this concept"},
		{Code: "component", Type: "string", Description: "Laboratory component being measured"},
		{Code: "componentSpec", Type: "string", Description: "Component specification details"},
		{Code: "system", Type: "string", Description: "Biological system or specimen type"},
		{Code: "systemSpec", Type: "string", Description: "System specification details"},
		{Code: "property", Type: "string", Description: "Type of property being measured"},
		{Code: "propertySpec", Type: "string", Description: "Property specification details"},
		{Code: "unit", Type: "string", Description: "Unit of measurement"},
		{Code: "primaryDomain", Type: "string", Description: "Primary medical domain"},
		{Code: "secondaryDomain", Type: "string", Description: "Secondary medical domain"},
		{Code: "grouping", Type: "string", Description: "Laboratory test grouping category"},
	}

	detailedDefinitions = []PropertyDefinition{
		{Code: "validFrom", Type: "dateTime", Description: "Valid from date"},
		{Code: "validTo", Type: "dateTime", Description: "Valid to date"},
		{Code: "replacedBy", Type: "code", Description: "Code that replaces this code"},
		{Code: "changeDate", Type: "dateTime", Description: "Date of last change"},
		{Code: "codeDefinition", Type: "string", Description: "Technical code definition"},
		{Code: "component", Type: "string", Description: "Component being measured"},
		{Code: "componentSpec", Type: "string", Description: "Component specification"},
		{Code: "system", Type: "string", Description: "System/specimen type"},
		{Code: "systemSpec", Type: "string", Description: "System specification"},
		{Code: "propertyType", Type: "string", Description: "Type of property measured"},
		{Code: "propertySpec", Type: "string", Description: "Property specification"},
		{Code: "unit", Type: "string", Description: "Unit of measurement"},
		{Code: "primaryDomain", Type: "string", Description: "Primary medical domain"},
		{Code: "secondaryDomain", Type: "string", Description: "Secondary medical domain"},
		{Code: "grouping", Type: "string", Description: "Grouping category"},
	}
)

// labProperties returns the laboratory string properties in emission order.
// kindCode is the property code used for egenskapsart, which differs per profile.
func labProperties(kindCode string) []labProperty {
	return []labProperty{
		{"component", func(c nlk.LabCode) string { return c.Component }},
		{"componentSpec", func(c nlk.LabCode) string { return c.ComponentSpec }},
		{"system", func(c nlk.LabCode) string { return c.System }},
		{"systemSpec", func(c nlk.LabCode) string { return c.SystemSpec }},
		{kindCode, func(c nlk.LabCode) string { return c.PropertyKind }},
		{"propertySpec", func(c nlk.LabCode) string { return c.PropertyKindSpec }},
		{"unit", func(c nlk.LabCode) string { return c.Unit }},
		{"primaryDomain", func(c nlk.LabCode) string { return c.PrimaryDomain }},
		{"secondaryDomain", func(c nlk.LabCode) string { return c.SecondaryDomain }},
		{"grouping", func(c nlk.LabCode) string { return c.Grouping }},
	}
}

func dateTimeProperty(code string, t *time.Time) (Property, bool) {
	if t == nil {
		return Property{}, false
	}
	return Property{Code: code, Type: TypeDateTime, Value: fhir.NewDateTime(*t).FSH()}, true
}

func appendLab(props []Property, c nlk.LabCode, kindCode string) []Property {
	for _, lp := range labProperties(kindCode) {
		if v := lp.value(c); v != "" {
			props = append(props, Property{Code: lp.code, Type: TypeString, Value: v})
		}
	}
	return props
}

func enhancedProperties(c nlk.LabCode, now time.Time) []Property {
	props := []Property{{Code: "status", Type: TypeCode, Value: string(c.Status(now))}}
	if p, ok := dateTimeProperty("effectiveDate", c.ValidFrom); ok {
		props = append(props, p)
	}
	if p, ok := dateTimeProperty("expirationDate", c.ValidTo); ok {
		props = append(props, p)
	}
	if p, ok := dateTimeProperty("lastModified", c.ChangeDate); ok {
		props = append(props, p)
	}
	if c.ReplacedBy != "" {
		props = append(props, Property{Code: "replacedBy", Type: TypeCode, Value: c.ReplacedBy})
	}
	return appendLab(props, c, "property")
}

func detailedProperties(c nlk.LabCode) []Property {
	var props []Property
	if p, ok := dateTimeProperty("validFrom", c.ValidFrom); ok {
		props = append(props, p)
	}
	if p, ok := dateTimeProperty("validTo", c.ValidTo); ok {
		props = append(props, p)
	}
	if c.ReplacedBy != "" {
		props = append(props, Property{Code: "replacedBy", Type: TypeCode, Value: c.ReplacedBy})
	}
	if p, ok := dateTimeProperty("changeDate", c.ChangeDate); ok {
		props = append(props, p)
	}
	// codeDefinition is declared but carried by ^definition instead.
	return appendLab(props, c, "propertyType")
}
