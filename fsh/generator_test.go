package fsh

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/SanteonNL/nlk/models/nlk"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

var now = time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)

func fixtureCodes() []nlk.LabCode {
	return []nlk.LabCode{
		{
			Code: "NPU03", Display: "P-Natrium ny", ValidFrom: nlk.ParseDate("2020-01-01"),
			Component: "Natrium", System: "P", Unit: "mmol/L", PrimaryDomain: "Medisinsk biokjemi",
		},
		{
			Code: "NPU02", Display: "P-Natrium", ValidFrom: nlk.ParseDate("2011-01-01"),
			ValidTo: nlk.ParseDate("2020-01-01"), ReplacedBy: "NPU03", Component: "Natrium",
			PrimaryDomain: "Medisinsk biokjemi",
		},
		{
			Code: "NOR04", Display: `BRCA1 "mutasjon"`, Definition: "Genetisk test",
			ValidFrom: nlk.ParseDate("2015-01-01"), ChangeDate: nlk.ParseDate("2016-03-04"),
			Component: "BRCA1", PropertyKind: "sekvens", PrimaryDomain: "Medisinsk genetikk",
			SecondaryDomain: "Patologi",
		},
		{
			Code: "NOR05", ValidFrom: nlk.ParseDate("2030-01-01"), PrimaryDomain: "Klinisk farmakologi",
			SecondaryDomain: "Medisinsk genetikk",
		},
		{
			Code: "NPU03", Display: "P-Natrium duplicate", ValidFrom: nlk.ParseDate("2021-01-01"),
		},
	}
}

type GeneratorSuite struct {
	suite.Suite
}

func TestGeneratorSuite(t *testing.T) {
	suite.Run(t, new(GeneratorSuite))
}

func (s *GeneratorSuite) generator(profile Profile) *Generator {
	g, err := NewGenerator(Options{
		Profile:       profile,
		Version:       "7280.77",
		Publisher:     "Helsedirektoratet",
		CanonicalBase: "http://hl7.no/fhir/ig/nlk-test/",
		Source:        "nlk_processing.csv",
	}, zerolog.Nop())
	s.Require().NoError(err)
	g.now = func() time.Time { return now }
	return g
}

func (s *GeneratorSuite) generate(profile Profile, codes []nlk.LabCode) (string, *GenerateResult) {
	var buf bytes.Buffer
	result, err := s.generator(profile).Generate(&buf, codes)
	s.Require().NoError(err)
	return buf.String(), result
}

func (s *GeneratorSuite) TestUnknownProfile() {
	_, err := NewGenerator(Options{Profile: "full"}, zerolog.Nop())
	s.ErrorIs(err, ErrUnknownProfile)

	_, err = ParseProfile("full")
	s.ErrorIs(err, ErrUnknownProfile)
	p, err := ParseProfile("detailed")
	s.NoError(err)
	s.Equal(ProfileDetailed, p)
}

func (s *GeneratorSuite) TestURL() {
	s.Equal("http://hl7.no/fhir/ig/nlk-test/CodeSystem/norsk-laboratoriekodeverk", s.generator(ProfileBasic).URL())
	s.Equal("http://hl7.no/fhir/ig/nlk-test/CodeSystem/norsk-laboratoriekodeverk-detailed", s.generator(ProfileDetailed).URL())
}

func (s *GeneratorSuite) TestBasicKeepsFirstActiveRow() {
	out, result := s.generate(ProfileBasic, fixtureCodes())

	s.Equal(5, result.Rows)
	s.Equal(2, result.Total)
	s.Equal(2, result.Active)
	s.Equal(0, result.Retired)
	s.Equal(2, result.Concepts)

	s.Contains(out, "// Generated from CSV: nlk_processing.csv\n")
	s.Contains(out, "// Generated on: 2025-06-01 12:30:00\n")
	s.Contains(out, "// Active concepts: 2\n")
	s.Contains(out, "* ^date = \"2025-06-01\"\n")
	s.Contains(out, "* ^publisher = \"Helsedirektoratet\"\n")
	s.Contains(out, "* ^count = 2\n")
	s.True(strings.HasSuffix(out, "* #NPU03 \"P-Natrium ny\"\n* #NOR04 \"BRCA1 \\\"mutasjon\\\"\"\n"), out)
	s.NotContains(out, "^property")
	s.NotContains(out, "^definition")
}

func (s *GeneratorSuite) TestEnhancedConcept() {
	out, result := s.generate(ProfileEnhanced, fixtureCodes())

	s.Equal(5, result.Total)
	s.Equal(3, result.Active)
	s.Equal(2, result.Retired)

	s.True(strings.HasPrefix(out, "\n// Norwegian Laboratory Codebook (NLK) - Enhanced FHIR CodeSystem\n"))
	s.Contains(out, "// Total concepts: 5\n")
	s.Contains(out, "* ^copyright = \"© Helsedirektoratet\"\n")
	s.Contains(out, "* ^property[+].code = #status\n* ^property[=].type = #code\n* ^property[=].description = \"Status of the concept (active|retired)\"\n\n")

	s.Contains(out, `* #NPU02 "P-Natrium"
  * ^property[+]
    * code = #status
    * valueCode = #retired
  * ^property[+]
    * code = #effectiveDate
    * valueDateTime = "2011-01-01T00:00:00+00:00"
  * ^property[+]
    * code = #expirationDate
    * valueDateTime = "2020-01-01T00:00:00+00:00"
  * ^property[+]
    * code = #replacedBy
    * valueCode = #NPU03
  * ^property[+]
    * code = #component
    * valueString = "Natrium"
  * ^property[+]
    * code = #primaryDomain
    * valueString = "Medisinsk biokjemi"

`)
	s.Contains(out, "* #NOR05 \"NOR05\"\n  * ^property[+]\n    * code = #status\n    * valueCode = #draft\n")
	s.Contains(out, "    * code = #property\n    * valueString = \"sekvens\"\n")

	// Concepts are ordered by code, keeping input order for equal codes.
	cs, err := ParseString(out)
	s.Require().NoError(err)
	var order []string
	for _, c := range cs.Concepts {
		order = append(order, c.Code+" "+c.Display)
	}
	s.Equal([]string{
		`NOR04 BRCA1 "mutasjon"`,
		"NOR05 NOR05",
		"NPU02 P-Natrium",
		"NPU03 P-Natrium ny",
		"NPU03 P-Natrium duplicate",
	}, order)
	s.Equal("Genetisk test", cs.Concept("NOR04").Definition)
	s.Len(cs.Properties, len(enhancedDefinitions))
}

func (s *GeneratorSuite) TestDetailedConcept() {
	out, result := s.generate(ProfileDetailed, fixtureCodes())

	s.Equal(5, result.Total)
	s.Equal(3, result.Active)
	s.Equal(1, result.Retired)

	s.Contains(out, "CodeSystem: NorskLaboratoriekodeverkDetailed\nId: norsk-laboratoriekodeverk-detailed\n")
	s.Contains(out, "* ^property[0].code = #validFrom\n* ^property[=].description = \"Valid from date\"\n* ^property[=].type = #dateTime\n")
	s.Contains(out, "* ^property[+].code = #validTo\n")
	s.Contains(out, "// Concepts with complete properties\n* #NOR04")

	cs, err := ParseString(out)
	s.Require().NoError(err)
	nor04 := cs.Concept("NOR04")
	s.Require().NotNil(nor04)
	s.Equal([]string{"validFrom", "changeDate", "component", "propertyType", "primaryDomain", "secondaryDomain"}, nor04.PropertyCodes())
	changed, _ := nor04.Property("changeDate")
	s.Equal("2016-03-04T00:00:00+00:00", changed)
	_, hasStatus := nor04.Property("status")
	s.False(hasStatus)
}

func (s *GeneratorSuite) TestGeneratedOutputValidates() {
	for _, profile := range Profiles {
		out, _ := s.generate(profile, fixtureCodes())
		result, err := NewValidator(zerolog.Nop()).Validate(out)
		s.Require().NoError(err)
		if profile == ProfileBasic {
			continue
		}
		// Duplicate NPU03 rows are reported; everything else is clean.
		var types []string
		for _, f := range result.Errors() {
			types = append(types, f.Type)
		}
		s.Equal([]string{"DUPLICATE_CONCEPT"}, types, string(profile))
	}
}

func (s *GeneratorSuite) TestSkipsUnrenderableRows() {
	codes := append(fixtureCodes(), nlk.LabCode{Code: "BAD CODE", ValidFrom: nlk.ParseDate("2010-01-01")}, nlk.LabCode{})
	out, result := s.generate(ProfileEnhanced, codes)

	s.Equal(2, result.Skipped)
	s.Equal(5, result.Concepts)
	s.Equal(5, result.Total)
	s.NotContains(out, "BAD CODE")

	// The header only counts the concepts that were written.
	s.Contains(out, "// Total concepts: 5\n")
	s.Contains(out, "* ^count = 5\n")
	cs, err := ParseString(out)
	s.Require().NoError(err)
	s.Len(cs.Concepts, 5)
}

func (s *GeneratorSuite) TestGenerateFile() {
	path := filepath.Join(s.T().TempDir(), "nlk.fsh")
	result, err := s.generator(ProfileBasic).GenerateFile(path, fixtureCodes())
	s.Require().NoError(err)
	s.Equal(path, result.Path)

	data, err := os.ReadFile(path)
	s.Require().NoError(err)
	s.Contains(string(data), "* #NPU03 \"P-Natrium ny\"")
}

func TestRenderConcept(t *testing.T) {
	block, err := RenderConcept(nlk.LabCode{Code: "X1", Display: "  Padded  ", Definition: "Def"}, false, []Property{
		{Code: "count", Type: TypeInteger, Value: "3"},
	})
	require.NoError(t, err)
	assert.Equal(t, "* #X1 \"Padded\"\n  * ^property[+]\n    * code = #count\n    * valueInteger = 3\n", block)

	_, err = RenderConcept(nlk.LabCode{Code: `X"1`}, false, nil)
	assert.ErrorIs(t, err, ErrInvalidConcept)

	_, err = RenderConcept(nlk.LabCode{Code: "X1"}, false, []Property{{Code: "c", Type: "Coding", Value: "v"}})
	assert.ErrorIs(t, err, ErrUnsupportedType)
}
