package fsh

import "regexp"

type pattern string

func (p pattern) String() string {
	return string(p)
}

// quoted matches an FSH string literal body, allowing escaped characters.
const quoted = `"((?:[^"\\]|\\.)*)"`

// Patterns are matched against lines with surrounding whitespace removed.
const (
	conceptPattern       pattern = `^\* #([^\s"]+)(?:\s+` + quoted + `)?`
	definitionPattern    pattern = `^\* \^definition = ` + quoted
	propertyStartPattern pattern = `^\* \^property\[\+\]$`
	propertyCodePattern  pattern = `^\* code = #([\w-]+)$`
	propertyValuePattern pattern = `^\* value(String|Code|DateTime|Integer|Boolean|Decimal) = (.+)$`
	inlineCodePattern    pattern = `^\* \^property\[[^\]]*\]\.code = #([\w-]+)$`
	inlineValuePattern   pattern = `^\* \^property\[=\]\.value(String|Code|DateTime|Integer|Boolean|Decimal) = (.+)$`
	defTypePattern       pattern = `^\* \^property\[[^\]]*\]\.type = #(\w+)`
	defDescPattern       pattern = `^\* \^property\[[^\]]*\]\.description = ` + quoted
	keywordPattern       pattern = `^(CodeSystem|Id|Title|Description):\s*(.*)$`
	metadataPattern      pattern = `^\* \^([A-Za-z][\w.]*) = (.+)$`
	validCodePattern     pattern = `^[A-Za-z0-9_.-]+$`
	countCommentPattern  pattern = `^(//\s*(Total|Active|Retired) concepts:\s*)[\d,]+`
	urlPattern           pattern = `^(\* \^url = ")(.*/)?[^/"]*(".*)$`

	// multiLineStartPattern is matched against raw lines by the fixer.
	multiLineStartPattern pattern = `^\s*\* \^property\[\+\]$`
)

var (
	conceptRegex       = regexp.MustCompile(conceptPattern.String())
	definitionRegex    = regexp.MustCompile(definitionPattern.String())
	propertyStartRegex = regexp.MustCompile(propertyStartPattern.String())
	propertyCodeRegex  = regexp.MustCompile(propertyCodePattern.String())
	propertyValueRegex = regexp.MustCompile(propertyValuePattern.String())
	inlineCodeRegex    = regexp.MustCompile(inlineCodePattern.String())
	inlineValueRegex   = regexp.MustCompile(inlineValuePattern.String())
	defTypeRegex       = regexp.MustCompile(defTypePattern.String())
	defDescRegex       = regexp.MustCompile(defDescPattern.String())
	keywordRegex       = regexp.MustCompile(keywordPattern.String())
	metadataRegex      = regexp.MustCompile(metadataPattern.String())
	validCodeRegex     = regexp.MustCompile(validCodePattern.String())
	countCommentRegex  = regexp.MustCompile(countCommentPattern.String())
	urlRegex           = regexp.MustCompile(urlPattern.String())
	multiLineStartRe   = regexp.MustCompile(multiLineStartPattern.String())
)
