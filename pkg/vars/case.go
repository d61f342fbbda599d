package vars

import (
	"fmt"
	"strings"

	"github.com/iancoleman/strcase"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Case is an output case transform applied to array var keys.
type Case int

// Supported cases.
const (
	CaseNone Case = iota
	CaseCamel
	CaseSnake
	CaseKebab
	CaseShoutySnake
	CaseMixed
	CaseTitle
)

var caseNames = map[Case]string{
	CaseNone:        "",
	CaseCamel:       "CamelCase",
	CaseSnake:       "snake_case",
	CaseKebab:       "kebab-case",
	CaseShoutySnake: "SHOUTY_SNAKE_CASE",
	CaseMixed:       "mixedCase",
	CaseTitle:       "Title Case",
}

var caseAliases = map[string]Case{
	"none":            CaseNone,
	"false":           CaseNone,
	"camelcase":       CaseCamel,
	"snakecase":       CaseSnake,
	"kebabcase":       CaseKebab,
	"shoutysnakecase": CaseShoutySnake,
	"mixedcase":       CaseMixed,
	"titlecase":       CaseTitle,
}

// ParseCase accepts the canonical case names as well as their compact
// lowercase aliases ("camelcase", "snakecase", ...).
func ParseCase(s string) (Case, error) {
	for c, name := range caseNames {
		if s == name {
			return c, nil
		}
	}
	key := strings.ToLower(strings.NewReplacer("_", "", "-", "", " ", "").Replace(s))
	if c, ok := caseAliases[key]; ok {
		return c, nil
	}
	return CaseNone, fmt.Errorf("unknown case %q (expected one of: CamelCase, snake_case, kebab-case, SHOUTY_SNAKE_CASE, mixedCase, Title Case)", s)
}

func (c Case) String() string {
	return caseNames[c]
}

// MarshalText implements encoding.TextMarshaler.
func (c Case) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Case) UnmarshalText(text []byte) error {
	parsed, err := ParseCase(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Apply converts s to the case. Words break on separators ("_", "-", ".",
// " "), on case changes and between letters and digits.
func (c Case) Apply(s string) string {
	switch c {
	case CaseCamel:
		return strcase.ToCamel(s)
	case CaseMixed:
		return strcase.ToLowerCamel(s)
	case CaseSnake:
		return strcase.ToSnake(s)
	case CaseKebab:
		return strcase.ToKebab(s)
	case CaseShoutySnake:
		return strcase.ToScreamingSnake(s)
	case CaseTitle:
		return cases.Title(language.Und).String(strcase.ToDelimited(s, ' '))
	default:
		return s
	}
}
