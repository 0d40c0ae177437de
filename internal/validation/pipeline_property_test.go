package validation_test

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/locallibrary/catalog/internal/validation"
)

// textish generates strings dense in whitespace and HTML-significant characters.
var textish = gen.RegexMatch(`^[ \ta-zA-Z0-9&<>"'/\\` + "`" + `;#x]{0,24}$`)

func TestSanitizerProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	sanitizers := map[string]validation.Sanitizer{
		"trim":      validation.Trim,
		"escape":    validation.Escape,
		"normalize": validation.Normalize,
		"to date":   validation.ToDate,
	}
	for name, fn := range sanitizers {
		properties.Property(name+" is idempotent", prop.ForAll(
			func(s string) bool {
				once := fn(s)
				return fn(once) == once
			},
			textish,
		))
	}

	properties.Property("unescape inverts escape on unescaped text", prop.ForAll(
		func(s string) bool {
			return validation.Unescape(validation.Escape(s)) == s
		},
		gen.RegexMatch(`^[ a-zA-Z0-9<>"'/\\`+"`"+`]{0,24}$`),
	))

	properties.TestingRun(t)
}

func TestPipelineProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	p := validation.New().Pipeline(
		validation.Field("name").Trim().Normalize().Length(3, 100, "Genre name required").Escape(),
		validation.Field("summary").Trim().NotEmpty("Summary must not be empty.").Escape(),
		validation.Field("genre").Each().Escape(),
		validation.Field("due_back").Optional().ISO8601("Invalid date").ToDate(),
	)

	properties.Property("running the pipeline twice changes nothing", prop.ForAll(
		func(name, summary, due string, genres []string) bool {
			vals := validation.Values{}
			vals.Set("name", name)
			vals.Set("summary", summary)
			vals.Set("due_back", due)
			vals.SetList("genre", genres...)

			p.Run(vals)
			once := vals.Clone()
			p.Run(vals)

			for field, v := range once {
				if v.Kind() != vals[field].Kind() {
					return false
				}
				a, b := v.Items(), vals[field].Items()
				if len(a) != len(b) {
					return false
				}
				for i := range a {
					if a[i] != b[i] {
						return false
					}
				}
			}
			return true
		},
		textish,
		textish,
		gen.OneGenOf(textish, gen.Const("2024-03-01"), gen.Const("2024-03-01T09:15:00Z")),
		gen.SliceOfN(3, textish),
	))

	properties.TestingRun(t)
}

func TestRuleProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)
	v := validation.New()

	type rule struct {
		chain      *validation.Chain
		violating  gopter.Gen
		conforming gopter.Gen
	}
	rules := map[string]rule{
		"non-empty": {
			chain:      validation.Field("f").Trim().NotEmpty("required"),
			violating:  gen.RegexMatch(`^[ \t]{0,5}$`),
			conforming: gen.RegexMatch(`^ ?[a-z]{1,10} ?$`),
		},
		"length": {
			chain:      validation.Field("f").Length(3, 10, "length"),
			violating:  gen.OneGenOf(gen.RegexMatch(`^[a-z]{0,2}$`), gen.RegexMatch(`^[a-z]{11,20}$`)),
			conforming: gen.RegexMatch(`^[a-z]{3,10}$`),
		},
		"alphanumeric": {
			chain:      validation.Field("f").Alphanumeric("alnum"),
			violating:  gen.RegexMatch(`^[a-z0-9]{0,5}[ !@#%-][a-z0-9]{0,5}$`),
			conforming: gen.RegexMatch(`^[a-zA-Z0-9]{1,12}$`),
		},
		"iso8601": {
			chain:      validation.Field("f").ISO8601("date"),
			violating:  gen.RegexMatch(`^[a-z]{1,8}$`),
			conforming: gen.RegexMatch(`^(19|20)[0-9]{2}-(0[1-9]|1[0-2])-(0[1-9]|1[0-9]|2[0-8])$`),
		},
		"optional date": {
			chain:      validation.Field("f").Optional().ISO8601("date"),
			violating:  gen.RegexMatch(`^[a-z]{1,8}$`),
			conforming: gen.OneGenOf(gen.Const(""), gen.RegexMatch(`^(19|20)[0-9]{2}$`)),
		},
		"one of": {
			chain:      validation.Field("f").OneOf("status", "available", "maintenance", "loaned", "reserved"),
			violating:  gen.RegexMatch(`^[A-Z]{1,8}$`),
			conforming: gen.OneConstOf("available", "maintenance", "loaned", "reserved"),
		},
	}

	for name, r := range rules {
		p := v.Pipeline(r.chain)
		run := func(s string) validation.Violations {
			vals := validation.Values{}
			vals.Set("f", s)
			return p.Run(vals)
		}

		properties.Property(name+": violating value is reported", prop.ForAll(
			func(s string) bool { return run(s).Has("f") },
			r.violating,
		))
		properties.Property(name+": conforming value passes", prop.ForAll(
			func(s string) bool { return !run(s).Has("f") },
			r.conforming,
		))
	}

	properties.TestingRun(t)
}
