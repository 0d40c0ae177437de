package validation

import (
	"fmt"
	"net/http"
	"strings"

	domainerrors "github.com/locallibrary/catalog/internal/errors"
)

// Violation is one failed check on one field.
type Violation struct {
	Field   string
	Message string
	// Value is the field value at the time the check ran.
	Value string
}

// Violations is the ordered result of running a Pipeline.
type Violations []Violation

// Empty reports whether no check failed.
func (vs Violations) Empty() bool {
	return len(vs) == 0
}

// Has reports whether field failed at least one check.
func (vs Violations) Has(field string) bool {
	for _, v := range vs {
		if v.Field == field {
			return true
		}
	}
	return false
}

// For returns the first message recorded for field, or "".
func (vs Violations) For(field string) string {
	for _, v := range vs {
		if v.Field == field {
			return v.Message
		}
	}
	return ""
}

// Messages returns every message in order.
func (vs Violations) Messages() []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.Message
	}
	return out
}

// Err returns nil when empty, otherwise a validation error whose details map
// each failing field to its first message.
func (vs Violations) Err() error {
	if vs.Empty() {
		return nil
	}
	details := make(map[string]string, len(vs))
	for _, v := range vs {
		if _, ok := details[v.Field]; !ok {
			details[v.Field] = v.Message
		}
	}
	return domainerrors.ValidationWithDetails("validation failed", details)
}

// check is a predicate step. Tag-backed checks are evaluated with the
// pipeline's validator; pred is used for custom predicates.
type check struct {
	tag     string
	param   string
	message string
	pred    func(string) bool
}

type step struct {
	check    *check
	sanitize Sanitizer
}

// Chain is the ordered list of checks and sanitizers for one field.
// Steps run in declaration order, so a check sees the value as sanitized by
// the steps before it.
type Chain struct {
	field    string
	message  string
	optional bool
	each     bool
	steps    []step
}

// Field starts a chain for the named form field.
func Field(name string) *Chain {
	return &Chain{field: name}
}

// Name returns the field the chain applies to.
func (c *Chain) Name() string {
	return c.field
}

// Message sets the message used by checks declared without one.
func (c *Chain) Message(msg string) *Chain {
	c.message = msg
	return c
}

// Optional skips the chain's checks whenever the value is empty.
// Sanitizers still run.
func (c *Chain) Optional() *Chain {
	c.optional = true
	return c
}

// Each marks the field as multi-valued. The value is normalized to a list
// before any step runs and every step applies to each element.
func (c *Chain) Each() *Chain {
	c.each = true
	return c
}

// Sanitize appends a sanitizer.
func (c *Chain) Sanitize(fn Sanitizer) *Chain {
	c.steps = append(c.steps, step{sanitize: fn})
	return c
}

// Trim appends the Trim sanitizer.
func (c *Chain) Trim() *Chain { return c.Sanitize(Trim) }

// Escape appends the Escape sanitizer.
func (c *Chain) Escape() *Chain { return c.Sanitize(Escape) }

// Normalize appends the Normalize sanitizer.
func (c *Chain) Normalize() *Chain { return c.Sanitize(Normalize) }

// ToDate appends the ToDate sanitizer.
func (c *Chain) ToDate() *Chain { return c.Sanitize(ToDate) }

// NotEmpty fails on an empty value.
func (c *Chain) NotEmpty(msg string) *Chain {
	return c.tagged("required", "", msg)
}

// Length fails unless the value has between min and max characters.
// A max of zero means no upper bound.
func (c *Chain) Length(minLen, maxLen int, msg string) *Chain {
	c.tagged("min", fmt.Sprint(minLen), msg)
	if maxLen > 0 {
		c.tagged("max", fmt.Sprint(maxLen), msg)
	}
	return c
}

// Alphanumeric fails unless the value is made of ASCII letters and digits.
func (c *Chain) Alphanumeric(msg string) *Chain {
	return c.tagged("alphanum", "", msg)
}

// ISO8601 fails unless the value is an ISO-8601 date or date-time.
func (c *Chain) ISO8601(msg string) *Chain {
	return c.tagged(tagISO8601, "", msg)
}

// OneOf fails unless the value equals one of opts.
func (c *Chain) OneOf(msg string, opts ...string) *Chain {
	return c.tagged("oneof", strings.Join(opts, " "), msg)
}

// Custom appends a predicate check.
func (c *Chain) Custom(msg string, pred func(string) bool) *Chain {
	c.steps = append(c.steps, step{check: &check{message: msg, pred: pred}})
	return c
}

func (c *Chain) tagged(tag, param, msg string) *Chain {
	c.steps = append(c.steps, step{check: &check{tag: tag, param: param, message: msg}})
	return c
}

// Pipeline runs a fixed set of chains against submitted form values.
type Pipeline struct {
	v      *Validator
	chains []*Chain
}

// Pipeline builds a pipeline whose checks are evaluated by v.
func (v *Validator) Pipeline(chains ...*Chain) *Pipeline {
	return &Pipeline{v: v, chains: chains}
}

// Lists returns the names of the multi-valued fields.
func (p *Pipeline) Lists() []string {
	var names []string
	for _, c := range p.chains {
		if c.each {
			names = append(names, c.field)
		}
	}
	return names
}

// Run applies every chain to vals, rewriting each field with its sanitized
// value, and returns the violations in chain order. Every chain runs even
// after a failure.
func (p *Pipeline) Run(vals Values) Violations {
	var out Violations
	for _, c := range p.chains {
		v := vals[c.field]
		if c.each {
			v = v.AsList()
		} else {
			v = v.AsScalar()
		}

		items := v.items
		for i := range items {
			var vs Violations
			items[i], vs = p.apply(c, items[i])
			out = append(out, vs...)
		}
		v.items = items
		vals[c.field] = v
	}
	return out
}

// Bind parses the request form, normalizes multi-valued fields and runs the
// pipeline. The returned values are sanitized and suitable for re-rendering.
func (p *Pipeline) Bind(r *http.Request) (Values, Violations, error) {
	if err := r.ParseForm(); err != nil {
		return nil, nil, domainerrors.Wrap(err, domainerrors.CodeValidation, "malformed form body")
	}
	vals := FromForm(r.PostForm, p.Lists()...)
	return vals, p.Run(vals), nil
}

func (p *Pipeline) apply(c *Chain, value string) (string, Violations) {
	var out Violations
	for _, s := range c.steps {
		if s.sanitize != nil {
			value = s.sanitize(value)
			continue
		}
		if c.optional && value == "" {
			continue
		}
		if p.passes(s.check, value) {
			continue
		}
		out = append(out, Violation{Field: c.field, Message: c.messageFor(s.check), Value: value})
	}
	return value, out
}

func (p *Pipeline) passes(ck *check, value string) bool {
	if ck.pred != nil {
		return ck.pred(value)
	}
	tag := ck.tag
	if ck.param != "" {
		tag += "=" + ck.param
	}
	return p.v.Var(value, tag)
}

func (c *Chain) messageFor(ck *check) string {
	switch {
	case ck.message != "":
		return ck.message
	case c.message != "":
		return c.message
	default:
		return c.field + " " + friendlyMessage(ck.tag, ck.param)
	}
}
