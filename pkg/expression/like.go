package expression

import (
	"fmt"
	"regexp"
	"strings"

	dberr "rowexec/pkg/error"
	"rowexec/pkg/tuple"
	"rowexec/pkg/types"
)

// LikeKind selects the matching flavour.
type LikeKind int

const (
	Like LikeKind = iota
	NotLike
	ILike
	NotILike
	Glob
)

func (k LikeKind) String() string {
	switch k {
	case Like:
		return "LIKE"
	case NotLike:
		return "NOT LIKE"
	case ILike:
		return "ILIKE"
	case NotILike:
		return "NOT ILIKE"
	case Glob:
		return "GLOB"
	default:
		return fmt.Sprintf("LikeKind(%d)", int(k))
	}
}

// ParseLikeKind accepts both the keyword and the operator spelling
// ("~~", "!~~", "~~*", "!~~*", "~~~").
func ParseLikeKind(s string) (LikeKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LIKE", "~~", "LIKE_ESCAPE":
		return Like, nil
	case "NOT LIKE", "!~~", "NOT_LIKE_ESCAPE":
		return NotLike, nil
	case "ILIKE", "~~*", "ILIKE_ESCAPE":
		return ILike, nil
	case "NOT ILIKE", "!~~*", "NOT_ILIKE_ESCAPE":
		return NotILike, nil
	case "GLOB", "~~~":
		return Glob, nil
	}
	return Like, dberr.Newf(dberr.KindExecutor, "unsupported like operator %s", s)
}

// LikeMatch matches a string against a LIKE or GLOB pattern. A null in
// the target, the pattern or the escape yields a null BOOLEAN.
type LikeMatch struct {
	kind    LikeKind
	target  Expression
	pattern Expression
	escape  Expression // optional

	// last compiled pattern; patterns are nearly always constant
	cacheKey string
	cacheRe  *regexp.Regexp
}

func NewLike(kind LikeKind, target, pattern, escape Expression) *LikeMatch {
	return &LikeMatch{kind: kind, target: target, pattern: pattern, escape: escape}
}

func (l *LikeMatch) evaluate(rec *tuple.Record, fresh bool) (types.Value, error) {
	tv, err := eval(l.target, rec, fresh)
	if err != nil {
		return types.Value{}, err
	}
	pv, err := eval(l.pattern, rec, fresh)
	if err != nil {
		return types.Value{}, err
	}
	esc := rune(0)
	if l.escape != nil {
		ev, err := eval(l.escape, rec, fresh)
		if err != nil {
			return types.Value{}, err
		}
		if ev.IsNull() {
			return types.NewNull(types.Boolean()), nil
		}
		if esc, err = escapeRune(ev); err != nil {
			return types.Value{}, err
		}
	}
	if tv.IsNull() || pv.IsNull() {
		return types.NewNull(types.Boolean()), nil
	}
	target, err := tv.AsString()
	if err != nil {
		return types.Value{}, err
	}
	pattern, err := pv.AsString()
	if err != nil {
		return types.Value{}, err
	}
	re, err := l.compile(pattern, esc)
	if err != nil {
		return types.Value{}, err
	}
	matched := re.MatchString(target)
	if l.kind == NotLike || l.kind == NotILike {
		matched = !matched
	}
	return types.NewBoolean(matched), nil
}

func escapeRune(v types.Value) (rune, error) {
	s, err := v.AsString()
	if err != nil {
		return 0, err
	}
	r := []rune(s)
	switch len(r) {
	case 0:
		return 0, nil
	case 1:
		return r[0], nil
	}
	return 0, dberr.Newf(dberr.KindExecutor, "invalid escape string: %s", s)
}

func (l *LikeMatch) compile(pattern string, esc rune) (*regexp.Regexp, error) {
	key := string(esc) + "\x00" + pattern
	if l.cacheRe != nil && l.cacheKey == key {
		return l.cacheRe, nil
	}
	var (
		expr string
		err  error
	)
	switch l.kind {
	case Glob:
		expr = globToRegex(pattern)
	case ILike, NotILike:
		expr, err = likeToRegex(pattern, esc)
		expr = "(?i)" + expr
	default:
		expr, err = likeToRegex(pattern, esc)
	}
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, dberr.Newf(dberr.KindExecutor, "invalid pattern %q: %v", pattern, err)
	}
	l.cacheKey, l.cacheRe = key, re
	return re, nil
}

// likeToRegex translates % and _ into an anchored regular expression.
// The escape character makes the following character literal.
func likeToRegex(pattern string, esc rune) (string, error) {
	var b strings.Builder
	b.WriteString(`(?s)^`)
	escaped := false
	for _, c := range pattern {
		switch {
		case escaped:
			b.WriteString(regexp.QuoteMeta(string(c)))
			escaped = false
		case esc != 0 && c == esc:
			escaped = true
		case c == '%':
			b.WriteString(`.*`)
		case c == '_':
			b.WriteString(`.`)
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	if escaped {
		return "", dberr.New(dberr.KindExecutor, "Like pattern must not end with escape character!")
	}
	b.WriteString(`$`)
	return b.String(), nil
}

// globToRegex translates *, ? and [...] classes. Matching is case sensitive.
func globToRegex(pattern string) string {
	var b strings.Builder
	b.WriteString(`(?s)^`)
	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch c {
		case '*':
			b.WriteString(`.*`)
		case '?':
			b.WriteString(`.`)
		case '[':
			end := i + 1
			if end < len(runes) && (runes[end] == '^' || runes[end] == '!') {
				end++
			}
			if end < len(runes) && runes[end] == ']' {
				end++
			}
			for end < len(runes) && runes[end] != ']' {
				end++
			}
			if end >= len(runes) {
				b.WriteString(`\[`)
				continue
			}
			class := runes[i+1 : end]
			b.WriteByte('[')
			if len(class) > 0 && (class[0] == '!' || class[0] == '^') {
				b.WriteByte('^')
				class = class[1:]
			}
			for _, r := range class {
				if r == '\\' || r == '[' || r == ']' {
					b.WriteByte('\\')
				}
				b.WriteRune(r)
			}
			b.WriteByte(']')
			i = end
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	b.WriteString(`$`)
	return b.String()
}

func (l *LikeMatch) Evaluate(rec *tuple.Record) (types.Value, error)   { return l.evaluate(rec, false) }
func (l *LikeMatch) ReEvaluate(rec *tuple.Record) (types.Value, error) { return l.evaluate(rec, true) }
func (l *LikeMatch) Reset()                                            { resetAll(l.target, l.pattern, l.escape) }
func (l *LikeMatch) LogicalType() types.LogicalType                    { return types.Boolean() }

func (l *LikeMatch) String() string {
	if l.escape != nil {
		return fmt.Sprintf("%s %s %s ESCAPE %s", l.target, l.kind, l.pattern, l.escape)
	}
	return fmt.Sprintf("%s %s %s", l.target, l.kind, l.pattern)
}
