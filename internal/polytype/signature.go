package polytype

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// MaxDepth bounds template nesting in a signature.
const MaxDepth = 32

// Descriptor is a parsed type signature: a constructor name and its
// ordered template arguments.
type Descriptor struct {
	// Name is the constructor name with any namespace prefix removed.
	Name string

	// Namespace is the stripped prefix without the trailing "::", e.g. "polymake::common".
	Namespace string

	// Kind is the recognised constructor, or KindUnknown.
	Kind Kind

	// Args holds the template arguments in order.
	Args []*Descriptor
}

// Arg returns the i-th template argument or nil.
func (d *Descriptor) Arg(i int) *Descriptor {
	if i < 0 || i >= len(d.Args) {
		return nil
	}
	return d.Args[i]
}

// String renders the canonical signature: no namespaces, no whitespace.
func (d *Descriptor) String() string {
	var sb strings.Builder
	d.write(&sb, false)
	return sb.String()
}

// QualifiedString renders the signature keeping namespace prefixes.
func (d *Descriptor) QualifiedString() string {
	var sb strings.Builder
	d.write(&sb, true)
	return sb.String()
}

func (d *Descriptor) write(sb *strings.Builder, qualified bool) {
	if qualified && d.Namespace != "" {
		sb.WriteString(d.Namespace)
		sb.WriteString("::")
	}
	sb.WriteString(d.Name)
	if len(d.Args) == 0 {
		return
	}
	sb.WriteByte('<')
	for i, a := range d.Args {
		if i > 0 {
			sb.WriteByte(',')
		}
		a.write(sb, qualified)
	}
	sb.WriteByte('>')
}

// Parse parses a templated type signature such as
// "polymake::common::Map<Int, Pair<Integer,Set<Int>>>".
func Parse(signature string) (*Descriptor, error) {
	toks, err := tokenize(signature)
	if err != nil {
		return nil, err
	}
	p := &parser{src: signature, toks: toks}
	d, err := p.parseType(0)
	if err != nil {
		return nil, err
	}
	switch tok := p.peek(); tok.kind {
	case tokEOF:
	case tokGT:
		return nil, p.errorf(tok, "unmatched '>'")
	default:
		return nil, p.errorf(tok, "unexpected %s after type", tok)
	}
	return d, nil
}

// MustParse is like Parse but panics on error.
func MustParse(signature string) *Descriptor {
	d, err := Parse(signature)
	if err != nil {
		panic(err)
	}
	return d
}

// Normalize returns the canonical rendering of signature.
func Normalize(signature string) (string, error) {
	d, err := Parse(signature)
	if err != nil {
		return "", err
	}
	return d.String(), nil
}

type tokKind int

const (
	tokEOF tokKind = iota
	tokIdent
	tokLT
	tokGT
	tokComma
)

type token struct {
	kind  tokKind
	value string
	pos   int
}

func (t token) String() string {
	switch t.kind {
	case tokEOF:
		return "end of input"
	case tokIdent:
		return "identifier " + t.value
	default:
		return "'" + t.value + "'"
	}
}

// tokenize splits signature into identifiers and punctuation. A qualified
// name ("polymake::common::Int") is one identifier token.
func tokenize(signature string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(signature) {
		c := rune(signature[i])
		switch {
		case unicode.IsSpace(c):
			i++
		case c == '<':
			toks = append(toks, token{tokLT, "<", i})
			i++
		case c == '>':
			toks = append(toks, token{tokGT, ">", i})
			i++
		case c == ',':
			toks = append(toks, token{tokComma, ",", i})
			i++
		case isIdentRune(c):
			start := i
			for i < len(signature) {
				if isIdentRune(rune(signature[i])) {
					i++
					continue
				}
				if strings.HasPrefix(signature[i:], "::") {
					i += 2
					continue
				}
				break
			}
			toks = append(toks, token{tokIdent, signature[start:i], start})
		default:
			return nil, &SignatureError{Signature: signature, Offset: i, Reason: fmt.Sprintf("invalid character %q", c)}
		}
	}
	toks = append(toks, token{tokEOF, "", len(signature)})
	return toks, nil
}

func isIdentRune(c rune) bool {
	return c == '_' || c < unicode.MaxASCII && (unicode.IsLetter(c) || unicode.IsDigit(c))
}

// parser walks an immutable token slice with an index cursor.
type parser struct {
	src  string
	toks []token
	pos  int
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) errorf(t token, format string, args ...any) error {
	return &SignatureError{Signature: p.src, Offset: t.pos, Reason: fmt.Sprintf(format, args...)}
}

func (p *parser) parseType(depth int) (*Descriptor, error) {
	tok := p.next()
	if tok.kind != tokIdent {
		return nil, p.errorf(tok, "expected type name, got %s", tok)
	}
	if depth > MaxDepth {
		return nil, p.errorf(tok, "nesting deeper than the maximum")
	}
	if strings.HasSuffix(tok.value, "::") || strings.HasPrefix(tok.value, "::") {
		return nil, p.errorf(tok, "incomplete qualified name %q", tok.value)
	}
	if strings.Contains(tok.value, "::::") {
		return nil, p.errorf(tok, "empty namespace segment in %q", tok.value)
	}

	d := &Descriptor{Name: tok.value}
	if i := strings.LastIndex(tok.value, "::"); i >= 0 {
		d.Namespace = tok.value[:i]
		d.Name = tok.value[i+2:]
	}
	d.Kind = KindOf(d.Name)

	if p.peek().kind == tokLT {
		open := p.next()
		for {
			arg, err := p.parseType(depth + 1)
			if err != nil {
				return nil, err
			}
			d.Args = append(d.Args, arg)

			sep := p.next()
			if sep.kind == tokGT {
				break
			}
			if sep.kind != tokComma {
				if sep.kind == tokEOF {
					return nil, p.errorf(open, "unmatched '<'")
				}
				return nil, p.errorf(sep, "expected ',' or '>', got %s", sep)
			}
		}
	}

	if !d.Kind.acceptsArgs(len(d.Args)) {
		info := kinds[d.Kind]
		return nil, p.errorf(tok, "%s takes %s argument(s), got %d", d.Name, arityText(info.arity), len(d.Args))
	}
	if i := d.Kind.symmetryArg(); i >= 0 && i < len(d.Args) && !d.Args[i].Kind.isSymmetry() {
		return nil, p.errorf(tok, "%s expects NonSymmetric or Symmetric, got %s", d.Name, d.Args[i])
	}
	return d, nil
}

func arityText(a arity) string {
	if a.min == a.max {
		return strconv.Itoa(a.min)
	}
	return strconv.Itoa(a.min) + " to " + strconv.Itoa(a.max)
}
