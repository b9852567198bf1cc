package branch

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrInvalidPattern is returned by Compile for patterns with unbalanced
// extglob groups or bracket expressions that cannot be parsed.
var ErrInvalidPattern = errors.New("invalid branch pattern")

type nodeKind int

const (
	nodeLiteral nodeKind = iota
	nodeAnyChar
	nodeStar
	nodeGlobStar
	nodeClass
	nodeGroup
)

type charRange struct{ lo, hi rune }

type node struct {
	kind    nodeKind
	char    rune
	negate  bool
	ranges  []charRange
	classes []func(rune) bool
	op      rune // one of ? * + @ ! for groups
	alts    [][]node
}

// Pattern is a compiled extended glob.
type Pattern struct {
	source string
	nodes  []node
}

// String returns the pattern text.
func (p *Pattern) String() string { return p.source }

// Compile parses a shell style glob with extglob groups:
//
//	*        any run of characters except '/'
//	**       any run of characters
//	?        one character except '/'
//	[a-z]    bracket expression, [!...] or [^...] negates, [[:digit:]] classes
//	{a,b}    brace alternation
//	?(a|b)   zero or one     *(a|b) zero or more
//	+(a|b)   one or more     @(a|b) exactly one
//	!(a|b)   anything except the alternatives
func Compile(pattern string) (*Pattern, error) {
	p := &parser{src: []rune(pattern)}
	nodes, err := p.sequence("")
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidPattern, pattern, err)
	}
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("%w %q: unexpected %q at %d", ErrInvalidPattern, pattern, p.src[p.pos], p.pos)
	}
	return &Pattern{source: pattern, nodes: nodes}, nil
}

// Match compiles pattern and reports whether name matches it entirely.
func Match(pattern, name string) (bool, error) {
	p, err := Compile(pattern)
	if err != nil {
		return false, err
	}
	return p.Match(name), nil
}

// Match reports whether name matches the whole pattern.
func (p *Pattern) Match(name string) bool {
	s := []rune(name)
	return matchSeq(p.nodes, s, 0, func(end int) bool { return end == len(s) })
}

type parser struct {
	src []rune
	pos int
}

func (p *parser) peek(offset int) (rune, bool) {
	i := p.pos + offset
	if i >= len(p.src) {
		return 0, false
	}
	return p.src[i], true
}

// sequence parses until one of the stop runes (left unconsumed) or the end.
func (p *parser) sequence(stops string) ([]node, error) {
	var out []node
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if strings.ContainsRune(stops, c) {
			return out, nil
		}
		next, hasNext := p.peek(1)

		switch {
		case c == '\\':
			if !hasNext {
				out = append(out, node{kind: nodeLiteral, char: c})
				p.pos++
				continue
			}
			out = append(out, node{kind: nodeLiteral, char: next})
			p.pos += 2
		case strings.ContainsRune("?*+@!", c) && hasNext && next == '(':
			p.pos += 2
			alts, err := p.alternatives('|', ')')
			if err != nil {
				return nil, err
			}
			out = append(out, node{kind: nodeGroup, op: c, alts: alts})
		case c == '*':
			p.pos++
			if next == '*' && hasNext {
				for p.pos < len(p.src) && p.src[p.pos] == '*' {
					p.pos++
				}
				out = append(out, node{kind: nodeGlobStar})
				continue
			}
			out = append(out, node{kind: nodeStar})
		case c == '?':
			p.pos++
			out = append(out, node{kind: nodeAnyChar})
		case c == '[':
			n, ok := p.bracket()
			if !ok {
				out = append(out, node{kind: nodeLiteral, char: c})
				p.pos++
				continue
			}
			out = append(out, n)
		case c == '{':
			start := p.pos
			p.pos++
			alts, err := p.alternatives(',', '}')
			if err != nil || len(alts) < 2 {
				// Not a brace list, treat the brace literally.
				p.pos = start + 1
				out = append(out, node{kind: nodeLiteral, char: c})
				continue
			}
			out = append(out, node{kind: nodeGroup, op: '@', alts: alts})
		default:
			out = append(out, node{kind: nodeLiteral, char: c})
			p.pos++
		}
	}
	return out, nil
}

// alternatives parses sep separated sequences up to and including end.
func (p *parser) alternatives(sep, end rune) ([][]node, error) {
	var alts [][]node
	for {
		seq, err := p.sequence(string([]rune{sep, end}))
		if err != nil {
			return nil, err
		}
		alts = append(alts, seq)
		if p.pos >= len(p.src) {
			return nil, fmt.Errorf("missing %q", end)
		}
		c := p.src[p.pos]
		p.pos++
		if c == end {
			return alts, nil
		}
	}
}

var posixClasses = map[string]func(rune) bool{
	"alnum":  func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) },
	"alpha":  unicode.IsLetter,
	"digit":  unicode.IsDigit,
	"lower":  unicode.IsLower,
	"upper":  unicode.IsUpper,
	"space":  unicode.IsSpace,
	"punct":  unicode.IsPunct,
	"word":   func(r rune) bool { return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) },
	"xdigit": func(r rune) bool { return strings.ContainsRune("0123456789abcdefABCDEF", r) },
}

// bracket parses a [...] expression starting at p.pos. On failure the
// position is left unchanged.
func (p *parser) bracket() (node, bool) {
	i := p.pos + 1
	n := node{kind: nodeClass}
	if i < len(p.src) && (p.src[i] == '!' || p.src[i] == '^') {
		n.negate = true
		i++
	}
	first := true
	for i < len(p.src) {
		c := p.src[i]
		if c == ']' && !first {
			p.pos = i + 1
			return n, true
		}
		first = false
		if c == '[' && i+1 < len(p.src) && p.src[i+1] == ':' {
			if end := indexFrom(p.src, ":]", i+2); end >= 0 {
				if fn, ok := posixClasses[string(p.src[i+2:end])]; ok {
					n.classes = append(n.classes, fn)
					i = end + 2
					continue
				}
			}
		}
		if c == '\\' && i+1 < len(p.src) {
			i++
			c = p.src[i]
		}
		lo, hi := c, c
		if i+2 < len(p.src) && p.src[i+1] == '-' && p.src[i+2] != ']' {
			hi = p.src[i+2]
			i += 2
		}
		n.ranges = append(n.ranges, charRange{lo: lo, hi: hi})
		i++
	}
	return node{}, false
}

func indexFrom(src []rune, needle string, from int) int {
	n := len([]rune(needle))
	for i := from; i+n <= len(src); i++ {
		if string(src[i:i+n]) == needle {
			return i
		}
	}
	return -1
}

func (n node) matchesClass(r rune) bool {
	hit := false
	for _, cr := range n.ranges {
		if r >= cr.lo && r <= cr.hi {
			hit = true
			break
		}
	}
	if !hit {
		for _, fn := range n.classes {
			if fn(r) {
				hit = true
				break
			}
		}
	}
	return hit != n.negate
}

// matchSeq matches nodes against s starting at pos and calls k with every
// end position reached; it stops as soon as k accepts one.
func matchSeq(nodes []node, s []rune, pos int, k func(int) bool) bool {
	if len(nodes) == 0 {
		return k(pos)
	}
	n, rest := nodes[0], nodes[1:]
	cont := func(end int) bool { return matchSeq(rest, s, end, k) }

	switch n.kind {
	case nodeLiteral:
		return pos < len(s) && s[pos] == n.char && cont(pos+1)
	case nodeAnyChar:
		return pos < len(s) && s[pos] != '/' && cont(pos+1)
	case nodeClass:
		return pos < len(s) && n.matchesClass(s[pos]) && cont(pos+1)
	case nodeStar:
		end := pos
		for end < len(s) && s[end] != '/' {
			end++
		}
		for e := end; e >= pos; e-- {
			if cont(e) {
				return true
			}
		}
		return false
	case nodeGlobStar:
		for e := len(s); e >= pos; e-- {
			if cont(e) {
				return true
			}
		}
		return false
	case nodeGroup:
		return matchGroup(n, s, pos, cont)
	}
	return false
}

func matchAlts(alts [][]node, s []rune, pos int, k func(int) bool) bool {
	for _, alt := range alts {
		if matchSeq(alt, s, pos, k) {
			return true
		}
	}
	return false
}

func matchGroup(n node, s []rune, pos int, k func(int) bool) bool {
	switch n.op {
	case '@':
		return matchAlts(n.alts, s, pos, k)
	case '?':
		return matchAlts(n.alts, s, pos, k) || k(pos)
	case '+':
		return matchRepeat(n.alts, s, pos, k)
	case '*':
		return matchRepeat(n.alts, s, pos, k) || k(pos)
	case '!':
		limit := pos
		for limit < len(s) && s[limit] != '/' {
			limit++
		}
		for e := limit; e >= pos; e-- {
			end := e
			excluded := matchAlts(n.alts, s[:end], pos, func(got int) bool { return got == end })
			if !excluded && k(end) {
				return true
			}
		}
		return false
	}
	return false
}

// matchRepeat matches one or more repetitions of the alternatives. Empty
// repetitions are not repeated, which keeps the recursion finite.
func matchRepeat(alts [][]node, s []rune, pos int, k func(int) bool) bool {
	return matchAlts(alts, s, pos, func(end int) bool {
		if end > pos && matchRepeat(alts, s, end, k) {
			return true
		}
		return k(end)
	})
}
