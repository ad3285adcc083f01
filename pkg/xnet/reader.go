package xnet

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/dd0wney/xnetgraph/pkg/ferrors"
	"github.com/dd0wney/xnetgraph/pkg/graph"
)

type pendingDict struct {
	name   string
	labels []string
}

// Read parses an XNET text container and returns the reconstructed
// graph. Legacy mode (no version banner, `#vertices` first) is detected
// per §4.7.1 and relaxes the `#edges` direction token and allows
// `__category`-suffixed string attributes to auto-convert to category
// attributes on load.
func Read(r io.Reader) (*graph.Graph, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}
	p := &parser{lines: lines}
	return p.parse()
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, ferrors.IOError("Read", err)
	}
	return lines, nil
}

type parser struct {
	lines  []string
	pos    int
	legacy bool
	g      *graph.Graph

	nodeCount int
	pendingGraphDict, pendingNodeDict, pendingEdgeDict *pendingDict
}

func (p *parser) lineNo() int { return p.pos + 1 }

func (p *parser) peek() (string, bool) {
	for p.pos < len(p.lines) {
		l := p.lines[p.pos]
		trimmed := strings.TrimSpace(l)
		if trimmed == "" || strings.HasPrefix(trimmed, "##") {
			p.pos++
			continue
		}
		return l, true
	}
	return "", false
}

func (p *parser) next() (string, bool) {
	l, ok := p.peek()
	if ok {
		p.pos++
	}
	return l, ok
}

func (p *parser) rawNext() (string, bool) {
	if p.pos >= len(p.lines) {
		return "", false
	}
	l := p.lines[p.pos]
	p.pos++
	return l, true
}

func (p *parser) errf(msg string) error {
	return ferrors.CorruptFormat("Read", "line "+strconv.Itoa(p.lineNo())+": "+msg)
}

func (p *parser) parse() (*graph.Graph, error) {
	first, ok := p.peek()
	if !ok {
		return nil, p.errf("empty input")
	}
	trimmed := strings.TrimSpace(first)
	switch {
	case strings.HasPrefix(trimmed, "#XNET"):
		p.next()
	case strings.HasPrefix(trimmed, "#vertices"):
		p.legacy = true
	default:
		return nil, p.errf("missing version banner or #vertices section")
	}

	if err := p.parseVertices(); err != nil {
		return nil, err
	}

	directed, err := p.lookaheadDirected()
	if err != nil {
		return nil, err
	}
	p.g = graph.NewGraph(directed, uint64(p.nodeCount), 0)
	if _, err := p.g.AddNodes(p.nodeCount); err != nil {
		return nil, err
	}

	for {
		line, ok := p.peek()
		if !ok {
			break
		}
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "#gdict"):
			d, err := p.parseDictBlock(trimmed)
			if err != nil {
				return nil, err
			}
			p.pendingGraphDict = d
		case strings.HasPrefix(trimmed, "#vdict"):
			d, err := p.parseDictBlock(trimmed)
			if err != nil {
				return nil, err
			}
			p.pendingNodeDict = d
		case strings.HasPrefix(trimmed, "#edict"):
			d, err := p.parseDictBlock(trimmed)
			if err != nil {
				return nil, err
			}
			p.pendingEdgeDict = d
		case strings.HasPrefix(trimmed, "#g "):
			if err := p.parseAttrBlock(graph.ScopeGraph, trimmed, 1); err != nil {
				return nil, err
			}
		case strings.HasPrefix(trimmed, "#v "):
			if err := p.parseAttrBlock(graph.ScopeNode, trimmed, p.nodeCount); err != nil {
				return nil, err
			}
		case strings.HasPrefix(trimmed, "#e "):
			if err := p.parseAttrBlock(graph.ScopeEdge, trimmed, p.g.EdgeCount()); err != nil {
				return nil, err
			}
		case strings.HasPrefix(trimmed, "#edges"):
			if err := p.parseEdges(trimmed); err != nil {
				return nil, err
			}
		default:
			return nil, p.errf("unexpected directive: " + trimmed)
		}
	}

	if err := p.applyLegacyCategoryConversion(); err != nil {
		return nil, err
	}
	return p.g, nil
}

func (p *parser) parseVertices() error {
	line, ok := p.next()
	if !ok {
		return p.errf("missing #vertices section")
	}
	toks := splitTokens(strings.TrimSpace(line))
	if len(toks) < 2 || toks[0] != "#vertices" {
		return p.errf("malformed #vertices directive")
	}
	n, err := strconv.Atoi(toks[1])
	if err != nil || n < 0 {
		return p.errf("invalid vertex count")
	}
	p.nodeCount = n

	if p.legacy {
		for i := 0; i < n; i++ {
			if _, ok := p.peek(); !ok {
				return p.errf("truncated legacy vertex label list")
			}
			p.rawNext()
		}
	}
	return nil
}

// lookaheadDirected scans forward for the #edges directive to learn
// direction before the graph is constructed, without consuming any
// lines: direction must be fixed at construction time but the
// directive appears after the graph-scope attribute blocks.
func (p *parser) lookaheadDirected() (bool, error) {
	for i := p.pos; i < len(p.lines); i++ {
		t := strings.TrimSpace(p.lines[i])
		if !strings.HasPrefix(t, "#edges") {
			continue
		}
		toks := splitTokens(t)
		for _, tok := range toks[1:] {
			switch tok {
			case "directed":
				return true, nil
			case "undirected":
				return false, nil
			}
		}
		if !p.legacy {
			return false, p.errf("expected 'directed' or 'undirected'")
		}
		return false, nil
	}
	return false, p.errf("missing #edges directive")
}

func (p *parser) parseEdges(line string) error {
	p.next()
	toks := splitTokens(line)
	if !p.legacy && len(toks) != 2 {
		return p.errf("malformed #edges directive")
	}
	for _, tok := range toks[1:] {
		switch tok {
		case "directed", "undirected":
		case "weighted", "nonweighted":
			if !p.legacy {
				return p.errf("unknown token in #edges directive: " + tok)
			}
		default:
			return p.errf("unknown token in #edges directive: " + tok)
		}
	}

	var pairs []graph.EdgePair
	for {
		l, ok := p.peek()
		if !ok {
			break
		}
		trimmed := strings.TrimSpace(l)
		if strings.HasPrefix(trimmed, "#") {
			break
		}
		p.next()
		toks := strings.Fields(trimmed)
		if len(toks) < 2 {
			return p.errf("malformed edge line")
		}
		from, err1 := strconv.ParseUint(toks[0], 10, 64)
		to, err2 := strconv.ParseUint(toks[1], 10, 64)
		if err1 != nil || err2 != nil {
			return p.errf("invalid edge endpoint")
		}
		pairs = append(pairs, graph.EdgePair{From: from, To: to})
	}

	if len(pairs) > 0 {
		if _, err := p.g.AddEdges(pairs); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) parseDictBlock(line string) (*pendingDict, error) {
	p.next()
	toks := splitTokens(line)
	if len(toks) != 3 {
		return nil, p.errf("malformed dictionary directive")
	}
	name, err := unescapeString(toks[1])
	if err != nil {
		return nil, err
	}
	k, err := strconv.Atoi(toks[2])
	if err != nil || k < 0 {
		return nil, p.errf("invalid dictionary size")
	}
	labels := make([]string, k)
	for i := 0; i < k; i++ {
		l, ok := p.rawNext()
		if !ok {
			return nil, p.errf("truncated dictionary block")
		}
		fields := splitTokens(strings.TrimSpace(l))
		if len(fields) != 2 {
			return nil, p.errf("malformed dictionary entry")
		}
		id, err := strconv.Atoi(fields[0])
		if err != nil || id < 0 || id >= k {
			return nil, p.errf("dictionary id out of range")
		}
		label, err := unescapeString(fields[1])
		if err != nil {
			return nil, err
		}
		labels[id] = label
	}
	return &pendingDict{name: name, labels: labels}, nil
}

func (p *parser) parseAttrBlock(scope graph.Scope, line string, rows int) error {
	p.next()
	toks := splitTokens(line)
	if len(toks) != 3 {
		return p.errf("malformed attribute directive")
	}
	name, err := unescapeString(toks[1])
	if err != nil {
		return err
	}
	baseType, dimension, err := parseTypeCode(toks[2])
	if err != nil {
		return err
	}

	attr, err := p.g.DefineAttribute(scope, name, baseType, dimension)
	if err != nil {
		return err
	}

	if baseType == graph.TypeCategory {
		dict := p.takePendingDict(scope, name)
		if dict != nil {
			d := graph.NewDictionary()
			for _, label := range dict.labels {
				d.Intern(label)
			}
			if err := attr.SetDictionary(d, false); err != nil {
				return err
			}
		}
	}

	for i := 0; i < rows; i++ {
		l, ok := p.rawNext()
		if !ok {
			return p.errf("truncated attribute value block for " + name)
		}
		if err := setAttrValueFromLine(attr, i, strings.TrimRight(l, "\r")); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) takePendingDict(scope graph.Scope, name string) *pendingDict {
	var d **pendingDict
	switch scope {
	case graph.ScopeGraph:
		d = &p.pendingGraphDict
	case graph.ScopeNode:
		d = &p.pendingNodeDict
	case graph.ScopeEdge:
		d = &p.pendingEdgeDict
	}
	if *d == nil || (*d).name != name {
		return nil
	}
	out := *d
	*d = nil
	return out
}

func setAttrValueFromLine(attr *graph.Attribute, row int, line string) error {
	switch attr.BaseType() {
	case graph.TypeString:
		s, err := unescapeString(strings.TrimSpace(line))
		if err != nil {
			return err
		}
		return attr.SetString(row, []*string{&s})
	case graph.TypeCategory:
		label, err := unescapeString(strings.TrimSpace(line))
		if err != nil {
			return err
		}
		return attr.SetCategoryLabel(row, label)
	case graph.TypeBool:
		fields := strings.Fields(line)
		vals := make([]bool, len(fields))
		for i, f := range fields {
			vals[i] = f != "0"
		}
		return attr.SetBool(row, vals)
	default:
		fields := strings.Fields(line)
		vals := make([]float64, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return ferrors.CorruptFormat("Read", "invalid numeric value: "+f)
			}
			vals[i] = v
		}
		return attr.SetFloat64(row, vals)
	}
}

// applyLegacyCategoryConversion auto-categorizes string attributes whose
// name ends with __category (§4.7.1 legacy convention): ids assigned by
// frequency, __NA__ mapped to the missing sentinel.
func (p *parser) applyLegacyCategoryConversion() error {
	if !p.legacy {
		return nil
	}
	for _, scope := range []graph.Scope{graph.ScopeNode, graph.ScopeEdge, graph.ScopeGraph} {
		for _, name := range p.g.AttributeNames(scope) {
			if !strings.HasSuffix(name, "__category") {
				continue
			}
			attr, _ := p.g.GetAttribute(scope, name)
			if attr.BaseType() != graph.TypeString {
				continue
			}
			if err := attr.AutoCategorize(graph.SortFrequency); err != nil {
				return err
			}
		}
	}
	return nil
}
