// Package dice provides dice expressions for effect damage and healing.
// Expressions are parsed once, so templates can be validated when they are
// loaded, and rolled as often as needed.
//
// Supported syntax:
//   - Basic dice: "3d6", "d20" (one die)
//   - Arithmetic: "3d6+5", "2d8-2", "3d6*2", "2d10/2"
//   - Keep highest: "4d6kh3" or "4d6k3"
//   - Keep lowest: "4d6kl3"
//   - Drop highest: "4d6dh1"
//   - Drop lowest: "4d6dl1"
//   - Constants and parentheses: "(2d6+3)*2"
package dice

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"
)

// ErrEmptyExpression is returned when parsing a blank expression.
var ErrEmptyExpression = errors.New("empty expression")

// Limits on a single dice term.
const (
	MaxDice  = 1000
	MaxSides = 1000
)

// RollResult contains the result of a dice roll or expression evaluation
type RollResult struct {
	Total      int    // Final computed value
	Rolls      []int  // Individual die rolls (if applicable)
	Expression string // Original expression
	Breakdown  string // Human-readable breakdown of the roll
}

// Expr is a parsed dice expression.
type Expr struct {
	source string
	root   node
}

// Parse parses a dice expression.
func Parse(expression string) (*Expr, error) {
	src := strings.ToLower(strings.Join(strings.Fields(expression), ""))
	if src == "" {
		return nil, ErrEmptyExpression
	}

	p := &parser{src: src}
	root, err := p.parseSum()
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", expression, err)
	}
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("parse %q: unexpected %q at %d", expression, p.src[p.pos:], p.pos)
	}
	return &Expr{source: expression, root: root}, nil
}

// Validate reports whether expression parses.
func Validate(expression string) error {
	_, err := Parse(expression)
	return err
}

// String returns the original expression text.
func (e *Expr) String() string {
	return e.source
}

// Roll evaluates the expression with rng.
func (e *Expr) Roll(rng *rand.Rand) (*RollResult, error) {
	total, breakdown, rolls, err := e.root.eval(rng)
	if err != nil {
		return nil, err
	}
	return &RollResult{
		Total:      total,
		Rolls:      rolls,
		Expression: e.source,
		Breakdown:  breakdown,
	}, nil
}

// Roller handles dice rolling with a configurable random source
type Roller struct {
	rng *rand.Rand
}

// NewRoller creates a new Roller with the given random source
func NewRoller(rng *rand.Rand) *Roller {
	return &Roller{rng: rng}
}

// NewSeededRoller creates a Roller with a deterministic source.
func NewSeededRoller(seed int64) *Roller {
	return NewRoller(rand.New(rand.NewSource(seed)))
}

// Roll parses and evaluates a dice expression
func (r *Roller) Roll(expression string) (*RollResult, error) {
	expr, err := Parse(expression)
	if err != nil {
		return nil, err
	}
	return expr.Roll(r.rng)
}

// RollExpr evaluates an already parsed expression
func (r *Roller) RollExpr(expr *Expr) (*RollResult, error) {
	return expr.Roll(r.rng)
}

// --- expression tree ---

type node interface {
	eval(rng *rand.Rand) (int, string, []int, error)
}

type constNode int

func (c constNode) eval(*rand.Rand) (int, string, []int, error) {
	return int(c), strconv.Itoa(int(c)), nil, nil
}

type negNode struct {
	inner node
}

func (n negNode) eval(rng *rand.Rand) (int, string, []int, error) {
	v, b, rolls, err := n.inner.eval(rng)
	if err != nil {
		return 0, "", nil, err
	}
	return -v, "-" + b, rolls, nil
}

type binaryNode struct {
	op          byte
	left, right node
}

func (n binaryNode) eval(rng *rand.Rand) (int, string, []int, error) {
	lv, lb, lr, err := n.left.eval(rng)
	if err != nil {
		return 0, "", nil, err
	}
	rv, rb, rr, err := n.right.eval(rng)
	if err != nil {
		return 0, "", nil, err
	}

	var total int
	switch n.op {
	case '+':
		total = lv + rv
	case '-':
		total = lv - rv
	case '*':
		total = lv * rv
	case '/':
		if rv == 0 {
			return 0, "", nil, fmt.Errorf("division by zero")
		}
		total = lv / rv
	}

	rolls := append(append([]int{}, lr...), rr...)
	return total, fmt.Sprintf("%s %c %s", lb, n.op, rb), rolls, nil
}

type diceNode struct {
	count, sides int
	modifier     string
	modValue     int
}

func (d diceNode) eval(rng *rand.Rand) (int, string, []int, error) {
	rolls := make([]int, d.count)
	for i := range rolls {
		rolls[i] = rng.Intn(d.sides) + 1
	}

	kept := rolls
	breakdown := fmt.Sprintf("[%s]", joinInts(rolls, ", "))
	if d.modifier != "" && d.modValue > 0 && d.modValue < len(rolls) {
		sorted := append([]int{}, rolls...)
		sort.Ints(sorted)
		switch d.modifier {
		case "kh", "k":
			kept = sorted[len(sorted)-d.modValue:]
		case "kl":
			kept = sorted[:d.modValue]
		case "dh":
			kept = sorted[:len(sorted)-d.modValue]
		case "dl":
			kept = sorted[d.modValue:]
		}
		breakdown = fmt.Sprintf("[%s] %s%d → [%s]", joinInts(rolls, ", "), d.modifier, d.modValue, joinInts(kept, ", "))
	}

	total := 0
	for _, v := range kept {
		total += v
	}
	return total, breakdown, rolls, nil
}

// --- parser ---

type parser struct {
	src string
	pos int
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) parseSum() (node, error) {
	left, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek()
		if op != '+' && op != '-' {
			return left, nil
		}
		p.pos++
		right, err := p.parseProduct()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, left: left, right: right}
	}
}

func (p *parser) parseProduct() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek()
		if op != '*' && op != '/' {
			return left, nil
		}
		p.pos++
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, left: left, right: right}
	}
}

func (p *parser) parseUnary() (node, error) {
	switch p.peek() {
	case '-':
		p.pos++
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return negNode{inner: inner}, nil
	case '(':
		p.pos++
		inner, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		if p.peek() != ')' {
			return nil, fmt.Errorf("mismatched parentheses")
		}
		p.pos++
		return inner, nil
	case 0:
		return nil, fmt.Errorf("unexpected end of expression")
	}
	return p.parseTerm()
}

// parseTerm parses a constant or a dice term such as 4d6kh3.
func (p *parser) parseTerm() (node, error) {
	start := p.pos
	count, hasCount := p.readInt()
	if !hasCount && p.pos > start {
		return nil, fmt.Errorf("number out of range: %s", p.src[start:p.pos])
	}
	if p.peek() != 'd' {
		if !hasCount {
			return nil, fmt.Errorf("invalid term at %d", start)
		}
		return constNode(count), nil
	}
	p.pos++
	if !hasCount {
		count = 1
	}

	sides, ok := p.readInt()
	if !ok {
		return nil, fmt.Errorf("missing die size at %d", p.pos)
	}
	if count <= 0 || sides <= 0 {
		return nil, fmt.Errorf("invalid dice specification: %s", p.src[start:p.pos])
	}
	if count > MaxDice {
		return nil, fmt.Errorf("too many dice in %s: at most %d", p.src[start:p.pos], MaxDice)
	}
	if sides > MaxSides {
		return nil, fmt.Errorf("die size too large in %s: at most %d", p.src[start:p.pos], MaxSides)
	}

	d := diceNode{count: count, sides: sides}
	for _, mod := range []string{"kh", "kl", "dh", "dl", "k"} {
		if strings.HasPrefix(p.src[p.pos:], mod) {
			p.pos += len(mod)
			v, ok := p.readInt()
			if !ok {
				return nil, fmt.Errorf("missing count for %s modifier", mod)
			}
			d.modifier = mod
			d.modValue = v
			break
		}
	}
	return d, nil
}

func (p *parser) readInt() (int, bool) {
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	if start == p.pos {
		return 0, false
	}
	v, err := strconv.Atoi(p.src[start:p.pos])
	if err != nil {
		return 0, false
	}
	return v, true
}

// joinInts joins a slice of ints with a separator
func joinInts(nums []int, sep string) string {
	strs := make([]string, len(nums))
	for i, n := range nums {
		strs[i] = strconv.Itoa(n)
	}
	return strings.Join(strs, sep)
}
