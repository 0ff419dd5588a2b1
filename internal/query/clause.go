// Package query assembles the parameterized graph queries the data unit
// sends to the graph driver. It is a pipeline of logical clauses
// (with/match/where/with/return), mirroring the query-builder contract in
// spec §4.3: each lookup composes a primary selector with four canonical
// sub-queries (preconditions, results, assets, position).
package query

import (
	"regexp"
	"strings"
)

var collapseWhitespace = regexp.MustCompile(`(\n[ \t]*)|([ \t]{2,})`)

// squash collapses embedded newlines/indentation in a clause body down to
// single spaces, the way a multi-line Cypher fragment is flattened before
// being sent over the wire.
func squash(body string) string {
	return collapseWhitespace.ReplaceAllString(body, " ")
}

// LogicOperator joins sibling predicates in a where clause.
type LogicOperator string

const (
	And LogicOperator = " and "
	Or  LogicOperator = " or "
)

// Predicate is either a literal condition string or a nested LogicList,
// allowing where-clauses to nest AND/OR groups arbitrarily.
type Predicate interface {
	build() string
}

type literal string

func (l literal) build() string { return string(l) }

// LogicList is an ordered group of Predicates joined by Operator.
type LogicList struct {
	Operator   LogicOperator
	predicates []Predicate
}

// NewLogicList creates a LogicList; the default operator is And.
func NewLogicList(op LogicOperator) *LogicList {
	if op == "" {
		op = And
	}
	return &LogicList{Operator: op}
}

// Add appends a literal predicate string.
func (l *LogicList) Add(condition string) {
	l.predicates = append(l.predicates, literal(squash(condition)))
}

// AddGroup appends a nested LogicList, rendered in parentheses.
func (l *LogicList) AddGroup(group *LogicList) {
	l.predicates = append(l.predicates, group)
}

func (l *LogicList) build() string {
	if len(l.predicates) == 0 {
		return ""
	}
	parts := make([]string, len(l.predicates))
	for i, p := range l.predicates {
		parts[i] = p.build()
	}
	return strings.Join(parts, string(l.Operator))
}

// Clause is a single prefixed fragment of a query ("with", "match",
// "return"); Items are joined with commas.
type Clause struct {
	prefix string
	items  []string
}

func newClause(prefix string) *Clause {
	return &Clause{prefix: prefix}
}

// Add appends a fragment to the clause.
func (c *Clause) Add(def string) {
	c.items = append(c.items, squash(def))
}

func (c *Clause) build() string {
	if len(c.items) == 0 {
		return ""
	}
	return c.prefix + " " + strings.Join(c.items, ",")
}

// AliasClause is like Clause but each item may carry an "as alias" suffix.
type AliasClause struct {
	prefix string
	items  []aliasedItem
}

type aliasedItem struct {
	def, alias string
}

func newAliasClause(prefix string) *AliasClause {
	return &AliasClause{prefix: prefix}
}

// Add appends def, optionally aliased.
func (c *AliasClause) Add(def, alias string) {
	c.items = append(c.items, aliasedItem{squash(def), alias})
}

func (c *AliasClause) build() string {
	if len(c.items) == 0 {
		return ""
	}
	parts := make([]string, len(c.items))
	for i, it := range c.items {
		if it.alias != "" {
			parts[i] = it.def + " as " + it.alias
		} else {
			parts[i] = it.def
		}
	}
	return c.prefix + " " + strings.Join(parts, ",")
}

// WhereClause wraps a LogicList with the "where" prefix.
type WhereClause struct {
	logic *LogicList
}

func newWhereClause() *WhereClause {
	return &WhereClause{logic: NewLogicList(And)}
}

// Add appends a plain condition to the where clause's top-level AND group.
func (w *WhereClause) Add(condition string) {
	w.logic.Add(condition)
}

// AddGroup appends a nested OR/AND group to the where clause.
func (w *WhereClause) AddGroup(group *LogicList) {
	w.logic.AddGroup(group)
}

// Replace swaps the clause's top-level logic group wholesale, used when a
// caller builds a whole where-predicate tree up front instead of appending
// to it incrementally.
func (w *WhereClause) Replace(group *LogicList) {
	w.logic = group
}

func (w *WhereClause) build() string {
	body := w.logic.build()
	if body == "" {
		return ""
	}
	return "where " + body
}

// Query is a single with/match/where/with/return clause pipeline.
type Query struct {
	Input  *Clause
	Match  *Clause
	Where  *WhereClause
	With   *AliasClause
	Return *Clause
}

// NewQuery creates an empty clause pipeline.
func NewQuery() *Query {
	return &Query{
		Input:  newClause("with"),
		Match:  newClause("match"),
		Where:  newWhereClause(),
		With:   newAliasClause("with"),
		Return: newClause("return"),
	}
}

// Build renders the clauses in with/match/where/with/return order, skipping
// any that are empty.
func (q *Query) Build() string {
	parts := []string{
		q.Input.build(),
		q.Match.build(),
		q.Where.build(),
		q.With.build(),
		q.Return.build(),
	}
	return joinNonEmpty(parts)
}

// Pipeline composes several Queries into nested `call { ... }` blocks
// followed by a shared with/return tail, mirroring how the data unit joins
// the primary selector with the preconditions/results/assets/position
// sub-queries.
type Pipeline struct {
	queries []*Query
	With    *AliasClause
	Return  *Clause
}

// NewPipeline creates an empty Pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{
		With:   newAliasClause("with"),
		Return: newClause("return"),
	}
}

// Add appends a sub-query to the pipeline.
func (p *Pipeline) Add(q *Query) {
	p.queries = append(p.queries, q)
}

// Build renders every sub-query as a `call {...}` block, followed by the
// pipeline's own with/return tail.
func (p *Pipeline) Build() string {
	calls := make([]string, len(p.queries))
	for i, q := range p.queries {
		calls[i] = "call {" + q.Build() + "}"
	}
	parts := []string{
		strings.Join(calls, " "),
		p.With.build(),
		p.Return.build(),
	}
	return joinNonEmpty(parts)
}

func joinNonEmpty(parts []string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
