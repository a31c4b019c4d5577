package executor

import (
	"regexp"
	"strings"
)

// The adapter does not parse SQL; a tokenizer that recognizes identifier
// boundaries is enough to detect phantom identifiers. String literals are
// stripped first so their contents never register as identifiers.

var (
	stringLiteralRe = regexp.MustCompile(`'(?:[^']|'')*'`)
	tableRefRe      = regexp.MustCompile(`(?i)\b(?:FROM|JOIN)\s+([A-Za-z_]\w*)(?:\s+(?:AS\s+)?([A-Za-z_]\w*))?`)
	qualifiedRefRe  = regexp.MustCompile(`\b([A-Za-z_]\w*)\.([A-Za-z_]\w*)`)
	identifierRe    = regexp.MustCompile(`\b[A-Za-z_]\w*\b`)
	funcCallRe      = regexp.MustCompile(`\b([A-Za-z_]\w*)\s*\(`)
)

// sqlKeywords are tokens never treated as identifiers.
var sqlKeywords = map[string]bool{
	"select": true, "from": true, "where": true, "join": true, "inner": true,
	"left": true, "right": true, "full": true, "outer": true, "cross": true,
	"on": true, "and": true, "or": true, "not": true, "in": true, "is": true,
	"null": true, "as": true, "group": true, "by": true, "order": true,
	"having": true, "limit": true, "offset": true, "distinct": true,
	"union": true, "all": true, "insert": true, "into": true, "values": true,
	"update": true, "set": true, "delete": true, "create": true, "table": true,
	"drop": true, "alter": true, "between": true, "like": true, "ilike": true,
	"case": true, "when": true, "then": true, "else": true, "end": true,
	"asc": true, "desc": true, "exists": true, "using": true, "with": true,
	"true": true, "false": true, "integer": true, "text": true, "real": true,
	"primary": true, "key": true, "if": true,
}

type qualifiedRef struct {
	qualifier string
	column    string
}

// references holds the identifier sets extracted from one SQL statement.
type references struct {
	tables    []string
	aliases   map[string]string // alias → table
	qualified []qualifiedRef
	bare      []string
}

// tokenize extracts table references, alias bindings, and column candidates
// from a SQL string.
func tokenize(sqlText string) references {
	text := stringLiteralRe.ReplaceAllString(sqlText, "''")

	refs := references{aliases: make(map[string]string)}

	seenTables := make(map[string]bool)
	for _, m := range tableRefRe.FindAllStringSubmatch(text, -1) {
		table := strings.ToLower(m[1])
		if sqlKeywords[table] {
			continue
		}
		if !seenTables[table] {
			seenTables[table] = true
			refs.tables = append(refs.tables, table)
		}
		if alias := strings.ToLower(m[2]); alias != "" && !sqlKeywords[alias] {
			refs.aliases[alias] = table
		}
	}

	seenQualified := make(map[string]bool)
	for _, m := range qualifiedRefRe.FindAllStringSubmatch(text, -1) {
		q := qualifiedRef{qualifier: strings.ToLower(m[1]), column: strings.ToLower(m[2])}
		key := q.qualifier + "." + q.column
		if !seenQualified[key] {
			seenQualified[key] = true
			refs.qualified = append(refs.qualified, q)
		}
	}

	// Bare identifiers: not keywords, not function names, not tables or
	// aliases, not part of a qualified reference, not select-list aliases.
	functions := make(map[string]bool)
	for _, m := range funcCallRe.FindAllStringSubmatch(text, -1) {
		functions[strings.ToLower(m[1])] = true
	}
	qualifiedSpans := qualifiedRefRe.FindAllStringIndex(text, -1)
	aliasTargets := selectAliases(text)

	seenBare := make(map[string]bool)
	for _, span := range identifierRe.FindAllStringIndex(text, -1) {
		if insideAny(span, qualifiedSpans) {
			continue
		}
		token := strings.ToLower(text[span[0]:span[1]])
		if sqlKeywords[token] || functions[token] || seenTables[token] ||
			refs.aliases[token] != "" || aliasTargets[token] || seenBare[token] {
			continue
		}
		seenBare[token] = true
		refs.bare = append(refs.bare, token)
	}

	return refs
}

// selectAliases collects identifiers bound with AS; they name outputs, not
// schema columns.
var asAliasRe = regexp.MustCompile(`(?i)\bAS\s+([A-Za-z_]\w*)`)

func selectAliases(text string) map[string]bool {
	out := make(map[string]bool)
	for _, m := range asAliasRe.FindAllStringSubmatch(text, -1) {
		out[strings.ToLower(m[1])] = true
	}
	return out
}

func insideAny(span []int, spans [][]int) bool {
	for _, s := range spans {
		if span[0] >= s[0] && span[1] <= s[1] {
			return true
		}
	}
	return false
}

// phantomTables returns referenced tables absent from the schema.
func (r references) phantomTables(schema map[string]TableSchema) []string {
	known := lowerTableSet(schema)
	var phantoms []string
	for _, t := range r.tables {
		if !known[t] {
			phantoms = append(phantoms, t)
		}
	}
	return phantoms
}

// phantomColumns returns referenced columns absent from the schema,
// qualified by table when the reference was qualified.
func (r references) phantomColumns(schema map[string]TableSchema) []string {
	columnsByTable := lowerColumnsByTable(schema)
	allColumns := make(map[string]bool)
	for _, cols := range columnsByTable {
		for c := range cols {
			allColumns[c] = true
		}
	}

	var phantoms []string
	seen := make(map[string]bool)
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			phantoms = append(phantoms, name)
		}
	}

	for _, q := range r.qualified {
		table := q.qualifier
		if aliased, ok := r.aliases[q.qualifier]; ok {
			table = aliased
		}
		cols, tableKnown := columnsByTable[table]
		if !tableKnown {
			// Qualifier names a phantom table; reported there, not here.
			continue
		}
		if !cols[q.column] {
			add(table + "." + q.column)
		}
	}

	for _, b := range r.bare {
		if !allColumns[b] {
			add(b)
		}
	}
	return phantoms
}

// knownColumns returns the referenced columns that do exist in the schema.
func (r references) knownColumns(schema map[string]TableSchema) []string {
	columnsByTable := lowerColumnsByTable(schema)
	allColumns := make(map[string]bool)
	for _, cols := range columnsByTable {
		for c := range cols {
			allColumns[c] = true
		}
	}

	var known []string
	seen := make(map[string]bool)
	for _, q := range r.qualified {
		if allColumns[q.column] && !seen[q.column] {
			seen[q.column] = true
			known = append(known, q.column)
		}
	}
	for _, b := range r.bare {
		if allColumns[b] && !seen[b] {
			seen[b] = true
			known = append(known, b)
		}
	}
	return known
}

func lowerTableSet(schema map[string]TableSchema) map[string]bool {
	out := make(map[string]bool, len(schema))
	for t := range schema {
		out[strings.ToLower(t)] = true
	}
	return out
}

func lowerColumnsByTable(schema map[string]TableSchema) map[string]map[string]bool {
	out := make(map[string]map[string]bool, len(schema))
	for t, ts := range schema {
		cols := make(map[string]bool, len(ts.Columns))
		for _, c := range ts.Columns {
			cols[strings.ToLower(c.Name)] = true
		}
		out[strings.ToLower(t)] = cols
	}
	return out
}
