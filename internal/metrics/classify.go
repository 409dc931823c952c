package metrics

// Default classification tables for the Lua grammar. These are versioned
// configuration: schema and metric compatibility depend on them, so
// overrides come from the project config file rather than code edits.

// DefaultOperatorTokens classifies leaf token kinds as Halstead operators.
// Closing halves of paired tokens are absent on purpose: a pair counts as
// one operator occurrence at its opener (see DefaultIgnoredTokens).
var DefaultOperatorTokens = []string{
	// symbols
	"#", "%", "&", "(", "*", "+", ",", "-", ".", "..", "...",
	"/", "//", ":", "::", ";", "<", "<<", "<=", "=", "==", ">", ">=", ">>",
	"[", "[[", "^", "{", "|", "~", "~=",
	// string openers (the closer is ignored, so the pair counts once)
	"string_start",
	// keywords
	"and", "break", "do", "else", "elseif", "end", "for", "function",
	"goto", "if", "in", "local", "not", "or", "repeat", "return", "then",
	"until", "while",
}

// DefaultIgnoredTokens are leaf kinds that are neither operator nor
// operand: closing halves of paired tokens and comment markup. Ignoring
// them is the explicit, testable default for unclassified kinds.
var DefaultIgnoredTokens = []string{
	")", "]", "}", "]]", "string_end",
}

// DefaultStatementKinds are counted as logical lines of code.
var DefaultStatementKinds = []string{
	"function_declaration",
	"variable_declaration",
	"assignment_statement",
	"if_statement",
	"while_statement",
	"for_statement",
	"repeat_statement",
	"return_statement",
	"break_statement",
	"goto_statement",
	"label_statement",
	"do_statement",
}

// DefaultDecisionKinds add one decision point each to cyclomatic
// complexity.
var DefaultDecisionKinds = []string{
	"if_statement",
	"elseif_statement",
	"while_statement",
	"for_statement",
	"repeat_statement",
}

// DefaultShortCircuitTokens are operator tokens that add a decision point
// per occurrence.
var DefaultShortCircuitTokens = []string{"and", "or"}

// DefaultFunctionKinds delimit function-like subtrees.
var DefaultFunctionKinds = []string{
	"function_declaration",
	"function_definition",
}

// DefaultCommentKinds are counted as comment lines.
var DefaultCommentKinds = []string{"comment"}
