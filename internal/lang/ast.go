package lang

// ast.go holds the parser's intermediate statement tree. Unlike the
// original implementation's setting_loader, which builds the model
// directly as it parses, the Go compiler separates parsing (producing
// these Stmt values) from binding (compiler.go, which resolves names
// against the in-progress *model.Setting) so parse errors and bind
// errors can both be collected as Diagnostics without unwinding state.

// Stmt is one top-level or keymap-scoped statement.
type Stmt struct {
	Kind StmtKind
	Line int

	Include string // Include
	Symbol  string // Define

	CondNegate bool     // If
	CondExpr   []string // If: symbol names combined with And/Or
	CondOp     string   // "&&" or "||" or ""

	DefKind  string   // Def: "key"|"mod"|"sync"|"alias"|"subst"|"numbermod"|"option"
	DefName  string   // Def: the name being defined
	DefArgs  []string // Def: tokens after the name and its "=", adjacent tokens joined

	KeymapName   string // Keymap/Window
	KeymapParent string
	WindowKind   string // "and" | "or" | "single"
	ClassPattern string
	TitlePattern string
	DefaultSeq   []RawAction

	BindKeys []RawAction // Key/Event: one or more modifier-prefixed LHS specs
	BindSeq  []RawAction

	ModGroup string
	ModOp    string // "=", "+=", "-=", ""
	ModMode  string // "", "!", "!!", "!!!"
	ModKeys  []string

	ModAssignBank string // "mod assign Mxx = *keyname"
	ModAssignKey  string

	KeySeqName string // KeySeq
	KeySeqBody []RawAction

	Body []Stmt // nested statements inside a keymap/window block
}

// StmtKind discriminates Stmt.
type StmtKind int

const (
	StmtInclude StmtKind = iota
	StmtDefine
	StmtIf
	StmtElseIf
	StmtElse
	StmtEndIf
	StmtDef
	StmtKeymap
	StmtWindow
	StmtKey
	StmtEvent
	StmtMod
	StmtModAssign
	StmtKeySeqDecl
)

// RawAction is a not-yet-bound action on a KeySeq RHS: either a bare key
// reference (possibly modifier-prefixed), a $name keyseq reference, or a
// &function(args) call. Exactly one of the three is populated.
type RawAction struct {
	KeyName   string
	KeyMods   []string // prefix tokens applied to KeyName
	SeqRef    string    // "$name"
	FuncName  string    // "&name"
	FuncArgs  []string
	FuncMods  []string
}
