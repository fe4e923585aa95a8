package internal

import (
	"golang.org/x/exp/slices"
)

// Kind is the storage class of a declared identifier. Static and Field live in class scope,
// Arg and Var live in subroutine scope.
type Kind int

const (
	StaticKind Kind = iota
	FieldKind
	ArgKind
	VarKind
)

func (k Kind) String() string {
	switch k {
	case StaticKind:
		return "static"
	case FieldKind:
		return "field"
	case ArgKind:
		return "arg"
	case VarKind:
		return "var"
	}
	return "unknown"
}

// Segment is the VM memory segment holding identifiers of kind k.
func (k Kind) Segment() Segment {
	switch k {
	case StaticKind:
		return StaticSegment
	case FieldKind:
		return ThisSegment
	case ArgKind:
		return ArgumentSegment
	default:
		return LocalSegment
	}
}

func (k Kind) Scope() Scope {
	if k == StaticKind || k == FieldKind {
		return ClassScope
	}
	return SubroutineScope
}

type Scope int

const (
	ClassScope Scope = iota
	SubroutineScope
)

func (s Scope) String() string {
	if s == ClassScope {
		return "class"
	}
	return "subroutine"
}

type Entry struct {
	Name  string
	Type  string
	Kind  Kind
	Index int
}

// SymbolTable holds the identifiers visible while compiling one class. Entries are kept in
// declaration order; the index of an entry is the number of entries of the same kind declared
// before it and is never changed afterwards.
type SymbolTable struct {
	classScope      []Entry
	subroutineScope []Entry
	counters        [4]int
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{}
}

// StartSubroutine drops every Arg and Var entry and restarts their numbering at 0.
func (table *SymbolTable) StartSubroutine() {
	table.subroutineScope = table.subroutineScope[:0]
	table.counters[ArgKind], table.counters[VarKind] = 0, 0
}

// Define records name with the next index of kind. Declaring a name twice in the same live scope
// is a *RedeclarationError.
func (table *SymbolTable) Define(name, typ string, kind Kind) (Entry, error) {
	scope := table.scope(kind.Scope())
	if i := indexOf(*scope, name); i >= 0 {
		return Entry{}, &RedeclarationError{Name: name, Scope: kind.Scope(), Prev: (*scope)[i]}
	}
	entry := Entry{Name: name, Type: typ, Kind: kind, Index: table.counters[kind]}
	table.counters[kind]++
	*scope = append(*scope, entry)
	return entry, nil
}

// VarCount returns how many identifiers of kind have been defined in their live scope.
func (table *SymbolTable) VarCount(kind Kind) int {
	return table.counters[kind]
}

// Lookup searches subroutine scope first, then class scope.
func (table *SymbolTable) Lookup(name string) (Entry, bool) {
	if i := indexOf(table.subroutineScope, name); i >= 0 {
		return table.subroutineScope[i], true
	}
	if i := indexOf(table.classScope, name); i >= 0 {
		return table.classScope[i], true
	}
	return Entry{}, false
}

func (table *SymbolTable) KindOf(name string) (Kind, bool) {
	entry, ok := table.Lookup(name)
	return entry.Kind, ok
}

func (table *SymbolTable) TypeOf(name string) (string, bool) {
	entry, ok := table.Lookup(name)
	return entry.Type, ok
}

func (table *SymbolTable) IndexOf(name string) (int, bool) {
	entry, ok := table.Lookup(name)
	return entry.Index, ok
}

func (table *SymbolTable) scope(s Scope) *[]Entry {
	if s == ClassScope {
		return &table.classScope
	}
	return &table.subroutineScope
}

func indexOf(entries []Entry, name string) int {
	return slices.IndexFunc(entries, func(e Entry) bool { return e.Name == name })
}
