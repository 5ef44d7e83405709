package config

import "path/filepath"

const SourceFileExt = ".sum"

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".sum", ".sums"}

// HasSourceExt reports whether path ends in a recognized source extension.
func HasSourceExt(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range SourceFileExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// IsTestMode indicates if the program is running in test mode.
// Tests set it in TestMain so type strings and diagnostics are deterministic.
var IsTestMode = false

// DefaultMaxSlots is the slot limit for an anonymous sum when no
// configuration overrides it. It mirrors the arity limits applied to tuples.
const DefaultMaxSlots = 16

// Built-in type names
const (
	I32TypeName    = "i32"
	I64TypeName    = "i64"
	U8TypeName     = "u8"
	F32TypeName    = "f32"
	F64TypeName    = "f64"
	BoolTypeName   = "bool"
	CharTypeName   = "char"
	StringTypeName = "String"
	RangeTypeName  = "Range"
	CharsTypeName  = "Chars"
	ReadyTypeName  = "Ready"
	DelayTypeName  = "Delay"
)

// Capability names. The first group can be derived for anonymous sums,
// the second group never can.
const (
	PartialEqCapName  = "PartialEq"
	EqCapName         = "Eq"
	PartialOrdCapName = "PartialOrd"
	OrdCapName        = "Ord"
	CloneCapName      = "Clone"
	CopyCapName       = "Copy"
	DebugCapName      = "Debug"
	HashCapName       = "Hash"
	IteratorCapName   = "Iterator"
	FutureCapName     = "Future"

	DefaultCapName = "Default"
	FromCapName    = "From"
	IntoCapName    = "Into"
)

// Built-in function names
const (
	PrintKeyword    = "print"
	DebugFuncName   = "debug"
	EqFuncName      = "eq"
	CmpFuncName     = "cmp"
	HashFuncName    = "hash"
	CloneFuncName   = "clone"
	CopyFuncName    = "copy"
	RangeFuncName   = "range"
	CharsFuncName   = "chars"
	ReadyFuncName   = "ready"
	DelayFuncName   = "delay"
	BlockOnFuncName = "block_on"
	MapErrFuncName  = "map_err"
)

// Policy values accepted in sumcheck.yaml.
const (
	DegenerateReject = "reject"
	DegenerateAllow  = "allow"

	OrderingNone           = "none"
	OrderingTagThenPayload = "tag-then-payload"

	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)
