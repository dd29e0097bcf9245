package config

// ProgramFileExt is the extension of YAML program documents.
const ProgramFileExt = ".yaml"

// ProgramFileExtensions are all recognized program document extensions
var ProgramFileExtensions = []string{".yaml", ".yml", ".flow.yaml"}

// ProjectFileName is the project configuration looked up next to programs.
const ProjectFileName = "flowtype.yaml"

// IsTestMode indicates if the program is running under go test.
// It makes printed type variables and walk ids deterministic.
var IsTestMode = false

// Built-in class names
const (
	ObjectClassName       = "Object"
	NilClassName          = "Nil"
	BooleanClassName      = "Boolean"
	NumberClassName       = "Number"
	IntegerClassName      = "Integer"
	DoubleClassName       = "Double"
	StringClassName       = "String"
	KeywordClassName      = "Keyword"
	CharSequenceClassName = "CharSequence"
	ComparableClassName   = "Comparable"
	FnClassName           = "Fn"
	ExceptionClassName    = "Exception"
)

// Built-in container constructor names
const (
	SeqTypeName    = "Seq"
	VectorTypeName = "Vector"
	MapTypeName    = "Map"
	SetTypeName    = "Set"
)

// Accessor names usable as path elements
const (
	FirstAccessor = "first"
	RestAccessor  = "rest"
	ClassAccessor = "class"
	CountAccessor = "count"
	KeyAccessor   = "key"
	NthAccessor   = "nth"
)
