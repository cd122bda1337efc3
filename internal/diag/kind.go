package diag

// Kind tags a diagnostic with the exact condition that produced it, grouped
// by the phase that emits it with one numeric band per phase.
type Kind uint16

const Unknown Kind = 0

// --- Lowering --- band 1000.
const (
	OutOfRangeIntLiteral Kind = 1000 + iota
	NonGlobalExtern
	ArraySizeNotConst
	MalformedLiteral
	InvalidEscape
	BadCharLiteral
	ImportPathMalformed
	ImportNotFound
)

// --- Indexing --- band 2000.
const (
	AlreadyDefined Kind = 2000 + iota
)

// --- Type inference --- band 3000.
const (
	TypeMismatch Kind = 3000 + iota
	Uncastable
	BinOpMismatch
	UnOpMismatch
	MissingArg
	ExtraArg
	MissingElse
	IndexOutOfBounds
	IndexIntoNonArray
	DerefNonPointer
	NotYetResolved
	MutabilityViolation
	IntTooBigForType
	UnknownModule
	UnknownFqn
	UnknownMember
	StructLiteralMissingMember
	NonExistentEnumVariant
	SwitchAlreadyCoversVariant
	SwitchDoesNotCoverVariant
	ComptimeCannotReturnPointer
	ComptimeCannotReturnRuntimeType
	DeclTypeHasNoDefault
	ParamNotAType
	LocalTypeIsMutable
	UnwrapVariantMismatch
	UnwrapNotAnEnum
	MutableRefToImmutableData
)

// MutabilityReason refines a MutabilityViolation diagnostic with the exact
// reason the target could not be mutated.
type MutabilityReason uint8

const (
	ReasonMutable MutabilityReason = iota // not actually a violation
	ImmutableBinding
	ImmutableParam
	ImmutableRef
	ImmutableGlobal
	NotMutatingRefThroughDeref
	CannotMutate
)

func (k Kind) String() string {
	switch k {
	case Unknown:
		return "unknown"
	case OutOfRangeIntLiteral:
		return "out-of-range-int-literal"
	case NonGlobalExtern:
		return "non-global-extern"
	case ArraySizeNotConst:
		return "array-size-not-const"
	case MalformedLiteral:
		return "malformed-literal"
	case InvalidEscape:
		return "invalid-escape"
	case BadCharLiteral:
		return "bad-char-literal"
	case ImportPathMalformed:
		return "import-path-malformed"
	case ImportNotFound:
		return "import-not-found"
	case AlreadyDefined:
		return "already-defined"
	case TypeMismatch:
		return "type-mismatch"
	case Uncastable:
		return "uncastable"
	case BinOpMismatch:
		return "binop-mismatch"
	case UnOpMismatch:
		return "unop-mismatch"
	case MissingArg:
		return "missing-arg"
	case ExtraArg:
		return "extra-arg"
	case MissingElse:
		return "missing-else"
	case IndexOutOfBounds:
		return "index-out-of-bounds"
	case IndexIntoNonArray:
		return "index-into-non-array"
	case DerefNonPointer:
		return "deref-non-pointer"
	case NotYetResolved:
		return "not-yet-resolved"
	case MutabilityViolation:
		return "mutability-violation"
	case IntTooBigForType:
		return "int-too-big-for-type"
	case UnknownModule:
		return "unknown-module"
	case UnknownFqn:
		return "unknown-fqn"
	case UnknownMember:
		return "unknown-member"
	case StructLiteralMissingMember:
		return "struct-literal-missing-member"
	case NonExistentEnumVariant:
		return "non-existent-enum-variant"
	case SwitchAlreadyCoversVariant:
		return "switch-already-covers-variant"
	case SwitchDoesNotCoverVariant:
		return "switch-does-not-cover-variant"
	case ComptimeCannotReturnPointer:
		return "comptime-cannot-return-pointer"
	case ComptimeCannotReturnRuntimeType:
		return "comptime-cannot-return-runtime-type"
	case DeclTypeHasNoDefault:
		return "decl-type-has-no-default"
	case ParamNotAType:
		return "param-not-a-type"
	case LocalTypeIsMutable:
		return "local-type-is-mutable"
	case UnwrapVariantMismatch:
		return "unwrap-variant-mismatch"
	case UnwrapNotAnEnum:
		return "unwrap-not-an-enum"
	case MutableRefToImmutableData:
		return "mutable-ref-to-immutable-data"
	default:
		return "unknown"
	}
}
