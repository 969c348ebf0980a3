package hash

// ---------------------------------------------------------------------------
// Frozen tag bytes for the expression tree serialization format.
//
// IMPORTANT: These tags are FROZEN. Once assigned, a tag byte must never
// change meaning. Adding new tags is fine; changing existing ones breaks
// every stored fingerprint, including result cache keys.
// ---------------------------------------------------------------------------

// HashVersion is the version prefix for the serialization format.
// Bumping this invalidates all existing fingerprints.
const HashVersion byte = 1

// Expression node tags.
const (
	TagReservedZero byte = 0x00 // version prefix / reserved

	TagAbsent   byte = 0x01 // missing operand, evaluates to null
	TagLiteral  byte = 0x02
	TagScopeRef byte = 0x03

	// Reserved 0x04-0x0F

	TagSetConstructor      byte = 0x10
	TagFunctionConstructor byte = 0x11
	TagCombine             byte = 0x12

	// Reserved 0xFE-0xFF
)

// allTags lists every defined tag for uniqueness verification in tests.
var allTags = []byte{
	TagReservedZero,
	TagAbsent, TagLiteral, TagScopeRef,
	TagSetConstructor, TagFunctionConstructor, TagCombine,
}
