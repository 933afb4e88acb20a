// Package errors provides standardized error messaging for debugedit.
package errors

import (
	"fmt"
	"runtime"
)

// ErrorCategory groups the fatal conditions the editor can raise.
type ErrorCategory string

const (
	// CategoryFormat covers malformed DWARF/ELF encoding: bad abbrev
	// tables, unsupported versions, unknown forms.
	CategoryFormat ErrorCategory = "FORMAT"
	// CategoryBounds covers a CU, line-program, or directory index that
	// runs past the bounds of its containing section.
	CategoryBounds ErrorCategory = "BOUNDS"
	// CategoryConfig covers invalid base-dir/dest-dir combinations.
	CategoryConfig ErrorCategory = "CONFIG"
	// CategorySystem covers I/O, mmap, and other host-environment failures.
	CategorySystem ErrorCategory = "SYSTEM"
)

// StandardError gives every fatal condition a consistent shape: a
// category, a short code, a human message, free-form context, and the
// function that raised it.
type StandardError struct {
	Category ErrorCategory
	Code     string
	Message  string
	Context  map[string]interface{}
	Caller   string
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("[%s:%s] %s (at %s)", e.Category, e.Code, e.Message, e.Caller)
}

// NewStandardError constructs a StandardError, capturing the immediate
// caller for diagnostics.
func NewStandardError(category ErrorCategory, code, message string, context map[string]interface{}) *StandardError {
	pc, _, _, ok := runtime.Caller(1)

	caller := "unknown"
	if ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			caller = fn.Name()
		}
	}

	return &StandardError{
		Category: category,
		Code:     code,
		Message:  message,
		Context:  context,
		Caller:   caller,
	}
}

func Format64BitDWARF() *StandardError {
	return NewStandardError(CategoryFormat, "DWARF64_UNSUPPORTED",
		"64-bit DWARF is not supported", nil)
}

func UnsupportedVersion(section string, version uint16) *StandardError {
	return NewStandardError(CategoryFormat, "VERSION_UNHANDLED",
		fmt.Sprintf("%s: DWARF version %d unhandled", section, version),
		map[string]interface{}{"section": section, "version": version})
}

func MalformedAbbrev(reason string) *StandardError {
	return NewStandardError(CategoryFormat, "ABBREV_MALFORMED",
		reason, nil)
}

func UnknownForm(form uint64) *StandardError {
	return NewStandardError(CategoryFormat, "FORM_UNKNOWN",
		fmt.Sprintf("unknown DW_FORM 0x%x", form),
		map[string]interface{}{"form": form})
}

func ExtentExceedsSection(what string) *StandardError {
	return NewStandardError(CategoryBounds, "EXTENT_OVERRUN",
		fmt.Sprintf("%s does not fit into its section", what),
		map[string]interface{}{"what": what})
}

func DirIndexOutOfRange(index, count uint64) *StandardError {
	return NewStandardError(CategoryBounds, "DIR_INDEX_RANGE",
		fmt.Sprintf("directory table index %d out of range (have %d)", index, count),
		map[string]interface{}{"index": index, "count": count})
}

func UnhandledRelocation(machine string, rtype uint32) *StandardError {
	return NewStandardError(CategoryFormat, "RELOC_UNHANDLED",
		fmt.Sprintf("unhandled relocation type %d for machine %s", rtype, machine),
		map[string]interface{}{"machine": machine, "type": rtype})
}

func CanonicalizationShrank() *StandardError {
	return NewStandardError(CategoryFormat, "CANON_SHRANK_ONE",
		"path canonicalization unexpectedly shrank output by exactly one byte", nil)
}

func DestLongerThanBase(base, dest string) *StandardError {
	return NewStandardError(CategoryConfig, "DEST_TOO_LONG",
		"dest-dir must not be longer than base-dir",
		map[string]interface{}{"base-dir": base, "dest-dir": dest})
}

func MissingBaseDir() *StandardError {
	return NewStandardError(CategoryConfig, "BASE_DIR_MISSING",
		"base-dir must be set when dest-dir is set", nil)
}

func ReserveTooSmall() *StandardError {
	return NewStandardError(CategoryConfig, "RESERVE_TOO_SMALL",
		"-base-dir has to be either the same length as -dest-dir, or more than one character longer", nil)
}

func DuplicateSection(name string) *StandardError {
	return NewStandardError(CategoryFormat, "SECTION_DUPLICATE",
		fmt.Sprintf("found two copies of section %s", name),
		map[string]interface{}{"section": name})
}
