package dwarfedit

// DWARF tags and attributes relevant to path rewriting. Values mirror the
// DWARF 2-4 specification (and, for DW_TAG_partial_unit, the de facto
// extension both gdb and the reference debugedit tool recognize).
const (
	dwTagCompileUnit = 0x11
	dwTagPartialUnit = 0x3c

	dwAtName     = 0x03
	dwAtStmtList = 0x10
	dwAtCompDir  = 0x1b
)

// DWARF attribute forms. The walker must know the on-disk size of every
// form it can see, even ones with no semantic meaning here, purely to
// step over them correctly (§4.4).
const (
	dwFormAddr        = 0x01
	dwFormBlock2      = 0x03
	dwFormBlock4      = 0x04
	dwFormData2       = 0x05
	dwFormData4       = 0x06
	dwFormData8       = 0x07
	dwFormString      = 0x08
	dwFormBlock       = 0x09
	dwFormBlock1      = 0x0a
	dwFormData1       = 0x0b
	dwFormFlag        = 0x0c
	dwFormSdata       = 0x0d
	dwFormStrp        = 0x0e
	dwFormUdata       = 0x0f
	dwFormRefAddr     = 0x10
	dwFormRef1        = 0x11
	dwFormRef2        = 0x12
	dwFormRef4        = 0x13
	dwFormRef8        = 0x14
	dwFormRefUdata    = 0x15
	dwFormIndirect    = 0x16
	dwFormSecOffset   = 0x17
	dwFormExprloc     = 0x18
	dwFormFlagPresent = 0x19
	dwFormRefSig8     = 0x20
)

// isKnownForm reports whether form is one the walker can size, matching
// §4.3's "classic DWARF plus {sec_offset, exprloc, flag_present,
// ref_sig8}" rule. DW_FORM_indirect (0x16) is listed too, although the
// walker resolves it by re-reading the actual form rather than sizing it.
func isKnownForm(form uint64) bool {
	switch form {
	case dwFormAddr, dwFormBlock2, dwFormBlock4, dwFormData2, dwFormData4,
		dwFormData8, dwFormString, dwFormBlock, dwFormBlock1, dwFormData1,
		dwFormFlag, dwFormSdata, dwFormStrp, dwFormUdata, dwFormRefAddr,
		dwFormRef1, dwFormRef2, dwFormRef4, dwFormRef8, dwFormRefUdata,
		dwFormIndirect, dwFormSecOffset, dwFormExprloc, dwFormFlagPresent,
		dwFormRefSig8:
		return true
	default:
		return false
	}
}

// ELF machine numbers and relocation types for the §4.2 allow-list. These
// mirror the stable ELF ABI values directly (not any particular Go ELF
// package) so the core stays independent of the object-container layer.
const (
	emSPARC     = 2
	em386       = 3
	emSPARC32P  = 18
	emPPC       = 20
	emPPC64     = 21
	emS390      = 22
	emIA64      = 50
	emX86_64    = 62
	emSPARCV9   = 43
	rSPARC32    = 3
	rSPARCUA32  = 23
	r386_32     = 1
	rPPCADDR32  = 1
	rPPCUADDR32 = 24
	rS390_32    = 4
	rIA64SecRel = 0x65 // R_IA64_SECREL32LSB
	rX86_64_32  = 10
)

// relocationAllowed implements the §4.2 machine-specific allow-list.
func relocationAllowed(machine uint16, rtype uint32) bool {
	switch machine {
	case emSPARC, emSPARC32P, emSPARCV9:
		return rtype == rSPARC32 || rtype == rSPARCUA32
	case em386:
		return rtype == r386_32
	case emPPC, emPPC64:
		return rtype == rPPCADDR32 || rtype == rPPCUADDR32
	case emS390:
		return rtype == rS390_32
	case emIA64:
		return rtype == rIA64SecRel
	case emX86_64:
		return rtype == rX86_64_32
	default:
		return false
	}
}

func machineName(machine uint16) string {
	switch machine {
	case emSPARC:
		return "SPARC"
	case emSPARC32P:
		return "SPARC32PLUS"
	case emSPARCV9:
		return "SPARCV9"
	case em386:
		return "386"
	case emPPC:
		return "PPC"
	case emPPC64:
		return "PPC64"
	case emS390:
		return "S390"
	case emIA64:
		return "IA64"
	case emX86_64:
		return "X86_64"
	default:
		return "UNKNOWN"
	}
}
