package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Syntax
	SynInfo            Code = 1000
	SynUnexpectedToken Code = 1001
	SynInvalidLiteral  Code = 1002
	SynBadAttribute    Code = 1003

	// Name resolution
	ResInfo                Code = 2000
	ResDuplicateDefinition Code = 2001
	ResUnresolvedName      Code = 2002
	ResUnknownDependency   Code = 2003
	ResUnresolvedImport    Code = 2004
	ResUnknownType         Code = 2005
	ResUnusedVariable      Code = 2006
	ResUnusedImport        Code = 2007
	ResNestedContract      Code = 2008

	// Type checking
	TypInfo              Code = 3000
	TypMismatch          Code = 3001
	TypArityMismatch     Code = 3002
	TypNotIndexable      Code = 3003
	TypUnknownField      Code = 3004
	TypAssignImmutable   Code = 3005
	TypOrderingNonInt    Code = 3006
	TypGenericMismatch   Code = 3007
	TypMissingField      Code = 3008
	TypNotNumericGeneric Code = 3009
	TypNotAFunction      Code = 3010

	// Driver
	DrvInfo             Code = 4000
	DrvNoMain           Code = 4001
	DrvNoContract       Code = 4002
	DrvMultipleContract Code = 4003
	DrvCircuitError     Code = 4004
	DrvUnreadableFile   Code = 4005

	// Circuit lowering
	CirInfo          Code = 5000
	CirAlwaysTrue    Code = 5001
	CirUnsupported   Code = 5002
	CirDivideByZero  Code = 5003
	CirOutOfBounds   Code = 5004
	CirDynamicIndex  Code = 5005
	CirRecursion     Code = 5006
	CirAssertFailed  Code = 5007
	CirNonConstBound Code = 5008
	CirOverflow      Code = 5009

	// Project / manifest
	PrjInfo             Code = 6000
	PrjManifestError    Code = 6001
	PrjMissingManifest  Code = 6002
	PrjUnknownPackage   Code = 6003
	PrjVersionMismatch  Code = 6004
	PrjBackendRejection Code = 6005
)

var (
	codeDescription = map[Code]string{
		UnknownCode:            "Unknown error",
		SynInfo:                "Syntax information",
		SynUnexpectedToken:     "Unexpected token",
		SynInvalidLiteral:      "Invalid literal",
		SynBadAttribute:        "Unknown attribute",
		ResInfo:                "Resolution information",
		ResDuplicateDefinition: "Duplicate definition",
		ResUnresolvedName:      "Unresolved name",
		ResUnknownDependency:   "Unknown dependency",
		ResUnresolvedImport:    "Unresolved import",
		ResUnknownType:         "Unknown type",
		ResUnusedVariable:      "Unused variable",
		ResUnusedImport:        "Unused import",
		ResNestedContract:      "Contracts cannot be nested",
		TypInfo:                "Type information",
		TypMismatch:            "Type mismatch",
		TypArityMismatch:       "Wrong number of arguments",
		TypNotIndexable:        "Value is not indexable",
		TypUnknownField:        "Unknown field",
		TypAssignImmutable:     "Assignment to immutable variable",
		TypOrderingNonInt:      "Ordering requires integer operands",
		TypGenericMismatch:     "Conflicting generic binding",
		TypMissingField:        "Missing field in struct literal",
		TypNotNumericGeneric:   "Not a numeric generic",
		TypNotAFunction:        "Not a function",
		DrvInfo:                "Driver information",
		DrvNoMain:              "Missing entry function",
		DrvNoContract:          "No contract found",
		DrvMultipleContract:    "Too many contracts",
		DrvCircuitError:        "Circuit lowering failed",
		DrvUnreadableFile:      "Unreadable source file",
		CirInfo:                "Circuit information",
		CirAlwaysTrue:          "Assertion is always true",
		CirUnsupported:         "Unsupported in circuits",
		CirDivideByZero:        "Division by zero",
		CirOutOfBounds:         "Index out of bounds",
		CirDynamicIndex:        "Index is not constant",
		CirRecursion:           "Recursive call",
		CirAssertFailed:        "Assertion always fails",
		CirNonConstBound:       "Loop bound is not constant",
		CirOverflow:            "Integer overflow",
		PrjInfo:                "Project information",
		PrjManifestError:       "Invalid manifest",
		PrjMissingManifest:     "Missing manifest",
		PrjUnknownPackage:      "Unknown package",
		PrjVersionMismatch:     "Artifact version mismatch",
		PrjBackendRejection:    "Backend rejected circuit",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("RES%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("TYP%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("DRV%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("CIR%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("PRJ%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
