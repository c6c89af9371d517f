package diag

import "fmt"

// Code identifies the kind of a fatal condition. Ranges group by subsystem.
type Code uint16

const (
	CodeNone Code = 0

	// lists
	ListInfo            Code = 1000
	ListEmptyPop        Code = 1001
	ListForeignNode     Code = 1002
	ListIndexOutOfRange Code = 1003
	ListClosed          Code = 1004
	ListCapacity        Code = 1005

	// vectors
	VecInfo            Code = 2000
	VecEmptyPop        Code = 2001
	VecIndexOutOfRange Code = 2002
	VecCapacity        Code = 2003
	VecClosed          Code = 2004

	// policies
	PolicyInfo         Code = 3000
	PolicyInvalid      Code = 3001
	PolicySentinelType Code = 3002

	// generation
	GenInfo      Code = 4000
	GenManifest  Code = 4001
	GenDuplicate Code = 4002
	GenRender    Code = 4003
	GenWrite     Code = 4004

	// container pools
	PoolInfo     Code = 5000
	PoolLeaked   Code = 5001
	PoolReleased Code = 5002
)

var codeTitles = map[Code]string{
	CodeNone:            "unclassified",
	ListInfo:            "list information",
	ListEmptyPop:        "pop from empty list",
	ListForeignNode:     "node handle does not belong to this list",
	ListIndexOutOfRange: "list index out of range",
	ListClosed:          "list used after close",
	ListCapacity:        "list node arena exhausted",
	VecInfo:             "vector information",
	VecEmptyPop:         "pop from empty vector",
	VecIndexOutOfRange:  "vector index out of range",
	VecCapacity:         "vector capacity exhausted",
	VecClosed:           "vector used after close",
	PolicyInfo:          "policy information",
	PolicyInvalid:       "invalid container policy",
	PolicySentinelType:  "sentinel does not match element type",
	GenInfo:             "generation information",
	GenManifest:         "invalid generation manifest",
	GenDuplicate:        "duplicate instantiation",
	GenRender:           "template rendering failed",
	GenWrite:            "writing generated file failed",
	PoolInfo:            "pool information",
	PoolLeaked:          "container not closed before pool shutdown",
	PoolReleased:        "container released twice",
}

func (c Code) String() string {
	return fmt.Sprintf("BLP%04d", uint16(c))
}

// Title is a short human description of the code.
func (c Code) Title() string {
	if t, ok := codeTitles[c]; ok {
		return t
	}
	return "unknown"
}
