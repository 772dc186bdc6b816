package mmtf

// Export some internal functions for testing

var ValidDate = validDate
var KindOf = kindOf
var RawChars = rawChars
var RawInt8s = rawInt8s

func (g *GroupType) Clone() GroupType { return g.clone() }
