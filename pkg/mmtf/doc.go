// Package mmtf reads and writes MMTF (Macromolecular Transmission
// Format) files and holds them in a StructureData.
//
// A file is a msgpack map. Most big lists are stored as bins holding
// blocks from package codec, the rest as plain msgpack values.
//   Decode, DecodeFile, Decoder.DecodeReader   bytes to StructureData
//   Encode, EncodeBytes, EncodeFile           StructureData to bytes
// Encoding refuses a structure which fails Check.
//
// Overall structure
// Everything is flat. Atoms, groups (residues), chains and models each
// have their own parallel lists. The hierarchy is found by walking
//   chainsPerModel -> groupsPerChain -> groupTypeList -> groupList
// where groupList holds templates (GroupType) shared by all instances
// of a residue. A group's atoms are the next len(atomNameList) atoms.
// Bonds within a group live in the GroupType, with indices local to
// the group. Everything else is in the global bond lists.
//
// Adding bonds
// A GroupType shared by several groups cannot take a bond for only one
// of them. So one does
//   ExpandGroupList(sd)    every group gets its own GroupType
//   NewBondAdder(sd)       then Add() for each bond
//   CompressGroupList(sd)  merge identical GroupTypes again
//
// Notes
// Optional float values (resolution, rFree, rWork) are DefaultFloat
// when not set. Optional lists are empty.
// Decoding copies everything it keeps, so the input buffer can be
// thrown away or unmapped afterwards.
package mmtf
