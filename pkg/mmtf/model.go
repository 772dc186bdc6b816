package mmtf

import (
	"math"
	"strconv"
	"strings"

	"github.com/andrew-torda/matrix"
)

// Version of the format we read and write.
const (
	VersionMajor = 1
	VersionMinor = 0
)

// Producer is written to mmtfProducer by NewStructureData.
const Producer = "github.com/andrew-torda/mmtf"

// DefaultFloat marks resolution, rFree and rWork as not set. It is never
// written out.
const DefaultFloat float32 = math.MaxFloat32

// ChainNameMaxLength is the width of the chain id and chain name
// string vectors.
const ChainNameMaxLength = 4

// GroupType is the template shared by all instances of one kind of
// residue. Bond atom indices are local to the group.
type GroupType struct {
	FormalChargeList  []int32
	AtomNameList      []string
	ElementList       []string
	BondAtomList      []int32
	BondOrderList     []int8
	BondResonanceList []int8
	GroupName         string
	SingleLetterCode  byte
	ChemCompType      string
}

// NumAtoms is the number of atoms in any instance of the group.
func (g *GroupType) NumAtoms() int { return len(g.AtomNameList) }

// NumBonds is the number of bonds the template contributes to each
// instance.
func (g *GroupType) NumBonds() int { return len(g.BondAtomList) / 2 }

func eqSlice[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Equal compares every field, including the order of lists.
func (g *GroupType) Equal(o *GroupType) bool {
	return eqSlice(g.FormalChargeList, o.FormalChargeList) &&
		eqSlice(g.AtomNameList, o.AtomNameList) &&
		eqSlice(g.ElementList, o.ElementList) &&
		eqSlice(g.BondAtomList, o.BondAtomList) &&
		eqSlice(g.BondOrderList, o.BondOrderList) &&
		eqSlice(g.BondResonanceList, o.BondResonanceList) &&
		g.GroupName == o.GroupName &&
		g.SingleLetterCode == o.SingleLetterCode &&
		g.ChemCompType == o.ChemCompType
}

// clone gives a deep copy, so bonds added to one copy do not turn up
// in another.
func (g *GroupType) clone() GroupType {
	c := *g
	c.FormalChargeList = append([]int32(nil), g.FormalChargeList...)
	c.AtomNameList = append([]string(nil), g.AtomNameList...)
	c.ElementList = append([]string(nil), g.ElementList...)
	c.BondAtomList = append([]int32(nil), g.BondAtomList...)
	c.BondOrderList = append([]int8(nil), g.BondOrderList...)
	c.BondResonanceList = append([]int8(nil), g.BondResonanceList...)
	return c
}

// Entity is one biological unit (a polymer, a ligand, water) and the
// chains which belong to it.
type Entity struct {
	ChainIndexList []int32
	Description    string
	Type           string
	Sequence       string
}

// Transform applies a 4x4 matrix to a set of chains. Matrix is stored
// column major, as in the file.
type Transform struct {
	ChainIndexList []int32
	Matrix         [16]float32
}

// Mat returns the matrix as rows and columns. It is a copy, so changing
// it does not change the transform.
func (t *Transform) Mat() *matrix.FMatrix2d {
	return colMajor(t.Matrix[:])
}

// colMajor turns 16 column major values into a 4x4 matrix.
func colMajor(v []float32) *matrix.FMatrix2d {
	m := matrix.NewFMatrix2d(4, 4)
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			m.Mat[r][c] = v[4*c+r]
		}
	}
	return m
}

// BioAssembly is a named list of transforms.
type BioAssembly struct {
	Name          string
	TransformList []Transform
}

// StructureData is a complete MMTF structure. Per atom, per group,
// per chain and per model lists are flat and parallel. The hierarchy
// is recovered by walking chainsPerModel, groupsPerChain and the atom
// counts of each group's template.
// Optional lists are empty when not set. Optional floats are
// DefaultFloat.
type StructureData struct {
	MmtfVersion         string
	MmtfProducer        string
	UnitCell            []float32
	SpaceGroup          string
	StructureID         string
	Title               string
	DepositionDate      string
	ReleaseDate         string
	NcsOperatorList     [][]float32
	BioAssemblyList     []BioAssembly
	EntityList          []Entity
	ExperimentalMethods []string
	Resolution          float32
	RFree               float32
	RWork               float32
	NumBonds            int32
	NumAtoms            int32
	NumGroups           int32
	NumChains           int32
	NumModels           int32
	GroupList           []GroupType
	BondAtomList        []int32
	BondOrderList       []int8
	BondResonanceList   []int8
	XCoordList          []float32
	YCoordList          []float32
	ZCoordList          []float32
	BFactorList         []float32
	AtomIDList          []int32
	AltLocList          []byte
	OccupancyList       []float32
	GroupIDList         []int32
	GroupTypeList       []int32
	SecStructList       []int8
	InsCodeList         []byte
	SequenceIndexList   []int32
	ChainIDList         []string
	ChainNameList       []string
	GroupsPerChain      []int32
	ChainsPerModel      []int32

	BondProperties  PropertyMap
	AtomProperties  PropertyMap
	GroupProperties PropertyMap
	ChainProperties PropertyMap
	ModelProperties PropertyMap
	ExtraProperties PropertyMap
}

// NewStructureData gives an empty, consistent structure with the
// version and producer filled in.
func NewStructureData() *StructureData {
	return &StructureData{
		MmtfVersion:  VersionString(),
		MmtfProducer: Producer,
		Resolution:   DefaultFloat,
		RFree:        DefaultFloat,
		RWork:        DefaultFloat,
	}
}

// NcsOperator returns operator i as a 4x4 matrix, or nil if it does not
// have 16 values.
func (sd *StructureData) NcsOperator(i int) *matrix.FMatrix2d {
	if len(sd.NcsOperatorList[i]) != 16 {
		return nil
	}
	return colMajor(sd.NcsOperatorList[i])
}

// VersionString is the version we write.
func VersionString() string {
	return strconv.Itoa(VersionMajor) + "." + strconv.Itoa(VersionMinor)
}

// VersionSupported says if we can read a file with version s. Only the
// major number matters.
func VersionSupported(s string) bool {
	major, _, _ := strings.Cut(s, ".")
	n, err := strconv.Atoi(strings.TrimSpace(major))
	if err != nil {
		return false
	}
	return n <= VersionMajor
}
