package mmtf

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/pkg/errors"
)

// dot is written for values which are not set.
const dot = "."

// charOrDot gives "." for blank or NUL characters.
func charOrDot(c byte) string {
	if c == ' ' || c == 0 {
		return dot
	}
	return string([]byte{c})
}

func floatStr(x float32) string { return strconv.FormatFloat(float64(x), 'g', -1, 32) }

// Print writes one line per atom in a PDB-like layout. The columns are
//
//	ATOM/HETATM atomId atomName altLoc groupName chainName groupId
//	insCode x y z bFactor occupancy element charge
//
// separated by delim. Values which are not set are written as ".".
// sd must be consistent apart from chain name lengths.
func (sd *StructureData) Print(w io.Writer, delim string) error {
	if err := sd.Check(math.MaxInt32); err != nil {
		return errors.WithMessage(err, "cannot print")
	}
	bw := bufio.NewWriter(w)
	var iChain, iGroup, iAtom int
	for iModel := 0; iModel < int(sd.NumModels); iModel++ {
		for j := 0; j < int(sd.ChainsPerModel[iModel]); j, iChain = j+1, iChain+1 {
			for k := 0; k < int(sd.GroupsPerChain[iChain]); k, iGroup = k+1, iGroup+1 {
				g := &sd.GroupList[sd.GroupTypeList[iGroup]]
				recName := "ATOM"
				if sd.hetatm(iChain, g) {
					recName = "HETATM"
				}
				for l := 0; l < g.NumAtoms(); l, iAtom = l+1, iAtom+1 {
					sd.printAtom(bw, delim, recName, g, l, iChain, iGroup, iAtom)
				}
			}
		}
	}
	return bw.Flush()
}

// hetatm uses the entities if we have them, otherwise only the group's
// chemCompType.
func (sd *StructureData) hetatm(iChain int, g *GroupType) bool {
	if len(sd.EntityList) == 0 {
		return IsHetatmType(g.ChemCompType)
	}
	het, err := IsHetatm(int32(iChain), sd.EntityList, g)
	if err != nil {
		return IsHetatmType(g.ChemCompType)
	}
	return het
}

func (sd *StructureData) printAtom(bw *bufio.Writer, delim, recName string, g *GroupType,
	l, iChain, iGroup, iAtom int) {
	col := make([]string, 0, 15)
	col = append(col, recName)
	if len(sd.AtomIDList) > 0 {
		col = append(col, fmt.Sprintf("%06d", sd.AtomIDList[iAtom]))
	} else {
		col = append(col, dot)
	}
	col = append(col, g.AtomNameList[l])
	if len(sd.AltLocList) > 0 {
		col = append(col, charOrDot(sd.AltLocList[iAtom]))
	} else {
		col = append(col, dot)
	}
	col = append(col, g.GroupName)
	if len(sd.ChainNameList) > 0 {
		col = append(col, sd.ChainNameList[iChain])
	} else {
		col = append(col, dot)
	}
	col = append(col, strconv.Itoa(int(sd.GroupIDList[iGroup])))
	if len(sd.InsCodeList) > 0 {
		col = append(col, charOrDot(sd.InsCodeList[iGroup]))
	} else {
		col = append(col, dot)
	}
	col = append(col,
		fmt.Sprintf("%8.3f", sd.XCoordList[iAtom]),
		fmt.Sprintf("%7.3f", sd.YCoordList[iAtom]),
		fmt.Sprintf("%7.3f", sd.ZCoordList[iAtom]))
	if len(sd.BFactorList) > 0 {
		col = append(col, floatStr(sd.BFactorList[iAtom]))
	} else {
		col = append(col, dot)
	}
	if len(sd.OccupancyList) > 0 {
		col = append(col, floatStr(sd.OccupancyList[iAtom]))
	} else {
		col = append(col, dot)
	}
	col = append(col, g.ElementList[l], strconv.Itoa(int(g.FormalChargeList[l])))
	for i, c := range col {
		if i > 0 {
			bw.WriteString(delim)
		}
		bw.WriteString(c)
	}
	bw.WriteByte('\n')
}
