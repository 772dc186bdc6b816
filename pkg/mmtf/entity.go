package mmtf

import (
	"strconv"
	"strings"

	"github.com/andrew-torda/mmtf/pkg/mmtferr"
)

// hetatmTypes are the chemical component types which are never part of
// a polymer backbone, even when they sit on a polymer chain.
var hetatmTypes = map[string]bool{
	"D-SACCHARIDE":                     true,
	"D-SACCHARIDE 1,4 AND 1,4 LINKING": true,
	"D-SACCHARIDE 1,4 AND 1,6 LINKING": true,
	"L-SACCHARIDE":                     true,
	"L-SACCHARIDE 1,4 AND 1,4 LINKING": true,
	"L-SACCHARIDE 1,4 AND 1,6 LINKING": true,
	"SACCHARIDE":                       true,
	"OTHER":                            true,
	"NON-POLYMER":                      true,
}

// IsHetatmType says if a chemCompType is one of the non-polymer
// categories. Case matters, as in the PDB chemical component dictionary.
func IsHetatmType(chemCompType string) bool { return hetatmTypes[chemCompType] }

// EntityOf finds the entity that owns chain chainIndex. A chain with no
// entity, or with more than one, is an *mmtferr.DecodeError.
func EntityOf(chainIndex int32, entities []Entity) (*Entity, error) {
	var found *Entity
	for i := range entities {
		for _, c := range entities[i].ChainIndexList {
			if c != chainIndex {
				continue
			}
			if found != nil && found != &entities[i] {
				return nil, mmtferr.NewDecode("entityList", "chain "+
					strconv.Itoa(int(chainIndex))+" owned by more than one entity")
			}
			found = &entities[i]
		}
	}
	if found == nil {
		return nil, mmtferr.NewDecode("entityList", "no entity owns chain "+
			strconv.Itoa(int(chainIndex)))
	}
	return found, nil
}

// IsPolymer says if chain chainIndex belongs to a polymer entity.
func IsPolymer(chainIndex int32, entities []Entity) (bool, error) {
	e, err := EntityOf(chainIndex, entities)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(e.Type, "polymer"), nil
}

// IsHetatm says if group g on chain chainIndex should be written as
// HETATM. Only standard residues on polymer chains are not.
func IsHetatm(chainIndex int32, entities []Entity, g *GroupType) (bool, error) {
	poly, err := IsPolymer(chainIndex, entities)
	if err != nil {
		return false, err
	}
	return !poly || IsHetatmType(g.ChemCompType), nil
}
