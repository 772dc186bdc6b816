package mmtf

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strconv"

	"github.com/andrew-torda/mmtf/pkg/codec"
	"github.com/andrew-torda/mmtf/pkg/mmtferr"
	"github.com/andrew-torda/mmtf/pkg/zwrap"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// EncodeOptions control the precision of the lossy float codecs and the
// width of chain names.
type EncodeOptions struct {
	CoordDivider            int32 // x, y, z
	OccupancyBFactorDivider int32 // b-factors and occupancies
	ChainNameMaxLength      int
}

// DefaultEncodeOptions keep coordinates to 0.001 and b-factors and
// occupancies to 0.01, as the PDB does.
func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{
		CoordDivider:            1000,
		OccupancyBFactorDivider: 100,
		ChainNameMaxLength:      ChainNameMaxLength,
	}
}

// LossyEncodeOptions keep one decimal place. Files are smaller.
func LossyEncodeOptions() EncodeOptions {
	return EncodeOptions{
		CoordDivider:            10,
		OccupancyBFactorDivider: 10,
		ChainNameMaxLength:      ChainNameMaxLength,
	}
}

// Check says if the options can be used. Dividers and the chain name
// width must be positive.
func (o EncodeOptions) Check() error {
	switch {
	case o.CoordDivider <= 0:
		return mmtferr.NewEncode("xCoordList", "coordinate divider "+strconv.Itoa(int(o.CoordDivider))+" not positive")
	case o.OccupancyBFactorDivider <= 0:
		return mmtferr.NewEncode("bFactorList", "b-factor/occupancy divider "+
			strconv.Itoa(int(o.OccupancyBFactorDivider))+" not positive")
	case o.ChainNameMaxLength <= 0:
		return mmtferr.NewEncode("chainIdList", "chain name width "+strconv.Itoa(o.ChainNameMaxLength)+" not positive")
	}
	return nil
}

// mapWriter collects the entries of a msgpack map in the order they
// are added, so output is always the same for the same data.
// The first error sticks and later calls do nothing.
type mapWriter struct {
	keys []string
	vals []msgpack.RawMessage
	err  error
}

func (mw *mapWriter) plain(key string, v interface{}) {
	if mw.err != nil {
		return
	}
	b, err := msgpack.Marshal(v)
	if err != nil {
		mw.err = mmtferr.WrapEncode(err, key, "marshalling")
		return
	}
	mw.keys = append(mw.keys, key)
	mw.vals = append(mw.vals, b)
}

// block stores a codec block as a bin. err is the encoder's error, if
// it had one.
func (mw *mapWriter) block(key string, blk []byte, err error) {
	if mw.err != nil {
		return
	}
	if err != nil {
		var ee *mmtferr.EncodeError
		if errors.As(err, &ee) && ee.Key == "" {
			ee.Key = key
		}
		mw.err = err
		return
	}
	mw.plain(key, blk)
}

func (mw *mapWriter) raw(key string, raw msgpack.RawMessage) {
	if mw.err != nil {
		return
	}
	mw.keys = append(mw.keys, key)
	mw.vals = append(mw.vals, raw)
}

func (mw *mapWriter) str(key, s string, optional bool) {
	if optional && s == "" {
		return
	}
	mw.plain(key, s)
}

func (mw *mapWriter) properties(key string, p PropertyMap) {
	if len(p) == 0 || mw.err != nil {
		return
	}
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(map[string]msgpack.RawMessage(p)); err != nil {
		mw.err = mmtferr.WrapEncode(err, key, "marshalling properties")
		return
	}
	mw.raw(key, buf.Bytes())
}

// bytes gives the finished map.
func (mw *mapWriter) bytes() (msgpack.RawMessage, error) {
	if mw.err != nil {
		return nil, mw.err
	}
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := enc.EncodeMapLen(len(mw.keys)); err != nil {
		return nil, mmtferr.WrapEncode(err, "", "writing map")
	}
	for i, k := range mw.keys {
		if err := enc.EncodeString(k); err != nil {
			return nil, mmtferr.WrapEncode(err, k, "writing key")
		}
		if err := enc.Encode(mw.vals[i]); err != nil {
			return nil, mmtferr.WrapEncode(err, k, "writing value")
		}
	}
	return buf.Bytes(), nil
}

// widen gives the int8 lists to msgpack as plain integers, not as
// bytes.
func widen(in []int8) []int32 {
	out := make([]int32, len(in))
	for i, x := range in {
		out[i] = int32(x)
	}
	return out
}

func encodeGroupType(g *GroupType) (msgpack.RawMessage, error) {
	var mw mapWriter
	mw.plain("formalChargeList", nonNil(g.FormalChargeList))
	mw.plain("atomNameList", nonNil(g.AtomNameList))
	mw.plain("elementList", nonNil(g.ElementList))
	if len(g.BondAtomList) > 0 {
		mw.plain("bondAtomList", g.BondAtomList)
	}
	if len(g.BondOrderList) > 0 {
		mw.plain("bondOrderList", widen(g.BondOrderList))
	}
	if len(g.BondResonanceList) > 0 {
		mw.plain("bondResonanceList", widen(g.BondResonanceList))
	}
	mw.str("groupName", g.GroupName, false)
	mw.str("singleLetterCode", string([]byte{g.SingleLetterCode}), false)
	mw.str("chemCompType", g.ChemCompType, false)
	return mw.bytes()
}

func encodeEntity(e *Entity) (msgpack.RawMessage, error) {
	var mw mapWriter
	mw.plain("chainIndexList", nonNil(e.ChainIndexList))
	mw.str("description", e.Description, false)
	mw.str("type", e.Type, false)
	mw.str("sequence", e.Sequence, false)
	return mw.bytes()
}

func encodeBioAssembly(ba *BioAssembly) (msgpack.RawMessage, error) {
	tl := make([]msgpack.RawMessage, len(ba.TransformList))
	for i := range ba.TransformList {
		t := &ba.TransformList[i]
		var mw mapWriter
		mw.plain("chainIndexList", nonNil(t.ChainIndexList))
		mw.plain("matrix", t.Matrix[:])
		var err error
		if tl[i], err = mw.bytes(); err != nil {
			return nil, err
		}
	}
	var mw mapWriter
	mw.plain("transformList", tl)
	mw.str("name", ba.Name, false)
	return mw.bytes()
}

// nonNil makes sure required lists go out as empty arrays, not nil.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// records encodes a list of nested maps.
func records[T any](mw *mapWriter, key string, in []T, f func(*T) (msgpack.RawMessage, error)) {
	if mw.err != nil {
		return
	}
	out := make([]msgpack.RawMessage, len(in))
	for i := range in {
		var err error
		if out[i], err = f(&in[i]); err != nil {
			mw.err = errors.WithMessage(err, key)
			return
		}
	}
	mw.plain(key, out)
}

// EncodeBytes checks opts and sd and writes sd as a msgpack document.
func EncodeBytes(sd *StructureData, opts EncodeOptions) ([]byte, error) {
	if err := opts.Check(); err != nil {
		return nil, err
	}
	if err := sd.Check(opts.ChainNameMaxLength); err != nil {
		return nil, mmtferr.WrapEncode(err, "", "structure is not consistent")
	}
	w := int32(opts.ChainNameMaxLength)
	var mw mapWriter
	mw.str("mmtfVersion", sd.MmtfVersion, false)
	mw.str("mmtfProducer", sd.MmtfProducer, false)
	if len(sd.UnitCell) > 0 {
		mw.plain("unitCell", sd.UnitCell)
	}
	mw.str("spaceGroup", sd.SpaceGroup, true)
	mw.str("structureId", sd.StructureID, true)
	mw.str("title", sd.Title, true)
	mw.str("depositionDate", sd.DepositionDate, true)
	mw.str("releaseDate", sd.ReleaseDate, true)
	if len(sd.NcsOperatorList) > 0 {
		mw.plain("ncsOperatorList", sd.NcsOperatorList)
	}
	if len(sd.BioAssemblyList) > 0 {
		records(&mw, "bioAssemblyList", sd.BioAssemblyList, encodeBioAssembly)
	}
	if len(sd.EntityList) > 0 {
		records(&mw, "entityList", sd.EntityList, encodeEntity)
	}
	if len(sd.ExperimentalMethods) > 0 {
		mw.plain("experimentalMethods", sd.ExperimentalMethods)
	}
	for _, f := range []struct {
		key string
		v   float32
	}{{"resolution", sd.Resolution}, {"rFree", sd.RFree}, {"rWork", sd.RWork}} {
		if f.v != DefaultFloat {
			mw.plain(f.key, f.v)
		}
	}
	mw.plain("numBonds", sd.NumBonds)
	mw.plain("numAtoms", sd.NumAtoms)
	mw.plain("numGroups", sd.NumGroups)
	mw.plain("numChains", sd.NumChains)
	mw.plain("numModels", sd.NumModels)
	records(&mw, "groupList", nonNil(sd.GroupList), encodeGroupType)

	if len(sd.BondAtomList) > 0 {
		mw.block("bondAtomList", codec.EncodeFourByteInt(sd.BondAtomList), nil)
	}
	if len(sd.BondOrderList) > 0 {
		mw.block("bondOrderList", codec.EncodeInt8ToByte(sd.BondOrderList), nil)
	}
	if len(sd.BondResonanceList) > 0 {
		mw.block("bondResonanceList", codec.EncodeRunLengthInt8(sd.BondResonanceList), nil)
	}

	mw.block("xCoordList", codec.EncodeDeltaRecursiveFloat(sd.XCoordList, opts.CoordDivider), nil)
	mw.block("yCoordList", codec.EncodeDeltaRecursiveFloat(sd.YCoordList, opts.CoordDivider), nil)
	mw.block("zCoordList", codec.EncodeDeltaRecursiveFloat(sd.ZCoordList, opts.CoordDivider), nil)
	if len(sd.BFactorList) > 0 {
		mw.block("bFactorList", codec.EncodeDeltaRecursiveFloat(sd.BFactorList,
			opts.OccupancyBFactorDivider), nil)
	}
	if len(sd.AtomIDList) > 0 {
		mw.block("atomIdList", codec.EncodeRunLengthDeltaInt(sd.AtomIDList), nil)
	}
	if len(sd.AltLocList) > 0 {
		mw.block("altLocList", codec.EncodeRunLengthChar(sd.AltLocList), nil)
	}
	if len(sd.OccupancyList) > 0 {
		mw.block("occupancyList", codec.EncodeRunLengthFloat(sd.OccupancyList,
			opts.OccupancyBFactorDivider), nil)
	}

	mw.block("groupIdList", codec.EncodeRunLengthDeltaInt(sd.GroupIDList), nil)
	mw.block("groupTypeList", codec.EncodeFourByteInt(sd.GroupTypeList), nil)
	if len(sd.SecStructList) > 0 {
		mw.block("secStructList", codec.EncodeInt8ToByte(sd.SecStructList), nil)
	}
	if len(sd.InsCodeList) > 0 {
		mw.block("insCodeList", codec.EncodeRunLengthChar(sd.InsCodeList), nil)
	}
	if len(sd.SequenceIndexList) > 0 {
		mw.block("sequenceIndexList", codec.EncodeRunLengthDeltaInt(sd.SequenceIndexList), nil)
	}

	blk, err := codec.EncodeStringVector(sd.ChainIDList, w)
	mw.block("chainIdList", blk, err)
	if len(sd.ChainNameList) > 0 {
		blk, err = codec.EncodeStringVector(sd.ChainNameList, w)
		mw.block("chainNameList", blk, err)
	}
	mw.plain("groupsPerChain", nonNil(sd.GroupsPerChain))
	mw.plain("chainsPerModel", nonNil(sd.ChainsPerModel))

	mw.properties("bondProperties", sd.BondProperties)
	mw.properties("atomProperties", sd.AtomProperties)
	mw.properties("groupProperties", sd.GroupProperties)
	mw.properties("chainProperties", sd.ChainProperties)
	mw.properties("modelProperties", sd.ModelProperties)
	mw.properties("extraProperties", sd.ExtraProperties)
	return mw.bytes()
}

// Encode writes sd to w.
func Encode(sd *StructureData, w io.Writer, opts EncodeOptions) error {
	b, err := EncodeBytes(sd, opts)
	if err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return mmtferr.WrapEncode(err, "", "writing")
	}
	return nil
}

// EncodeFile writes sd to fname, gzipped if compress is set.
func EncodeFile(sd *StructureData, fname string, opts EncodeOptions, compress bool) error {
	b, err := EncodeBytes(sd, opts)
	if err != nil {
		return err
	}
	fp, err := os.Create(fname)
	if err != nil {
		return mmtferr.WrapEncode(err, "", "creating "+fname)
	}
	defer fp.Close()
	bw := bufio.NewWriter(fp)
	zw := zwrap.Writer(bw, compress)
	if _, err := zw.Write(b); err != nil {
		return mmtferr.WrapEncode(err, "", "writing "+fname)
	}
	if err := zw.Close(); err != nil {
		return mmtferr.WrapEncode(err, "", "closing compressor on "+fname)
	}
	if err := bw.Flush(); err != nil {
		return mmtferr.WrapEncode(err, "", "writing "+fname)
	}
	return fp.Close()
}
