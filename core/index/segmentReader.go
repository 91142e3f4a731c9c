package index

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dbalmain/ferret-sub000/core/document"
	"github.com/dbalmain/ferret-sub000/core/store"
	"github.com/dbalmain/ferret-sub000/core/util"
)

// index/SegmentReader.java

// The encoded norm byte of a field without norms.
var defaultNorm = EncodeNorm(1.0)

type norm struct {
	in     store.IndexInput
	number int32
	bytes  []byte
	dirty  bool
}

func (n *norm) load(maxDoc int) error {
	if n.bytes != nil {
		return nil
	}
	bytes := make([]byte, maxDoc)
	if err := n.in.Seek(0); err != nil {
		return err
	}
	if err := n.in.ReadBytes(bytes); err != nil {
		return err
	}
	n.bytes = bytes
	return nil
}

/*
Reads one segment: its field infos, stored fields, term dictionary,
postings, norms, deletions and term vectors. When the segment is
packed in a compound file, everything except deletions and separate
norms is read from the .cfs.
*/
type SegmentReader struct {
	*IndexReaderImpl

	si      *SegmentInfo
	segment string

	fieldInfos   *FieldInfos
	fieldsReader *FieldsReader
	tis          *TermInfosReader
	termVectors  *termVectorsPool // nil when no field stores vectors

	deletedDocs      *util.BitVector
	deletedShared    bool // deletedDocs was handed to a TermDocs
	deletedDocsDirty bool
	normsDirty       bool
	undeleteAll      bool

	freqStream store.IndexInput
	proxStream store.IndexInput

	// Compound File Reader when based on a compound file segment
	cfsReader *store.CompoundFileReader

	norms map[string]*norm
}

// Opens si as part of a composite reader.
func openSegmentReader(si *SegmentInfo) (*SegmentReader, error) {
	r := &SegmentReader{}
	r.IndexReaderImpl = newIndexReader(r, si.Dir)
	if err := r.initialize(si); err != nil {
		return nil, err
	}
	return r, nil
}

func openOwnerSegmentReader(dir store.Directory, sis *SegmentInfos, si *SegmentInfo,
	closeDir bool) (*SegmentReader, error) {

	r := &SegmentReader{}
	r.IndexReaderImpl = newOwnerIndexReader(r, dir, sis, closeDir)
	if err := r.initialize(si); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *SegmentReader) initialize(si *SegmentInfo) (err error) {
	r.si = si
	r.segment = si.Name
	r.norms = make(map[string]*norm)

	success := false
	defer func() {
		if !success {
			util.CloseWhileSuppressingError(closerFunc(r.doClose))
		}
	}()

	// Use compound file directory for some files, if it exists
	var cfsDir store.Directory = r.directory
	if r.directory.FileExists(util.SegmentFileName(r.segment, util.COMPOUND_FILE_EXTENSION)) {
		r.cfsReader, err = store.NewCompoundFileReader(r.directory,
			util.SegmentFileName(r.segment, util.COMPOUND_FILE_EXTENSION), store.IO_CONTEXT_READ)
		if err != nil {
			return err
		}
		cfsDir = r.cfsReader
	}

	// No compound file exists - use the multi-file format
	if r.fieldInfos, err = ReadFieldInfos(cfsDir, util.SegmentFileName(r.segment, "fnm")); err != nil {
		return err
	}
	if r.fieldsReader, err = NewFieldsReader(cfsDir, r.segment, r.fieldInfos); err != nil {
		return err
	}
	if r.tis, err = NewTermInfosReader(cfsDir, r.segment, r.fieldInfos); err != nil {
		return err
	}

	// NOTE: the bitvector is stored using the regular directory, not cfs
	if HasDeletions(si) {
		if r.deletedDocs, err = readDeletedDocs(r.directory, util.SegmentFileName(r.segment, util.DELETES_EXTENSION)); err != nil {
			return err
		}
	}

	// make sure that all index files have been read or are kept open
	// so that if an index update removes them we'll still have them
	if r.freqStream, err = cfsDir.OpenInput(util.SegmentFileName(r.segment, "frq"), store.IO_CONTEXT_READ); err != nil {
		return err
	}
	if r.proxStream, err = cfsDir.OpenInput(util.SegmentFileName(r.segment, "prx"), store.IO_CONTEXT_READ); err != nil {
		return err
	}
	if err = r.openNorms(cfsDir); err != nil {
		return err
	}

	if r.fieldInfos.HasVectors() { // open term vector files only as needed
		orig, err := NewTermVectorsReader(cfsDir, r.segment, r.fieldInfos)
		if err != nil {
			return err
		}
		r.termVectors = &termVectorsPool{orig: orig}
	}
	success = true
	return nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func readDeletedDocs(dir store.Directory, name string) (bv *util.BitVector, err error) {
	input, err := dir.OpenInput(name, store.IO_CONTEXT_READONCE)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = util.CloseWhileHandlingError(err, input)
	}()
	return util.ReadBitVector(input)
}

// Writes bv to a temporary file and renames it over name.
func writeDeletedDocs(dir store.Directory, tmpName, name string, bv *util.BitVector) error {
	output, err := dir.CreateOutput(tmpName, store.IO_CONTEXT_DEFAULT)
	if err != nil {
		return err
	}
	err = bv.WriteTo(output)
	if err = util.CloseWhileHandlingError(err, output); err != nil {
		return err
	}
	return dir.RenameFile(tmpName, name)
}

func (r *SegmentReader) openNorms(cfsDir store.Directory) error {
	for _, fi := range r.fieldInfos.Values() {
		if !fi.IsIndexed {
			continue
		}
		// look first if there are separate norms in compound format
		fileName := util.NormFileName(r.segment, fi.Number, true)
		d := r.directory
		if !d.FileExists(fileName) {
			fileName = util.NormFileName(r.segment, fi.Number, false)
			d = cfsDir
		}
		in, err := d.OpenInput(fileName, store.IO_CONTEXT_READ)
		if err != nil {
			return err
		}
		r.norms[fi.Name] = &norm{in: in, number: fi.Number}
	}
	return nil
}

func (r *SegmentReader) doCommit() error {
	if r.deletedDocsDirty { // re-write deleted
		if err := writeDeletedDocs(r.directory, util.SegmentFileName(r.segment, "tmp"),
			util.SegmentFileName(r.segment, util.DELETES_EXTENSION), r.deletedDocs); err != nil {
			return err
		}
	}
	delName := util.SegmentFileName(r.segment, util.DELETES_EXTENSION)
	if r.undeleteAll && r.directory.FileExists(delName) {
		if err := r.directory.DeleteFile(delName); err != nil {
			return err
		}
	}
	if r.normsDirty { // re-write norms
		for _, n := range r.norms {
			if n.dirty {
				if err := r.rewriteNorm(n); err != nil {
					return err
				}
			}
		}
	}
	r.deletedDocsDirty = false
	r.normsDirty = false
	r.undeleteAll = false
	return nil
}

func (r *SegmentReader) rewriteNorm(n *norm) error {
	// NOTE: norms are re-written in regular directory, not cfs
	tmpName := util.SegmentFileName(r.segment, "tmp")
	out, err := r.directory.CreateOutput(tmpName, store.IO_CONTEXT_DEFAULT)
	if err != nil {
		return err
	}
	err = out.WriteBytes(n.bytes)
	if err = util.CloseWhileHandlingError(err, out); err != nil {
		return err
	}
	fileName := util.NormFileName(r.segment, n.number, r.cfsReader != nil)
	if err = r.directory.RenameFile(tmpName, fileName); err != nil {
		return err
	}
	n.dirty = false
	return nil
}

func (r *SegmentReader) doClose() error {
	var closers []interface{ Close() error }
	add := func(c interface{ Close() error }) { closers = append(closers, c) }
	if r.fieldsReader != nil {
		add(r.fieldsReader)
	}
	if r.tis != nil {
		add(r.tis)
	}
	if r.freqStream != nil {
		add(r.freqStream)
	}
	if r.proxStream != nil {
		add(r.proxStream)
	}
	for _, n := range r.norms {
		add(n.in)
	}
	if r.termVectors != nil {
		add(r.termVectors)
	}
	if r.cfsReader != nil {
		add(r.cfsReader)
	}
	var errs []error
	for _, c := range closers {
		errs = append(errs, c.Close())
	}
	return util.JoinErrors(errs...)
}

// Reports whether si has a deletions file.
func HasDeletions(si *SegmentInfo) bool {
	return si.Dir.FileExists(util.SegmentFileName(si.Name, util.DELETES_EXTENSION))
}

func UsesCompoundFile(si *SegmentInfo) bool {
	return si.Dir.FileExists(util.SegmentFileName(si.Name, util.COMPOUND_FILE_EXTENSION))
}

// Reports whether si has norms written separately from its compound file.
func HasSeparateNorms(si *SegmentInfo) bool {
	files, err := si.Dir.ListAll()
	if err != nil {
		return false
	}
	pattern := si.Name + ".s"
	for _, file := range files {
		if strings.HasPrefix(file, pattern) && len(file) > len(pattern) &&
			file[len(pattern)] >= '0' && file[len(pattern)] <= '9' {
			return true
		}
	}
	return false
}

func (r *SegmentReader) HasDeletions() bool {
	r.Lock()
	defer r.Unlock()
	return r.deletedDocs != nil
}

// Returns the current deletions; later deletes copy before writing.
func (r *SegmentReader) deletedDocsSnapshot() *util.BitVector {
	r.Lock()
	defer r.Unlock()
	r.deletedShared = r.deletedDocs != nil
	return r.deletedDocs
}

func (r *SegmentReader) doDelete(docNum int) error {
	if r.deletedDocs == nil {
		r.deletedDocs = util.NewBitVector(r.MaxDoc())
	} else if r.deletedShared {
		r.deletedDocs = r.deletedDocs.Clone()
		r.deletedShared = false
	}
	r.deletedDocsDirty = true
	r.undeleteAll = false
	r.deletedDocs.Set(docNum)
	return nil
}

func (r *SegmentReader) doUndeleteAll() error {
	r.deletedDocs = nil
	r.deletedDocsDirty = false
	r.undeleteAll = true
	return nil
}

// Files of this segment that exist in its directory.
func (r *SegmentReader) Files() []string {
	var files []string
	for _, ext := range util.INDEX_EXTENSIONS {
		name := util.SegmentFileName(r.segment, ext)
		if r.directory.FileExists(name) {
			files = append(files, name)
		}
	}
	for _, fi := range r.fieldInfos.Values() {
		if fi.IsIndexed {
			name := util.NormFileName(r.segment, fi.Number, r.cfsReader != nil)
			if r.directory.FileExists(name) {
				files = append(files, name)
			}
		}
	}
	return files
}

func (r *SegmentReader) SegmentName() string {
	return r.segment
}

func (r *SegmentReader) FieldInfos() *FieldInfos {
	return r.fieldInfos
}

func (r *SegmentReader) Terms() (TermEnum, error) {
	return r.tis.Terms(), nil
}

func (r *SegmentReader) TermsFrom(t *Term) (TermEnum, error) {
	return r.tis.TermsFrom(t)
}

func (r *SegmentReader) Document(n int) (*document.Document, error) {
	if r.IsDeleted(n) {
		return nil, fmt.Errorf("attempt to access a deleted document: %v", n)
	}
	return r.fieldsReader.Doc(n)
}

func (r *SegmentReader) IsDeleted(n int) bool {
	r.Lock()
	defer r.Unlock()
	return r.deletedDocs != nil && r.deletedDocs.At(n)
}

func (r *SegmentReader) TermDocs() (TermDocs, error) {
	return newSegmentTermDocs(r), nil
}

func (r *SegmentReader) TermDocsFor(t *Term) (TermDocs, error) {
	td := newSegmentTermDocs(r)
	if err := td.Seek(t); err != nil {
		return nil, util.CloseWhileHandlingError(err, td)
	}
	return td, nil
}

func (r *SegmentReader) TermPositions() (TermPositions, error) {
	return newSegmentTermPositions(r), nil
}

func (r *SegmentReader) TermPositionsFor(t *Term) (TermPositions, error) {
	tp := newSegmentTermPositions(r)
	if err := tp.Seek(t); err != nil {
		return nil, util.CloseWhileHandlingError(err, tp)
	}
	return tp, nil
}

func (r *SegmentReader) DocFreq(t *Term) (int, error) {
	ti, err := r.tis.Get(t)
	if err != nil || ti == nil {
		return 0, err
	}
	return int(ti.DocFreq), nil
}

func (r *SegmentReader) NumDocs() int {
	r.Lock()
	defer r.Unlock()
	n := r.MaxDoc()
	if r.deletedDocs != nil {
		n -= r.deletedDocs.Count()
	}
	return n
}

func (r *SegmentReader) MaxDoc() int {
	return r.fieldsReader.Size()
}

func (r *SegmentReader) FieldNames(option FieldOption) []string {
	var names []string
	for _, fi := range r.fieldInfos.Values() {
		if option.matches(fi) {
			names = append(names, fi.Name)
		}
	}
	sort.Strings(names)
	return names
}

func (r *SegmentReader) HasNorms(field string) bool {
	r.Lock()
	defer r.Unlock()
	_, ok := r.norms[field]
	return ok
}

// Must be called with the lock held.
func (r *SegmentReader) getNorms(field string) ([]byte, error) {
	n, ok := r.norms[field]
	if !ok {
		return nil, nil
	}
	if err := n.load(r.MaxDoc()); err != nil {
		return nil, err
	}
	return n.bytes, nil
}

func (r *SegmentReader) Norms(field string) ([]byte, error) {
	r.Lock()
	defer r.Unlock()
	return r.getNorms(field)
}

// Read norms into a pre-allocated array. Fields without norms are
// filled with the encoding of 1.0.
func (r *SegmentReader) NormsInto(field string, bytes []byte, offset int) error {
	r.Lock()
	defer r.Unlock()
	norms, err := r.getNorms(field)
	if err != nil {
		return err
	}
	maxDoc := r.MaxDoc()
	if norms == nil {
		for i := offset; i < offset+maxDoc; i++ {
			bytes[i] = defaultNorm
		}
		return nil
	}
	copy(bytes[offset:offset+maxDoc], norms)
	return nil
}

func (r *SegmentReader) doSetNorm(doc int, field string, value byte) error {
	n, ok := r.norms[field]
	if !ok { // not an indexed field
		return nil
	}
	if err := n.load(r.MaxDoc()); err != nil {
		return err
	}
	n.dirty = true // mark it dirty
	r.normsDirty = true
	n.bytes[doc] = value // set the value
	return nil
}

/*
Return a term frequency vector for the specified document and field.
The vector returned contains term numbers and frequencies for all
terms in the specified field of this document, if the field had
storeTermVector flag set. If the flag was not set, the method returns
nil.
*/
func (r *SegmentReader) TermFreqVector(docNumber int, field string) (*TermFreqVector, error) {
	fi := r.fieldInfos.FieldInfo(field)
	if fi == nil || !fi.StoreTermVector || r.termVectors == nil {
		return nil, nil
	}
	tvr := r.termVectors.get()
	defer r.termVectors.put(tvr)
	return tvr.Get(docNumber, field)
}

func (r *SegmentReader) TermFreqVectors(docNumber int) ([]*TermFreqVector, error) {
	if r.termVectors == nil {
		return nil, nil
	}
	tvr := r.termVectors.get()
	defer r.termVectors.put(tvr)
	return tvr.GetAll(docNumber)
}

func (r *SegmentReader) String() string {
	return fmt.Sprintf("SegmentReader(%v)", r.si)
}
