package index

import (
	"sort"
	"sync"

	"github.com/dbalmain/ferret-sub000/core/document"
	"github.com/dbalmain/ferret-sub000/core/store"
	"github.com/dbalmain/ferret-sub000/core/util"
)

// Concatenated per-field norms of a composite reader, assembled on
// demand. An entry is only served while the sub-readers' norms
// generation still matches the one it was built at, so a SetNorm made
// directly on a sub-reader drops it too.
type normsCache struct {
	sync.Mutex
	byField map[string]cachedNorms
}

type cachedNorms struct {
	bytes []byte
	gen   int64
}

func newNormsCache() *normsCache {
	return &normsCache{byField: make(map[string]cachedNorms)}
}

func (c *normsCache) get(field string, gen int64) ([]byte, bool) {
	c.Lock()
	defer c.Unlock()
	entry, ok := c.byField[field]
	if !ok || entry.gen != gen {
		return nil, false
	}
	return entry.bytes, true
}

func (c *normsCache) put(field string, bytes []byte, gen int64) {
	c.Lock()
	defer c.Unlock()
	c.byField[field] = cachedNorms{bytes, gen}
}

func (c *normsCache) invalidate(field string) {
	c.Lock()
	defer c.Unlock()
	delete(c.byField, field)
}

func (c *normsCache) clear() {
	c.Lock()
	defer c.Unlock()
	c.byField = make(map[string]cachedNorms)
}

// index/MultiReader.java

/*
An IndexReader which reads multiple indexes, appending their content.
Document n of the composite is document n-starts[i] of sub-reader i,
where starts[i] <= n < starts[i+1].
*/
type MultiReader struct {
	*IndexReaderImpl
	subReaders   []IndexReader
	starts       []int // 1st docno for each segment
	norms        *normsCache
	maxDoc       int
	numDocs      int // -1 when stale
	hasDeletions bool
}

/*
Construct a MultiReader aggregating the named set of (sub)readers.
Directory locking for delete, undeleteAll, and setNorm operations is
left to the subreaders.

Note that all subreaders are closed if this MultiReader is closed.
*/
func NewMultiReader(subReaders ...IndexReader) *MultiReader {
	var directory store.Directory
	if len(subReaders) > 0 {
		directory = subReaders[0].Directory()
	}
	r := &MultiReader{}
	r.IndexReaderImpl = newIndexReader(r, directory)
	r.initialize(subReaders)
	return r
}

// Construct reading the named set of readers.
func newOwnerMultiReader(directory store.Directory, sis *SegmentInfos,
	closeDirectory bool, subReaders []IndexReader) *MultiReader {

	r := &MultiReader{}
	r.IndexReaderImpl = newOwnerIndexReader(r, directory, sis, closeDirectory)
	r.initialize(subReaders)
	return r
}

func (r *MultiReader) initialize(subReaders []IndexReader) {
	r.subReaders = subReaders
	r.starts = make([]int, len(subReaders)+1) // build starts array
	r.norms = newNormsCache()
	r.numDocs = -1
	for i, sub := range subReaders {
		r.starts[i] = r.maxDoc
		r.maxDoc += sub.MaxDoc() // compute maxDocs
		if sub.HasDeletions() {
			r.hasDeletions = true
		}
	}
	r.starts[len(subReaders)] = r.maxDoc
}

func (r *MultiReader) SubReaders() []IndexReader {
	return r.subReaders
}

// Returns the 1st doc number of each sub-reader, plus MaxDoc().
func (r *MultiReader) Starts() []int {
	return r.starts
}

func (r *MultiReader) TermFreqVectors(n int) ([]*TermFreqVector, error) {
	i := r.readerIndex(n) // find segment num
	return r.subReaders[i].TermFreqVectors(n - r.starts[i]) // dispatch to segment
}

func (r *MultiReader) TermFreqVector(n int, field string) (*TermFreqVector, error) {
	i := r.readerIndex(n)
	return r.subReaders[i].TermFreqVector(n-r.starts[i], field)
}

func (r *MultiReader) NumDocs() int {
	r.Lock()
	defer r.Unlock()
	if r.numDocs == -1 { // check cache
		n := 0 // cache miss--recompute
		for _, sub := range r.subReaders {
			n += sub.NumDocs() // sum from readers
		}
		r.numDocs = n
	}
	return r.numDocs
}

func (r *MultiReader) MaxDoc() int {
	return r.maxDoc
}

func (r *MultiReader) Document(n int) (*document.Document, error) {
	i := r.readerIndex(n)
	return r.subReaders[i].Document(n - r.starts[i])
}

func (r *MultiReader) IsDeleted(n int) bool {
	i := r.readerIndex(n)
	return r.subReaders[i].IsDeleted(n - r.starts[i])
}

func (r *MultiReader) HasDeletions() bool {
	r.Lock()
	defer r.Unlock()
	return r.hasDeletions
}

func (r *MultiReader) doDelete(n int) error {
	r.numDocs = -1 // invalidate cache
	i := r.readerIndex(n)
	if err := r.subReaders[i].DeleteDocument(n - r.starts[i]); err != nil {
		return err
	}
	r.hasDeletions = true
	return nil
}

func (r *MultiReader) doUndeleteAll() error {
	for _, sub := range r.subReaders {
		if err := sub.UndeleteAll(); err != nil {
			return err
		}
	}
	r.hasDeletions = false
	r.numDocs = -1 // invalidate cache
	r.norms.clear()
	return nil
}

// Returns the sub-reader holding document n.
func (r *MultiReader) readerIndex(n int) int {
	return readerIndex(n, r.starts, len(r.subReaders))
}

// Binary search of starts for the reader owning n. Runs of equal
// starts, from empty readers, resolve to the last of the run.
func readerIndex(n int, starts []int, numSubReaders int) int {
	lo, hi := 0, numSubReaders-1
	for hi >= lo {
		mid := int(uint(lo+hi) >> 1)
		midValue := starts[mid]
		if n < midValue {
			hi = mid - 1
		} else if n > midValue {
			lo = mid + 1
		} else { // found a match
			for mid+1 < numSubReaders && starts[mid+1] == midValue {
				mid++ // scan to last match
			}
			return mid
		}
	}
	return hi
}

func (r *MultiReader) HasNorms(field string) bool {
	for _, sub := range r.subReaders {
		if sub.HasNorms(field) {
			return true
		}
	}
	return false
}

// Sum of the sub-readers' norms generations.
func (r *MultiReader) normsGeneration() int64 {
	var gen int64
	for _, sub := range r.subReaders {
		if g, ok := sub.(interface{ normsGeneration() int64 }); ok {
			gen += g.normsGeneration()
		}
	}
	return gen
}

func (r *MultiReader) Norms(field string) ([]byte, error) {
	gen := r.normsGeneration()
	if bytes, ok := r.norms.get(field, gen); ok {
		return bytes, nil // cache hit
	}
	if !r.HasNorms(field) {
		return nil, nil
	}
	bytes := make([]byte, r.maxDoc)
	for i, sub := range r.subReaders {
		if err := sub.NormsInto(field, bytes, r.starts[i]); err != nil {
			return nil, err
		}
	}
	r.norms.put(field, bytes, gen) // update cache
	return bytes, nil
}

func (r *MultiReader) NormsInto(field string, result []byte, offset int) error {
	if bytes, ok := r.norms.get(field, r.normsGeneration()); ok {
		copy(result[offset:offset+r.maxDoc], bytes)
		return nil
	}
	for i, sub := range r.subReaders { // read from segments
		if err := sub.NormsInto(field, result, offset+r.starts[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *MultiReader) doSetNorm(n int, field string, value byte) error {
	r.norms.invalidate(field) // clear cache
	i := r.readerIndex(n)
	return r.subReaders[i].SetNorm(n-r.starts[i], field, value) // dispatch
}

func (r *MultiReader) Terms() (TermEnum, error) {
	return newMultiTermEnum(r.subReaders, r.starts, nil)
}

func (r *MultiReader) TermsFrom(term *Term) (TermEnum, error) {
	return newMultiTermEnum(r.subReaders, r.starts, term)
}

func (r *MultiReader) DocFreq(t *Term) (int, error) {
	total := 0 // sum freqs in segments
	for _, sub := range r.subReaders {
		df, err := sub.DocFreq(t)
		if err != nil {
			return 0, err
		}
		total += df
	}
	return total, nil
}

func (r *MultiReader) TermDocs() (TermDocs, error) {
	return newMultiTermDocs(r.subReaders, r.starts), nil
}

func (r *MultiReader) TermDocsFor(t *Term) (TermDocs, error) {
	td := newMultiTermDocs(r.subReaders, r.starts)
	if err := td.Seek(t); err != nil {
		return nil, util.CloseWhileHandlingError(err, td)
	}
	return td, nil
}

func (r *MultiReader) TermPositions() (TermPositions, error) {
	return newMultiTermPositions(r.subReaders, r.starts), nil
}

func (r *MultiReader) TermPositionsFor(t *Term) (TermPositions, error) {
	tp := newMultiTermPositions(r.subReaders, r.starts)
	if err := tp.Seek(t); err != nil {
		return nil, util.CloseWhileHandlingError(err, tp)
	}
	return tp, nil
}

func (r *MultiReader) doCommit() error {
	for _, sub := range r.subReaders {
		if err := sub.Commit(); err != nil {
			return err
		}
	}
	return nil
}

func (r *MultiReader) doClose() error {
	var errs []error
	for _, sub := range r.subReaders {
		errs = append(errs, sub.Close())
	}
	return util.JoinErrors(errs...)
}

func (r *MultiReader) FieldNames(option FieldOption) []string {
	// maintain a unique set of field names
	set := make(map[string]bool)
	for _, sub := range r.subReaders {
		for _, name := range sub.FieldNames(option) {
			set[name] = true
		}
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// index/SegmentMergeInfo.java

type SegmentMergeInfo struct {
	term     *Term
	base     int
	termEnum TermEnum
	reader   IndexReader
	postings TermPositions
	docMap   []int // maps around deleted docs
}

func newSegmentMergeInfo(base int, termEnum TermEnum, reader IndexReader) *SegmentMergeInfo {
	return &SegmentMergeInfo{
		base:     base,
		termEnum: termEnum,
		reader:   reader,
		term:     termEnum.Term(),
	}
}

// Builds the doc map on first use: -1 for deleted documents,
// otherwise the compacted number.
func (smi *SegmentMergeInfo) getDocMap() []int {
	if smi.docMap == nil && smi.reader.HasDeletions() {
		maxDoc := smi.reader.MaxDoc()
		smi.docMap = make([]int, maxDoc)
		j := 0
		for i := 0; i < maxDoc; i++ {
			if smi.reader.IsDeleted(i) {
				smi.docMap[i] = -1
			} else {
				smi.docMap[i] = j
				j++
			}
		}
	}
	return smi.docMap
}

func (smi *SegmentMergeInfo) getPositions() (TermPositions, error) {
	if smi.postings == nil {
		var err error
		if smi.postings, err = smi.reader.TermPositions(); err != nil {
			return nil, err
		}
	}
	return smi.postings, nil
}

func (smi *SegmentMergeInfo) next() (bool, error) {
	ok, err := smi.termEnum.Next()
	if err != nil {
		return false, err
	}
	if ok {
		smi.term = smi.termEnum.Term()
	} else {
		smi.term = nil
	}
	return ok, nil
}

func (smi *SegmentMergeInfo) Close() error {
	var postings interface{ Close() error }
	if smi.postings != nil {
		postings = smi.postings
	}
	return util.Close(smi.termEnum, postings)
}

// index/SegmentMergeQueue.java

// Orders merge infos by term, then by base.
func newSegmentMergeQueue(size int) *util.PriorityQueue[*SegmentMergeInfo] {
	return util.NewPriorityQueue(size, func(a, b *SegmentMergeInfo) bool {
		if cmp := a.term.CompareTo(b.term); cmp != 0 {
			return cmp < 0
		}
		return a.base < b.base
	})
}

func closeQueue(queue *util.PriorityQueue[*SegmentMergeInfo]) error {
	var errs []error
	for {
		smi, ok := queue.Pop()
		if !ok {
			return util.JoinErrors(errs...)
		}
		errs = append(errs, smi.Close())
	}
}

// index/MultiTermEnum.java

type MultiTermEnum struct {
	queue   *util.PriorityQueue[*SegmentMergeInfo]
	term    *Term
	docFreq int
}

func newMultiTermEnum(readers []IndexReader, starts []int, t *Term) (*MultiTermEnum, error) {
	e := &MultiTermEnum{queue: newSegmentMergeQueue(len(readers))}
	for i, reader := range readers {
		var termEnum TermEnum
		var err error
		if t != nil {
			termEnum, err = reader.TermsFrom(t)
		} else {
			termEnum, err = reader.Terms()
		}
		if err != nil {
			return nil, util.CloseWhileHandlingError(err, e)
		}

		smi := newSegmentMergeInfo(starts[i], termEnum, reader)
		ok := termEnum.Term() != nil
		if t == nil {
			if ok, err = smi.next(); err != nil {
				return nil, util.CloseWhileHandlingError(err, smi, e)
			}
		}
		if ok {
			e.queue.Put(smi) // initialize queue
		} else if err = smi.Close(); err != nil {
			return nil, util.CloseWhileHandlingError(err, e)
		}
	}

	if t != nil && e.queue.Len() > 0 {
		if _, err := e.Next(); err != nil {
			return nil, util.CloseWhileHandlingError(err, e)
		}
	}
	return e, nil
}

func (e *MultiTermEnum) Next() (bool, error) {
	top, ok := e.queue.Top()
	if !ok {
		e.term = nil
		return false, nil
	}

	e.term = top.term
	e.docFreq = 0

	for ok && e.term.CompareTo(top.term) == 0 {
		e.queue.Pop()
		e.docFreq += top.termEnum.DocFreq() // increment freq
		more, err := top.next()
		if err != nil {
			return false, util.CloseWhileHandlingError(err, top)
		}
		if more {
			e.queue.Put(top) // restore queue
		} else if err = top.Close(); err != nil { // done with a segment
			return false, err
		}
		top, ok = e.queue.Top()
	}
	return true, nil
}

func (e *MultiTermEnum) Term() *Term {
	return e.term
}

func (e *MultiTermEnum) DocFreq() int {
	return e.docFreq
}

func (e *MultiTermEnum) Close() error {
	return closeQueue(e.queue)
}

// index/MultiTermDocs.java

type MultiTermDocs struct {
	subReaders     []IndexReader
	starts         []int
	term           *Term
	base           int
	pointer        int
	readerTermDocs []TermDocs
	current        TermDocs // == readerTermDocs[pointer-1]
	newTermDocs    func(IndexReader) (TermDocs, error)
}

func newMultiTermDocs(readers []IndexReader, starts []int) *MultiTermDocs {
	return &MultiTermDocs{
		subReaders:     readers,
		starts:         starts,
		readerTermDocs: make([]TermDocs, len(readers)),
		newTermDocs:    func(r IndexReader) (TermDocs, error) { return r.TermDocs() },
	}
}

func (td *MultiTermDocs) Doc() int {
	return td.base + td.current.Doc()
}

func (td *MultiTermDocs) Freq() int {
	return td.current.Freq()
}

func (td *MultiTermDocs) Seek(term *Term) error {
	td.term = term
	td.base = 0
	td.pointer = 0
	td.current = nil
	return nil
}

func (td *MultiTermDocs) SeekEnum(termEnum TermEnum) error {
	return td.Seek(termEnum.Term())
}

// Moves current to the next sub-reader. False once all are used.
func (td *MultiTermDocs) advance() (bool, error) {
	if td.pointer >= len(td.subReaders) {
		td.current = nil
		return false, nil
	}
	td.base = td.starts[td.pointer]
	var err error
	td.current, err = td.termDocs(td.pointer)
	td.pointer++
	return err == nil, err
}

func (td *MultiTermDocs) Next() (bool, error) {
	for {
		if td.current != nil {
			ok, err := td.current.Next()
			if err != nil || ok {
				return ok, err
			}
		}
		if more, err := td.advance(); !more {
			return false, err
		}
	}
}

// Optimized implementation.
func (td *MultiTermDocs) Read(docs, freqs []int) (int, error) {
	for {
		for td.current == nil {
			if more, err := td.advance(); !more {
				return 0, err
			}
		}
		end, err := td.current.Read(docs, freqs)
		if err != nil {
			return 0, err
		}
		if end == 0 { // none left in segment
			td.current = nil
			continue
		}
		for i := 0; i < end; i++ { // got some
			docs[i] += td.base // adjust doc numbers
		}
		return end, nil
	}
}

func (td *MultiTermDocs) SkipTo(target int) (bool, error) {
	for {
		if td.current != nil {
			ok, err := td.current.SkipTo(target - td.base)
			if err != nil || ok {
				return ok, err
			}
		}
		if more, err := td.advance(); !more {
			return false, err
		}
	}
}

func (td *MultiTermDocs) termDocs(i int) (TermDocs, error) {
	if td.term == nil {
		return nil, nil
	}
	result := td.readerTermDocs[i]
	if result == nil {
		var err error
		if result, err = td.newTermDocs(td.subReaders[i]); err != nil {
			return nil, err
		}
		td.readerTermDocs[i] = result
	}
	if err := result.Seek(td.term); err != nil {
		return nil, err
	}
	return result, nil
}

func (td *MultiTermDocs) Close() error {
	var errs []error
	for _, sub := range td.readerTermDocs {
		if sub != nil {
			errs = append(errs, sub.Close())
		}
	}
	return util.JoinErrors(errs...)
}

// index/MultiTermPositions.java

type MultiTermPositions struct {
	*MultiTermDocs
}

func newMultiTermPositions(readers []IndexReader, starts []int) *MultiTermPositions {
	td := newMultiTermDocs(readers, starts)
	td.newTermDocs = func(r IndexReader) (TermDocs, error) { return r.TermPositions() }
	return &MultiTermPositions{td}
}

func (tp *MultiTermPositions) NextPosition() (int, error) {
	return tp.current.(TermPositions).NextPosition()
}

func (tp *MultiTermPositions) Read(docs, freqs []int) (int, error) {
	return tp.MultiTermDocs.Read(docs, freqs)
}
