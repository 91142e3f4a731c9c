package index

import (
	"fmt"
	"math"
	"os"

	"github.com/dbalmain/ferret-sub000/core/analysis"
	"github.com/dbalmain/ferret-sub000/core/store"
	"github.com/dbalmain/ferret-sub000/core/util"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"
)

// index/IndexWriterConfig.java

// Specifies the open mode for IndexWriter
type OpenMode int

const (
	// Creates a new index or overwrites an existing one.
	OPEN_MODE_CREATE = OpenMode(1)
	// Opens an existing index.
	OPEN_MODE_APPEND = OpenMode(2)
	// Creates a new index if one does not exist,
	// otherwise it opens the index and documents will be appended.
	OPEN_MODE_CREATE_OR_APPEND = OpenMode(3)
)

var openModeNames = map[OpenMode]string{
	OPEN_MODE_CREATE:           "create",
	OPEN_MODE_APPEND:           "append",
	OPEN_MODE_CREATE_OR_APPEND: "create_or_append",
}

func (mode OpenMode) String() string {
	if name, ok := openModeNames[mode]; ok {
		return name
	}
	return fmt.Sprintf("OpenMode(%d)", int(mode))
}

func parseOpenMode(s string) (OpenMode, error) {
	for mode, name := range openModeNames {
		if name == s {
			return mode, nil
		}
	}
	return 0, errors.Errorf("unknown open mode %q", s)
}

// Default value for the write lock timeout (1,000 ms)
const WRITE_LOCK_TIMEOUT = 1000

// Default value for the commit lock timeout (10,000 ms)
const COMMIT_LOCK_TIMEOUT = 10000

// Default value is 10. Change using SetMergeFactor().
const DEFAULT_MERGE_FACTOR = 10

// Default value is 10. Change using SetMaxBufferedDocs().
const DEFAULT_MAX_BUFFERED_DOCS = 10

// Default value is math.MaxInt32. Change using SetMaxMergeDocs().
const DEFAULT_MAX_MERGE_DOCS = math.MaxInt32

// Default value is 10,000. Change using SetMaxFieldLength().
const DEFAULT_MAX_FIELD_LENGTH = 10000

// Default value for compound file system for newly written segments
// (set to true).
const DEFAULT_USE_COMPOUND_FILE = true

/*
Holds all the configuration that is used to create an IndexWriter.
Once IndexWriter has been created with this object, changes to this
object will not affect the IndexWriter instance.

All setter methods return IndexWriterConfig to allow chaining settings
conveniently, for example:

	conf := NewIndexWriterConfig(analyzer).
		SetMergeFactor(20).
		SetUseCompoundFile(false)
*/
type IndexWriterConfig struct {
	analyzer          analysis.Analyzer
	similarity        Similarity
	openMode          OpenMode
	mergeFactor       int
	maxBufferedDocs   int
	maxMergeDocs      int
	maxFieldLength    int
	termIndexInterval int32
	useCompoundFile   bool
	writeLockTimeout  int64
	commitLockTimeout int64
	infoStream        util.InfoStream
	registerer        prometheus.Registerer
}

// Creates a new config with defaults and the given Analyzer.
func NewIndexWriterConfig(analyzer analysis.Analyzer) *IndexWriterConfig {
	return &IndexWriterConfig{
		analyzer:          analyzer,
		similarity:        DefaultSimilarity{},
		openMode:          OPEN_MODE_CREATE_OR_APPEND,
		mergeFactor:       DEFAULT_MERGE_FACTOR,
		maxBufferedDocs:   DEFAULT_MAX_BUFFERED_DOCS,
		maxMergeDocs:      DEFAULT_MAX_MERGE_DOCS,
		maxFieldLength:    DEFAULT_MAX_FIELD_LENGTH,
		termIndexInterval: DEFAULT_TERM_INDEX_INTERVAL,
		useCompoundFile:   DEFAULT_USE_COMPOUND_FILE,
		writeLockTimeout:  WRITE_LOCK_TIMEOUT,
		commitLockTimeout: COMMIT_LOCK_TIMEOUT,
		infoStream:        util.DefaultInfoStream(),
	}
}

func (conf *IndexWriterConfig) Analyzer() analysis.Analyzer {
	return conf.analyzer
}

func (conf *IndexWriterConfig) SetAnalyzer(analyzer analysis.Analyzer) *IndexWriterConfig {
	assert2(analyzer != nil, "analyzer must not be nil")
	conf.analyzer = analyzer
	return conf
}

/*
Expert: set the Similarity implementation used by this IndexWriter
to compute norms.

NOTE: the similarity cannot be nil.
*/
func (conf *IndexWriterConfig) SetSimilarity(similarity Similarity) *IndexWriterConfig {
	assert2(similarity != nil, "similarity must not be nil")
	conf.similarity = similarity
	return conf
}

func (conf *IndexWriterConfig) Similarity() Similarity {
	return conf.similarity
}

// Specifies OpenMode of the index.
func (conf *IndexWriterConfig) SetOpenMode(openMode OpenMode) *IndexWriterConfig {
	assert2(openMode >= OPEN_MODE_CREATE && openMode <= OPEN_MODE_CREATE_OR_APPEND,
		"invalid open mode %v", openMode)
	conf.openMode = openMode
	return conf
}

func (conf *IndexWriterConfig) OpenMode() OpenMode {
	return conf.openMode
}

/*
Determines how often segment indices are merged by AddDocument().
With smaller values, less RAM is used while indexing, and searches on
unoptimized indices are faster, but indexing speed is slower. With
larger values, more RAM is used during indexing, and while searches
on unoptimized indices are slower, indexing is faster. Thus larger
values (> 10) are best for batch index creation, and smaller values
(< 10) for indices that are interactively maintained.
*/
func (conf *IndexWriterConfig) SetMergeFactor(mergeFactor int) *IndexWriterConfig {
	assert2(mergeFactor >= 2, "mergeFactor cannot be less than 2")
	conf.mergeFactor = mergeFactor
	return conf
}

func (conf *IndexWriterConfig) MergeFactor() int {
	return conf.mergeFactor
}

/*
Determines the minimal number of documents required before the
buffered in-memory documents are merged and a new Segment is created.
Since Documents are merged in a RAMDirectory, large value gives
faster indexing. At the same time, mergeFactor limits the number of
files open in a FSDirectory.
*/
func (conf *IndexWriterConfig) SetMaxBufferedDocs(maxBufferedDocs int) *IndexWriterConfig {
	assert2(maxBufferedDocs >= 2, "maxBufferedDocs must at least be 2")
	conf.maxBufferedDocs = maxBufferedDocs
	return conf
}

func (conf *IndexWriterConfig) MaxBufferedDocs() int {
	return conf.maxBufferedDocs
}

/*
Determines the largest number of documents ever merged by
AddDocument(). Small values (e.g., less than 10,000) are best for
interactive indexing, as this limits the length of pauses while
indexing to a few seconds. Larger values are best for batched
indexing and speedier searches.
*/
func (conf *IndexWriterConfig) SetMaxMergeDocs(maxMergeDocs int) *IndexWriterConfig {
	assert2(maxMergeDocs > 0, "maxMergeDocs must be positive")
	conf.maxMergeDocs = maxMergeDocs
	return conf
}

func (conf *IndexWriterConfig) MaxMergeDocs() int {
	return conf.maxMergeDocs
}

/*
The maximum number of terms that will be indexed for a single field
in a document. This limits the amount of memory required for
indexing, so that collections with very large files will not crash
the indexing process by running out of memory. Note that this
effectively truncates large documents, excluding from the index terms
that occur further in the document.
*/
func (conf *IndexWriterConfig) SetMaxFieldLength(maxFieldLength int) *IndexWriterConfig {
	assert2(maxFieldLength > 0, "maxFieldLength must be positive")
	conf.maxFieldLength = maxFieldLength
	return conf
}

func (conf *IndexWriterConfig) MaxFieldLength() int {
	return conf.maxFieldLength
}

/*
Expert: set the interval between indexed terms. Large values cause
less memory to be used by IndexReader, but slow random-access to
terms. Small values cause more memory to be used by an IndexReader,
and speed random-access to terms.
*/
func (conf *IndexWriterConfig) SetTermIndexInterval(interval int32) *IndexWriterConfig {
	assert2(interval > 0, "termIndexInterval must be positive")
	conf.termIndexInterval = interval
	return conf
}

func (conf *IndexWriterConfig) TermIndexInterval() int32 {
	return conf.termIndexInterval
}

// Setting to turn on usage of a compound file.
func (conf *IndexWriterConfig) SetUseCompoundFile(useCompoundFile bool) *IndexWriterConfig {
	conf.useCompoundFile = useCompoundFile
	return conf
}

func (conf *IndexWriterConfig) UseCompoundFile() bool {
	return conf.useCompoundFile
}

// Sets the maximum time to wait for a write lock (in milliseconds), or
// store.LOCK_OBTAIN_WAIT_FOREVER.
func (conf *IndexWriterConfig) SetWriteLockTimeout(writeLockTimeout int64) *IndexWriterConfig {
	assert2(validLockTimeout(writeLockTimeout),
		"writeLockTimeout must be non-negative or LOCK_OBTAIN_WAIT_FOREVER (got %v)", writeLockTimeout)
	conf.writeLockTimeout = writeLockTimeout
	return conf
}

func (conf *IndexWriterConfig) WriteLockTimeout() int64 {
	return conf.writeLockTimeout
}

// Sets the maximum time to wait for a commit lock (in milliseconds), or
// store.LOCK_OBTAIN_WAIT_FOREVER.
func (conf *IndexWriterConfig) SetCommitLockTimeout(commitLockTimeout int64) *IndexWriterConfig {
	assert2(validLockTimeout(commitLockTimeout),
		"commitLockTimeout must be non-negative or LOCK_OBTAIN_WAIT_FOREVER (got %v)", commitLockTimeout)
	conf.commitLockTimeout = commitLockTimeout
	return conf
}

func (conf *IndexWriterConfig) CommitLockTimeout() int64 {
	return conf.commitLockTimeout
}

func validLockTimeout(ms int64) bool {
	return ms >= 0 || ms == store.LOCK_OBTAIN_WAIT_FOREVER
}

/*
Information about merges, deletes and a message when maxFieldLength
is reached will be printed to this. Must not be nil, but NO_OUTPUT
may be used to suppress output.
*/
func (conf *IndexWriterConfig) SetInfoStream(infoStream util.InfoStream) *IndexWriterConfig {
	assert2(infoStream != nil, "Cannot set InfoStream implementation to nil. "+
		"To disable logging use InfoStream.NO_OUTPUT")
	conf.infoStream = infoStream
	return conf
}

func (conf *IndexWriterConfig) InfoStream() util.InfoStream {
	return conf.infoStream
}

// Registers the writer's metrics on registerer. Without one the
// metrics live in a private registry.
func (conf *IndexWriterConfig) SetRegisterer(registerer prometheus.Registerer) *IndexWriterConfig {
	conf.registerer = registerer
	return conf
}

func (conf *IndexWriterConfig) Registerer() prometheus.Registerer {
	return conf.registerer
}

func (conf *IndexWriterConfig) String() string {
	return fmt.Sprintf(`analyzer=%T
similarity=%T
openMode=%v
mergeFactor=%v
maxBufferedDocs=%v
maxMergeDocs=%v
maxFieldLength=%v
termIndexInterval=%v
useCompoundFile=%v
writeLockTimeout=%v
commitLockTimeout=%v
`, conf.analyzer, conf.similarity, conf.openMode, conf.mergeFactor,
		conf.maxBufferedDocs, conf.maxMergeDocs, conf.maxFieldLength,
		conf.termIndexInterval, conf.useCompoundFile, conf.writeLockTimeout,
		conf.commitLockTimeout)
}

// The YAML form of IndexWriterConfig. Absent keys keep the defaults.
type indexWriterConfigFile struct {
	OpenMode          *string `yaml:"openMode"`
	MergeFactor       *int    `yaml:"mergeFactor"`
	MaxBufferedDocs   *int    `yaml:"maxBufferedDocs"`
	MaxMergeDocs      *int    `yaml:"maxMergeDocs"`
	MaxFieldLength    *int    `yaml:"maxFieldLength"`
	TermIndexInterval *int32  `yaml:"termIndexInterval"`
	UseCompoundFile   *bool   `yaml:"useCompoundFile"`
	WriteLockTimeout  *int64  `yaml:"writeLockTimeout"`
	CommitLockTimeout *int64  `yaml:"commitLockTimeout"`
}

func (f *indexWriterConfigFile) validate() error {
	check := func(ok bool, format string, args ...interface{}) error {
		if ok {
			return nil
		}
		return errors.Errorf(format, args...)
	}
	if f.MergeFactor != nil {
		if err := check(*f.MergeFactor >= 2, "mergeFactor cannot be less than 2 (got %v)", *f.MergeFactor); err != nil {
			return err
		}
	}
	if f.MaxBufferedDocs != nil {
		if err := check(*f.MaxBufferedDocs >= 2, "maxBufferedDocs must at least be 2 (got %v)", *f.MaxBufferedDocs); err != nil {
			return err
		}
	}
	if f.MaxMergeDocs != nil {
		if err := check(*f.MaxMergeDocs > 0, "maxMergeDocs must be positive (got %v)", *f.MaxMergeDocs); err != nil {
			return err
		}
	}
	if f.MaxFieldLength != nil {
		if err := check(*f.MaxFieldLength > 0, "maxFieldLength must be positive (got %v)", *f.MaxFieldLength); err != nil {
			return err
		}
	}
	if f.TermIndexInterval != nil {
		if err := check(*f.TermIndexInterval > 0, "termIndexInterval must be positive (got %v)", *f.TermIndexInterval); err != nil {
			return err
		}
	}
	if f.WriteLockTimeout != nil {
		if err := check(validLockTimeout(*f.WriteLockTimeout), "writeLockTimeout must be non-negative or -1 (got %v)", *f.WriteLockTimeout); err != nil {
			return err
		}
	}
	if f.CommitLockTimeout != nil {
		if err := check(validLockTimeout(*f.CommitLockTimeout), "commitLockTimeout must be non-negative or -1 (got %v)", *f.CommitLockTimeout); err != nil {
			return err
		}
	}
	return nil
}

/*
Parses a YAML document into a config for analyzer. Keys use the
setter names, e.g.

	mergeFactor: 20
	maxBufferedDocs: 100
	useCompoundFile: false
	openMode: create
*/
func ParseIndexWriterConfig(data []byte, analyzer analysis.Analyzer) (*IndexWriterConfig, error) {
	var f indexWriterConfigFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "parsing index writer config")
	}
	if err := f.validate(); err != nil {
		return nil, err
	}

	conf := NewIndexWriterConfig(analyzer)
	if f.OpenMode != nil {
		mode, err := parseOpenMode(*f.OpenMode)
		if err != nil {
			return nil, err
		}
		conf.SetOpenMode(mode)
	}
	if f.MergeFactor != nil {
		conf.SetMergeFactor(*f.MergeFactor)
	}
	if f.MaxBufferedDocs != nil {
		conf.SetMaxBufferedDocs(*f.MaxBufferedDocs)
	}
	if f.MaxMergeDocs != nil {
		conf.SetMaxMergeDocs(*f.MaxMergeDocs)
	}
	if f.MaxFieldLength != nil {
		conf.SetMaxFieldLength(*f.MaxFieldLength)
	}
	if f.TermIndexInterval != nil {
		conf.SetTermIndexInterval(*f.TermIndexInterval)
	}
	if f.UseCompoundFile != nil {
		conf.SetUseCompoundFile(*f.UseCompoundFile)
	}
	if f.WriteLockTimeout != nil {
		conf.SetWriteLockTimeout(*f.WriteLockTimeout)
	}
	if f.CommitLockTimeout != nil {
		conf.SetCommitLockTimeout(*f.CommitLockTimeout)
	}
	return conf, nil
}

// Reads the YAML config file at path. See ParseIndexWriterConfig.
func LoadIndexWriterConfig(path string, analyzer analysis.Analyzer) (*IndexWriterConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading index writer config %v", path)
	}
	return ParseIndexWriterConfig(data, analyzer)
}
