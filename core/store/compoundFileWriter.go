package store

import (
	"fmt"

	"github.com/dbalmain/ferret-sub000/core/util"
	"github.com/pkg/errors"
)

// index/CompoundFileWriter.java

type compoundEntry struct {
	file            string // source file
	directoryOffset int64  // position of the offset placeholder in the output
	dataOffset      int64  // start of this file's data section
}

/*
Combines multiple files into a single compound file.

The file format:

	VInt fileCount
	{Directory} fileCount entries with the following structure:
		int64 dataOffset
		String fileName
	{File Data} fileCount entries with the raw data of the
	corresponding file

The fileCount integer indicates how many files are contained in this
compound file. The {directory} that follows has that many entries.
Each directory entry contains a long pointer to the start of this
file's data section, and a string with that file's name.

Files must all be added before Close() writes the container; adding
afterwards, adding a name twice, or closing without entries return
ErrIllegalState.
*/
type CompoundFileWriter struct {
	directory Directory
	fileName  string
	ids       map[string]bool
	entries   []*compoundEntry
	merged    bool
}

/*
Create the compound stream in the specified file. The file name is the
entire name (no extensions are added).
*/
func NewCompoundFileWriter(dir Directory, name string) *CompoundFileWriter {
	assert2(dir != nil, "directory cannot be nil")
	assert2(name != "", "name cannot be empty")
	return &CompoundFileWriter{
		directory: dir,
		fileName:  name,
		ids:       make(map[string]bool),
	}
}

// Returns the directory of the compound file.
func (w *CompoundFileWriter) Directory() Directory {
	return w.directory
}

// Returns the name of the compound file.
func (w *CompoundFileWriter) Name() string {
	return w.fileName
}

/*
Add a source stream. file is the string by which the sub-stream will
be known in the compound stream.
*/
func (w *CompoundFileWriter) AddFile(file string) error {
	if w.merged {
		return errors.Wrap(ErrIllegalState, "Can't add extensions after merge has been called")
	}
	assert2(file != "", "file cannot be empty")
	if w.ids[file] {
		return errors.Wrapf(ErrIllegalState, "File %v already added", file)
	}
	w.ids[file] = true
	w.entries = append(w.entries, &compoundEntry{file: file})
	return nil
}

/*
Merge files with the extensions added up to now. All files with these
extensions are combined sequentially into the compound stream. After
successful merge, the source files are NOT deleted.
*/
func (w *CompoundFileWriter) Close() (err error) {
	if w.merged {
		return errors.Wrap(ErrIllegalState, "Merge already performed")
	}
	if len(w.entries) == 0 {
		return errors.Wrap(ErrIllegalState, "No entries to merge have been defined")
	}
	w.merged = true

	// open the compound stream
	os, err := w.directory.CreateOutput(w.fileName, IO_CONTEXT_DEFAULT)
	if err != nil {
		return err
	}
	success := false
	defer func() {
		if success {
			err = os.Close()
		} else {
			util.CloseWhileSuppressingError(os)
		}
	}()

	// Write the number of entries
	if err = os.WriteVInt(int32(len(w.entries))); err != nil {
		return err
	}

	// Write the directory with all offsets at 0. Remember the
	// positions of directory entries so that we can adjust the offsets
	// later
	for _, fe := range w.entries {
		fe.directoryOffset = os.FilePointer()
		if err = os.WriteLong(0); err != nil { // for now
			return err
		}
		if err = os.WriteString(fe.file); err != nil {
			return err
		}
	}

	// Open the files and copy their data into the stream. Remember the
	// locations of each file's data section.
	for _, fe := range w.entries {
		fe.dataOffset = os.FilePointer()
		if err = w.copyFile(fe, os); err != nil {
			return err
		}
	}

	// Write the data offsets into the directory of the compound stream
	for _, fe := range w.entries {
		if err = os.Seek(fe.directoryOffset); err != nil {
			return err
		}
		if err = os.WriteLong(fe.dataOffset); err != nil {
			return err
		}
	}
	success = true
	return nil
}

// Copy the contents of the file with specified extension into the
// provided output stream.
func (w *CompoundFileWriter) copyFile(source *compoundEntry, os IndexOutput) (err error) {
	is, err := w.directory.OpenInput(source.file, IO_CONTEXT_MERGE)
	if err != nil {
		return err
	}
	defer func() {
		err = util.CloseWhileHandlingError(err, is)
	}()

	startPtr := os.FilePointer()
	length := is.Length()
	if err = os.CopyBytes(is, length); err != nil {
		return err
	}

	// Verify that the output length diff is equal to original file
	if diff := os.FilePointer() - startPtr; diff != length {
		return fmt.Errorf("Difference in the output file offsets %v does not match the original file length %v",
			diff, length)
	}
	return nil
}
