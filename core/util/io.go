package util

import (
	"io"
	"reflect"
)

// Collects errors raised while closing several resources. Error()
// reports the last one.
type CompoundError struct {
	errs []error
}

func (e *CompoundError) Error() string {
	return e.errs[len(e.errs)-1].Error()
}

func (e *CompoundError) Errors() []error {
	return e.errs
}

func (e *CompoundError) Unwrap() error {
	return e.errs[len(e.errs)-1]
}

/*
Closes all given objects, even if some of them fail. If priorErr is
not nil it is returned, otherwise the last close error is returned.
*/
func CloseWhileHandlingError(priorErr error, objects ...io.Closer) error {
	err := Close(objects...)
	if priorErr != nil {
		return priorErr
	}
	return err
}

// Closes all given objects and ignores any error.
func CloseWhileSuppressingError(objects ...io.Closer) {
	for _, object := range objects {
		safeClose(object)
	}
}

/*
Closes all given objects. Every object gets a chance to close; the
last error seen is returned after all of them were visited. Nil
objects are ignored.
*/
func Close(objects ...io.Closer) error {
	var errs []error
	for _, object := range objects {
		if err := safeClose(object); err != nil {
			errs = append(errs, err)
		}
	}
	return JoinErrors(errs...)
}

// Returns nil for no errors, the error itself for one, and a
// CompoundError otherwise. Nil entries are dropped.
func JoinErrors(errs ...error) error {
	var kept []error
	for _, err := range errs {
		if err != nil {
			kept = append(kept, err)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	default:
		return &CompoundError{kept}
	}
}

func safeClose(obj io.Closer) error {
	if obj == nil || isNilCloser(obj) {
		return nil
	}
	return obj.Close()
}

// typed nil pointers wrapped in io.Closer are skipped as well
func isNilCloser(obj io.Closer) bool {
	v := reflect.ValueOf(obj)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

type FileDeleter interface {
	DeleteFile(name string) error
}

/*
Deletes all given files, suppressing all thrown errors.

Note that the files should not be nil.
*/
func DeleteFilesIgnoringErrors(dir FileDeleter, files ...string) {
	for _, name := range files {
		dir.DeleteFile(name) // ignore error
	}
}
