package store

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompoundFileRoundTrip(t *testing.T) {
	dir := NewRAMDirectory()
	contents := map[string][]byte{
		"_1.fnm": []byte("fields"),
		"_1.frq": make([]byte, 4000),
		"_1.prx": {},
		"_1.tis": []byte("last entry takes the rest of the stream"),
	}
	for i := range contents["_1.frq"] {
		contents["_1.frq"][i] = byte(i * 7)
	}
	order := []string{"_1.fnm", "_1.frq", "_1.prx", "_1.tis"}

	w := NewCompoundFileWriter(dir, "_1.cfs")
	for _, name := range order {
		writeFile(t, dir, name, contents[name])
		require.NoError(t, w.AddFile(name))
	}
	assert.True(t, errors.Is(w.AddFile("_1.fnm"), ErrIllegalState))
	require.NoError(t, w.Close())
	assert.True(t, errors.Is(w.AddFile("_1.tii"), ErrIllegalState))

	cfr, err := NewCompoundFileReader(dir, "_1.cfs", IO_CONTEXT_READ)
	require.NoError(t, err)
	defer cfr.Close()

	names, err := cfr.ListAll()
	require.NoError(t, err)
	assert.Equal(t, order, names)
	for _, name := range order {
		n, err := cfr.FileLength(name)
		require.NoError(t, err)
		assertEquals(t, n, int64(len(contents[name])))
		assert.Equal(t, contents[name], readFileAllowEmpty(t, cfr, name), name)
	}

	_, err = cfr.OpenInput("_1.del", IO_CONTEXT_READ)
	assert.True(t, errors.Is(err, ErrNoSuchFile))
	assert.True(t, errors.Is(cfr.DeleteFile("_1.fnm"), ErrUnsupported))
	assert.True(t, errors.Is(cfr.RenameFile("_1.fnm", "x"), ErrUnsupported))
	_, err = cfr.CreateOutput("x", IO_CONTEXT_DEFAULT)
	assert.True(t, errors.Is(err, ErrUnsupported))
	_, err = cfr.MakeLock("write.lock").Obtain()
	assert.True(t, errors.Is(err, ErrUnsupported))
}

func readFileAllowEmpty(t *testing.T, dir Directory, name string) []byte {
	in, err := dir.OpenInput(name, IO_CONTEXT_READ)
	require.NoError(t, err)
	defer in.Close()
	buf := make([]byte, in.Length())
	if len(buf) > 0 {
		require.NoError(t, in.ReadBytes(buf))
	}
	_, err = in.ReadByte()
	assert.True(t, errors.Is(err, ErrReadPastEOF), "reading past the end of %v", name)
	return buf
}

func TestCompoundFileEmpty(t *testing.T) {
	w := NewCompoundFileWriter(NewRAMDirectory(), "_2.cfs")
	assert.True(t, errors.Is(w.Close(), ErrIllegalState))
}

func TestCompoundConcurrentViews(t *testing.T) {
	dir := NewRAMDirectory()
	w := NewCompoundFileWriter(dir, "_3.cfs")
	for i := 0; i < 4; i++ {
		data := make([]byte, 3000)
		for j := range data {
			data[j] = byte(i)
		}
		name := fmt.Sprintf("_3.f%v", i)
		writeFile(t, dir, name, data)
		require.NoError(t, w.AddFile(name))
	}
	require.NoError(t, w.Close())

	cfr, err := NewCompoundFileReader(dir, "_3.cfs", IO_CONTEXT_READ)
	require.NoError(t, err)
	defer cfr.Close()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		in, err := cfr.OpenInput(fmt.Sprintf("_3.f%v", i), IO_CONTEXT_READ)
		require.NoError(t, err)
		wg.Add(1)
		go func(i int, in IndexInput) {
			defer wg.Done()
			for k := 0; k < 3000; k++ {
				b, err := in.ReadByte()
				if err != nil || b != byte(i) {
					t.Errorf("view %v byte %v: %v, %v", i, k, b, err)
					return
				}
			}
		}(i, in)
	}
	wg.Wait()
}
