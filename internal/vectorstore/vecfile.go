package vectorstore

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
)

// Vector file layout, little endian:
//
//	magic   [4]byte "TDVX"
//	version uint32
//	dim     uint32
//	count   uint64
//	rows    count * dim float32
var vecMagic = [4]byte{'T', 'D', 'V', 'X'}

const vecVersion uint32 = 1

func writeVectorFile(path string, dim int, rows [][]float32) error {
	return writeAtomic(path, func(w io.Writer) error {
		bw := bufio.NewWriter(w)
		header := make([]byte, 20)
		copy(header[0:4], vecMagic[:])
		binary.LittleEndian.PutUint32(header[4:8], vecVersion)
		binary.LittleEndian.PutUint32(header[8:12], uint32(dim))
		binary.LittleEndian.PutUint64(header[12:20], uint64(len(rows)))
		if _, err := bw.Write(header); err != nil {
			return err
		}
		for i, row := range rows {
			if len(row) != dim {
				return fmt.Errorf("row %d has width %d, want %d", i, len(row), dim)
			}
			blob, err := sqlite_vec.SerializeFloat32(row)
			if err != nil {
				return fmt.Errorf("serialize row %d: %w", i, err)
			}
			if _, err := bw.Write(blob); err != nil {
				return err
			}
		}
		return bw.Flush()
	})
}

func readVectorFile(path string) (int, [][]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, nil, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return 0, nil, err
	}
	br := bufio.NewReader(f)

	header := make([]byte, 20)
	if _, err := io.ReadFull(br, header); err != nil {
		return 0, nil, fmt.Errorf("vector file: truncated header: %w", err)
	}
	if [4]byte(header[0:4]) != vecMagic {
		return 0, nil, errors.New("vector file: bad magic")
	}
	if v := binary.LittleEndian.Uint32(header[4:8]); v != vecVersion {
		return 0, nil, fmt.Errorf("vector file: unsupported version %d", v)
	}
	dim := int(binary.LittleEndian.Uint32(header[8:12]))
	count := binary.LittleEndian.Uint64(header[12:20])
	if count > 0 && dim == 0 {
		return 0, nil, errors.New("vector file: zero dimension")
	}
	body := uint64(info.Size() - int64(len(header)))
	if dim > 0 && (count > body/(4*uint64(dim)) || count*4*uint64(dim) != body) {
		return 0, nil, fmt.Errorf("vector file: header claims %d rows of width %d, body has %d bytes", count, dim, body)
	}
	if dim == 0 && body != 0 {
		return 0, nil, fmt.Errorf("vector file: %d trailing bytes", body)
	}

	if count == 0 {
		return dim, nil, nil
	}

	rows := make([][]float32, 0, count)
	buf := make([]byte, 4*dim)
	for i := uint64(0); i < count; i++ {
		if _, err := io.ReadFull(br, buf); err != nil {
			return 0, nil, fmt.Errorf("vector file: truncated row %d: %w", i, err)
		}
		row := make([]float32, dim)
		for j := range row {
			row[j] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*j:]))
		}
		rows = append(rows, row)
	}
	return dim, rows, nil
}

// writeAtomic writes to a sibling temp file and renames it over path.
func writeAtomic(path string, write func(w io.Writer) error) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
