package vector

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Binary layouts, all little-endian:
//
//	vocabulary: magic "KTVB", n (4), then per feature: len (4), bytes, idf (8)
//	matrix:     magic "KTMX", rows (4), cols (4), then per row: nnz (4),
//	            then per entry: column (4), weight (8)
var (
	vocabularyMagic = [4]byte{'K', 'T', 'V', 'B'}
	matrixMagic     = [4]byte{'K', 'T', 'M', 'X'}
)

const (
	// maxFeatureLen bounds a single encoded feature; three ASCII words never get close.
	maxFeatureLen = 1 << 16
	// preallocLimit caps slice preallocation driven by counts read from disk.
	preallocLimit uint32 = 1 << 16
	// MaxColumns bounds the column count accepted from an encoded matrix.
	// Columns are allocated up front, so the header alone must not be able
	// to request an arbitrary amount of memory.
	MaxColumns = 1 << 24
)

// WriteVocabulary encodes v to w.
func WriteVocabulary(w io.Writer, v *Vocabulary) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(vocabularyMagic[:]); err != nil {
		return fmt.Errorf("write magic: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(v.Size())); err != nil {
		return fmt.Errorf("write feature count: %w", err)
	}
	for i, f := range v.features {
		if err := binary.Write(bw, binary.LittleEndian, uint32(len(f))); err != nil {
			return fmt.Errorf("write feature len: %w", err)
		}
		if _, err := bw.WriteString(f); err != nil {
			return fmt.Errorf("write feature: %w", err)
		}
		if err := binary.Write(bw, binary.LittleEndian, math.Float64bits(v.idf[i])); err != nil {
			return fmt.Errorf("write idf: %w", err)
		}
	}
	return bw.Flush()
}

// ReadVocabulary decodes a vocabulary written by WriteVocabulary.
func ReadVocabulary(r io.Reader) (*Vocabulary, error) {
	br := bufio.NewReader(r)
	if err := readMagic(br, vocabularyMagic); err != nil {
		return nil, err
	}
	var n uint32
	if err := binary.Read(br, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("read feature count: %w", err)
	}
	features := make([]string, 0, min(n, preallocLimit))
	idf := make([]float64, 0, min(n, preallocLimit))
	for i := uint32(0); i < n; i++ {
		var fLen uint32
		if err := binary.Read(br, binary.LittleEndian, &fLen); err != nil {
			return nil, fmt.Errorf("read feature len: %w", err)
		}
		if fLen > maxFeatureLen {
			return nil, fmt.Errorf("feature %d too long: %d bytes", i, fLen)
		}
		buf := make([]byte, fLen)
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, fmt.Errorf("read feature: %w", err)
		}
		var bits uint64
		if err := binary.Read(br, binary.LittleEndian, &bits); err != nil {
			return nil, fmt.Errorf("read idf: %w", err)
		}
		features = append(features, string(buf))
		idf = append(idf, math.Float64frombits(bits))
	}
	return NewVocabulary(features, idf)
}

// WriteMatrix encodes m to w.
func WriteMatrix(w io.Writer, m *Matrix) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(matrixMagic[:]); err != nil {
		return fmt.Errorf("write magic: %w", err)
	}
	header := [2]uint32{uint32(m.Rows()), uint32(m.Cols())}
	if err := binary.Write(bw, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	entry := make([]byte, 12)
	for _, row := range m.rows {
		if err := binary.Write(bw, binary.LittleEndian, uint32(row.Len())); err != nil {
			return fmt.Errorf("write row len: %w", err)
		}
		for k, c := range row.Indices {
			binary.LittleEndian.PutUint32(entry[:4], uint32(c))
			binary.LittleEndian.PutUint64(entry[4:], math.Float64bits(row.Values[k]))
			if _, err := bw.Write(entry); err != nil {
				return fmt.Errorf("write entry: %w", err)
			}
		}
	}
	return bw.Flush()
}

// ReadMatrix decodes a matrix written by WriteMatrix.
func ReadMatrix(r io.Reader) (*Matrix, error) {
	br := bufio.NewReader(r)
	if err := readMagic(br, matrixMagic); err != nil {
		return nil, err
	}
	var header [2]uint32
	if err := binary.Read(br, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	nRows, cols := header[0], header[1]
	if cols > MaxColumns {
		return nil, fmt.Errorf("matrix header declares %d columns, limit is %d", cols, MaxColumns)
	}
	rows := make([]SparseVector, 0, min(nRows, preallocLimit))
	entry := make([]byte, 12)
	for i := uint32(0); i < nRows; i++ {
		var nnz uint32
		if err := binary.Read(br, binary.LittleEndian, &nnz); err != nil {
			return nil, fmt.Errorf("read row len: %w", err)
		}
		if nnz > cols {
			return nil, fmt.Errorf("row %d has %d entries but only %d columns", i, nnz, cols)
		}
		row := SparseVector{
			Indices: make([]int, nnz),
			Values:  make([]float64, nnz),
		}
		for k := range row.Indices {
			if _, err := io.ReadFull(br, entry); err != nil {
				return nil, fmt.Errorf("read entry: %w", err)
			}
			row.Indices[k] = int(binary.LittleEndian.Uint32(entry[:4]))
			row.Values[k] = math.Float64frombits(binary.LittleEndian.Uint64(entry[4:]))
		}
		rows = append(rows, row)
	}
	return NewMatrix(int(cols), rows)
}

func readMagic(r io.Reader, want [4]byte) error {
	var got [4]byte
	if _, err := io.ReadFull(r, got[:]); err != nil {
		return fmt.Errorf("read magic: %w", err)
	}
	if got != want {
		return fmt.Errorf("bad magic %q, want %q", got[:], want[:])
	}
	return nil
}
