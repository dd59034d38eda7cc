package r1cs

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/pkg/errors"
)

const diskHeaderSize = 3 * 8 // nbConstraints, nbVariables, nbInputs

// DiskSystem is a constraint system resident in a file. Constraints are
// appended once, finalized, and then streamed in order on every pass; only
// one constraint lives in memory at a time. It satisfies ConstraintSource,
// so the generator and the prover run on it unmodified.
type DiskSystem struct {
	path string

	nbConstraints int
	nbVariables   int
	nbInputs      int

	f *os.File
	w *bufio.Writer
}

// Create starts a new disk system at path. Constraints are appended with
// AddConstraint; Finalize seals the file.
func Create(path string, nbInputs int) (*DiskSystem, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "r1cs: create disk system")
	}
	// header space, filled by Finalize
	if _, err := f.Write(make([]byte, diskHeaderSize)); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "r1cs: reserve header")
	}
	return &DiskSystem{
		path:        path,
		nbInputs:    nbInputs,
		nbVariables: nbInputs,
		f:           f,
		w:           bufio.NewWriter(f),
	}, nil
}

// AddConstraint appends ⟨a,z⟩·⟨b,z⟩ = ⟨c,z⟩ to the stream
func (d *DiskSystem) AddConstraint(a, b, c LinearCombination) error {
	if d.w == nil {
		return errors.New("r1cs: disk system is finalized")
	}
	for _, lc := range [3]LinearCombination{a, b, c} {
		if err := writeLC(d.w, lc); err != nil {
			return err
		}
		for _, t := range lc {
			if int(t.Variable) > d.nbVariables {
				d.nbVariables = int(t.Variable)
			}
		}
	}
	d.nbConstraints++
	return nil
}

// Finalize writes the header and closes the file. The system stays usable
// as a read-only ConstraintSource.
func (d *DiskSystem) Finalize() error {
	if d.w == nil {
		return errors.New("r1cs: disk system already finalized")
	}
	if err := d.w.Flush(); err != nil {
		return errors.Wrap(err, "r1cs: flush disk system")
	}
	var header [diskHeaderSize]byte
	binary.BigEndian.PutUint64(header[0:], uint64(d.nbConstraints))
	binary.BigEndian.PutUint64(header[8:], uint64(d.nbVariables))
	binary.BigEndian.PutUint64(header[16:], uint64(d.nbInputs))
	if _, err := d.f.WriteAt(header[:], 0); err != nil {
		return errors.Wrap(err, "r1cs: write header")
	}
	err := d.f.Close()
	d.f, d.w = nil, nil
	return errors.Wrap(err, "r1cs: close disk system")
}

// Open loads the header of a finalized disk system
func Open(path string) (*DiskSystem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "r1cs: open disk system")
	}
	defer f.Close()

	var header [diskHeaderSize]byte
	if _, err := io.ReadFull(f, header[:]); err != nil {
		return nil, errors.Wrap(err, "r1cs: read header")
	}
	return &DiskSystem{
		path:          path,
		nbConstraints: int(binary.BigEndian.Uint64(header[0:])),
		nbVariables:   int(binary.BigEndian.Uint64(header[8:])),
		nbInputs:      int(binary.BigEndian.Uint64(header[16:])),
	}, nil
}

func (d *DiskSystem) NumVariables() int   { return d.nbVariables }
func (d *DiskSystem) NumInputs() int      { return d.nbInputs }
func (d *DiskSystem) NumConstraints() int { return d.nbConstraints }

// ForEachConstraint streams the constraints from disk, one at a time. Each
// call is an independent pass over the file.
func (d *DiskSystem) ForEachConstraint(fn func(c *Constraint) error) error {
	if d.w != nil {
		return errors.New("r1cs: disk system not finalized")
	}
	f, err := os.Open(d.path)
	if err != nil {
		return errors.Wrap(err, "r1cs: open disk system")
	}
	defer f.Close()
	if _, err := f.Seek(diskHeaderSize, io.SeekStart); err != nil {
		return errors.Wrap(err, "r1cs: seek past header")
	}

	r := bufio.NewReader(f)
	var c Constraint
	for k := 0; k < d.nbConstraints; k++ {
		if c.A, err = readLC(r); err != nil {
			return errors.Wrapf(err, "r1cs: constraint %d", k)
		}
		if c.B, err = readLC(r); err != nil {
			return errors.Wrapf(err, "r1cs: constraint %d", k)
		}
		if c.C, err = readLC(r); err != nil {
			return errors.Wrapf(err, "r1cs: constraint %d", k)
		}
		if err := fn(&c); err != nil {
			return err
		}
	}
	return nil
}

func writeLC(w io.Writer, lc LinearCombination) error {
	if err := binary.Write(w, binary.BigEndian, uint32(len(lc))); err != nil {
		return errors.Wrap(err, "r1cs: write term count")
	}
	for _, t := range lc {
		if err := binary.Write(w, binary.BigEndian, t.Variable); err != nil {
			return errors.Wrap(err, "r1cs: write variable")
		}
		b := t.Coeff.Bytes()
		if _, err := w.Write(b[:]); err != nil {
			return errors.Wrap(err, "r1cs: write coefficient")
		}
	}
	return nil
}

func readLC(r io.Reader) (LinearCombination, error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, errors.Wrap(err, "read term count")
	}
	lc := make(LinearCombination, n)
	var buf [fr.Bytes]byte
	for i := range lc {
		if err := binary.Read(r, binary.BigEndian, &lc[i].Variable); err != nil {
			return nil, errors.Wrap(err, "read variable")
		}
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, errors.Wrap(err, "read coefficient")
		}
		lc[i].Coeff.SetBytes(buf[:])
	}
	return lc, nil
}
