package ppzk

import (
	"encoding/binary"
	"io"

	curve "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

// Keys and proofs are written field by field in declared order, points in
// the curve library's canonical compressed encoding. Reads are total: any
// sub-read failure clears the aggregate object before the error returns.

// WriteTo serializes the proving key
func (pk *ProvingKey) WriteTo(w io.Writer) (int64, error) {
	var n int64
	m, err := writeSparseG1(w, &pk.A)
	n += m
	if err != nil {
		return n, err
	}
	m, err = writeSparseG2(w, &pk.B)
	n += m
	if err != nil {
		return n, err
	}
	m, err = writeSparseG1(w, &pk.C)
	n += m
	if err != nil {
		return n, err
	}

	enc := curve.NewEncoder(w)
	if err := enc.Encode(pk.H); err != nil {
		return n + enc.BytesWritten(), err
	}
	if err := enc.Encode(pk.K); err != nil {
		return n + enc.BytesWritten(), err
	}
	return n + enc.BytesWritten(), nil
}

// ReadFrom deserializes the proving key, clearing it on failure
func (pk *ProvingKey) ReadFrom(r io.Reader) (n int64, err error) {
	defer func() {
		if err != nil {
			*pk = ProvingKey{}
		}
	}()

	var m int64
	if m, err = readSparseG1(r, &pk.A); err != nil {
		return n + m, err
	}
	n += m
	if m, err = readSparseG2(r, &pk.B); err != nil {
		return n + m, err
	}
	n += m
	if m, err = readSparseG1(r, &pk.C); err != nil {
		return n + m, err
	}
	n += m

	dec := curve.NewDecoder(r)
	if err = dec.Decode(&pk.H); err != nil {
		return n + dec.BytesRead(), err
	}
	if err = dec.Decode(&pk.K); err != nil {
		return n + dec.BytesRead(), err
	}
	return n + dec.BytesRead(), nil
}

// WriteTo serializes the verifying key
func (vk *VerifyingKey) WriteTo(w io.Writer) (int64, error) {
	enc := curve.NewEncoder(w)
	toEncode := []interface{}{
		&vk.AlphaAG2,
		&vk.AlphaBG1,
		&vk.AlphaCG2,
		&vk.GammaG2,
		&vk.GammaBetaG1,
		&vk.GammaBetaG2,
		&vk.RCZG2,
		&vk.IC.Base,
		vk.IC.Encoded,
	}
	for _, v := range toEncode {
		if err := enc.Encode(v); err != nil {
			return enc.BytesWritten(), err
		}
	}
	return enc.BytesWritten(), nil
}

// ReadFrom deserializes the verifying key, clearing it on failure
func (vk *VerifyingKey) ReadFrom(r io.Reader) (int64, error) {
	dec := curve.NewDecoder(r)
	toDecode := []interface{}{
		&vk.AlphaAG2,
		&vk.AlphaBG1,
		&vk.AlphaCG2,
		&vk.GammaG2,
		&vk.GammaBetaG1,
		&vk.GammaBetaG2,
		&vk.RCZG2,
		&vk.IC.Base,
		&vk.IC.Encoded,
	}
	for _, v := range toDecode {
		if err := dec.Decode(v); err != nil {
			*vk = VerifyingKey{}
			return dec.BytesRead(), err
		}
	}
	return dec.BytesRead(), nil
}

// WriteTo serializes the proof
func (p *Proof) WriteTo(w io.Writer) (int64, error) {
	enc := curve.NewEncoder(w)
	toEncode := []interface{}{
		&p.A.P, &p.A.AlphaP,
		&p.B.P, &p.B.AlphaP,
		&p.C.P, &p.C.AlphaP,
		&p.H,
		&p.K,
	}
	for _, v := range toEncode {
		if err := enc.Encode(v); err != nil {
			return enc.BytesWritten(), err
		}
	}
	return enc.BytesWritten(), nil
}

// ReadFrom deserializes the proof, clearing it on failure
func (p *Proof) ReadFrom(r io.Reader) (int64, error) {
	dec := curve.NewDecoder(r)
	toDecode := []interface{}{
		&p.A.P, &p.A.AlphaP,
		&p.B.P, &p.B.AlphaP,
		&p.C.P, &p.C.AlphaP,
		&p.H,
		&p.K,
	}
	for _, v := range toDecode {
		if err := dec.Decode(v); err != nil {
			*p = Proof{}
			return dec.BytesRead(), err
		}
	}
	return dec.BytesRead(), nil
}

// WriteTo serializes the keypair, proving key first
func (kp *Keypair) WriteTo(w io.Writer) (int64, error) {
	n, err := kp.PK.WriteTo(w)
	if err != nil {
		return n, err
	}
	m, err := kp.VK.WriteTo(w)
	return n + m, err
}

// ReadFrom deserializes the keypair, clearing it on failure
func (kp *Keypair) ReadFrom(r io.Reader) (int64, error) {
	n, err := kp.PK.ReadFrom(r)
	if err != nil {
		*kp = Keypair{}
		return n, err
	}
	m, err := kp.VK.ReadFrom(r)
	if err != nil {
		*kp = Keypair{}
	}
	return n + m, err
}

func writeSparseG1(w io.Writer, v *SparseVectorG1) (int64, error) {
	var n int64
	if err := binary.Write(w, binary.BigEndian, v.Size); err != nil {
		return n, errors.Wrap(err, "ppzk: write sparse size")
	}
	n += 8
	if err := binary.Write(w, binary.BigEndian, uint64(len(v.Indices))); err != nil {
		return n, errors.Wrap(err, "ppzk: write sparse count")
	}
	n += 8
	if err := binary.Write(w, binary.BigEndian, v.Indices); err != nil {
		return n, errors.Wrap(err, "ppzk: write sparse indices")
	}
	n += int64(8 * len(v.Indices))

	enc := curve.NewEncoder(w)
	if err := enc.Encode(v.P); err != nil {
		return n + enc.BytesWritten(), err
	}
	if err := enc.Encode(v.AlphaP); err != nil {
		return n + enc.BytesWritten(), err
	}
	return n + enc.BytesWritten(), nil
}

func readSparseG1(r io.Reader, v *SparseVectorG1) (int64, error) {
	var n int64
	if err := binary.Read(r, binary.BigEndian, &v.Size); err != nil {
		return n, errors.Wrap(err, "ppzk: read sparse size")
	}
	n += 8
	var count uint64
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return n, errors.Wrap(err, "ppzk: read sparse count")
	}
	n += 8
	if count > v.Size {
		return n, errors.New("ppzk: sparse vector denser than its size")
	}
	v.Indices = make([]uint64, count)
	if err := binary.Read(r, binary.BigEndian, v.Indices); err != nil {
		return n, errors.Wrap(err, "ppzk: read sparse indices")
	}
	n += int64(8 * count)

	dec := curve.NewDecoder(r)
	if err := dec.Decode(&v.P); err != nil {
		return n + dec.BytesRead(), err
	}
	if err := dec.Decode(&v.AlphaP); err != nil {
		return n + dec.BytesRead(), err
	}
	n += dec.BytesRead()
	if uint64(len(v.P)) != count || uint64(len(v.AlphaP)) != count {
		return n, errors.New("ppzk: sparse vector length mismatch")
	}
	return n, nil
}

func writeSparseG2(w io.Writer, v *SparseVectorG2) (int64, error) {
	var n int64
	if err := binary.Write(w, binary.BigEndian, v.Size); err != nil {
		return n, errors.Wrap(err, "ppzk: write sparse size")
	}
	n += 8
	if err := binary.Write(w, binary.BigEndian, uint64(len(v.Indices))); err != nil {
		return n, errors.Wrap(err, "ppzk: write sparse count")
	}
	n += 8
	if err := binary.Write(w, binary.BigEndian, v.Indices); err != nil {
		return n, errors.Wrap(err, "ppzk: write sparse indices")
	}
	n += int64(8 * len(v.Indices))

	enc := curve.NewEncoder(w)
	if err := enc.Encode(v.P); err != nil {
		return n + enc.BytesWritten(), err
	}
	if err := enc.Encode(v.AlphaP); err != nil {
		return n + enc.BytesWritten(), err
	}
	return n + enc.BytesWritten(), nil
}

func readSparseG2(r io.Reader, v *SparseVectorG2) (int64, error) {
	var n int64
	if err := binary.Read(r, binary.BigEndian, &v.Size); err != nil {
		return n, errors.Wrap(err, "ppzk: read sparse size")
	}
	n += 8
	var count uint64
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return n, errors.Wrap(err, "ppzk: read sparse count")
	}
	n += 8
	if count > v.Size {
		return n, errors.New("ppzk: sparse vector denser than its size")
	}
	v.Indices = make([]uint64, count)
	if err := binary.Read(r, binary.BigEndian, v.Indices); err != nil {
		return n, errors.Wrap(err, "ppzk: read sparse indices")
	}
	n += int64(8 * count)

	dec := curve.NewDecoder(r)
	if err := dec.Decode(&v.P); err != nil {
		return n + dec.BytesRead(), err
	}
	if err := dec.Decode(&v.AlphaP); err != nil {
		return n + dec.BytesRead(), err
	}
	n += dec.BytesRead()
	if uint64(len(v.P)) != count || uint64(len(v.AlphaP)) != count {
		return n, errors.New("ppzk: sparse vector length mismatch")
	}
	return n, nil
}

// fingerprint hashes the canonical encoding with BLAKE2b-256
func fingerprint(wt io.WriterTo) ([32]byte, error) {
	var digest [32]byte
	h, err := blake2b.New256(nil)
	if err != nil {
		return digest, err
	}
	if _, err := wt.WriteTo(h); err != nil {
		return digest, err
	}
	copy(digest[:], h.Sum(nil))
	return digest, nil
}

// Fingerprint returns the BLAKE2b-256 digest of the encoded proving key
func (pk *ProvingKey) Fingerprint() ([32]byte, error) { return fingerprint(pk) }

// Fingerprint returns the BLAKE2b-256 digest of the encoded verifying key
func (vk *VerifyingKey) Fingerprint() ([32]byte, error) { return fingerprint(vk) }

// Fingerprint returns the BLAKE2b-256 digest of the encoded proof
func (p *Proof) Fingerprint() ([32]byte, error) { return fingerprint(p) }
