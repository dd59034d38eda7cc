package r1cs

import "github.com/consensys/gnark-crypto/ecc/bn254/fr"

// Witness assigns a value to every user variable; Witness[i] is the value
// of wire i+1. The first NumInputs entries are the public input.
type Witness []fr.Element

// Assign sets the value of the given wire (numbered from 1)
func (w Witness) Assign(variable uint64, v fr.Element) {
	w[variable-1] = v
}

// AssignUint64 sets the value of the given wire from a small integer
func (w Witness) AssignUint64(variable uint64, v uint64) {
	w[variable-1].SetUint64(v)
}

// PublicInput returns the public prefix of the witness
func (w Witness) PublicInput(nbInputs int) []fr.Element {
	return w[:nbInputs]
}

// Eval computes ⟨lc, z⟩ for z = (1, w)
func (w Witness) Eval(lc LinearCombination) fr.Element {
	var res, tmp fr.Element
	for _, t := range lc {
		if t.Variable == 0 {
			res.Add(&res, &t.Coeff)
			continue
		}
		tmp.Mul(&t.Coeff, &w[t.Variable-1])
		res.Add(&res, &tmp)
	}
	return res
}
