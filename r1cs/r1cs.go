// Package r1cs holds rank-1 constraint systems: ordered sequences of
// constraints ⟨A,z⟩·⟨B,z⟩ = ⟨C,z⟩ over the extended assignment
// z = (1, input ‖ witness). Wire 0 is the constant one; user variables are
// numbered from 1 and the first NumInputs of them are the public input.
package r1cs

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/pkg/errors"
)

// Term is one coefficient of a linear combination
type Term struct {
	Variable uint64 // wire index, 0 is the constant one wire
	Coeff    fr.Element
}

// LinearCombination is a sparse Fr-vector over the wires
type LinearCombination []Term

// Constraint enforces ⟨A,z⟩·⟨B,z⟩ = ⟨C,z⟩
type Constraint struct {
	A, B, C LinearCombination
}

// ConstraintSource abstracts where constraints come from: an in-memory
// System or a disk-backed stream. The generator and the prover only consume
// this interface.
type ConstraintSource interface {
	NumVariables() int
	NumInputs() int
	NumConstraints() int

	// ForEachConstraint visits the constraints in order. Iteration stops on
	// the first error, which is returned.
	ForEachConstraint(fn func(c *Constraint) error) error
}

// System is the in-memory constraint system
type System struct {
	Constraints []Constraint

	nbVariables int
	nbInputs    int
}

// New returns an empty system whose first nbInputs variables are public
func New(nbInputs int) *System {
	return &System{nbInputs: nbInputs, nbVariables: nbInputs}
}

// AddConstraint appends ⟨a,z⟩·⟨b,z⟩ = ⟨c,z⟩ and grows the variable count to
// cover every wire the terms mention
func (s *System) AddConstraint(a, b, c LinearCombination) {
	s.Constraints = append(s.Constraints, Constraint{A: a, B: b, C: c})
	for _, lc := range [3]LinearCombination{a, b, c} {
		for _, t := range lc {
			if int(t.Variable) > s.nbVariables {
				s.nbVariables = int(t.Variable)
			}
		}
	}
}

func (s *System) NumVariables() int   { return s.nbVariables }
func (s *System) NumInputs() int      { return s.nbInputs }
func (s *System) NumConstraints() int { return len(s.Constraints) }

// ForEachConstraint implements ConstraintSource
func (s *System) ForEachConstraint(fn func(c *Constraint) error) error {
	for i := range s.Constraints {
		if err := fn(&s.Constraints[i]); err != nil {
			return err
		}
	}
	return nil
}

// Validate fails on systems the pipeline cannot process: no constraints,
// more inputs than variables, or terms referencing out-of-range wires
func Validate(src ConstraintSource) error {
	if src.NumConstraints() == 0 {
		return errors.New("r1cs: empty constraint system")
	}
	if src.NumInputs() > src.NumVariables() {
		return errors.Errorf("r1cs: %d inputs for %d variables", src.NumInputs(), src.NumVariables())
	}
	nbVars := uint64(src.NumVariables())
	k := 0
	return src.ForEachConstraint(func(c *Constraint) error {
		for _, lc := range [3]LinearCombination{c.A, c.B, c.C} {
			for _, t := range lc {
				if t.Variable > nbVars {
					return errors.Errorf("r1cs: constraint %d references wire %d, have %d variables", k, t.Variable, nbVars)
				}
			}
		}
		k++
		return nil
	})
}

// SwapABIfBeneficial swaps the A and B rows of every constraint when B has
// more terms than A. The B row drives the G2 side of the keypair, where
// group operations are the most expensive, so the sparser row should sit
// there. Swapping rows of a rank-1 constraint preserves its solutions.
func (s *System) SwapABIfBeneficial() {
	costA, costB := 0, 0
	for i := range s.Constraints {
		costA += len(s.Constraints[i].A)
		costB += len(s.Constraints[i].B)
	}
	if costB <= costA {
		return
	}
	for i := range s.Constraints {
		s.Constraints[i].A, s.Constraints[i].B = s.Constraints[i].B, s.Constraints[i].A
	}
}

// IsSatisfied evaluates every constraint against the witness
func IsSatisfied(src ConstraintSource, w Witness) (bool, error) {
	if len(w) != src.NumVariables() {
		return false, errors.Errorf("r1cs: witness size %d, expected %d", len(w), src.NumVariables())
	}
	ok := true
	err := src.ForEachConstraint(func(c *Constraint) error {
		var a, b, prod fr.Element
		a = w.Eval(c.A)
		b = w.Eval(c.B)
		prod.Mul(&a, &b)
		cv := w.Eval(c.C)
		if !prod.Equal(&cv) {
			ok = false
		}
		return nil
	})
	return ok, err
}
