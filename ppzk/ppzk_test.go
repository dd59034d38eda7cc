package ppzk_test

import (
	"math/big"
	"testing"

	curve "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devourillusion/snarklib/examples"
	"github.com/devourillusion/snarklib/logger"
	"github.com/devourillusion/snarklib/ppzk"
	"github.com/devourillusion/snarklib/progress"
	"github.com/devourillusion/snarklib/r1cs"
)

func init() {
	logger.Disable()
}

// run generates a keypair, proves and strong-verifies in one go
func run(t *testing.T, c examples.Circuit, input []fr.Element) bool {
	t.Helper()
	kp, err := ppzk.Setup(c.System)
	require.NoError(t, err)

	proof, err := ppzk.Prove(c.System, &kp.PK, c.Witness)
	require.NoError(t, err)

	ok, err := ppzk.StrongVerifyKey(&kp.VK, input, proof)
	require.NoError(t, err)
	return ok
}

func TestANDGate(t *testing.T) {
	for _, booleanity := range []bool{false, true} {
		c := examples.AND(booleanity)
		assert.True(t, run(t, c, c.Input), "booleanity=%v", booleanity)
	}
}

func TestANDGateWrongInput(t *testing.T) {
	c := examples.AND(true)
	kp, err := ppzk.Setup(c.System)
	require.NoError(t, err)

	proof, err := ppzk.Prove(c.System, &kp.PK, c.Witness)
	require.NoError(t, err)

	// public input (1, 0) disagrees with the witness prefix (1, 1)
	wrong := append([]fr.Element(nil), c.Input...)
	wrong[1].SetZero()
	ok, err := ppzk.StrongVerifyKey(&kp.VK, wrong, proof)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestXORGate(t *testing.T) {
	c := examples.XOR(false)
	assert.True(t, run(t, c, c.Input))
}

func TestORGate(t *testing.T) {
	c := examples.OR(true)
	assert.True(t, run(t, c, c.Input))
}

func TestComplementGate(t *testing.T) {
	c := examples.NOT()
	assert.True(t, run(t, c, c.Input))
}

func TestSoundnessCircuit(t *testing.T) {
	consistent := examples.Soundness(2, 3, 4)
	kp, err := ppzk.Setup(consistent.System)
	require.NoError(t, err)

	proof, err := ppzk.Prove(consistent.System, &kp.PK, consistent.Witness)
	require.NoError(t, err)

	// consistent public input: accept
	ok, err := ppzk.StrongVerifyKey(&kp.VK, consistent.Input, proof)
	require.NoError(t, err)
	assert.True(t, ok)

	// tampered d4 ≠ d1²·d2·d3: reject
	tampered := examples.SoundnessTampered(2, 3, 4, 999)
	ok, err = ppzk.StrongVerifyKey(&kp.VK, tampered.Input, proof)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStrongVerifyInputLength(t *testing.T) {
	c := examples.AND(false)
	kp, err := ppzk.Setup(c.System)
	require.NoError(t, err)

	proof, err := ppzk.Prove(c.System, &kp.PK, c.Witness)
	require.NoError(t, err)

	pvk := kp.VK.Precompute()
	assert.Equal(t, 2, pvk.InputSize())

	ok, err := ppzk.StrongVerify(pvk, c.Input[:1], proof)
	require.NoError(t, err)
	assert.False(t, ok, "short input must be rejected immediately")

	ok, err = ppzk.StrongVerify(pvk, append(c.Input, c.Input[0]), proof)
	require.NoError(t, err)
	assert.False(t, ok, "long input must be rejected immediately")

	// the weak mode accepts the full input too
	ok, err = ppzk.WeakVerify(pvk, c.Input, proof)
	require.NoError(t, err)
	assert.True(t, ok)

	// with a partial input the remaining IC terms stay unaccumulated and
	// the QAP check fails
	ok, err = ppzk.WeakVerify(pvk, c.Input[:1], proof)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProofTampering(t *testing.T) {
	c := examples.Soundness(2, 3, 4)
	kp, err := ppzk.Setup(c.System)
	require.NoError(t, err)

	honest, err := ppzk.Prove(c.System, &kp.PK, c.Witness)
	require.NoError(t, err)
	pvk := kp.VK.Precompute()

	ok, err := ppzk.StrongVerify(pvk, c.Input, honest)
	require.NoError(t, err)
	require.True(t, ok)

	// a foreign G1/G2 element unrelated to the proof
	var foreignG1 curve.G1Affine
	var foreignG2 curve.G2Affine
	{
		var s fr.Element
		s.SetUint64(12345)
		var bi big.Int
		s.BigInt(&bi)
		foreignG1.ScalarMultiplicationBase(&bi)
		foreignG2.ScalarMultiplicationBase(&bi)
	}

	mutations := []struct {
		name   string
		mutate func(p *ppzk.Proof)
	}{
		{"A.P zero", func(p *ppzk.Proof) { p.A.P = curve.G1Affine{} }},
		{"A.AlphaP zero", func(p *ppzk.Proof) { p.A.AlphaP = curve.G1Affine{} }},
		{"B.P zero", func(p *ppzk.Proof) { p.B.P = curve.G2Affine{} }},
		{"B.AlphaP zero", func(p *ppzk.Proof) { p.B.AlphaP = curve.G1Affine{} }},
		{"C.P zero", func(p *ppzk.Proof) { p.C.P = curve.G1Affine{} }},
		{"C.AlphaP zero", func(p *ppzk.Proof) { p.C.AlphaP = curve.G1Affine{} }},
		{"H zero", func(p *ppzk.Proof) { p.H = curve.G1Affine{} }},
		{"K zero", func(p *ppzk.Proof) { p.K = curve.G1Affine{} }},
		{"A.P foreign", func(p *ppzk.Proof) { p.A.P = foreignG1 }},
		{"B.P foreign", func(p *ppzk.Proof) { p.B.P = foreignG2 }},
		{"C.AlphaP foreign", func(p *ppzk.Proof) { p.C.AlphaP = foreignG1 }},
		{"H foreign", func(p *ppzk.Proof) { p.H = foreignG1 }},
		{"K foreign", func(p *ppzk.Proof) { p.K = foreignG1 }},
	}
	for _, m := range mutations {
		tampered := *honest
		m.mutate(&tampered)
		ok, err := ppzk.StrongVerify(pvk, c.Input, &tampered)
		require.NoError(t, err, m.name)
		assert.False(t, ok, m.name)
	}
}

func TestICQueryInvariants(t *testing.T) {
	c := examples.Soundness(2, 3, 4)
	kp, err := ppzk.Setup(c.System)
	require.NoError(t, err)

	nbInputs := c.System.NumInputs()
	assert.Equal(t, nbInputs, kp.VK.IC.InputSize())

	// the folded A query slots 3..3+nbInputs are gone from the sparse
	// encoding
	for i := uint64(3); i <= uint64(3+nbInputs); i++ {
		p, alphaP := kp.PK.A.Get(i)
		assert.True(t, p.IsInfinity(), "A query slot %d", i)
		assert.True(t, alphaP.IsInfinity(), "A query slot %d", i)
	}
}

func TestReserveTune(t *testing.T) {
	c := examples.Soundness(2, 3, 4)
	kp, err := ppzk.Setup(c.System)
	require.NoError(t, err)

	proof, err := ppzk.Prove(c.System, &kp.PK, c.Witness, ppzk.WithReserveTune(2))
	require.NoError(t, err)

	ok, err := ppzk.StrongVerifyKey(&kp.VK, c.Input, proof)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDiskSystemPipeline(t *testing.T) {
	mem := examples.Soundness(2, 3, 4)

	path := t.TempDir() + "/soundness.bin"
	disk, err := r1cs.Create(path, mem.System.NumInputs())
	require.NoError(t, err)
	for i := range mem.System.Constraints {
		cons := mem.System.Constraints[i]
		require.NoError(t, disk.AddConstraint(cons.A, cons.B, cons.C))
	}
	require.NoError(t, disk.Finalize())

	kp, err := ppzk.Setup(disk)
	require.NoError(t, err)

	proof, err := ppzk.Prove(disk, &kp.PK, mem.Witness)
	require.NoError(t, err)

	ok, err := ppzk.StrongVerifyKey(&kp.VK, mem.Input, proof)
	require.NoError(t, err)
	assert.True(t, ok)
}

// stopAfter cancels through the observer after n major steps
type stopAfter struct {
	n, seen int
}

func (s *stopAfter) MajorSteps(int) {}
func (s *stopAfter) Major() bool {
	s.seen++
	return s.seen <= s.n
}
func (s *stopAfter) Minor() {}

func TestSetupCancellation(t *testing.T) {
	c := examples.AND(true)
	_, err := ppzk.Setup(c.System, ppzk.WithObserver(&stopAfter{n: 2}))
	assert.ErrorIs(t, err, progress.ErrAborted)
}

func TestProveCancellation(t *testing.T) {
	c := examples.AND(true)
	kp, err := ppzk.Setup(c.System)
	require.NoError(t, err)

	_, err = ppzk.Prove(c.System, &kp.PK, c.Witness, ppzk.WithObserver(&stopAfter{n: 1}))
	assert.ErrorIs(t, err, progress.ErrAborted)
}

func TestProveRejectsMismatchedKey(t *testing.T) {
	c := examples.AND(false)
	other := examples.Soundness(2, 3, 4)

	kp, err := ppzk.Setup(other.System)
	require.NoError(t, err)

	_, err = ppzk.Prove(c.System, &kp.PK, c.Witness)
	assert.Error(t, err)
}
