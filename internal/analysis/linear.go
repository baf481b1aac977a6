// Package analysis runs the linear-systems checks on the closed loop:
// eigenvalue stability, observability and controllability rank tests, and
// observer-error stability.
package analysis

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// RankTol is the singular-value threshold below which a direction is treated
// as degenerate by the rank tests.
const RankTol = 1e-9

// Matrices is the closed-loop state-space description
//
//	x' = A x + B r
//	y  = C x
//
// with observer gain column L. State is (moisture deviation, error integral).
type Matrices struct {
	A *mat.Dense
	B *mat.Dense
	C *mat.Dense
	L *mat.Dense
}

// NewClosedLoop assembles the matrices from the plant and loop gains. The
// moisture row folds the proportional feedback into the dynamics, which is
// what couples the observer design to the controller gains.
func NewClosedLoop(dryingRate, irrigation, kp, ki, l1, l2 float64) Matrices {
	return Matrices{
		A: mat.NewDense(2, 2, []float64{
			-(dryingRate + irrigation*kp), irrigation * ki,
			-1, 0,
		}),
		B: mat.NewDense(2, 1, []float64{irrigation, 0}),
		C: mat.NewDense(1, 2, []float64{1, 0}),
		L: mat.NewDense(2, 1, []float64{l1, l2}),
	}
}

// ObserverDynamics returns A - L*C, the observer-error system matrix.
func (m Matrices) ObserverDynamics() *mat.Dense {
	var lc, obs mat.Dense
	lc.Mul(m.L, m.C)
	obs.Sub(m.A, &lc)
	return &obs
}

// Observability returns the stacked matrix [C; C*A].
func (m Matrices) Observability() *mat.Dense {
	var ca mat.Dense
	ca.Mul(m.C, m.A)
	ob := mat.NewDense(2, 2, nil)
	ob.SetRow(0, m.C.RawRowView(0))
	ob.SetRow(1, ca.RawRowView(0))
	return ob
}

// Controllability returns the stacked matrix [B A*B].
func (m Matrices) Controllability() *mat.Dense {
	var ab mat.Dense
	ab.Mul(m.A, m.B)
	ctrb := mat.NewDense(2, 2, nil)
	for i := 0; i < 2; i++ {
		ctrb.Set(i, 0, m.B.At(i, 0))
		ctrb.Set(i, 1, ab.At(i, 0))
	}
	return ctrb
}

// Eigenvalue is one eigenvalue of a system matrix, in a JSON-friendly form.
type Eigenvalue struct {
	Re float64 `json:"re"`
	Im float64 `json:"im"`
}

func (e Eigenvalue) String() string {
	if e.Im == 0 {
		return fmt.Sprintf("%.4f", e.Re)
	}
	return fmt.Sprintf("%.4f%+.4fi", e.Re, e.Im)
}

// Report is the terminal output of the analysis.
type Report struct {
	EigenvaluesA        []Eigenvalue `json:"eigenvalues_a"`
	StableA             bool         `json:"stable_a"`
	Observable          bool         `json:"observable"`
	Controllable        bool         `json:"controllable"`
	EigenvaluesObserver []Eigenvalue `json:"eigenvalues_observer"`
	StableObserver      bool         `json:"stable_observer"`
}

// Analyze computes the full report for the given system matrices.
func Analyze(m Matrices) Report {
	eigA := Eigenvalues(m.A)
	eigObs := Eigenvalues(m.ObserverDynamics())
	return Report{
		EigenvaluesA:        eigA,
		StableA:             hurwitz(eigA),
		Observable:          Rank(m.Observability(), RankTol) == 2,
		Controllable:        Rank(m.Controllability(), RankTol) == 2,
		EigenvaluesObserver: eigObs,
		StableObserver:      hurwitz(eigObs),
	}
}

// Eigenvalues returns the eigenvalues of a square matrix.
func Eigenvalues(a mat.Matrix) []Eigenvalue {
	var eig mat.Eigen
	if ok := eig.Factorize(a, mat.EigenNone); !ok {
		// Failed factorization reads as marginal (Re=0), which the
		// stability predicates reject.
		n, _ := a.Dims()
		return make([]Eigenvalue, n)
	}
	vals := eig.Values(nil)
	out := make([]Eigenvalue, len(vals))
	for i, v := range vals {
		out[i] = Eigenvalue{Re: real(v), Im: imag(v)}
	}
	return out
}

// Rank counts singular values above tol.
func Rank(a mat.Matrix, tol float64) int {
	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDNone); !ok {
		return 0
	}
	rank := 0
	for _, sv := range svd.Values(nil) {
		if sv > tol {
			rank++
		}
	}
	return rank
}

// hurwitz reports continuous-time stability: every eigenvalue strictly in
// the open left half-plane.
func hurwitz(eigs []Eigenvalue) bool {
	for _, e := range eigs {
		if e.Re >= 0 {
			return false
		}
	}
	return len(eigs) > 0
}
