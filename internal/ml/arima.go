package ml

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ARIMAOrder is the (p, d, q) order of an autoregressive integrated moving average model.
type ARIMAOrder struct {
	P int
	D int
	Q int
}

func (o ARIMAOrder) String() string {
	return fmt.Sprintf("(%d,%d,%d)", o.P, o.D, o.Q)
}

func (o ARIMAOrder) Validate() error {
	if o.P < 0 || o.D < 0 || o.Q < 0 {
		return fmt.Errorf("arima order %s must not be negative", o)
	}
	return nil
}

// MinObservations is the shortest series the least squares estimation can fit.
func (o ARIMAOrder) MinObservations() int {
	return o.D + 2*o.P + 3*o.Q + 2
}

// arimaModel is estimated by conditional least squares. Pure AR models regress the
// differenced series on its own lags. With an MA part, a long autoregression first
// approximates the innovations (Hannan-Rissanen) and its residuals enter as regressors.
// The constant is only estimated when no differencing is applied.
type arimaModel struct {
	order     ARIMAOrder
	levels    [][]float64 // levels[k] holds the series differenced k times
	ar        []float64
	ma        []float64
	intercept float64
	residuals []float64
}

func difference(y []float64) []float64 {
	if len(y) < 2 {
		return nil
	}
	out := make([]float64, len(y)-1)
	for i := 1; i < len(y); i++ {
		out[i-1] = y[i] - y[i-1]
	}
	return out
}

func fitARIMA(values []float64, order ARIMAOrder) (m *arimaModel, err error) {
	defer func() {
		if r := recover(); r != nil {
			m, err = nil, fmt.Errorf("%w: %v", ErrModelFit, r)
		}
	}()

	if err := order.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelFit, err)
	}
	if len(values) < order.MinObservations() {
		return nil, fmt.Errorf("%w: arima%s needs at least %d observations, got %d",
			ErrModelFit, order, order.MinObservations(), len(values))
	}

	levels := [][]float64{values}
	for k := 0; k < order.D; k++ {
		levels = append(levels, difference(levels[k]))
	}
	y := levels[order.D]
	withIntercept := order.D == 0

	m = &arimaModel{order: order, levels: levels}

	innovations := make([]float64, len(y))
	from := order.P
	if order.Q > 0 {
		k := order.P + order.Q
		longAR, _, c, err := regress(y, k, nil, 0, withIntercept, k)
		if err != nil {
			return nil, err
		}
		innovations = residualsOf(y, longAR, nil, c, k)
		from = max(order.P, k+order.Q)
	}

	ar, ma, c, err := regress(y, order.P, innovations, order.Q, withIntercept, from)
	if err != nil {
		return nil, err
	}
	m.ar, m.ma, m.intercept = ar, ma, c
	m.residuals = residualsOf(y, ar, ma, c, from)

	for _, v := range append(append([]float64{c}, ar...), ma...) {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: arima%s produced non-finite coefficients", ErrModelFit, order)
		}
	}

	return m, nil
}

// rankTolerance drops singular values below this fraction of the largest one.
const rankTolerance = 1e-10

// regress solves y[t] = c + sum(phi_i*y[t-i]) + sum(theta_j*e[t-j]) in the least squares
// sense over t >= from.
func regress(y []float64, p int, e []float64, q int, intercept bool, from int) ([]float64, []float64, float64, error) {
	cols := p + q
	if intercept {
		cols++
	}
	if cols == 0 {
		return nil, nil, 0, nil
	}

	rows := len(y) - from
	if rows < cols+1 {
		return nil, nil, 0, fmt.Errorf("%w: %d usable rows for %d coefficients", ErrModelFit, rows, cols)
	}

	x := mat.NewDense(rows, cols, nil)
	b := mat.NewVecDense(rows, nil)
	for r := 0; r < rows; r++ {
		t := from + r
		col := 0
		for i := 1; i <= p; i++ {
			x.Set(r, col, y[t-i])
			col++
		}
		for j := 1; j <= q; j++ {
			x.Set(r, col, e[t-j])
			col++
		}
		if intercept {
			x.Set(r, col, 1)
		}
		b.SetVec(r, y[t])
	}

	// minimum-norm solution, so flat or collinear lags give zero or shared weights
	var svd mat.SVD
	if !svd.Factorize(x, mat.SVDThin) {
		return nil, nil, 0, fmt.Errorf("%w: least squares: svd did not converge", ErrModelFit)
	}
	beta := mat.NewVecDense(cols, nil)
	if rank := svd.Rank(rankTolerance); rank > 0 {
		svd.SolveVecTo(beta, b, rank)
	}

	coefs := beta.RawVector().Data
	phi := append([]float64(nil), coefs[:p]...)
	theta := append([]float64(nil), coefs[p:p+q]...)
	c := 0.0
	if intercept {
		c = coefs[p+q]
	}
	return phi, theta, c, nil
}

// residualsOf runs the model over y. Residuals before from are zero.
func residualsOf(y, ar, ma []float64, c float64, from int) []float64 {
	e := make([]float64, len(y))
	for t := from; t < len(y); t++ {
		e[t] = y[t] - step(y, e, ar, ma, c, t)
	}
	return e
}

func step(y, e, ar, ma []float64, c float64, t int) float64 {
	pred := c
	for i, phi := range ar {
		if t-i-1 >= 0 {
			pred += phi * y[t-i-1]
		}
	}
	for j, theta := range ma {
		if t-j-1 >= 0 {
			pred += theta * e[t-j-1]
		}
	}
	return pred
}

// forecast predicts steps values ahead on the undifferenced scale. Future innovations are zero.
func (m *arimaModel) forecast(steps int) []float64 {
	y := m.levels[m.order.D]
	n := len(y)

	extY := make([]float64, n+steps)
	copy(extY, y)
	extE := make([]float64, n+steps)
	copy(extE, m.residuals)

	for h := 0; h < steps; h++ {
		extY[n+h] = step(extY, extE, m.ar, m.ma, m.intercept, n+h)
	}

	out := append([]float64(nil), extY[n:]...)
	for k := m.order.D - 1; k >= 0; k-- {
		level := m.levels[k]
		prev := level[len(level)-1]
		for j := range out {
			out[j] += prev
			prev = out[j]
		}
	}
	return out
}
