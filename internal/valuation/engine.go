// Package valuation implements the intrinsic-value engine: a two-stage
// Discounted Cash Flow model discounted at the Weighted Average Cost of
// Capital, plus the adapter that derives engine inputs from financial
// statement records.
//
// All arithmetic is fixed-precision decimal (shopspring/decimal); binary
// floating point never touches the valuation path. Intermediate divisions
// round half-up at scale 10, WACC is reported at 4 fractional digits and
// the per-share price at 2. Both entry points are pure functions: no I/O,
// no shared state, safe under concurrent invocation.
package valuation

import "github.com/shopspring/decimal"

// divScale is the fractional precision of intermediate divisions.
const divScale = 10

var one = decimal.NewFromInt(1)

// WACCInputs are the figures feeding the cost-of-capital computation.
// PretaxIncome is accepted for call-site compatibility but does not enter
// the current formula (the effective tax rate divides the tax provision by
// market capitalization instead; see ComputeWACC).
type WACCInputs struct {
	RiskFreeRate         decimal.Decimal // Rf
	Beta                 decimal.Decimal // β
	InterestExpense      decimal.Decimal // I, latest income statement
	TotalDebt            decimal.Decimal // D, latest balance sheet
	MarketCapitalization decimal.Decimal // E
	TaxProvision         decimal.Decimal // ITE, latest income statement
	PretaxIncome         decimal.Decimal // IBT, unused
	MarketRiskPremium    decimal.Decimal // Rm − Rf
}

// ComputeWACC computes the weighted average cost of capital:
//
//	Re   = Rf + β·MRP                 (CAPM)
//	Rd   = I ÷ D
//	Tc   = ITE ÷ E                    (0 when E = 0)
//	WACC = (E/V)·Re + (D/V)·Rd·(1−Tc) with V = E + D
//
// The result is rounded half-up to 4 fractional digits.
func ComputeWACC(in WACCInputs) (decimal.Decimal, error) {
	costOfEquity := in.RiskFreeRate.Add(in.Beta.Mul(in.MarketRiskPremium))

	if in.TotalDebt.IsZero() {
		return decimal.Decimal{}, &ErrInvalidInput{Reason: "total debt must be positive"}
	}
	costOfDebt := in.InterestExpense.DivRound(in.TotalDebt, divScale)

	taxRate := decimal.Zero
	if !in.MarketCapitalization.IsZero() {
		taxRate = in.TaxProvision.DivRound(in.MarketCapitalization, divScale)
	}

	if in.MarketCapitalization.Sign() <= 0 || in.TotalDebt.Sign() <= 0 {
		return decimal.Decimal{}, &ErrInvalidInput{Reason: "equity and debt values must be positive"}
	}

	totalValue := in.MarketCapitalization.Add(in.TotalDebt)
	equityWeight := in.MarketCapitalization.DivRound(totalValue, divScale)
	debtWeight := in.TotalDebt.DivRound(totalValue, divScale)

	afterTaxCostOfDebt := costOfDebt.Mul(one.Sub(taxRate))
	wacc := equityWeight.Mul(costOfEquity).Add(debtWeight.Mul(afterTaxCostOfDebt))

	return wacc.Round(4), nil
}

// DCFInputs are the figures feeding the price-per-share computation.
//
// GrowthRates must hold at least two elements: indexes 0..N−2 are the
// per-year growth rates for explicit forecast years 1..N−1, and the final
// element is the terminal (Gordon Growth) rate applied only to the tail.
type DCFInputs struct {
	LastYearFCF       decimal.Decimal
	GrowthRates       []decimal.Decimal
	DiscountRate      decimal.Decimal
	SharesOutstanding decimal.Decimal
	NetDebt           decimal.Decimal
}

// ComputeDCFPricePerShare projects free cash flow through the explicit
// horizon, adds a Gordon Growth terminal value, subtracts net debt and
// divides by shares outstanding. The price is rounded half-up to 2 digits.
func ComputeDCFPricePerShare(in DCFInputs) (decimal.Decimal, error) {
	n := len(in.GrowthRates)
	if n < 2 {
		return decimal.Decimal{}, &ErrInvalidInput{Reason: "growth rates must hold at least two elements (explicit years plus terminal)"}
	}
	terminalGrowth := in.GrowthRates[n-1]

	if in.DiscountRate.Cmp(terminalGrowth) <= 0 {
		return decimal.Decimal{}, &ErrInvalidInput{Reason: "discount rate must exceed terminal growth rate"}
	}
	if in.DiscountRate.Sign() <= 0 {
		return decimal.Decimal{}, &ErrInvalidInput{Reason: "discount rate must be positive"}
	}
	if in.LastYearFCF.Sign() < 0 {
		return decimal.Decimal{}, &ErrInvalidInput{Reason: "last year free cash flow cannot be negative"}
	}
	if in.SharesOutstanding.Sign() <= 0 {
		return decimal.Decimal{}, &ErrInvalidInput{Reason: "shares outstanding must be positive"}
	}

	horizon := n - 1
	onePlusRate := one.Add(in.DiscountRate)

	fcf := in.LastYearFCF
	presentValue := decimal.Zero
	for i := 1; i <= horizon; i++ {
		fcf = fcf.Mul(one.Add(in.GrowthRates[i-1]))
		discountFactor := onePlusRate.Pow(decimal.NewFromInt(int64(i)))
		presentValue = presentValue.Add(fcf.DivRound(discountFactor, divScale))
	}

	// Terminal value on year-H FCF, discounted back to today.
	terminalValue := fcf.Mul(one.Add(terminalGrowth)).
		DivRound(in.DiscountRate.Sub(terminalGrowth), divScale)
	terminalValue = terminalValue.DivRound(onePlusRate.Pow(decimal.NewFromInt(int64(horizon))), divScale)

	enterpriseValue := presentValue.Add(terminalValue)
	equityValue := enterpriseValue.Sub(in.NetDebt)

	return equityValue.DivRound(in.SharesOutstanding, 2), nil
}
