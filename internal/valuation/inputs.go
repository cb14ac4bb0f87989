package valuation

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/valuehound/stockval/pkg/models"
)

// netDebtFactor approximates net debt as a fraction of total debt, standing
// in for total debt minus cash and equivalents.
var netDebtFactor = decimal.New(7, -1) // 0.7

// MarketConstants carry the configured CAPM market inputs.
type MarketConstants struct {
	RiskFreeRate      decimal.Decimal
	MarketRiskPremium decimal.Decimal
}

// LatestBalanceSheet returns the period with the maximal fiscalDateEnding.
// Ties keep the parser's emit order.
func LatestBalanceSheet(periods []models.BalanceSheet) (models.BalanceSheet, error) {
	if len(periods) == 0 {
		return models.BalanceSheet{}, &ErrMissingData{Field: "annualReports", Period: "balance sheet"}
	}
	sorted := make([]models.BalanceSheet, len(periods))
	copy(sorted, periods)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].FiscalDateEnding > sorted[j].FiscalDateEnding
	})
	return sorted[0], nil
}

// LatestIncomeStatement returns the period with the maximal fiscalDateEnding.
func LatestIncomeStatement(periods []models.IncomeStatement) (models.IncomeStatement, error) {
	if len(periods) == 0 {
		return models.IncomeStatement{}, &ErrMissingData{Field: "annualReports", Period: "income statement"}
	}
	sorted := make([]models.IncomeStatement, len(periods))
	copy(sorted, periods)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].FiscalDateEnding > sorted[j].FiscalDateEnding
	})
	return sorted[0], nil
}

// LatestCashFlow returns the period with the maximal fiscalDateEnding.
func LatestCashFlow(periods []models.CashFlow) (models.CashFlow, error) {
	if len(periods) == 0 {
		return models.CashFlow{}, &ErrMissingData{Field: "annualReports", Period: "cash flow statement"}
	}
	sorted := make([]models.CashFlow, len(periods))
	copy(sorted, periods)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].FiscalDateEnding > sorted[j].FiscalDateEnding
	})
	return sorted[0], nil
}

// AssembleWACCInputs derives the cost-of-capital inputs from the latest
// income statement and balance sheet plus the overview record and the
// configured market constants.
func AssembleWACCInputs(is models.IncomeStatement, bs models.BalanceSheet, ov models.Overview, mc MarketConstants) (WACCInputs, error) {
	beta, err := requireField(ov.Beta, "Beta", "overview")
	if err != nil {
		return WACCInputs{}, err
	}
	interestExpense, err := requireField(is.InterestExpense, "interestExpense", is.FiscalDateEnding)
	if err != nil {
		return WACCInputs{}, err
	}
	totalDebt, err := requireField(bs.ShortLongTermDebtTotal, "shortLongTermDebtTotal", bs.FiscalDateEnding)
	if err != nil {
		return WACCInputs{}, err
	}
	marketCap, err := requireField(ov.MarketCapitalization, "MarketCapitalization", "overview")
	if err != nil {
		return WACCInputs{}, err
	}
	taxProvision, err := requireField(is.IncomeTaxExpense, "incomeTaxExpense", is.FiscalDateEnding)
	if err != nil {
		return WACCInputs{}, err
	}
	pretaxIncome, err := requireField(is.IncomeBeforeTax, "incomeBeforeTax", is.FiscalDateEnding)
	if err != nil {
		return WACCInputs{}, err
	}

	return WACCInputs{
		RiskFreeRate:         mc.RiskFreeRate,
		Beta:                 beta,
		InterestExpense:      interestExpense,
		TotalDebt:            totalDebt,
		MarketCapitalization: marketCap,
		TaxProvision:         taxProvision,
		PretaxIncome:         pretaxIncome,
		MarketRiskPremium:    mc.MarketRiskPremium,
	}, nil
}

// AssembleDCFInputs derives the price-per-share inputs from the latest cash
// flow and balance sheet periods, the overview record, the caller-supplied
// growth-rate vector and the computed WACC.
func AssembleDCFInputs(cf models.CashFlow, bs models.BalanceSheet, ov models.Overview, growthRates []decimal.Decimal, wacc decimal.Decimal) (DCFInputs, error) {
	operatingCashflow, err := requireField(cf.OperatingCashflow, "operatingCashflow", cf.FiscalDateEnding)
	if err != nil {
		return DCFInputs{}, err
	}
	capex, err := requireField(cf.CapitalExpenditures, "capitalExpenditures", cf.FiscalDateEnding)
	if err != nil {
		return DCFInputs{}, err
	}
	totalDebt, err := requireField(bs.ShortLongTermDebtTotal, "shortLongTermDebtTotal", bs.FiscalDateEnding)
	if err != nil {
		return DCFInputs{}, err
	}
	shares, err := requireField(ov.SharesOutstanding, "SharesOutstanding", "overview")
	if err != nil {
		return DCFInputs{}, err
	}

	return DCFInputs{
		LastYearFCF:       operatingCashflow.Sub(capex),
		GrowthRates:       growthRates,
		DiscountRate:      wacc,
		SharesOutstanding: shares,
		NetDebt:           totalDebt.Mul(netDebtFactor),
	}, nil
}

// requireField unwraps an optional decimal, translating absence into
// ErrMissingData naming the field and fiscal period.
func requireField(d decimal.NullDecimal, field, period string) (decimal.Decimal, error) {
	if !d.Valid {
		return decimal.Decimal{}, &ErrMissingData{Field: field, Period: period}
	}
	return d.Decimal, nil
}
