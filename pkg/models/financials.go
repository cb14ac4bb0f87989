// Package models defines the domain records shared between the Alpha Vantage
// parsers, the valuation engine, and the REST API.
//
// Monetary and rate fields are decimal.NullDecimal: an upstream value of
// "None" (or a missing key) is absent, which is distinct from zero. Fiscal
// dates are ISO yyyy-mm-dd strings, so lexical order is calendar order.
package models

import "github.com/shopspring/decimal"

// IncomeStatement is one annual income statement period.
type IncomeStatement struct {
	FiscalDateEnding  string              `json:"fiscalDateEnding"`
	ReportedCurrency  string              `json:"reportedCurrency"`
	GrossProfit       decimal.NullDecimal `json:"grossProfit"`
	TotalRevenue      decimal.NullDecimal `json:"totalRevenue"`
	OperatingIncome   decimal.NullDecimal `json:"operatingIncome"`
	NetIncome         decimal.NullDecimal `json:"netIncome"`
	CostOfRevenue     decimal.NullDecimal `json:"costOfRevenue"`
	OperatingExpenses decimal.NullDecimal `json:"operatingExpenses"`
	InterestExpense   decimal.NullDecimal `json:"interestExpense"`
	IncomeBeforeTax   decimal.NullDecimal `json:"incomeBeforeTax"`
	IncomeTaxExpense  decimal.NullDecimal `json:"incomeTaxExpense"`
	EBIT              decimal.NullDecimal `json:"ebit"`
	EBITDA            decimal.NullDecimal `json:"ebitda"`
}

// BalanceSheet is one annual balance sheet period.
type BalanceSheet struct {
	FiscalDateEnding        string              `json:"fiscalDateEnding"`
	ReportedCurrency        string              `json:"reportedCurrency"`
	TotalAssets             decimal.NullDecimal `json:"totalAssets"`
	TotalCurrentAssets      decimal.NullDecimal `json:"totalCurrentAssets"`
	CashAndCashEquivalents  decimal.NullDecimal `json:"cashAndCashEquivalentsAtCarryingValue"`
	TotalLiabilities        decimal.NullDecimal `json:"totalLiabilities"`
	TotalCurrentLiabilities decimal.NullDecimal `json:"totalCurrentLiabilities"`
	ShortLongTermDebtTotal  decimal.NullDecimal `json:"shortLongTermDebtTotal"`
	LongTermDebt            decimal.NullDecimal `json:"longTermDebt"`
	TotalShareholderEquity  decimal.NullDecimal `json:"totalShareholderEquity"`
	CommonSharesOutstanding decimal.NullDecimal `json:"commonStockSharesOutstanding"`
}

// CashFlow is one annual cash flow statement period.
//
// CapitalExpenditures is reported by Alpha Vantage as a positive magnitude;
// free cash flow is OperatingCashflow minus CapitalExpenditures.
type CashFlow struct {
	FiscalDateEnding       string              `json:"fiscalDateEnding"`
	ReportedCurrency       string              `json:"reportedCurrency"`
	OperatingCashflow      decimal.NullDecimal `json:"operatingCashflow"`
	CapitalExpenditures    decimal.NullDecimal `json:"capitalExpenditures"`
	CashflowFromInvestment decimal.NullDecimal `json:"cashflowFromInvestment"`
	CashflowFromFinancing  decimal.NullDecimal `json:"cashflowFromFinancing"`
	DividendPayout         decimal.NullDecimal `json:"dividendPayout"`
	ChangeInCash           decimal.NullDecimal `json:"changeInCashAndCashEquivalents"`
	NetIncome              decimal.NullDecimal `json:"netIncome"`
}

// Overview is the company overview record (single object per symbol).
type Overview struct {
	Symbol               string              `json:"Symbol"`
	Name                 string              `json:"Name"`
	Description          string              `json:"Description"`
	Exchange             string              `json:"Exchange"`
	Currency             string              `json:"Currency"`
	Country              string              `json:"Country"`
	Sector               string              `json:"Sector"`
	Industry             string              `json:"Industry"`
	MarketCapitalization decimal.NullDecimal `json:"MarketCapitalization"`
	EBITDA               decimal.NullDecimal `json:"EBITDA"`
	PERatio              decimal.NullDecimal `json:"PERatio"`
	BookValue            decimal.NullDecimal `json:"BookValue"`
	DividendYield        decimal.NullDecimal `json:"DividendYield"`
	EPS                  decimal.NullDecimal `json:"EPS"`
	Beta                 decimal.NullDecimal `json:"Beta"`
	High52Week           decimal.NullDecimal `json:"52WeekHigh"`
	Low52Week            decimal.NullDecimal `json:"52WeekLow"`
	SharesOutstanding    decimal.NullDecimal `json:"SharesOutstanding"`
}
