package alphavantage

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/valuehound/stockval/pkg/models"
)

// Alpha Vantage encodes every numeric value as a string and uses the
// literal "None" for absent figures. nullDecimal maps both "None" and the
// empty string to an absent value, never to zero. An unparseable value is
// logged and treated as absent as well.
func nullDecimal(raw string) decimal.NullDecimal {
	if raw == "" || raw == "None" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		zap.L().Warn("unparseable decimal value", zap.String("value", raw))
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// envelope is the wrapper document for the annual statement functions.
type envelope struct {
	Symbol        string            `json:"symbol"`
	AnnualReports []json.RawMessage `json:"annualReports"`
}

// annualReports decodes the statement envelope and returns the raw report
// objects. A missing annualReports key means the document is not the one
// the function promises (rate-limit note, error message, wrong symbol).
func annualReports(raw []byte, fn Function) ([]json.RawMessage, error) {
	var doc envelope
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &ErrBadPayload{Function: fn, Detail: err.Error()}
	}
	if doc.AnnualReports == nil {
		return nil, &ErrBadPayload{Function: fn, Detail: "missing \"annualReports\" key"}
	}
	return doc.AnnualReports, nil
}

type rawIncomeStatement struct {
	FiscalDateEnding  string `json:"fiscalDateEnding"`
	ReportedCurrency  string `json:"reportedCurrency"`
	GrossProfit       string `json:"grossProfit"`
	TotalRevenue      string `json:"totalRevenue"`
	OperatingIncome   string `json:"operatingIncome"`
	NetIncome         string `json:"netIncome"`
	CostOfRevenue     string `json:"costOfRevenue"`
	OperatingExpenses string `json:"operatingExpenses"`
	InterestExpense   string `json:"interestExpense"`
	IncomeBeforeTax   string `json:"incomeBeforeTax"`
	IncomeTaxExpense  string `json:"incomeTaxExpense"`
	EBIT              string `json:"ebit"`
	EBITDA            string `json:"ebitda"`
}

// ParseIncomeStatements parses the INCOME_STATEMENT document. Malformed
// rows are skipped with a warning; recoverable rows are always returned.
func ParseIncomeStatements(symbol string, raw []byte, fn Function) ([]models.IncomeStatement, error) {
	reports, err := annualReports(raw, fn)
	if err != nil {
		return nil, err
	}

	out := make([]models.IncomeStatement, 0, len(reports))
	for _, report := range reports {
		var r rawIncomeStatement
		if err := json.Unmarshal(report, &r); err != nil {
			zap.L().Warn("skipping malformed income statement row",
				zap.String("symbol", symbol), zap.Error(err))
			continue
		}
		if r.FiscalDateEnding == "" {
			zap.L().Warn("skipping income statement row without fiscalDateEnding",
				zap.String("symbol", symbol))
			continue
		}
		out = append(out, models.IncomeStatement{
			FiscalDateEnding:  r.FiscalDateEnding,
			ReportedCurrency:  r.ReportedCurrency,
			GrossProfit:       nullDecimal(r.GrossProfit),
			TotalRevenue:      nullDecimal(r.TotalRevenue),
			OperatingIncome:   nullDecimal(r.OperatingIncome),
			NetIncome:         nullDecimal(r.NetIncome),
			CostOfRevenue:     nullDecimal(r.CostOfRevenue),
			OperatingExpenses: nullDecimal(r.OperatingExpenses),
			InterestExpense:   nullDecimal(r.InterestExpense),
			IncomeBeforeTax:   nullDecimal(r.IncomeBeforeTax),
			IncomeTaxExpense:  nullDecimal(r.IncomeTaxExpense),
			EBIT:              nullDecimal(r.EBIT),
			EBITDA:            nullDecimal(r.EBITDA),
		})
	}
	return out, nil
}

type rawBalanceSheet struct {
	FiscalDateEnding        string `json:"fiscalDateEnding"`
	ReportedCurrency        string `json:"reportedCurrency"`
	TotalAssets             string `json:"totalAssets"`
	TotalCurrentAssets      string `json:"totalCurrentAssets"`
	CashAndCashEquivalents  string `json:"cashAndCashEquivalentsAtCarryingValue"`
	TotalLiabilities        string `json:"totalLiabilities"`
	TotalCurrentLiabilities string `json:"totalCurrentLiabilities"`
	ShortLongTermDebtTotal  string `json:"shortLongTermDebtTotal"`
	LongTermDebt            string `json:"longTermDebt"`
	TotalShareholderEquity  string `json:"totalShareholderEquity"`
	CommonSharesOutstanding string `json:"commonStockSharesOutstanding"`
}

// ParseBalanceSheets parses the BALANCE_SHEET document.
func ParseBalanceSheets(symbol string, raw []byte, fn Function) ([]models.BalanceSheet, error) {
	reports, err := annualReports(raw, fn)
	if err != nil {
		return nil, err
	}

	out := make([]models.BalanceSheet, 0, len(reports))
	for _, report := range reports {
		var r rawBalanceSheet
		if err := json.Unmarshal(report, &r); err != nil {
			zap.L().Warn("skipping malformed balance sheet row",
				zap.String("symbol", symbol), zap.Error(err))
			continue
		}
		if r.FiscalDateEnding == "" {
			zap.L().Warn("skipping balance sheet row without fiscalDateEnding",
				zap.String("symbol", symbol))
			continue
		}
		out = append(out, models.BalanceSheet{
			FiscalDateEnding:        r.FiscalDateEnding,
			ReportedCurrency:        r.ReportedCurrency,
			TotalAssets:             nullDecimal(r.TotalAssets),
			TotalCurrentAssets:      nullDecimal(r.TotalCurrentAssets),
			CashAndCashEquivalents:  nullDecimal(r.CashAndCashEquivalents),
			TotalLiabilities:        nullDecimal(r.TotalLiabilities),
			TotalCurrentLiabilities: nullDecimal(r.TotalCurrentLiabilities),
			ShortLongTermDebtTotal:  nullDecimal(r.ShortLongTermDebtTotal),
			LongTermDebt:            nullDecimal(r.LongTermDebt),
			TotalShareholderEquity:  nullDecimal(r.TotalShareholderEquity),
			CommonSharesOutstanding: nullDecimal(r.CommonSharesOutstanding),
		})
	}
	return out, nil
}

type rawCashFlow struct {
	FiscalDateEnding       string `json:"fiscalDateEnding"`
	ReportedCurrency       string `json:"reportedCurrency"`
	OperatingCashflow      string `json:"operatingCashflow"`
	CapitalExpenditures    string `json:"capitalExpenditures"`
	CashflowFromInvestment string `json:"cashflowFromInvestment"`
	CashflowFromFinancing  string `json:"cashflowFromFinancing"`
	DividendPayout         string `json:"dividendPayout"`
	ChangeInCash           string `json:"changeInCashAndCashEquivalents"`
	NetIncome              string `json:"netIncome"`
}

// ParseCashFlows parses the CASH_FLOW document.
func ParseCashFlows(symbol string, raw []byte, fn Function) ([]models.CashFlow, error) {
	reports, err := annualReports(raw, fn)
	if err != nil {
		return nil, err
	}

	out := make([]models.CashFlow, 0, len(reports))
	for _, report := range reports {
		var r rawCashFlow
		if err := json.Unmarshal(report, &r); err != nil {
			zap.L().Warn("skipping malformed cash flow row",
				zap.String("symbol", symbol), zap.Error(err))
			continue
		}
		if r.FiscalDateEnding == "" {
			zap.L().Warn("skipping cash flow row without fiscalDateEnding",
				zap.String("symbol", symbol))
			continue
		}
		out = append(out, models.CashFlow{
			FiscalDateEnding:       r.FiscalDateEnding,
			ReportedCurrency:       r.ReportedCurrency,
			OperatingCashflow:      nullDecimal(r.OperatingCashflow),
			CapitalExpenditures:    nullDecimal(r.CapitalExpenditures),
			CashflowFromInvestment: nullDecimal(r.CashflowFromInvestment),
			CashflowFromFinancing:  nullDecimal(r.CashflowFromFinancing),
			DividendPayout:         nullDecimal(r.DividendPayout),
			ChangeInCash:           nullDecimal(r.ChangeInCash),
			NetIncome:              nullDecimal(r.NetIncome),
		})
	}
	return out, nil
}

type rawOverview struct {
	Symbol               string `json:"Symbol"`
	Name                 string `json:"Name"`
	Description          string `json:"Description"`
	Exchange             string `json:"Exchange"`
	Currency             string `json:"Currency"`
	Country              string `json:"Country"`
	Sector               string `json:"Sector"`
	Industry             string `json:"Industry"`
	MarketCapitalization string `json:"MarketCapitalization"`
	EBITDA               string `json:"EBITDA"`
	PERatio              string `json:"PERatio"`
	BookValue            string `json:"BookValue"`
	DividendYield        string `json:"DividendYield"`
	EPS                  string `json:"EPS"`
	Beta                 string `json:"Beta"`
	High52Week           string `json:"52WeekHigh"`
	Low52Week            string `json:"52WeekLow"`
	SharesOutstanding    string `json:"SharesOutstanding"`
}

// ParseOverview parses the OVERVIEW document (a single root object).
// An empty Symbol means Alpha Vantage returned a note or error body.
func ParseOverview(symbol string, raw []byte) (models.Overview, error) {
	var r rawOverview
	if err := json.Unmarshal(raw, &r); err != nil {
		return models.Overview{}, &ErrBadPayload{Function: FuncOverview, Detail: err.Error()}
	}
	if r.Symbol == "" {
		return models.Overview{}, &ErrBadPayload{Function: FuncOverview, Detail: "missing \"Symbol\" key"}
	}

	return models.Overview{
		Symbol:               r.Symbol,
		Name:                 r.Name,
		Description:          r.Description,
		Exchange:             r.Exchange,
		Currency:             r.Currency,
		Country:              r.Country,
		Sector:               r.Sector,
		Industry:             r.Industry,
		MarketCapitalization: nullDecimal(r.MarketCapitalization),
		EBITDA:               nullDecimal(r.EBITDA),
		PERatio:              nullDecimal(r.PERatio),
		BookValue:            nullDecimal(r.BookValue),
		DividendYield:        nullDecimal(r.DividendYield),
		EPS:                  nullDecimal(r.EPS),
		Beta:                 nullDecimal(r.Beta),
		High52Week:           nullDecimal(r.High52Week),
		Low52Week:            nullDecimal(r.Low52Week),
		SharesOutstanding:    nullDecimal(r.SharesOutstanding),
	}, nil
}

// ParsePriceSeries parses a time series document into adjusted-close
// points ordered oldest first. Dates missing the adjusted close, and
// unparseable values, are skipped with a warning.
func ParsePriceSeries(symbol string, raw []byte, fn Function) ([]models.PricePoint, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &ErrBadPayload{Function: fn, Detail: err.Error()}
	}

	seriesRaw, ok := doc[fn.rootKey()]
	if !ok {
		return nil, &ErrBadPayload{Function: fn, Detail: "missing " + strconv.Quote(fn.rootKey()) + " key"}
	}

	var series map[string]map[string]string
	if err := json.Unmarshal(seriesRaw, &series); err != nil {
		return nil, &ErrBadPayload{Function: fn, Detail: err.Error()}
	}

	dates := make([]string, 0, len(series))
	for date := range series {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	out := make([]models.PricePoint, 0, len(dates))
	for _, date := range dates {
		closeRaw, ok := series[date]["5. adjusted close"]
		if !ok {
			zap.L().Warn("skipping date without adjusted close",
				zap.String("symbol", symbol), zap.String("date", date))
			continue
		}
		price, err := decimal.NewFromString(closeRaw)
		if err != nil {
			zap.L().Warn("skipping unparseable adjusted close",
				zap.String("symbol", symbol), zap.String("date", date), zap.String("value", closeRaw))
			continue
		}
		out = append(out, models.PricePoint{Symbol: symbol, Date: date, AdjustedClose: price})
	}
	return out, nil
}
