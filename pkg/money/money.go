package money

import "github.com/shopspring/decimal"

var (
	Zero = decimal.Zero
	One  = decimal.NewFromInt(1)
)

// Round2 rounds a VAT included amount to cents.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Round4 rounds a VAT excluded amount to the precision kept on lines.
func Round4(d decimal.Decimal) decimal.Decimal {
	return d.Round(4)
}

// Sum adds every value.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// WithVat converts a VAT excluded amount into a VAT included price rounded to cents.
func WithVat(total, vatRate decimal.Decimal) decimal.Decimal {
	return Round2(total.Mul(One.Add(vatRate)))
}

// Clamp bounds d to [lo, hi].
func Clamp(d, lo, hi decimal.Decimal) decimal.Decimal {
	if d.LessThan(lo) {
		return lo
	}
	if d.GreaterThan(hi) {
		return hi
	}
	return d
}

// Percent returns pct percent of amount, rounded to cents.
func Percent(amount decimal.Decimal, pct decimal.Decimal) decimal.Decimal {
	return Round2(amount.Mul(pct).Div(decimal.NewFromInt(100)))
}
