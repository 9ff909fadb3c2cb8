package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMonthIndex(t *testing.T) {
	m, ok := MonthIndex("March")
	assert.True(t, ok)
	assert.Equal(t, 3, m)

	m, ok = MonthIndex("dec.")
	assert.True(t, ok)
	assert.Equal(t, 12, m)

	_, ok = MonthIndex("Margin")
	assert.False(t, ok)

	_, ok = MonthIndex("Revenue")
	assert.False(t, ok)
}

func TestQuarterAndYearTokens(t *testing.T) {
	q, y, ok := QuarterToken("Q3")
	assert.True(t, ok)
	assert.Equal(t, 3, q)
	assert.Empty(t, y)

	q, y, ok = QuarterToken("Q2FY24")
	assert.True(t, ok)
	assert.Equal(t, 2, q)
	assert.Equal(t, "24", y)

	assert.True(t, IsFiscalYearToken("FY24"))
	assert.True(t, IsFiscalYearToken("FY 2023-24"))
	assert.True(t, IsFiscalYearToken("2023-24"))
	assert.False(t, IsFiscalYearToken("2024"))

	yr, ok := YearToken("2024")
	assert.True(t, ok)
	assert.Equal(t, "2024", yr)
	_, ok = YearToken("1,234")
	assert.False(t, ok)

	d, ok := DayToken("31st,")
	assert.True(t, ok)
	assert.Equal(t, "31", d)
	_, ok = DayToken("45")
	assert.False(t, ok)
}

func TestIsDateLike(t *testing.T) {
	assert.True(t, IsDateLike("Year ended 31 March 2024"))
	assert.True(t, IsDateLike("Q1 FY25"))
	assert.True(t, IsDateLike("As at"))
	assert.False(t, IsDateLike("Revenue from operations"))
}

func TestDetectUnit(t *testing.T) {
	assert.Equal(t, "₹ in Crores", DetectUnit("(₹ in crores, unless otherwise stated)"))
	assert.Equal(t, "₹ in Lakhs", DetectUnit("Rs. in Lakhs"))
	assert.Equal(t, "USD Million", DetectUnit("All figures in USD million"))
	assert.Equal(t, "in Thousands", DetectUnit("Amounts in thousands"))
	assert.Equal(t, "₹", DetectUnit("Net worth ₹ 500"))
	assert.Empty(t, DetectUnit("Statement of profit and loss"))
}

func TestStripUnitAnnotation(t *testing.T) {
	assert.Equal(t, "31 March 2024", StripUnitAnnotation("31 March 2024 (₹ in Crores)"))
	assert.Equal(t, "FY 2024", StripUnitAnnotation("FY 2024 (in lakhs)"))
}

func TestSectionFor(t *testing.T) {
	hint, header := SectionFor("Revenue from operations", true)
	assert.Equal(t, "REVENUE", string(hint))
	assert.False(t, header)

	hint, header = SectionFor("Expenses", false)
	assert.Equal(t, "EXPENSE", string(hint))
	assert.True(t, header)

	_, header = SectionFor("II. Something unusual", false)
	assert.True(t, header)

	_, header = SectionFor("Miscellaneous", false)
	assert.False(t, header)
}
