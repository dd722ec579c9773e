package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogLoads(t *testing.T) {
	c := Default()
	require.NotNil(t, c)
	assert.NotEmpty(t, c.Stocks)
	assert.NotEmpty(t, c.Crypto)
	assert.NotEmpty(t, c.Macro)
	assert.Contains(t, c.ScanUniverse, ClassIndices)
	assert.Equal(t, "apple", c.Stocks[0].Key)
}

func TestResolvers(t *testing.T) {
	c := Default()

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"stock alias", c.ResolveStock("Apple"), "AAPL"},
		{"stock passthrough", c.ResolveStock(" tsm "), "TSM"},
		{"crypto alias", c.ResolveCrypto("BTC"), "bitcoin"},
		{"crypto passthrough", c.ResolveCrypto("Kaspa"), "kaspa"},
		{"commodity alias", c.ResolveCommodity("gold"), "GC=F"},
		{"commodity raw", c.ResolveCommodity("hg=f"), "HG=F"},
		{"commodity unknown", c.ResolveCommodity("lumber"), "LUMBER"},
		{"forex alias", c.ResolveForex("euro"), "EURUSD=X"},
		{"forex default", c.ResolveForex("usdcny"), "USDCNY=X"},
		{"index alias", c.ResolveIndex("sp500"), "^GSPC"},
		{"treasury alias", c.ResolveTreasury("30Y"), "^TYX"},
		{"treasury raw", c.ResolveTreasury("^fvx"), "^FVX"},
		{"treasury default", c.ResolveTreasury("7y"), "^TNX"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestCommodityName(t *testing.T) {
	c := Default()
	assert.Equal(t, "Oil", c.CommodityName("wti", "CL=F"))
	assert.Equal(t, "Lumber", c.CommodityName("lumber", "LUMBER"))
}

func TestResolveMacro(t *testing.T) {
	c := Default()

	m, ok := c.ResolveMacro("m2")
	require.True(t, ok)
	assert.Equal(t, "WM2NS", m.Symbol)
	assert.Equal(t, SourceFRED, m.Source)

	m, ok = c.ResolveMacro("Fed Funds")
	require.True(t, ok)
	assert.Equal(t, "DFF", m.Symbol)

	// "money" is a substring of the "money supply" key.
	m, ok = c.ResolveMacro("money")
	require.True(t, ok)
	assert.NotEmpty(t, m.Symbol)

	_, ok = c.ResolveMacro("zzzz-not-an-indicator")
	assert.False(t, ok)
}

func TestIsFREDSymbol(t *testing.T) {
	assert.True(t, IsFREDSymbol("GDPC1"))
	assert.True(t, IsFREDSymbol("T10Y2Y"))
	assert.False(t, IsFREDSymbol("gdp"))
	assert.False(t, IsFREDSymbol("X"))
	assert.False(t, IsFREDSymbol("12"))
}

func TestIndicatorsDedupedAndSorted(t *testing.T) {
	c := Default()
	list := c.Indicators()
	require.NotEmpty(t, list)

	seen := make(map[string]bool)
	for i, m := range list {
		assert.False(t, seen[m.Symbol], "duplicate symbol %s", m.Symbol)
		seen[m.Symbol] = true
		if i > 0 {
			prev := list[i-1]
			ordered := prev.Region < m.Region || (prev.Region == m.Region && prev.Name <= m.Name)
			assert.True(t, ordered, "%s/%s before %s/%s", prev.Region, prev.Name, m.Region, m.Name)
		}
	}

	byRegion := c.IndicatorsByRegion()
	total := 0
	for _, items := range byRegion {
		total += len(items)
	}
	assert.Equal(t, len(list), total)
	assert.Contains(t, byRegion, "US")
}

func TestSearch(t *testing.T) {
	c := Default()

	hits := c.Search("gold")
	require.Len(t, hits, 1)
	assert.Equal(t, "commodity", hits[0].Type)
	assert.Equal(t, "GC=F", hits[0].Symbol)

	hits = c.Search("eth")
	require.Len(t, hits, 1)
	assert.Equal(t, SearchHit{ID: "ethereum", Symbol: "ETH", Name: "Ethereum", Type: "crypto"}, hits[0])

	assert.Empty(t, c.Search("nothing-here"))
}

func TestParseClass(t *testing.T) {
	for in, want := range map[string]AssetClass{
		"stock": ClassStocks, "Index": ClassIndices, "commodity": ClassCommodities, "macro": ClassMacro,
	} {
		got, err := ParseClass(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseClass("bonds")
	assert.Error(t, err)
}

func TestAliasMapRejectsSequence(t *testing.T) {
	_, err := Parse([]byte("stocks: [a, b]\n"))
	assert.Error(t, err)
}
