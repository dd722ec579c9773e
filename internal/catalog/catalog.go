// Package catalog holds the embedded asset alias maps and resolves user
// queries ("gold", "apple", "fed funds") to provider symbols.
package catalog

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	"gopkg.in/yaml.v3"
)

//go:embed assets.yaml
var assetsYAML []byte

// AssetClass names a family of assets. The string values match the
// URL segments and the deep-scan universe keys.
type AssetClass string

const (
	ClassStocks      AssetClass = "stocks"
	ClassCrypto      AssetClass = "crypto"
	ClassCommodities AssetClass = "commodities"
	ClassForex       AssetClass = "forex"
	ClassIndices     AssetClass = "indices"
	ClassTreasury    AssetClass = "treasury"
	ClassMacro       AssetClass = "macro"
)

// Classes lists every asset class in heatmap order.
var Classes = []AssetClass{
	ClassIndices, ClassStocks, ClassMacro, ClassCommodities,
	ClassForex, ClassTreasury, ClassCrypto,
}

// ParseClass accepts the plural class names plus the singular forms
// used in request bodies ("stock", "index", "commodity").
func ParseClass(s string) (AssetClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stocks", "stock":
		return ClassStocks, nil
	case "crypto", "cryptos":
		return ClassCrypto, nil
	case "commodities", "commodity":
		return ClassCommodities, nil
	case "forex", "fx":
		return ClassForex, nil
	case "indices", "index":
		return ClassIndices, nil
	case "treasury", "treasuries":
		return ClassTreasury, nil
	case "macro":
		return ClassMacro, nil
	}
	return "", fmt.Errorf("unknown asset class %q", s)
}

// Alias is one alias → symbol pair.
type Alias struct {
	Key    string
	Symbol string
}

// AliasMap is an ordered alias table decoded from a YAML mapping.
type AliasMap []Alias

// UnmarshalYAML keeps document order, which map[string]string would lose.
func (m *AliasMap) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: alias table must be a mapping", node.Line)
	}
	out := make(AliasMap, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		out = append(out, Alias{Key: node.Content[i].Value, Symbol: node.Content[i+1].Value})
	}
	*m = out
	return nil
}

// Lookup returns the symbol for an exact key.
func (m AliasMap) Lookup(key string) (string, bool) {
	for _, a := range m {
		if a.Key == key {
			return a.Symbol, true
		}
	}
	return "", false
}

// KeyFor returns the first alias pointing at symbol.
func (m AliasMap) KeyFor(symbol string) (string, bool) {
	for _, a := range m {
		if a.Symbol == symbol {
			return a.Key, true
		}
	}
	return "", false
}

// MacroSource tells which provider serves a macro indicator.
type MacroSource string

const (
	SourceFRED  MacroSource = "FRED"
	SourceYahoo MacroSource = "YAHOO"
)

// MacroInfo describes a macro indicator.
type MacroInfo struct {
	Key    string      `yaml:"-" json:"key"`
	Symbol string      `yaml:"symbol" json:"symbol"`
	Name   string      `yaml:"name" json:"name"`
	Source MacroSource `yaml:"source" json:"source"`
	Region string      `yaml:"region" json:"region"`
}

// MacroMap is the ordered macro indicator table.
type MacroMap []MacroInfo

func (m *MacroMap) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: macro table must be a mapping", node.Line)
	}
	out := make(MacroMap, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var info MacroInfo
		if err := node.Content[i+1].Decode(&info); err != nil {
			return fmt.Errorf("macro %q: %w", node.Content[i].Value, err)
		}
		info.Key = node.Content[i].Value
		if info.Region == "" {
			info.Region = "US"
		}
		out = append(out, info)
	}
	*m = out
	return nil
}

// Catalog is the full set of alias tables.
type Catalog struct {
	Stocks       AliasMap                `yaml:"stocks"`
	Crypto       AliasMap                `yaml:"crypto"`
	Commodities  AliasMap                `yaml:"commodities"`
	Forex        AliasMap                `yaml:"forex"`
	Indices      AliasMap                `yaml:"indices"`
	Treasury     AliasMap                `yaml:"treasury"`
	Macro        MacroMap                `yaml:"macro"`
	ScanUniverse map[AssetClass][]string `yaml:"scan_universe"`
}

// Parse decodes a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return &c, nil
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
)

// Default returns the embedded catalog. It panics if the embedded file is
// malformed, which the tests guard against.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(assetsYAML)
		if err != nil {
			panic(err)
		}
		defaultCat = c
	})
	return defaultCat
}

func norm(q string) string { return strings.ToLower(strings.TrimSpace(q)) }

// ResolveStock maps a company name to its ticker, else upper-cases the query.
func (c *Catalog) ResolveStock(q string) string {
	if s, ok := c.Stocks.Lookup(norm(q)); ok {
		return s
	}
	return strings.ToUpper(strings.TrimSpace(q))
}

// ResolveCrypto maps a ticker or name to a CoinGecko id.
func (c *Catalog) ResolveCrypto(q string) string {
	if s, ok := c.Crypto.Lookup(norm(q)); ok {
		return s
	}
	return norm(q)
}

// ResolveCommodity maps a commodity name to a futures symbol.
func (c *Catalog) ResolveCommodity(q string) string {
	n := norm(q)
	if strings.Contains(n, "=") {
		return strings.ToUpper(n)
	}
	if s, ok := c.Commodities.Lookup(n); ok {
		return s
	}
	return strings.ToUpper(q)
}

// CommodityName is the display name for a resolved commodity symbol.
func (c *Catalog) CommodityName(query, symbol string) string {
	if k, ok := c.Commodities.KeyFor(symbol); ok {
		return titleCase(k)
	}
	return titleCase(query)
}

// ResolveForex maps a currency or pair to a Yahoo FX symbol.
func (c *Catalog) ResolveForex(q string) string {
	n := norm(q)
	if strings.Contains(n, "=") {
		return strings.ToUpper(n)
	}
	if s, ok := c.Forex.Lookup(n); ok {
		return s
	}
	return strings.ToUpper(q) + "=X"
}

// ResolveIndex maps an index name to a Yahoo symbol.
func (c *Catalog) ResolveIndex(q string) string {
	if s, ok := c.Indices.Lookup(norm(q)); ok {
		return s
	}
	return strings.ToUpper(q)
}

// ResolveTreasury maps a maturity ("10y") to a yield symbol. Raw caret
// symbols pass through; anything else falls back to the 10-year.
func (c *Catalog) ResolveTreasury(q string) string {
	if s, ok := c.Treasury.Lookup(norm(q)); ok {
		return s
	}
	if t := strings.TrimSpace(q); strings.HasPrefix(t, "^") {
		return strings.ToUpper(t)
	}
	return "^TNX"
}

// ResolveMacro finds a macro indicator by exact key, upper-case key, or
// the first partial match in catalog order.
func (c *Catalog) ResolveMacro(q string) (MacroInfo, bool) {
	n := norm(q)
	upper := strings.ToUpper(strings.TrimSpace(q))
	for _, m := range c.Macro {
		if m.Key == n {
			return m, true
		}
	}
	for _, m := range c.Macro {
		if m.Key == upper {
			return m, true
		}
	}
	if n == "" {
		return MacroInfo{}, false
	}
	for _, m := range c.Macro {
		if strings.Contains(m.Key, n) || strings.Contains(n, m.Key) {
			return m, true
		}
	}
	return MacroInfo{}, false
}

// IsFREDSymbol reports whether q looks like a raw FRED series id.
func IsFREDSymbol(q string) bool {
	if len(q) < 2 {
		return false
	}
	hasLetter := false
	for _, r := range q {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}

// Indicators lists macro indicators deduplicated by symbol, sorted by
// region then name.
func (c *Catalog) Indicators() []MacroInfo {
	seen := make(map[string]bool)
	out := make([]MacroInfo, 0, len(c.Macro))
	for _, m := range c.Macro {
		if seen[m.Symbol] {
			continue
		}
		seen[m.Symbol] = true
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Region != out[j].Region {
			return out[i].Region < out[j].Region
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// IndicatorsByRegion groups Indicators by region.
func (c *Catalog) IndicatorsByRegion() map[string][]MacroInfo {
	out := make(map[string][]MacroInfo)
	for _, m := range c.Indicators() {
		out[m.Region] = append(out[m.Region], m)
	}
	return out
}

// SearchHit is one local search result.
type SearchHit struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Type   string `json:"type"`
}

// Search looks the query up in every alias table by exact key.
func (c *Catalog) Search(q string) []SearchHit {
	n := norm(q)
	var hits []SearchHit
	if s, ok := c.Commodities.Lookup(n); ok {
		hits = append(hits, SearchHit{ID: n, Symbol: s, Name: titleCase(n), Type: "commodity"})
	}
	if s, ok := c.Forex.Lookup(n); ok {
		hits = append(hits, SearchHit{ID: n, Symbol: s, Name: strings.ToUpper(n), Type: "forex"})
	}
	if s, ok := c.Indices.Lookup(n); ok {
		hits = append(hits, SearchHit{ID: n, Symbol: s, Name: strings.ToUpper(n), Type: "index"})
	}
	if s, ok := c.Treasury.Lookup(n); ok {
		hits = append(hits, SearchHit{ID: n, Symbol: s, Name: "US Treasury " + strings.ToUpper(n), Type: "treasury"})
	}
	if s, ok := c.Stocks.Lookup(n); ok {
		hits = append(hits, SearchHit{ID: s, Symbol: s, Name: titleCase(n), Type: "stock"})
	}
	if id, ok := c.Crypto.Lookup(n); ok {
		hits = append(hits, SearchHit{ID: id, Symbol: strings.ToUpper(n), Name: CoinName(id), Type: "crypto"})
	}
	return hits
}

// CoinName turns a CoinGecko id like "usd-coin" into "Usd Coin".
func CoinName(id string) string {
	return titleCase(strings.ReplaceAll(id, "-", " "))
}

// titleCase upper-cases the first letter of each word and lower-cases
// the rest.
func titleCase(s string) string {
	var b strings.Builder
	prevLetter := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) && !prevLetter:
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsLetter(r):
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
		prevLetter = unicode.IsLetter(r)
	}
	return b.String()
}
