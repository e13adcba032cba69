// Package charset maps encoding labels to golang.org/x/text decoders.
package charset

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"
)

// Family groups charsets for fallback ordering
type Family int

// Charset families, in default fallback order
const (
	FamilyEastAsian Family = iota
	FamilyUnicode
	FamilyWestern
	FamilyASCII
)

// Charset is a named text encoding.
type Charset struct {
	Name     string
	Family   Family
	encoding encoding.Encoding // nil for ASCII
}

var registry = map[string]*Charset{}

// aliases maps normalized alternative labels to canonical names.
var aliases = map[string]string{
	"utf8":         "utf-8",
	"utf-8-bom":    "utf-8-sig",
	"cp936":        "gbk",
	"ms936":        "gbk",
	"windows-936":  "gbk",
	"gb-18030":     "gb18030",
	"euc-cn":       "gb2312",
	"hz":           "hz-gb-2312",
	"cp950":        "big5",
	"big5-hkscs":   "big5",
	"sjis":         "shift-jis",
	"cp932":        "shift-jis",
	"windows-31j":  "shift-jis",
	"cp949":        "euc-kr",
	"utf16":        "utf-16",
	"utf16le":      "utf-16le",
	"utf16be":      "utf-16be",
	"utf32":        "utf-32",
	"utf32le":      "utf-32le",
	"utf32be":      "utf-32be",
	"latin1":       "iso-8859-1",
	"latin-1":      "iso-8859-1",
	"iso8859-1":    "iso-8859-1",
	"l1":           "iso-8859-1",
	"cp1252":       "windows-1252",
	"us-ascii":     "ascii",
	"iso-646-us":   "ascii",
}

func register(name string, family Family, enc encoding.Encoding) {
	registry[name] = &Charset{Name: name, Family: family, encoding: enc}
}

func init() {
	register("gbk", FamilyEastAsian, simplifiedchinese.GBK)
	register("gb2312", FamilyEastAsian, simplifiedchinese.GBK)
	register("gb18030", FamilyEastAsian, simplifiedchinese.GB18030)
	register("hz-gb-2312", FamilyEastAsian, simplifiedchinese.HZGB2312)
	register("big5", FamilyEastAsian, traditionalchinese.Big5)
	register("shift-jis", FamilyEastAsian, japanese.ShiftJIS)
	register("euc-jp", FamilyEastAsian, japanese.EUCJP)
	register("iso-2022-jp", FamilyEastAsian, japanese.ISO2022JP)
	register("euc-kr", FamilyEastAsian, korean.EUCKR)

	register("utf-8", FamilyUnicode, unicode.UTF8)
	register("utf-8-sig", FamilyUnicode, unicode.UTF8BOM)
	register("utf-16", FamilyUnicode, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM))
	register("utf-16le", FamilyUnicode, unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM))
	register("utf-16be", FamilyUnicode, unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM))
	register("utf-32", FamilyUnicode, utf32.UTF32(utf32.LittleEndian, utf32.UseBOM))
	register("utf-32le", FamilyUnicode, utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM))
	register("utf-32be", FamilyUnicode, utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM))

	register("windows-1252", FamilyWestern, charmap.Windows1252)
	register("iso-8859-1", FamilyWestern, charmap.ISO8859_1)

	register("ascii", FamilyASCII, nil)
}

// Normalize lower-cases a label and unifies separators.
func Normalize(label string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	return strings.ReplaceAll(label, "_", "-")
}

// Lookup resolves a label (canonical name or alias). Labels unknown to the
// registry are looked up in the WHATWG index as a last resort.
func Lookup(label string) (*Charset, bool) {
	name := Normalize(label)
	if canonical, ok := aliases[name]; ok {
		name = canonical
	}
	if cs, ok := registry[name]; ok {
		return cs, true
	}
	enc, err := htmlindex.Get(name)
	if err != nil || enc == nil {
		return nil, false
	}
	return &Charset{Name: name, Family: FamilyWestern, encoding: enc}, true
}

// Known reports whether a label can be resolved.
func Known(label string) bool {
	_, ok := Lookup(label)
	return ok
}

// Decode converts data to UTF-8. Bytes that are invalid in the charset
// become utf8.RuneError; decoding never fails outright.
func (c *Charset) Decode(data []byte) string {
	if c.encoding == nil {
		return decodeASCII(data)
	}
	out, n, err := transform.Bytes(c.encoding.NewDecoder(), data)
	if err != nil && n < len(data) {
		// keep what decoded cleanly and mark the undecodable tail
		out = append(out, string(utf8.RuneError)...)
	}
	return strings.TrimPrefix(string(out), "\ufeff")
}

// Encode converts UTF-8 text to the charset. Used by tests and tooling that
// need legacy bytes.
func (c *Charset) Encode(text string) ([]byte, error) {
	if c.encoding == nil {
		for i := 0; i < len(text); i++ {
			if text[i] >= utf8.RuneSelf {
				return nil, encoding.ErrInvalidUTF8
			}
		}
		return []byte(text), nil
	}
	return c.encoding.NewEncoder().Bytes([]byte(text))
}

func decodeASCII(data []byte) string {
	var sb strings.Builder
	sb.Grow(len(data))
	for _, b := range data {
		if b >= utf8.RuneSelf {
			sb.WriteRune(utf8.RuneError)
			continue
		}
		sb.WriteByte(b)
	}
	return sb.String()
}

// DefaultDetectionOrder is the fallback chain used when statistical detection
// is absent or inconclusive: East-Asian legacy sets, Unicode variants,
// Western single-byte sets, then ASCII.
func DefaultDetectionOrder() []string {
	return []string{
		"gbk", "gb18030", "big5",
		"utf-8-sig", "utf-16", "utf-16le", "utf-16be", "utf-32", "utf-32le", "utf-32be",
		"windows-1252", "iso-8859-1",
		"ascii",
	}
}

// DefaultSupported lists the charsets accepted from the statistical detector.
func DefaultSupported() []string {
	return []string{
		"utf-8", "utf-8-sig",
		"gbk", "gb2312", "gb18030", "big5",
		"utf-16", "utf-16le", "utf-16be", "utf-32", "utf-32le", "utf-32be",
		"windows-1252", "iso-8859-1", "ascii",
	}
}
