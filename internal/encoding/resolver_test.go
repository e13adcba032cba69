package encoding

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/novel-sorter/internal/charset"
	"github.com/jonathan/novel-sorter/internal/config"
	"github.com/jonathan/novel-sorter/internal/types"
)

type fakeDetector struct {
	detection Detection
	ok        bool
}

func (f fakeDetector) Detect([]byte) (Detection, bool) {
	return f.detection, f.ok
}

func newTestResolver(t *testing.T, detector Detector, labels ...string) *Resolver {
	t.Helper()
	cfg := config.Default().Encoding
	if len(labels) > 0 {
		cfg.DetectionEncodings = labels
	}
	r, err := NewResolver(cfg, detector)
	require.NoError(t, err)
	return r
}

func encode(t *testing.T, label, text string) []byte {
	t.Helper()
	cs, ok := charset.Lookup(label)
	require.True(t, ok, label)
	data, err := cs.Encode(text)
	require.NoError(t, err, label)
	return data
}

const (
	simplified  = "第一章 斗气大陆，少年萧炎站在测验魔石碑前。"
	traditional = "第一章 鬥氣大陸，少年蕭炎站在測驗魔石碑前。"
	japanese    = "第一章　魔法の世界へようこそ。"
	korean      = "제1장 마법의 세계에 오신 것을 환영합니다."
	western     = "Café crème brûlée, naïve façade."
)

func TestResolve_RoundTrip(t *testing.T) {
	cases := []struct {
		label string
		text  string
	}{
		{"utf-8", simplified},
		{"utf-8-sig", simplified},
		{"gbk", simplified},
		{"gb18030", simplified},
		{"big5", traditional},
		{"shift-jis", japanese},
		{"euc-jp", japanese},
		{"euc-kr", korean},
		{"utf-16", simplified + " chapter one"},
		{"utf-16le", simplified + " chapter one"},
		{"utf-16be", simplified + " chapter one"},
		{"utf-32", simplified},
		{"utf-32le", simplified},
		{"utf-32be", simplified},
		{"windows-1252", western},
		{"iso-8859-1", western},
		{"ascii", "Chapter 1. The road north."},
	}

	for _, tc := range cases {
		t.Run(tc.label, func(t *testing.T) {
			r := newTestResolver(t, nil, tc.label)

			decoded, ok := r.Resolve(encode(t, tc.label, tc.text))
			require.True(t, ok)
			assert.Equal(t, tc.text, decoded.Text)
			assert.Greater(t, decoded.Confidence, 0.0)
		})
	}
}

func TestResolve_DefaultChainWithDetector(t *testing.T) {
	// 㐀 and 𠮷 have four byte GB18030 codes that GBK cannot decode
	gb18030Text := strings.Repeat("第一章 少年在山村里修炼，他的名字叫㐀𠮷，每天清晨都去河边练剑。", 10)
	big5Text := strings.Repeat("第一章 少年在山村裡修煉，每天清晨都去河邊練劍，師父說他天賦過人。", 10)

	cases := []struct {
		label string
		text  string
	}{
		{"gbk", strings.Repeat(simplified, 10)},
		{"gb18030", gb18030Text},
		{"big5", big5Text},
	}

	r := newTestResolver(t, NewChardetDetector())
	for _, tc := range cases {
		t.Run(tc.label, func(t *testing.T) {
			decoded, ok := r.Resolve(encode(t, tc.label, tc.text))
			require.True(t, ok)
			assert.Equal(t, tc.text, decoded.Text)
			assert.Equal(t, types.MethodDetector, decoded.Method)
			assert.GreaterOrEqual(t, decoded.Confidence, config.DefaultMinConfidence)
		})
	}
}

func TestResolve_CanonicalUTF8(t *testing.T) {
	r := newTestResolver(t, nil)

	decoded, ok := r.Resolve([]byte(simplified))
	require.True(t, ok)
	assert.True(t, decoded.Canonical())
	assert.Equal(t, "utf-8", decoded.Encoding)
	assert.Equal(t, 1.0, decoded.Confidence)
}

func TestResolve_EmptyInputIsCanonical(t *testing.T) {
	r := newTestResolver(t, nil)

	decoded, ok := r.Resolve(nil)
	require.True(t, ok)
	assert.True(t, decoded.Canonical())
	assert.Equal(t, "", decoded.Text)
}

func TestResolve_BOM(t *testing.T) {
	r := newTestResolver(t, nil)

	data := append([]byte{0xFF, 0xFE}, encode(t, "utf-16le", simplified)...)
	decoded, ok := r.Resolve(data)
	require.True(t, ok)
	assert.Equal(t, types.MethodBOM, decoded.Method)
	assert.Equal(t, "utf-16le", decoded.Encoding)
	assert.Equal(t, simplified, decoded.Text)

	data = append([]byte{0xEF, 0xBB, 0xBF}, []byte(simplified)...)
	decoded, ok = r.Resolve(data)
	require.True(t, ok)
	assert.Equal(t, types.MethodBOM, decoded.Method)
	assert.Equal(t, simplified, decoded.Text)
}

func TestResolve_DefaultOrderPicksGBK(t *testing.T) {
	r := newTestResolver(t, nil)

	decoded, ok := r.Resolve(encode(t, "gbk", simplified))
	require.True(t, ok)
	assert.Equal(t, "gbk", decoded.Encoding)
	assert.Equal(t, types.MethodStrict, decoded.Method)
	assert.Equal(t, simplified, decoded.Text)
}

func TestResolve_DetectorAboveThreshold(t *testing.T) {
	det := fakeDetector{detection: Detection{Charset: "GB-18030", Confidence: 0.95}, ok: true}
	r := newTestResolver(t, det)

	decoded, ok := r.Resolve(encode(t, "gb18030", simplified))
	require.True(t, ok)
	assert.Equal(t, types.MethodDetector, decoded.Method)
	assert.Equal(t, "gb18030", decoded.Encoding)
	assert.InDelta(t, 0.95, decoded.Confidence, 1e-9)
}

func TestResolve_DetectorIgnoredWhenUnsure(t *testing.T) {
	cases := map[string]fakeDetector{
		"low confidence": {detection: Detection{Charset: "Big5", Confidence: 0.3}, ok: true},
		"unsupported":    {detection: Detection{Charset: "KOI8-R", Confidence: 0.99}, ok: true},
		"no answer":      {},
	}
	for name, det := range cases {
		t.Run(name, func(t *testing.T) {
			r := newTestResolver(t, det)

			decoded, ok := r.Resolve(encode(t, "gbk", simplified))
			require.True(t, ok)
			assert.Equal(t, types.MethodStrict, decoded.Method)
			assert.Equal(t, "gbk", decoded.Encoding)
		})
	}
}

func TestResolve_DetectorStrictFailureFallsBack(t *testing.T) {
	// claims UTF-8 for bytes that are not
	det := fakeDetector{detection: Detection{Charset: "UTF-8", Confidence: 1}, ok: true}
	r := newTestResolver(t, det)

	decoded, ok := r.Resolve(encode(t, "gbk", simplified))
	require.True(t, ok)
	assert.Equal(t, "gbk", decoded.Encoding)
}

func TestResolve_LossyRequiresExpectedScript(t *testing.T) {
	data := append(encode(t, "gbk", simplified), 0xFF)
	data = append(data, encode(t, "gbk", simplified)...)

	r := newTestResolver(t, nil, "gbk")
	decoded, ok := r.Resolve(data)
	require.True(t, ok)
	assert.Equal(t, types.MethodLossy, decoded.Method)
	assert.Less(t, decoded.Confidence, fallbackConfidence)
	assert.Contains(t, decoded.Text, "�")

	latin := []byte("plain words only \xff\xff and more plain words")
	_, ok = r.Resolve(latin)
	assert.False(t, ok, "no Han rune, lossy decode must be rejected")

	cfg := config.Default().Encoding
	cfg.DetectionEncodings = []string{"gbk"}
	cfg.ExpectedScript = ""
	noScript, err := NewResolver(cfg, nil)
	require.NoError(t, err)
	decoded, ok = noScript.Resolve(latin)
	require.True(t, ok)
	assert.Equal(t, types.MethodLossy, decoded.Method)
}

func TestResolve_CorruptedIsUnresolved(t *testing.T) {
	r := newTestResolver(t, nil)

	_, ok := r.Resolve(make([]byte, 512))
	assert.False(t, ok)

	// valid UTF-8 that is mostly control characters is not text
	asciiOnly := newTestResolver(t, nil, "ascii")
	_, ok = asciiOnly.Resolve([]byte("\x01\x02\x03a"))
	assert.False(t, ok)
}

func TestNewResolver_UnknownLabel(t *testing.T) {
	cfg := config.Default().Encoding
	cfg.DetectionEncodings = []string{"gbk", "martian"}

	_, err := NewResolver(cfg, nil)
	require.Error(t, err)
	var invalid *config.InvalidError
	assert.ErrorAs(t, err, &invalid)
}

func TestChardetDetector(t *testing.T) {
	d := NewChardetDetector()

	_, ok := d.Detect(nil)
	assert.False(t, ok)

	det, ok := d.Detect([]byte(simplified + simplified + simplified))
	require.True(t, ok)
	assert.Equal(t, "UTF-8", det.Charset)
	assert.Greater(t, det.Confidence, 0.0)
	assert.LessOrEqual(t, det.Confidence, 1.0)
}
