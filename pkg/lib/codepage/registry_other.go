//go:build !windows

package codepage

import (
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
)

type namedEncoding struct {
	enc         encoding.Encoding
	maxCharSize int
}

// named maps code page identifiers to the golang.org/x/text encodings that
// stand in for the OS table on platforms without one. Pages whose x/text
// table differs from the OS mapping (51932, 51949) are left out.
var named = map[uint32]namedEncoding{
	37:    {charmap.CodePage037, 1},
	437:   {charmap.CodePage437, 1},
	850:   {charmap.CodePage850, 1},
	852:   {charmap.CodePage852, 1},
	855:   {charmap.CodePage855, 1},
	858:   {charmap.CodePage858, 1},
	860:   {charmap.CodePage860, 1},
	862:   {charmap.CodePage862, 1},
	863:   {charmap.CodePage863, 1},
	865:   {charmap.CodePage865, 1},
	866:   {charmap.CodePage866, 1},
	874:   {charmap.Windows874, 1},
	1047:  {charmap.CodePage1047, 1},
	1140:  {charmap.CodePage1140, 1},
	1250:  {charmap.Windows1250, 1},
	1251:  {charmap.Windows1251, 1},
	1252:  {charmap.Windows1252, 1},
	1253:  {charmap.Windows1253, 1},
	1254:  {charmap.Windows1254, 1},
	1255:  {charmap.Windows1255, 1},
	1256:  {charmap.Windows1256, 1},
	1257:  {charmap.Windows1257, 1},
	1258:  {charmap.Windows1258, 1},
	10000: {charmap.Macintosh, 1},
	10007: {charmap.MacintoshCyrillic, 1},
	20866: {charmap.KOI8R, 1},
	21866: {charmap.KOI8U, 1},
	28591: {charmap.ISO8859_1, 1},
	28592: {charmap.ISO8859_2, 1},
	28593: {charmap.ISO8859_3, 1},
	28594: {charmap.ISO8859_4, 1},
	28595: {charmap.ISO8859_5, 1},
	28596: {charmap.ISO8859_6, 1},
	28597: {charmap.ISO8859_7, 1},
	28598: {charmap.ISO8859_8, 1},
	28599: {charmap.ISO8859_9, 1},
	28603: {charmap.ISO8859_13, 1},
	28605: {charmap.ISO8859_15, 1},

	932:   {japanese.ShiftJIS, 2},
	20932: {japanese.EUCJP, 3},
	50220: {japanese.ISO2022JP, 5},
	936:   {simplifiedchinese.GBK, 2},
	54936: {simplifiedchinese.GB18030, 4},
	52936: {simplifiedchinese.HZGB2312, 5},
	949:   {korean.EUCKR, 2},
	950:   {traditionalchinese.Big5, 2},
}

func encodingName(enc encoding.Encoding, id uint32) string {
	if s, ok := enc.(fmt.Stringer); ok {
		return s.String()
	}
	return DefaultName(id)
}
