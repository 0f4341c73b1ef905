package charset

import (
	"bytes"
	"fmt"
	"io"

	"github.com/gogs/chardet"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// AnyToUTF8 sniffs the encoding of a subtitle file and transcodes it to UTF-8.
// A leading byte order mark is dropped either way.
func AnyToUTF8(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return data, nil
	}
	if bytes.HasPrefix(data, utf8BOM) {
		return data[len(utf8BOM):], nil
	}

	best, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil {
		return nil, fmt.Errorf("detect charset: %w", err)
	}
	if best.Charset == "UTF-8" || best.Charset == "ISO-8859-1" && isASCII(data) {
		return data, nil
	}

	encoding, err := ianaindex.MIB.Encoding(best.Charset)
	if err != nil {
		return nil, fmt.Errorf("charset %v: %w", best.Charset, err)
	}
	if encoding == nil {
		return nil, fmt.Errorf("charset %v: no decoder", best.Charset)
	}
	transformed, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), encoding.NewDecoder()))
	if err != nil {
		return nil, err
	}

	return bytes.TrimPrefix(transformed, utf8BOM), nil
}

func isASCII(data []byte) bool {
	for _, b := range data {
		if b >= 0x80 {
			return false
		}
	}
	return true
}
