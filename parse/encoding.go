package parse

import "bytes"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Encoding is the result of inspecting raw source bytes: the charset
// name, whether a byte-order mark was present, and the decoded text
// with the mark stripped. The flag travels with the compilation unit so
// printing can re-emit the mark.
type Encoding struct {
	Charset   string
	BomMarked bool
	Text      string
}

// DetectEncoding inspects raw bytes for a UTF-8 byte-order mark.
func DetectEncoding(raw []byte) Encoding {
	if bytes.HasPrefix(raw, utf8BOM) {
		return Encoding{Charset: "UTF-8", BomMarked: true, Text: string(raw[len(utf8BOM):])}
	}
	return Encoding{Charset: "UTF-8", Text: string(raw)}
}
