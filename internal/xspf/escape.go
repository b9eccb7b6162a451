package xspf

import "strings"

// EncodeComponent 对路径做 URI component 级别的百分号编码（大写十六进制）。
//
// 保留集合是 encodeURIComponent 的那一套：字母数字加 -_.!~*'()。
// 注意 '/' 也会被编码成 %2F：location 写的是整条路径的 component 编码，
// 不是逐段编码，播放列表的既有消费方按这个字节格式对账。
// 非 ASCII 字符按 UTF-8 逐字节编码。
func EncodeComponent(s string) string {
	const upperhex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		if shouldEscapeComponent(c) {
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&15])
		} else {
			b.WriteByte(c)
		}
	}
	return b.String()
}

func shouldEscapeComponent(c byte) bool {
	if 'A' <= c && c <= 'Z' || 'a' <= c && c <= 'z' || '0' <= c && c <= '9' {
		return false
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return false
	}
	return true
}

// escapeText 转义元素文本中的 XML 特殊字符（五个全转，宁多勿少）。
var escapeText = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&#34;",
	"'", "&#39;",
).Replace

// escapeAttr 转义属性值。双引号属性里 '"' 必须转，其余与文本一致。
var escapeAttr = escapeText
