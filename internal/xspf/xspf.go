package xspf

import (
	"bytes"
	"strconv"

	"github.com/John-Robertt/VLCML/internal/domain"
)

// 文档字节格式是对外契约：标签、制表符缩进、换行、自闭合写法都必须
// 逐字节稳定，既有消费方按原文对账。不走 encoding/xml（它不输出
// 自闭合标签，缩进与转义集合也对不上这份格式）。
const (
	xmlHeader        = `<?xml version="1.0" encoding="UTF-8"?>`
	playlistStartTag = `<playlist xmlns="http://xspf.org/ns/0/" xmlns:vlc="http://www.videolan.org/vlc/playlist/ns/0/" version="1">`
	playlistEndTag   = `</playlist>`
	titleStartTag    = `<title>`
	titleEndTag      = `</title>`
	trackListStart   = `<trackList>`
	trackListEnd     = `</trackList>`
	trackStartTag    = `<track>`
	trackEndTag      = `</track>`
	locationStart    = `<location>`
	locationEnd      = `</location>`
	durationStart    = `<duration>`
	durationEnd      = `</duration>`
	extensionStart   = `<extension application="http://www.videolan.org/vlc/playlist/0">`
	extensionEnd     = `</extension>`
	vlcIDStart       = `<vlc:id>`
	vlcIDEnd         = `</vlc:id>`
)

// playlistTitle 是固定的播放列表标题（字面量契约，不本地化）。
const playlistTitle = "Media Library"

// Render 把注册表与排好序的树渲染为完整文档（结尾带换行）。
//
// 纯函数：不碰文件系统，只消费传入的数据。
// trackList 按注册顺序输出；层级视图只通过 vlc:id / tid 引用曲目。
func Render(tracks []domain.Track, nodes []domain.PlaylistNode) []byte {
	var buf bytes.Buffer
	buf.Grow(512 + 320*len(tracks))

	buf.WriteString(xmlHeader + "\n")
	buf.WriteString(playlistStartTag + "\n")
	buf.WriteString("\t" + titleStartTag + playlistTitle + titleEndTag + "\n")
	buf.WriteString("\t" + trackListStart + "\n")

	for idx, tr := range tracks {
		writeTrack(&buf, idx, tr)
	}

	buf.WriteString("\t" + trackListEnd + "\n")
	buf.WriteString("\t" + extensionStart + "\n")
	writeNodes(&buf, nodes, 2)
	buf.WriteString("\t" + extensionEnd + "\n")
	buf.WriteString(playlistEndTag + "\n")

	return buf.Bytes()
}

func writeTrack(buf *bytes.Buffer, idx int, tr domain.Track) {
	buf.WriteString("\t\t" + trackStartTag + "\n")
	buf.WriteString("\t\t\t" + locationStart + "file://" + EncodeComponent(tr.Location) + locationEnd + "\n")
	buf.WriteString("\t\t\t" + titleStartTag + escapeText(tr.Title) + titleEndTag + "\n")
	buf.WriteString("\t\t\t" + durationStart + strconv.FormatUint(tr.DurationMS, 10) + durationEnd + "\n")
	buf.WriteString("\t\t\t" + extensionStart + "\n")
	buf.WriteString("\t\t\t\t" + vlcIDStart + strconv.Itoa(idx) + vlcIDEnd + "\n")
	buf.WriteString("\t\t\t" + extensionEnd + "\n")
	buf.WriteString("\t\t" + trackEndTag + "\n")
}

// writeNodes 输出层级视图：目录展开为 vlc:node，叶子是自闭合的 vlc:item。
// indent 为当前层的制表符数（顶层从 2 开始），每深一层 +1。
func writeNodes(buf *bytes.Buffer, nodes []domain.PlaylistNode, indent int) {
	for i := range nodes {
		n := &nodes[i]
		writeIndent(buf, indent)
		if n.Leaf {
			buf.WriteString(`<vlc:item tid="` + strconv.Itoa(n.TrackIdx) + `"/>` + "\n")
			continue
		}
		buf.WriteString(`<vlc:node title="` + escapeAttr(n.Title) + `">` + "\n")
		writeNodes(buf, n.Children, indent+1)
		writeIndent(buf, indent)
		buf.WriteString("</vlc:node>\n")
	}
}

func writeIndent(buf *bytes.Buffer, n int) {
	for i := 0; i < n; i++ {
		buf.WriteByte('\t')
	}
}
