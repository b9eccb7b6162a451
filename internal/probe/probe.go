package probe

import (
	"fmt"

	"github.com/John-Robertt/VLCML/internal/domain"
)

// Meta 是单个文件的探测结果。
// Title 可能为空串（容器没写标题），由 File 统一回退到文件名；
// DurationMS 取不到时为 0。
type Meta struct {
	Title      string
	DurationMS uint64
}

// File 按扩展名解析容器元数据。
//
// 任何失败（打不开、解析不了）都以错误返回，调用方按"整个文件丢弃"
// 处理，不会让半截元数据进入曲目表。不支持的扩展名在扫描阶段已被
// 过滤，走到这里属于编程错误。
func File(f domain.MediaFile) (Meta, error) {
	var (
		m   Meta
		err error
	)
	switch f.Ext {
	case ".mkv":
		m, err = ffprobeMeta(f.AbsPath)
	case ".mp4":
		m, err = mp4Meta(f.AbsPath)
	case ".m4a":
		m, err = m4aMeta(f.AbsPath)
	case ".mp3":
		m, err = mp3Meta(f.AbsPath)
	case ".flac":
		m, err = flacMeta(f.AbsPath)
	case ".ogg":
		m, err = oggMeta(f.AbsPath)
	default:
		return Meta{}, fmt.Errorf("不支持的扩展名 %q", f.Ext)
	}
	if err != nil {
		return Meta{}, err
	}
	if m.Title == "" {
		m.Title = f.Base
	}
	return m, nil
}
