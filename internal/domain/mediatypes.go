package domain

import "sort"

// 容器种类：探测器按种类走不同的解析路径。
const (
	KindVideo = "video"
	KindAudio = "audio"
)

// MediaExtensions 是支持的全部容器格式（小写、含点的扩展名 → 种类）。
// 配置校验用它拒绝未知扩展名；不在表中的文件不会进入探测。
var MediaExtensions = map[string]string{
	".mkv":  KindVideo,
	".mp4":  KindVideo,
	".m4a":  KindAudio,
	".mp3":  KindAudio,
	".flac": KindAudio,
	".ogg":  KindAudio,
}

// DefaultExtensions 返回默认的扩展名过滤集合（全部支持的格式，字典序）。
func DefaultExtensions() []string {
	exts := make([]string, 0, len(MediaExtensions))
	for ext := range MediaExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
