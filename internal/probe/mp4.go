package probe

import (
	"fmt"
	"io"
	"os"

	mp4 "github.com/abema/go-mp4"
)

// mp4DurationMS 读 moov 头，把 mvhd 时长折算成毫秒。
func mp4DurationMS(r io.ReadSeeker) (uint64, error) {
	info, err := mp4.Probe(r)
	if err != nil {
		return 0, err
	}
	if info.Timescale == 0 {
		return 0, nil
	}
	return info.Duration * 1000 / uint64(info.Timescale), nil
}

// mp4Meta 只取时长；视频容器的标题一律不读，统一用文件名。
func mp4Meta(path string) (Meta, error) {
	f, err := os.Open(path)
	if err != nil {
		return Meta{}, err
	}
	defer f.Close()

	ms, err := mp4DurationMS(f)
	if err != nil {
		return Meta{}, fmt.Errorf("mp4 解析失败 %s: %w", path, err)
	}
	return Meta{DurationMS: ms}, nil
}

// m4aMeta 先读内嵌标题标签，再回到文件头取时长。
func m4aMeta(path string) (Meta, error) {
	f, err := os.Open(path)
	if err != nil {
		return Meta{}, err
	}
	defer f.Close()

	m := Meta{Title: readTagTitle(f)}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return Meta{}, err
	}

	ms, err := mp4DurationMS(f)
	if err != nil {
		return Meta{}, fmt.Errorf("m4a 解析失败 %s: %w", path, err)
	}
	m.DurationMS = ms
	return m, nil
}
