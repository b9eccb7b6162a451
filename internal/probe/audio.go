package probe

import (
	"fmt"
	"io"
	"os"

	"github.com/dhowden/tag"
	mp3 "github.com/hajimehoshi/go-mp3"
	"github.com/mewkiz/flac"
)

// readTagTitle 读内嵌标题标签。读不到（没有标签块、格式不认识）
// 返回空串，由上层回退到文件名，不视为探测失败。
func readTagTitle(r io.ReadSeeker) string {
	md, err := tag.ReadFrom(r)
	if err != nil {
		return ""
	}
	return md.Title()
}

func mp3Meta(path string) (Meta, error) {
	f, err := os.Open(path)
	if err != nil {
		return Meta{}, err
	}
	defer f.Close()

	m := Meta{Title: readTagTitle(f)}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return Meta{}, err
	}

	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return Meta{}, fmt.Errorf("mp3 解析失败 %s: %w", path, err)
	}
	// Length 是解码后的 PCM 字节数，固定双声道 16 位，每采样 4 字节。
	if rate := dec.SampleRate(); rate > 0 && dec.Length() > 0 {
		m.DurationMS = uint64(dec.Length()) * 1000 / uint64(4*rate)
	}
	return m, nil
}

func flacMeta(path string) (Meta, error) {
	f, err := os.Open(path)
	if err != nil {
		return Meta{}, err
	}
	defer f.Close()

	m := Meta{Title: readTagTitle(f)}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return Meta{}, err
	}

	stream, err := flac.New(f)
	if err != nil {
		return Meta{}, fmt.Errorf("flac 解析失败 %s: %w", path, err)
	}
	if stream.Info.SampleRate > 0 {
		m.DurationMS = stream.Info.NSamples * 1000 / uint64(stream.Info.SampleRate)
	}
	return m, nil
}

func oggMeta(path string) (Meta, error) {
	f, err := os.Open(path)
	if err != nil {
		return Meta{}, err
	}
	title := readTagTitle(f)
	f.Close()

	m, err := ffprobeMeta(path)
	if err != nil {
		return Meta{}, err
	}
	if title != "" {
		m.Title = title
	}
	return m, nil
}
