package probe

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// runFFProbe 执行外部 ffprobe 并返回其标准输出，测试里会替换。
var runFFProbe = func(path string) ([]byte, error) {
	cmd := exec.Command("ffprobe",
		"-v", "error",
		"-print_format", "json",
		"-show_entries", "format=duration:format_tags=title",
		path,
	)
	return cmd.Output()
}

// ffprobeMeta 解析 ffprobe 的 JSON 输出。
// mkv 与 ogg 的时长没有可用的纯 Go 解析路径，交给外部进程。
func ffprobeMeta(path string) (Meta, error) {
	out, err := runFFProbe(path)
	if err != nil {
		return Meta{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	var doc struct {
		Format struct {
			Duration string            `json:"duration"`
			Tags     map[string]string `json:"tags"`
		} `json:"format"`
	}
	if err := json.Unmarshal(out, &doc); err != nil {
		return Meta{}, fmt.Errorf("ffprobe 输出无法解析 %s: %w", path, err)
	}

	var m Meta
	if doc.Format.Duration != "" {
		if sec, err := strconv.ParseFloat(doc.Format.Duration, 64); err == nil && sec > 0 {
			m.DurationMS = uint64(sec * 1000)
		}
	}
	// 标签键的大小写随容器走（mkv 常见 TITLE），按不区分大小写匹配。
	for k, v := range doc.Format.Tags {
		if strings.EqualFold(k, "title") {
			m.Title = v
			break
		}
	}
	return m, nil
}
