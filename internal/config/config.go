package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/John-Robertt/VLCML/internal/domain"
)

const (
	// ErrCodeNotFound 表示 --config 显式指定的配置文件不存在。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid 表示配置无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
	// ErrCodeMissingRoots 表示合并后没有任何扫描根目录。
	ErrCodeMissingRoots = "config_missing_roots"
)

// DefaultFileName 是工作目录下自动发现的配置文件名。
const DefaultFileName = "vlcml.json"

// userCacheDir 可在测试中替换，用于模拟缓存目录不可定位的环境。
var userCacheDir = os.UserCacheDir

// CLIArgs 包含 CLI 暴露的全部入口，并保留“是否显式指定”的信息。
// 这能保证覆盖优先级可实现：例如 --cache=false 必须能覆盖 config.cache=true。
type CLIArgs struct {
	Roots []string
	Skip  []string

	Output    string
	OutputSet bool

	Exts    []string
	ExtsSet bool

	Cache    bool
	CacheSet bool

	// ConfigPath 为 --config 显式指定的配置文件；为空则自动发现 <cwd>/vlcml.json。
	ConfigPath string
}

// FileConfig 对应 vlcml.json 的解析结构。
type FileConfig struct {
	Roots      []string `json:"roots"`
	Skip       []string `json:"skip"`
	Output     string   `json:"output"`
	Extensions []string `json:"extensions"`
	Cache      *bool    `json:"cache"`
}

// EffectiveConfig 是合并并做最小规范化后的最终配置（实现层直接消费，不再做二次默认/优先级判断）。
type EffectiveConfig struct {
	// Roots/Skip 均为 clean + absolute，去重（保留首次出现的顺序）。
	// 根的顺序决定走扫顺序，也决定实体化时顶层节点的初始顺序。
	Roots []string
	Skip  []string

	// Output 为 clean + absolute 的目标文件；空表示写 stdout。
	Output string

	// Exts 为小写、含点、字典序的扩展名列表（展示用）；ExtFilter 是扫描阶段的查表。
	Exts      []string
	ExtFilter map[string]bool

	Cache    bool
	CacheDir string // 仅当 Cache=true 时有效
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case ErrCodeMissingRoots:
		return fmt.Sprintf("%s：没有任何扫描根目录（--root 或配置文件 roots）", e.Code)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置无效（%s）：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置无效（%s）", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 按约定发现并读取配置文件，然后与 CLI 参数合并为最终配置。
//
// 发现规则（固定）：
// 1) --config 指定了路径：该文件必须存在且可解析
// 2) 未指定：尝试读取 <cwd>/vlcml.json（可选，不存在不算错误）
//
// 覆盖优先级（固定，逐字段）：
// - roots/skip：CLI（可重复的 -r/-s）> 配置文件
// - output：CLI -o > 配置文件 > 空（stdout）
// - extensions：CLI -e > 配置文件 > 全部支持的格式
// - cache：CLI --cache/--cache=false > 配置文件 > false
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	var (
		cfgPath string
		fc      FileConfig
	)

	if strings.TrimSpace(cli.ConfigPath) != "" {
		// 显式指定：文件必须存在。
		cfgPath = absCleanFrom(cwdAbs, cli.ConfigPath)

		var exists bool
		fc, exists, err = readFileConfig(cfgPath)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
		if !exists {
			return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
		}

		return merge(cwdAbs, cli, fc, cfgPath)
	}

	// 自动发现：<cwd>/vlcml.json 可选，不存在等价于空配置。
	cfgPath = filepath.Join(cwdAbs, DefaultFileName)
	fc, _, err = readFileConfig(cfgPath)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	return merge(cwdAbs, cli, fc, cfgPath)
}

func merge(cwdAbs string, cli CLIArgs, fc FileConfig, cfgPath string) (EffectiveConfig, error) {
	// roots：CLI > config；去重保留首次出现的顺序（顺序决定顶层节点的初始顺序）。
	rootsIn := cli.Roots
	if len(rootsIn) == 0 {
		rootsIn = fc.Roots
	}
	roots, err := normPaths(cwdAbs, rootsIn)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("roots 无效：%w", err)}
	}
	if len(roots) == 0 {
		return EffectiveConfig{}, &Error{Code: ErrCodeMissingRoots, Path: cfgPath}
	}

	// skip：CLI > config。匹配按 clean + absolute 的精确相等进行。
	skipIn := cli.Skip
	if len(skipIn) == 0 {
		skipIn = fc.Skip
	}
	skip, err := normPaths(cwdAbs, skipIn)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("skip 无效：%w", err)}
	}

	// output：CLI > config > 空（stdout）。
	output := strings.TrimSpace(fc.Output)
	if cli.OutputSet {
		output = strings.TrimSpace(cli.Output)
	}
	if output != "" {
		output = absCleanFrom(cwdAbs, output)
	}

	// extensions：CLI > config > 全部支持的格式。
	extsIn := domain.DefaultExtensions()
	if cli.ExtsSet {
		extsIn = cli.Exts
	} else if len(fc.Extensions) > 0 {
		extsIn = fc.Extensions
	}
	exts, filter, err := normExts(extsIn)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	// cache：CLI > config > false。
	cache := false
	if cli.CacheSet {
		cache = cli.Cache
	} else if fc.Cache != nil {
		cache = *fc.Cache
	}
	cacheDir := ""
	if cache {
		base, err := userCacheDir()
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("无法定位用户缓存目录：%w", err)}
		}
		cacheDir = filepath.Join(base, "vlcml")
	}

	return EffectiveConfig{
		Roots:     roots,
		Skip:      skip,
		Output:    output,
		Exts:      exts,
		ExtFilter: filter,
		Cache:     cache,
		CacheDir:  cacheDir,
	}, nil
}

// normPaths 把 in 中的每个路径以 base 为基准变为 clean + absolute，并去重（保留首次出现）。
// 空白条目视为配置错误。
func normPaths(base string, in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, p := range in {
		if strings.TrimSpace(p) == "" {
			return nil, fmt.Errorf("路径不能为空")
		}
		abs := absCleanFrom(base, p)
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}
		out = append(out, abs)
	}
	return out, nil
}

// normExts 规范化扩展名（小写、补点、去重、字典序），并拒绝不支持的格式。
// 不支持的扩展名在探测阶段只会被整体静默跳过，不如在配置阶段就报错。
func normExts(in []string) ([]string, map[string]bool, error) {
	filter := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, e := range in {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			return nil, nil, fmt.Errorf("扩展名不能为空")
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if _, ok := domain.MediaExtensions[e]; !ok {
			return nil, nil, fmt.Errorf("不支持的扩展名：%q", e)
		}
		if filter[e] {
			continue
		}
		filter[e] = true
		out = append(out, e)
	}
	sort.Strings(out)
	return out, filter, nil
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
// - p 若已是绝对路径：直接 Clean
// - p 若是相对路径：Join(base, p) 后 Clean
func absCleanFrom(base, p string) string {
	p = filepath.Clean(strings.TrimSpace(p))
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// readFileConfig 读取并解析 JSON 配置文件。
// 返回值 exists 表示该文件是否存在（不存在不算错误）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	if err := json.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}
