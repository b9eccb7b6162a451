package main

import (
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/John-Robertt/VLCML/internal/app/run"
	"github.com/John-Robertt/VLCML/internal/config"
	"github.com/John-Robertt/VLCML/internal/domain"
)

func main() {
	os.Exit(realMain(os.Args[1:]))
}

// realMain 返回进程退出码：0 成功，1 运行/配置失败，2 用法错误。
func realMain(args []string) int {
	fs := flag.NewFlagSet("vlcml", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		roots   = fs.StringArrayP("root", "r", nil, "扫描起点，可重复")
		skips   = fs.StringArrayP("skip", "s", nil, "跳过的目录，可重复")
		output  = fs.StringP("output", "o", "", "播放列表输出文件")
		exts    = fs.StringSliceP("ext", "e", nil, "参与扫描的扩展名")
		cache   = fs.Bool("cache", false, "启用探测结果缓存")
		cfgPath = fs.StringP("config", "c", "", "配置文件路径")
		help    = fs.BoolP("help", "h", false, "显示帮助")
	)

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "参数错误：%v\n\n", err)
		printUsage()
		return 2
	}
	if *help {
		printUsage()
		return 0
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "多余的位置参数：%q\n\n", fs.Args())
		printUsage()
		return 2
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取当前目录失败：%v\n", err)
		return 1
	}

	eff, err := config.LoadEffective(cwd, config.CLIArgs{
		Roots:      *roots,
		Skip:       *skips,
		Output:     *output,
		OutputSet:  fs.Changed("output"),
		Exts:       *exts,
		ExtsSet:    fs.Changed("ext"),
		Cache:      *cache,
		CacheSet:   fs.Changed("cache"),
		ConfigPath: *cfgPath,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "配置错误（%s）：%v\n", config.Code(err), err)
		if config.Code(err) == config.ErrCodeMissingRoots {
			fmt.Fprintln(os.Stderr)
			printUsage()
			return 2
		}
		return 1
	}

	// 进度只在交互终端输出；文档走 stdout 时进度绝不能混进去。
	progressW, interactive := pickProgressWriter(eff.Output != "")
	var obs run.Observer
	if interactive {
		obs = newProgressUI(progressW)
	}

	sum, err := run.ExecuteWithObserver(eff, obs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "运行失败：%v\n", err)
		return 1
	}

	emitSummary(progressW, sum)
	return 0
}

func printUsage() {
	fmt.Fprint(os.Stdout, `用法：
  vlcml [-r 目录]... [-s 目录]... [-o 文件] [-e 扩展名]... [--cache] [-c 配置文件]

参数：
  -r, --root    扫描起点，可重复；不支持通配符
  -s, --skip    跳过的目录（按清理后的绝对路径精确匹配），可重复
  -o, --output  播放列表输出文件；缺省打印到标准输出
  -e, --ext     参与扫描的扩展名，可逗号分隔（默认 flac,m4a,mkv,mp3,mp4,ogg）
      --cache   启用探测结果缓存（写入用户缓存目录）
  -c, --config  配置文件路径（缺省尝试当前目录的 vlcml.json）
  -h, --help    显示帮助

根目录可以来自命令行或配置文件；两者都给时命令行优先。
`)
}

// emitSummary 打印最终摘要。交互终端走进度通道，否则走 stderr，
// 永远不碰 stdout（那里可能是文档本体）。
func emitSummary(progressW io.Writer, sum domain.RunSummary) {
	w := io.Writer(os.Stderr)
	if progressW != nil {
		w = progressW
	}
	target := sum.Output
	if target == "" {
		target = "-"
	}
	fmt.Fprintf(w, "完成：files=%d tracks=%d skipped=%d dirs=%d bytes=%d out=%s\n",
		sum.Files, sum.Tracks, sum.Skipped, sum.Dirs, sum.Bytes, target,
	)
}

func isTTY(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func pickProgressWriter(stdoutFree bool) (io.Writer, bool) {
	// 进度输出只在交互终端启用；默认走 stderr。
	if isTTY(os.Stderr) {
		return os.Stderr, true
	}
	// 仅当 stdout 不承载文档时才允许退化输出到 stdout。
	if stdoutFree && isTTY(os.Stdout) {
		return os.Stdout, true
	}
	return nil, false
}
