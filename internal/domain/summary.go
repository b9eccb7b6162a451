package domain

// RunSummary 是一次运行的聚合结果。
// run 层只负责填数，不直接输出；CLI 决定在 TTY 上如何展示。
type RunSummary struct {
	Files   int    // 扫描命中的候选文件数
	Tracks  int    // 探测成功并写入注册表的曲目数
	Skipped int    // 探测失败被静默跳过的文件数
	Dirs    int    // 树中目录节点数（含根）
	Bytes   int    // 渲染出的文档字节数
	Output  string // 目标文件；空表示 stdout
}
