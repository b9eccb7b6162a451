package domain

// Track 是一条媒体轨道的最终元数据（探测成功时创建，之后不再修改）。
//
// 不变量：
// - Location 必须是 clean + absolute 的文件路径
// - Title 非空（容器内无标题时由调用方回退为文件名）
// - DurationMS 未知时为 0
type Track struct {
	Location   string
	Title      string
	DurationMS uint64
}
