package domain

// PlaylistNode 是实体化后的播放列表树节点：目录或叶子二选一。
//
// 不变量：
// - Leaf=false：Title/Children 有效，TrackIdx/Name 无意义
// - Leaf=true：TrackIdx/Name 有效，Children 必须为空
// - 整棵树中叶子的 TrackIdx 恰好覆盖 {0..N-1}（N 为注册曲目总数）
//
// 节点不持有 Track 数据，只携带注册表下标；树和注册表之间唯一的
// 关联就是这个整数（序列化时写成 vlc:id / tid）。
type PlaylistNode struct {
	Title    string
	Children []PlaylistNode

	TrackIdx int
	Name     string // 文件名（含扩展名），仅参与排序
	Leaf     bool
}
