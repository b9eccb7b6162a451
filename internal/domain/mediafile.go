package domain

// MediaFile 描述一次扫描得到的媒体文件（只做 stat，不读内容）。
//
// 不变量（实现必须遵守）：
// - AbsPath 必须是 clean + absolute
// - Base 是含扩展名的文件名（叶子排序与标题回退都用它）
// - Size/ModUnix 来自扫描时的 stat，探测缓存用它们判断条目是否过期
type MediaFile struct {
	AbsPath string
	Base    string // "a.mp4"
	Ext     string // ".mp4"，已转小写
	Size    int64
	ModUnix int64
}
