package common

// ByteView 只读字节视图，作为缓存值在LRU和快照之间流转
type ByteView struct {
	b []byte
}

// NewByteView 创建字节视图（持有拷贝）
func NewByteView(b []byte) ByteView {
	return ByteView{b: cloneBytes(b)}
}

// Len 返回视图长度
func (v ByteView) Len() int {
	return len(v.b)
}

// ByteSlice 返回字节切片的拷贝
func (v ByteView) ByteSlice() []byte {
	return cloneBytes(v.b)
}

// String 以字符串形式返回数据
func (v ByteView) String() string {
	return string(v.b)
}

func cloneBytes(b []byte) []byte {
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
