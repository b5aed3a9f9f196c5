package json

import jsoniter "github.com/json-iterator/go"

// 统一JSON入口，缓存key、快照、模型文件都走这里
var api = jsoniter.ConfigCompatibleWithStandardLibrary

// Marshal 序列化
func Marshal(v interface{}) ([]byte, error) {
	return api.Marshal(v)
}

// MarshalIndent 带缩进序列化
func MarshalIndent(v interface{}, prefix, indent string) ([]byte, error) {
	return api.MarshalIndent(v, prefix, indent)
}

// Unmarshal 反序列化
func Unmarshal(data []byte, v interface{}) error {
	return api.Unmarshal(data, v)
}
