package model

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// ID 后端分配的不透明标识
// 后端在不同接口中时而返回数字时而返回字符串，统一按字符串处理
type ID string

// UnmarshalJSON 同时接受数字与字符串
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON 纯数字按数字输出，其余按字符串输出
func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// String 实现 fmt.Stringer
func (id ID) String() string { return string(id) }

// Empty 是否为空
func (id ID) Empty() bool { return id == "" }
