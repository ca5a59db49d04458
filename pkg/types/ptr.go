package types

// StringPtr 返回字符串指针（构造用户配置时使用）
func StringPtr(s string) *string { return &s }

// IntPtr 返回整数指针
func IntPtr(i int) *int { return &i }

// Uint32Ptr 返回 uint32 指针
func Uint32Ptr(v uint32) *uint32 { return &v }

// BoolPtr 返回布尔指针
func BoolPtr(b bool) *bool { return &b }
