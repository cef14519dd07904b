package tools

// PanicOnErr 启动阶段的错误直接终止进程
func PanicOnErr(err error) {
	if err != nil {
		panic(err)
	}
}

// Must 同 PanicOnErr，返回值版本
func Must[T any](v T, err error) T {
	PanicOnErr(err)
	return v
}
