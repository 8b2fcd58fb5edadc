package assert

// NotNil panics on a nil value, it guards constructors against missing dependencies.
func NotNil(value any) {
	if value == nil {
		panic("expected value to be not nil")
	}
}
