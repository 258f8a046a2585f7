package log

// LazyEval defers building a log argument until the entry is written, so
// disabled levels cost nothing. Use it with Stringer or the "%v" verb.
type LazyEval func() string

func (l LazyEval) String() string {
	return l()
}

// DoLazyEval wraps c as a LazyEval.
func DoLazyEval(c func() string) LazyEval {
	return LazyEval(c)
}
