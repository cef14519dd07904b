package response

// 以下守卫在条件成立时返回带消息的错误，否则返回 nil

func BadRequestIf(cond bool, format string, args ...any) error {
	return guard(cond, ErrBadRequest, format, args...)
}

func NotFoundIf(cond bool, format string, args ...any) error {
	return guard(cond, ErrNotFound, format, args...)
}

func ConflictIf(cond bool, format string, args ...any) error {
	return guard(cond, ErrConflict, format, args...)
}

func UnauthorizedIf(cond bool, format string, args ...any) error {
	return guard(cond, ErrUnauthorized, format, args...)
}

func NoContentIf(cond bool, format string, args ...any) error {
	return guard(cond, ErrNoContent, format, args...)
}

func guard(cond bool, base *Error, format string, args ...any) error {
	if !cond {
		return nil
	}
	if format == "" {
		return base
	}
	return base.WithMessage(format, args...)
}

// NotFoundf 常用于 store.ErrNotFound 之后换成具体实体名
func NotFoundf(entity string) *Error {
	return ErrNotFound.WithMessage("%s not found", entity)
}
