package util

var (
	NotFoundError   = NewError("not found")
	DuplicatedError = NewError("duplicated error")
)
